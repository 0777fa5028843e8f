package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/service"
)

// AuthHandler serves register/login/logout for one role.  The router mounts
// one instance under /api (users) and one under /api/admin (admins).
type AuthHandler struct {
	svc   *service.AccountService
	label string // "User" or "Admin", used in response messages
	log   zerolog.Logger
}

func NewAuthHandler(svc *service.AccountService, log zerolog.Logger) *AuthHandler {
	if svc == nil {
		panic("nil AccountService passed to NewAuthHandler")
	}
	label := "User"
	if svc.Role() == model.RoleAdmin {
		label = "Admin"
	}
	return &AuthHandler{svc: svc, label: label, log: log}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username" form:"username" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type loginReq struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type userPart struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type loginResp struct {
	Token string   `json:"token"`
	User  userPart `json:"user"`
}

// Register creates an account.  201 on success, 400 for an invalid body or
// an email/username that is already taken.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	_, err := h.svc.Register(ctx, service.RegisterInput{Username: req.Username, Email: req.Email, Password: req.Password})
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return message(c, http.StatusBadRequest, h.label+" with this email already exists")
	case errors.Is(err, repository.ErrUsernameExists):
		return message(c, http.StatusBadRequest, h.label+" with this username already exists")
	case err != nil:
		return serverError(c, h.log, err)
	}
	return message(c, http.StatusCreated, h.label+" registered successfully")
}

// Login returns a bearer token.  Every credential failure yields the same
// 400 body.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
		return message(c, http.StatusBadRequest, "Invalid email or password")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return message(c, http.StatusBadRequest, "Invalid email or password")
		}
		return serverError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, loginResp{
		Token: res.Token,
		User:  userPart{ID: res.Account.ID, Username: res.Account.Username, Email: res.Account.Email},
	})
}

// Logout is a no-op: tokens are stateless and simply discarded by the
// client.
func (h *AuthHandler) Logout(c echo.Context) error {
	return message(c, http.StatusOK, "Logged out successfully")
}
