package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/service"
)

// AdminHandler serves the admin read-only views.
type AdminHandler struct {
	users    *service.AccountService
	bookings *service.BookingService
	log      zerolog.Logger
}

func NewAdminHandler(users *service.AccountService, bookings *service.BookingService, log zerolog.Logger) *AdminHandler {
	if users == nil || bookings == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{users: users, bookings: bookings, log: log}
}

// Users lists every registered user.  Password hashes are never serialised.
func (h *AdminHandler) Users(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.users.List(ctx)
	if err != nil {
		return serverError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Bookings lists every booking with user {username, email} and hotel
// {name, city, price} resolved; dangling references are null.
func (h *AdminHandler) Bookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.bookings.ListAll(ctx)
	if err != nil {
		return serverError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
