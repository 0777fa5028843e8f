package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// Messages returned by JWTAuth.  They never say why a token was rejected.
const (
	MsgNoToken      = "No token provided, authorization denied"
	MsgInvalidToken = "Invalid token, authorization denied"
)

// TokenVerifier decodes a raw access token.  *utils.TokenIssuer implements it.
type TokenVerifier interface {
	Verify(raw string) (model.Identity, error)
}

// JWTAuth returns an Echo middleware that requires a Bearer access token.
// A missing header (or an empty token after "Bearer ") is answered with
// MsgNoToken, anything that fails verification with MsgInvalidToken; both
// are 401.  On success the decoded identity is stored under "identity" and
// its id and role under "user_id" and "role".
func JWTAuth(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer "))
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": MsgNoToken})
			}
			id, err := v.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": MsgInvalidToken})
			}
			c.Set("identity", id)
			c.Set("user_id", id.ID)
			c.Set("role", string(id.Role))
			return next(c)
		}
	}
}
