package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// CurrentIdentity returns the identity stored by JWTAuth.
func CurrentIdentity(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get("identity").(model.Identity)
	return id, ok && id.ID != ""
}

// currentUserID returns the authenticated account id, or "anon".
func currentUserID(c echo.Context) string {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s
	}
	return "anon"
}
