package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
)

// RegisterCustomer registers the user-scoped booking endpoints.  Every route
// runs the given guard chain (JWTAuth, plus RequireRole(user) when roles are
// enforced).
func RegisterCustomer(e *echo.Echo, h *handler.BookingHandler, guard []echo.MiddlewareFunc) {
	g := e.Group("/api")
	g.POST("/book", h.Book, guard...)
	g.GET("/my-bookings", h.MyBookings, guard...)
}

// RegisterAdmin registers the admin read-only views.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, guard []echo.MiddlewareFunc) {
	g := e.Group("/api/admin")
	g.GET("/users", h.Users, guard...)
	g.GET("/bookings", h.Bookings, guard...)
}
