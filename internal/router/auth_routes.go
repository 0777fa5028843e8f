package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
)

// RegisterAuth mounts register/login/logout for users under /api and for
// admins under /api/admin.  Register and login are rate limited.
func RegisterAuth(e *echo.Echo, users, admins *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/api")
	g.POST("/register", users.Register, limiter)
	g.POST("/login", users.Login, limiter)
	g.POST("/logout", users.Logout)

	a := e.Group("/api/admin")
	a.POST("/register", admins.Register, limiter)
	a.POST("/login", admins.Login, limiter)
	a.POST("/logout", admins.Logout)
}
