package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/service"
)

// Deps is everything the router needs to build the handlers.  Redis may be
// nil; Cache may be nil.
type Deps struct {
	Cfg      config.Config
	Log      zerolog.Logger
	Tokens   middleware.TokenVerifier
	Redis    *redis.Client
	Cache    *middleware.ResponseCache
	Users    *service.AccountService
	Admins   *service.AccountService
	Hotels   *service.HotelService
	Bookings *service.BookingService
}

// New builds the Echo instance with global middleware and every route.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: d.Cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	if d.Cache == nil {
		d.Cache = middleware.NewResponseCache(d.Cfg.Cache, nil, d.Log)
	}
	limiter := middleware.NewTokenBucket(d.Cfg.Limit, d.Redis, d.Log)

	RegisterRoutes(e)
	RegisterCatalog(e, handler.NewHotelHandler(d.Hotels, d.Cfg.UploadDir, d.Log), d.Cache, d.Cfg.MaxUploadSize)
	RegisterAuth(e, handler.NewAuthHandler(d.Users, d.Log), handler.NewAuthHandler(d.Admins, d.Log), limiter)
	RegisterCustomer(e, handler.NewBookingHandler(d.Bookings, d.Log), guard(d, model.RoleUser))
	RegisterAdmin(e, handler.NewAdminHandler(d.Users, d.Bookings, d.Log), guard(d, model.RoleAdmin))
	return e
}

// RegisterRoutes registers routes that sit outside /api.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// guard is the middleware chain for a role-scoped route: a valid token and,
// when AUTH_ENFORCE_ROLE is on, the matching role claim.
func guard(d Deps, role model.Role) []echo.MiddlewareFunc {
	mws := []echo.MiddlewareFunc{middleware.JWTAuth(d.Tokens)}
	if d.Cfg.EnforceRole {
		mws = append(mws, middleware.RequireRole(role))
	}
	return mws
}
