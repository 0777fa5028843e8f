package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/middleware"
)

// RegisterCatalog registers the public hotel endpoints.  Reads go through
// the response cache; writes carry a body limit and purge the cache from
// the service layer.  GET /api/bookings lists hotels, not bookings; the
// path is kept for existing clients.
func RegisterCatalog(e *echo.Echo, h *handler.HotelHandler, cache *middleware.ResponseCache, maxUpload string) {
	if maxUpload == "" {
		maxUpload = "10M"
	}
	g := e.Group("/api")
	limit := echomw.BodyLimit(maxUpload)

	g.POST("/uploadphoto", h.Upload, limit)
	g.GET("/bookings", h.List, cache.Middleware())
	g.GET("/search", h.Search, cache.Middleware())
	g.GET("/hotels/:id", h.Get, cache.Middleware())
	g.PUT("/hotels/:id", h.Update, limit)
	g.DELETE("/hotels/:id", h.Delete)
}
