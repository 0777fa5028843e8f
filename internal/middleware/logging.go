package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestLogger tags every request with a request id (X-Request-ID from the
// client, or a fresh UUID), echoes it back and logs one line per completed
// request.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Set("request_id", requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			err := next(c)
			if err != nil {
				// let echo write the error response so the status is known
				c.Error(err)
			}

			status := c.Response().Status
			ev := log.Info()
			switch {
			case status >= 500:
				ev = log.Error().Err(err)
			case status >= 400:
				ev = log.Warn()
			}
			ev.Str("request_id", requestID).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", c.RealIP()).
				Int("status", status).
				Dur("duration", time.Since(start)).
				Str("user_id", currentUserID(c)).
				Msg("Request completed")
			return nil
		}
	}
}
