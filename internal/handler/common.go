// Package handler exposes the HTTP handlers of the hotel-booking API.  Every
// JSON error body has the shape {"message": "..."}.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const msgServerError = "Server error"

// Health is a liveness probe for load balancers and monitoring.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg})
}

// serverError logs err with the request id and answers a generic 500.  The
// driver error text is never sent to the client.
func serverError(c echo.Context, log zerolog.Logger, err error) error {
	rid, _ := c.Get("request_id").(string)
	log.Error().Err(err).
		Str("request_id", rid).
		Str("method", c.Request().Method).
		Str("route", c.Path()).
		Msg("request failed")
	return message(c, http.StatusInternalServerError, msgServerError)
}

// bindAndValidate decodes the body into req and runs the validator.  On
// failure it has already written the 400 response and returns false.
func bindAndValidate(c echo.Context, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, message(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return false, message(c, http.StatusBadRequest, validationMessage(err))
	}
	return true, nil
}
