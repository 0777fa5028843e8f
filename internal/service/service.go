// Package service holds the application logic between the HTTP handlers and
// the repositories: account registration and login, the hotel catalog and
// the booking engine.
package service

import (
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrHotelNotFound      = errors.New("hotel not found")
	ErrInvalidHotel       = errors.New("invalid hotel")
	ErrInvalidStay        = errors.New("check-out date must be after check-in date")
	ErrInvalidBooking     = errors.New("invalid booking")
)

const tracerName = "github.com/iliyamo/hotel-booking/internal/service"

func tracerOrDefault(t trace.Tracer) trace.Tracer {
	if t == nil {
		return otel.Tracer(tracerName)
	}
	return t
}

// fail marks span as failed and returns err unchanged.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
