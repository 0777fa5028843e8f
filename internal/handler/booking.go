package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/service"
)

// BookingHandler serves the authenticated user's booking endpoints.
type BookingHandler struct {
	svc *service.BookingService
	log zerolog.Logger
}

func NewBookingHandler(svc *service.BookingService, log zerolog.Logger) *BookingHandler {
	if svc == nil {
		panic("nil BookingService passed to NewBookingHandler")
	}
	return &BookingHandler{svc: svc, log: log}
}

type bookReq struct {
	HotelID      string `json:"hotelId" validate:"required"`
	CheckInDate  string `json:"checkInDate" validate:"required"`
	CheckOutDate string `json:"checkOutDate" validate:"required"`
	RoomType     string `json:"roomType" validate:"required"`
	PersonCount  int    `json:"personCount" validate:"required,min=1"`
}

// Book creates a booking for the caller.  201 with the booking, 404 when
// the hotel does not exist, 400 for invalid input or a stay under one night.
func (h *BookingHandler) Book(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return message(c, http.StatusUnauthorized, middleware.MsgInvalidToken)
	}
	var req bookReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	checkIn, err := service.ParseDate(req.CheckInDate)
	if err != nil {
		return message(c, http.StatusBadRequest, "checkInDate is invalid")
	}
	checkOut, err := service.ParseDate(req.CheckOutDate)
	if err != nil {
		return message(c, http.StatusBadRequest, "checkOutDate is invalid")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.svc.Create(ctx, id.ID, service.BookingInput{
		HotelID:     req.HotelID,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		RoomType:    req.RoomType,
		PersonCount: req.PersonCount,
	})
	switch {
	case errors.Is(err, service.ErrHotelNotFound):
		return message(c, http.StatusNotFound, "Hotel not found")
	case errors.Is(err, service.ErrInvalidStay), errors.Is(err, service.ErrInvalidBooking):
		return message(c, http.StatusBadRequest, err.Error())
	case err != nil:
		return serverError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Booking successful", "booking": b})
}

// MyBookings lists the caller's bookings with hotel and user names resolved.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return message(c, http.StatusUnauthorized, middleware.MsgInvalidToken)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.svc.ListForUser(ctx, id.ID)
	if err != nil {
		return serverError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, details)
}
