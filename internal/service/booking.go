package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// Placeholders rendered in my-bookings when a reference no longer resolves.
const (
	UnknownHotel = "Unknown Hotel"
	UnknownUser  = "Unknown User"
)

// ComputePrice returns ceil(nights) × rate, where nights is the stay length
// in days.  It does not validate: a check-out on or before check-in yields
// a zero or negative total.
func ComputePrice(checkIn, checkOut time.Time, rate float64) float64 {
	nights := math.Ceil(checkOut.Sub(checkIn).Hours() / 24)
	return nights * rate
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates, the
// latter as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised date %q", ErrInvalidBooking, s)
}

type BookingInput struct {
	HotelID     string
	CheckIn     time.Time
	CheckOut    time.Time
	RoomType    string
	PersonCount int
}

// BookingService is the booking engine.
type BookingService struct {
	bookings repository.BookingRepository
	hotels   repository.HotelRepository
	users    repository.AccountRepository
	events   EventPublisher
	tracer   trace.Tracer
	log      zerolog.Logger
}

func NewBookingService(bookings repository.BookingRepository, hotels repository.HotelRepository,
	users repository.AccountRepository, events EventPublisher, tracer trace.Tracer, log zerolog.Logger) *BookingService {
	if bookings == nil || hotels == nil || users == nil {
		panic("nil dependency passed to NewBookingService")
	}
	if events == nil {
		events = NoopPublisher{}
	}
	return &BookingService{
		bookings: bookings,
		hotels:   hotels,
		users:    users,
		events:   events,
		tracer:   tracerOrDefault(tracer),
		log:      log,
	}
}

// Create prices and stores a booking for userID.  The stay must be at least
// one night (ErrInvalidStay) and the hotel must exist (ErrHotelNotFound).
// The booking.created event is best effort.
func (s *BookingService) Create(ctx context.Context, userID string, in BookingInput) (model.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.Create", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("hotel.id", in.HotelID),
	))
	defer span.End()

	in.RoomType = strings.TrimSpace(in.RoomType)
	switch {
	case in.HotelID == "" || in.RoomType == "":
		return model.Booking{}, fmt.Errorf("%w: hotelId and roomType are required", ErrInvalidBooking)
	case in.PersonCount < 1:
		return model.Booking{}, fmt.Errorf("%w: personCount must be at least 1", ErrInvalidBooking)
	case !in.CheckOut.After(in.CheckIn):
		return model.Booking{}, ErrInvalidStay
	}

	hotel, err := s.hotels.Get(ctx, in.HotelID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Booking{}, ErrHotelNotFound
		}
		return model.Booking{}, fail(span, fmt.Errorf("load hotel: %w", err))
	}

	b := model.Booking{
		UserID:       userID,
		HotelID:      hotel.ID,
		CheckInDate:  in.CheckIn,
		CheckOutDate: in.CheckOut,
		RoomType:     in.RoomType,
		PersonCount:  in.PersonCount,
		TotalPrice:   ComputePrice(in.CheckIn, in.CheckOut, hotel.Price),
	}
	if err := s.bookings.Create(ctx, &b); err != nil {
		return model.Booking{}, fail(span, fmt.Errorf("create booking: %w", err))
	}
	span.SetAttributes(attribute.String("booking.id", b.ID), attribute.Float64("booking.total", b.TotalPrice))

	ev := queue.BookingCreatedEvent{
		BookingID:    b.ID,
		UserID:       b.UserID,
		HotelID:      b.HotelID,
		HotelName:    hotel.Name,
		City:         hotel.City,
		CheckInDate:  b.CheckInDate.Format(time.RFC3339),
		CheckOutDate: b.CheckOutDate.Format(time.RFC3339),
		RoomType:     b.RoomType,
		PersonCount:  b.PersonCount,
		TotalPrice:   b.TotalPrice,
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
	}
	if err := s.events.PublishBookingCreated(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("booking_id", b.ID).Msg("booking event not published")
	}
	return b, nil
}

// ListForUser joins the user's bookings with hotel name and username.
// Dangling references render as UnknownHotel / UnknownUser.
func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]model.BookingDetail, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.ListForUser", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fail(span, fmt.Errorf("list bookings: %w", err))
	}
	hotels, users, err := s.resolve(ctx, bookings)
	if err != nil {
		return nil, fail(span, err)
	}

	out := make([]model.BookingDetail, 0, len(bookings))
	for _, b := range bookings {
		d := model.BookingDetail{
			HotelName:    UnknownHotel,
			UserName:     UnknownUser,
			TotalPrice:   b.TotalPrice,
			CheckInDate:  b.CheckInDate,
			CheckOutDate: b.CheckOutDate,
			PersonCount:  b.PersonCount,
			RoomType:     b.RoomType,
		}
		if h, ok := hotels[b.HotelID]; ok {
			d.HotelName = h.Name
		}
		if u, ok := users[b.UserID]; ok {
			d.UserName = u.Username
		}
		out = append(out, d)
	}
	return out, nil
}

// ListAll returns every booking with user and hotel resolved for the admin
// view.  Dangling references are nil.
func (s *BookingService) ListAll(ctx context.Context) ([]model.AdminBooking, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.ListAll")
	defer span.End()

	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, fail(span, fmt.Errorf("list bookings: %w", err))
	}
	hotels, users, err := s.resolve(ctx, bookings)
	if err != nil {
		return nil, fail(span, err)
	}

	out := make([]model.AdminBooking, 0, len(bookings))
	for _, b := range bookings {
		ab := model.AdminBooking{
			ID:           b.ID,
			CheckInDate:  b.CheckInDate,
			CheckOutDate: b.CheckOutDate,
			RoomType:     b.RoomType,
			PersonCount:  b.PersonCount,
			TotalPrice:   b.TotalPrice,
		}
		if h, ok := hotels[b.HotelID]; ok {
			ab.Hotel = &h
		}
		if u, ok := users[b.UserID]; ok {
			ab.User = &u
		}
		out = append(out, ab)
	}
	return out, nil
}

func (s *BookingService) resolve(ctx context.Context, bookings []model.Booking) (map[string]model.HotelSummary, map[string]model.Profile, error) {
	hotelIDs := make([]string, 0, len(bookings))
	userIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		hotelIDs = append(hotelIDs, b.HotelID)
		userIDs = append(userIDs, b.UserID)
	}
	hotels, err := s.hotels.Summaries(ctx, hotelIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve hotels: %w", err)
	}
	users, err := s.users.Profiles(ctx, userIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve users: %w", err)
	}
	return hotels, users, nil
}
