package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// Purger drops cached catalog responses.  The Redis response cache
// implements it; a nil Purger disables purging.
type Purger interface {
	Purge(ctx context.Context) error
}

type HotelInput struct {
	Name  string
	City  string
	Price float64
	Img   model.Image
}

// HotelService is the catalog: CRUD and search over hotel listings.
type HotelService struct {
	repo   repository.HotelRepository
	purger Purger
	tracer trace.Tracer
	log    zerolog.Logger
}

func NewHotelService(repo repository.HotelRepository, purger Purger, tracer trace.Tracer, log zerolog.Logger) *HotelService {
	if repo == nil {
		panic("nil dependency passed to NewHotelService")
	}
	return &HotelService{repo: repo, purger: purger, tracer: tracerOrDefault(tracer), log: log}
}

// Create validates and stores a new listing.
func (s *HotelService) Create(ctx context.Context, in HotelInput) (model.Hotel, error) {
	ctx, span := s.tracer.Start(ctx, "HotelService.Create")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.City = strings.TrimSpace(in.City)
	switch {
	case in.Name == "" || in.City == "":
		return model.Hotel{}, fmt.Errorf("%w: name and city are required", ErrInvalidHotel)
	case !(in.Price > 0):
		return model.Hotel{}, fmt.Errorf("%w: price must be a positive number", ErrInvalidHotel)
	case len(in.Img.Data) == 0:
		return model.Hotel{}, fmt.Errorf("%w: image is required", ErrInvalidHotel)
	}

	h := model.Hotel{Name: in.Name, City: in.City, Price: in.Price, Img: in.Img}
	if err := s.repo.Create(ctx, &h); err != nil {
		return model.Hotel{}, fail(span, fmt.Errorf("create hotel: %w", err))
	}
	span.SetAttributes(attribute.String("hotel.id", h.ID))
	s.purge(ctx)
	return h, nil
}

func (s *HotelService) List(ctx context.Context) ([]model.Hotel, error) {
	ctx, span := s.tracer.Start(ctx, "HotelService.List")
	defer span.End()

	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, fail(span, fmt.Errorf("list hotels: %w", err))
	}
	return out, nil
}

// Get returns ErrHotelNotFound for unknown or malformed ids.
func (s *HotelService) Get(ctx context.Context, id string) (model.Hotel, error) {
	ctx, span := s.tracer.Start(ctx, "HotelService.Get", trace.WithAttributes(attribute.String("hotel.id", id)))
	defer span.End()

	h, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Hotel{}, ErrHotelNotFound
		}
		return model.Hotel{}, fail(span, fmt.Errorf("get hotel: %w", err))
	}
	return h, nil
}

// Search matches name and city as case-insensitive substrings; empty
// criteria are ignored, so an empty query lists everything.
func (s *HotelService) Search(ctx context.Context, q model.HotelQuery) ([]model.Hotel, error) {
	ctx, span := s.tracer.Start(ctx, "HotelService.Search")
	defer span.End()

	out, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, fail(span, fmt.Errorf("search hotels: %w", err))
	}
	return out, nil
}

// Update replaces only the fields set in p.
func (s *HotelService) Update(ctx context.Context, id string, p model.HotelPatch) (model.Hotel, error) {
	ctx, span := s.tracer.Start(ctx, "HotelService.Update", trace.WithAttributes(attribute.String("hotel.id", id)))
	defer span.End()

	if p.Name != nil {
		n := strings.TrimSpace(*p.Name)
		if n == "" {
			return model.Hotel{}, fmt.Errorf("%w: name must not be empty", ErrInvalidHotel)
		}
		p.Name = &n
	}
	if p.City != nil {
		c := strings.TrimSpace(*p.City)
		if c == "" {
			return model.Hotel{}, fmt.Errorf("%w: city must not be empty", ErrInvalidHotel)
		}
		p.City = &c
	}
	if p.Price != nil && !(*p.Price > 0) {
		return model.Hotel{}, fmt.Errorf("%w: price must be a positive number", ErrInvalidHotel)
	}
	if p.Img != nil && len(p.Img.Data) == 0 {
		p.Img = nil
	}

	h, err := s.repo.Update(ctx, id, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Hotel{}, ErrHotelNotFound
		}
		return model.Hotel{}, fail(span, fmt.Errorf("update hotel: %w", err))
	}
	s.purge(ctx)
	return h, nil
}

func (s *HotelService) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "HotelService.Delete", trace.WithAttributes(attribute.String("hotel.id", id)))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrHotelNotFound
		}
		return fail(span, fmt.Errorf("delete hotel: %w", err))
	}
	s.purge(ctx)
	return nil
}

func (s *HotelService) purge(ctx context.Context) {
	if s.purger == nil {
		return
	}
	if err := s.purger.Purge(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache purge failed")
	}
}
