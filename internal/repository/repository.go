package repository

import (
	"context"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// AccountRepository persists accounts of one namespace (users or admins).
type AccountRepository interface {
	// Create inserts a and sets a.ID.  Duplicate email or username yields
	// ErrEmailExists / ErrUsernameExists.
	Create(ctx context.Context, a *model.Account) error
	// FindByEmail looks up an account by normalized email.
	FindByEmail(ctx context.Context, email string) (model.Account, error)
	List(ctx context.Context) ([]model.Account, error)
	// Profiles resolves the given ids; ids that do not resolve are absent
	// from the result map.
	Profiles(ctx context.Context, ids []string) (map[string]model.Profile, error)
}

// HotelRepository persists catalog listings.
type HotelRepository interface {
	Create(ctx context.Context, h *model.Hotel) error
	List(ctx context.Context) ([]model.Hotel, error)
	Get(ctx context.Context, id string) (model.Hotel, error)
	Search(ctx context.Context, q model.HotelQuery) ([]model.Hotel, error)
	// Update applies p and returns the updated hotel.
	Update(ctx context.Context, id string, p model.HotelPatch) (model.Hotel, error)
	Delete(ctx context.Context, id string) error
	// Summaries resolves the given ids without loading images.
	Summaries(ctx context.Context, ids []string) (map[string]model.HotelSummary, error)
}

// BookingRepository persists bookings.  Bookings are append-only.
type BookingRepository interface {
	Create(ctx context.Context, b *model.Booking) error
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	List(ctx context.Context) ([]model.Booking, error)
}

// Store bundles the repositories of one driver.
type Store struct {
	Users    AccountRepository
	Admins   AccountRepository
	Hotels   HotelRepository
	Bookings BookingRepository

	// Close releases the underlying connection.  Never nil.
	Close func(ctx context.Context) error
}

// uniqueIDs drops empty and duplicate ids, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
