package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// NewMemoryStore returns a Store kept entirely in process memory.  It is
// used for local development (STORE_DRIVER=memory) and by the test suites.
func NewMemoryStore() Store {
	return Store{
		Users:    NewMemoryAccountRepo(),
		Admins:   NewMemoryAccountRepo(),
		Hotels:   NewMemoryHotelRepo(),
		Bookings: NewMemoryBookingRepo(),
		Close:    func(context.Context) error { return nil },
	}
}

// MemoryAccountRepo is a mutex-guarded AccountRepository.
type MemoryAccountRepo struct {
	mu    sync.RWMutex
	byID  map[string]model.Account
	order []string
}

func NewMemoryAccountRepo() *MemoryAccountRepo {
	return &MemoryAccountRepo{byID: map[string]model.Account{}}
}

func (r *MemoryAccountRepo) Create(_ context.Context, a *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := normalizeEmail(a.Email)
	for _, existing := range r.byID {
		if existing.Email == email {
			return ErrEmailExists
		}
		if existing.Username == a.Username {
			return ErrUsernameExists
		}
	}
	a.ID = uuid.NewString()
	a.Email = email
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	r.byID[a.ID] = *a
	r.order = append(r.order, a.ID)
	return nil
}

func (r *MemoryAccountRepo) FindByEmail(_ context.Context, email string) (model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = normalizeEmail(email)
	for _, a := range r.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return model.Account{}, ErrNotFound
}

func (r *MemoryAccountRepo) List(_ context.Context) ([]model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Account, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *MemoryAccountRepo) Profiles(_ context.Context, ids []string) (map[string]model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]model.Profile, len(ids))
	for _, id := range uniqueIDs(ids) {
		if a, ok := r.byID[id]; ok {
			out[id] = model.Profile{ID: a.ID, Username: a.Username, Email: a.Email}
		}
	}
	return out, nil
}

// MemoryHotelRepo is a mutex-guarded HotelRepository.
type MemoryHotelRepo struct {
	mu    sync.RWMutex
	byID  map[string]model.Hotel
	order []string
}

func NewMemoryHotelRepo() *MemoryHotelRepo {
	return &MemoryHotelRepo{byID: map[string]model.Hotel{}}
}

func (r *MemoryHotelRepo) Create(_ context.Context, h *model.Hotel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	h.ID = uuid.NewString()
	h.CreatedAt, h.UpdatedAt = now, now
	r.byID[h.ID] = cloneHotel(*h)
	r.order = append(r.order, h.ID)
	return nil
}

func (r *MemoryHotelRepo) List(ctx context.Context) ([]model.Hotel, error) {
	return r.Search(ctx, model.HotelQuery{})
}

func (r *MemoryHotelRepo) Get(_ context.Context, id string) (model.Hotel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byID[id]
	if !ok {
		return model.Hotel{}, ErrNotFound
	}
	return cloneHotel(h), nil
}

func (r *MemoryHotelRepo) Search(_ context.Context, q model.HotelQuery) ([]model.Hotel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name := strings.ToLower(strings.TrimSpace(q.Name))
	city := strings.ToLower(strings.TrimSpace(q.City))
	out := make([]model.Hotel, 0, len(r.order))
	for _, id := range r.order {
		h, ok := r.byID[id]
		if !ok {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(h.Name), name) {
			continue
		}
		if city != "" && !strings.Contains(strings.ToLower(h.City), city) {
			continue
		}
		out = append(out, cloneHotel(h))
	}
	return out, nil
}

func (r *MemoryHotelRepo) Update(_ context.Context, id string, p model.HotelPatch) (model.Hotel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.byID[id]
	if !ok {
		return model.Hotel{}, ErrNotFound
	}
	p.Apply(&h)
	h.UpdatedAt = time.Now().UTC()
	h = cloneHotel(h)
	r.byID[id] = h
	return cloneHotel(h), nil
}

func (r *MemoryHotelRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryHotelRepo) Summaries(_ context.Context, ids []string) (map[string]model.HotelSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]model.HotelSummary, len(ids))
	for _, id := range uniqueIDs(ids) {
		if h, ok := r.byID[id]; ok {
			out[id] = model.HotelSummary{ID: h.ID, Name: h.Name, City: h.City, Price: h.Price}
		}
	}
	return out, nil
}

// MemoryBookingRepo is a mutex-guarded BookingRepository.
type MemoryBookingRepo struct {
	mu       sync.RWMutex
	bookings []model.Booking
}

func NewMemoryBookingRepo() *MemoryBookingRepo { return &MemoryBookingRepo{} }

func (r *MemoryBookingRepo) Create(_ context.Context, b *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = uuid.NewString()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	r.bookings = append(r.bookings, *b)
	return nil
}

func (r *MemoryBookingRepo) ListByUser(_ context.Context, userID string) ([]model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Booking{}
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *MemoryBookingRepo) List(_ context.Context) ([]model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Booking, len(r.bookings))
	copy(out, r.bookings)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func cloneHotel(h model.Hotel) model.Hotel {
	if h.Img.Data != nil {
		h.Img.Data = append([]byte(nil), h.Img.Data...)
	}
	return h
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
