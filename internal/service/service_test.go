package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingCreatedEvent
	err    error
}

func (p *recordingPublisher) PublishBookingCreated(_ context.Context, ev queue.BookingCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type countingPurger struct{ n int }

func (p *countingPurger) Purge(context.Context) error { p.n++; return nil }

type fixture struct {
	store    repository.Store
	users    *AccountService
	admins   *AccountService
	hotels   *HotelService
	bookings *BookingService
	events   *recordingPublisher
	purger   *countingPurger
	tokens   *utils.TokenIssuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	hasher := utils.NewPasswordHasher(4)
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)
	events := &recordingPublisher{}
	purger := &countingPurger{}
	log := zerolog.Nop()
	return &fixture{
		store:    store,
		users:    NewAccountService(model.RoleUser, store.Users, hasher, tokens, nil, log),
		admins:   NewAccountService(model.RoleAdmin, store.Admins, hasher, tokens, nil, log),
		hotels:   NewHotelService(store.Hotels, purger, nil, log),
		bookings: NewBookingService(store.Bookings, store.Hotels, store.Users, events, nil, log),
		events:   events,
		purger:   purger,
		tokens:   tokens,
	}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestComputePrice(t *testing.T) {
	assert.Equal(t, 300.0, ComputePrice(day("2024-01-01"), day("2024-01-04"), 100))
	// partial days round up
	assert.Equal(t, 200.0, ComputePrice(day("2024-01-01"), day("2024-01-02").Add(time.Hour), 100))
	// permissive for inverted ranges
	assert.Equal(t, 0.0, ComputePrice(day("2024-01-01"), day("2024-01-01"), 100))
	assert.Equal(t, -200.0, ComputePrice(day("2024-01-03"), day("2024-01-01"), 100))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-04")
	require.NoError(t, err)
	assert.Equal(t, day("2024-01-04"), d)

	d, err = ParseDate("2024-01-04T12:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("04/01/2024")
	assert.ErrorIs(t, err, ErrInvalidBooking)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.users.Register(ctx, RegisterInput{Username: "alice", Email: "Alice@Example.com", Password: "pw123456"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", a.Email)
	assert.NotEqual(t, "pw123456", a.PasswordHash)

	_, err = f.users.Register(ctx, RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "x"})
	assert.ErrorIs(t, err, repository.ErrEmailExists)

	res, err := f.users.Login(ctx, "alice@example.com", "pw123456")
	require.NoError(t, err)
	id, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, a.ID, id.ID)
	assert.Equal(t, model.RoleUser, id.Role)

	_, err = f.users.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.users.Login(ctx, "nobody@example.com", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// users and admins are separate namespaces
	_, err = f.admins.Login(ctx, "alice@example.com", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.admins.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "pw"})
	require.NoError(t, err)
	res, err = f.admins.Login(ctx, "alice@example.com", "pw")
	require.NoError(t, err)
	id, err = f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, id.Role)
}

func TestHotelValidationAndPurge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	img := model.Image{ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}

	_, err := f.hotels.Create(ctx, HotelInput{Name: "", City: "Paris", Price: 10, Img: img})
	assert.ErrorIs(t, err, ErrInvalidHotel)
	_, err = f.hotels.Create(ctx, HotelInput{Name: "Ritz", City: "Paris", Price: 0, Img: img})
	assert.ErrorIs(t, err, ErrInvalidHotel)
	_, err = f.hotels.Create(ctx, HotelInput{Name: "Ritz", City: "Paris", Price: 10})
	assert.ErrorIs(t, err, ErrInvalidHotel)
	assert.Equal(t, 0, f.purger.n)

	h, err := f.hotels.Create(ctx, HotelInput{Name: " Ritz ", City: "Paris", Price: 10, Img: img})
	require.NoError(t, err)
	assert.Equal(t, "Ritz", h.Name)
	assert.Equal(t, 1, f.purger.n)

	neg := -5.0
	_, err = f.hotels.Update(ctx, h.ID, model.HotelPatch{Price: &neg})
	assert.ErrorIs(t, err, ErrInvalidHotel)

	name := "Ritz Carlton"
	got, err := f.hotels.Update(ctx, h.ID, model.HotelPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ritz Carlton", got.Name)
	assert.Equal(t, 10.0, got.Price)
	assert.Equal(t, img.Data, got.Img.Data)
	assert.Equal(t, 2, f.purger.n)

	require.NoError(t, f.hotels.Delete(ctx, h.ID))
	assert.Equal(t, 3, f.purger.n)
	assert.ErrorIs(t, f.hotels.Delete(ctx, h.ID), ErrHotelNotFound)
	_, err = f.hotels.Get(ctx, h.ID)
	assert.ErrorIs(t, err, ErrHotelNotFound)
	_, err = f.hotels.Update(ctx, h.ID, model.HotelPatch{Name: &name})
	assert.ErrorIs(t, err, ErrHotelNotFound)
}

func TestBookingCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.users.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)
	h, err := f.hotels.Create(ctx, HotelInput{Name: "Savoy", City: "London", Price: 100, Img: model.Image{Data: []byte{1}}})
	require.NoError(t, err)

	in := BookingInput{HotelID: h.ID, CheckIn: day("2024-01-01"), CheckOut: day("2024-01-04"), RoomType: "double", PersonCount: 2}
	b, err := f.bookings.Create(ctx, u.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 300.0, b.TotalPrice)
	assert.Equal(t, u.ID, b.UserID)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, b.ID, f.events.events[0].BookingID)
	assert.Equal(t, "Savoy", f.events.events[0].HotelName)

	bad := in
	bad.CheckOut = in.CheckIn
	_, err = f.bookings.Create(ctx, u.ID, bad)
	assert.ErrorIs(t, err, ErrInvalidStay)

	bad = in
	bad.PersonCount = 0
	_, err = f.bookings.Create(ctx, u.ID, bad)
	assert.ErrorIs(t, err, ErrInvalidBooking)

	bad = in
	bad.HotelID = "missing"
	_, err = f.bookings.Create(ctx, u.ID, bad)
	assert.ErrorIs(t, err, ErrHotelNotFound)
}

func TestBookingSurvivesPublisherFailure(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")
	ctx := context.Background()
	h, err := f.hotels.Create(ctx, HotelInput{Name: "Savoy", City: "London", Price: 50, Img: model.Image{Data: []byte{1}}})
	require.NoError(t, err)

	b, err := f.bookings.Create(ctx, "u1", BookingInput{HotelID: h.ID, CheckIn: day("2024-02-01"), CheckOut: day("2024-02-02"), RoomType: "single", PersonCount: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
}

func TestBookingListsHandleDanglingReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.users.Register(ctx, RegisterInput{Username: "carol", Email: "carol@example.com", Password: "pw"})
	require.NoError(t, err)
	kept, err := f.hotels.Create(ctx, HotelInput{Name: "Kept", City: "Rome", Price: 80, Img: model.Image{Data: []byte{1}}})
	require.NoError(t, err)
	gone, err := f.hotels.Create(ctx, HotelInput{Name: "Gone", City: "Oslo", Price: 90, Img: model.Image{Data: []byte{1}}})
	require.NoError(t, err)

	for _, id := range []string{kept.ID, gone.ID} {
		_, err := f.bookings.Create(ctx, u.ID, BookingInput{HotelID: id, CheckIn: day("2024-03-01"), CheckOut: day("2024-03-03"), RoomType: "suite", PersonCount: 1})
		require.NoError(t, err)
	}
	require.NoError(t, f.hotels.Delete(ctx, gone.ID))

	mine, err := f.bookings.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Kept", mine[0].HotelName)
	assert.Equal(t, UnknownHotel, mine[1].HotelName)
	assert.Equal(t, "carol", mine[1].UserName)
	assert.Equal(t, 180.0, mine[1].TotalPrice)

	all, err := f.bookings.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].Hotel)
	assert.Equal(t, "Rome", all[0].Hotel.City)
	assert.Nil(t, all[1].Hotel)
	require.NotNil(t, all[1].User)
	assert.Equal(t, "carol@example.com", all[1].User.Email)

	empty, err := f.bookings.ListForUser(ctx, "someone-else")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
