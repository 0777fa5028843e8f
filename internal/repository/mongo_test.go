package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/hotel-booking/internal/database"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// MongoStoreSuite runs against a live MongoDB pointed to by MONGO_TEST_URI.
type MongoStoreSuite struct {
	suite.Suite
	db    *mongo.Database
	store repository.Store
}

func (s *MongoStoreSuite) SetupSuite() {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" || testing.Short() {
		s.T().Skip("MONGO_TEST_URI not set")
	}
	name := fmt.Sprintf("hotel_booking_test_%d", time.Now().UnixNano())
	db, err := database.ConnectMongo(context.Background(), uri, name)
	s.Require().NoError(err, "Failed to connect to MongoDB")
	s.Require().NoError(repository.EnsureMongoIndexes(context.Background(), db))
	s.db = db
	s.store = repository.NewMongoStore(db)
}

func (s *MongoStoreSuite) TearDownSuite() {
	if s.db == nil {
		return
	}
	ctx := context.Background()
	_ = s.db.Drop(ctx)
	_ = s.store.Close(ctx)
}

func (s *MongoStoreSuite) TestDuplicateEmail() {
	ctx := context.Background()
	s.Require().NoError(s.store.Users.Create(ctx, &model.Account{Email: "dup@example.com", Username: "dup1", PasswordHash: "x"}))
	err := s.store.Users.Create(ctx, &model.Account{Email: "DUP@example.com", Username: "dup2", PasswordHash: "x"})
	s.ErrorIs(err, repository.ErrEmailExists)

	// admins live in their own namespace
	s.NoError(s.store.Admins.Create(ctx, &model.Account{Email: "dup@example.com", Username: "dup1", PasswordHash: "x"}))
}

func (s *MongoStoreSuite) TestHotelLifecycle() {
	ctx := context.Background()
	h := &model.Hotel{Name: "Hotel (Paris)", City: "Paris", Price: 120, Img: model.Image{ContentType: "image/jpeg", Data: []byte("jpeg")}}
	s.Require().NoError(s.store.Hotels.Create(ctx, h))

	got, err := s.store.Hotels.Get(ctx, h.ID)
	s.Require().NoError(err)
	s.Equal([]byte("jpeg"), got.Img.Data)

	found, err := s.store.Hotels.Search(ctx, model.HotelQuery{Name: "(paris"})
	s.Require().NoError(err)
	s.Len(found, 1)

	city := "Lyon"
	updated, err := s.store.Hotels.Update(ctx, h.ID, model.HotelPatch{City: &city})
	s.Require().NoError(err)
	s.Equal("Lyon", updated.City)
	s.Equal("Hotel (Paris)", updated.Name)

	s.Require().NoError(s.store.Hotels.Delete(ctx, h.ID))
	s.ErrorIs(s.store.Hotels.Delete(ctx, h.ID), repository.ErrNotFound)
	_, err = s.store.Hotels.Get(ctx, "not-an-object-id")
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *MongoStoreSuite) TestBookingsKeepDanglingHotel() {
	ctx := context.Background()
	u := &model.Account{Email: "guest@example.com", Username: "guest", PasswordHash: "x"}
	s.Require().NoError(s.store.Users.Create(ctx, u))
	h := &model.Hotel{Name: "Gone", City: "Nowhere", Price: 10}
	s.Require().NoError(s.store.Hotels.Create(ctx, h))

	b := &model.Booking{UserID: u.ID, HotelID: h.ID, RoomType: "single", PersonCount: 1, TotalPrice: 10}
	s.Require().NoError(s.store.Bookings.Create(ctx, b))
	s.Require().NoError(s.store.Hotels.Delete(ctx, h.ID))

	mine, err := s.store.Bookings.ListByUser(ctx, u.ID)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(h.ID, mine[0].HotelID)

	sums, err := s.store.Hotels.Summaries(ctx, []string{h.ID})
	s.Require().NoError(err)
	s.Empty(sums)
}

func TestMongoStoreSuite(t *testing.T) {
	suite.Run(t, new(MongoStoreSuite))
}
