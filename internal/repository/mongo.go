package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// Collection names used by the Mongo driver.
const (
	CollUsers    = "users"
	CollAdmins   = "admins"
	CollHotels   = "hotels"
	CollBookings = "bookings"
)

// NewMongoStore wires all repositories on top of db.  Close disconnects
// the client that owns db.
func NewMongoStore(db *mongo.Database) Store {
	return Store{
		Users:    NewMongoAccountRepo(db.Collection(CollUsers)),
		Admins:   NewMongoAccountRepo(db.Collection(CollAdmins)),
		Hotels:   NewMongoHotelRepo(db.Collection(CollHotels)),
		Bookings: NewMongoBookingRepo(db.Collection(CollBookings)),
		Close:    func(ctx context.Context) error { return db.Client().Disconnect(ctx) },
	}
}

// EnsureMongoIndexes creates the unique indexes that back the email and
// username invariants, plus the per-user booking lookup index.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	for _, name := range []string{CollUsers, CollAdmins} {
		_, err := db.Collection(name).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_1")},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("username_1")},
		})
		if err != nil {
			return fmt.Errorf("index %s: %w", name, err)
		}
	}
	_, err := db.Collection(CollBookings).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("index %s: %w", CollBookings, err)
	}
	return nil
}

// ---- accounts ----

type accountDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Username  string             `bson:"username"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d accountDoc) toModel() model.Account {
	return model.Account{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Username:     d.Username,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
	}
}

// MongoAccountRepo stores accounts in one collection.
type MongoAccountRepo struct{ coll *mongo.Collection }

func NewMongoAccountRepo(coll *mongo.Collection) *MongoAccountRepo {
	return &MongoAccountRepo{coll: coll}
}

func (r *MongoAccountRepo) Create(ctx context.Context, a *model.Account) error {
	email := normalizeEmail(a.Email)
	if _, err := r.FindByEmail(ctx, email); err == nil {
		return ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	doc := accountDoc{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Username:  a.Username,
		Password:  a.PasswordHash,
		CreatedAt: a.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "username") {
				return ErrUsernameExists
			}
			return ErrEmailExists
		}
		return err
	}
	a.ID = doc.ID.Hex()
	a.Email = email
	return nil
}

func (r *MongoAccountRepo) FindByEmail(ctx context.Context, email string) (model.Account, error) {
	var doc accountDoc
	err := r.coll.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, err
	}
	return doc.toModel(), nil
}

func (r *MongoAccountRepo) List(ctx context.Context) ([]model.Account, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Account, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

func (r *MongoAccountRepo) Profiles(ctx context.Context, ids []string) (map[string]model.Profile, error) {
	out := map[string]model.Profile{}
	oids := toObjectIDs(ids)
	if len(oids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"username": 1, "email": 1})
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, err
	}
	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		out[d.ID.Hex()] = model.Profile{ID: d.ID.Hex(), Username: d.Username, Email: d.Email}
	}
	return out, nil
}

// ---- hotels ----

type imageDoc struct {
	Data        []byte `bson:"data"`
	ContentType string `bson:"contentType"`
}

type hotelDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Price     float64            `bson:"price"`
	City      string             `bson:"city"`
	Img       imageDoc           `bson:"img"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d hotelDoc) toModel() model.Hotel {
	return model.Hotel{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Price:     d.Price,
		City:      d.City,
		Img:       model.Image{ContentType: d.Img.ContentType, Data: d.Img.Data},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoHotelRepo stores hotels with their image inline.
type MongoHotelRepo struct{ coll *mongo.Collection }

func NewMongoHotelRepo(coll *mongo.Collection) *MongoHotelRepo {
	return &MongoHotelRepo{coll: coll}
}

func (r *MongoHotelRepo) Create(ctx context.Context, h *model.Hotel) error {
	now := time.Now().UTC()
	doc := hotelDoc{
		ID:        primitive.NewObjectID(),
		Name:      h.Name,
		Price:     h.Price,
		City:      h.City,
		Img:       imageDoc{Data: h.Img.Data, ContentType: h.Img.ContentType},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	h.ID = doc.ID.Hex()
	h.CreatedAt, h.UpdatedAt = now, now
	return nil
}

func (r *MongoHotelRepo) List(ctx context.Context) ([]model.Hotel, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoHotelRepo) Get(ctx context.Context, id string) (model.Hotel, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Hotel{}, ErrNotFound
	}
	var doc hotelDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Hotel{}, ErrNotFound
		}
		return model.Hotel{}, err
	}
	return doc.toModel(), nil
}

// Search matches name and city as literal, case-insensitive substrings.
func (r *MongoHotelRepo) Search(ctx context.Context, q model.HotelQuery) ([]model.Hotel, error) {
	filter := bson.M{}
	if s := strings.TrimSpace(q.Name); s != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
	}
	if s := strings.TrimSpace(q.City); s != "" {
		filter["city"] = primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
	}
	return r.find(ctx, filter)
}

func (r *MongoHotelRepo) Update(ctx context.Context, id string, p model.HotelPatch) (model.Hotel, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Hotel{}, ErrNotFound
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.City != nil {
		set["city"] = *p.City
	}
	if p.Img != nil {
		set["img"] = imageDoc{Data: p.Img.Data, ContentType: p.Img.ContentType}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc hotelDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Hotel{}, ErrNotFound
		}
		return model.Hotel{}, err
	}
	return doc.toModel(), nil
}

func (r *MongoHotelRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoHotelRepo) Summaries(ctx context.Context, ids []string) (map[string]model.HotelSummary, error) {
	out := map[string]model.HotelSummary{}
	oids := toObjectIDs(ids)
	if len(oids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"img": 0})
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, err
	}
	var docs []hotelDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		out[d.ID.Hex()] = model.HotelSummary{ID: d.ID.Hex(), Name: d.Name, City: d.City, Price: d.Price}
	}
	return out, nil
}

func (r *MongoHotelRepo) find(ctx context.Context, filter bson.M) ([]model.Hotel, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []hotelDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Hotel, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

// ---- bookings ----

type bookingDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	User         primitive.ObjectID `bson:"user"`
	Hotel        primitive.ObjectID `bson:"hotel"`
	CheckInDate  time.Time          `bson:"checkInDate"`
	CheckOutDate time.Time          `bson:"checkOutDate"`
	RoomType     string             `bson:"roomType"`
	PersonCount  int                `bson:"personCount"`
	TotalPrice   float64            `bson:"totalPrice"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d bookingDoc) toModel() model.Booking {
	return model.Booking{
		ID:           d.ID.Hex(),
		UserID:       d.User.Hex(),
		HotelID:      d.Hotel.Hex(),
		CheckInDate:  d.CheckInDate,
		CheckOutDate: d.CheckOutDate,
		RoomType:     d.RoomType,
		PersonCount:  d.PersonCount,
		TotalPrice:   d.TotalPrice,
		CreatedAt:    d.CreatedAt,
	}
}

// MongoBookingRepo stores bookings with ObjectID references to the user
// and hotel documents.
type MongoBookingRepo struct{ coll *mongo.Collection }

func NewMongoBookingRepo(coll *mongo.Collection) *MongoBookingRepo {
	return &MongoBookingRepo{coll: coll}
}

func (r *MongoBookingRepo) Create(ctx context.Context, b *model.Booking) error {
	userOID, err := primitive.ObjectIDFromHex(b.UserID)
	if err != nil {
		return fmt.Errorf("user id %q: %w", b.UserID, ErrNotFound)
	}
	hotelOID, err := primitive.ObjectIDFromHex(b.HotelID)
	if err != nil {
		return fmt.Errorf("hotel id %q: %w", b.HotelID, ErrNotFound)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	doc := bookingDoc{
		ID:           primitive.NewObjectID(),
		User:         userOID,
		Hotel:        hotelOID,
		CheckInDate:  b.CheckInDate,
		CheckOutDate: b.CheckOutDate,
		RoomType:     b.RoomType,
		PersonCount:  b.PersonCount,
		TotalPrice:   b.TotalPrice,
		CreatedAt:    b.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	b.ID = doc.ID.Hex()
	return nil
}

func (r *MongoBookingRepo) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []model.Booking{}, nil
	}
	return r.find(ctx, bson.M{"user": oid})
}

func (r *MongoBookingRepo) List(ctx context.Context) ([]model.Booking, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoBookingRepo) find(ctx context.Context, filter bson.M) ([]model.Booking, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []bookingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

// toObjectIDs converts hex ids, silently dropping malformed ones.
func toObjectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}
