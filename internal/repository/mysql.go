package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// NewMySQLStore wires all repositories on top of db.  The schema is created
// by database.Migrate.
func NewMySQLStore(db *sqlx.DB) Store {
	return Store{
		Users:    NewMySQLAccountRepo(db, "users"),
		Admins:   NewMySQLAccountRepo(db, "admins"),
		Hotels:   NewMySQLHotelRepo(db),
		Bookings: NewMySQLBookingRepo(db),
		Close:    func(context.Context) error { return db.Close() },
	}
}

// MySQLAccountRepo stores accounts in one table (users or admins).
type MySQLAccountRepo struct {
	DB    *sqlx.DB
	table string
}

func NewMySQLAccountRepo(db *sqlx.DB, table string) *MySQLAccountRepo {
	return &MySQLAccountRepo{DB: db, table: table}
}

// Create inserts a with a fresh UUID.
func (r *MySQLAccountRepo) Create(ctx context.Context, a *model.Account) error {
	a.Email = normalizeEmail(a.Email)
	a.ID = uuid.NewString()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	q := fmt.Sprintf("INSERT INTO %s (id, email, username, password_hash, created_at) VALUES (:id, :email, :username, :password_hash, :created_at)", r.table)
	if _, err := r.DB.NamedExecContext(ctx, q, a); err != nil {
		a.ID = ""
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			if strings.Contains(me.Message, "username") {
				return ErrUsernameExists
			}
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// FindByEmail fetches an account by normalized email.
func (r *MySQLAccountRepo) FindByEmail(ctx context.Context, email string) (model.Account, error) {
	var a model.Account
	q := fmt.Sprintf("SELECT id, email, username, password_hash, created_at FROM %s WHERE email=? LIMIT 1", r.table)
	if err := r.DB.GetContext(ctx, &a, q, normalizeEmail(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, err
	}
	return a, nil
}

func (r *MySQLAccountRepo) List(ctx context.Context) ([]model.Account, error) {
	out := []model.Account{}
	q := fmt.Sprintf("SELECT id, email, username, password_hash, created_at FROM %s ORDER BY created_at, id", r.table)
	if err := r.DB.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MySQLAccountRepo) Profiles(ctx context.Context, ids []string) (map[string]model.Profile, error) {
	out := map[string]model.Profile{}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(fmt.Sprintf("SELECT id, username, email FROM %s WHERE id IN (?)", r.table), ids)
	if err != nil {
		return nil, err
	}
	var rows []model.Profile
	if err := r.DB.SelectContext(ctx, &rows, r.DB.Rebind(q), args...); err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// hotelRow mirrors the 'hotels' table.
type hotelRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Price     float64   `db:"price"`
	City      string    `db:"city"`
	ImgType   string    `db:"img_content_type"`
	ImgData   []byte    `db:"img_data"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (h hotelRow) toModel() model.Hotel {
	return model.Hotel{
		ID:        h.ID,
		Name:      h.Name,
		Price:     h.Price,
		City:      h.City,
		Img:       model.Image{ContentType: h.ImgType, Data: h.ImgData},
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

const hotelCols = "id, name, price, city, img_content_type, img_data, created_at, updated_at"

// MySQLHotelRepo stores hotels with the image in a BLOB column.
type MySQLHotelRepo struct{ DB *sqlx.DB }

func NewMySQLHotelRepo(db *sqlx.DB) *MySQLHotelRepo { return &MySQLHotelRepo{DB: db} }

func (r *MySQLHotelRepo) Create(ctx context.Context, h *model.Hotel) error {
	now := time.Now().UTC()
	row := hotelRow{
		ID:        uuid.NewString(),
		Name:      h.Name,
		Price:     h.Price,
		City:      h.City,
		ImgType:   h.Img.ContentType,
		ImgData:   h.Img.Data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := r.DB.NamedExecContext(ctx,
		"INSERT INTO hotels ("+hotelCols+") VALUES (:id, :name, :price, :city, :img_content_type, :img_data, :created_at, :updated_at)",
		row)
	if err != nil {
		return err
	}
	h.ID = row.ID
	h.CreatedAt, h.UpdatedAt = now, now
	return nil
}

func (r *MySQLHotelRepo) List(ctx context.Context) ([]model.Hotel, error) {
	return r.Search(ctx, model.HotelQuery{})
}

func (r *MySQLHotelRepo) Get(ctx context.Context, id string) (model.Hotel, error) {
	var row hotelRow
	err := r.DB.GetContext(ctx, &row, "SELECT "+hotelCols+" FROM hotels WHERE id=? LIMIT 1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Hotel{}, ErrNotFound
		}
		return model.Hotel{}, err
	}
	return row.toModel(), nil
}

// Search matches name and city as literal, case-insensitive substrings.
func (r *MySQLHotelRepo) Search(ctx context.Context, q model.HotelQuery) ([]model.Hotel, error) {
	var (
		where []string
		args  []any
	)
	if s := strings.TrimSpace(q.Name); s != "" {
		where = append(where, `LOWER(name) LIKE ? ESCAPE '\\'`)
		args = append(args, likePattern(s))
	}
	if s := strings.TrimSpace(q.City); s != "" {
		where = append(where, `LOWER(city) LIKE ? ESCAPE '\\'`)
		args = append(args, likePattern(s))
	}
	query := "SELECT " + hotelCols + " FROM hotels"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	var rows []hotelRow
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]model.Hotel, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (r *MySQLHotelRepo) Update(ctx context.Context, id string, p model.HotelPatch) (model.Hotel, error) {
	sets := []string{"updated_at=?"}
	args := []any{time.Now().UTC()}
	if p.Name != nil {
		sets, args = append(sets, "name=?"), append(args, *p.Name)
	}
	if p.Price != nil {
		sets, args = append(sets, "price=?"), append(args, *p.Price)
	}
	if p.City != nil {
		sets, args = append(sets, "city=?"), append(args, *p.City)
	}
	if p.Img != nil {
		sets = append(sets, "img_content_type=?", "img_data=?")
		args = append(args, p.Img.ContentType, p.Img.Data)
	}
	args = append(args, id)

	// The DSN sets clientFoundRows, so zero affected rows means no such id.
	res, err := r.DB.ExecContext(ctx, "UPDATE hotels SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		return model.Hotel{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Hotel{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *MySQLHotelRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM hotels WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MySQLHotelRepo) Summaries(ctx context.Context, ids []string) (map[string]model.HotelSummary, error) {
	out := map[string]model.HotelSummary{}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In("SELECT id, name, city, price FROM hotels WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	var rows []model.HotelSummary
	if err := r.DB.SelectContext(ctx, &rows, r.DB.Rebind(q), args...); err != nil {
		return nil, err
	}
	for _, s := range rows {
		out[s.ID] = s
	}
	return out, nil
}

const bookingCols = "id, user_id, hotel_id, check_in_date, check_out_date, room_type, person_count, total_price, created_at"

// MySQLBookingRepo stores bookings.  user_id and hotel_id carry no foreign
// keys so a deleted hotel leaves its bookings in place.
type MySQLBookingRepo struct{ DB *sqlx.DB }

func NewMySQLBookingRepo(db *sqlx.DB) *MySQLBookingRepo { return &MySQLBookingRepo{DB: db} }

func (r *MySQLBookingRepo) Create(ctx context.Context, b *model.Booking) error {
	b.ID = uuid.NewString()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	_, err := r.DB.NamedExecContext(ctx,
		"INSERT INTO bookings ("+bookingCols+") VALUES (:id, :user_id, :hotel_id, :check_in_date, :check_out_date, :room_type, :person_count, :total_price, :created_at)",
		b)
	if err != nil {
		b.ID = ""
		return err
	}
	return nil
}

func (r *MySQLBookingRepo) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	out := []model.Booking{}
	err := r.DB.SelectContext(ctx, &out,
		"SELECT "+bookingCols+" FROM bookings WHERE user_id=? ORDER BY created_at, id", userID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MySQLBookingRepo) List(ctx context.Context) ([]model.Booking, error) {
	out := []model.Booking{}
	if err := r.DB.SelectContext(ctx, &out, "SELECT "+bookingCols+" FROM bookings ORDER BY created_at, id"); err != nil {
		return nil, err
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern lower-cases s and wraps it for a literal substring LIKE.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
