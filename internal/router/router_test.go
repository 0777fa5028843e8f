package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/service"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

const testSecret = "router-test-secret"

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

type testServer struct {
	e         *echo.Echo
	uploadDir string
}

func newTestServer(t *testing.T, enforceRole bool) *testServer {
	t.Helper()
	store := repository.NewMemoryStore()
	hasher := utils.NewPasswordHasher(4)
	tokens := utils.NewTokenIssuer(testSecret, time.Hour)
	log := zerolog.Nop()
	uploadDir := t.TempDir()

	cfg := config.Config{
		Env:           "test",
		EnforceRole:   enforceRole,
		UploadDir:     uploadDir,
		MaxUploadSize: "1M",
		CORSOrigins:   []string{"*"},
	}
	users := service.NewAccountService(model.RoleUser, store.Users, hasher, tokens, nil, log)
	e := New(Deps{
		Cfg:      cfg,
		Log:      log,
		Tokens:   tokens,
		Users:    users,
		Admins:   service.NewAccountService(model.RoleAdmin, store.Admins, hasher, tokens, nil, log),
		Hotels:   service.NewHotelService(store.Hotels, nil, nil, log),
		Bookings: service.NewBookingService(store.Bookings, store.Hotels, store.Users, nil, nil, log),
	})
	return &testServer{e: e, uploadDir: uploadDir}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) json(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	return s.do(req)
}

func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="myImage"; filename="photo.png"`)
		h.Set("Content-Type", "image/png")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (s *testServer) upload(t *testing.T, fields map[string]string, image []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, fields, image)
	req := httptest.NewRequest(http.MethodPost, "/api/uploadphoto", body)
	req.Header.Set(echo.HeaderContentType, ct)
	return s.do(req)
}

func (s *testServer) hotels(t *testing.T, path string) []model.Hotel {
	t.Helper()
	rec := s.do(httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var out []model.Hotel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *testServer) register(t *testing.T, prefix, username, email, password string) {
	t.Helper()
	rec := s.json(http.MethodPost, prefix+"/register", "", echo.Map{"username": username, "email": email, "password": password})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *testServer) login(t *testing.T, prefix, email, password string) string {
	t.Helper()
	rec := s.json(http.MethodPost, prefix+"/login", "", echo.Map{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Email    string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	assert.Equal(t, strings.ToLower(email), out.User.Email)
	return out.Token
}

func bodyMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	s, _ := m["message"].(string)
	return s
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, true)
	rec := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUploadThenFetchRoundTrip(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.upload(t, map[string]string{"name": "Ritz", "price": "250.5", "city": "Paris"}, pngBytes)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Uploading successful", bodyMessage(t, rec))

	list := s.hotels(t, "/api/bookings")
	require.Len(t, list, 1)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/hotels/"+list[0].ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Hotel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Ritz", got.Name)
	assert.Equal(t, 250.5, got.Price)
	assert.Equal(t, "Paris", got.City)
	assert.Equal(t, "image/png", got.Img.ContentType)
	assert.Equal(t, pngBytes, got.Img.Data)

	// scratch files never outlive the request
	entries, err := os.ReadDir(s.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadValidation(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.upload(t, map[string]string{"name": "Ritz", "price": "10", "city": "Paris"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please upload a file", bodyMessage(t, rec))

	rec = s.upload(t, map[string]string{"name": "Ritz", "city": "Paris"}, pngBytes)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.upload(t, map[string]string{"name": "Ritz", "price": "abc", "city": "Paris"}, pngBytes)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.upload(t, map[string]string{"name": "Ritz", "price": "-3", "city": "Paris"}, pngBytes)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, s.hotels(t, "/api/bookings"))
}

func TestSearchByCityIsCaseInsensitive(t *testing.T) {
	s := newTestServer(t, true)
	for _, h := range []struct{ name, city string }{
		{"Ritz", "Paris"}, {"Le Petit", "Parma"}, {"Savoy", "London"},
	} {
		rec := s.upload(t, map[string]string{"name": h.name, "price": "100", "city": h.city}, pngBytes)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	got := s.hotels(t, "/api/search?name=&city=PAR")
	require.Len(t, got, 2)
	for _, h := range got {
		assert.Contains(t, strings.ToLower(h.City), "par")
	}
	assert.Len(t, s.hotels(t, "/api/search"), 3)
	assert.Len(t, s.hotels(t, "/api/search?name=sav"), 1)
	assert.Empty(t, s.hotels(t, "/api/search?city=.*"))
}

func TestUpdateAndDeleteHotel(t *testing.T) {
	s := newTestServer(t, true)
	require.Equal(t, http.StatusOK, s.upload(t, map[string]string{"name": "Ritz", "price": "100", "city": "Paris"}, pngBytes).Code)
	id := s.hotels(t, "/api/bookings")[0].ID

	body, ct := multipartBody(t, map[string]string{"price": "120"}, []byte("GIF89a"))
	req := httptest.NewRequest(http.MethodPut, "/api/hotels/"+id, body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := s.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Message string      `json:"message"`
		Hotel   model.Hotel `json:"hotel"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Hotel updated successfully", resp.Message)
	assert.Equal(t, "Ritz", resp.Hotel.Name)
	assert.Equal(t, 120.0, resp.Hotel.Price)
	assert.Equal(t, []byte("GIF89a"), resp.Hotel.Img.Data)

	rec = s.json(http.MethodPut, "/api/hotels/"+id, "", echo.Map{"city": "Nice"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Nice", resp.Hotel.City)
	assert.Equal(t, 120.0, resp.Hotel.Price)

	rec = s.json(http.MethodPut, "/api/hotels/missing", "", echo.Map{"city": "Nice"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodDelete, "/api/hotels/"+id, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hotel deleted successfully", bodyMessage(t, rec))

	rec = s.do(httptest.NewRequest(http.MethodDelete, "/api/hotels/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Hotel not found", bodyMessage(t, rec))

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/hotels/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t, true)
	s.register(t, "/api", "alice", "alice@example.com", "secret1")

	rec := s.json(http.MethodPost, "/api/register", "", echo.Map{"username": "alice2", "email": "alice@example.com", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User with this email already exists", bodyMessage(t, rec))

	rec = s.json(http.MethodPost, "/api/register", "", echo.Map{"username": "bob", "email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.json(http.MethodPost, "/api/admin/register", "", echo.Map{"username": "root", "email": "root@example.com", "password": "x"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Admin registered successfully", bodyMessage(t, rec))
	adminTok := s.login(t, "/api/admin", "root@example.com", "x")

	rec = s.json(http.MethodGet, "/api/admin/users", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0]["username"])
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	s := newTestServer(t, true)
	s.register(t, "/api", "alice", "alice@example.com", "secret1")

	wrongPw := s.json(http.MethodPost, "/api/login", "", echo.Map{"email": "alice@example.com", "password": "nope"})
	noUser := s.json(http.MethodPost, "/api/login", "", echo.Map{"email": "ghost@example.com", "password": "secret1"})

	assert.Equal(t, http.StatusBadRequest, wrongPw.Code)
	assert.Equal(t, wrongPw.Code, noUser.Code)
	assert.Equal(t, wrongPw.Body.Bytes(), noUser.Body.Bytes())
	assert.Equal(t, "Invalid email or password", bodyMessage(t, wrongPw))

	rec := s.json(http.MethodPost, "/api/logout", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", bodyMessage(t, rec))
}

func TestExpiredTokenIsRejected(t *testing.T) {
	s := newTestServer(t, true)
	s.register(t, "/api", "alice", "alice@example.com", "secret1")
	live := s.login(t, "/api", "alice@example.com", "secret1")

	id, err := utils.NewTokenIssuer(testSecret, time.Hour).Verify(live)
	require.NoError(t, err)
	stale, err := utils.NewTokenIssuer(testSecret, -time.Minute).Issue(id)
	require.NoError(t, err)

	rec := s.json(http.MethodGet, "/api/my-bookings", stale.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token, authorization denied", bodyMessage(t, rec))

	rec = s.json(http.MethodGet, "/api/my-bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No token provided, authorization denied", bodyMessage(t, rec))

	rec = s.json(http.MethodGet, "/api/my-bookings", live, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestBookingFlowAndDanglingHotel(t *testing.T) {
	s := newTestServer(t, true)
	require.Equal(t, http.StatusOK, s.upload(t, map[string]string{"name": "Savoy", "price": "100", "city": "London"}, pngBytes).Code)
	hotelID := s.hotels(t, "/api/bookings")[0].ID

	s.register(t, "/api", "bob", "bob@example.com", "pw")
	tok := s.login(t, "/api", "bob@example.com", "pw")

	rec := s.json(http.MethodPost, "/api/book", tok, echo.Map{
		"hotelId": hotelID, "checkInDate": "2024-01-01", "checkOutDate": "2024-01-04",
		"roomType": "double", "personCount": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var booked struct {
		Message string        `json:"message"`
		Booking model.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booked))
	assert.Equal(t, "Booking successful", booked.Message)
	assert.Equal(t, 300.0, booked.Booking.TotalPrice)
	assert.Equal(t, hotelID, booked.Booking.HotelID)

	rec = s.json(http.MethodPost, "/api/book", tok, echo.Map{
		"hotelId": "missing", "checkInDate": "2024-01-01", "checkOutDate": "2024-01-04",
		"roomType": "double", "personCount": 2,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Hotel not found", bodyMessage(t, rec))

	rec = s.json(http.MethodPost, "/api/book", tok, echo.Map{
		"hotelId": hotelID, "checkInDate": "2024-01-04", "checkOutDate": "2024-01-04",
		"roomType": "double", "personCount": 2,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodDelete, "/api/hotels/"+hotelID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.json(http.MethodGet, "/api/my-bookings", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []model.BookingDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "Unknown Hotel", mine[0].HotelName)
	assert.Equal(t, "bob", mine[0].UserName)
	assert.Equal(t, 300.0, mine[0].TotalPrice)

	s.register(t, "/api/admin", "root", "root@example.com", "pw")
	adminTok := s.login(t, "/api/admin", "root@example.com", "pw")
	rec = s.json(http.MethodGet, "/api/admin/bookings", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 1)
	assert.Nil(t, all[0]["hotel"])
	user, ok := all[0]["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bob", user["username"])
	assert.Equal(t, "bob@example.com", user["email"])
}

func TestRoleEnforcement(t *testing.T) {
	s := newTestServer(t, true)
	s.register(t, "/api", "bob", "bob@example.com", "pw")
	userTok := s.login(t, "/api", "bob@example.com", "pw")
	s.register(t, "/api/admin", "root", "root@example.com", "pw")
	adminTok := s.login(t, "/api/admin", "root@example.com", "pw")

	assert.Equal(t, http.StatusForbidden, s.json(http.MethodGet, "/api/admin/users", userTok, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.json(http.MethodGet, "/api/my-bookings", adminTok, nil).Code)
	assert.Equal(t, http.StatusOK, s.json(http.MethodGet, "/api/admin/users", adminTok, nil).Code)

	legacy := newTestServer(t, false)
	legacy.register(t, "/api", "bob", "bob@example.com", "pw")
	tok := legacy.login(t, "/api", "bob@example.com", "pw")
	assert.Equal(t, http.StatusOK, legacy.json(http.MethodGet, "/api/admin/users", tok, nil).Code)
}
