package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/service"
)

// imageField is the multipart field carrying the hotel photo.
const imageField = "myImage"

// HotelHandler serves the catalog endpoints.
type HotelHandler struct {
	svc       *service.HotelService
	uploadDir string
	log       zerolog.Logger
}

func NewHotelHandler(svc *service.HotelService, uploadDir string, log zerolog.Logger) *HotelHandler {
	if svc == nil {
		panic("nil HotelService passed to NewHotelHandler")
	}
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &HotelHandler{svc: svc, uploadDir: uploadDir, log: log}
}

// Upload creates a hotel from a multipart form: myImage plus name, price
// and city.
func (h *HotelHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile(imageField)
	if err != nil {
		return message(c, http.StatusBadRequest, "Please upload a file")
	}
	name := strings.TrimSpace(c.FormValue("name"))
	priceRaw := strings.TrimSpace(c.FormValue("price"))
	city := strings.TrimSpace(c.FormValue("city"))
	if name == "" || priceRaw == "" || city == "" {
		return message(c, http.StatusBadRequest, "name, price and city are required")
	}
	price, err := parsePrice(priceRaw)
	if err != nil {
		return message(c, http.StatusBadRequest, err.Error())
	}

	img, err := h.readImage(fh)
	if err != nil {
		return serverError(c, h.log, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := h.svc.Create(ctx, service.HotelInput{Name: name, City: city, Price: price, Img: img}); err != nil {
		if errors.Is(err, service.ErrInvalidHotel) {
			return message(c, http.StatusBadRequest, err.Error())
		}
		return serverError(c, h.log, err)
	}
	return message(c, http.StatusOK, "Uploading successful")
}

// List returns every hotel with its image base64 encoded.
func (h *HotelHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hotels, err := h.svc.List(ctx)
	if err != nil {
		return serverError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, hotels)
}

func (h *HotelHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hotel, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrHotelNotFound) {
			return message(c, http.StatusNotFound, "Hotel not found")
		}
		return serverError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, hotel)
}

// Search filters by the name and city query parameters.
func (h *HotelHandler) Search(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hotels, err := h.svc.Search(ctx, model.HotelQuery{
		Name: c.QueryParam("name"),
		City: c.QueryParam("city"),
	})
	if err != nil {
		return serverError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, hotels)
}

// Update accepts multipart (optionally with a new myImage), urlencoded or
// JSON bodies.  Absent or empty fields keep their current value.
func (h *HotelHandler) Update(c echo.Context) error {
	var patch model.HotelPatch

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		var req struct {
			Name  *string  `json:"name"`
			Price *float64 `json:"price"`
			City  *string  `json:"city"`
		}
		if err := c.Bind(&req); err != nil {
			return message(c, http.StatusBadRequest, "Invalid request body")
		}
		if req.Name != nil && *req.Name != "" {
			patch.Name = req.Name
		}
		if req.City != nil && *req.City != "" {
			patch.City = req.City
		}
		patch.Price = req.Price
	} else {
		if v := strings.TrimSpace(c.FormValue("name")); v != "" {
			patch.Name = &v
		}
		if v := strings.TrimSpace(c.FormValue("city")); v != "" {
			patch.City = &v
		}
		if v := strings.TrimSpace(c.FormValue("price")); v != "" {
			price, err := parsePrice(v)
			if err != nil {
				return message(c, http.StatusBadRequest, err.Error())
			}
			patch.Price = &price
		}
		if fh, err := c.FormFile(imageField); err == nil {
			img, err := h.readImage(fh)
			if err != nil {
				return serverError(c, h.log, err)
			}
			patch.Img = &img
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	hotel, err := h.svc.Update(ctx, c.Param("id"), patch)
	switch {
	case errors.Is(err, service.ErrHotelNotFound):
		return message(c, http.StatusNotFound, "Hotel not found")
	case errors.Is(err, service.ErrInvalidHotel):
		return message(c, http.StatusBadRequest, err.Error())
	case err != nil:
		return serverError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Hotel updated successfully", "hotel": hotel})
}

func (h *HotelHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrHotelNotFound) {
			return message(c, http.StatusNotFound, "Hotel not found")
		}
		return serverError(c, h.log, err)
	}
	return message(c, http.StatusOK, "Hotel deleted successfully")
}

// readImage spools the upload to a scratch file in uploadDir, reads it back
// and removes the file on every path.
func (h *HotelHandler) readImage(fh *multipart.FileHeader) (model.Image, error) {
	src, err := fh.Open()
	if err != nil {
		return model.Image{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return model.Image{}, fmt.Errorf("mkdir upload dir: %w", err)
	}
	tmp, err := os.CreateTemp(h.uploadDir, imageField+"-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return model.Image{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return model.Image{}, fmt.Errorf("write temp file: %w", err)
	}
	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		return model.Image{}, fmt.Errorf("read temp file: %w", err)
	}

	ct := fh.Header.Get(echo.HeaderContentType)
	if ct == "" || ct == echo.MIMEOctetStream {
		ct = http.DetectContentType(data)
	}
	return model.Image{ContentType: ct, Data: data}, nil
}

func parsePrice(s string) (float64, error) {
	p, err := strconv.ParseFloat(s, 64)
	if err != nil || !(p > 0) {
		return 0, errors.New("price must be a positive number")
	}
	return p, nil
}
