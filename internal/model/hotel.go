package model

import "time"

// Image is a hotel photo.  Data is kept as raw bytes; encoding/json renders
// it as a base64 string, which is the transport format of the API.
type Image struct {
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// Hotel is a catalog listing.
type Hotel struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	City      string    `json:"city"`
	Img       Image     `json:"img"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HotelSummary is the image-less projection used for booking joins.
type HotelSummary struct {
	ID    string  `json:"_id" db:"id"`
	Name  string  `json:"name" db:"name"`
	City  string  `json:"city" db:"city"`
	Price float64 `json:"price" db:"price"`
}

// HotelQuery filters the catalog.  Empty fields are ignored; non-empty
// fields match as case-insensitive substrings.
type HotelQuery struct {
	Name string
	City string
}

// HotelPatch carries a partial update.  Nil fields are left untouched.
type HotelPatch struct {
	Name  *string
	Price *float64
	City  *string
	Img   *Image
}

// Empty reports whether the patch changes nothing.
func (p HotelPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.City == nil && p.Img == nil
}

// Apply copies the set fields of p onto h.
func (p HotelPatch) Apply(h *Hotel) {
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.Price != nil {
		h.Price = *p.Price
	}
	if p.City != nil {
		h.City = *p.City
	}
	if p.Img != nil {
		h.Img = *p.Img
	}
}
