package model

import "time"

// Booking records a stay reserved by a user at a hotel.  TotalPrice is
// derived at creation time from the hotel's nightly price and never
// recomputed.
//
// Fields:
//  ID           – opaque identifier.
//  UserID       – account that made the booking.
//  HotelID      – hotel being booked (may dangle after the hotel is deleted).
//  CheckInDate  – start of the stay.
//  CheckOutDate – end of the stay.
//  RoomType     – free-form room category.
//  PersonCount  – number of guests.
//  TotalPrice   – nightly price × nights.
//  CreatedAt    – creation timestamp.
type Booking struct {
	ID           string    `json:"_id" db:"id"`
	UserID       string    `json:"user" db:"user_id"`
	HotelID      string    `json:"hotel" db:"hotel_id"`
	CheckInDate  time.Time `json:"checkInDate" db:"check_in_date"`
	CheckOutDate time.Time `json:"checkOutDate" db:"check_out_date"`
	RoomType     string    `json:"roomType" db:"room_type"`
	PersonCount  int       `json:"personCount" db:"person_count"`
	TotalPrice   float64   `json:"totalPrice" db:"total_price"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// BookingDetail is the user-facing view returned by my-bookings.
type BookingDetail struct {
	HotelName    string    `json:"hotelName"`
	UserName     string    `json:"userName"`
	TotalPrice   float64   `json:"totalPrice"`
	CheckInDate  time.Time `json:"checkInDate"`
	CheckOutDate time.Time `json:"checkOutDate"`
	PersonCount  int       `json:"personCount"`
	RoomType     string    `json:"roomType"`
}

// AdminBooking is the admin view: the booking with its user and hotel
// resolved.  A reference that no longer resolves is rendered as null.
type AdminBooking struct {
	ID           string        `json:"_id"`
	User         *Profile      `json:"user"`
	Hotel        *HotelSummary `json:"hotel"`
	CheckInDate  time.Time     `json:"checkInDate"`
	CheckOutDate time.Time     `json:"checkOutDate"`
	RoomType     string        `json:"roomType"`
	PersonCount  int           `json:"personCount"`
	TotalPrice   float64       `json:"totalPrice"`
}
