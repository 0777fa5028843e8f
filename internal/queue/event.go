// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published after a booking is persisted.  It carries
// enough of the hotel to be logged without querying the store.
type BookingCreatedEvent struct {
	BookingID    string  `json:"booking_id"`
	UserID       string  `json:"user_id"`
	HotelID      string  `json:"hotel_id"`
	HotelName    string  `json:"hotel_name"`
	City         string  `json:"city"`
	CheckInDate  string  `json:"check_in_date"`
	CheckOutDate string  `json:"check_out_date"`
	RoomType     string  `json:"room_type"`
	PersonCount  int     `json:"person_count"`
	TotalPrice   float64 `json:"total_price"`
	CreatedAt    string  `json:"created_at"`
}
