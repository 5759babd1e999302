// Package queue defines the booking events exchanged over RabbitMQ and the
// background consumer that records them in the booking log.
package queue

import (
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// BookingQueue is the durable queue booking events are published to.
const BookingQueue = "booking.created"

// BookingCreatedEvent is published after a booking has been committed.  It
// carries enough to log or notify without querying the database.
type BookingCreatedEvent struct {
	BookingID     string    `json:"booking_id"`
	UserID        string    `json:"user_id"`
	RoomID        string    `json:"room_id"`
	HotelID       string    `json:"hotel_id"`
	CheckInDate   time.Time `json:"check_in_date"`
	CheckOutDate  time.Time `json:"check_out_date"`
	Guests        int       `json:"guests"`
	TotalPrice    float64   `json:"total_price"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewBookingCreatedEvent copies the published fields of b.
func NewBookingCreatedEvent(b *model.Booking) BookingCreatedEvent {
	return BookingCreatedEvent{
		BookingID:     b.ID,
		UserID:        b.UserID,
		RoomID:        b.RoomID,
		HotelID:       b.HotelID,
		CheckInDate:   b.CheckInDate,
		CheckOutDate:  b.CheckOutDate,
		Guests:        b.Guests,
		TotalPrice:    b.TotalPrice,
		PaymentMethod: b.PaymentMethod,
		CreatedAt:     b.CreatedAt,
	}
}
