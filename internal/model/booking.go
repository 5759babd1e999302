package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// DefaultPaymentMethod is recorded on every booking until online payment
// exists.
const DefaultPaymentMethod = "Pay At Hotel"

// Booking records a user's stay in a room.  HotelID is copied from the
// room when the booking is created so owner dashboards can query by hotel
// without a join.  TotalPrice is computed once at creation and never
// recomputed.
//
// Fields:
//
//	ID            – primary key identifier (UUID).
//	UserID        – guest who booked.
//	RoomID        – booked room.
//	HotelID       – hotel of the room (denormalized).
//	CheckInDate   – start of the stay.
//	CheckOutDate  – end of the stay, strictly after CheckInDate.
//	Guests        – number of guests, at least one.
//	TotalPrice    – pricePerNight × nights at creation time.
//	Status        – pending, confirmed or cancelled.
//	PaymentMethod – defaults to DefaultPaymentMethod.
//	IsPaid        – whether payment was collected.
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last update timestamp.
type Booking struct {
	ID            string        `json:"id"`            // bookings.id
	UserID        string        `json:"userId"`        // bookings.user_id
	RoomID        string        `json:"roomId"`        // bookings.room_id
	HotelID       string        `json:"hotelId"`       // bookings.hotel_id
	CheckInDate   time.Time     `json:"checkInDate"`   // bookings.check_in_date
	CheckOutDate  time.Time     `json:"checkOutDate"`  // bookings.check_out_date
	Guests        int           `json:"guests"`        // bookings.guests
	TotalPrice    float64       `json:"totalPrice"`    // bookings.total_price
	Status        BookingStatus `json:"status"`        // bookings.status
	PaymentMethod string        `json:"paymentMethod"` // bookings.payment_method
	IsPaid        bool          `json:"isPaid"`        // bookings.is_paid
	CreatedAt     time.Time     `json:"createdAt"`     // bookings.created_at
	UpdatedAt     time.Time     `json:"updatedAt"`     // bookings.updated_at
}

// BookingDetail is a booking joined with the room and hotel it refers to.
// User is only populated for the hotel owner's view.
type BookingDetail struct {
	Booking
	Room  RoomSummary  `json:"room"`
	Hotel HotelSummary `json:"hotel"`
	User  *UserSummary `json:"user,omitempty"`
}
