// Package booking implements room availability checks and the booking
// workflow: validating a requested stay against existing reservations,
// pricing it and persisting it atomically.
package booking

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// Tx is the set of storage operations available while the room row is
// locked.  Everything done through a Tx commits or rolls back together.
type Tx interface {
	CountOverlapping(ctx context.Context, roomID string, checkIn, checkOut time.Time) (int, error)
	// GetRoom returns ErrRoomNotFound when the room does not exist.
	GetRoom(ctx context.Context, roomID string) (*model.Room, error)
	CreateBooking(ctx context.Context, b *model.Booking) error
}

// Store persists bookings.
type Store interface {
	// CountOverlapping counts non-cancelled bookings of roomID whose stay
	// satisfies checkIn <= requested checkOut AND checkOut >= requested checkIn.
	CountOverlapping(ctx context.Context, roomID string, checkIn, checkOut time.Time) (int, error)
	// InRoomTx runs fn in one transaction holding an exclusive lock on
	// roomID, so concurrent bookings of the same room are serialized.
	InRoomTx(ctx context.Context, roomID string, fn func(ctx context.Context, tx Tx) error) error
	ListByUser(ctx context.Context, userID string) ([]model.BookingDetail, error)
	ListByHotel(ctx context.Context, hotelID string) ([]model.BookingDetail, error)
}

// RoomStore flips the manual listing flag of rooms.
type RoomStore interface {
	// ToggleAvailability returns ErrRoomNotFound when the room does not exist.
	ToggleAvailability(ctx context.Context, roomID string) (*model.Room, error)
}

// Publisher is notified after a booking has been committed.
type Publisher interface {
	BookingCreated(ctx context.Context, b *model.Booking) error
}

// Request is a guest's request to book a room.
type Request struct {
	UserID   string
	RoomID   string
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
}

// Validate rejects requests with missing ids, non-chronological stays or
// no guests.
func (r Request) Validate() error {
	verr := newValidationError()
	if strings.TrimSpace(r.UserID) == "" {
		verr.add("user", "user is required")
	}
	if strings.TrimSpace(r.RoomID) == "" {
		verr.add("room", "room is required")
	}
	if r.CheckIn.IsZero() {
		verr.add("checkInDate", "checkInDate is required")
	}
	if r.CheckOut.IsZero() {
		verr.add("checkOutDate", "checkOutDate is required")
	}
	if !r.CheckIn.IsZero() && !r.CheckOut.IsZero() && !r.CheckOut.After(r.CheckIn) {
		verr.add("checkOutDate", "checkOutDate must be after checkInDate")
	}
	if r.Guests < 1 {
		verr.add("guests", "guests must be at least 1")
	}
	if verr.empty() {
		return nil
	}
	return verr
}

// Dashboard is a hotel owner's view of their bookings.  TotalRevenue is
// the gross booked value and includes unpaid bookings.
type Dashboard struct {
	TotalBookings int                   `json:"totalBookings"`
	TotalRevenue  float64               `json:"totalRevenue"`
	Bookings      []model.BookingDetail `json:"bookings"`
}

// Engine runs the booking workflow on top of a Store.
type Engine struct {
	store     Store
	rooms     RoomStore
	publisher Publisher
	now       func() time.Time
}

// NewEngine constructs an Engine.  publisher may be nil.
func NewEngine(store Store, rooms RoomStore, publisher Publisher) *Engine {
	if store == nil || rooms == nil {
		panic("nil store passed to NewEngine")
	}
	return &Engine{
		store:     store,
		rooms:     rooms,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CheckAvailability reports whether roomID has no booking overlapping the
// requested stay.  Adjacent stays overlap.  The range itself is not
// validated here.
func (e *Engine) CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	n, err := e.store.CountOverlapping(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return false, fmt.Errorf("count overlapping bookings: %w", err)
	}
	return n == 0, nil
}

// CreateBooking validates req, re-checks availability, prices the stay and
// stores the booking.  Availability check and insert run under the room
// lock, so two concurrent requests for overlapping stays cannot both
// succeed.  The room's IsAvailable flag is neither consulted nor changed.
func (e *Engine) CreateBooking(ctx context.Context, req Request) (*model.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created *model.Booking
	err := e.store.InRoomTx(ctx, req.RoomID, func(ctx context.Context, tx Tx) error {
		n, err := tx.CountOverlapping(ctx, req.RoomID, req.CheckIn, req.CheckOut)
		if err != nil {
			return fmt.Errorf("count overlapping bookings: %w", err)
		}
		if n > 0 {
			return ErrRoomUnavailable
		}

		room, err := tx.GetRoom(ctx, req.RoomID)
		if err != nil {
			return fmt.Errorf("load room %s: %w", req.RoomID, err)
		}

		now := e.now()
		b := &model.Booking{
			ID:            uuid.NewString(),
			UserID:        req.UserID,
			RoomID:        room.ID,
			HotelID:       room.HotelID,
			CheckInDate:   req.CheckIn,
			CheckOutDate:  req.CheckOut,
			Guests:        req.Guests,
			TotalPrice:    TotalPrice(room.PricePerNight, Nights(req.CheckIn, req.CheckOut)),
			Status:        model.BookingPending,
			PaymentMethod: model.DefaultPaymentMethod,
			IsPaid:        false,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.CreateBooking(ctx, b); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if e.publisher != nil {
		if err := e.publisher.BookingCreated(ctx, created); err != nil {
			log.Printf("booking: publish booking %s: %v", created.ID, err)
		}
	}
	return created, nil
}

// ToggleAvailability flips the manual listing flag of roomID.  Callers are
// responsible for checking that the user owns the room's hotel.
func (e *Engine) ToggleAvailability(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := e.rooms.ToggleAvailability(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("toggle room %s: %w", roomID, err)
	}
	return room, nil
}

// ListForUser returns the user's bookings, newest first.
func (e *Engine) ListForUser(ctx context.Context, userID string) ([]model.BookingDetail, error) {
	items, err := e.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings of user %s: %w", userID, err)
	}
	return newestFirst(items), nil
}

// Dashboard returns the hotel's bookings, newest first, with their count
// and summed total price.
func (e *Engine) Dashboard(ctx context.Context, hotelID string) (Dashboard, error) {
	items, err := e.store.ListByHotel(ctx, hotelID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list bookings of hotel %s: %w", hotelID, err)
	}
	items = newestFirst(items)
	d := Dashboard{TotalBookings: len(items), Bookings: items}
	for _, b := range items {
		d.TotalRevenue += b.TotalPrice
	}
	return d, nil
}

func newestFirst(items []model.BookingDetail) []model.BookingDetail {
	if items == nil {
		return []model.BookingDetail{}
	}
	slices.SortStableFunc(items, func(a, b model.BookingDetail) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return items
}
