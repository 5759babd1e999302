package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// BookingRepo stores bookings and implements booking.Store.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

var _ booking.Store = (*BookingRepo)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Stays conflict when stored check-in <= requested check-out and stored
// check-out >= requested check-in, so back-to-back stays conflict too.
const overlapQuery = `SELECT COUNT(*) FROM bookings
WHERE room_id=? AND status<>'cancelled' AND check_in_date<=? AND check_out_date>=?`

func countOverlapping(ctx context.Context, q querier, roomID string, checkIn, checkOut time.Time) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, overlapQuery, roomID, checkOut.UTC(), checkIn.UTC()).Scan(&n)
	return n, err
}

// CountOverlapping counts non-cancelled bookings of roomID conflicting with
// the requested stay.
func (r *BookingRepo) CountOverlapping(ctx context.Context, roomID string, checkIn, checkOut time.Time) (int, error) {
	return countOverlapping(ctx, r.DB, roomID, checkIn, checkOut)
}

// InRoomTx opens a transaction, locks the room row with SELECT ... FOR
// UPDATE and runs fn.  Concurrent calls for the same room wait on the lock,
// so the overlap check inside fn sees every booking committed before it.
// A missing room row is not an error here; fn reports it via GetRoom.
func (r *BookingRepo) InRoomTx(ctx context.Context, roomID string, fn func(ctx context.Context, tx booking.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked string
	err = tx.QueryRowContext(ctx, "SELECT id FROM rooms WHERE id=? FOR UPDATE", roomID).Scan(&locked)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lock room: %w", err)
	}

	if err := fn(ctx, &bookingTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type bookingTx struct{ tx *sql.Tx }

func (t *bookingTx) CountOverlapping(ctx context.Context, roomID string, checkIn, checkOut time.Time) (int, error) {
	return countOverlapping(ctx, t.tx, roomID, checkIn, checkOut)
}

func (t *bookingTx) GetRoom(ctx context.Context, roomID string) (*model.Room, error) {
	return scanRoom(t.tx.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms r WHERE r.id=?", roomID))
}

func (t *bookingTx) CreateBooking(ctx context.Context, b *model.Booking) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO bookings (id, user_id, room_id, hotel_id, check_in_date, check_out_date, guests, total_price, status, payment_method, is_paid, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.ID, b.UserID, b.RoomID, b.HotelID, b.CheckInDate.UTC(), b.CheckOutDate.UTC(), b.Guests, b.TotalPrice,
		b.Status, b.PaymentMethod, b.IsPaid, b.CreatedAt, b.UpdatedAt)
	return err
}

const bookingDetailColumns = `b.id,b.user_id,b.room_id,b.hotel_id,b.check_in_date,b.check_out_date,b.guests,b.total_price,
b.status,b.payment_method,b.is_paid,b.created_at,b.updated_at,
r.id,r.room_type,r.price_per_night,r.images,h.id,h.name,h.address,h.city`

// ListByUser returns the user's bookings with room and hotel, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.BookingDetail, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+bookingDetailColumns+`
FROM bookings b JOIN rooms r ON r.id=b.room_id JOIN hotels h ON h.id=b.hotel_id
WHERE b.user_id=? ORDER BY b.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BookingDetail{}
	for rows.Next() {
		d, err := scanBookingDetail(rows, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByHotel returns the hotel's bookings with room, hotel and guest,
// newest first.
func (r *BookingRepo) ListByHotel(ctx context.Context, hotelID string) ([]model.BookingDetail, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+bookingDetailColumns+`,u.id,u.username,u.email
FROM bookings b JOIN rooms r ON r.id=b.room_id JOIN hotels h ON h.id=b.hotel_id JOIN users u ON u.id=b.user_id
WHERE b.hotel_id=? ORDER BY b.created_at DESC`, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BookingDetail{}
	for rows.Next() {
		var u model.UserSummary
		d, err := scanBookingDetail(rows, &u)
		if err != nil {
			return nil, err
		}
		d.User = &u
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanBookingDetail(rows *sql.Rows, user *model.UserSummary) (model.BookingDetail, error) {
	var (
		d      model.BookingDetail
		images []byte
	)
	dest := []any{
		&d.ID, &d.UserID, &d.RoomID, &d.HotelID, &d.CheckInDate, &d.CheckOutDate, &d.Guests, &d.TotalPrice,
		&d.Status, &d.PaymentMethod, &d.IsPaid, &d.CreatedAt, &d.UpdatedAt,
		&d.Room.ID, &d.Room.RoomType, &d.Room.PricePerNight, &images,
		&d.Hotel.ID, &d.Hotel.Name, &d.Hotel.Address, &d.Hotel.City,
	}
	if user != nil {
		dest = append(dest, &user.ID, &user.Username, &user.Email)
	}
	if err := rows.Scan(dest...); err != nil {
		return model.BookingDetail{}, err
	}
	var err error
	if d.Room.Images, err = decodeStrings(images); err != nil {
		return model.BookingDetail{}, err
	}
	return d, nil
}
