// Package repository implements MySQL persistence for users, hotels, rooms
// and bookings.  The sentinel errors below let handlers distinguish
// failure scenarios without inspecting driver errors.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/hotel-booking/internal/booking"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate it into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or update collides with existing
// state.  Handlers translate it into 409.
var ErrConflict = errors.New("conflict")

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrHotelNotFound = errors.New("hotel not found")
	// ErrRoomNotFound is shared with the booking engine so both layers
	// report a missing room the same way.
	ErrRoomNotFound = booking.ErrRoomNotFound
	ErrEmailExists  = errors.New("email already exists")
	// ErrHotelExists wraps ErrConflict: an owner manages at most one hotel.
	ErrHotelExists = fmt.Errorf("%w: user already registered a hotel", ErrConflict)
)

// MySQL error number for duplicate entries on a unique key.
const errDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errDuplicateEntry
}
