package handler // handler defines http handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// dbTimeout bounds the storage calls of a single request.
const dbTimeout = 5 * time.Second

// HotelStore is the subset of repository.HotelRepo used by handlers.
type HotelStore interface {
	Register(ctx context.Context, h *model.Hotel) error
	GetByOwner(ctx context.Context, ownerID string) (*model.Hotel, error)
}

// RoomStore is the subset of repository.RoomRepo used by handlers.
type RoomStore interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	ListListed(ctx context.Context) ([]model.RoomListing, error)
	ListByHotel(ctx context.Context, hotelID string) ([]model.Room, error)
}

// ProfileStore is the subset of repository.UserRepo used by UserHandler.
type ProfileStore interface {
	PushRecentCity(ctx context.Context, userID, city string) ([]string, error)
}

// badRequest marks malformed input that never reached the domain layer.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func errBadRequest(format string, args ...any) error {
	return badRequest{msg: fmt.Sprintf(format, args...)}
}

// getUserID returns the authenticated subject stored by JWTAuth.
func getUserID(c echo.Context) (string, error) {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("invalid user_id in context")
}

// currentUser returns the user row stored by LoadUser.
func currentUser(c echo.Context) (*model.User, error) {
	if u, ok := c.Get("user").(*model.User); ok && u != nil {
		return u, nil
	}
	return nil, errors.New("no user in context")
}

// bindAndValidate decodes the JSON body into req and runs its validate
// tags through the echo validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errBadRequest("invalid body")
	}
	return c.Validate(req)
}

// parseStayDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates,
// the latter as midnight UTC.  Sub-second precision is dropped to match
// the DATETIME columns the stay is stored in.
func parseStayDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Truncate(time.Second), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, errBadRequest("%s must be an RFC 3339 timestamp or YYYY-MM-DD date", field)
}

// fail writes the JSON error body for status.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}

// writeError maps err to a status code and writes the error body.
// Unexpected errors are logged and reported as 500 without detail.
func writeError(c echo.Context, err error) error {
	if verr := booking.AsValidationError(err); verr != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "validation failed", "fields": verr.Fields()})
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "validation failed", "fields": validationFields(ves)})
	}
	var br badRequest
	if errors.As(err, &br) {
		return fail(c, http.StatusBadRequest, br.msg)
	}

	switch {
	case errors.Is(err, booking.ErrRoomUnavailable):
		return fail(c, http.StatusConflict, "Room is not available for the selected dates")
	case errors.Is(err, booking.ErrRoomNotFound):
		return fail(c, http.StatusNotFound, "Room not found")
	case errors.Is(err, repository.ErrHotelNotFound):
		return fail(c, http.StatusNotFound, "No hotel found")
	case errors.Is(err, repository.ErrUserNotFound):
		return fail(c, http.StatusNotFound, "User not found")
	case errors.Is(err, repository.ErrHotelExists):
		return fail(c, http.StatusConflict, "Hotel already registered")
	case errors.Is(err, repository.ErrEmailExists):
		return fail(c, http.StatusConflict, "Email already exists")
	case errors.Is(err, repository.ErrConflict):
		return fail(c, http.StatusConflict, "Conflict")
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "Forbidden")
	case errors.Is(err, context.DeadlineExceeded):
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		return fail(c, http.StatusServiceUnavailable, "Request timed out")
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return fail(c, http.StatusInternalServerError, "Internal server error")
}
