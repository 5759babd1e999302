package booking

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrRoomNotFound is returned when the requested room does not exist.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomUnavailable is returned when the requested stay overlaps an
	// existing booking of the room.
	ErrRoomUnavailable = errors.New("room is not available")
)

// ValidationError collects per-field problems with a booking request.
type ValidationError struct {
	fields map[string][]string
}

func newValidationError() *ValidationError {
	return &ValidationError{fields: make(map[string][]string)}
}

func (e *ValidationError) add(field, msg string) {
	e.fields[field] = append(e.fields[field], msg)
}

func (e *ValidationError) empty() bool { return len(e.fields) == 0 }

// Fields returns the problems keyed by request field name.
func (e *ValidationError) Fields() map[string][]string { return e.fields }

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.fields[k], "; ")))
	}
	return "invalid booking request: " + strings.Join(parts, ", ")
}

// AsValidationError returns the ValidationError wrapped in err, or nil.
func AsValidationError(err error) *ValidationError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return nil
}
