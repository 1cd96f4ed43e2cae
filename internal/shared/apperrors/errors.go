package apperrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors for the booking core. Controllers map these to HTTP
// status codes; services wrap them with context via fmt.Errorf and %w.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrSeatUnavailable  = errors.New("seat unavailable")
	ErrInvalidState     = errors.New("invalid state for operation")
	ErrTransientStore   = errors.New("transient store failure")
	ErrValidationFailed = errors.New("validation failed")
)

// NotFoundError identifies a missing entity by kind and id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound creates a NotFoundError for the given entity kind and id.
func NewNotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// SeatUnavailableError carries the exact seats that lost contention so the
// client can retry with a fresh selection.
type SeatUnavailableError struct {
	ScheduleID uuid.UUID
	SeatIDs    []uuid.UUID
}

func (e *SeatUnavailableError) Error() string {
	ids := make([]string, 0, len(e.SeatIDs))
	for _, id := range e.SeatIDs {
		ids = append(ids, id.String())
	}
	return fmt.Sprintf("seats not available for schedule %s: %s", e.ScheduleID, strings.Join(ids, ", "))
}

func (e *SeatUnavailableError) Unwrap() error { return ErrSeatUnavailable }

// NewSeatUnavailable creates a SeatUnavailableError naming only the
// contested seats.
func NewSeatUnavailable(scheduleID uuid.UUID, seatIDs []uuid.UUID) error {
	return &SeatUnavailableError{ScheduleID: scheduleID, SeatIDs: seatIDs}
}

// InvalidStateError reports an operation attempted against an entity
// outside the expected lifecycle state.
type InvalidStateError struct {
	Kind     string
	ID       string
	Current  string
	Expected string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s is %s, expected %s", e.Kind, e.ID, e.Current, e.Expected)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// NewInvalidState creates an InvalidStateError.
func NewInvalidState(kind, id, current, expected string) error {
	return &InvalidStateError{Kind: kind, ID: id, Current: current, Expected: expected}
}

// IsNotFound reports whether err is (or wraps) a not-found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsSeatUnavailable reports whether err is (or wraps) a seat contention error.
func IsSeatUnavailable(err error) bool { return errors.Is(err, ErrSeatUnavailable) }

// IsInvalidState reports whether err is (or wraps) a lifecycle-state error.
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }

// IsTransient reports whether err is worth retrying at the transaction
// boundary.
func IsTransient(err error) bool { return errors.Is(err, ErrTransientStore) }

// IsValidationFailed reports whether err is (or wraps) an input validation
// error.
func IsValidationFailed(err error) bool { return errors.Is(err, ErrValidationFailed) }

// UnavailableSeats extracts the contested seat ids from err, if any.
func UnavailableSeats(err error) []uuid.UUID {
	var su *SeatUnavailableError
	if errors.As(err, &su) {
		return su.SeatIDs
	}
	return nil
}
