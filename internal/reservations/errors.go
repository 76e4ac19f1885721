package reservations

import (
	"errors"

	"bookmyticket/internal/holds"
)

var (
	// ErrReservationNotFound is returned when the reservation id is unknown
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrNotOwner is returned when a reservation is accessed by another user
	ErrNotOwner = errors.New("reservation belongs to another user")
)

// The hold-level taxonomy surfaces unchanged so callers can branch on
// one set of sentinels regardless of which layer raised them.
var (
	ErrHoldExpired       = holds.ErrHoldExpired
	ErrInvalidTransition = holds.ErrInvalidTransition
)

// AsConflict unwraps an item availability conflict
func AsConflict(err error) (*holds.Conflict, bool) {
	return holds.AsConflict(err)
}
