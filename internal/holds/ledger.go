package holds

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrHoldNotFound is returned when the hold id is unknown or already reclaimed
	ErrHoldNotFound = errors.New("hold not found")

	// ErrHoldExpired is returned when an operation lands after the hold's deadline
	ErrHoldExpired = errors.New("hold expired")

	// ErrInvalidTransition is returned when the hold is not in a state that
	// permits the requested operation
	ErrInvalidTransition = errors.New("invalid hold state transition")
)

// Conflict reports an all-or-nothing reservation that could not claim
// every requested item. BlockedItemIDs lists every item already held
// by someone else, not just the first.
type Conflict struct {
	BlockedItemIDs []string
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("items unavailable: %s", strings.Join(c.BlockedItemIDs, ", "))
}

// AsConflict unwraps err into a *Conflict if it carries one
func AsConflict(err error) (*Conflict, bool) {
	var c *Conflict
	if errors.As(err, &c) {
		return c, true
	}
	return nil, false
}

// Ledger is the authoritative claim store for item holds.
//
// TryReserve is all-or-nothing: either every requested item is claimed
// under holdID, or nothing changes and a *Conflict names the blocked
// items. Reserving onto an existing active hold keeps its deadline.
type Ledger interface {
	TryReserve(ctx context.Context, holdID, userID, eventID string, itemIDs []string, ttl time.Duration) (*Hold, error)

	// Release removes specific items from an active hold. Releasing an
	// item the hold does not carry is a no-op.
	Release(ctx context.Context, holdID string, itemIDs []string) (*Hold, error)

	// ReleaseAll frees every item of the hold and marks it RELEASED.
	// Idempotent: releasing an already released hold is a no-op.
	ReleaseAll(ctx context.Context, holdID string) error

	// Renew pushes the deadline to now+ttl. Only active, unexpired
	// holds can be renewed.
	Renew(ctx context.Context, holdID string, ttl time.Duration) (*Hold, error)

	// MarkConfirmed freezes an active hold at the moment of confirmation.
	// The deadline is re-checked against the ledger clock; a lapsed hold
	// is expired instead and ErrHoldExpired returned. Confirming an
	// already confirmed hold returns it unchanged.
	MarkConfirmed(ctx context.Context, holdID string) (*Hold, error)

	// Get returns the current state of the hold, applying lazy expiry.
	Get(ctx context.Context, holdID string) (*Hold, error)

	// IsHeld reports whether any live hold currently claims itemID.
	IsHeld(ctx context.Context, itemID string) (bool, error)

	// SweepExpired reclaims every active hold whose deadline has passed
	// and reports how many were reclaimed.
	SweepExpired(ctx context.Context) (int, error)
}
