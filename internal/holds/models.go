package holds

import "time"

// Status is the lifecycle state of a hold
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusExpired   Status = "EXPIRED"
	StatusConfirmed Status = "CONFIRMED"
	StatusReleased  Status = "RELEASED"
)

// Hold is a time-boxed claim over a set of catalog items.
// ExpiresAt is fixed at creation and moves only through Renew;
// adding or removing items never touches it.
type Hold struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	ItemIDs   []string  `json:"item_ids"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Remaining returns the time left before the hold lapses, floored at zero
func (h *Hold) Remaining(now time.Time) time.Duration {
	if !now.Before(h.ExpiresAt) {
		return 0
	}
	return h.ExpiresAt.Sub(now)
}

// Contains reports whether itemID is part of the hold
func (h *Hold) Contains(itemID string) bool {
	for _, id := range h.ItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}
