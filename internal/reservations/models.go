package reservations

import (
	"time"

	"bookmyticket/internal/pricing"
)

// State is the customer-facing reservation lifecycle
type State string

const (
	// StateEmpty: reservation started, nothing selected yet, no hold placed
	StateEmpty State = "EMPTY"
	// StateSelecting: a hold exists but every item has been deselected
	StateSelecting State = "SELECTING"
	// StateHolding: the hold actively claims at least one item
	StateHolding State = "HOLDING"
	// Terminal states mirror the underlying hold
	StateExpired   State = "EXPIRED"
	StateConfirmed State = "CONFIRMED"
	StateReleased  State = "RELEASED"
)

// selectedItem carries the catalog facts frozen at selection time
type selectedItem struct {
	ItemID    string
	Label     string
	UnitPrice int64
}

// Reservation is one customer's in-flight cart. It lives in process
// memory; the hold ledger is the authority on item claims.
type Reservation struct {
	ID          string
	UserID      string
	EventID     string
	OrganizerID string
	HoldID      string
	holdPlaced  bool
	items       map[string]selectedItem
	order       []string // selection order, for stable display
	snapshot    *Snapshot
	CreatedAt   time.Time
}

// Snapshot is the frozen view of a confirmed reservation. Once taken
// it never changes: the booking finalizer works from it alone.
type Snapshot struct {
	ReservationID string             `json:"reservation_id"`
	HoldID        string             `json:"hold_id"`
	UserID        string             `json:"user_id"`
	EventID       string             `json:"event_id"`
	OrganizerID   string             `json:"organizer_id"`
	Items         []pricing.LineItem `json:"items"`
	Breakdown     pricing.Breakdown  `json:"breakdown"`
	ExpiresAt     time.Time          `json:"expires_at"`
	ConfirmedAt   time.Time          `json:"confirmed_at"`
}

// lineItems returns the cart in selection order
func (r *Reservation) lineItems() []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(r.order))
	for _, itemID := range r.order {
		if item, ok := r.items[itemID]; ok {
			items = append(items, pricing.LineItem{
				ItemID:    item.ItemID,
				UnitPrice: item.UnitPrice,
			})
		}
	}
	return items
}
