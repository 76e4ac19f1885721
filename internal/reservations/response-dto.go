package reservations

import (
	"time"

	"bookmyticket/internal/pricing"
)

// SelectedItemResponse is one cart line in API responses
type SelectedItemResponse struct {
	ItemID    string `json:"item_id"`
	Label     string `json:"label"`
	UnitPrice int64  `json:"unit_price"`
}

// ReservationResponse is the live reservation view: state, countdown
// and the price breakdown recomputed after every mutation
type ReservationResponse struct {
	ID               string                 `json:"id"`
	EventID          string                 `json:"event_id"`
	State            State                  `json:"state"`
	Items            []SelectedItemResponse `json:"items"`
	Breakdown        pricing.Breakdown      `json:"breakdown"`
	ExpiresAt        *time.Time             `json:"expires_at,omitempty"`
	RemainingSeconds int64                  `json:"remaining_seconds"`
}
