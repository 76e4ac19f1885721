package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType classifies a booking lifecycle notification
type EventType string

const (
	EventBookingConfirmed EventType = "booking_confirmed"
	EventBookingRefunded  EventType = "booking_refunded"
	EventPaymentFailed    EventType = "payment_failed"
)

// BookingEvent is the message published after a booking changes state.
// Delivery is fire-and-forget: a publish failure never rolls back the
// booking it describes.
type BookingEvent struct {
	ID        uuid.UUID              `json:"id"`
	Type      EventType              `json:"type"`
	BookingID string                 `json:"booking_id,omitempty"`
	HoldID    string                 `json:"hold_id,omitempty"`
	UserID    string                 `json:"user_id"`
	EventID   string                 `json:"event_id,omitempty"`
	Amount    int64                  `json:"amount,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewBookingEvent builds an event with a fresh id and timestamp
func NewBookingEvent(eventType EventType, userID string) *BookingEvent {
	return &BookingEvent{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}

// ToJSON serializes the event for the wire
func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// GetPartitionKey routes all of a user's events to one partition so
// consumers see them in order
func (e *BookingEvent) GetPartitionKey() string {
	return e.UserID
}
