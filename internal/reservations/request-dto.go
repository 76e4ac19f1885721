package reservations

// StartReservationRequest opens a reservation against one event
type StartReservationRequest struct {
	EventID string `json:"event_id" binding:"required,uuid"`
}

// SelectItemRequest adds one catalog item to the reservation
type SelectItemRequest struct {
	ItemID string `json:"item_id" binding:"required,uuid"`
}
