package bookings

// FinalizeBookingRequest settles a confirmed reservation
type FinalizeBookingRequest struct {
	ReservationID string `json:"reservation_id" binding:"required,uuid"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}
