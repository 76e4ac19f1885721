package bookings

// BookingStatus is the settlement state of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusRefunded  BookingStatus = "REFUNDED"
)
