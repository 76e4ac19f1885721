package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Booking is the durable record of a finalized reservation. HoldID is
// unique: one hold settles into at most one booking, which makes
// finalize safe to retry.
type Booking struct {
	ID               uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	BookingReference string        `json:"booking_reference" gorm:"type:varchar(30);uniqueIndex;not null"`
	HoldID           string        `json:"hold_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	UserID           uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	EventID          uuid.UUID     `json:"event_id" gorm:"type:uuid;not null;index"`
	OrganizerID      uuid.UUID     `json:"organizer_id" gorm:"type:uuid;not null;index"`
	Status           BookingStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`

	// Price breakdown frozen at confirmation, integer currency units
	Subtotal    int64 `json:"subtotal" gorm:"not null"`
	PlatformFee int64 `json:"platform_fee" gorm:"not null"`
	HandlingFee int64 `json:"handling_fee" gorm:"not null"`
	Tax         int64 `json:"tax" gorm:"not null"`
	TotalAmount int64 `json:"total_amount" gorm:"not null"`

	PaymentReference string `json:"payment_reference" gorm:"type:varchar(100)"`

	Items []BookingItem `json:"items" gorm:"foreignKey:BookingID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

// BookingItem is one settled cart line
type BookingItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	BookingID uuid.UUID `json:"booking_id" gorm:"type:uuid;not null;index"`
	ItemID    uuid.UUID `json:"item_id" gorm:"type:uuid;not null"`
	UnitPrice int64     `json:"unit_price" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (BookingItem) TableName() string {
	return "booking_items"
}
