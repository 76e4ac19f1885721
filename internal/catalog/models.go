package catalog

import (
	"time"

	"github.com/google/uuid"
)

// ItemKind discriminates reserved seating from tier capacity units
type ItemKind string

const (
	KindSeat     ItemKind = "SEAT"
	KindTierUnit ItemKind = "TIER_UNIT"
)

// ItemStatus is the sale state of a catalog item
type ItemStatus string

const (
	ItemStatusOnSale   ItemStatus = "ON_SALE"
	ItemStatusOffSale  ItemStatus = "OFF_SALE"
	ItemStatusRetired  ItemStatus = "RETIRED"
)

// Item is one selectable unit of inventory: a specific seat or one
// unit of a priced tier's capacity
type Item struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EventID     uuid.UUID  `json:"event_id" gorm:"type:uuid;not null;index"`
	OrganizerID uuid.UUID  `json:"organizer_id" gorm:"type:uuid;not null;index"`
	Kind        ItemKind   `json:"kind" gorm:"type:varchar(20);not null"`
	Label       string     `json:"label" gorm:"type:varchar(100);not null"`
	UnitPrice   int64      `json:"unit_price" gorm:"not null"`
	Status      ItemStatus `json:"status" gorm:"type:varchar(20);not null;default:'ON_SALE'"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Item) TableName() string {
	return "catalog_items"
}

// Sellable reports whether the item can enter a new hold
func (i *Item) Sellable() bool {
	return i.Status == ItemStatusOnSale
}

// ItemAvailability is an Item plus its live hold state
type ItemAvailability struct {
	Item
	Available bool `json:"available"`
}
