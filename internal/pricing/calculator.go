package pricing

import "math"

// Config holds the fee and tax knobs for one computation.
// Percents are fractions in [0,1]; amounts are integer currency units.
type Config struct {
	PlatformFeePercent float64
	HandlingFeePerItem int64
	TaxPercent         float64
}

// LineItem is one priced unit in a cart
type LineItem struct {
	ItemID    string `json:"item_id"`
	UnitPrice int64  `json:"unit_price"`
}

// Breakdown is the full price composition for a cart
type Breakdown struct {
	Subtotal    int64 `json:"subtotal"`
	PlatformFee int64 `json:"platform_fee"`
	HandlingFee int64 `json:"handling_fee"`
	Tax         int64 `json:"tax"`
	Total       int64 `json:"total"`
}

// Compute builds the price breakdown for a set of line items.
// Pure function; an empty cart yields a zero breakdown.
func Compute(items []LineItem, cfg Config) Breakdown {
	if len(items) == 0 {
		return Breakdown{}
	}

	var subtotal int64
	for _, item := range items {
		subtotal += item.UnitPrice
	}

	platformFee := roundHalfUp(float64(subtotal) * cfg.PlatformFeePercent)
	handlingFee := int64(len(items)) * cfg.HandlingFeePerItem
	tax := roundHalfUp(float64(platformFee+handlingFee) * cfg.TaxPercent)

	return Breakdown{
		Subtotal:    subtotal,
		PlatformFee: platformFee,
		HandlingFee: handlingFee,
		Tax:         tax,
		Total:       subtotal + platformFee + handlingFee + tax,
	}
}

// roundHalfUp rounds to the nearest integer unit with ties going up
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

// OrganizerCredit is the amount credited to the organizer wallet when a
// booking is finalized: the subtotal less the platform's cut. Handling
// fee and tax never reach the organizer.
func OrganizerCredit(b Breakdown) int64 {
	return b.Subtotal - b.PlatformFee
}
