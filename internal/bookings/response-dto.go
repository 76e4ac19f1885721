package bookings

import "time"

// BookingItemResponse is one settled cart line in API responses
type BookingItemResponse struct {
	ItemID    string `json:"item_id"`
	UnitPrice int64  `json:"unit_price"`
}

// BookingResponse is the API view of a booking
type BookingResponse struct {
	ID               string                `json:"id"`
	BookingReference string                `json:"booking_reference"`
	EventID          string                `json:"event_id"`
	Status           BookingStatus         `json:"status"`
	Subtotal         int64                 `json:"subtotal"`
	PlatformFee      int64                 `json:"platform_fee"`
	HandlingFee      int64                 `json:"handling_fee"`
	Tax              int64                 `json:"tax"`
	TotalAmount      int64                 `json:"total_amount"`
	PaymentReference string                `json:"payment_reference"`
	Items            []BookingItemResponse `json:"items"`
	CreatedAt        time.Time             `json:"created_at"`
}

func toResponse(b *Booking) *BookingResponse {
	items := make([]BookingItemResponse, len(b.Items))
	for i, item := range b.Items {
		items[i] = BookingItemResponse{
			ItemID:    item.ItemID.String(),
			UnitPrice: item.UnitPrice,
		}
	}

	return &BookingResponse{
		ID:               b.ID.String(),
		BookingReference: b.BookingReference,
		EventID:          b.EventID.String(),
		Status:           b.Status,
		Subtotal:         b.Subtotal,
		PlatformFee:      b.PlatformFee,
		HandlingFee:      b.HandlingFee,
		Tax:              b.Tax,
		TotalAmount:      b.TotalAmount,
		PaymentReference: b.PaymentReference,
		Items:            items,
		CreatedAt:        b.CreatedAt,
	}
}
