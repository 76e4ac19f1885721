package catalog

// CreateItemRequest is one sellable unit in a batch create
type CreateItemRequest struct {
	Label     string `json:"label" binding:"required,min=1,max=100"`
	Kind      string `json:"kind" binding:"required,itemkind"`
	UnitPrice int64  `json:"unit_price" binding:"required,gt=0"`
}

// CreateItemsRequest adds sellable items to an event
type CreateItemsRequest struct {
	Items []CreateItemRequest `json:"items" binding:"required,min=1,max=500,dive"`
}

// UpdateItemStatusRequest changes an item's sale state
type UpdateItemStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ON_SALE OFF_SALE RETIRED"`
}
