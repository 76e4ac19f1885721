package wallet

// WalletResponse is the organizer-facing wallet view
type WalletResponse struct {
	OrganizerID  string        `json:"organizer_id"`
	Balance      int64         `json:"balance"`
	Transactions []Transaction `json:"transactions"`
}
