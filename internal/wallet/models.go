package wallet

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType is the direction of a wallet movement
type TransactionType string

const (
	TypeCredit TransactionType = "CREDIT"
	TypeDebit  TransactionType = "DEBIT"
)

// Wallet holds an organizer's running balance
type Wallet struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrganizerID uuid.UUID `json:"organizer_id" gorm:"type:uuid;not null;uniqueIndex"`
	Balance     int64     `json:"balance" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// Transaction is one append-only ledger entry. PreBalance and
// AfterBalance snapshot the wallet around the movement so the ledger
// is auditable without replaying it.
type Transaction struct {
	ID           uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	WalletID     uuid.UUID       `json:"wallet_id" gorm:"type:uuid;not null;index"`
	BookingID    *uuid.UUID      `json:"booking_id,omitempty" gorm:"type:uuid;index"`
	Type         TransactionType `json:"type" gorm:"type:varchar(10);not null"`
	Amount       int64           `json:"amount" gorm:"not null"`
	PreBalance   int64           `json:"pre_balance" gorm:"not null"`
	AfterBalance int64           `json:"after_balance" gorm:"not null"`
	Reference    string          `json:"reference" gorm:"type:varchar(100)"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (Transaction) TableName() string {
	return "wallet_transactions"
}
