package wallet

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetByOrganizerID(organizerID uuid.UUID) (*Wallet, error)
	GetTransactions(walletID uuid.UUID, limit int) ([]Transaction, error)

	// Apply records one wallet movement inside the caller's
	// transaction. The wallet row is locked for the duration so the
	// pre/after balances are consistent under concurrent bookings.
	Apply(tx *gorm.DB, organizerID uuid.UUID, movement Movement) (*Transaction, error)
}

// Movement describes one credit or debit to apply
type Movement struct {
	Type      TransactionType
	Amount    int64
	BookingID *uuid.UUID
	Reference string
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByOrganizerID(organizerID uuid.UUID) (*Wallet, error) {
	var wallet Wallet
	err := r.db.Where("organizer_id = ?", organizerID).First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) GetTransactions(walletID uuid.UUID, limit int) ([]Transaction, error) {
	var transactions []Transaction
	if limit <= 0 {
		limit = 50
	}
	err := r.db.Where("wallet_id = ?", walletID).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}

func (r *repository) Apply(tx *gorm.DB, organizerID uuid.UUID, movement Movement) (*Transaction, error) {
	if movement.Amount < 0 {
		return nil, fmt.Errorf("movement amount cannot be negative")
	}

	// Lock the wallet row, creating it on first credit
	var wallet Wallet
	err := tx.Set("gorm:query_option", "FOR UPDATE").
		Where("organizer_id = ?", organizerID).
		First(&wallet).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to lock wallet: %w", err)
		}
		wallet = Wallet{OrganizerID: organizerID}
		if err := tx.Create(&wallet).Error; err != nil {
			return nil, fmt.Errorf("failed to create wallet: %w", err)
		}
	}

	preBalance := wallet.Balance
	switch movement.Type {
	case TypeCredit:
		wallet.Balance += movement.Amount
	case TypeDebit:
		wallet.Balance -= movement.Amount
	default:
		return nil, fmt.Errorf("unknown transaction type: %s", movement.Type)
	}

	if err := tx.Model(&Wallet{}).Where("id = ?", wallet.ID).Update("balance", wallet.Balance).Error; err != nil {
		return nil, fmt.Errorf("failed to update wallet balance: %w", err)
	}

	transaction := &Transaction{
		WalletID:     wallet.ID,
		BookingID:    movement.BookingID,
		Type:         movement.Type,
		Amount:       movement.Amount,
		PreBalance:   preBalance,
		AfterBalance: wallet.Balance,
		Reference:    movement.Reference,
	}
	if err := tx.Create(transaction).Error; err != nil {
		return nil, fmt.Errorf("failed to record wallet transaction: %w", err)
	}

	return transaction, nil
}
