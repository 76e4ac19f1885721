package wallet

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	GetWallet(organizerID uuid.UUID) (*WalletResponse, error)

	// Credit and Debit run inside the caller's transaction so the
	// wallet movement commits or rolls back with the booking.
	Credit(tx *gorm.DB, organizerID uuid.UUID, amount int64, bookingID *uuid.UUID, reference string) (*Transaction, error)
	Debit(tx *gorm.DB, organizerID uuid.UUID, amount int64, bookingID *uuid.UUID, reference string) (*Transaction, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetWallet(organizerID uuid.UUID) (*WalletResponse, error) {
	wallet, err := s.repo.GetByOrganizerID(organizerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No movements yet, report an empty wallet
			return &WalletResponse{
				OrganizerID:  organizerID.String(),
				Balance:      0,
				Transactions: []Transaction{},
			}, nil
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	transactions, err := s.repo.GetTransactions(wallet.ID, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet transactions: %w", err)
	}

	return &WalletResponse{
		OrganizerID:  organizerID.String(),
		Balance:      wallet.Balance,
		Transactions: transactions,
	}, nil
}

func (s *service) Credit(tx *gorm.DB, organizerID uuid.UUID, amount int64, bookingID *uuid.UUID, reference string) (*Transaction, error) {
	return s.repo.Apply(tx, organizerID, Movement{
		Type:      TypeCredit,
		Amount:    amount,
		BookingID: bookingID,
		Reference: reference,
	})
}

func (s *service) Debit(tx *gorm.DB, organizerID uuid.UUID, amount int64, bookingID *uuid.UUID, reference string) (*Transaction, error) {
	return s.repo.Apply(tx, organizerID, Movement{
		Type:      TypeDebit,
		Amount:    amount,
		BookingID: bookingID,
		Reference: reference,
	})
}
