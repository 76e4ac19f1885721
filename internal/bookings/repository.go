package bookings

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetByID(id uuid.UUID) (*Booking, error)
	GetByHoldID(holdID string) (*Booking, error)
	GetByUserID(userID uuid.UUID, limit int) ([]Booking, error)

	// Transaction runs fn atomically: the booking row, its items and
	// the wallet movement commit together or not at all.
	Transaction(fn func(tx *gorm.DB) error) error

	CreateTx(tx *gorm.DB, booking *Booking) error
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status BookingStatus) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.Preload("Items").Where("id = ?", id).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByHoldID(holdID string) (*Booking, error) {
	var booking Booking
	err := r.db.Preload("Items").Where("hold_id = ?", holdID).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByUserID(userID uuid.UUID, limit int) ([]Booking, error) {
	var bookings []Booking
	if limit <= 0 {
		limit = 20
	}
	err := r.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *repository) CreateTx(tx *gorm.DB, booking *Booking) error {
	return tx.Create(booking).Error
}

func (r *repository) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status BookingStatus) error {
	return tx.Model(&Booking{}).Where("id = ?", id).Update("status", status).Error
}
