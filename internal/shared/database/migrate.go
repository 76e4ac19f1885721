package database

import (
	"bookmyticket/internal/bookings"
	"bookmyticket/internal/catalog"
	"bookmyticket/internal/wallet"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalog.Item{},
		&bookings.Booking{},
		&bookings.BookingItem{},
		&wallet.Wallet{},
		&wallet.Transaction{},
	)
}
