package main

import (
	"context"
	"fmt"
	"log"

	"bookmyticket/internal/catalog"
	"bookmyticket/internal/shared/config"
	"bookmyticket/internal/shared/database"

	"github.com/google/uuid"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting BookMyTicket Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Delete in reverse dependency order
	tables := []string{
		"wallet_transactions",
		"wallets",
		"booking_items",
		"bookings",
		"catalog_items",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	if err := s.SeedCatalog(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	// Clear Redis so no stale holds or cached catalogs survive the reseed
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis cache: %v", err)
	}

	return nil
}

// SeedCatalog creates sample events with seats and tier capacity
func (s *Seeder) SeedCatalog() error {
	fmt.Println("  🎪 Seeding catalog items...")

	eventsData := []struct {
		name      string
		seatRows  []string
		seatsPer  int
		seatPrice int64
		tierName  string
		tierUnits int
		tierPrice int64
	}{
		{
			name:      "Tech Conference 2026",
			seatRows:  []string{"A", "B"},
			seatsPer:  10,
			seatPrice: 1500,
			tierName:  "General Admission",
			tierUnits: 50,
			tierPrice: 500,
		},
		{
			name:      "Classical Music Evening",
			seatRows:  []string{"A"},
			seatsPer:  13,
			seatPrice: 1440,
			tierName:  "Balcony",
			tierUnits: 30,
			tierPrice: 800,
		},
		{
			name:      "Startup Pitch Night",
			seatRows:  []string{"A"},
			seatsPer:  8,
			seatPrice: 750,
			tierName:  "Standing",
			tierUnits: 40,
			tierPrice: 100,
		},
	}

	for _, eventData := range eventsData {
		eventID := uuid.New()
		organizerID := uuid.New()

		var items []catalog.Item
		for _, row := range eventData.seatRows {
			for i := 1; i <= eventData.seatsPer; i++ {
				items = append(items, catalog.Item{
					EventID:     eventID,
					OrganizerID: organizerID,
					Kind:        catalog.KindSeat,
					Label:       fmt.Sprintf("%s%d", row, i),
					UnitPrice:   eventData.seatPrice,
					Status:      catalog.ItemStatusOnSale,
				})
			}
		}
		for i := 1; i <= eventData.tierUnits; i++ {
			items = append(items, catalog.Item{
				EventID:     eventID,
				OrganizerID: organizerID,
				Kind:        catalog.KindTierUnit,
				Label:       fmt.Sprintf("%s #%d", eventData.tierName, i),
				UnitPrice:   eventData.tierPrice,
				Status:      catalog.ItemStatusOnSale,
			})
		}

		if err := s.db.PostgreSQL.CreateInBatches(items, 100).Error; err != nil {
			return fmt.Errorf("failed to create items for %s: %w", eventData.name, err)
		}

		fmt.Printf("    ✅ Created event %s: %s (%d items)\n", eventID, eventData.name, len(items))
	}

	return nil
}
