package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookmyticket/internal/holds"
	"bookmyticket/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrItemNotFound = errors.New("item not found")

const eventItemsCacheTTL = 5 * time.Minute

type Service interface {
	GetItem(ctx context.Context, itemID string) (*Item, error)

	// ResolveSellable resolves the requested item ids against the
	// catalog. Unknown or off-sale items come back in unsellable;
	// the caller treats those like blocked items.
	ResolveSellable(ctx context.Context, eventID string, itemIDs []string) (items []Item, unsellable []string, err error)

	// ListEventItems returns the event's catalog with live hold state.
	ListEventItems(ctx context.Context, eventID string) ([]ItemAvailability, error)

	CreateItems(ctx context.Context, items []Item) error
	SetItemStatus(ctx context.Context, itemID string, status ItemStatus) error
}

type service struct {
	repo   Repository
	ledger holds.Ledger
	cache  cache.Service
}

func NewService(repo Repository, ledger holds.Ledger, cacheService cache.Service) Service {
	return &service{
		repo:   repo,
		ledger: ledger,
		cache:  cacheService,
	}
}

func (s *service) GetItem(ctx context.Context, itemID string) (*Item, error) {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return nil, ErrItemNotFound
	}

	item, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (s *service) ResolveSellable(ctx context.Context, eventID string, itemIDs []string) ([]Item, []string, error) {
	ids := make([]uuid.UUID, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		if id, err := uuid.Parse(itemID); err == nil {
			ids = append(ids, id)
		}
	}

	found, err := s.repo.GetByIDs(ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve items: %w", err)
	}

	byID := make(map[string]Item, len(found))
	for _, item := range found {
		byID[item.ID.String()] = item
	}

	var items []Item
	var unsellable []string
	for _, itemID := range itemIDs {
		item, ok := byID[itemID]
		if !ok || !item.Sellable() || item.EventID.String() != eventID {
			unsellable = append(unsellable, itemID)
			continue
		}
		items = append(items, item)
	}

	return items, unsellable, nil
}

func (s *service) ListEventItems(ctx context.Context, eventID string) ([]ItemAvailability, error) {
	id, err := uuid.Parse(eventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event id: %w", err)
	}

	var items []Item
	cacheKey := fmt.Sprintf("catalog:event_items:%s", eventID)
	err = s.cache.GetOrSet(ctx, cacheKey, eventItemsCacheTTL, func() (interface{}, error) {
		return s.repo.GetByEventID(id)
	}, &items)
	if err != nil {
		return nil, fmt.Errorf("failed to list event items: %w", err)
	}

	// Hold state is live, only the catalog rows are cached
	availability := make([]ItemAvailability, 0, len(items))
	for _, item := range items {
		held, err := s.ledger.IsHeld(ctx, item.ID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to check item hold: %w", err)
		}
		availability = append(availability, ItemAvailability{
			Item:      item,
			Available: item.Sellable() && !held,
		})
	}

	return availability, nil
}

func (s *service) CreateItems(ctx context.Context, items []Item) error {
	if err := s.repo.CreateBatch(items); err != nil {
		return fmt.Errorf("failed to create items: %w", err)
	}

	events := make(map[string]bool)
	for _, item := range items {
		events[item.EventID.String()] = true
	}
	for eventID := range events {
		s.invalidateEventCache(ctx, eventID)
	}
	return nil
}

func (s *service) SetItemStatus(ctx context.Context, itemID string, status ItemStatus) error {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(item.ID, status); err != nil {
		return fmt.Errorf("failed to update item status: %w", err)
	}

	s.invalidateEventCache(ctx, item.EventID.String())
	return nil
}

func (s *service) invalidateEventCache(ctx context.Context, eventID string) {
	_ = s.cache.Delete(ctx, fmt.Sprintf("catalog:event_items:%s", eventID))
}
