package reservations

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bookmyticket/internal/catalog"
	"bookmyticket/internal/holds"
	"bookmyticket/internal/pricing"
	"bookmyticket/pkg/clock"
	"bookmyticket/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	Start(ctx context.Context, userID, eventID string) (*ReservationResponse, error)
	SelectItem(ctx context.Context, reservationID, userID, itemID string) (*ReservationResponse, error)
	DeselectItem(ctx context.Context, reservationID, userID, itemID string) (*ReservationResponse, error)
	Get(ctx context.Context, reservationID, userID string) (*ReservationResponse, error)
	Renew(ctx context.Context, reservationID, userID string) (*ReservationResponse, error)
	Cancel(ctx context.Context, reservationID, userID string) error
	Confirm(ctx context.Context, reservationID, userID string) (*Snapshot, error)

	// SnapshotByHoldID hands a confirmed snapshot to the booking flow
	SnapshotByHoldID(ctx context.Context, holdID string) (*Snapshot, error)
}

// Config holds the reservation knobs
type Config struct {
	HoldTTL    time.Duration
	PricingCfg pricing.Config
}

type service struct {
	ledger  holds.Ledger
	catalog catalog.Service
	config  Config
	clock   clock.Clock
	logger  *logger.Logger

	mu           sync.RWMutex
	reservations map[string]*Reservation
	byHoldID     map[string]*Reservation
}

func NewService(ledger holds.Ledger, catalogService catalog.Service, config Config, clk clock.Clock, log *logger.Logger) Service {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		ledger:       ledger,
		catalog:      catalogService,
		config:       config,
		clock:        clk,
		logger:       log,
		reservations: make(map[string]*Reservation),
		byHoldID:     make(map[string]*Reservation),
	}
}

func (s *service) Start(ctx context.Context, userID, eventID string) (*ReservationResponse, error) {
	reservation := &Reservation{
		ID:        uuid.New().String(),
		UserID:    userID,
		EventID:   eventID,
		HoldID:    uuid.New().String(),
		items:     make(map[string]selectedItem),
		CreatedAt: s.clock.Now(),
	}

	s.mu.Lock()
	s.reservations[reservation.ID] = reservation
	s.byHoldID[reservation.HoldID] = reservation
	s.mu.Unlock()

	return s.buildResponse(ctx, reservation)
}

func (s *service) SelectItem(ctx context.Context, reservationID, userID, itemID string) (*ReservationResponse, error) {
	reservation, err := s.lookup(reservationID, userID)
	if err != nil {
		return nil, err
	}
	if reservation.snapshot != nil {
		return nil, ErrInvalidTransition
	}

	items, unsellable, err := s.catalog.ResolveSellable(ctx, reservation.EventID, []string{itemID})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve item: %w", err)
	}
	if len(unsellable) > 0 {
		// Off-sale and unknown items surface like claimed ones
		return nil, &holds.Conflict{BlockedItemIDs: unsellable}
	}
	item := items[0]

	hold, err := s.ledger.TryReserve(ctx, reservation.HoldID, userID, reservation.EventID, []string{itemID}, s.config.HoldTTL)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if !reservation.holdPlaced {
		reservation.holdPlaced = true
		reservation.OrganizerID = item.OrganizerID.String()
		s.logger.LogHoldPlaced(ctx, reservation.HoldID, len(hold.ItemIDs), s.config.HoldTTL)
	}
	if _, exists := reservation.items[itemID]; !exists {
		reservation.items[itemID] = selectedItem{
			ItemID:    itemID,
			Label:     item.Label,
			UnitPrice: item.UnitPrice,
		}
		reservation.order = append(reservation.order, itemID)
	}
	s.mu.Unlock()

	return s.buildResponse(ctx, reservation)
}

func (s *service) DeselectItem(ctx context.Context, reservationID, userID, itemID string) (*ReservationResponse, error) {
	reservation, err := s.lookup(reservationID, userID)
	if err != nil {
		return nil, err
	}
	if reservation.snapshot != nil {
		return nil, ErrInvalidTransition
	}
	if !reservation.holdPlaced {
		return nil, ErrInvalidTransition
	}

	if _, err := s.ledger.Release(ctx, reservation.HoldID, []string{itemID}); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, exists := reservation.items[itemID]; exists {
		delete(reservation.items, itemID)
		for i, id := range reservation.order {
			if id == itemID {
				reservation.order = append(reservation.order[:i], reservation.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	return s.buildResponse(ctx, reservation)
}

func (s *service) Get(ctx context.Context, reservationID, userID string) (*ReservationResponse, error) {
	reservation, err := s.lookup(reservationID, userID)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, reservation)
}

func (s *service) Renew(ctx context.Context, reservationID, userID string) (*ReservationResponse, error) {
	reservation, err := s.lookup(reservationID, userID)
	if err != nil {
		return nil, err
	}
	if !reservation.holdPlaced {
		return nil, ErrInvalidTransition
	}

	if _, err := s.ledger.Renew(ctx, reservation.HoldID, s.config.HoldTTL); err != nil {
		return nil, err
	}

	return s.buildResponse(ctx, reservation)
}

func (s *service) Cancel(ctx context.Context, reservationID, userID string) error {
	reservation, err := s.lookup(reservationID, userID)
	if err != nil {
		return err
	}
	if reservation.snapshot != nil {
		// Confirmed reservations settle through the booking flow
		return ErrInvalidTransition
	}
	if !reservation.holdPlaced {
		s.mu.Lock()
		delete(s.reservations, reservation.ID)
		delete(s.byHoldID, reservation.HoldID)
		s.mu.Unlock()
		return nil
	}

	if err := s.ledger.ReleaseAll(ctx, reservation.HoldID); err != nil && err != holds.ErrHoldNotFound {
		return err
	}
	return nil
}

func (s *service) Confirm(ctx context.Context, reservationID, userID string) (*Snapshot, error) {
	reservation, err := s.lookup(reservationID, userID)
	if err != nil {
		return nil, err
	}

	// Idempotent: a confirmed reservation returns its frozen snapshot
	s.mu.RLock()
	snapshot := reservation.snapshot
	s.mu.RUnlock()
	if snapshot != nil {
		return snapshot, nil
	}

	if !reservation.holdPlaced {
		return nil, ErrInvalidTransition
	}

	// The ledger re-checks the deadline at the moment of confirmation
	hold, err := s.ledger.MarkConfirmed(ctx, reservation.HoldID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if reservation.snapshot != nil {
		return reservation.snapshot, nil
	}

	items := reservation.lineItems()
	reservation.snapshot = &Snapshot{
		ReservationID: reservation.ID,
		HoldID:        reservation.HoldID,
		UserID:        reservation.UserID,
		EventID:       reservation.EventID,
		OrganizerID:   reservation.OrganizerID,
		Items:         items,
		Breakdown:     pricing.Compute(items, s.config.PricingCfg),
		ExpiresAt:     hold.ExpiresAt,
		ConfirmedAt:   s.clock.Now(),
	}

	return reservation.snapshot, nil
}

func (s *service) SnapshotByHoldID(ctx context.Context, holdID string) (*Snapshot, error) {
	s.mu.RLock()
	reservation, exists := s.byHoldID[holdID]
	s.mu.RUnlock()
	if !exists {
		return nil, ErrReservationNotFound
	}

	s.mu.RLock()
	snapshot := reservation.snapshot
	s.mu.RUnlock()
	if snapshot == nil {
		return nil, ErrInvalidTransition
	}
	return snapshot, nil
}

func (s *service) lookup(reservationID, userID string) (*Reservation, error) {
	s.mu.RLock()
	reservation, exists := s.reservations[reservationID]
	s.mu.RUnlock()
	if !exists {
		return nil, ErrReservationNotFound
	}
	if reservation.UserID != userID {
		return nil, ErrNotOwner
	}
	return reservation, nil
}

// buildResponse derives the customer-facing state from the hold ledger
func (s *service) buildResponse(ctx context.Context, reservation *Reservation) (*ReservationResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := &ReservationResponse{
		ID:      reservation.ID,
		EventID: reservation.EventID,
		State:   StateEmpty,
		Items:   []SelectedItemResponse{},
	}

	for _, itemID := range reservation.order {
		item := reservation.items[itemID]
		resp.Items = append(resp.Items, SelectedItemResponse{
			ItemID:    item.ItemID,
			Label:     item.Label,
			UnitPrice: item.UnitPrice,
		})
	}
	resp.Breakdown = pricing.Compute(reservation.lineItems(), s.config.PricingCfg)

	if !reservation.holdPlaced {
		return resp, nil
	}

	hold, err := s.ledger.Get(ctx, reservation.HoldID)
	if err != nil {
		if err == holds.ErrHoldNotFound {
			// The ledger reclaimed the hold, treat it as expired
			resp.State = StateExpired
			return resp, nil
		}
		return nil, err
	}

	now := s.clock.Now()
	resp.ExpiresAt = &hold.ExpiresAt
	resp.RemainingSeconds = int64(hold.Remaining(now).Seconds())

	switch hold.Status {
	case holds.StatusActive:
		if len(hold.ItemIDs) == 0 {
			resp.State = StateSelecting
		} else {
			resp.State = StateHolding
		}
	case holds.StatusExpired:
		resp.State = StateExpired
		resp.RemainingSeconds = 0
	case holds.StatusConfirmed:
		resp.State = StateConfirmed
	case holds.StatusReleased:
		resp.State = StateReleased
		resp.RemainingSeconds = 0
	}

	return resp, nil
}
