package holds

import (
	"context"
	"sync"
	"time"

	"bookmyticket/pkg/clock"
)

// MemoryLedger is an in-process Ledger backed by a mutex-serialized
// claim map. Expiry is applied lazily before every operation, so
// correctness does not depend on the background sweep cadence.
type MemoryLedger struct {
	mu     sync.Mutex
	clock  clock.Clock
	holds  map[string]*Hold
	claims map[string]string // item id -> hold id
}

func NewMemoryLedger(clk clock.Clock) *MemoryLedger {
	if clk == nil {
		clk = clock.New()
	}
	return &MemoryLedger{
		clock:  clk,
		holds:  make(map[string]*Hold),
		claims: make(map[string]string),
	}
}

func (m *MemoryLedger) TryReserve(ctx context.Context, holdID, userID, eventID string, itemIDs []string, ttl time.Duration) (*Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	m.expireLocked(now)

	hold, exists := m.holds[holdID]
	if exists {
		switch hold.Status {
		case StatusActive:
			// fall through, items are added below
		case StatusExpired:
			return nil, ErrHoldExpired
		default:
			return nil, ErrInvalidTransition
		}
	}

	// All-or-nothing: collect every blocked item before claiming anything
	var blocked []string
	for _, itemID := range itemIDs {
		owner, claimed := m.claims[itemID]
		if claimed && owner != holdID {
			blocked = append(blocked, itemID)
		}
	}
	if len(blocked) > 0 {
		return nil, &Conflict{BlockedItemIDs: blocked}
	}

	if !exists {
		hold = &Hold{
			ID:        holdID,
			UserID:    userID,
			EventID:   eventID,
			Status:    StatusActive,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
		}
		m.holds[holdID] = hold
	}

	for _, itemID := range itemIDs {
		if _, claimed := m.claims[itemID]; claimed {
			continue // already ours
		}
		m.claims[itemID] = holdID
		hold.ItemIDs = append(hold.ItemIDs, itemID)
	}

	return copyHold(hold), nil
}

func (m *MemoryLedger) Release(ctx context.Context, holdID string, itemIDs []string) (*Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expireLocked(m.clock.Now())

	hold, exists := m.holds[holdID]
	if !exists {
		return nil, ErrHoldNotFound
	}
	switch hold.Status {
	case StatusActive:
	case StatusExpired:
		return nil, ErrHoldExpired
	default:
		return nil, ErrInvalidTransition
	}

	for _, itemID := range itemIDs {
		if m.claims[itemID] != holdID {
			continue // not ours, releasing is a no-op
		}
		delete(m.claims, itemID)
		hold.ItemIDs = removeItem(hold.ItemIDs, itemID)
	}

	return copyHold(hold), nil
}

func (m *MemoryLedger) ReleaseAll(ctx context.Context, holdID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hold, exists := m.holds[holdID]
	if !exists {
		return ErrHoldNotFound
	}

	switch hold.Status {
	case StatusReleased, StatusExpired:
		return nil // claims already reclaimed
	}

	for _, itemID := range hold.ItemIDs {
		if m.claims[itemID] == holdID {
			delete(m.claims, itemID)
		}
	}
	hold.Status = StatusReleased

	return nil
}

func (m *MemoryLedger) Renew(ctx context.Context, holdID string, ttl time.Duration) (*Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	m.expireLocked(now)

	hold, exists := m.holds[holdID]
	if !exists {
		return nil, ErrHoldNotFound
	}
	switch hold.Status {
	case StatusActive:
	case StatusExpired:
		return nil, ErrHoldExpired
	default:
		return nil, ErrInvalidTransition
	}

	hold.ExpiresAt = now.Add(ttl)
	return copyHold(hold), nil
}

func (m *MemoryLedger) MarkConfirmed(ctx context.Context, holdID string) (*Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// The deadline is re-checked here: a hold that lapsed between the
	// last interaction and the confirm attempt expires instead.
	m.expireLocked(m.clock.Now())

	hold, exists := m.holds[holdID]
	if !exists {
		return nil, ErrHoldNotFound
	}
	switch hold.Status {
	case StatusConfirmed:
		return copyHold(hold), nil // idempotent
	case StatusExpired:
		return nil, ErrHoldExpired
	case StatusReleased:
		return nil, ErrInvalidTransition
	}

	if len(hold.ItemIDs) == 0 {
		return nil, ErrInvalidTransition
	}

	hold.Status = StatusConfirmed
	return copyHold(hold), nil
}

func (m *MemoryLedger) Get(ctx context.Context, holdID string) (*Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expireLocked(m.clock.Now())

	hold, exists := m.holds[holdID]
	if !exists {
		return nil, ErrHoldNotFound
	}
	return copyHold(hold), nil
}

func (m *MemoryLedger) SweepExpired(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.expireLocked(m.clock.Now()), nil
}

func (m *MemoryLedger) IsHeld(ctx context.Context, itemID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expireLocked(m.clock.Now())

	_, held := m.claims[itemID]
	return held, nil
}

// HeldBy reports which hold currently claims itemID
func (m *MemoryLedger) HeldBy(itemID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	holdID, ok := m.claims[itemID]
	return holdID, ok
}

// expireLocked reclaims every active hold past its deadline.
// Confirmed holds are frozen and never expire. Caller holds the mutex.
func (m *MemoryLedger) expireLocked(now time.Time) int {
	reclaimed := 0
	for _, hold := range m.holds {
		if hold.Status != StatusActive {
			continue
		}
		if now.Before(hold.ExpiresAt) {
			continue
		}
		for _, itemID := range hold.ItemIDs {
			if m.claims[itemID] == hold.ID {
				delete(m.claims, itemID)
			}
		}
		hold.Status = StatusExpired
		reclaimed++
	}
	return reclaimed
}

func copyHold(h *Hold) *Hold {
	c := *h
	c.ItemIDs = append([]string(nil), h.ItemIDs...)
	return &c
}

func removeItem(ids []string, itemID string) []string {
	for i, id := range ids {
		if id == itemID {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
