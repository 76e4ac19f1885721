package holds

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookmyticket/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var holdTTL = 5 * time.Minute

func newTestLedger(t *testing.T) (*MemoryLedger, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	return NewMemoryLedger(fake), fake
}

func TestTryReserve_ClaimsItems(t *testing.T) {
	ledger, fake := newTestLedger(t)
	ctx := context.Background()

	hold, err := ledger.TryReserve(ctx, "hold-1", "user-1", "event-1", []string{"seat-a1", "seat-a2"}, holdTTL)
	require.NoError(t, err)

	assert.Equal(t, StatusActive, hold.Status)
	assert.ElementsMatch(t, []string{"seat-a1", "seat-a2"}, hold.ItemIDs)
	assert.Equal(t, fake.Now().Add(holdTTL), hold.ExpiresAt)

	owner, held := ledger.HeldBy("seat-a1")
	require.True(t, held)
	assert.Equal(t, "hold-1", owner)
}

func TestTryReserve_ConflictReportsAllBlockedItems(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.TryReserve(ctx, "hold-1", "user-1", "event-1", []string{"seat-a1", "seat-a2"}, holdTTL)
	require.NoError(t, err)

	// seat-a3 is free, but the reserve must fail whole and name both taken seats
	_, err = ledger.TryReserve(ctx, "hold-2", "user-2", "event-1", []string{"seat-a1", "seat-a2", "seat-a3"}, holdTTL)
	require.Error(t, err)

	conflict, ok := AsConflict(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"seat-a1", "seat-a2"}, conflict.BlockedItemIDs)

	// All-or-nothing: the free seat was not claimed either
	_, held := ledger.HeldBy("seat-a3")
	assert.False(t, held)
}

func TestTryReserve_MutationKeepsDeadline(t *testing.T) {
	ledger, fake := newTestLedger(t)
	ctx := context.Background()

	hold, err := ledger.TryReserve(ctx, "hold-1", "user-1", "event-1", []string{"seat-a1"}, holdTTL)
	require.NoError(t, err)
	deadline := hold.ExpiresAt

	fake.Advance(2 * time.Minute)

	hold, err = ledger.TryReserve(ctx, "hold-1", "user-1", "event-1", []string{"seat-a2"}, holdTTL)
	require.NoError(t, err)
	assert.Equal(t, deadline, hold.ExpiresAt)

	hold, err = ledger.Release(ctx, "hold-1", []string{"seat-a1"})
	require.NoError(t, err)
	assert.Equal(t, deadline, hold.ExpiresAt)
}

func TestRenew_ExtendsDeadline(t *testing.T) {
	ledger, fake := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.TryReserve(ctx, "hold-1", "user-1", "event-1", []string{"seat-a1"}, holdTTL)
	require.NoError(t, err)

	fake.Advance(4 * time.Minute)

	hold, err := ledger.Renew(ctx, "hold-1", holdTTL)
	require.NoError(t, err)
	assert.Equal(t, fake.Now().Add(holdTTL), hold.ExpiresAt)
}

func TestExpiry_FreesItemsForOthers(t *testing.T) {
	ledger, fake := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.TryReserve(ctx, "hold-1", "user-1", "event-1", []string{"seat-a1"}, holdTTL)
	require.NoError(t, err)

	fake.Advance(holdTTL + time.Second)

	// Lazy expiry: no sweep has run, yet the item is reservable again
	hold, err := ledger.TryReserve(ctx, "hold-2", "user-2", "event-1", []string{"seat-a1"}, holdTTL)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, hold.Status)

	expired, err := ledger.Get(ctx, "hold-1")
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, expired.Status)
}

func TestExpiry_OperationsOnLapsedHoldFail(t *testing.T) {
	ledger, fake := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.TryReserve(ctx, "hold-1", "user-1", "event-1", []string{"seat-a1"}, holdTTL)
	require.NoError(t, err)

	fake.Advance(holdTTL)

	_, err = ledger.TryReserve(ctx, "hold-1", "user-1", "event-1", []string{"seat-a2"}, holdTTL)
	assert.ErrorIs(t, err, ErrHoldExpired)

	_, err = ledger.Renew(ctx, "hold-1", holdTTL)
	assert.ErrorIs(t, err, ErrHoldExpired)

	_, err = ledger.MarkConfirmed(ctx, "hold-1")
	assert.ErrorIs(t, err, ErrHoldExpired)
}

func TestSweepExpired_ReclaimsLapsedHolds(t *testing.T) {
	ledger, fake := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.TryReserve(ctx, "hold-1", "user-1", "event-1", []string{"seat-a1"}, holdTTL)
	require.NoError(t, err)
	_, err = ledger.TryReserve(ctx, "hold-2", "user-2", "event-1", []string{"seat-b1"}, 2*holdTTL)
	require.NoError(t, err)

	fake.Advance(holdTTL)

	reclaimed, err := ledger.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, reclaimed)

	_, held := ledger.HeldBy("seat-a1")
	assert.False(t, held)
	_, held = ledger.HeldBy("seat-b1")
	assert.True(t, held)
}

func TestMarkConfirmed_FreezesHold(t *testing.T) {
	ledger, fake := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.TryReserve(ctx, "hold-1", "user-1", "event-1", []string{"seat-a1"}, holdTTL)
	require.NoError(t, err)

	hold, err := ledger.MarkConfirmed(ctx, "hold-1")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, hold.Status)

	// Idempotent: confirming again returns the same frozen hold
	again, err := ledger.MarkConfirmed(ctx, "hold-1")
	require.NoError(t, err)
	assert.Equal(t, hold, again)

	// Confirmed holds never expire, their items stay blocked
	fake.Advance(24 * time.Hour)
	_, err = ledger.TryReserve(ctx, "hold-2", "user-2", "event-1", []string{"seat-a1"}, holdTTL)
	conflict, ok := AsConflict(err)
	require.True(t, ok)
	assert.Equal(t, []string{"seat-a1"}, conflict.BlockedItemIDs)
}

func TestMarkConfirmed_EmptyHoldRejected(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.TryReserve(ctx, "hold-1", "user-1", "event-1", []string{"seat-a1"}, holdTTL)
	require.NoError(t, err)
	_, err = ledger.Release(ctx, "hold-1", []string{"seat-a1"})
	require.NoError(t, err)

	_, err = ledger.MarkConfirmed(ctx, "hold-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRelease_IsIdempotent(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.TryReserve(ctx, "hold-1", "user-1", "event-1", []string{"seat-a1", "seat-a2"}, holdTTL)
	require.NoError(t, err)

	hold, err := ledger.Release(ctx, "hold-1", []string{"seat-a1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"seat-a2"}, hold.ItemIDs)

	// Releasing the same item again changes nothing
	hold, err = ledger.Release(ctx, "hold-1", []string{"seat-a1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"seat-a2"}, hold.ItemIDs)
}

func TestReleaseAll_FreesEverything(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.TryReserve(ctx, "hold-1", "user-1", "event-1", []string{"seat-a1", "seat-a2"}, holdTTL)
	require.NoError(t, err)

	require.NoError(t, ledger.ReleaseAll(ctx, "hold-1"))
	require.NoError(t, ledger.ReleaseAll(ctx, "hold-1")) // idempotent

	hold, err := ledger.Get(ctx, "hold-1")
	require.NoError(t, err)
	assert.Equal(t, StatusReleased, hold.Status)

	_, err = ledger.TryReserve(ctx, "hold-2", "user-2", "event-1", []string{"seat-a1", "seat-a2"}, holdTTL)
	assert.NoError(t, err)
}

func TestTryReserve_ConcurrentSingleWinner(t *testing.T) {
	ledger := NewMemoryLedger(clock.New())
	ctx := context.Background()

	const contenders = 50
	var wg sync.WaitGroup
	wins := make(chan string, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			holdID := "hold-" + string(rune('a'+n%26)) + string(rune('0'+n/26))
			if _, err := ledger.TryReserve(ctx, holdID, "user", "event-1", []string{"seat-final"}, holdTTL); err == nil {
				wins <- holdID
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	require.Len(t, winners, 1)

	owner, held := ledger.HeldBy("seat-final")
	require.True(t, held)
	assert.Equal(t, winners[0], owner)
}
