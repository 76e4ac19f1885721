package reservations

import (
	"context"
	"testing"
	"time"

	"bookmyticket/internal/catalog"
	"bookmyticket/internal/holds"
	"bookmyticket/internal/pricing"
	"bookmyticket/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) GetItem(ctx context.Context, itemID string) (*catalog.Item, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockCatalogService) ResolveSellable(ctx context.Context, eventID string, itemIDs []string) ([]catalog.Item, []string, error) {
	args := m.Called(ctx, eventID, itemIDs)
	var items []catalog.Item
	if args.Get(0) != nil {
		items = args.Get(0).([]catalog.Item)
	}
	var unsellable []string
	if args.Get(1) != nil {
		unsellable = args.Get(1).([]string)
	}
	return items, unsellable, args.Error(2)
}

func (m *MockCatalogService) ListEventItems(ctx context.Context, eventID string) ([]catalog.ItemAvailability, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.ItemAvailability), args.Error(1)
}

func (m *MockCatalogService) CreateItems(ctx context.Context, items []catalog.Item) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockCatalogService) SetItemStatus(ctx context.Context, itemID string, status catalog.ItemStatus) error {
	args := m.Called(ctx, itemID, status)
	return args.Error(0)
}

var testPricing = pricing.Config{
	PlatformFeePercent: 0.05,
	HandlingFeePerItem: 10,
	TaxPercent:         0.18,
}

type fixture struct {
	service Service
	ledger  *holds.MemoryLedger
	clock   *clock.Fake
	catalog *MockCatalogService
	eventID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := clock.NewFake(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	ledger := holds.NewMemoryLedger(fake)
	catalogMock := new(MockCatalogService)

	svc := NewService(ledger, catalogMock, Config{
		HoldTTL:    5 * time.Minute,
		PricingCfg: testPricing,
	}, fake, nil)

	return &fixture{
		service: svc,
		ledger:  ledger,
		clock:   fake,
		catalog: catalogMock,
		eventID: uuid.New().String(),
	}
}

// sellableItem registers a catalog item the mock will resolve
func (f *fixture) sellableItem(unitPrice int64) string {
	itemID := uuid.New().String()
	item := catalog.Item{
		ID:          uuid.MustParse(itemID),
		EventID:     uuid.MustParse(f.eventID),
		OrganizerID: uuid.New(),
		Kind:        catalog.KindSeat,
		Label:       "Seat " + itemID[:8],
		UnitPrice:   unitPrice,
		Status:      catalog.ItemStatusOnSale,
	}
	f.catalog.On("ResolveSellable", mock.Anything, f.eventID, []string{itemID}).
		Return([]catalog.Item{item}, nil, nil)
	return itemID
}

func TestReservationFlow_SelectConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.service.Start(ctx, "user-1", f.eventID)
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, resp.State)
	assert.Equal(t, pricing.Breakdown{}, resp.Breakdown)

	itemA := f.sellableItem(100)
	itemB := f.sellableItem(100)

	resp, err = f.service.SelectItem(ctx, resp.ID, "user-1", itemA)
	require.NoError(t, err)
	assert.Equal(t, StateHolding, resp.State)

	resp, err = f.service.SelectItem(ctx, resp.ID, "user-1", itemB)
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)

	// Breakdown follows every mutation
	assert.Equal(t, int64(200), resp.Breakdown.Subtotal)
	assert.Equal(t, int64(235), resp.Breakdown.Total)

	snapshot, err := f.service.Confirm(ctx, resp.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(235), snapshot.Breakdown.Total)
	assert.Len(t, snapshot.Items, 2)

	got, err := f.service.Get(ctx, resp.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, got.State)
}

func TestConfirm_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.service.Start(ctx, "user-1", f.eventID)
	require.NoError(t, err)
	itemA := f.sellableItem(150)
	_, err = f.service.SelectItem(ctx, resp.ID, "user-1", itemA)
	require.NoError(t, err)

	first, err := f.service.Confirm(ctx, resp.ID, "user-1")
	require.NoError(t, err)

	f.clock.Advance(time.Minute)

	second, err := f.service.Confirm(ctx, resp.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestConfirm_ExpiredBetweenSelectAndConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.service.Start(ctx, "user-1", f.eventID)
	require.NoError(t, err)
	itemA := f.sellableItem(100)
	_, err = f.service.SelectItem(ctx, resp.ID, "user-1", itemA)
	require.NoError(t, err)

	// Hold lapses while the user hesitates at checkout
	f.clock.Advance(5*time.Minute + time.Second)

	_, err = f.service.Confirm(ctx, resp.ID, "user-1")
	assert.ErrorIs(t, err, ErrHoldExpired)

	got, err := f.service.Get(ctx, resp.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, StateExpired, got.State)
	assert.Equal(t, int64(0), got.RemainingSeconds)
}

func TestConfirm_EmptyReservationRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.service.Start(ctx, "user-1", f.eventID)
	require.NoError(t, err)

	// Never selected anything
	_, err = f.service.Confirm(ctx, resp.ID, "user-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Selected then deselected everything
	itemA := f.sellableItem(100)
	_, err = f.service.SelectItem(ctx, resp.ID, "user-1", itemA)
	require.NoError(t, err)
	_, err = f.service.DeselectItem(ctx, resp.ID, "user-1", itemA)
	require.NoError(t, err)

	_, err = f.service.Confirm(ctx, resp.ID, "user-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSelect_ConflictSurfacesBlockedItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	itemA := f.sellableItem(100)

	first, err := f.service.Start(ctx, "user-1", f.eventID)
	require.NoError(t, err)
	_, err = f.service.SelectItem(ctx, first.ID, "user-1", itemA)
	require.NoError(t, err)

	second, err := f.service.Start(ctx, "user-2", f.eventID)
	require.NoError(t, err)
	_, err = f.service.SelectItem(ctx, second.ID, "user-2", itemA)
	require.Error(t, err)

	conflict, ok := AsConflict(err)
	require.True(t, ok)
	assert.Equal(t, []string{itemA}, conflict.BlockedItemIDs)
}

func TestDeselect_KeepsDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.service.Start(ctx, "user-1", f.eventID)
	require.NoError(t, err)
	itemA := f.sellableItem(100)
	itemB := f.sellableItem(100)

	resp, err = f.service.SelectItem(ctx, resp.ID, "user-1", itemA)
	require.NoError(t, err)
	deadline := *resp.ExpiresAt

	f.clock.Advance(2 * time.Minute)

	resp, err = f.service.SelectItem(ctx, resp.ID, "user-1", itemB)
	require.NoError(t, err)
	assert.Equal(t, deadline, *resp.ExpiresAt)

	resp, err = f.service.DeselectItem(ctx, resp.ID, "user-1", itemA)
	require.NoError(t, err)
	assert.Equal(t, deadline, *resp.ExpiresAt)
	assert.Equal(t, int64(180), resp.RemainingSeconds)
}

func TestRenew_ExtendsDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.service.Start(ctx, "user-1", f.eventID)
	require.NoError(t, err)
	itemA := f.sellableItem(100)
	resp, err = f.service.SelectItem(ctx, resp.ID, "user-1", itemA)
	require.NoError(t, err)

	f.clock.Advance(4 * time.Minute)

	resp, err = f.service.Renew(ctx, resp.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(300), resp.RemainingSeconds)
}

func TestCancel_ReleasesItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	itemA := f.sellableItem(100)

	first, err := f.service.Start(ctx, "user-1", f.eventID)
	require.NoError(t, err)
	_, err = f.service.SelectItem(ctx, first.ID, "user-1", itemA)
	require.NoError(t, err)

	require.NoError(t, f.service.Cancel(ctx, first.ID, "user-1"))

	got, err := f.service.Get(ctx, first.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, StateReleased, got.State)

	// The item is immediately claimable by someone else
	second, err := f.service.Start(ctx, "user-2", f.eventID)
	require.NoError(t, err)
	_, err = f.service.SelectItem(ctx, second.ID, "user-2", itemA)
	assert.NoError(t, err)
}

func TestLookup_OwnershipEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.service.Start(ctx, "user-1", f.eventID)
	require.NoError(t, err)

	_, err = f.service.Get(ctx, resp.ID, "user-2")
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.service.Get(ctx, uuid.New().String(), "user-1")
	assert.ErrorIs(t, err, ErrReservationNotFound)
}
