package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookmyticket/internal/holds"
	"bookmyticket/internal/notifications"
	"bookmyticket/internal/payments"
	"bookmyticket/internal/pricing"
	"bookmyticket/internal/reservations"
	"bookmyticket/internal/wallet"
	"bookmyticket/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByID(id uuid.UUID) (*Booking, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockRepository) GetByHoldID(holdID string) (*Booking, error) {
	args := m.Called(holdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockRepository) GetByUserID(userID uuid.UUID, limit int) ([]Booking, error) {
	args := m.Called(userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

// Transaction runs fn with a nil tx unless an error is stubbed, so the
// inner CreateTx and wallet movement expectations still fire.
func (m *MockRepository) Transaction(fn func(tx *gorm.DB) error) error {
	args := m.Called(fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(nil)
}

func (m *MockRepository) CreateTx(tx *gorm.DB, booking *Booking) error {
	args := m.Called(tx, booking)
	return args.Error(0)
}

func (m *MockRepository) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status BookingStatus) error {
	args := m.Called(tx, id, status)
	return args.Error(0)
}

type MockReservationSource struct {
	mock.Mock
}

func (m *MockReservationSource) Confirm(ctx context.Context, reservationID, userID string) (*reservations.Snapshot, error) {
	args := m.Called(ctx, reservationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservations.Snapshot), args.Error(1)
}

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) GetWallet(organizerID uuid.UUID) (*wallet.WalletResponse, error) {
	args := m.Called(organizerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.WalletResponse), args.Error(1)
}

func (m *MockWalletService) Credit(tx *gorm.DB, organizerID uuid.UUID, amount int64, bookingID *uuid.UUID, reference string) (*wallet.Transaction, error) {
	args := m.Called(tx, organizerID, amount, bookingID, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

func (m *MockWalletService) Debit(tx *gorm.DB, organizerID uuid.UUID, amount int64, bookingID *uuid.UUID, reference string) (*wallet.Transaction, error) {
	args := m.Called(tx, organizerID, amount, bookingID, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

type bookingFixture struct {
	service      Service
	repo         *MockRepository
	reservations *MockReservationSource
	wallet       *MockWalletService
	ledger       *holds.MemoryLedger
	clock        *clock.Fake

	userID      uuid.UUID
	eventID     uuid.UUID
	organizerID uuid.UUID
	itemA       uuid.UUID
	itemB       uuid.UUID
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	fake := clock.NewFake(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	f := &bookingFixture{
		repo:         new(MockRepository),
		reservations: new(MockReservationSource),
		wallet:       new(MockWalletService),
		ledger:       holds.NewMemoryLedger(fake),
		clock:        fake,
		userID:       uuid.New(),
		eventID:      uuid.New(),
		organizerID:  uuid.New(),
		itemA:        uuid.New(),
		itemB:        uuid.New(),
	}
	f.service = NewService(
		f.repo,
		f.reservations,
		f.ledger,
		f.wallet,
		payments.NewMockGateway(),
		notifications.NewNoopProducer(),
		nil,
	)
	return f
}

// confirmedSnapshot mirrors a two-seat cart at 100 per seat with the
// default fee knobs: 200 + 10 + 20 + 5 = 235.
func (f *bookingFixture) confirmedSnapshot(holdID string) *reservations.Snapshot {
	items := []pricing.LineItem{
		{ItemID: f.itemA.String(), UnitPrice: 100},
		{ItemID: f.itemB.String(), UnitPrice: 100},
	}
	return &reservations.Snapshot{
		ReservationID: uuid.NewString(),
		HoldID:        holdID,
		UserID:        f.userID.String(),
		EventID:       f.eventID.String(),
		OrganizerID:   f.organizerID.String(),
		Items:         items,
		Breakdown: pricing.Compute(items, pricing.Config{
			PlatformFeePercent: 0.05,
			HandlingFeePerItem: 10,
			TaxPercent:         0.18,
		}),
		ConfirmedAt: f.clock.Now(),
	}
}

func (f *bookingFixture) confirmedBooking(holdID string) *Booking {
	return &Booking{
		ID:               uuid.New(),
		BookingReference: "BMT-20260314-ABCDEF",
		HoldID:           holdID,
		UserID:           f.userID,
		EventID:          f.eventID,
		OrganizerID:      f.organizerID,
		Status:           StatusConfirmed,
		Subtotal:         200,
		PlatformFee:      10,
		HandlingFee:      20,
		Tax:              5,
		TotalAmount:      235,
		PaymentReference: "TXN_1234_abcd",
		Items: []BookingItem{
			{ItemID: f.itemA, UnitPrice: 100},
			{ItemID: f.itemB, UnitPrice: 100},
		},
		CreatedAt: f.clock.Now(),
	}
}

func TestFinalize_CreatesBookingAndCreditsOrganizer(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	holdID := uuid.NewString()
	snapshot := f.confirmedSnapshot(holdID)

	f.reservations.On("Confirm", mock.Anything, snapshot.ReservationID, f.userID.String()).Return(snapshot, nil)
	f.repo.On("GetByHoldID", holdID).Return(nil, gorm.ErrRecordNotFound)
	f.repo.On("Transaction", mock.Anything).Return(nil)
	f.repo.On("CreateTx", mock.Anything, mock.AnythingOfType("*bookings.Booking")).Return(nil)
	f.wallet.On("Credit", mock.Anything, f.organizerID, int64(190), mock.Anything, mock.AnythingOfType("string")).
		Return(&wallet.Transaction{}, nil)

	resp, err := f.service.Finalize(ctx, f.userID.String(), snapshot.ReservationID, "card")
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, resp.Status)
	assert.Equal(t, int64(200), resp.Subtotal)
	assert.Equal(t, int64(10), resp.PlatformFee)
	assert.Equal(t, int64(20), resp.HandlingFee)
	assert.Equal(t, int64(5), resp.Tax)
	assert.Equal(t, int64(235), resp.TotalAmount)
	assert.NotEmpty(t, resp.PaymentReference)
	assert.Regexp(t, `^BMT-\d{8}-[A-Z]{6}$`, resp.BookingReference)
	assert.Len(t, resp.Items, 2)

	f.wallet.AssertExpectations(t)
	f.repo.AssertExpectations(t)
}

func TestFinalize_PaymentDeclineReleasesHold(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	holdID := uuid.NewString()

	_, err := f.ledger.TryReserve(ctx, holdID, f.userID.String(), f.eventID.String(),
		[]string{f.itemA.String(), f.itemB.String()}, 5*time.Minute)
	require.NoError(t, err)

	snapshot := f.confirmedSnapshot(holdID)
	f.reservations.On("Confirm", mock.Anything, snapshot.ReservationID, f.userID.String()).Return(snapshot, nil)
	f.repo.On("GetByHoldID", holdID).Return(nil, gorm.ErrRecordNotFound)

	resp, err := f.service.Finalize(ctx, f.userID.String(), snapshot.ReservationID, "fail_card")
	require.ErrorIs(t, err, ErrPaymentFailed)
	assert.Nil(t, resp)

	// The decline frees the claimed items and writes nothing
	held, err := f.ledger.IsHeld(ctx, f.itemA.String())
	require.NoError(t, err)
	assert.False(t, held)
	f.repo.AssertNotCalled(t, "Transaction", mock.Anything)
	f.repo.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything)
	f.wallet.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFinalize_IdempotentByHold(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	holdID := uuid.NewString()
	snapshot := f.confirmedSnapshot(holdID)
	existing := f.confirmedBooking(holdID)

	f.reservations.On("Confirm", mock.Anything, snapshot.ReservationID, f.userID.String()).Return(snapshot, nil)
	f.repo.On("GetByHoldID", holdID).Return(existing, nil)

	resp, err := f.service.Finalize(ctx, f.userID.String(), snapshot.ReservationID, "card")
	require.NoError(t, err)

	assert.Equal(t, existing.ID.String(), resp.ID)
	assert.Equal(t, existing.BookingReference, resp.BookingReference)
	f.repo.AssertNotCalled(t, "Transaction", mock.Anything)
	f.wallet.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFinalize_ConcurrentWriteFallsBackToWinner(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	holdID := uuid.NewString()
	snapshot := f.confirmedSnapshot(holdID)
	winner := f.confirmedBooking(holdID)

	f.reservations.On("Confirm", mock.Anything, snapshot.ReservationID, f.userID.String()).Return(snapshot, nil)
	f.repo.On("GetByHoldID", holdID).Return(nil, gorm.ErrRecordNotFound).Once()
	f.repo.On("Transaction", mock.Anything).Return(errors.New("duplicate key value violates unique constraint"))
	f.repo.On("GetByHoldID", holdID).Return(winner, nil).Once()

	resp, err := f.service.Finalize(ctx, f.userID.String(), snapshot.ReservationID, "card")
	require.NoError(t, err)
	assert.Equal(t, winner.ID.String(), resp.ID)
}

func TestFinalize_PersistenceFailureSurfaces(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	holdID := uuid.NewString()
	snapshot := f.confirmedSnapshot(holdID)

	f.reservations.On("Confirm", mock.Anything, snapshot.ReservationID, f.userID.String()).Return(snapshot, nil)
	f.repo.On("GetByHoldID", holdID).Return(nil, gorm.ErrRecordNotFound)
	f.repo.On("Transaction", mock.Anything).Return(errors.New("connection refused"))

	_, err := f.service.Finalize(ctx, f.userID.String(), snapshot.ReservationID, "card")
	require.ErrorIs(t, err, ErrPersistenceFailure)
}

func TestFinalize_ExpiredReservationRejected(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	reservationID := uuid.NewString()

	f.reservations.On("Confirm", mock.Anything, reservationID, f.userID.String()).Return(nil, holds.ErrHoldExpired)

	_, err := f.service.Finalize(ctx, f.userID.String(), reservationID, "card")
	require.ErrorIs(t, err, holds.ErrHoldExpired)
	f.repo.AssertNotCalled(t, "GetByHoldID", mock.Anything)
}

func TestCancelBooking_RefundsAndDebitsWallet(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	booking := f.confirmedBooking(uuid.NewString())

	f.repo.On("GetByID", booking.ID).Return(booking, nil)
	f.repo.On("Transaction", mock.Anything).Return(nil)
	f.repo.On("UpdateStatusTx", mock.Anything, booking.ID, StatusRefunded).Return(nil)
	f.wallet.On("Debit", mock.Anything, f.organizerID, int64(190), mock.Anything, booking.BookingReference).
		Return(&wallet.Transaction{}, nil)

	resp, err := f.service.CancelBooking(ctx, f.userID.String(), booking.ID.String())
	require.NoError(t, err)

	assert.Equal(t, StatusRefunded, resp.Status)
	f.wallet.AssertExpectations(t)
	f.repo.AssertExpectations(t)
}

func TestCancelBooking_RefundFreesConfirmedItems(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	holdID := uuid.NewString()

	_, err := f.ledger.TryReserve(ctx, holdID, f.userID.String(), f.eventID.String(),
		[]string{f.itemA.String()}, 5*time.Minute)
	require.NoError(t, err)
	_, err = f.ledger.MarkConfirmed(ctx, holdID)
	require.NoError(t, err)

	booking := f.confirmedBooking(holdID)
	f.repo.On("GetByID", booking.ID).Return(booking, nil)
	f.repo.On("Transaction", mock.Anything).Return(nil)
	f.repo.On("UpdateStatusTx", mock.Anything, booking.ID, StatusRefunded).Return(nil)
	f.wallet.On("Debit", mock.Anything, f.organizerID, int64(190), mock.Anything, booking.BookingReference).
		Return(&wallet.Transaction{}, nil)

	_, err = f.service.CancelBooking(ctx, f.userID.String(), booking.ID.String())
	require.NoError(t, err)

	held, err := f.ledger.IsHeld(ctx, f.itemA.String())
	require.NoError(t, err)
	assert.False(t, held)
}

func TestCancelBooking_NotRefundable(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	booking := f.confirmedBooking(uuid.NewString())
	booking.Status = StatusRefunded

	f.repo.On("GetByID", booking.ID).Return(booking, nil)

	_, err := f.service.CancelBooking(ctx, f.userID.String(), booking.ID.String())
	require.ErrorIs(t, err, ErrNotRefundable)
	f.wallet.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetBooking_OwnershipEnforced(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	booking := f.confirmedBooking(uuid.NewString())

	f.repo.On("GetByID", booking.ID).Return(booking, nil)

	// Another user probing the id learns nothing
	_, err := f.service.GetBooking(ctx, uuid.NewString(), booking.ID.String())
	require.ErrorIs(t, err, ErrBookingNotFound)

	resp, err := f.service.GetBooking(ctx, f.userID.String(), booking.ID.String())
	require.NoError(t, err)
	assert.Equal(t, booking.ID.String(), resp.ID)
}

func TestListUserBookings(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	booking := f.confirmedBooking(uuid.NewString())

	f.repo.On("GetByUserID", f.userID, 20).Return([]Booking{*booking}, nil)

	resp, err := f.service.ListUserBookings(ctx, f.userID.String())
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, booking.BookingReference, resp[0].BookingReference)
}
