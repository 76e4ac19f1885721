package bookings

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"bookmyticket/internal/holds"
	"bookmyticket/internal/notifications"
	"bookmyticket/internal/payments"
	"bookmyticket/internal/pricing"
	"bookmyticket/internal/reservations"
	"bookmyticket/internal/wallet"
	"bookmyticket/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrBookingNotFound is returned when the booking id is unknown
	ErrBookingNotFound = errors.New("booking not found")

	// ErrPaymentFailed is returned when the gateway declines the capture.
	// The hold is released before this surfaces.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrPersistenceFailure wraps storage errors during settlement
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrNotRefundable is returned when cancelling a booking that is
	// not in a confirmed state
	ErrNotRefundable = errors.New("booking is not refundable")
)

// ReservationSource freezes and hands over confirmed snapshots.
// Satisfied by the reservations service.
type ReservationSource interface {
	Confirm(ctx context.Context, reservationID, userID string) (*reservations.Snapshot, error)
}

type Service interface {
	// Finalize settles a confirmed reservation: capture payment, write
	// the booking and credit the organizer wallet atomically. Retrying
	// with the same reservation returns the already-created booking.
	Finalize(ctx context.Context, userID, reservationID, paymentMethod string) (*BookingResponse, error)

	GetBooking(ctx context.Context, userID, bookingID string) (*BookingResponse, error)
	ListUserBookings(ctx context.Context, userID string) ([]BookingResponse, error)

	// CancelBooking refunds a confirmed booking: status REFUNDED plus a
	// compensating wallet debit, atomic. The hold is not resurrected.
	CancelBooking(ctx context.Context, userID, bookingID string) (*BookingResponse, error)
}

type service struct {
	repo         Repository
	reservations ReservationSource
	ledger       holds.Ledger
	wallet       wallet.Service
	gateway      payments.Gateway
	producer     notifications.Producer
	logger       *logger.Logger
}

func NewService(
	repo Repository,
	reservationSource ReservationSource,
	ledger holds.Ledger,
	walletService wallet.Service,
	gateway payments.Gateway,
	producer notifications.Producer,
	log *logger.Logger,
) Service {
	if producer == nil {
		producer = notifications.NewNoopProducer()
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:         repo,
		reservations: reservationSource,
		ledger:       ledger,
		wallet:       walletService,
		gateway:      gateway,
		producer:     producer,
		logger:       log,
	}
}

func (s *service) Finalize(ctx context.Context, userID, reservationID, paymentMethod string) (*BookingResponse, error) {
	// Confirm is idempotent: a fresh confirm freezes the snapshot, a
	// repeat returns the frozen one. Expiry is re-checked inside.
	snapshot, err := s.reservations.Confirm(ctx, reservationID, userID)
	if err != nil {
		return nil, err
	}

	// One hold settles into at most one booking
	if existing, err := s.repo.GetByHoldID(snapshot.HoldID); err == nil {
		return toResponse(existing), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	capture, err := s.gateway.Capture(ctx, snapshot.Breakdown.Total, paymentMethod)
	if err != nil {
		return nil, fmt.Errorf("payment capture error: %w", err)
	}
	if !capture.Success {
		// Declined: free the items, record nothing
		if releaseErr := s.ledger.ReleaseAll(ctx, snapshot.HoldID); releaseErr != nil && !errors.Is(releaseErr, holds.ErrHoldNotFound) {
			s.logger.ErrorWithContext(ctx, "Failed to release hold after payment decline", releaseErr, map[string]interface{}{
				"hold_id": snapshot.HoldID,
			})
		}
		s.logger.LogPaymentFailed(ctx, snapshot.HoldID, capture.Reason)
		s.publishEvent(ctx, notifications.EventPaymentFailed, snapshot.UserID, "", snapshot)
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, capture.Reason)
	}

	booking := &Booking{
		BookingReference: generateBookingReference(),
		HoldID:           snapshot.HoldID,
		UserID:           uuid.MustParse(snapshot.UserID),
		EventID:          uuid.MustParse(snapshot.EventID),
		OrganizerID:      uuid.MustParse(snapshot.OrganizerID),
		Status:           StatusConfirmed,
		Subtotal:         snapshot.Breakdown.Subtotal,
		PlatformFee:      snapshot.Breakdown.PlatformFee,
		HandlingFee:      snapshot.Breakdown.HandlingFee,
		Tax:              snapshot.Breakdown.Tax,
		TotalAmount:      snapshot.Breakdown.Total,
		PaymentReference: capture.Reference,
	}
	for _, item := range snapshot.Items {
		booking.Items = append(booking.Items, BookingItem{
			ItemID:    uuid.MustParse(item.ItemID),
			UnitPrice: item.UnitPrice,
		})
	}

	// Booking and organizer credit commit in one transaction
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, booking); err != nil {
			return err
		}
		credit := pricing.OrganizerCredit(snapshot.Breakdown)
		if _, err := s.wallet.Credit(tx, booking.OrganizerID, credit, &booking.ID, booking.BookingReference); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		// A concurrent finalize may have won the unique hold_id race
		if existing, getErr := s.repo.GetByHoldID(snapshot.HoldID); getErr == nil {
			return toResponse(existing), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	s.logger.LogBookingFinalized(ctx, booking.ID.String(), booking.HoldID, snapshot.UserID, booking.TotalAmount)
	s.publishEvent(ctx, notifications.EventBookingConfirmed, snapshot.UserID, booking.ID.String(), snapshot)

	return toResponse(booking), nil
}

func (s *service) GetBooking(ctx context.Context, userID, bookingID string) (*BookingResponse, error) {
	booking, err := s.getOwned(userID, bookingID)
	if err != nil {
		return nil, err
	}
	return toResponse(booking), nil
}

func (s *service) ListUserBookings(ctx context.Context, userID string) ([]BookingResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	bookings, err := s.repo.GetByUserID(id, 20)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	responses := make([]BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = *toResponse(&bookings[i])
	}
	return responses, nil
}

func (s *service) CancelBooking(ctx context.Context, userID, bookingID string) (*BookingResponse, error) {
	booking, err := s.getOwned(userID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != StatusConfirmed {
		return nil, ErrNotRefundable
	}

	// Refund and compensating debit commit together
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpdateStatusTx(tx, booking.ID, StatusRefunded); err != nil {
			return err
		}
		debit := booking.Subtotal - booking.PlatformFee
		if _, err := s.wallet.Debit(tx, booking.OrganizerID, debit, &booking.ID, booking.BookingReference); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	booking.Status = StatusRefunded

	// Free the claimed items; the hold itself stays settled
	if err := s.ledger.ReleaseAll(ctx, booking.HoldID); err != nil && !errors.Is(err, holds.ErrHoldNotFound) {
		s.logger.ErrorWithContext(ctx, "Failed to release hold after refund", err, map[string]interface{}{
			"hold_id": booking.HoldID,
		})
	}

	s.logger.LogBookingRefunded(ctx, booking.ID.String(), userID, booking.Subtotal-booking.PlatformFee)
	s.publishEvent(ctx, notifications.EventBookingRefunded, userID, booking.ID.String(), nil)

	return toResponse(booking), nil
}

func (s *service) getOwned(userID, bookingID string) (*Booking, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	booking, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	if booking.UserID.String() != userID {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// publishEvent is fire-and-forget: delivery failures never roll back a
// settled booking
func (s *service) publishEvent(ctx context.Context, eventType notifications.EventType, userID, bookingID string, snapshot *reservations.Snapshot) {
	event := notifications.NewBookingEvent(eventType, userID)
	event.BookingID = bookingID
	if snapshot != nil {
		event.HoldID = snapshot.HoldID
		event.EventID = snapshot.EventID
		event.Amount = snapshot.Breakdown.Total
	}

	go func() {
		publishCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.producer.PublishBookingEvent(publishCtx, event); err != nil {
			s.logger.ErrorWithContext(publishCtx, "Failed to publish booking event", err, map[string]interface{}{
				"event_type": string(eventType),
				"booking_id": bookingID,
			})
		}
	}()
}

// generateBookingReference creates a reference like BMT-20260314-QZKXLM
func generateBookingReference() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	suffix := make([]byte, 6)
	for i := range suffix {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		suffix[i] = letters[n.Int64()]
	}
	return fmt.Sprintf("BMT-%s-%s", time.Now().UTC().Format("20060102"), string(suffix))
}
