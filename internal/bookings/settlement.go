package bookings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"epicly/internal/inventory"
	"epicly/internal/shared/apperrors"
	"epicly/internal/shared/config"
	"epicly/pkg/logger"

	"github.com/google/uuid"
)

// SettlementInput is the reported result of a payment attempt.
type SettlementInput struct {
	Outcome        Outcome
	Method         PaymentMethod
	TransactionRef string
	FailureReason  string
}

// SettlementService applies payment outcomes to PENDING bookings.
// Terminal booking states are final: settling a CONFIRMED or CANCELLED
// booking fails with InvalidState and changes nothing.
type SettlementService interface {
	// Settle records the payment and moves the booking to its terminal
	// state in one transaction. SUCCESS confirms the booking; FAILURE
	// cancels it and returns its seats to AVAILABLE.
	Settle(ctx context.Context, bookingID uuid.UUID, input SettlementInput) (*Booking, error)

	// CancelExpiredPending cancels bookings that stayed PENDING past the
	// payment window, releasing their seats. No payment row is written
	// for these. Returns the number of bookings cancelled.
	CancelExpiredPending(ctx context.Context, olderThan time.Time, limit int) (int, error)
}

type settlementService struct {
	repo      Repository
	inventory inventory.Service
	publisher LifecyclePublisher
	config    *config.Config
	now       func() time.Time
}

func NewSettlementService(repo Repository, inventoryService inventory.Service, publisher LifecyclePublisher, cfg *config.Config) SettlementService {
	return &settlementService{
		repo:      repo,
		inventory: inventoryService,
		publisher: publisher,
		config:    cfg,
		now:       time.Now,
	}
}

func (s *settlementService) Settle(ctx context.Context, bookingID uuid.UUID, input SettlementInput) (*Booking, error) {
	if !input.Outcome.IsValid() {
		return nil, fmt.Errorf("%w: outcome must be SUCCESS or FAILURE", apperrors.ErrValidationFailed)
	}

	var settled *Booking
	attempt := func() error {
		return s.repo.InTx(ctx, func(tx Repository) error {
			booking, err := tx.LockBooking(ctx, bookingID)
			if err != nil {
				return err
			}
			if !booking.IsPending() {
				return apperrors.NewInvalidState("booking", booking.ID.String(),
					booking.Status.String(), StatusPending.String())
			}

			now := s.now().UTC()
			payment := &Payment{
				BookingID: booking.ID,
				Amount:    booking.TotalAmount,
				Method:    input.Method,
				Status:    PaymentPending,
			}

			if input.Outcome == OutcomeSuccess {
				payment.MarkSuccess(input.TransactionRef, now)
				booking.Confirm(now)
			} else {
				payment.MarkFailed(input.FailureReason, now)
				booking.Cancel(now)
				if err := releaseBookedSeats(ctx, tx, booking, now); err != nil {
					return err
				}
			}

			if err := tx.CreatePayment(ctx, payment); err != nil {
				return err
			}
			if err := tx.SaveBooking(ctx, booking); err != nil {
				return err
			}
			booking.Payment = payment
			settled = booking
			return nil
		})
	}

	if err := retryTransient(attempt, s.config.Hold.TxRetries); err != nil {
		return nil, err
	}

	s.afterSettle(ctx, settled, input.FailureReason)
	return settled, nil
}

func (s *settlementService) CancelExpiredPending(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	expired, err := s.repo.FindExpiredPending(ctx, olderThan, limit)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for i := range expired {
		bookingID := expired[i].ID
		var reclaimed *Booking
		err := s.repo.InTx(ctx, func(tx Repository) error {
			booking, err := tx.LockBooking(ctx, bookingID)
			if err != nil {
				return err
			}
			// A payment may have settled it between scan and lock.
			if !booking.IsPending() {
				return nil
			}
			now := s.now().UTC()
			booking.Cancel(now)
			if err := releaseBookedSeats(ctx, tx, booking, now); err != nil {
				return err
			}
			if err := tx.SaveBooking(ctx, booking); err != nil {
				return err
			}
			reclaimed = booking
			return nil
		})
		if err != nil {
			logger.GetDefault().Error("failed to cancel expired booking",
				slog.String("booking_id", bookingID.String()),
				slog.Any("error", err),
			)
			continue
		}
		if reclaimed != nil {
			cancelled++
			s.afterSettle(ctx, reclaimed, "payment window elapsed")
		}
	}
	return cancelled, nil
}

// releaseBookedSeats flips the booking's BOOKED seat rows back to
// AVAILABLE inside the caller's transaction.
func releaseBookedSeats(ctx context.Context, tx Repository, booking *Booking, now time.Time) error {
	seatIDs := booking.SeatIDs()
	if len(seatIDs) == 0 {
		return nil
	}

	inv := tx.Inventory()
	states, err := inv.LockStates(ctx, booking.ScheduleID, seatIDs)
	if err != nil {
		return err
	}
	for i := range states {
		state := &states[i]
		if state.Status != inventory.SeatBooked {
			continue
		}
		state.Status = inventory.SeatAvailable
		state.HeldBy = nil
		state.HeldUntil = nil
		if err := inv.UpdateStateGuarded(ctx, state); err != nil {
			return err
		}
	}
	return nil
}

func (s *settlementService) afterSettle(ctx context.Context, booking *Booking, reason string) {
	if booking == nil {
		return
	}
	if booking.IsCancelled() && s.inventory != nil {
		s.inventory.InvalidateSeatListing(ctx, booking.ScheduleID)
	}
	if s.publisher == nil {
		return
	}
	if booking.IsConfirmed() {
		s.publisher.BookingConfirmed(ctx, booking)
	} else if booking.IsCancelled() {
		s.publisher.BookingCancelled(ctx, booking, reason)
	}
}
