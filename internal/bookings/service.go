package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"epicly/internal/catalog"
	"epicly/internal/inventory"
	"epicly/internal/shared/apperrors"
	"epicly/internal/shared/config"

	"github.com/google/uuid"
)

// LifecyclePublisher fans booking lifecycle changes out to interested
// consumers. Implementations must not block request handling; failures
// are logged, never surfaced to callers.
type LifecyclePublisher interface {
	BookingCreated(ctx context.Context, booking *Booking)
	BookingConfirmed(ctx context.Context, booking *Booking)
	BookingCancelled(ctx context.Context, booking *Booking, reason string)
}

// CreateBookingInput is the validated input to the booking orchestrator.
type CreateBookingInput struct {
	ScheduleID uuid.UUID
	SeatIDs    []uuid.UUID
	HoldToken  uuid.UUID
}

type Service interface {
	// CreateBooking converts a valid hold into a PENDING booking in one
	// transaction: every requested seat must currently be HELD under the
	// presented token. The seats move to BOOKED; payment settles later.
	CreateBooking(ctx context.Context, userID uuid.UUID, input CreateBookingInput) (*Booking, error)

	GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, error)

	// ProcessPayment charges the configured gateway for a PENDING
	// booking and settles the outcome. The gateway call happens outside
	// the settlement transaction.
	ProcessPayment(ctx context.Context, bookingID uuid.UUID, method PaymentMethod) (*Booking, error)
}

type service struct {
	repo        Repository
	catalogRepo catalog.Repository
	inventory   inventory.Service
	settlement  SettlementService
	gateway     PaymentGateway
	publisher   LifecyclePublisher
	config      *config.Config
	now         func() time.Time
}

func NewService(
	repo Repository,
	catalogRepo catalog.Repository,
	inventoryService inventory.Service,
	settlement SettlementService,
	gateway PaymentGateway,
	publisher LifecyclePublisher,
	cfg *config.Config,
) Service {
	return &service{
		repo:        repo,
		catalogRepo: catalogRepo,
		inventory:   inventoryService,
		settlement:  settlement,
		gateway:     gateway,
		publisher:   publisher,
		config:      cfg,
		now:         time.Now,
	}
}

func (s *service) CreateBooking(ctx context.Context, userID uuid.UUID, input CreateBookingInput) (*Booking, error) {
	seatIDs := dedupeSeatIDs(input.SeatIDs)
	if len(seatIDs) == 0 {
		return nil, fmt.Errorf("%w: no seats specified", apperrors.ErrValidationFailed)
	}
	if input.HoldToken == uuid.Nil {
		return nil, fmt.Errorf("%w: hold token is required", apperrors.ErrValidationFailed)
	}

	// Price from the catalog, frozen into the booking rows at creation.
	seats, err := s.catalogRepo.GetSeatsByIDs(ctx, seatIDs)
	if err != nil {
		return nil, err
	}
	prices := make(map[uuid.UUID]float64, len(seats))
	for _, seat := range seats {
		prices[seat.ID] = seat.BasePrice
	}
	for _, id := range seatIDs {
		if _, ok := prices[id]; !ok {
			return nil, apperrors.NewNotFound("seat", id.String())
		}
	}

	var created *Booking
	attempt := func() error {
		return s.repo.InTx(ctx, func(tx Repository) error {
			inv := tx.Inventory()
			states, err := inv.LockStates(ctx, input.ScheduleID, seatIDs)
			if err != nil {
				return err
			}
			if len(states) < len(seatIDs) {
				return apperrors.NewNotFound("schedule seat", missingStateIDs(seatIDs, states))
			}

			now := s.now().UTC()
			var unavailable []uuid.UUID
			for i := range states {
				if !states[i].HeldValidBy(input.HoldToken, now) {
					unavailable = append(unavailable, states[i].SeatID)
				}
			}
			if len(unavailable) > 0 {
				return apperrors.NewSeatUnavailable(input.ScheduleID, unavailable)
			}

			total := 0.0
			bookingSeats := make([]BookingSeat, 0, len(seatIDs))
			booking := &Booking{
				ID:         uuid.New(),
				UserID:     userID,
				ScheduleID: input.ScheduleID,
				TotalSeats: len(seatIDs),
				Status:     StatusPending,
				BookingRef: NewBookingRef(),
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			for _, id := range seatIDs {
				price := prices[id]
				total += price
				bookingSeats = append(bookingSeats, BookingSeat{
					ID:        uuid.New(),
					BookingID: booking.ID,
					SeatID:    id,
					Price:     price,
					CreatedAt: now,
				})
			}
			booking.TotalAmount = total

			if err := tx.CreateBooking(ctx, booking); err != nil {
				return err
			}
			if err := tx.CreateBookingSeats(ctx, bookingSeats); err != nil {
				return err
			}

			for i := range states {
				state := &states[i]
				state.Status = inventory.SeatBooked
				state.HeldBy = nil
				state.HeldUntil = nil
				if err := inv.UpdateStateGuarded(ctx, state); err != nil {
					return err
				}
			}

			booking.Seats = bookingSeats
			created = booking
			return nil
		})
	}

	if err := retryTransient(attempt, s.config.Hold.TxRetries); err != nil {
		return nil, err
	}

	s.inventory.InvalidateSeatListing(ctx, input.ScheduleID)
	if s.publisher != nil {
		s.publisher.BookingCreated(ctx, created)
	}
	return created, nil
}

func (s *service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.GetBookingByID(ctx, id)
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetUserBookings(ctx, userID, limit, offset)
}

func (s *service) ProcessPayment(ctx context.Context, bookingID uuid.UUID, method PaymentMethod) (*Booking, error) {
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: unsupported payment method %q", apperrors.ErrValidationFailed, method)
	}

	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsPending() {
		return nil, apperrors.NewInvalidState("booking", booking.ID.String(),
			booking.Status.String(), StatusPending.String())
	}

	result, err := s.gateway.Charge(ctx, ChargeRequest{
		BookingID:  booking.ID,
		BookingRef: booking.BookingRef,
		Amount:     booking.TotalAmount,
		Method:     method,
	})
	if err != nil {
		return nil, fmt.Errorf("payment attempt failed: %w", err)
	}

	return s.settlement.Settle(ctx, booking.ID, SettlementInput{
		Outcome:        result.Outcome,
		Method:         method,
		TransactionRef: result.TransactionRef,
		FailureReason:  result.FailureReason,
	})
}

// retryTransient retries op on TransientStoreFailure up to retries times.
// All other errors surface immediately.
func retryTransient(op func() error, retries int) error {
	var err error
	for i := 0; i <= retries; i++ {
		err = op()
		if err == nil || !errors.Is(err, apperrors.ErrTransientStore) {
			return err
		}
	}
	return err
}

func dedupeSeatIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingStateIDs(requested []uuid.UUID, found []inventory.ScheduleSeatState) string {
	present := make(map[uuid.UUID]struct{}, len(found))
	for _, st := range found {
		present[st.SeatID] = struct{}{}
	}
	missing := ""
	for _, id := range requested {
		if _, ok := present[id]; !ok {
			if missing != "" {
				missing += ","
			}
			missing += id.String()
		}
	}
	return missing
}
