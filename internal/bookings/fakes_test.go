package bookings

import (
	"context"
	"fmt"
	"time"

	"epicly/internal/catalog"
	"epicly/internal/inventory"
	"epicly/internal/shared/apperrors"
	"epicly/internal/shared/config"

	"github.com/google/uuid"
)

// fakeSeatStateRepo is an in-memory inventory.Repository with the same
// version-guard semantics the SQL repository enforces.
type fakeSeatStateRepo struct {
	states map[uuid.UUID]*inventory.ScheduleSeatState
}

func newFakeSeatStateRepo() *fakeSeatStateRepo {
	return &fakeSeatStateRepo{states: make(map[uuid.UUID]*inventory.ScheduleSeatState)}
}

func (f *fakeSeatStateRepo) seed(scheduleID, seatID uuid.UUID, status inventory.SeatStatus, heldBy *uuid.UUID, heldUntil *time.Time) *inventory.ScheduleSeatState {
	st := &inventory.ScheduleSeatState{
		ID:         uuid.New(),
		ScheduleID: scheduleID,
		SeatID:     seatID,
		Status:     status,
		HeldBy:     heldBy,
		HeldUntil:  heldUntil,
	}
	f.states[st.ID] = st
	return st
}

func (f *fakeSeatStateRepo) bySeat(seatID uuid.UUID) *inventory.ScheduleSeatState {
	for _, st := range f.states {
		if st.SeatID == seatID {
			return st
		}
	}
	return nil
}

func (f *fakeSeatStateRepo) InTx(ctx context.Context, fn func(tx inventory.Repository) error) error {
	return fn(f)
}

func (f *fakeSeatStateRepo) LockStates(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID) ([]inventory.ScheduleSeatState, error) {
	want := make(map[uuid.UUID]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		want[id] = struct{}{}
	}
	var out []inventory.ScheduleSeatState
	for _, st := range f.states {
		if st.ScheduleID != scheduleID {
			continue
		}
		if _, ok := want[st.SeatID]; ok {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (f *fakeSeatStateRepo) UpdateStateGuarded(ctx context.Context, state *inventory.ScheduleSeatState) error {
	stored, ok := f.states[state.ID]
	if !ok || stored.Version != state.Version {
		return fmt.Errorf("%w: seat state %s changed concurrently", apperrors.ErrTransientStore, state.ID)
	}
	state.Version++
	copied := *state
	f.states[state.ID] = &copied
	return nil
}

func (f *fakeSeatStateRepo) ListStates(ctx context.Context, scheduleID uuid.UUID) ([]inventory.ScheduleSeatState, error) {
	var out []inventory.ScheduleSeatState
	for _, st := range f.states {
		if st.ScheduleID == scheduleID {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (f *fakeSeatStateRepo) FindExpiredHeld(ctx context.Context, now time.Time, limit int) ([]inventory.ScheduleSeatState, error) {
	return nil, nil
}

func (f *fakeSeatStateRepo) ReclaimExpired(ctx context.Context, state *inventory.ScheduleSeatState) (bool, error) {
	return false, nil
}

func (f *fakeSeatStateRepo) CreateStates(ctx context.Context, states []inventory.ScheduleSeatState) error {
	for i := range states {
		copied := states[i]
		f.states[copied.ID] = &copied
	}
	return nil
}

// fakeBookingRepo is an in-memory Repository sharing a seat-state repo
// the way the real one shares a transaction handle.
type fakeBookingRepo struct {
	bookings map[uuid.UUID]*Booking
	seats    map[uuid.UUID][]BookingSeat
	payments map[uuid.UUID]*Payment // keyed by booking ID
	inv      *fakeSeatStateRepo
}

func newFakeBookingRepo(inv *fakeSeatStateRepo) *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[uuid.UUID]*Booking),
		seats:    make(map[uuid.UUID][]BookingSeat),
		payments: make(map[uuid.UUID]*Payment),
		inv:      inv,
	}
}

func (f *fakeBookingRepo) InTx(ctx context.Context, fn func(tx Repository) error) error {
	return fn(f)
}

func (f *fakeBookingRepo) Inventory() inventory.Repository {
	return f.inv
}

func (f *fakeBookingRepo) CreateBooking(ctx context.Context, booking *Booking) error {
	copied := *booking
	copied.Seats = nil
	copied.Payment = nil
	f.bookings[booking.ID] = &copied
	return nil
}

func (f *fakeBookingRepo) CreateBookingSeats(ctx context.Context, seats []BookingSeat) error {
	for _, seat := range seats {
		f.seats[seat.BookingID] = append(f.seats[seat.BookingID], seat)
	}
	return nil
}

func (f *fakeBookingRepo) load(id uuid.UUID) (*Booking, error) {
	stored, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.NewNotFound("booking", id.String())
	}
	copied := *stored
	copied.Seats = append([]BookingSeat(nil), f.seats[id]...)
	if payment, ok := f.payments[id]; ok {
		paymentCopy := *payment
		copied.Payment = &paymentCopy
	}
	return &copied, nil
}

func (f *fakeBookingRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return f.load(id)
}

func (f *fakeBookingRepo) LockBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return f.load(id)
}

func (f *fakeBookingRepo) SaveBooking(ctx context.Context, booking *Booking) error {
	stored, ok := f.bookings[booking.ID]
	if !ok {
		return apperrors.NewNotFound("booking", booking.ID.String())
	}
	stored.Status = booking.Status
	stored.ConfirmedAt = booking.ConfirmedAt
	stored.CancelledAt = booking.CancelledAt
	stored.UpdatedAt = booking.UpdatedAt
	return nil
}

func (f *fakeBookingRepo) CreatePayment(ctx context.Context, payment *Payment) error {
	if _, exists := f.payments[payment.BookingID]; exists {
		return fmt.Errorf("duplicate payment for booking %s", payment.BookingID)
	}
	copied := *payment
	f.payments[payment.BookingID] = &copied
	return nil
}

func (f *fakeBookingRepo) GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, error) {
	var out []Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error) {
	var out []Booking
	for _, b := range f.bookings {
		if b.Status == StatusPending && b.CreatedAt.Before(cutoff) {
			out = append(out, *b)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// fakeSeatCatalog serves fixed seat prices.
type fakeSeatCatalog struct {
	seats map[uuid.UUID]catalog.Seat
}

func (f *fakeSeatCatalog) ListEvents(ctx context.Context, filter catalog.EventFilter) ([]catalog.Event, error) {
	return nil, nil
}

func (f *fakeSeatCatalog) GetEventByID(ctx context.Context, id uuid.UUID) (*catalog.Event, error) {
	return nil, apperrors.NewNotFound("event", id.String())
}

func (f *fakeSeatCatalog) ListSchedules(ctx context.Context, eventID uuid.UUID, filter catalog.ScheduleFilter) ([]catalog.Schedule, error) {
	return nil, nil
}

func (f *fakeSeatCatalog) GetScheduleByID(ctx context.Context, id uuid.UUID) (*catalog.Schedule, error) {
	return &catalog.Schedule{ID: id}, nil
}

func (f *fakeSeatCatalog) GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]catalog.Seat, error) {
	var out []catalog.Seat
	for _, id := range seatIDs {
		if seat, ok := f.seats[id]; ok {
			out = append(out, seat)
		}
	}
	return out, nil
}

func (f *fakeSeatCatalog) GetSeatsBySectionID(ctx context.Context, sectionID uuid.UUID) ([]catalog.Seat, error) {
	return nil, nil
}

// fakeInventoryService records cache invalidations.
type fakeInventoryService struct {
	invalidated []uuid.UUID
}

func (f *fakeInventoryService) PlaceHold(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID) (*inventory.Hold, error) {
	return nil, nil
}

func (f *fakeInventoryService) ListScheduleSeats(ctx context.Context, scheduleID uuid.UUID) ([]inventory.SeatView, error) {
	return nil, nil
}

func (f *fakeInventoryService) InvalidateSeatListing(ctx context.Context, scheduleID uuid.UUID) {
	f.invalidated = append(f.invalidated, scheduleID)
}

// fakePublisher records lifecycle events.
type fakePublisher struct {
	created   []uuid.UUID
	confirmed []uuid.UUID
	cancelled []uuid.UUID
	reasons   []string
}

func (f *fakePublisher) BookingCreated(ctx context.Context, booking *Booking) {
	f.created = append(f.created, booking.ID)
}

func (f *fakePublisher) BookingConfirmed(ctx context.Context, booking *Booking) {
	f.confirmed = append(f.confirmed, booking.ID)
}

func (f *fakePublisher) BookingCancelled(ctx context.Context, booking *Booking, reason string) {
	f.cancelled = append(f.cancelled, booking.ID)
	f.reasons = append(f.reasons, reason)
}

// fakeGateway returns a canned charge result.
type fakeGateway struct {
	result ChargeResult
	err    error
	calls  []ChargeRequest
}

func (f *fakeGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return ChargeResult{}, f.err
	}
	return f.result, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Hold: config.HoldConfig{
			TTL:            5 * time.Minute,
			SweepInterval:  time.Second,
			SweepBatchSize: 100,
			TxRetries:      2,
		},
		Payment: config.PaymentConfig{
			GatewayMode: "stub",
			PendingTTL:  15 * time.Minute,
		},
	}
}
