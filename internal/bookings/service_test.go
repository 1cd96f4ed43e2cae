package bookings

import (
	"context"
	"testing"
	"time"

	"epicly/internal/catalog"
	"epicly/internal/inventory"
	"epicly/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	repo       *fakeBookingRepo
	states     *fakeSeatStateRepo
	cat        *fakeSeatCatalog
	invService *fakeInventoryService
	publisher  *fakePublisher
	gateway    *fakeGateway
	settlement SettlementService
	svc        *service
	now        time.Time
}

func newBookingFixture() *bookingFixture {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	states := newFakeSeatStateRepo()
	repo := newFakeBookingRepo(states)
	cat := &fakeSeatCatalog{seats: make(map[uuid.UUID]catalog.Seat)}
	invService := &fakeInventoryService{}
	publisher := &fakePublisher{}
	gateway := &fakeGateway{result: ChargeResult{Outcome: OutcomeSuccess, TransactionRef: "TXN-TEST"}}
	cfg := testConfig()

	settlement := &settlementService{
		repo:      repo,
		inventory: invService,
		publisher: publisher,
		config:    cfg,
		now:       func() time.Time { return now },
	}
	svc := &service{
		repo:        repo,
		catalogRepo: cat,
		inventory:   invService,
		settlement:  settlement,
		gateway:     gateway,
		publisher:   publisher,
		config:      cfg,
		now:         func() time.Time { return now },
	}
	return &bookingFixture{
		repo:       repo,
		states:     states,
		cat:        cat,
		invService: invService,
		publisher:  publisher,
		gateway:    gateway,
		settlement: settlement,
		svc:        svc,
		now:        now,
	}
}

// heldSeat seeds a catalog seat plus a live HELD state row under token.
func (f *bookingFixture) heldSeat(scheduleID uuid.UUID, token uuid.UUID, price float64) uuid.UUID {
	seatID := uuid.New()
	f.cat.seats[seatID] = catalog.Seat{ID: seatID, BasePrice: price}
	until := f.now.Add(3 * time.Minute)
	f.states.seed(scheduleID, seatID, inventory.SeatHeld, &token, &until)
	return seatID
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	scheduleID := uuid.New()

	t.Run("converts a valid hold into a pending booking", func(t *testing.T) {
		f := newBookingFixture()
		token := uuid.New()
		seatA := f.heldSeat(scheduleID, token, 300)
		seatB := f.heldSeat(scheduleID, token, 200)

		booking, err := f.svc.CreateBooking(ctx, userID, CreateBookingInput{
			ScheduleID: scheduleID,
			SeatIDs:    []uuid.UUID{seatA, seatB},
			HoldToken:  token,
		})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, booking.Status)
		assert.Equal(t, 2, booking.TotalSeats)
		assert.Equal(t, 500.0, booking.TotalAmount)
		assert.NotEmpty(t, booking.BookingRef)
		assert.Len(t, booking.Seats, 2)

		// Seats moved HELD -> BOOKED with the hold markers cleared.
		for _, seatID := range []uuid.UUID{seatA, seatB} {
			st := f.states.bySeat(seatID)
			require.NotNil(t, st)
			assert.Equal(t, inventory.SeatBooked, st.Status)
			assert.Nil(t, st.HeldBy)
			assert.Nil(t, st.HeldUntil)
		}

		// No payment yet: settlement is a separate step.
		stored, err := f.repo.GetBookingByID(ctx, booking.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.Payment)

		assert.Equal(t, []uuid.UUID{booking.ID}, f.publisher.created)
		assert.Equal(t, []uuid.UUID{scheduleID}, f.invService.invalidated)
	})

	t.Run("freezes catalog prices at booking time", func(t *testing.T) {
		f := newBookingFixture()
		token := uuid.New()
		seatID := f.heldSeat(scheduleID, token, 250)

		booking, err := f.svc.CreateBooking(ctx, userID, CreateBookingInput{
			ScheduleID: scheduleID,
			SeatIDs:    []uuid.UUID{seatID},
			HoldToken:  token,
		})
		require.NoError(t, err)
		require.Len(t, booking.Seats, 1)
		assert.Equal(t, 250.0, booking.Seats[0].Price)

		// A later catalog price change must not affect the stored rows.
		seat := f.cat.seats[seatID]
		seat.BasePrice = 999
		f.cat.seats[seatID] = seat

		stored, err := f.repo.GetBookingByID(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, 250.0, stored.Seats[0].Price)
		assert.Equal(t, 250.0, stored.TotalAmount)
	})

	t.Run("rejects a foreign hold token", func(t *testing.T) {
		f := newBookingFixture()
		token := uuid.New()
		seatID := f.heldSeat(scheduleID, token, 200)

		_, err := f.svc.CreateBooking(ctx, userID, CreateBookingInput{
			ScheduleID: scheduleID,
			SeatIDs:    []uuid.UUID{seatID},
			HoldToken:  uuid.New(),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsSeatUnavailable(err))
		assert.Equal(t, []uuid.UUID{seatID}, apperrors.UnavailableSeats(err))

		// Seat state untouched.
		assert.Equal(t, inventory.SeatHeld, f.states.bySeat(seatID).Status)
		assert.Empty(t, f.publisher.created)
	})

	t.Run("rejects an expired hold", func(t *testing.T) {
		f := newBookingFixture()
		token := uuid.New()
		seatID := uuid.New()
		f.cat.seats[seatID] = catalog.Seat{ID: seatID, BasePrice: 200}
		staleUntil := f.now.Add(-time.Second)
		f.states.seed(scheduleID, seatID, inventory.SeatHeld, &token, &staleUntil)

		_, err := f.svc.CreateBooking(ctx, userID, CreateBookingInput{
			ScheduleID: scheduleID,
			SeatIDs:    []uuid.UUID{seatID},
			HoldToken:  token,
		})
		assert.True(t, apperrors.IsSeatUnavailable(err))
	})

	t.Run("requires a hold token", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.svc.CreateBooking(ctx, userID, CreateBookingInput{
			ScheduleID: scheduleID,
			SeatIDs:    []uuid.UUID{uuid.New()},
		})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("requires at least one seat", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.svc.CreateBooking(ctx, userID, CreateBookingInput{
			ScheduleID: scheduleID,
			HoldToken:  uuid.New(),
		})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("unknown seat is not found", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.svc.CreateBooking(ctx, userID, CreateBookingInput{
			ScheduleID: scheduleID,
			SeatIDs:    []uuid.UUID{uuid.New()},
			HoldToken:  uuid.New(),
		})
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestProcessPayment(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	scheduleID := uuid.New()

	createPending := func(t *testing.T, f *bookingFixture) *Booking {
		t.Helper()
		token := uuid.New()
		seatID := f.heldSeat(scheduleID, token, 400)
		booking, err := f.svc.CreateBooking(ctx, userID, CreateBookingInput{
			ScheduleID: scheduleID,
			SeatIDs:    []uuid.UUID{seatID},
			HoldToken:  token,
		})
		require.NoError(t, err)
		return booking
	}

	t.Run("successful charge confirms the booking", func(t *testing.T) {
		f := newBookingFixture()
		booking := createPending(t, f)

		settled, err := f.svc.ProcessPayment(ctx, booking.ID, MethodUPI)
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, settled.Status)
		require.NotNil(t, settled.Payment)
		assert.Equal(t, PaymentSuccess, settled.Payment.Status)
		assert.Equal(t, "TXN-TEST", settled.Payment.TransactionRef)
		assert.Equal(t, MethodUPI, settled.Payment.Method)
		assert.Equal(t, booking.TotalAmount, settled.Payment.Amount)

		require.Len(t, f.gateway.calls, 1)
		assert.Equal(t, booking.ID, f.gateway.calls[0].BookingID)
		assert.Equal(t, booking.TotalAmount, f.gateway.calls[0].Amount)

		assert.Equal(t, []uuid.UUID{booking.ID}, f.publisher.confirmed)
	})

	t.Run("rejects an unknown payment method", func(t *testing.T) {
		f := newBookingFixture()
		booking := createPending(t, f)

		_, err := f.svc.ProcessPayment(ctx, booking.ID, PaymentMethod("BARTER"))
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		assert.Empty(t, f.gateway.calls)
	})

	t.Run("rejects a settled booking without charging", func(t *testing.T) {
		f := newBookingFixture()
		booking := createPending(t, f)

		_, err := f.svc.ProcessPayment(ctx, booking.ID, MethodCard)
		require.NoError(t, err)

		_, err = f.svc.ProcessPayment(ctx, booking.ID, MethodCard)
		assert.True(t, apperrors.IsInvalidState(err))
		assert.Len(t, f.gateway.calls, 1)
	})

	t.Run("unknown booking is not found", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.svc.ProcessPayment(ctx, uuid.New(), MethodUPI)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
