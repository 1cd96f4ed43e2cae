package bookings

import (
	"context"
	"testing"
	"time"

	"epicly/internal/inventory"
	"epicly/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettle(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	scheduleID := uuid.New()

	newPending := func(t *testing.T, f *bookingFixture) (*Booking, uuid.UUID) {
		t.Helper()
		token := uuid.New()
		seatID := f.heldSeat(scheduleID, token, 350)
		booking, err := f.svc.CreateBooking(ctx, userID, CreateBookingInput{
			ScheduleID: scheduleID,
			SeatIDs:    []uuid.UUID{seatID},
			HoldToken:  token,
		})
		require.NoError(t, err)
		return booking, seatID
	}

	t.Run("success confirms and records the payment", func(t *testing.T) {
		f := newBookingFixture()
		booking, seatID := newPending(t, f)

		settled, err := f.settlement.Settle(ctx, booking.ID, SettlementInput{
			Outcome:        OutcomeSuccess,
			Method:         MethodCard,
			TransactionRef: "TXN-123",
		})
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, settled.Status)
		require.NotNil(t, settled.ConfirmedAt)
		require.NotNil(t, settled.Payment)
		assert.Equal(t, PaymentSuccess, settled.Payment.Status)
		assert.Equal(t, "TXN-123", settled.Payment.TransactionRef)
		assert.Equal(t, 350.0, settled.Payment.Amount)

		// Confirmed bookings keep their seats.
		assert.Equal(t, inventory.SeatBooked, f.states.bySeat(seatID).Status)
		assert.Equal(t, []uuid.UUID{booking.ID}, f.publisher.confirmed)
	})

	t.Run("failure cancels and releases the seats", func(t *testing.T) {
		f := newBookingFixture()
		booking, seatID := newPending(t, f)

		settled, err := f.settlement.Settle(ctx, booking.ID, SettlementInput{
			Outcome:       OutcomeFailure,
			Method:        MethodUPI,
			FailureReason: "insufficient funds",
		})
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, settled.Status)
		require.NotNil(t, settled.CancelledAt)
		require.NotNil(t, settled.Payment)
		assert.Equal(t, PaymentFailed, settled.Payment.Status)
		assert.Equal(t, "insufficient funds", settled.Payment.FailureReason)

		st := f.states.bySeat(seatID)
		assert.Equal(t, inventory.SeatAvailable, st.Status)
		assert.Nil(t, st.HeldBy)
		assert.Nil(t, st.HeldUntil)

		assert.Equal(t, []uuid.UUID{booking.ID}, f.publisher.cancelled)
		assert.Equal(t, []string{"insufficient funds"}, f.publisher.reasons)
		// Seat listings for the schedule were invalidated on release.
		assert.Contains(t, f.invService.invalidated, scheduleID)
	})

	t.Run("settling twice fails with invalid state", func(t *testing.T) {
		f := newBookingFixture()
		booking, _ := newPending(t, f)

		_, err := f.settlement.Settle(ctx, booking.ID, SettlementInput{Outcome: OutcomeSuccess, Method: MethodCard})
		require.NoError(t, err)

		_, err = f.settlement.Settle(ctx, booking.ID, SettlementInput{Outcome: OutcomeFailure, Method: MethodCard})
		assert.True(t, apperrors.IsInvalidState(err))

		// The stored booking and payment are untouched.
		stored, err := f.repo.GetBookingByID(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, stored.Status)
		assert.Equal(t, PaymentSuccess, stored.Payment.Status)
	})

	t.Run("rejects an unknown outcome", func(t *testing.T) {
		f := newBookingFixture()
		booking, _ := newPending(t, f)

		_, err := f.settlement.Settle(ctx, booking.ID, SettlementInput{Outcome: Outcome("MAYBE"), Method: MethodCard})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("unknown booking is not found", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.settlement.Settle(ctx, uuid.New(), SettlementInput{Outcome: OutcomeSuccess, Method: MethodCard})
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestCancelExpiredPending(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	scheduleID := uuid.New()

	t.Run("cancels stale pending bookings and frees their seats", func(t *testing.T) {
		f := newBookingFixture()
		token := uuid.New()
		seatID := f.heldSeat(scheduleID, token, 500)
		booking, err := f.svc.CreateBooking(ctx, userID, CreateBookingInput{
			ScheduleID: scheduleID,
			SeatIDs:    []uuid.UUID{seatID},
			HoldToken:  token,
		})
		require.NoError(t, err)

		cutoff := f.now.Add(time.Minute) // booking.CreatedAt is before this
		count, err := f.settlement.CancelExpiredPending(ctx, cutoff, 100)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		stored, err := f.repo.GetBookingByID(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, stored.Status)
		// The payment window elapsed with no attempt: no payment row.
		assert.Nil(t, stored.Payment)

		assert.Equal(t, inventory.SeatAvailable, f.states.bySeat(seatID).Status)
		assert.Equal(t, []string{"payment window elapsed"}, f.publisher.reasons)
	})

	t.Run("leaves fresh pending bookings alone", func(t *testing.T) {
		f := newBookingFixture()
		token := uuid.New()
		seatID := f.heldSeat(scheduleID, token, 500)
		booking, err := f.svc.CreateBooking(ctx, userID, CreateBookingInput{
			ScheduleID: scheduleID,
			SeatIDs:    []uuid.UUID{seatID},
			HoldToken:  token,
		})
		require.NoError(t, err)

		cutoff := f.now.Add(-time.Minute)
		count, err := f.settlement.CancelExpiredPending(ctx, cutoff, 100)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		stored, err := f.repo.GetBookingByID(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, stored.Status)
		assert.Equal(t, inventory.SeatBooked, f.states.bySeat(seatID).Status)
	})

	t.Run("skips bookings settled between scan and lock", func(t *testing.T) {
		f := newBookingFixture()
		token := uuid.New()
		seatID := f.heldSeat(scheduleID, token, 500)
		booking, err := f.svc.CreateBooking(ctx, userID, CreateBookingInput{
			ScheduleID: scheduleID,
			SeatIDs:    []uuid.UUID{seatID},
			HoldToken:  token,
		})
		require.NoError(t, err)

		// Settle first, then sweep with a cutoff that would have caught it.
		_, err = f.settlement.Settle(ctx, booking.ID, SettlementInput{Outcome: OutcomeSuccess, Method: MethodUPI})
		require.NoError(t, err)

		count, err := f.settlement.CancelExpiredPending(ctx, f.now.Add(time.Minute), 100)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		stored, err := f.repo.GetBookingByID(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, stored.Status)
	})
}
