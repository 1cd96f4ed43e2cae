package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		err := NewNotFound("booking", "abc-123")
		assert.True(t, IsNotFound(err))
		assert.False(t, IsSeatUnavailable(err))
		assert.Contains(t, err.Error(), "booking")
		assert.Contains(t, err.Error(), "abc-123")

		wrapped := fmt.Errorf("loading failed: %w", err)
		assert.True(t, IsNotFound(wrapped))
	})

	t.Run("seat unavailable carries the contested seats", func(t *testing.T) {
		scheduleID := uuid.New()
		seats := []uuid.UUID{uuid.New(), uuid.New()}
		err := NewSeatUnavailable(scheduleID, seats)

		assert.True(t, IsSeatUnavailable(err))
		assert.Equal(t, seats, UnavailableSeats(err))

		wrapped := fmt.Errorf("hold rejected: %w", err)
		assert.True(t, IsSeatUnavailable(wrapped))
		assert.Equal(t, seats, UnavailableSeats(wrapped))

		var su *SeatUnavailableError
		require.True(t, errors.As(wrapped, &su))
		assert.Equal(t, scheduleID, su.ScheduleID)
	})

	t.Run("invalid state names both states", func(t *testing.T) {
		err := NewInvalidState("booking", "abc", "CONFIRMED", "PENDING")
		assert.True(t, IsInvalidState(err))
		assert.Contains(t, err.Error(), "CONFIRMED")
		assert.Contains(t, err.Error(), "PENDING")
	})

	t.Run("transient store failures are retryable", func(t *testing.T) {
		err := fmt.Errorf("%w: deadlock detected", ErrTransientStore)
		assert.True(t, IsTransient(err))
		assert.False(t, IsTransient(errors.New("deadlock detected")))
	})

	t.Run("seat extraction on unrelated errors is nil", func(t *testing.T) {
		assert.Nil(t, UnavailableSeats(errors.New("boom")))
		assert.Nil(t, UnavailableSeats(ErrSeatUnavailable))
	})
}
