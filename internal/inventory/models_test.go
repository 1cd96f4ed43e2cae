package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestScheduleSeatStateLazyExpiry(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	token := uuid.New()
	past := now.Add(-time.Second)
	future := now.Add(time.Minute)

	available := &ScheduleSeatState{Status: SeatAvailable}
	assert.True(t, available.Acquirable(now))
	assert.Equal(t, SeatAvailable, available.EffectiveStatus(now))

	live := &ScheduleSeatState{Status: SeatHeld, HeldBy: &token, HeldUntil: &future}
	assert.False(t, live.Acquirable(now))
	assert.Equal(t, SeatHeld, live.EffectiveStatus(now))
	assert.True(t, live.HeldValidBy(token, now))
	assert.False(t, live.HeldValidBy(uuid.New(), now))

	stale := &ScheduleSeatState{Status: SeatHeld, HeldBy: &token, HeldUntil: &past}
	assert.True(t, stale.HoldExpired(now))
	assert.True(t, stale.Acquirable(now))
	assert.Equal(t, SeatAvailable, stale.EffectiveStatus(now))
	assert.False(t, stale.HeldValidBy(token, now))

	booked := &ScheduleSeatState{Status: SeatBooked}
	assert.False(t, booked.Acquirable(now))
	assert.Equal(t, SeatBooked, booked.EffectiveStatus(now))
}
