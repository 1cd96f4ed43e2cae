package inventory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"epicly/internal/catalog"
	"epicly/internal/shared/apperrors"
	"epicly/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStateRepo is an in-memory Repository. Version checks mirror the
// optimistic guard the real repository enforces in SQL.
type fakeStateRepo struct {
	states map[uuid.UUID]*ScheduleSeatState // keyed by state ID

	// failUpdates makes the next N UpdateStateGuarded calls report a
	// transient failure, to exercise retry paths.
	failUpdates int
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: make(map[uuid.UUID]*ScheduleSeatState)}
}

func (f *fakeStateRepo) seed(scheduleID, seatID uuid.UUID, status SeatStatus, heldBy *uuid.UUID, heldUntil *time.Time) *ScheduleSeatState {
	st := &ScheduleSeatState{
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

func (f *fakeStateRepo) InTx(ctx context.Context, fn func(tx Repository) error) error {
	return fn(f)
}

func (f *fakeStateRepo) LockStates(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID) ([]ScheduleSeatState, error) {
	want := make(map[uuid.UUID]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		want[id] = struct{}{}
	}
	var out []ScheduleSeatState
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

func (f *fakeStateRepo) UpdateStateGuarded(ctx context.Context, state *ScheduleSeatState) error {
	if f.failUpdates > 0 {
		f.failUpdates--
		return fmt.Errorf("%w: injected", apperrors.ErrTransientStore)
	}
	stored, ok := f.states[state.ID]
	if !ok || stored.Version != state.Version {
		return fmt.Errorf("%w: seat state %s changed concurrently", apperrors.ErrTransientStore, state.ID)
	}
	state.Version++
	copied := *state
	f.states[state.ID] = &copied
	return nil
}

func (f *fakeStateRepo) ListStates(ctx context.Context, scheduleID uuid.UUID) ([]ScheduleSeatState, error) {
	var out []ScheduleSeatState
	for _, st := range f.states {
		if st.ScheduleID == scheduleID {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (f *fakeStateRepo) FindExpiredHeld(ctx context.Context, now time.Time, limit int) ([]ScheduleSeatState, error) {
	var out []ScheduleSeatState
	for _, st := range f.states {
		if st.Status == SeatHeld && st.HeldUntil != nil && st.HeldUntil.Before(now) {
			out = append(out, *st)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStateRepo) ReclaimExpired(ctx context.Context, state *ScheduleSeatState) (bool, error) {
	stored, ok := f.states[state.ID]
	if !ok || stored.Version != state.Version || stored.Status != SeatHeld {
		return false, nil
	}
	stored.Status = SeatAvailable
	stored.HeldBy = nil
	stored.HeldUntil = nil
	stored.Version++
	return true, nil
}

func (f *fakeStateRepo) CreateStates(ctx context.Context, states []ScheduleSeatState) error {
	for i := range states {
		copied := states[i]
		f.states[copied.ID] = &copied
	}
	return nil
}

// fakeCatalog serves a fixed schedule and seat set.
type fakeCatalog struct {
	scheduleID uuid.UUID
	seats      map[uuid.UUID]catalog.Seat
}

func (f *fakeCatalog) ListEvents(ctx context.Context, filter catalog.EventFilter) ([]catalog.Event, error) {
	return nil, nil
}

func (f *fakeCatalog) GetEventByID(ctx context.Context, id uuid.UUID) (*catalog.Event, error) {
	return nil, apperrors.NewNotFound("event", id.String())
}

func (f *fakeCatalog) ListSchedules(ctx context.Context, eventID uuid.UUID, filter catalog.ScheduleFilter) ([]catalog.Schedule, error) {
	return nil, nil
}

func (f *fakeCatalog) GetScheduleByID(ctx context.Context, id uuid.UUID) (*catalog.Schedule, error) {
	if id != f.scheduleID {
		return nil, apperrors.NewNotFound("schedule", id.String())
	}
	return &catalog.Schedule{ID: id}, nil
}

func (f *fakeCatalog) GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]catalog.Seat, error) {
	var out []catalog.Seat
	for _, id := range seatIDs {
		if seat, ok := f.seats[id]; ok {
			out = append(out, seat)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetSeatsBySectionID(ctx context.Context, sectionID uuid.UUID) ([]catalog.Seat, error) {
	return nil, nil
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
			PendingTTL: 15 * time.Minute,
		},
	}
}

func newTestService(repo Repository, cat catalog.Repository, at time.Time) *service {
	return &service{
		repo:        repo,
		catalogRepo: cat,
		config:      testConfig(),
		now:         func() time.Time { return at },
	}
}

func TestPlaceHold(t *testing.T) {
	ctx := context.Background()
	baseTime := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	scheduleID := uuid.New()

	t.Run("grants hold over available seats", func(t *testing.T) {
		repo := newFakeStateRepo()
		seatA := uuid.New()
		seatB := uuid.New()
		repo.seed(scheduleID, seatA, SeatAvailable, nil, nil)
		repo.seed(scheduleID, seatB, SeatAvailable, nil, nil)
		svc := newTestService(repo, &fakeCatalog{scheduleID: scheduleID}, baseTime)

		hold, err := svc.PlaceHold(ctx, scheduleID, []uuid.UUID{seatA, seatB})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, hold.Token)
		assert.Equal(t, scheduleID, hold.ScheduleID)
		assert.Equal(t, baseTime.Add(5*time.Minute), hold.ExpiresAt)
		assert.Len(t, hold.SeatIDs, 2)

		for _, st := range repo.states {
			assert.Equal(t, SeatHeld, st.Status)
			require.NotNil(t, st.HeldBy)
			assert.Equal(t, hold.Token, *st.HeldBy)
			require.NotNil(t, st.HeldUntil)
			assert.Equal(t, hold.ExpiresAt, *st.HeldUntil)
			assert.Equal(t, int64(1), st.Version)
		}
	})

	t.Run("all or nothing when one seat is contested", func(t *testing.T) {
		repo := newFakeStateRepo()
		seatFree := uuid.New()
		seatTaken := uuid.New()
		otherToken := uuid.New()
		activeUntil := baseTime.Add(3 * time.Minute)
		repo.seed(scheduleID, seatFree, SeatAvailable, nil, nil)
		taken := repo.seed(scheduleID, seatTaken, SeatHeld, &otherToken, &activeUntil)
		svc := newTestService(repo, &fakeCatalog{scheduleID: scheduleID}, baseTime)

		_, err := svc.PlaceHold(ctx, scheduleID, []uuid.UUID{seatFree, seatTaken})
		require.Error(t, err)
		assert.True(t, apperrors.IsSeatUnavailable(err))
		assert.Equal(t, []uuid.UUID{seatTaken}, apperrors.UnavailableSeats(err))

		// The free seat must not have been touched.
		for _, st := range repo.states {
			if st.SeatID == seatFree {
				assert.Equal(t, SeatAvailable, st.Status)
				assert.Equal(t, int64(0), st.Version)
			}
		}
		assert.Equal(t, otherToken, *taken.HeldBy)
	})

	t.Run("booked seat is contested", func(t *testing.T) {
		repo := newFakeStateRepo()
		seatID := uuid.New()
		repo.seed(scheduleID, seatID, SeatBooked, nil, nil)
		svc := newTestService(repo, &fakeCatalog{scheduleID: scheduleID}, baseTime)

		_, err := svc.PlaceHold(ctx, scheduleID, []uuid.UUID{seatID})
		assert.True(t, apperrors.IsSeatUnavailable(err))
	})

	t.Run("expired hold can be reacquired", func(t *testing.T) {
		repo := newFakeStateRepo()
		seatID := uuid.New()
		staleToken := uuid.New()
		staleUntil := baseTime.Add(-time.Minute)
		repo.seed(scheduleID, seatID, SeatHeld, &staleToken, &staleUntil)
		svc := newTestService(repo, &fakeCatalog{scheduleID: scheduleID}, baseTime)

		hold, err := svc.PlaceHold(ctx, scheduleID, []uuid.UUID{seatID})
		require.NoError(t, err)
		assert.NotEqual(t, staleToken, hold.Token)

		for _, st := range repo.states {
			assert.Equal(t, SeatHeld, st.Status)
			assert.Equal(t, hold.Token, *st.HeldBy)
		}
	})

	t.Run("duplicate seat ids collapse to one", func(t *testing.T) {
		repo := newFakeStateRepo()
		seatID := uuid.New()
		repo.seed(scheduleID, seatID, SeatAvailable, nil, nil)
		svc := newTestService(repo, &fakeCatalog{scheduleID: scheduleID}, baseTime)

		hold, err := svc.PlaceHold(ctx, scheduleID, []uuid.UUID{seatID, seatID, seatID})
		require.NoError(t, err)
		assert.Len(t, hold.SeatIDs, 1)
	})

	t.Run("empty seat list fails validation", func(t *testing.T) {
		svc := newTestService(newFakeStateRepo(), &fakeCatalog{scheduleID: scheduleID}, baseTime)
		_, err := svc.PlaceHold(ctx, scheduleID, nil)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("unknown schedule is not found", func(t *testing.T) {
		svc := newTestService(newFakeStateRepo(), &fakeCatalog{scheduleID: scheduleID}, baseTime)
		_, err := svc.PlaceHold(ctx, uuid.New(), []uuid.UUID{uuid.New()})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("unknown seat is not found", func(t *testing.T) {
		repo := newFakeStateRepo()
		known := uuid.New()
		repo.seed(scheduleID, known, SeatAvailable, nil, nil)
		svc := newTestService(repo, &fakeCatalog{scheduleID: scheduleID}, baseTime)

		_, err := svc.PlaceHold(ctx, scheduleID, []uuid.UUID{known, uuid.New()})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("retries transient conflicts before succeeding", func(t *testing.T) {
		repo := newFakeStateRepo()
		seatID := uuid.New()
		repo.seed(scheduleID, seatID, SeatAvailable, nil, nil)
		repo.failUpdates = 2
		svc := newTestService(repo, &fakeCatalog{scheduleID: scheduleID}, baseTime)

		hold, err := svc.PlaceHold(ctx, scheduleID, []uuid.UUID{seatID})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, hold.Token)
	})

	t.Run("unresolved contention reads as unavailable", func(t *testing.T) {
		repo := newFakeStateRepo()
		seatID := uuid.New()
		repo.seed(scheduleID, seatID, SeatAvailable, nil, nil)
		repo.failUpdates = 10 // more than TxRetries can absorb
		svc := newTestService(repo, &fakeCatalog{scheduleID: scheduleID}, baseTime)

		_, err := svc.PlaceHold(ctx, scheduleID, []uuid.UUID{seatID})
		assert.True(t, apperrors.IsSeatUnavailable(err))
	})
}

func TestListScheduleSeats(t *testing.T) {
	ctx := context.Background()
	baseTime := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	scheduleID := uuid.New()

	repo := newFakeStateRepo()
	seatFree := uuid.New()
	seatHeld := uuid.New()
	seatExpired := uuid.New()
	token := uuid.New()
	activeUntil := baseTime.Add(2 * time.Minute)
	staleUntil := baseTime.Add(-2 * time.Minute)
	repo.seed(scheduleID, seatFree, SeatAvailable, nil, nil)
	repo.seed(scheduleID, seatHeld, SeatHeld, &token, &activeUntil)
	repo.seed(scheduleID, seatExpired, SeatHeld, &token, &staleUntil)

	cat := &fakeCatalog{
		scheduleID: scheduleID,
		seats: map[uuid.UUID]catalog.Seat{
			seatFree:    {ID: seatFree, RowLabel: "A", SeatNumber: 1, SeatType: catalog.SeatTypeRegular, BasePrice: 200},
			seatHeld:    {ID: seatHeld, RowLabel: "A", SeatNumber: 2, SeatType: catalog.SeatTypeRegular, BasePrice: 200},
			seatExpired: {ID: seatExpired, RowLabel: "A", SeatNumber: 3, SeatType: catalog.SeatTypePremium, BasePrice: 300},
		},
	}
	svc := newTestService(repo, cat, baseTime)

	views, err := svc.ListScheduleSeats(ctx, scheduleID)
	require.NoError(t, err)
	require.Len(t, views, 3)

	byID := make(map[string]SeatView, len(views))
	for _, v := range views {
		byID[v.SeatID] = v
	}
	assert.Equal(t, SeatAvailable, byID[seatFree.String()].Status)
	assert.Equal(t, SeatHeld, byID[seatHeld.String()].Status)
	// Lazy expiry: an elapsed hold reads as available without a write.
	assert.Equal(t, SeatAvailable, byID[seatExpired.String()].Status)

	// Ordered by row then seat number.
	assert.Equal(t, 1, views[0].SeatNumber)
	assert.Equal(t, 2, views[1].SeatNumber)
	assert.Equal(t, 3, views[2].SeatNumber)
}
