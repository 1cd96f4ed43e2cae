package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"epicly/internal/catalog"
	"epicly/internal/shared/apperrors"
	"epicly/internal/shared/config"
	"epicly/internal/shared/constants"
	"epicly/pkg/cache"
	"epicly/pkg/logger"

	"github.com/google/uuid"
)

// Service is the hold manager: the sole writer of the AVAILABLE<->HELD
// transition. Booking conversion (HELD->BOOKED) belongs to the booking
// orchestrator; reclaim of expired holds to the sweeper.
type Service interface {
	// PlaceHold grants an exclusive, TTL-bounded hold over the requested
	// seat set. All-or-nothing: partial holds are never granted.
	PlaceHold(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID) (*Hold, error)

	// ListScheduleSeats returns the seat listing for a schedule with lazy
	// expiry applied: an expired hold reads as AVAILABLE.
	ListScheduleSeats(ctx context.Context, scheduleID uuid.UUID) ([]SeatView, error)

	// InvalidateSeatListing drops the cached listing for a schedule.
	// Called by every component that mutates seat state.
	InvalidateSeatListing(ctx context.Context, scheduleID uuid.UUID)
}

// SeatView is the read model served to browsing clients.
type SeatView struct {
	SeatID     string     `json:"seat_id"`
	RowLabel   string     `json:"row_label"`
	SeatNumber int        `json:"seat_number"`
	SeatType   string     `json:"seat_type"`
	BasePrice  float64    `json:"base_price"`
	Status     SeatStatus `json:"status"`
}

type service struct {
	repo         Repository
	catalogRepo  catalog.Repository
	config       *config.Config
	cacheService cache.Service
	now          func() time.Time
}

func NewService(repo Repository, catalogRepo catalog.Repository, cfg *config.Config, cacheService cache.Service) Service {
	return &service{
		repo:         repo,
		catalogRepo:  catalogRepo,
		config:       cfg,
		cacheService: cacheService,
		now:          time.Now,
	}
}

func (s *service) PlaceHold(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID) (*Hold, error) {
	seatIDs = dedupe(seatIDs)
	if len(seatIDs) == 0 {
		return nil, fmt.Errorf("%w: no seats specified", apperrors.ErrValidationFailed)
	}

	if _, err := s.catalogRepo.GetScheduleByID(ctx, scheduleID); err != nil {
		return nil, err
	}

	var hold *Hold
	attempt := func() error {
		return s.repo.InTx(ctx, func(tx Repository) error {
			now := s.now().UTC()

			states, err := tx.LockStates(ctx, scheduleID, seatIDs)
			if err != nil {
				return err
			}
			if missing := missingSeats(seatIDs, states); len(missing) > 0 {
				return apperrors.NewNotFound("seat", idList(missing))
			}

			var contested []uuid.UUID
			for i := range states {
				if !states[i].Acquirable(now) {
					contested = append(contested, states[i].SeatID)
				}
			}
			if len(contested) > 0 {
				sortIDs(contested)
				return apperrors.NewSeatUnavailable(scheduleID, contested)
			}

			token := uuid.New()
			expiresAt := now.Add(s.config.Hold.TTL)
			for i := range states {
				states[i].Status = SeatHeld
				states[i].HeldBy = &token
				states[i].HeldUntil = &expiresAt
				if err := tx.UpdateStateGuarded(ctx, &states[i]); err != nil {
					return err
				}
			}

			hold = &Hold{
				Token:      token,
				ScheduleID: scheduleID,
				SeatIDs:    seatIDs,
				CreatedAt:  now,
				ExpiresAt:  expiresAt,
			}
			return nil
		})
	}

	if err := retryTransient(attempt, s.config.Hold.TxRetries); err != nil {
		if apperrors.IsTransient(err) {
			// Contention that never settled reads as the seats being taken.
			return nil, apperrors.NewSeatUnavailable(scheduleID, seatIDs)
		}
		return nil, err
	}

	s.InvalidateSeatListing(ctx, scheduleID)
	return hold, nil
}

func (s *service) ListScheduleSeats(ctx context.Context, scheduleID uuid.UUID) ([]SeatView, error) {
	cacheKey := constants.BuildScheduleSeatsKey(scheduleID.String())
	if s.cacheService != nil {
		var cached []SeatView
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	if _, err := s.catalogRepo.GetScheduleByID(ctx, scheduleID); err != nil {
		return nil, err
	}

	states, err := s.repo.ListStates(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seat states: %w", err)
	}

	seatIDs := make([]uuid.UUID, 0, len(states))
	for i := range states {
		seatIDs = append(seatIDs, states[i].SeatID)
	}
	seats, err := s.catalogRepo.GetSeatsByIDs(ctx, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load seat catalog: %w", err)
	}
	seatsByID := make(map[uuid.UUID]*catalog.Seat, len(seats))
	for i := range seats {
		seatsByID[seats[i].ID] = &seats[i]
	}

	now := s.now().UTC()
	views := make([]SeatView, 0, len(states))
	for i := range states {
		seat, ok := seatsByID[states[i].SeatID]
		if !ok {
			continue
		}
		views = append(views, SeatView{
			SeatID:     seat.ID.String(),
			RowLabel:   seat.RowLabel,
			SeatNumber: seat.SeatNumber,
			SeatType:   string(seat.SeatType),
			BasePrice:  seat.BasePrice,
			Status:     states[i].EffectiveStatus(now),
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].RowLabel != views[j].RowLabel {
			return views[i].RowLabel < views[j].RowLabel
		}
		return views[i].SeatNumber < views[j].SeatNumber
	})

	if s.cacheService != nil {
		if err := s.cacheService.Set(ctx, cacheKey, views, s.config.Redis.SeatListingTTL); err != nil {
			logger.GetDefault().Debug("failed to cache seat listing", "schedule_id", scheduleID.String(), "error", err)
		}
	}
	return views, nil
}

func (s *service) InvalidateSeatListing(ctx context.Context, scheduleID uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	key := constants.BuildScheduleSeatsKey(scheduleID.String())
	if err := s.cacheService.Delete(ctx, key); err != nil {
		logger.GetDefault().Debug("failed to invalidate seat listing cache", "key", key, "error", err)
	}
}

// retryTransient reruns op on transient store failures, up to retries
// extra attempts. Domain errors surface immediately.
func retryTransient(op func() error, retries int) error {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		err = op()
		if err == nil || !apperrors.IsTransient(err) {
			return err
		}
	}
	return err
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
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

func missingSeats(requested []uuid.UUID, found []ScheduleSeatState) []uuid.UUID {
	present := make(map[uuid.UUID]struct{}, len(found))
	for i := range found {
		present[found[i].SeatID] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range requested {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}

func idList(ids []uuid.UUID) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += id.String()
	}
	return out
}
