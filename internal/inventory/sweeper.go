package inventory

import (
	"context"
	"log/slog"
	"time"

	"epicly/internal/shared/config"
	"epicly/pkg/logger"

	"github.com/google/uuid"
)

// ExpiryNotifier receives hold-expiry notifications for downstream fanout.
type ExpiryNotifier interface {
	HoldExpired(ctx context.Context, scheduleID, seatID, token uuid.UUID)
}

// BookingReclaimer cancels bookings that stayed PENDING past the payment
// TTL, releasing their seats. Implemented by the settlement coordinator.
type BookingReclaimer interface {
	CancelExpiredPending(ctx context.Context, olderThan time.Time, limit int) (int, error)
}

// Sweeper periodically normalizes expired holds back to AVAILABLE. It is
// idempotent and version-guarded: a hold converted into a booking between
// scan and update is simply skipped.
type Sweeper struct {
	repo      Repository
	service   Service
	config    *config.Config
	notifier  ExpiryNotifier
	reclaimer BookingReclaimer
	done      chan struct{}
	now       func() time.Time
}

func NewSweeper(repo Repository, service Service, cfg *config.Config, notifier ExpiryNotifier, reclaimer BookingReclaimer) *Sweeper {
	return &Sweeper{
		repo:      repo,
		service:   service,
		config:    cfg,
		notifier:  notifier,
		reclaimer: reclaimer,
		done:      make(chan struct{}),
		now:       time.Now,
	}
}

// Start launches the sweep loop. It runs until Stop is called or ctx is
// cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
	logger.GetDefault().Info("hold sweeper started",
		slog.Duration("interval", s.config.Hold.SweepInterval),
		slog.Int("batch_size", s.config.Hold.SweepBatchSize),
	)
}

// Stop terminates the sweep loop.
func (s *Sweeper) Stop() {
	close(s.done)
	logger.GetDefault().Info("hold sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.config.Hold.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if count, err := s.Sweep(ctx); err != nil {
				logger.GetDefault().Error("sweep pass failed", slog.Any("error", err))
			} else if count > 0 {
				logger.GetDefault().Info("sweep pass reclaimed seats", slog.Int("count", count))
			}
			s.reclaimPendingBookings(ctx)
		}
	}
}

// Sweep reclaims expired holds and returns the number of seats released.
// Safe to run concurrently with request handling: each row is flipped with
// a compare-and-swap on its version, so a row whose hold was just booked
// (or re-held) is skipped this pass.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now().UTC()
	expired, err := s.repo.FindExpiredHeld(ctx, now, s.config.Hold.SweepBatchSize)
	if err != nil {
		return 0, err
	}

	reclaimed := 0
	touched := make(map[uuid.UUID]struct{})
	for i := range expired {
		row := expired[i]
		ok, err := s.repo.ReclaimExpired(ctx, &row)
		if err != nil {
			return reclaimed, err
		}
		if !ok {
			continue
		}
		reclaimed++
		touched[row.ScheduleID] = struct{}{}
		if s.notifier != nil && row.HeldBy != nil {
			s.notifier.HoldExpired(ctx, row.ScheduleID, row.SeatID, *row.HeldBy)
		}
	}

	if s.service != nil {
		for scheduleID := range touched {
			s.service.InvalidateSeatListing(ctx, scheduleID)
		}
	}
	return reclaimed, nil
}

func (s *Sweeper) reclaimPendingBookings(ctx context.Context) {
	if s.reclaimer == nil {
		return
	}
	cutoff := s.now().UTC().Add(-s.config.Payment.PendingTTL)
	count, err := s.reclaimer.CancelExpiredPending(ctx, cutoff, s.config.Hold.SweepBatchSize)
	if err != nil {
		logger.GetDefault().Error("pending booking reclaim failed", slog.Any("error", err))
		return
	}
	if count > 0 {
		logger.GetDefault().Info("cancelled stale pending bookings", slog.Int("count", count))
	}
}
