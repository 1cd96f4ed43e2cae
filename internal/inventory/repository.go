package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"epicly/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// InTx runs fn against a repository bound to one transaction. The
	// whole fn commits or rolls back as a unit.
	InTx(ctx context.Context, fn func(tx Repository) error) error

	// LockStates reads the state rows for the given seats with a
	// row-level exclusive lock. Only meaningful inside InTx.
	LockStates(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID) ([]ScheduleSeatState, error)

	// UpdateStateGuarded writes a row conditioned on the version it was
	// read at, bumping Version. Returns ErrTransientStore on a version
	// miss so callers can retry or fail per policy.
	UpdateStateGuarded(ctx context.Context, state *ScheduleSeatState) error

	// ListStates returns all state rows for a schedule.
	ListStates(ctx context.Context, scheduleID uuid.UUID) ([]ScheduleSeatState, error)

	// FindExpiredHeld returns up to limit HELD rows whose TTL elapsed
	// before now.
	FindExpiredHeld(ctx context.Context, now time.Time, limit int) ([]ScheduleSeatState, error)

	// ReclaimExpired flips one expired HELD row back to AVAILABLE with a
	// compare-and-swap on version. Returns false on a version miss.
	ReclaimExpired(ctx context.Context, state *ScheduleSeatState) (bool, error)

	// CreateStates bulk-inserts state rows (schedule publishing / seed).
	CreateStates(ctx context.Context, states []ScheduleSeatState) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InTx(ctx context.Context, fn func(tx Repository) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
	if err != nil && isSerializationFailure(err) {
		return fmt.Errorf("%w: %v", apperrors.ErrTransientStore, err)
	}
	return err
}

func (r *repository) LockStates(ctx context.Context, scheduleID uuid.UUID, seatIDs []uuid.UUID) ([]ScheduleSeatState, error) {
	var states []ScheduleSeatState
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("schedule_id = ? AND seat_id IN ?", scheduleID, seatIDs).
		Find(&states).Error
	if err != nil {
		return nil, err
	}
	return states, nil
}

func (r *repository) UpdateStateGuarded(ctx context.Context, state *ScheduleSeatState) error {
	readVersion := state.Version
	state.Version = readVersion + 1

	result := r.db.WithContext(ctx).
		Model(&ScheduleSeatState{}).
		Where("id = ? AND version = ?", state.ID, readVersion).
		Updates(map[string]interface{}{
			"status":     state.Status,
			"held_by":    state.HeldBy,
			"held_until": state.HeldUntil,
			"version":    state.Version,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		state.Version = readVersion
		return fmt.Errorf("%w: seat state %s changed concurrently", apperrors.ErrTransientStore, state.ID)
	}
	return nil
}

func (r *repository) ListStates(ctx context.Context, scheduleID uuid.UUID) ([]ScheduleSeatState, error) {
	var states []ScheduleSeatState
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Find(&states).Error
	if err != nil {
		return nil, err
	}
	return states, nil
}

func (r *repository) FindExpiredHeld(ctx context.Context, now time.Time, limit int) ([]ScheduleSeatState, error) {
	var states []ScheduleSeatState
	err := r.db.WithContext(ctx).
		Where("status = ? AND held_until < ?", SeatHeld, now).
		Limit(limit).
		Find(&states).Error
	if err != nil {
		return nil, err
	}
	return states, nil
}

func (r *repository) ReclaimExpired(ctx context.Context, state *ScheduleSeatState) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&ScheduleSeatState{}).
		Where("id = ? AND version = ? AND status = ?", state.ID, state.Version, SeatHeld).
		Updates(map[string]interface{}{
			"status":     SeatAvailable,
			"held_by":    nil,
			"held_until": nil,
			"version":    state.Version + 1,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreateStates(ctx context.Context, states []ScheduleSeatState) error {
	if len(states) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(states, 200).Error
}

// isSerializationFailure recognizes Postgres lock/serialization errors that
// are safe to retry at the transaction boundary.
func isSerializationFailure(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "lock timeout")
}
