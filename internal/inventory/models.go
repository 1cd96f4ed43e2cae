package inventory

import (
	"time"

	"github.com/google/uuid"
)

// SeatStatus is the per-schedule availability state of one seat.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatHeld      SeatStatus = "HELD"
	SeatBooked    SeatStatus = "BOOKED"
)

func (s SeatStatus) IsValid() bool {
	switch s {
	case SeatAvailable, SeatHeld, SeatBooked:
		return true
	}
	return false
}

// ScheduleSeatState is the single source of truth for seat availability.
// One row per (schedule, seat), created when the schedule is published.
// Every mutation increments Version; writers that observe a stale version
// must retry or fail, never blindly overwrite.
type ScheduleSeatState struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ScheduleID uuid.UUID  `json:"schedule_id" gorm:"type:uuid;not null;uniqueIndex:idx_schedule_seat;index:idx_state_status"`
	SeatID     uuid.UUID  `json:"seat_id" gorm:"type:uuid;not null;uniqueIndex:idx_schedule_seat"`
	Status     SeatStatus `json:"status" gorm:"type:varchar(20);not null;default:'AVAILABLE';index:idx_state_status"`
	HeldBy     *uuid.UUID `json:"held_by,omitempty" gorm:"type:uuid"`
	HeldUntil  *time.Time `json:"held_until,omitempty" gorm:"index"`
	Version    int64      `json:"version" gorm:"not null;default:0"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (ScheduleSeatState) TableName() string {
	return "schedule_seat_state"
}

// HoldExpired reports whether a HELD row's TTL has elapsed. Expired holds
// are treated as AVAILABLE by every reader (lazy expiry) and eventually
// normalized by the sweeper.
func (s *ScheduleSeatState) HoldExpired(now time.Time) bool {
	return s.Status == SeatHeld && s.HeldUntil != nil && s.HeldUntil.Before(now)
}

// Acquirable reports whether a hold may claim this seat right now.
func (s *ScheduleSeatState) Acquirable(now time.Time) bool {
	return s.Status == SeatAvailable || s.HoldExpired(now)
}

// HeldValidBy reports whether the row is held under the given token and
// the hold has not expired.
func (s *ScheduleSeatState) HeldValidBy(token uuid.UUID, now time.Time) bool {
	return s.Status == SeatHeld &&
		s.HeldBy != nil && *s.HeldBy == token &&
		s.HeldUntil != nil && s.HeldUntil.After(now)
}

// EffectiveStatus is the externally visible status with lazy expiry applied.
func (s *ScheduleSeatState) EffectiveStatus(now time.Time) SeatStatus {
	if s.HoldExpired(now) {
		return SeatAvailable
	}
	return s.Status
}

// Hold is the ephemeral grouping handed back to a client: a token over a
// seat set with a fixed expiry. It is reconstructed from the state rows
// rather than persisted as its own table.
type Hold struct {
	Token      uuid.UUID   `json:"token"`
	ScheduleID uuid.UUID   `json:"schedule_id"`
	SeatIDs    []uuid.UUID `json:"seat_ids"`
	CreatedAt  time.Time   `json:"created_at"`
	ExpiresAt  time.Time   `json:"expires_at"`
}
