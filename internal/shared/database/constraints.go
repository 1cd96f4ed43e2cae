package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the database constraints the concurrency model
// depends on. AutoMigrate builds the unique indexes from struct tags;
// the checks here guard status values and the one-payment-per-booking
// rule at the storage layer.
func MigrateConstraints(db *gorm.DB) error {
	// One state row per (schedule, seat). The row is the lock target for
	// every hold and booking mutation.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_schedule_seat
		ON schedule_seat_state (schedule_id, seat_id);
	`).Error
	if err != nil {
		return err
	}

	// Sweeper scan path: expired holds are found by status + held_until.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_state_held_until
		ON schedule_seat_state (held_until)
		WHERE status = 'HELD';
	`).Error
	if err != nil {
		return err
	}

	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_pending_created
		ON bookings (created_at)
		WHERE status = 'PENDING';
	`).Error
	if err != nil {
		return err
	}

	// A booking settles exactly once.
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_booking
		ON payments (booking_id);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
