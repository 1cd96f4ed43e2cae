package database

import (
	"epicly/internal/bookings"
	"epicly/internal/catalog"
	"epicly/internal/inventory"
	"epicly/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&catalog.Venue{},
		&catalog.Section{},
		&catalog.Seat{},
		&catalog.Event{},
		&catalog.Schedule{},
		&inventory.ScheduleSeatState{},
		&bookings.Booking{},
		&bookings.BookingSeat{},
		&bookings.Payment{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
