package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"epicly/internal/inventory"
	"epicly/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// InTx runs fn against a repository bound to one transaction. Seat
	// state changes obtained through Inventory() join the same
	// transaction, so booking + seat rows commit or roll back as a unit.
	InTx(ctx context.Context, fn func(tx Repository) error) error

	// Inventory returns a seat-state repository bound to the same
	// database handle (and transaction, inside InTx).
	Inventory() inventory.Repository

	CreateBooking(ctx context.Context, booking *Booking) error
	CreateBookingSeats(ctx context.Context, seats []BookingSeat) error

	// GetBookingByID loads a booking with its seats and payment.
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// LockBooking loads a booking row under FOR UPDATE. Only meaningful
	// inside InTx.
	LockBooking(ctx context.Context, id uuid.UUID) (*Booking, error)

	SaveBooking(ctx context.Context, booking *Booking) error

	CreatePayment(ctx context.Context, payment *Payment) error

	GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, error)

	// FindExpiredPending returns up to limit PENDING bookings created
	// before the cutoff.
	FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error)
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

func (r *repository) Inventory() inventory.Repository {
	return inventory.NewRepository(r.db)
}

func (r *repository) CreateBooking(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) CreateBookingSeats(ctx context.Context, seats []BookingSeat) error {
	if len(seats) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&seats).Error
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Preload("Payment").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("booking", id.String())
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) LockBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("booking", id.String())
		}
		return nil, err
	}

	// Seats and payment are loaded separately; the lock is on the
	// booking row itself.
	if err := r.db.WithContext(ctx).Where("booking_id = ?", id).Find(&booking.Seats).Error; err != nil {
		return nil, err
	}
	var payment Payment
	err = r.db.WithContext(ctx).Where("booking_id = ?", id).First(&payment).Error
	if err == nil {
		booking.Payment = &payment
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) SaveBooking(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]interface{}{
			"status":       booking.Status,
			"confirmed_at": booking.ConfirmedAt,
			"cancelled_at": booking.CancelledAt,
			"updated_at":   booking.UpdatedAt,
		}).Error
}

func (r *repository) CreatePayment(ctx context.Context, payment *Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Preload("Payment").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", StatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

func isSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "lock timeout")
}
