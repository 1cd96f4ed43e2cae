package bookings

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Booking defines the main booking structure
type Booking struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	ScheduleID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"schedule_id"`
	TotalSeats  int        `gorm:"not null" json:"total_seats"`
	TotalAmount float64    `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status      Status     `gorm:"type:varchar(20);check:status IN ('PENDING', 'CONFIRMED', 'CANCELLED');default:'PENDING'" json:"status"`
	BookingRef  string     `gorm:"unique;not null" json:"booking_ref"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	// Relationships
	Seats   []BookingSeat `json:"seats,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
	Payment *Payment      `json:"payment,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:RESTRICT;"`
}

// BookingSeat records one seat in a booking with its price frozen at
// booking time. Catalog price changes never alter past bookings.
type BookingSeat struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	SeatID    uuid.UUID `gorm:"type:uuid;index;not null" json:"seat_id"`
	Price     float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// Payment is the single settlement record for a booking.
type Payment struct {
	ID             uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID      uuid.UUID     `gorm:"type:uuid;uniqueIndex;not null" json:"booking_id"`
	Amount         float64       `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status         PaymentStatus `gorm:"type:varchar(20);check:status IN ('PENDING', 'SUCCESS', 'FAILED');default:'PENDING'" json:"status"`
	Method         PaymentMethod `gorm:"type:varchar(20)" json:"method"`
	TransactionRef string        `gorm:"index" json:"transaction_ref,omitempty"`
	FailureReason  string        `json:"failure_reason,omitempty"`
	ProcessedAt    *time.Time    `json:"processed_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// TableName sets the table name for BookingSeat
func (BookingSeat) TableName() string {
	return "booking_seats"
}

// TableName sets the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

func (b *Booking) IsPending() bool {
	return b.Status == StatusPending
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

func (b *Booking) Confirm(at time.Time) {
	b.Status = StatusConfirmed
	b.ConfirmedAt = &at
	b.UpdatedAt = at
}

func (b *Booking) Cancel(at time.Time) {
	b.Status = StatusCancelled
	b.CancelledAt = &at
	b.UpdatedAt = at
}

// SeatIDs returns the seat IDs covered by this booking.
func (b *Booking) SeatIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Seats))
	for _, s := range b.Seats {
		ids = append(ids, s.SeatID)
	}
	return ids
}

func (p *Payment) MarkSuccess(transactionRef string, at time.Time) {
	p.Status = PaymentSuccess
	p.TransactionRef = transactionRef
	p.ProcessedAt = &at
	p.UpdatedAt = at
}

func (p *Payment) MarkFailed(reason string, at time.Time) {
	p.Status = PaymentFailed
	p.FailureReason = reason
	p.ProcessedAt = &at
	p.UpdatedAt = at
}

// NewBookingRef produces a short human-readable booking reference.
func NewBookingRef() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return fmt.Sprintf("BK-%s", raw[:10])
}
