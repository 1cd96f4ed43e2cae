package bookings

import (
	"time"

	"github.com/google/uuid"
)

// BookingResponse is the API shape of a booking.
type BookingResponse struct {
	ID          uuid.UUID             `json:"id"`
	BookingRef  string                `json:"booking_ref"`
	ScheduleID  uuid.UUID             `json:"schedule_id"`
	Status      Status                `json:"status"`
	TotalSeats  int                   `json:"total_seats"`
	TotalAmount float64               `json:"total_amount"`
	Seats       []BookingSeatResponse `json:"seats,omitempty"`
	Payment     *PaymentResponse      `json:"payment,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	ConfirmedAt *time.Time            `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time            `json:"cancelled_at,omitempty"`
}

type BookingSeatResponse struct {
	SeatID uuid.UUID `json:"seat_id"`
	Price  float64   `json:"price"`
}

type PaymentResponse struct {
	Status         PaymentStatus `json:"status"`
	Method         PaymentMethod `json:"method,omitempty"`
	Amount         float64       `json:"amount"`
	TransactionRef string        `json:"transaction_ref,omitempty"`
	FailureReason  string        `json:"failure_reason,omitempty"`
	ProcessedAt    *time.Time    `json:"processed_at,omitempty"`
}

// ToResponse converts a Booking (with loaded relations) to its API shape.
func (b *Booking) ToResponse() BookingResponse {
	resp := BookingResponse{
		ID:          b.ID,
		BookingRef:  b.BookingRef,
		ScheduleID:  b.ScheduleID,
		Status:      b.Status,
		TotalSeats:  b.TotalSeats,
		TotalAmount: b.TotalAmount,
		CreatedAt:   b.CreatedAt,
		ConfirmedAt: b.ConfirmedAt,
		CancelledAt: b.CancelledAt,
	}
	for _, seat := range b.Seats {
		resp.Seats = append(resp.Seats, BookingSeatResponse{
			SeatID: seat.SeatID,
			Price:  seat.Price,
		})
	}
	if b.Payment != nil {
		resp.Payment = &PaymentResponse{
			Status:         b.Payment.Status,
			Method:         b.Payment.Method,
			Amount:         b.Payment.Amount,
			TransactionRef: b.Payment.TransactionRef,
			FailureReason:  b.Payment.FailureReason,
			ProcessedAt:    b.Payment.ProcessedAt,
		}
	}
	return resp
}
