package bookings

import "github.com/google/uuid"

// CreateBookingRequest is the payload for POST /bookings.
type CreateBookingRequest struct {
	ScheduleID uuid.UUID   `json:"schedule_id" binding:"required"`
	SeatIDs    []uuid.UUID `json:"seat_ids" binding:"required,min=1"`
	HoldToken  uuid.UUID   `json:"hold_token" binding:"required"`
}

// PaymentRequest is the payload for POST /bookings/:id/payment.
type PaymentRequest struct {
	Method string `json:"method" binding:"required,oneof=UPI CARD NETBANKING WALLET"`
}
