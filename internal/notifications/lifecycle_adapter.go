package notifications

import (
	"context"
	"log/slog"

	"epicly/internal/bookings"
	"epicly/pkg/logger"

	"github.com/google/uuid"
)

// LifecycleAdapter bridges the booking and inventory services to the
// event producer. It satisfies bookings.LifecyclePublisher and
// inventory.ExpiryNotifier. Publish failures are logged and swallowed:
// the booking state in Postgres is the source of truth, events are
// best-effort fanout.
type LifecycleAdapter struct {
	producer EventProducer
}

func NewLifecycleAdapter(producer EventProducer) *LifecycleAdapter {
	return &LifecycleAdapter{producer: producer}
}

func (a *LifecycleAdapter) BookingCreated(ctx context.Context, booking *bookings.Booking) {
	event := NewBookingEvent(EventBookingCreated, booking.ScheduleID)
	a.fillBooking(event, booking)
	a.publish(ctx, event)
}

func (a *LifecycleAdapter) BookingConfirmed(ctx context.Context, booking *bookings.Booking) {
	event := NewBookingEvent(EventBookingConfirmed, booking.ScheduleID)
	a.fillBooking(event, booking)
	a.publish(ctx, event)
}

func (a *LifecycleAdapter) BookingCancelled(ctx context.Context, booking *bookings.Booking, reason string) {
	event := NewBookingEvent(EventBookingCancelled, booking.ScheduleID)
	a.fillBooking(event, booking)
	event.Reason = reason
	a.publish(ctx, event)
}

func (a *LifecycleAdapter) HoldExpired(ctx context.Context, scheduleID, seatID, token uuid.UUID) {
	event := NewBookingEvent(EventHoldExpired, scheduleID)
	event.SeatID = &seatID
	event.Reason = "hold ttl elapsed"
	a.publish(ctx, event)
}

func (a *LifecycleAdapter) fillBooking(event *BookingEvent, booking *bookings.Booking) {
	bookingID := booking.ID
	userID := booking.UserID
	event.BookingID = &bookingID
	event.UserID = &userID
	event.BookingRef = booking.BookingRef
	event.Amount = booking.TotalAmount
}

func (a *LifecycleAdapter) publish(ctx context.Context, event *BookingEvent) {
	if a.producer == nil {
		return
	}
	if err := a.producer.Publish(ctx, event); err != nil {
		logger.GetDefault().Error("failed to publish booking event",
			slog.String("type", string(event.Type)),
			slog.Any("error", err),
		)
	}
}
