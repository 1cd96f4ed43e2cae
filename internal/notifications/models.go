package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType classifies a booking lifecycle event.
type EventType string

const (
	EventBookingCreated   EventType = "BOOKING_CREATED"
	EventBookingConfirmed EventType = "BOOKING_CONFIRMED"
	EventBookingCancelled EventType = "BOOKING_CANCELLED"
	EventHoldExpired      EventType = "HOLD_EXPIRED"
)

// BookingEvent is the wire envelope published to the booking events
// topic. Consumers key deliveries off Type.
type BookingEvent struct {
	ID         uuid.UUID  `json:"id"`
	Type       EventType  `json:"type"`
	BookingID  *uuid.UUID `json:"booking_id,omitempty"`
	BookingRef string     `json:"booking_ref,omitempty"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	ScheduleID uuid.UUID  `json:"schedule_id"`
	SeatID     *uuid.UUID `json:"seat_id,omitempty"`
	Amount     float64    `json:"amount,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

func NewBookingEvent(eventType EventType, scheduleID uuid.UUID) *BookingEvent {
	return &BookingEvent{
		ID:         uuid.New(),
		Type:       eventType,
		ScheduleID: scheduleID,
		OccurredAt: time.Now().UTC(),
	}
}

func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func BookingEventFromJSON(data []byte) (*BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// PartitionKey routes all events for one schedule to the same partition
// so consumers observe them in order.
func (e *BookingEvent) PartitionKey() string {
	return e.ScheduleID.String()
}
