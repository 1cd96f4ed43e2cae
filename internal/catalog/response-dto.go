package catalog

import "time"

// EventResponse is the catalog view of an event.
type EventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	EventType   EventType `json:"event_type"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	DurationMin int       `json:"duration,omitempty"`
}

// ScheduleResponse is a schedule with venue/section context for browsing.
type ScheduleResponse struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	VenueID     string    `json:"venue_id"`
	SectionID   string    `json:"section_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	VenueName   string    `json:"venue_name"`
	SectionName string    `json:"section_name"`
	City        string    `json:"city,omitempty"`
}

func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:          e.ID.String(),
		Title:       e.Title,
		EventType:   e.EventType,
		Description: e.Description,
		Language:    e.Language,
		Genre:       e.Genre,
		DurationMin: e.DurationMin,
	}
}
