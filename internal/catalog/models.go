package catalog

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies an event for catalog filtering.
type EventType string

const (
	EventTypeMovie      EventType = "MOVIE"
	EventTypeComedyShow EventType = "COMEDY_SHOW"
	EventTypeSports     EventType = "SPORTS"
	EventTypeConcert    EventType = "CONCERT"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventTypeMovie, EventTypeComedyShow, EventTypeSports, EventTypeConcert:
		return true
	}
	return false
}

// SeatType classifies a seat; base price is a per-seat catalog fact.
type SeatType string

const (
	SeatTypeRegular SeatType = "REGULAR"
	SeatTypePremium SeatType = "PREMIUM"
	SeatTypeVIP     SeatType = "VIP"
	SeatTypeGeneral SeatType = "GENERAL"
)

func (t SeatType) IsValid() bool {
	switch t {
	case SeatTypeRegular, SeatTypePremium, SeatTypeVIP, SeatTypeGeneral:
		return true
	}
	return false
}

// Venue is a physical location hosting events.
type Venue struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name      string    `json:"name" gorm:"not null;size:200"`
	Location  string    `json:"location" gorm:"not null;size:200"`
	Capacity  int       `json:"capacity" gorm:"not null"`
	Address   string    `json:"address,omitempty" gorm:"type:text"`
	City      string    `json:"city,omitempty" gorm:"size:100;index"`
	State     string    `json:"state,omitempty" gorm:"size:100"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sections []Section `json:"sections,omitempty" gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE;"`
}

// Section is a named seating block inside a venue.
type Section struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	VenueID   uuid.UUID `json:"venue_id" gorm:"type:uuid;index;not null"`
	Name      string    `json:"name" gorm:"not null;size:100"`
	Capacity  int       `json:"capacity" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Venue *Venue `json:"venue,omitempty" gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE;"`
	Seats []Seat `json:"seats,omitempty" gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE;"`
}

// Seat is an immutable catalog fact: position and base price. Availability
// per schedule lives in schedule_seat_state, not here.
type Seat struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	SectionID  uuid.UUID `json:"section_id" gorm:"type:uuid;index;not null;uniqueIndex:idx_section_row_seat"`
	RowLabel   string    `json:"row_label" gorm:"not null;size:5;uniqueIndex:idx_section_row_seat"`
	SeatNumber int       `json:"seat_number" gorm:"not null;uniqueIndex:idx_section_row_seat"`
	SeatType   SeatType  `json:"seat_type" gorm:"type:varchar(20);not null"`
	BasePrice  float64   `json:"base_price" gorm:"type:decimal(10,2);not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Section *Section `json:"section,omitempty" gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE;"`
}

// Event is a show in the catalog (movie, match, concert).
type Event struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title       string    `json:"title" gorm:"not null;size:200"`
	EventType   EventType `json:"event_type" gorm:"type:varchar(20);not null;index"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Language    string    `json:"language,omitempty" gorm:"size:50"`
	Genre       string    `json:"genre,omitempty" gorm:"size:50"`
	DurationMin int       `json:"duration,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Schedules []Schedule `json:"schedules,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE;"`
}

// Schedule is one occurrence of an event at a venue section and time.
// Publishing a schedule creates one schedule_seat_state row per seat in
// the section.
type Schedule struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EventID   uuid.UUID `json:"event_id" gorm:"type:uuid;index;not null"`
	VenueID   uuid.UUID `json:"venue_id" gorm:"type:uuid;index;not null"`
	SectionID uuid.UUID `json:"section_id" gorm:"type:uuid;not null"`
	StartTime time.Time `json:"start_time" gorm:"not null;index"`
	EndTime   time.Time `json:"end_time" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Event   *Event   `json:"event,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE;"`
	Venue   *Venue   `json:"venue,omitempty" gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE;"`
	Section *Section `json:"section,omitempty" gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE;"`
}

func (Venue) TableName() string    { return "venues" }
func (Section) TableName() string  { return "sections" }
func (Seat) TableName() string     { return "seats" }
func (Event) TableName() string    { return "events" }
func (Schedule) TableName() string { return "schedules" }
