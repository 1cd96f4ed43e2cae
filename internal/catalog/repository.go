package catalog

import (
	"context"
	"errors"
	"time"

	"epicly/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	ListSchedules(ctx context.Context, eventID uuid.UUID, filter ScheduleFilter) ([]Schedule, error)
	GetScheduleByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error)
	GetSeatsBySectionID(ctx context.Context, sectionID uuid.UUID) ([]Seat, error)
}

// EventFilter narrows the event listing; zero values mean no filtering.
type EventFilter struct {
	Type     string
	Language string
	Genre    string
	City     string
	Date     *time.Time
}

// ScheduleFilter narrows the schedule listing for one event.
type ScheduleFilter struct {
	Date  *time.Time
	Venue string
	City  string
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	query := r.db.WithContext(ctx).Model(&Event{})

	if filter.Type != "" {
		query = query.Where("events.event_type = ?", filter.Type)
	}
	if filter.Language != "" {
		query = query.Where("events.language ILIKE ?", "%"+filter.Language+"%")
	}
	if filter.Genre != "" {
		query = query.Where("events.genre ILIKE ?", "%"+filter.Genre+"%")
	}

	if filter.City != "" || filter.Date != nil {
		query = query.
			Joins("JOIN schedules ON schedules.event_id = events.id").
			Joins("JOIN venues ON venues.id = schedules.venue_id")
		if filter.City != "" {
			query = query.Where("venues.city ILIKE ?", "%"+filter.City+"%")
		}
		if filter.Date != nil {
			dayStart := filter.Date.Truncate(24 * time.Hour)
			query = query.Where("schedules.start_time >= ? AND schedules.start_time < ?", dayStart, dayStart.Add(24*time.Hour))
		}
		query = query.Distinct("events.*")
	}

	var events []Event
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("event", id.String())
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) ListSchedules(ctx context.Context, eventID uuid.UUID, filter ScheduleFilter) ([]Schedule, error) {
	query := r.db.WithContext(ctx).
		Preload("Venue").
		Preload("Section").
		Where("schedules.event_id = ?", eventID).
		Where("schedules.start_time > ?", time.Now())

	if filter.Date != nil {
		dayStart := filter.Date.Truncate(24 * time.Hour)
		query = query.Where("schedules.start_time >= ? AND schedules.start_time < ?", dayStart, dayStart.Add(24*time.Hour))
	}
	if filter.Venue != "" || filter.City != "" {
		query = query.Joins("JOIN venues ON venues.id = schedules.venue_id")
		if filter.Venue != "" {
			query = query.Where("venues.name ILIKE ?", "%"+filter.Venue+"%")
		}
		if filter.City != "" {
			query = query.Where("venues.city ILIKE ?", "%"+filter.City+"%")
		}
	}

	var schedules []Schedule
	if err := query.Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *repository) GetScheduleByID(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	var schedule Schedule
	if err := r.db.WithContext(ctx).First(&schedule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("schedule", id.String())
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *repository) GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error) {
	var seats []Seat
	if len(seatIDs) == 0 {
		return seats, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", seatIDs).Find(&seats).Error; err != nil {
		return nil, err
	}
	return seats, nil
}

func (r *repository) GetSeatsBySectionID(ctx context.Context, sectionID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	if err := r.db.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Order("row_label, seat_number").
		Find(&seats).Error; err != nil {
		return nil, err
	}
	return seats, nil
}
