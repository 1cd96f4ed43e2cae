package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"epicly/internal/shared/constants"
	"epicly/pkg/cache"

	"github.com/google/uuid"
)

type Service interface {
	ListEvents(ctx context.Context, filter EventFilter) ([]EventResponse, error)
	GetEvent(ctx context.Context, id string) (*EventResponse, error)
	ListSchedules(ctx context.Context, eventID string, filter ScheduleFilter) ([]ScheduleResponse, error)
}

type service struct {
	repo         Repository
	cacheService cache.Service
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{repo: repo, cacheService: cacheService}
}

func (s *service) ListEvents(ctx context.Context, filter EventFilter) ([]EventResponse, error) {
	if filter.Type != "" {
		filter.Type = strings.ToUpper(filter.Type)
		if !EventType(filter.Type).IsValid() {
			return nil, fmt.Errorf("invalid event type: %s", filter.Type)
		}
	}

	events, err := s.repo.ListEvents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	responses := make([]EventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, events[i].ToResponse())
	}
	return responses, nil
}

func (s *service) GetEvent(ctx context.Context, id string) (*EventResponse, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID: %w", err)
	}

	if s.cacheService != nil {
		var resp EventResponse
		key := constants.BuildEventDetailKey(eventID.String())
		err := s.cacheService.GetOrSet(ctx, key, constants.TTL_EVENT_DETAIL, func() (interface{}, error) {
			event, err := s.repo.GetEventByID(ctx, eventID)
			if err != nil {
				return nil, err
			}
			return event.ToResponse(), nil
		}, &resp)
		if err != nil {
			return nil, err
		}
		return &resp, nil
	}

	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) ListSchedules(ctx context.Context, eventID string, filter ScheduleFilter) ([]ScheduleResponse, error) {
	id, err := uuid.Parse(eventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID: %w", err)
	}

	// Ensure the event exists so absent events 404 instead of listing empty.
	if _, err := s.repo.GetEventByID(ctx, id); err != nil {
		return nil, err
	}

	schedules, err := s.repo.ListSchedules(ctx, id, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	responses := make([]ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		sc := &schedules[i]
		resp := ScheduleResponse{
			ID:        sc.ID.String(),
			EventID:   sc.EventID.String(),
			VenueID:   sc.VenueID.String(),
			SectionID: sc.SectionID.String(),
			StartTime: sc.StartTime,
			EndTime:   sc.EndTime,
		}
		if sc.Venue != nil {
			resp.VenueName = sc.Venue.Name
			resp.City = sc.Venue.City
		}
		if sc.Section != nil {
			resp.SectionName = sc.Section.Name
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// ParseDateFilter parses a YYYY-MM-DD query value.
func ParseDateFilter(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}
	return &t, nil
}
