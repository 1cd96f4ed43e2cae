package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs.
// Pattern: epicly:{module}:{operation}:{identifier}

const CACHE_PREFIX = "epicly"

// Catalog data changes rarely; seat availability is real-time sensitive
// and uses the shorter configurable listing TTL instead.
const TTL_EVENT_DETAIL = 1 * time.Hour

const (
	CACHE_KEY_EVENT_DETAIL   = CACHE_PREFIX + ":catalog:event:"   // + event-id
	CACHE_KEY_SCHEDULE_SEATS = CACHE_PREFIX + ":inventory:seats:" // + schedule-id
)

// BuildScheduleSeatsKey returns the cache key for one schedule's seat listing.
func BuildScheduleSeatsKey(scheduleID string) string {
	return fmt.Sprintf("%s%s", CACHE_KEY_SCHEDULE_SEATS, scheduleID)
}

// BuildEventDetailKey returns the cache key for one event's detail view.
func BuildEventDetailKey(eventID string) string {
	return fmt.Sprintf("%s%s", CACHE_KEY_EVENT_DETAIL, eventID)
}
