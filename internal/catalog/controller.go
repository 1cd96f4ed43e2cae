package catalog

import (
	"net/http"

	"epicly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListEvents handles GET /events with optional type/language/genre/city/date filters.
func (c *Controller) ListEvents(ctx *gin.Context) {
	date, err := ParseDateFilter(ctx.Query("date"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid date filter", nil, err.Error())
		return
	}

	filter := EventFilter{
		Type:     ctx.Query("type"),
		Language: ctx.Query("language"),
		Genre:    ctx.Query("genre"),
		City:     ctx.Query("city"),
		Date:     date,
	}

	events, err := c.service.ListEvents(ctx.Request.Context(), filter)
	if err != nil {
		response.RespondError(ctx, "Failed to list events", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Events retrieved successfully", events, nil)
}

// GetEvent handles GET /events/:id.
func (c *Controller) GetEvent(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Event ID is required", nil, "missing event ID")
		return
	}

	event, err := c.service.GetEvent(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, "Failed to get event", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event retrieved successfully", event, nil)
}

// ListSchedules handles GET /events/:id/schedules.
func (c *Controller) ListSchedules(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Event ID is required", nil, "missing event ID")
		return
	}

	date, err := ParseDateFilter(ctx.Query("date"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid date filter", nil, err.Error())
		return
	}

	filter := ScheduleFilter{
		Date:  date,
		Venue: ctx.Query("venue"),
		City:  ctx.Query("city"),
	}

	schedules, err := c.service.ListSchedules(ctx.Request.Context(), id, filter)
	if err != nil {
		response.RespondError(ctx, "Failed to list schedules", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Schedules retrieved successfully", schedules, nil)
}
