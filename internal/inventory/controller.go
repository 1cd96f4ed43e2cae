package inventory

import (
	"net/http"
	"time"

	"epicly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// HoldRequest is the payload for POST /schedules/:id/holds.
type HoldRequest struct {
	SeatIDs []uuid.UUID `json:"seat_ids" binding:"required,min=1"`
}

// HoldResponse is returned after a successful all-or-nothing hold.
type HoldResponse struct {
	HoldToken  uuid.UUID   `json:"hold_token"`
	ScheduleID uuid.UUID   `json:"schedule_id"`
	SeatIDs    []uuid.UUID `json:"seat_ids"`
	ExpiresAt  string      `json:"expires_at"`
}

// PlaceHold handles POST /schedules/:id/holds.
func (c *Controller) PlaceHold(ctx *gin.Context) {
	scheduleID, ok := response.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	var req HoldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	hold, err := c.service.PlaceHold(ctx.Request.Context(), scheduleID, req.SeatIDs)
	if err != nil {
		response.RespondError(ctx, "Failed to hold seats", err)
		return
	}

	resp := HoldResponse{
		HoldToken:  hold.Token,
		ScheduleID: hold.ScheduleID,
		SeatIDs:    hold.SeatIDs,
		ExpiresAt:  hold.ExpiresAt.UTC().Format(time.RFC3339),
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Seats held successfully", resp, nil)
}

// ListSeats handles GET /schedules/:id/seats.
func (c *Controller) ListSeats(ctx *gin.Context) {
	scheduleID, ok := response.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	seats, err := c.service.ListScheduleSeats(ctx.Request.Context(), scheduleID)
	if err != nil {
		response.RespondError(ctx, "Failed to list seats", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats retrieved successfully", gin.H{
		"schedule_id": scheduleID,
		"seats":       seats,
		"count":       len(seats),
	}, nil)
}
