package bookings

import (
	"net/http"
	"strconv"

	"epicly/internal/shared/utils/response"
	"epicly/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateBooking handles POST /api/v1/bookings
func (c *Controller) CreateBooking(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	booking, err := c.service.CreateBooking(ctx.Request.Context(), userID, CreateBookingInput{
		ScheduleID: req.ScheduleID,
		SeatIDs:    req.SeatIDs,
		HoldToken:  req.HoldToken,
	})
	if err != nil {
		response.RespondError(ctx, "Failed to create booking", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking created successfully", booking.ToResponse(), nil)
}

// GetBooking handles GET /api/v1/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	bookingID, ok := response.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), bookingID)
	if err != nil {
		response.RespondError(ctx, "Failed to get booking", err)
		return
	}

	// Non-admin users can only see their own bookings.
	role, _ := ctx.Get("role")
	if role != string(users.RoleAdmin) && booking.UserID != userID {
		response.RespondJSON(ctx, "error", http.StatusForbidden, "Access denied", nil, "booking belongs to another user")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", booking.ToResponse(), nil)
}

// ProcessPayment handles POST /api/v1/bookings/:id/payment
func (c *Controller) ProcessPayment(ctx *gin.Context) {
	bookingID, ok := response.ParseUUIDParam(ctx, "id")
	if !ok {
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), bookingID)
	if err != nil {
		response.RespondError(ctx, "Failed to get booking", err)
		return
	}
	role, _ := ctx.Get("role")
	if role != string(users.RoleAdmin) && booking.UserID != userID {
		response.RespondJSON(ctx, "error", http.StatusForbidden, "Access denied", nil, "booking belongs to another user")
		return
	}

	settled, err := c.service.ProcessPayment(ctx.Request.Context(), bookingID, PaymentMethod(req.Method))
	if err != nil {
		response.RespondError(ctx, "Failed to process payment", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment processed", settled.ToResponse(), nil)
}

// GetUserBookings handles GET /api/v1/users/bookings
func (c *Controller) GetUserBookings(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	bookings, err := c.service.GetUserBookings(ctx.Request.Context(), userID, limit, offset)
	if err != nil {
		response.RespondError(ctx, "Failed to get user bookings", err)
		return
	}

	items := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		items = append(items, bookings[i].ToResponse())
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", gin.H{
		"bookings": items,
		"count":    len(items),
		"limit":    limit,
		"offset":   offset,
	}, nil)
}

// currentUserID extracts the authenticated user from the JWT context set
// by the auth middleware.
func currentUserID(ctx *gin.Context) (uuid.UUID, bool) {
	value, exists := ctx.Get("user_id")
	if !exists {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, "missing user context")
		return uuid.Nil, false
	}
	str, ok := value.(string)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Invalid user context", nil, "user_id is not a string")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(str)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid user ID", nil, err.Error())
		return uuid.Nil, false
	}
	return userID, true
}
