package response

import (
	"net/http"

	"epicly/internal/shared/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StandardApiResponse is the envelope every endpoint responds with.
type StandardApiResponse struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps a domain error to an HTTP status code and writes the
// standard error envelope. Contested seat ids, when present, are surfaced
// in the errors payload so the client can correct its selection.
func RespondError(c *gin.Context, message string, err error) {
	code := http.StatusInternalServerError
	switch {
	case apperrors.IsValidationFailed(err):
		code = http.StatusBadRequest
	case apperrors.IsNotFound(err):
		code = http.StatusNotFound
	case apperrors.IsSeatUnavailable(err):
		code = http.StatusConflict
	case apperrors.IsInvalidState(err):
		code = http.StatusConflict
	case apperrors.IsTransient(err):
		code = http.StatusServiceUnavailable
	}

	var details interface{} = err.Error()
	if seats := apperrors.UnavailableSeats(err); len(seats) > 0 {
		ids := make([]string, 0, len(seats))
		for _, id := range seats {
			ids = append(ids, id.String())
		}
		details = gin.H{"message": err.Error(), "unavailable_seats": ids}
	}

	RespondJSON(c, "error", code, message, nil, details)
}

// ParseUUIDParam reads a path parameter and parses it as a UUID, writing a
// 400 response and returning false when it is missing or malformed.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := c.Param(name)
	if raw == "" {
		RespondJSON(c, "error", http.StatusBadRequest, name+" is required", nil, "missing "+name)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondJSON(c, "error", http.StatusBadRequest, "invalid "+name, nil, err.Error())
		return uuid.Nil, false
	}
	return id, true
}
