package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/moodlens/backend/internal/apierror"
	"github.com/JonnyWalker81/moodlens/backend/internal/logger"
	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/internal/repository"
	"github.com/JonnyWalker81/moodlens/backend/internal/service"
)

// insightsRetryAfter is the Retry-After hint, in seconds, for a dashboard that timed out
const insightsRetryAfter = 5

// currentUser returns the authenticated user id, writing a 401 when there is none
func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return "", false
	}
	return userID, true
}

// Window resolves the start_date and end_date query parameters of windowed endpoints
type Window struct {
	// DefaultDays is the window length used when start_date is omitted
	DefaultDays int
	Now         func() time.Time
}

// NewWindow creates a Window that defaults to the last days days
func NewWindow(days int) Window {
	return Window{DefaultDays: days, Now: time.Now}
}

// Parse reads the window from the query string. A missing end_date is the next whole
// minute, which keeps repeated dashboard requests on the same cache key.
func (w Window) Parse(c *gin.Context) (start, end time.Time, ok bool) {
	var fieldErrors []apierror.FieldError

	end = w.Now().UTC().Truncate(time.Minute).Add(time.Minute)
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := parseEndDate(raw)
		if err != nil {
			fieldErrors = append(fieldErrors, apierror.FieldError{Field: "end_date", Message: "must be an RFC3339 timestamp or YYYY-MM-DD date", Code: "invalid_format"})
		} else {
			end = parsed
		}
	}

	days := w.DefaultDays
	if days <= 0 {
		days = 30
	}
	start = end.AddDate(0, 0, -days)
	if raw := c.Query("start_date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			fieldErrors = append(fieldErrors, apierror.FieldError{Field: "start_date", Message: "must be an RFC3339 timestamp or YYYY-MM-DD date", Code: "invalid_format"})
		} else {
			start = parsed
		}
	}

	if len(fieldErrors) == 0 && end.Before(start) {
		fieldErrors = append(fieldErrors, apierror.FieldError{Field: "end_date", Message: "must not be before start_date", Code: "invalid_range"})
	}
	if len(fieldErrors) > 0 {
		apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), fieldErrors))
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// parseEndDate reads an inclusive upper bound. A bare date covers that whole day.
func parseEndDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return parseDate(raw)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return t, nil
}

func toFieldErrors(violations []models.FieldViolation) []apierror.FieldError {
	out := make([]apierror.FieldError, 0, len(violations))
	for _, v := range violations {
		out = append(out, apierror.FieldError{Field: v.Field, Message: v.Message, Code: v.Code})
	}
	return out
}

// writeServiceError maps service errors to problem responses. resource and id name
// the thing a 404 refers to.
func writeServiceError(c *gin.Context, err error, resource, id string) {
	requestID := apierror.GetRequestID(c)

	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := toFieldErrors(verr.Fields)
		switch {
		case errors.Is(err, models.ErrInvalidEntry):
			apierror.WriteProblem(c, apierror.NewInvalidEntryError(requestID, fields))
		case errors.Is(err, models.ErrInvalidGoal):
			apierror.WriteProblem(c, apierror.NewInvalidGoalError(requestID, fields))
		default:
			apierror.WriteProblem(c, apierror.NewValidationError(requestID, fields))
		}
	case errors.Is(err, service.ErrInvalidWindow):
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "The end date must not be before the start date"))
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNoAnalysis):
		apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, resource, id))
	case errors.Is(err, repository.ErrConflict):
		apierror.WriteProblem(c, apierror.NewConflictError(requestID, fmt.Sprintf("A %s with ID '%s' already exists", resource, id)))
	case errors.Is(err, service.ErrInsightsUnavailable):
		apierror.WriteProblem(c, apierror.NewInsightsUnavailableError(requestID, insightsRetryAfter))
	case errors.Is(err, service.ErrAuthUnavailable):
		apierror.WriteProblem(c, apierror.NewServiceUnavailableError(requestID, 60))
	default:
		logger.Ctx(c.Request.Context()).Error("request failed",
			logger.Err(err),
			logger.String("resource", resource),
		)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
	}
}
