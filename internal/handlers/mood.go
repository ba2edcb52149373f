package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/moodlens/backend/internal/apierror"
	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/internal/service"
)

type MoodHandler struct {
	moodService service.MoodService
	window      Window
}

// NewMoodHandler creates a new mood entry handler
func NewMoodHandler(moodService service.MoodService, window Window) *MoodHandler {
	return &MoodHandler{
		moodService: moodService,
		window:      window,
	}
}

// CreateEntry handles POST /api/v1/entries
func (h *MoodHandler) CreateEntry(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateMoodEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, apierror.NewBadRequestError(apierror.GetRequestID(c), err.Error(), "Invalid JSON format"))
		return
	}

	entry, err := h.moodService.RecordEntry(c.Request.Context(), userID, &req)
	if err != nil {
		writeServiceError(c, err, "entry", req.ID)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// ListEntries handles GET /api/v1/entries
func (h *MoodHandler) ListEntries(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	start, end, ok := h.window.Parse(c)
	if !ok {
		return
	}

	entries, err := h.moodService.ListEntries(c.Request.Context(), userID, start, end)
	if err != nil {
		writeServiceError(c, err, "entry", "")
		return
	}
	if entries == nil {
		entries = []models.MoodEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

// DeleteEntries handles DELETE /api/v1/entries. Both bounds are required.
func (h *MoodHandler) DeleteEntries(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var missing []apierror.FieldError
	for _, field := range []string{"start_date", "end_date"} {
		if c.Query(field) == "" {
			missing = append(missing, apierror.FieldError{Field: field, Message: "is required", Code: "required"})
		}
	}
	if len(missing) > 0 {
		apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), missing))
		return
	}

	start, end, ok := h.window.Parse(c)
	if !ok {
		return
	}

	if err := h.moodService.DeleteEntries(c.Request.Context(), userID, start, end); err != nil {
		writeServiceError(c, err, "entry", "")
		return
	}

	c.Status(http.StatusNoContent)
}
