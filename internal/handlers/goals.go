package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JonnyWalker81/moodlens/backend/internal/apierror"
	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/internal/service"
)

type GoalHandler struct {
	goalService service.GoalService
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(goalService service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

// CreateGoal handles POST /api/v1/goals
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, apierror.NewBadRequestError(apierror.GetRequestID(c), err.Error(), "Invalid JSON format"))
		return
	}

	goal, err := h.goalService.CreateGoal(c.Request.Context(), userID, &req)
	if err != nil {
		writeServiceError(c, err, "goal", "")
		return
	}

	c.JSON(http.StatusCreated, goal)
}

// ListGoals handles GET /api/v1/goals?active=true
func (h *GoalHandler) ListGoals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	activeOnly := false
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), []apierror.FieldError{
				{Field: "active", Message: "must be a boolean value", Code: "invalid_type"},
			}))
			return
		}
		activeOnly = parsed
	}

	goals, err := h.goalService.ListGoals(c.Request.Context(), userID, activeOnly)
	if err != nil {
		writeServiceError(c, err, "goal", "")
		return
	}
	if goals == nil {
		goals = []models.MoodGoal{}
	}

	c.JSON(http.StatusOK, goals)
}

// GetGoal handles GET /api/v1/goals/:id
func (h *GoalHandler) GetGoal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	goalID, ok := goalIDParam(c)
	if !ok {
		return
	}
	goal, err := h.goalService.GetGoal(c.Request.Context(), userID, goalID)
	if err != nil {
		writeServiceError(c, err, "goal", goalID)
		return
	}

	c.JSON(http.StatusOK, goal)
}

// UpdateGoal handles PATCH /api/v1/goals/:id
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	goalID, ok := goalIDParam(c)
	if !ok {
		return
	}

	var req models.UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, apierror.NewBadRequestError(apierror.GetRequestID(c), err.Error(), "Invalid JSON format"))
		return
	}

	goal, err := h.goalService.UpdateGoal(c.Request.Context(), userID, goalID, &req)
	if err != nil {
		writeServiceError(c, err, "goal", goalID)
		return
	}

	c.JSON(http.StatusOK, goal)
}

// DeleteGoal handles DELETE /api/v1/goals/:id
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	goalID, ok := goalIDParam(c)
	if !ok {
		return
	}
	if err := h.goalService.DeleteGoal(c.Request.Context(), userID, goalID); err != nil {
		writeServiceError(c, err, "goal", goalID)
		return
	}

	c.Status(http.StatusNoContent)
}

// goalIDParam reads the :id path parameter, writing a 400 when it is not a UUID
func goalIDParam(c *gin.Context) (string, bool) {
	goalID := c.Param("id")
	if _, err := uuid.Parse(goalID); err != nil {
		apierror.WriteProblem(c, apierror.NewInvalidUUIDError(apierror.GetRequestID(c), "id", goalID))
		return "", false
	}
	return goalID, true
}
