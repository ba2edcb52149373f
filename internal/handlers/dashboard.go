package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/moodlens/backend/internal/apierror"
	"github.com/JonnyWalker81/moodlens/backend/internal/service"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	window           Window
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService service.DashboardService, window Window) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		window:           window,
	}
}

// GetDashboard handles GET /api/v1/dashboard
//
// Query parameters: start_date, end_date, include_ai (default true) and analysis_type.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	start, end, ok := h.window.Parse(c)
	if !ok {
		return
	}

	opts := service.DashboardOptions{
		IncludeAI:    true,
		AnalysisType: c.Query("analysis_type"),
	}
	if raw := c.Query("include_ai"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), []apierror.FieldError{
				{Field: "include_ai", Message: "must be a boolean value", Code: "invalid_type"},
			}))
			return
		}
		opts.IncludeAI = parsed
	}

	dash, err := h.dashboardService.ComputeDashboard(c.Request.Context(), userID, start, end, opts)
	if err != nil {
		writeServiceError(c, err, "dashboard", "")
		return
	}

	c.JSON(http.StatusOK, dash)
}

// GetLatestAnalysis handles GET /api/v1/analysis/latest
func (h *DashboardHandler) GetLatestAnalysis(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	analysis, err := h.dashboardService.GetLatestAnalysis(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "analysis", "latest")
		return
	}

	c.JSON(http.StatusOK, analysis)
}
