package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/moodlens/backend/internal/service"
)

type ExportHandler struct {
	exportService service.ExportService
	window        Window
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService service.ExportService, window Window) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		window:        window,
	}
}

// Export handles GET /api/v1/export
func (h *ExportHandler) Export(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	start, end, ok := h.window.Parse(c)
	if !ok {
		return
	}

	bundle, err := h.exportService.Export(c.Request.Context(), userID, start, end)
	if err != nil {
		writeServiceError(c, err, "export", "")
		return
	}

	filename := fmt.Sprintf("moodlens-export-%s-%s.json", start.Format("20060102"), end.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.JSON(http.StatusOK, bundle)
}
