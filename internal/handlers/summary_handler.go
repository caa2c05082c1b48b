package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opencourse/coursework-service/internal/services"
	"github.com/opencourse/coursework-service/internal/utils"
)

type SummaryHandler struct {
	BaseHandler
	summaryService services.SummaryService
	exportService  services.ExportService
}

func NewSummaryHandler(
	summaryService services.SummaryService,
	exportService services.ExportService,
	logger utils.Logger,
) *SummaryHandler {
	return &SummaryHandler{
		BaseHandler:    NewBaseHandler(logger),
		summaryService: summaryService,
		exportService:  exportService,
	}
}

// GetOwnSummary returns the caller's scoring rollup for a course instance
func (h *SummaryHandler) GetOwnSummary(c *gin.Context) {
	instanceID := h.parseIDParam(c, "instance_id")
	if instanceID == 0 {
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	summary, err := h.summaryService.GetUserCourseSummary(c.Request.Context(), instanceID, userID.(uint))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetUserSummary returns any student's rollup; staff only
func (h *SummaryHandler) GetUserSummary(c *gin.Context) {
	instanceID := h.parseIDParam(c, "instance_id")
	if instanceID == 0 {
		return
	}
	userID := h.parseIDParam(c, "user_id")
	if userID == 0 {
		return
	}

	summary, err := h.summaryService.GetUserCourseSummary(c.Request.Context(), instanceID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExportUserResults streams a student's results as an XLSX workbook
func (h *SummaryHandler) ExportUserResults(c *gin.Context) {
	instanceID := h.parseIDParam(c, "instance_id")
	if instanceID == 0 {
		return
	}
	userID := h.parseIDParam(c, "user_id")
	if userID == 0 {
		return
	}

	h.LogRequest(c, "Exporting user results",
		"instance_id", instanceID,
		"target_user_id", userID)

	data, err := h.exportService.ExportUserResults(c.Request.Context(), instanceID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("results_course_%d_user_%d.xlsx", instanceID, userID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
