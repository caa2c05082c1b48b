package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opencourse/coursework-service/internal/repositories"
	"github.com/opencourse/coursework-service/internal/services"
	"github.com/opencourse/coursework-service/internal/utils"
	"github.com/opencourse/coursework-service/internal/validator"
)

type ExerciseHandler struct {
	BaseHandler
	exerciseService services.ExerciseService
	validator       *validator.Validator
}

func NewExerciseHandler(
	exerciseService services.ExerciseService,
	validator *validator.Validator,
	logger utils.Logger,
) *ExerciseHandler {
	return &ExerciseHandler{
		BaseHandler:     NewBaseHandler(logger),
		exerciseService: exerciseService,
		validator:       validator,
	}
}

// CreateExercise creates a new exercise
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req services.CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating exercise", "module_id", req.CourseModuleID)

	exercise, err := h.exerciseService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// GetExercise returns an exercise by ID
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID := h.parseIDParam(c, "id")
	if exerciseID == 0 {
		return
	}

	exercise, err := h.exerciseService.GetByID(c.Request.Context(), exerciseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// ListExercises lists exercises with optional filters
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	filters := repositories.ExerciseFilters{}
	if moduleID, err := strconv.ParseUint(c.Query("module_id"), 10, 32); err == nil {
		id := uint(moduleID)
		filters.ModuleID = &id
	}
	if categoryID, err := strconv.ParseUint(c.Query("category_id"), 10, 32); err == nil {
		id := uint(categoryID)
		filters.CategoryID = &id
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filters.Offset = offset
	}

	exercises, total, err := h.exerciseService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exercises": exercises,
		"total":     total,
	})
}

// IsOpen reports whether the exercise accepts submissions at the given time
func (h *ExerciseHandler) IsOpen(c *gin.Context) {
	exerciseID := h.parseIDParam(c, "id")
	if exerciseID == 0 {
		return
	}

	at := time.Now()
	if atParam := c.Query("at"); atParam != "" {
		parsed, err := time.Parse(time.RFC3339, atParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid at parameter",
				Details: "must be an RFC 3339 timestamp",
			})
			return
		}
		at = parsed
	}

	open, err := h.exerciseService.IsOpen(c.Request.Context(), exerciseID, at)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exercise_id": exerciseID,
		"open":        open,
		"at":          at,
	})
}

// CheckSubmissionAllowed runs the full submission policy for the caller
func (h *ExerciseHandler) CheckSubmissionAllowed(c *gin.Context) {
	exerciseID := h.parseIDParam(c, "id")
	if exerciseID == 0 {
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	result, err := h.exerciseService.IsSubmissionAllowed(
		c.Request.Context(), exerciseID, []uint{userID.(uint)}, time.Now())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetBestSubmission returns the caller's best submission for an exercise
func (h *ExerciseHandler) GetBestSubmission(c *gin.Context) {
	exerciseID := h.parseIDParam(c, "id")
	if exerciseID == 0 {
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	best, err := h.exerciseService.BestSubmissionForStudent(c.Request.Context(), exerciseID, userID.(uint))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if best == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "No submissions for this exercise",
		})
		return
	}
	c.JSON(http.StatusOK, best)
}

// GetStats returns aggregate statistics for an exercise
func (h *ExerciseHandler) GetStats(c *gin.Context) {
	exerciseID := h.parseIDParam(c, "id")
	if exerciseID == 0 {
		return
	}

	stats, err := h.exerciseService.GetStats(c.Request.Context(), exerciseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
