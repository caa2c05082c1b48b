package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opencourse/coursework-service/internal/services"
	"github.com/opencourse/coursework-service/internal/utils"
	"github.com/opencourse/coursework-service/internal/validator"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
	deviationService  services.DeviationService
	validator         *validator.Validator
}

func NewSubmissionHandler(
	submissionService services.SubmissionService,
	deviationService services.DeviationService,
	validator *validator.Validator,
	logger utils.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
		deviationService:  deviationService,
		validator:         validator,
	}
}

// CreateSubmission records a new submission for the caller
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	var req services.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	// A student may only submit on their own behalf; group submissions must
	// include the caller.
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}
	if len(req.SubmitterIDs) == 0 {
		req.SubmitterIDs = []uint{userID.(uint)}
	} else if !containsID(req.SubmitterIDs, userID.(uint)) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Submitters must include the authenticated user",
		})
		return
	}

	h.LogRequest(c, "Creating submission",
		"exercise_id", req.ExerciseID,
		"submitters", req.SubmitterIDs)

	submission, err := h.submissionService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, submission)
}

// GetSubmission returns a submission by ID
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	submissionID := h.parseIDParam(c, "id")
	if submissionID == 0 {
		return
	}

	submission, err := h.submissionService.GetByID(c.Request.Context(), submissionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

// ListOwnSubmissions lists the caller's submissions for an exercise
func (h *SubmissionHandler) ListOwnSubmissions(c *gin.Context) {
	exerciseID := h.parseIDParam(c, "exercise_id")
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

	submissions, err := h.submissionService.ListForStudent(c.Request.Context(), exerciseID, userID.(uint))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// CreateDeviation grants a submitter extra time on one exercise
func (h *SubmissionHandler) CreateDeviation(c *gin.Context) {
	var req services.CreateDeviationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating deadline deviation",
		"exercise_id", req.ExerciseID,
		"submitter_id", req.SubmitterID)

	deviation, err := h.deviationService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deviation)
}

// DeleteDeviation revokes a previously granted extension
func (h *SubmissionHandler) DeleteDeviation(c *gin.Context) {
	deviationID := h.parseIDParam(c, "id")
	if deviationID == 0 {
		return
	}

	if err := h.deviationService.Delete(c.Request.Context(), deviationID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Deviation deleted",
	})
}

// ListDeviations lists all deviations granted on an exercise
func (h *SubmissionHandler) ListDeviations(c *gin.Context) {
	exerciseID := h.parseIDParam(c, "exercise_id")
	if exerciseID == 0 {
		return
	}

	deviations, err := h.deviationService.ListByExercise(c.Request.Context(), exerciseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"deviations": deviations,
		"total":      len(deviations),
	})
}

func containsID(ids []uint, id uint) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
