package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opencourse/coursework-service/internal/services"
	"github.com/opencourse/coursework-service/internal/utils"
	"github.com/opencourse/coursework-service/internal/validator"
)

type GradingHandler struct {
	BaseHandler
	submissionService services.SubmissionService
	validator         *validator.Validator
}

func NewGradingHandler(
	submissionService services.SubmissionService,
	validator *validator.Validator,
	logger utils.Logger,
) *GradingHandler {
	return &GradingHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
		validator:         validator,
	}
}

// DispatchSubmission marks a submission waiting and returns the grading
// request the protocol layer sends to the exercise's grading service
func (h *GradingHandler) DispatchSubmission(c *gin.Context) {
	submissionID := h.parseIDParam(c, "id")
	if submissionID == 0 {
		return
	}

	h.LogRequest(c, "Dispatching submission", "submission_id", submissionID)

	request, err := h.submissionService.Dispatch(c.Request.Context(), submissionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

// SubmitGradingResult is the callback endpoint graders post results to. It
// accepts results at any time after dispatch, including retries after an
// error verdict.
func (h *GradingHandler) SubmitGradingResult(c *gin.Context) {
	submissionID := h.parseIDParam(c, "id")
	if submissionID == 0 {
		return
	}

	var req services.GradingResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.SubmissionID = submissionID

	h.LogRequest(c, "Receiving grading result",
		"submission_id", submissionID,
		"points", req.Points,
		"errored", req.Errored)

	submission, err := h.submissionService.HandleGradingResult(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

// MarkSubmissionError forces a submission into the error state, typically
// after a grader timeout
func (h *GradingHandler) MarkSubmissionError(c *gin.Context) {
	submissionID := h.parseIDParam(c, "id")
	if submissionID == 0 {
		return
	}

	h.LogRequest(c, "Marking submission errored", "submission_id", submissionID)

	if err := h.submissionService.MarkError(c.Request.Context(), submissionID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Submission marked as errored",
	})
}
