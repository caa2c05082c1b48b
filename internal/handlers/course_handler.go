package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opencourse/coursework-service/internal/services"
	"github.com/opencourse/coursework-service/internal/utils"
	"github.com/opencourse/coursework-service/internal/validator"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
	validator     *validator.Validator
}

type SetCategoryHiddenRequest struct {
	UserID uint `json:"user_id" validate:"required"`
	Hidden bool `json:"hidden"`
}

func NewCourseHandler(
	courseService services.CourseService,
	validator *validator.Validator,
	logger utils.Logger,
) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
		validator:     validator,
	}
}

// CreateInstance creates a new course instance
func (h *CourseHandler) CreateInstance(c *gin.Context) {
	var req services.CreateInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating course instance", "url", req.URL)

	instance, err := h.courseService.CreateInstance(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, instance)
}

// GetInstance returns a course instance by ID
func (h *CourseHandler) GetInstance(c *gin.Context) {
	instanceID := h.parseIDParam(c, "id")
	if instanceID == 0 {
		return
	}

	instance, err := h.courseService.GetInstance(c.Request.Context(), instanceID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, instance)
}

// CreateModule creates a new course module
func (h *CourseHandler) CreateModule(c *gin.Context) {
	var req services.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating course module", "instance_id", req.CourseInstanceID)

	module, err := h.courseService.CreateModule(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, module)
}

// GetModule returns a course module by ID
func (h *CourseHandler) GetModule(c *gin.Context) {
	moduleID := h.parseIDParam(c, "id")
	if moduleID == 0 {
		return
	}

	module, err := h.courseService.GetModule(c.Request.Context(), moduleID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, module)
}

// CreateCategory creates a new learning object category
func (h *CourseHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating category", "instance_id", req.CourseInstanceID)

	category, err := h.courseService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// GetCategory returns a category by ID
func (h *CourseHandler) GetCategory(c *gin.Context) {
	categoryID := h.parseIDParam(c, "id")
	if categoryID == 0 {
		return
	}

	category, err := h.courseService.GetCategory(c.Request.Context(), categoryID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// SetCategoryHidden toggles a category's visibility for one user
func (h *CourseHandler) SetCategoryHidden(c *gin.Context) {
	categoryID := h.parseIDParam(c, "id")
	if categoryID == 0 {
		return
	}

	var req SetCategoryHiddenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating category visibility",
		"category_id", categoryID,
		"target_user_id", req.UserID,
		"hidden", req.Hidden)

	if err := h.courseService.SetCategoryHidden(c.Request.Context(), categoryID, req.UserID, req.Hidden); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Category visibility updated",
	})
}
