package services

import (
	"errors"
	"fmt"

	apperrors "github.com/opencourse/coursework-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Course structure errors
	ErrCourseInstanceNotFound = errors.New("course instance not found")
	ErrModuleNotFound         = errors.New("course module not found")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrModuleTimeOrder        = errors.New("module closing time precedes opening time")
	ErrLateDeadlineMissing    = errors.New("late submissions allowed without a late submission deadline")
	ErrLateDeadlineTooEarly   = errors.New("late submission deadline precedes closing time")

	// Exercise errors
	ErrExerciseNotFound      = errors.New("exercise not found")
	ErrPointsToPassExceedMax = errors.New("points to pass exceed max points")

	// Submission errors
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrSubmissionNotAllowed = errors.New("submission not allowed")
	ErrSubmissionNotGraded  = errors.New("submission is not graded")
	ErrNoSubmitters         = errors.New("submission requires at least one submitter")

	// Deviation errors
	ErrDeviationNotFound = errors.New("deadline deviation not found")

	// User errors
	ErrUserNotFound = errors.New("user not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from the errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     uint   `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// ===== ERROR HELPERS =====

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCourseInstanceNotFound) ||
		errors.Is(err, ErrModuleNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrExerciseNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrDeviationNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSubmissionNotAllowed)
}
