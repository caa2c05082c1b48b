package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opencourse/coursework-service/internal/models"
	"github.com/opencourse/coursework-service/internal/repositories"
	"github.com/opencourse/coursework-service/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCourseService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) CourseService {
	return &courseService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== COURSE INSTANCES =====

func (s *courseService) CreateInstance(ctx context.Context, req *CreateInstanceRequest) (*models.CourseInstance, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !req.EndingTime.After(req.StartingTime) {
		return nil, fmt.Errorf("%w: ending time must follow starting time", ErrValidationFailed)
	}

	instance := &models.CourseInstance{
		InstanceName: req.InstanceName,
		URL:          req.URL,
		StartingTime: req.StartingTime,
		EndingTime:   req.EndingTime,
	}
	if err := s.repo.Course().CreateInstance(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to create course instance: %w", err)
	}

	s.logger.Info("Course instance created",
		"instance_id", instance.ID,
		"url", instance.URL)
	return instance, nil
}

func (s *courseService) GetInstance(ctx context.Context, id uint) (*models.CourseInstance, error) {
	instance, err := s.repo.Course().GetInstanceByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseInstanceNotFound
		}
		return nil, fmt.Errorf("failed to get course instance: %w", err)
	}
	return instance, nil
}

// ===== MODULES =====

func (s *courseService) CreateModule(ctx context.Context, req *CreateModuleRequest) (*models.CourseModule, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateModuleTimes(req); err != nil {
		return nil, err
	}
	if _, err := s.GetInstance(ctx, req.CourseInstanceID); err != nil {
		return nil, err
	}

	module := &models.CourseModule{
		CourseInstanceID:       req.CourseInstanceID,
		Name:                   req.Name,
		URL:                    req.URL,
		PointsToPass:           req.PointsToPass,
		OpeningTime:            req.OpeningTime,
		ClosingTime:            req.ClosingTime,
		LateSubmissionsAllowed: req.LateSubmissionsAllowed,
		LateSubmissionDeadline: req.LateSubmissionDeadline,
		LateSubmissionPenalty:  req.LateSubmissionPenalty,
	}
	if err := s.repo.Course().CreateModule(ctx, module); err != nil {
		return nil, fmt.Errorf("failed to create module: %w", err)
	}

	s.logger.Info("Course module created",
		"module_id", module.ID,
		"instance_id", module.CourseInstanceID,
		"late_submissions_allowed", module.LateSubmissionsAllowed)
	return module, nil
}

func validateModuleTimes(req *CreateModuleRequest) error {
	if req.ClosingTime.Before(req.OpeningTime) {
		return ErrModuleTimeOrder
	}
	if req.LateSubmissionsAllowed {
		if req.LateSubmissionDeadline == nil {
			return ErrLateDeadlineMissing
		}
		if req.LateSubmissionDeadline.Before(req.ClosingTime) {
			return ErrLateDeadlineTooEarly
		}
	}
	return nil
}

func (s *courseService) GetModule(ctx context.Context, id uint) (*models.CourseModule, error) {
	module, err := s.repo.Course().GetModuleByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	return module, nil
}

// ===== CATEGORIES =====

func (s *courseService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.LearningObjectCategory, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if _, err := s.GetInstance(ctx, req.CourseInstanceID); err != nil {
		return nil, err
	}

	category := &models.LearningObjectCategory{
		CourseInstanceID: req.CourseInstanceID,
		Name:             req.Name,
		PointsToPass:     req.PointsToPass,
	}
	if err := s.repo.Course().CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Category created",
		"category_id", category.ID,
		"instance_id", category.CourseInstanceID)
	return category, nil
}

func (s *courseService) GetCategory(ctx context.Context, id uint) (*models.LearningObjectCategory, error) {
	category, err := s.repo.Course().GetCategoryByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// SetCategoryHidden toggles per-user visibility. Hiding a category removes
// its exercises from the user's rollup and blocks new submissions to them.
func (s *courseService) SetCategoryHidden(ctx context.Context, categoryID, userID uint, hidden bool) error {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return err
	}
	if _, err := s.repo.User().GetByID(ctx, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.repo.Course().SetCategoryHidden(ctx, categoryID, userID, hidden); err != nil {
		return fmt.Errorf("failed to update category visibility: %w", err)
	}

	s.logger.Info("Category visibility updated",
		"category_id", categoryID,
		"user_id", userID,
		"hidden", hidden)
	return nil
}

func (s *courseService) IsCategoryHiddenTo(ctx context.Context, categoryID, userID uint) (bool, error) {
	hidden, err := s.repo.Course().IsCategoryHiddenTo(ctx, categoryID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrCategoryNotFound
		}
		return false, fmt.Errorf("failed to check category visibility: %w", err)
	}
	return hidden, nil
}
