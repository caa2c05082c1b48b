package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/opencourse/coursework-service/internal/models"
	"github.com/opencourse/coursework-service/internal/policy"
	"github.com/opencourse/coursework-service/internal/repositories"
	"github.com/opencourse/coursework-service/internal/validator"
)

type exerciseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewExerciseService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ExerciseService {
	return &exerciseService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *exerciseService) Create(ctx context.Context, req *CreateExerciseRequest) (*models.Exercise, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if req.MaxPoints > 0 && req.PointsToPass > req.MaxPoints {
		return nil, ErrPointsToPassExceedMax
	}

	if _, err := s.repo.Course().GetModuleByID(ctx, req.CourseModuleID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	if _, err := s.repo.Course().GetCategoryByID(ctx, req.CategoryID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	exercise := &models.Exercise{
		CourseModuleID:        req.CourseModuleID,
		CategoryID:            req.CategoryID,
		Kind:                  req.Kind,
		Name:                  req.Name,
		MaxPoints:             req.MaxPoints,
		PointsToPass:          req.PointsToPass,
		MaxSubmissions:        req.MaxSubmissions,
		AllowAssistantGrading: req.AllowAssistantGrading,
		ServiceURL:            req.ServiceURL,
		ExercisePageContent:   req.ExercisePageContent,
		SubmissionPageContent: req.SubmissionPageContent,
		Instructions:          req.Instructions,
		FilesToSubmit:         req.FilesToSubmit,
	}

	if err := s.repo.Exercise().Create(ctx, exercise); err != nil {
		return nil, fmt.Errorf("failed to create exercise: %w", err)
	}

	s.logger.Info("Exercise created",
		"exercise_id", exercise.ID,
		"module_id", exercise.CourseModuleID,
		"kind", exercise.Kind)

	return s.repo.Exercise().GetByID(ctx, exercise.ID)
}

func (s *exerciseService) GetByID(ctx context.Context, id uint) (*models.Exercise, error) {
	exercise, err := s.repo.Exercise().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("failed to get exercise: %w", err)
	}
	return exercise, nil
}

func (s *exerciseService) List(ctx context.Context, filters repositories.ExerciseFilters) ([]*models.Exercise, int64, error) {
	return s.repo.Exercise().List(ctx, filters)
}

// ===== ACCESS / DEADLINE DECISIONS =====

func (s *exerciseService) IsOpen(ctx context.Context, exerciseID uint, at time.Time) (bool, error) {
	exercise, err := s.GetByID(ctx, exerciseID)
	if err != nil {
		return false, err
	}
	return policy.IsOpen(&exercise.CourseModule, nil, at), nil
}

func (s *exerciseService) OneHasAccess(ctx context.Context, exerciseID uint, userIDs []uint, at time.Time) (bool, error) {
	exercise, err := s.GetByID(ctx, exerciseID)
	if err != nil {
		return false, err
	}
	deviations, err := s.repo.Deviation().GetForSubmitters(ctx, exerciseID, userIDs)
	if err != nil {
		return false, fmt.Errorf("failed to resolve deviations: %w", err)
	}
	return policy.IsOpen(&exercise.CourseModule, deviations, at), nil
}

func (s *exerciseService) IsSubmissionAllowed(ctx context.Context, exerciseID uint, userIDs []uint, at time.Time) (*SubmissionAllowedResponse, error) {
	exercise, err := s.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	check, err := s.buildSubmissionCheck(ctx, exercise, userIDs, at)
	if err != nil {
		return nil, err
	}

	allowed, reasons := policy.SubmissionAllowed(*check)
	if !allowed {
		s.logger.Info("Submission denied",
			"exercise_id", exerciseID,
			"submitters", userIDs,
			"reasons", reasons)
	}
	return &SubmissionAllowedResponse{Allowed: allowed, Reasons: reasons}, nil
}

func (s *exerciseService) buildSubmissionCheck(ctx context.Context, exercise *models.Exercise, userIDs []uint, at time.Time) (*policy.SubmissionCheck, error) {
	deviations, err := s.repo.Deviation().GetForSubmitters(ctx, exercise.ID, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve deviations: %w", err)
	}

	counts, err := s.repo.Submission().CountForSubmitters(ctx, exercise.ID, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}

	hiddenToAny := false
	for _, id := range userIDs {
		if exercise.Category.IsHiddenTo(id) {
			hiddenToAny = true
			break
		}
	}

	return &policy.SubmissionCheck{
		Exercise:         exercise,
		Deviations:       deviations,
		SubmitterIDs:     userIDs,
		SubmissionCounts: counts,
		HiddenToAny:      hiddenToAny,
		At:               at,
	}, nil
}

// ===== SUBMISSION QUERIES =====

func (s *exerciseService) OneHasSubmissions(ctx context.Context, exerciseID uint, userIDs []uint) (bool, error) {
	counts, err := s.repo.Submission().CountForSubmitters(ctx, exerciseID, userIDs)
	if err != nil {
		return false, fmt.Errorf("failed to count submissions: %w", err)
	}
	for _, count := range counts {
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (s *exerciseService) SubmissionsForStudent(ctx context.Context, exerciseID, userID uint) ([]*models.Submission, error) {
	return s.repo.Submission().ListForStudent(ctx, exerciseID, userID)
}

// BestSubmissionForStudent returns the student's submission with the highest
// grade; ties go to the earliest submission. Nil when the student has none.
func (s *exerciseService) BestSubmissionForStudent(ctx context.Context, exerciseID, userID uint) (*models.Submission, error) {
	submissions, err := s.repo.Submission().ListForStudent(ctx, exerciseID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return BestSubmission(submissions), nil
}

// BestSubmission picks the highest-graded submission, breaking ties by the
// earliest submission time.
func BestSubmission(submissions []*models.Submission) *models.Submission {
	var best *models.Submission
	for _, sub := range submissions {
		switch {
		case best == nil:
			best = sub
		case sub.Grade > best.Grade:
			best = sub
		case sub.Grade == best.Grade && sub.SubmissionTime.Before(best.SubmissionTime):
			best = sub
		}
	}
	return best
}

func (s *exerciseService) TotalSubmitterCount(ctx context.Context, exerciseID uint) (int, error) {
	return s.repo.Submission().DistinctSubmitterCount(ctx, exerciseID)
}

// FilesToSubmit returns the ordered filename manifest the storage
// collaborator expects for this exercise.
func (s *exerciseService) FilesToSubmit(ctx context.Context, exerciseID uint) ([]string, error) {
	exercise, err := s.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	return exercise.GetFilesToSubmit(), nil
}

func (s *exerciseService) GetStats(ctx context.Context, exerciseID uint) (*repositories.ExerciseStats, error) {
	stats, err := s.repo.Exercise().GetStats(ctx, exerciseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("failed to get exercise stats: %w", err)
	}
	return stats, nil
}
