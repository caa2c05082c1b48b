package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opencourse/coursework-service/internal/models"
	"github.com/opencourse/coursework-service/internal/repositories"
	"github.com/opencourse/coursework-service/internal/validator"
)

type deviationService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewDeviationService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) DeviationService {
	return &deviationService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *deviationService) Create(ctx context.Context, req *CreateDeviationRequest) (*models.DeadlineRuleDeviation, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.repo.Exercise().GetByID(ctx, req.ExerciseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("failed to get exercise: %w", err)
	}
	if _, err := s.repo.User().GetByID(ctx, req.SubmitterID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	deviation := &models.DeadlineRuleDeviation{
		ExerciseID:   req.ExerciseID,
		SubmitterID:  req.SubmitterID,
		ExtraMinutes: req.ExtraMinutes,
	}
	if err := s.repo.Deviation().Create(ctx, deviation); err != nil {
		return nil, fmt.Errorf("failed to create deviation: %w", err)
	}

	s.logger.Info("Deadline deviation created",
		"deviation_id", deviation.ID,
		"exercise_id", deviation.ExerciseID,
		"submitter_id", deviation.SubmitterID,
		"extra_minutes", deviation.ExtraMinutes)
	return deviation, nil
}

func (s *deviationService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Deviation().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrDeviationNotFound
		}
		return fmt.Errorf("failed to delete deviation: %w", err)
	}
	s.logger.Info("Deadline deviation deleted", "deviation_id", id)
	return nil
}

func (s *deviationService) ListByExercise(ctx context.Context, exerciseID uint) ([]models.DeadlineRuleDeviation, error) {
	return s.repo.Deviation().ListByExercise(ctx, exerciseID)
}
