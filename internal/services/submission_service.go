package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/opencourse/coursework-service/internal/events"
	"github.com/opencourse/coursework-service/internal/models"
	"github.com/opencourse/coursework-service/internal/policy"
	"github.com/opencourse/coursework-service/internal/repositories"
	"github.com/opencourse/coursework-service/internal/validator"
	"gorm.io/datatypes"
)

// SubmissionDeniedError carries every policy reason the submission attempt
// violated, so handlers can render the complete list.
type SubmissionDeniedError struct {
	Reasons []policy.ReasonCode
}

func (e *SubmissionDeniedError) Error() string {
	return fmt.Sprintf("submission not allowed: %v", e.Reasons)
}

func (e *SubmissionDeniedError) Unwrap() error {
	return ErrSubmissionNotAllowed
}

type submissionService struct {
	repo      repositories.Repository
	exercises ExerciseService
	summaries SummaryService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	baseURL   string
}

func NewSubmissionService(
	repo repositories.Repository,
	exercises ExerciseService,
	summaries SummaryService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	baseURL string,
) SubmissionService {
	return &submissionService{
		repo:      repo,
		exercises: exercises,
		summaries: summaries,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		baseURL:   baseURL,
	}
}

// ===== CREATE =====

func (s *submissionService) Create(ctx context.Context, req *CreateSubmissionRequest) (*models.Submission, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if len(req.SubmitterIDs) == 0 {
		return nil, ErrNoSubmitters
	}

	exercise, err := s.exercises.GetByID(ctx, req.ExerciseID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	allowed, err := s.exercises.IsSubmissionAllowed(ctx, req.ExerciseID, req.SubmitterIDs, now)
	if err != nil {
		return nil, err
	}
	if !allowed.Allowed {
		return nil, &SubmissionDeniedError{Reasons: allowed.Reasons}
	}

	submission := &models.Submission{
		ExerciseID:     exercise.ID,
		Status:         models.StatusInitialized,
		SubmissionTime: now,
	}

	if err := s.repo.Submission().Create(ctx, submission, req.SubmitterIDs); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	if len(req.FileNames) > 0 {
		if err := s.attachFiles(ctx, submission, exercise, req.FileNames); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Submission created",
		"submission_id", submission.ID,
		"exercise_id", exercise.ID,
		"submitters", req.SubmitterIDs)

	s.publish(ctx, events.NewSubmissionEvent(events.SubmissionReceived, submission, req.SubmitterIDs))

	return s.repo.Submission().GetByID(ctx, submission.ID)
}

func (s *submissionService) attachFiles(ctx context.Context, submission *models.Submission, exercise *models.Exercise, names []string) error {
	// Paths must be deterministic, so load the stored submitter association
	// rather than trusting request order.
	stored, err := s.repo.Submission().GetByID(ctx, submission.ID)
	if err != nil {
		return fmt.Errorf("failed to reload submission: %w", err)
	}

	files := make([]*models.SubmittedFile, len(names))
	for i, name := range names {
		files[i] = &models.SubmittedFile{
			ParamName: fmt.Sprintf("file_%d", i+1),
			FileName:  name,
			Path:      stored.BuildUploadDir(exercise.CourseModule.CourseInstanceID, name),
		}
	}
	if err := s.repo.Submission().AddFiles(ctx, submission.ID, files); err != nil {
		return fmt.Errorf("failed to attach files: %w", err)
	}
	return nil
}

// ===== READ =====

func (s *submissionService) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	submission, err := s.repo.Submission().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return submission, nil
}

func (s *submissionService) ListForStudent(ctx context.Context, exerciseID, userID uint) ([]*models.Submission, error) {
	return s.repo.Submission().ListForStudent(ctx, exerciseID, userID)
}

// ===== GRADING DISPATCH =====

func (s *submissionService) Dispatch(ctx context.Context, submissionID uint) (*GradingRequest, error) {
	submission, err := s.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if err := submission.SetWaiting(); err != nil {
		return nil, fmt.Errorf("cannot dispatch submission %d: %w", submissionID, err)
	}
	if err := s.repo.Submission().Update(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}

	s.logger.Info("Submission dispatched for grading",
		"submission_id", submission.ID,
		"exercise_id", submission.ExerciseID)

	return s.buildGradingRequest(submission), nil
}

func (s *submissionService) BuildGradingRequest(ctx context.Context, submissionID uint) (*GradingRequest, error) {
	submission, err := s.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return s.buildGradingRequest(submission), nil
}

func (s *submissionService) buildGradingRequest(submission *models.Submission) *GradingRequest {
	return &GradingRequest{
		SubmissionID:  submission.ID,
		SubmissionURL: fmt.Sprintf("%s/api/v1/grading/submissions/%d/result", s.baseURL, submission.ID),
		ServiceURL:    submission.Exercise.ServiceURL,
		MaxPoints:     submission.Exercise.MaxPoints,
	}
}

// ===== GRADING CALLBACK =====

// HandleGradingResult records the grading service's verdict. The late
// penalty is resolved against the submission time, not the grading time:
// a submission graded days later is only penalized if submitting itself
// was late.
func (s *submissionService) HandleGradingResult(ctx context.Context, req *GradingResultRequest) (*models.Submission, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	submission, err := s.GetByID(ctx, req.SubmissionID)
	if err != nil {
		return nil, err
	}

	if req.Errored {
		if err := s.markError(ctx, submission); err != nil {
			return nil, err
		}
		return submission, nil
	}

	submitterIDs := submission.SubmitterIDs()
	deviations, err := s.repo.Deviation().GetForSubmitters(ctx, submission.ExerciseID, submitterIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve deviations: %w", err)
	}

	module := &submission.Exercise.CourseModule
	lateApplied := policy.LatePenaltyApplicable(module, deviations, submission.SubmissionTime)

	if err := submission.SetPoints(req.Points, req.MaxPoints, lateApplied, module.LateSubmissionPenalty); err != nil {
		// Grader bug, not a user condition. Surface it loudly.
		s.logger.Error("Grading result rejected",
			"submission_id", submission.ID,
			"points", req.Points,
			"max_points", req.MaxPoints,
			"error", err)
		return nil, err
	}

	if len(req.GradingData) > 0 {
		submission.GradingData = datatypes.JSON(req.GradingData)
	}
	submission.Feedback = req.Feedback
	submission.SetReady()

	if err := s.repo.Submission().Update(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}

	s.logger.Info("Submission graded",
		"submission_id", submission.ID,
		"grade", submission.Grade,
		"late_penalty_applied", submission.LatePenaltyApplied)

	s.publish(ctx, events.NewSubmissionEvent(events.SubmissionGraded, submission, submitterIDs))
	s.invalidateSummaries(ctx, submission, submitterIDs)

	return submission, nil
}

func (s *submissionService) MarkError(ctx context.Context, submissionID uint) error {
	submission, err := s.GetByID(ctx, submissionID)
	if err != nil {
		return err
	}
	return s.markError(ctx, submission)
}

func (s *submissionService) markError(ctx context.Context, submission *models.Submission) error {
	if err := submission.SetError(); err != nil {
		return fmt.Errorf("cannot mark submission %d as errored: %w", submission.ID, err)
	}
	if err := s.repo.Submission().Update(ctx, submission); err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}

	s.logger.Warn("Submission grading failed",
		"submission_id", submission.ID,
		"exercise_id", submission.ExerciseID)

	s.publish(ctx, events.NewSubmissionEvent(events.SubmissionErrored, submission, submission.SubmitterIDs()))
	return nil
}

// ===== HELPERS =====

func (s *submissionService) publish(ctx context.Context, event *events.SubmissionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSubmissionEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish submission event",
			"event_type", event.Type,
			"submission_id", event.SubmissionID,
			"error", err)
	}
}

func (s *submissionService) invalidateSummaries(ctx context.Context, submission *models.Submission, submitterIDs []uint) {
	if s.summaries == nil {
		return
	}
	instanceID := submission.Exercise.CourseModule.CourseInstanceID
	for _, userID := range submitterIDs {
		if err := s.summaries.InvalidateUserSummary(ctx, instanceID, userID); err != nil {
			s.logger.Error("Failed to invalidate summary cache",
				"instance_id", instanceID,
				"user_id", userID,
				"error", err)
		}
	}
}
