package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/opencourse/coursework-service/internal/events"
	"github.com/opencourse/coursework-service/internal/models"
	"github.com/opencourse/coursework-service/internal/policy"
	"github.com/opencourse/coursework-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newSubmissionServiceForTest(repo *MockRepository, publisher events.EventPublisher) SubmissionService {
	exerciseService := NewExerciseService(repo, testLogger(), validator.New())
	return NewSubmissionService(
		repo, exerciseService, nil, publisher,
		testLogger(), validator.New(), "http://localhost:8080")
}

func remoteExercise(module models.CourseModule) *models.Exercise {
	module.CourseInstanceID = 1
	return &models.Exercise{
		ID:             3,
		CourseModuleID: module.ID,
		Kind:           models.KindRemote,
		MaxPoints:      100,
		MaxSubmissions: 10,
		ServiceURL:     "http://grader.example.com/ex3",
		CourseModule:   module,
	}
}

func TestSubmissionService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("successful creation publishes an event", func(t *testing.T) {
		exercise := remoteExercise(openModule())

		mockRepo := newMockRepository()
		mockRepo.exerciseRepo.On("GetByID", mock.Anything, uint(3)).Return(exercise, nil)
		mockRepo.deviationRepo.On("GetForSubmitters", mock.Anything, uint(3), []uint{1}).
			Return([]models.DeadlineRuleDeviation{}, nil)
		mockRepo.submissionRepo.On("CountForSubmitters", mock.Anything, uint(3), []uint{1}).
			Return(map[uint]int{}, nil)
		mockRepo.submissionRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Submission) bool {
			return s.ExerciseID == 3 && s.Status == models.StatusInitialized
		}), []uint{1}).Return(nil)
		mockRepo.submissionRepo.On("GetByID", mock.Anything, mock.Anything).
			Return(&models.Submission{ExerciseID: 3, Status: models.StatusInitialized}, nil)

		publisher := events.NewMockEventPublisher(testLogger())
		service := newSubmissionServiceForTest(mockRepo, publisher)

		submission, err := service.Create(ctx, &CreateSubmissionRequest{
			ExerciseID:   3,
			SubmitterIDs: []uint{1},
		})
		assert.NoError(t, err)
		assert.NotNil(t, submission)

		published := publisher.GetPublishedEvents()
		assert.Len(t, published, 1)
		assert.Equal(t, events.SubmissionReceived, published[0].Type)
	})

	t.Run("closed exercise is denied with reasons", func(t *testing.T) {
		module := openModule()
		module.ClosingTime = time.Now().Add(-time.Hour)
		exercise := remoteExercise(module)

		mockRepo := newMockRepository()
		mockRepo.exerciseRepo.On("GetByID", mock.Anything, uint(3)).Return(exercise, nil)
		mockRepo.deviationRepo.On("GetForSubmitters", mock.Anything, uint(3), []uint{1}).
			Return([]models.DeadlineRuleDeviation{}, nil)
		mockRepo.submissionRepo.On("CountForSubmitters", mock.Anything, uint(3), []uint{1}).
			Return(map[uint]int{}, nil)

		service := newSubmissionServiceForTest(mockRepo, events.NewMockEventPublisher(testLogger()))

		_, err := service.Create(ctx, &CreateSubmissionRequest{
			ExerciseID:   3,
			SubmitterIDs: []uint{1},
		})
		assert.ErrorIs(t, err, ErrSubmissionNotAllowed)

		var denied *SubmissionDeniedError
		assert.True(t, errors.As(err, &denied))
		assert.Equal(t, []policy.ReasonCode{policy.ReasonNotOpen}, denied.Reasons)
	})

	t.Run("no submitters", func(t *testing.T) {
		service := newSubmissionServiceForTest(newMockRepository(), nil)

		_, err := service.Create(ctx, &CreateSubmissionRequest{ExerciseID: 3})
		assert.Error(t, err)
	})
}

func TestSubmissionService_Dispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("builds the grading request", func(t *testing.T) {
		submission := &models.Submission{
			ID:         42,
			ExerciseID: 3,
			Status:     models.StatusInitialized,
			Exercise:   *remoteExercise(openModule()),
		}

		mockRepo := newMockRepository()
		mockRepo.submissionRepo.On("GetByID", mock.Anything, uint(42)).Return(submission, nil)
		mockRepo.submissionRepo.On("Update", mock.Anything, submission).Return(nil)

		service := newSubmissionServiceForTest(mockRepo, nil)

		request, err := service.Dispatch(ctx, 42)
		assert.NoError(t, err)
		assert.Equal(t, models.StatusWaiting, submission.Status)
		assert.Equal(t, uint(42), request.SubmissionID)
		assert.Equal(t, "http://grader.example.com/ex3", request.ServiceURL)
		assert.Equal(t, "http://localhost:8080/api/v1/grading/submissions/42/result", request.SubmissionURL)
		assert.Equal(t, 100, request.MaxPoints)
	})

	t.Run("graded submissions cannot be re-dispatched", func(t *testing.T) {
		submission := &models.Submission{
			ID:     42,
			Status: models.StatusReady,
		}

		mockRepo := newMockRepository()
		mockRepo.submissionRepo.On("GetByID", mock.Anything, uint(42)).Return(submission, nil)

		service := newSubmissionServiceForTest(mockRepo, nil)

		_, err := service.Dispatch(ctx, 42)
		assert.ErrorIs(t, err, models.ErrSubmissionFinal)
	})
}

func TestSubmissionService_HandleGradingResult(t *testing.T) {
	ctx := context.Background()

	newWaitingSubmission := func(module models.CourseModule, submittedAt time.Time) *models.Submission {
		return &models.Submission{
			ID:             42,
			ExerciseID:     3,
			Status:         models.StatusWaiting,
			SubmissionTime: submittedAt,
			Exercise:       *remoteExercise(module),
			Submitters:     []models.User{{ID: 1}},
		}
	}

	t.Run("on-time result scales points and finalizes", func(t *testing.T) {
		submission := newWaitingSubmission(openModule(), time.Now().Add(-time.Hour))

		mockRepo := newMockRepository()
		mockRepo.submissionRepo.On("GetByID", mock.Anything, uint(42)).Return(submission, nil)
		mockRepo.deviationRepo.On("GetForSubmitters", mock.Anything, uint(3), []uint{1}).
			Return([]models.DeadlineRuleDeviation{}, nil)
		mockRepo.submissionRepo.On("Update", mock.Anything, submission).Return(nil)

		publisher := events.NewMockEventPublisher(testLogger())
		service := newSubmissionServiceForTest(mockRepo, publisher)

		result, err := service.HandleGradingResult(ctx, &GradingResultRequest{
			SubmissionID: 42,
			Points:       5,
			MaxPoints:    10,
			Feedback:     "half right",
			GradingData:  json.RawMessage(`{"tests": 5}`),
		})
		assert.NoError(t, err)
		assert.Equal(t, 50, result.Grade)
		assert.False(t, result.LatePenaltyApplied)
		assert.Equal(t, models.StatusReady, result.Status)
		assert.NotNil(t, result.GradingTime)
		assert.Equal(t, "half right", result.Feedback)

		published := publisher.GetPublishedEvents()
		assert.Len(t, published, 1)
		assert.Equal(t, events.SubmissionGraded, published[0].Type)
	})

	t.Run("late submission is penalized even when graded later", func(t *testing.T) {
		// Module closed a day ago; the submission itself was late, grading
		// arrives now.
		module := openModule()
		module.ClosingTime = time.Now().Add(-48 * time.Hour)
		module.LateSubmissionsAllowed = true
		deadline := time.Now().Add(24 * time.Hour)
		module.LateSubmissionDeadline = &deadline
		module.LateSubmissionPenalty = 0.5

		submission := newWaitingSubmission(module, time.Now().Add(-time.Hour))

		mockRepo := newMockRepository()
		mockRepo.submissionRepo.On("GetByID", mock.Anything, uint(42)).Return(submission, nil)
		mockRepo.deviationRepo.On("GetForSubmitters", mock.Anything, uint(3), []uint{1}).
			Return([]models.DeadlineRuleDeviation{}, nil)
		mockRepo.submissionRepo.On("Update", mock.Anything, submission).Return(nil)

		service := newSubmissionServiceForTest(mockRepo, nil)

		result, err := service.HandleGradingResult(ctx, &GradingResultRequest{
			SubmissionID: 42,
			Points:       10,
			MaxPoints:    10,
		})
		assert.NoError(t, err)
		assert.Equal(t, 50, result.Grade)
		assert.True(t, result.LatePenaltyApplied)
	})

	t.Run("errored verdict moves the submission to error", func(t *testing.T) {
		submission := newWaitingSubmission(openModule(), time.Now())

		mockRepo := newMockRepository()
		mockRepo.submissionRepo.On("GetByID", mock.Anything, uint(42)).Return(submission, nil)
		mockRepo.submissionRepo.On("Update", mock.Anything, submission).Return(nil)

		publisher := events.NewMockEventPublisher(testLogger())
		service := newSubmissionServiceForTest(mockRepo, publisher)

		result, err := service.HandleGradingResult(ctx, &GradingResultRequest{
			SubmissionID: 42,
			Errored:      true,
		})
		assert.NoError(t, err)
		assert.Equal(t, models.StatusError, result.Status)

		published := publisher.GetPublishedEvents()
		assert.Len(t, published, 1)
		assert.Equal(t, events.SubmissionErrored, published[0].Type)
	})

	t.Run("points above max are rejected", func(t *testing.T) {
		submission := newWaitingSubmission(openModule(), time.Now())

		mockRepo := newMockRepository()
		mockRepo.submissionRepo.On("GetByID", mock.Anything, uint(42)).Return(submission, nil)
		mockRepo.deviationRepo.On("GetForSubmitters", mock.Anything, uint(3), []uint{1}).
			Return([]models.DeadlineRuleDeviation{}, nil)

		service := newSubmissionServiceForTest(mockRepo, nil)

		_, err := service.HandleGradingResult(ctx, &GradingResultRequest{
			SubmissionID: 42,
			Points:       11,
			MaxPoints:    10,
		})
		assert.ErrorIs(t, err, models.ErrPointsExceedMax)
		assert.NotEqual(t, models.StatusReady, submission.Status)
	})
}
