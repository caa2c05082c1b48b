package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/opencourse/coursework-service/internal/cache"
	"github.com/opencourse/coursework-service/internal/models"
	"github.com/opencourse/coursework-service/internal/repositories"
)

const summaryCacheTTL = 10 * time.Minute

// ===== SUMMARY TYPES =====

type ExerciseSummary struct {
	ExerciseID       uint   `json:"exercise_id"`
	Name             string `json:"name"`
	CategoryID       uint   `json:"category_id"`
	MaxPoints        int    `json:"max_points"`
	PointsToPass     int    `json:"points_to_pass"`
	Grade            int    `json:"grade"`
	SubmissionCount  int    `json:"submission_count"`
	BestSubmissionID *uint  `json:"best_submission_id,omitempty"`
	Passed           bool   `json:"passed"`
}

type ModuleSummary struct {
	ModuleID            uint              `json:"module_id"`
	Name                string            `json:"name"`
	ExerciseCount       int               `json:"exercise_count"`
	MaxPoints           int               `json:"max_points"`
	TotalPoints         int               `json:"total_points"`
	PointsToPass        int               `json:"points_to_pass"`
	CompletedPercentage int               `json:"completed_percentage"`
	RequiredPercentage  int               `json:"required_percentage"`
	Passed              bool              `json:"passed"`
	Exercises           []ExerciseSummary `json:"exercises"`
}

type CategorySummary struct {
	CategoryID          uint   `json:"category_id"`
	Name                string `json:"name"`
	ExerciseCount       int    `json:"exercise_count"`
	MaxPoints           int    `json:"max_points"`
	TotalPoints         int    `json:"total_points"`
	PointsToPass        int    `json:"points_to_pass"`
	CompletedPercentage int    `json:"completed_percentage"`
	RequiredPercentage  int    `json:"required_percentage"`
	Passed              bool   `json:"passed"`
}

// UserCourseSummary is one student's scoring rollup over a course instance.
// Exercises in categories hidden to the student are excluded at every level.
type UserCourseSummary struct {
	CourseInstanceID    uint              `json:"course_instance_id"`
	UserID              uint              `json:"user_id"`
	ExerciseCount       int               `json:"exercise_count"`
	MaxPoints           int               `json:"max_points"`
	TotalPoints         int               `json:"total_points"`
	CompletedPercentage int               `json:"completed_percentage"`
	Passed              bool              `json:"passed"`
	Modules             []ModuleSummary   `json:"modules"`
	Categories          []CategorySummary `json:"categories"`
	GeneratedAt         time.Time         `json:"generated_at"`
}

// ===== SERVICE =====

type summaryService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger *slog.Logger
}

func NewSummaryService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger) SummaryService {
	return &summaryService{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
	}
}

func summaryCacheKey(instanceID, userID uint) string {
	return fmt.Sprintf("summary:%d:%d", instanceID, userID)
}

func (s *summaryService) GetUserCourseSummary(ctx context.Context, instanceID, userID uint) (*UserCourseSummary, error) {
	if s.cache != nil {
		var cached UserCourseSummary
		err := s.cache.Get(ctx, summaryCacheKey(instanceID, userID), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Summary cache read failed",
				"instance_id", instanceID,
				"user_id", userID,
				"error", err)
		}
	}

	summary, err := s.buildSummary(ctx, instanceID, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, summaryCacheKey(instanceID, userID), summary, summaryCacheTTL); err != nil {
			s.logger.Warn("Summary cache write failed",
				"instance_id", instanceID,
				"user_id", userID,
				"error", err)
		}
	}
	return summary, nil
}

func (s *summaryService) InvalidateUserSummary(ctx context.Context, instanceID, userID uint) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, summaryCacheKey(instanceID, userID))
}

// ===== ROLLUP =====

func (s *summaryService) buildSummary(ctx context.Context, instanceID, userID uint) (*UserCourseSummary, error) {
	instance, err := s.repo.Course().GetInstanceWithTree(ctx, instanceID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseInstanceNotFound
		}
		return nil, fmt.Errorf("failed to load course tree: %w", err)
	}

	submissions, err := s.repo.Submission().ListForStudentByInstance(ctx, instanceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	byExercise := make(map[uint][]*models.Submission)
	for _, sub := range submissions {
		byExercise[sub.ExerciseID] = append(byExercise[sub.ExerciseID], sub)
	}

	summary := &UserCourseSummary{
		CourseInstanceID: instanceID,
		UserID:           userID,
		Passed:           true,
		GeneratedAt:      time.Now(),
	}
	categoryTotals := make(map[uint]*CategorySummary)
	for i := range instance.Categories {
		category := &instance.Categories[i]
		if category.IsHiddenTo(userID) {
			continue
		}
		categoryTotals[category.ID] = &CategorySummary{
			CategoryID:   category.ID,
			Name:         category.Name,
			PointsToPass: category.PointsToPass,
		}
	}

	for i := range instance.Modules {
		module := &instance.Modules[i]
		moduleSummary := ModuleSummary{
			ModuleID:     module.ID,
			Name:         module.Name,
			PointsToPass: module.PointsToPass,
			Passed:       true,
			Exercises:    []ExerciseSummary{},
		}

		for j := range module.Exercises {
			exercise := &module.Exercises[j]
			if exercise.Category.IsHiddenTo(userID) {
				continue
			}

			exerciseSummary := s.summarizeExercise(exercise, byExercise[exercise.ID])
			moduleSummary.Exercises = append(moduleSummary.Exercises, exerciseSummary)
			moduleSummary.ExerciseCount++
			moduleSummary.MaxPoints += exercise.MaxPoints
			moduleSummary.TotalPoints += exerciseSummary.Grade
			if !exerciseSummary.Passed {
				moduleSummary.Passed = false
			}

			if categorySummary, ok := categoryTotals[exercise.CategoryID]; ok {
				categorySummary.ExerciseCount++
				categorySummary.MaxPoints += exercise.MaxPoints
				categorySummary.TotalPoints += exerciseSummary.Grade
			}
		}

		if moduleSummary.TotalPoints < moduleSummary.PointsToPass {
			moduleSummary.Passed = false
		}
		moduleSummary.CompletedPercentage = completedPercentage(moduleSummary.TotalPoints, moduleSummary.MaxPoints)
		moduleSummary.RequiredPercentage = requiredPercentage(moduleSummary.PointsToPass, moduleSummary.MaxPoints)

		summary.Modules = append(summary.Modules, moduleSummary)
		summary.ExerciseCount += moduleSummary.ExerciseCount
		summary.MaxPoints += moduleSummary.MaxPoints
		summary.TotalPoints += moduleSummary.TotalPoints
		if !moduleSummary.Passed {
			summary.Passed = false
		}
	}

	for i := range instance.Categories {
		category := &instance.Categories[i]
		categorySummary, ok := categoryTotals[category.ID]
		if !ok {
			continue
		}
		categorySummary.Passed = categorySummary.TotalPoints >= categorySummary.PointsToPass
		categorySummary.CompletedPercentage = completedPercentage(categorySummary.TotalPoints, categorySummary.MaxPoints)
		categorySummary.RequiredPercentage = requiredPercentage(categorySummary.PointsToPass, categorySummary.MaxPoints)
		summary.Categories = append(summary.Categories, *categorySummary)
		if !categorySummary.Passed {
			summary.Passed = false
		}
	}

	summary.CompletedPercentage = completedPercentage(summary.TotalPoints, summary.MaxPoints)
	return summary, nil
}

func (s *summaryService) summarizeExercise(exercise *models.Exercise, submissions []*models.Submission) ExerciseSummary {
	exerciseSummary := ExerciseSummary{
		ExerciseID:      exercise.ID,
		Name:            exercise.Name,
		CategoryID:      exercise.CategoryID,
		MaxPoints:       exercise.MaxPoints,
		PointsToPass:    exercise.PointsToPass,
		SubmissionCount: len(submissions),
	}
	if best := BestSubmission(submissions); best != nil {
		exerciseSummary.Grade = best.Grade
		bestID := best.ID
		exerciseSummary.BestSubmissionID = &bestID
	}
	exerciseSummary.Passed = exerciseSummary.Grade >= exercise.PointsToPass
	return exerciseSummary
}

// completedPercentage rounds down so a course is never reported more
// complete than it is.
func completedPercentage(total, max int) int {
	if max <= 0 {
		return 0
	}
	return 100 * total / max
}

// requiredPercentage rounds up so the displayed requirement is never below
// the actual passing threshold.
func requiredPercentage(pointsToPass, max int) int {
	if max <= 0 {
		return 0
	}
	return (100*pointsToPass + max - 1) / max
}
