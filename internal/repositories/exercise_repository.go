package repositories

import (
	"context"

	"github.com/opencourse/coursework-service/internal/models"
)

// ExerciseRepository handles learning objects of every kind.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *models.Exercise) error
	// GetByID loads the exercise with its course module and category
	// (including the category's hidden-to users).
	GetByID(ctx context.Context, id uint) (*models.Exercise, error)
	Update(ctx context.Context, exercise *models.Exercise) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters ExerciseFilters) ([]*models.Exercise, int64, error)
	ListByModule(ctx context.Context, moduleID uint) ([]*models.Exercise, error)
	ListByInstance(ctx context.Context, instanceID uint) ([]*models.Exercise, error)

	GetStats(ctx context.Context, exerciseID uint) (*ExerciseStats, error)
}

// DeviationRepository resolves per-student deadline extensions. Lookups are
// keyed by (exercise, submitter) and performed once per access decision.
type DeviationRepository interface {
	Create(ctx context.Context, deviation *models.DeadlineRuleDeviation) error
	Delete(ctx context.Context, id uint) error
	ListByExercise(ctx context.Context, exerciseID uint) ([]models.DeadlineRuleDeviation, error)
	// GetForSubmitters returns the deviations on one exercise granted to any
	// of the given users.
	GetForSubmitters(ctx context.Context, exerciseID uint, submitterIDs []uint) ([]models.DeadlineRuleDeviation, error)
}
