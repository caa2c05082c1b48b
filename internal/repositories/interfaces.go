package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/opencourse/coursework-service/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned by every repository when a record does not exist.
var ErrNotFound = errors.New("record not found")

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type SubmissionFilters struct {
	Status      *models.SubmissionStatus `json:"status"`
	ExerciseID  *uint                    `json:"exercise_id"`
	SubmitterID *uint                    `json:"submitter_id"`
	DateFrom    *time.Time               `json:"date_from"`
	DateTo      *time.Time               `json:"date_to"`
	Limit       int                      `json:"limit"`
	Offset      int                      `json:"offset"`
	SortBy      string                   `json:"sort_by"`    // "submission_time", "grade"
	SortOrder   string                   `json:"sort_order"` // "asc", "desc"
}

type ExerciseFilters struct {
	Kind       *models.ExerciseKind `json:"kind"`
	ModuleID   *uint                `json:"module_id"`
	CategoryID *uint                `json:"category_id"`
	Limit      int                  `json:"limit"`
	Offset     int                  `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type ExerciseStats struct {
	TotalSubmissions   int     `json:"total_submissions"`
	DistinctSubmitters int     `json:"distinct_submitters"`
	GradedSubmissions  int     `json:"graded_submissions"`
	AverageGrade       float64 `json:"average_grade"`
	MaxPoints          int     `json:"max_points"`
}

// ===== AGGREGATE REPOSITORY =====

// Repository bundles all entity repositories behind one handle so services
// can run several operations inside a single transaction.
type Repository interface {
	Course() CourseRepository
	Exercise() ExerciseRepository
	Submission() SubmissionRepository
	Deviation() DeviationRepository
	User() UserRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}
