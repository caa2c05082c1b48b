package repositories

import (
	"context"

	"github.com/opencourse/coursework-service/internal/models"
)

// SubmissionRepository persists submissions and their submitter associations.
type SubmissionRepository interface {
	// Create stores the submission and its submitter links in one step.
	Create(ctx context.Context, submission *models.Submission, submitterIDs []uint) error
	// GetByID loads the submission with its exercise (and the exercise's
	// module and category) plus submitters.
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	Update(ctx context.Context, submission *models.Submission) error

	List(ctx context.Context, filters SubmissionFilters) ([]*models.Submission, int64, error)
	// ListForStudent returns the user's submissions for one exercise, most
	// recent first.
	ListForStudent(ctx context.Context, exerciseID, userID uint) ([]*models.Submission, error)
	// ListForStudentByInstance returns all of the user's submissions across
	// one course instance, for rollup computation.
	ListForStudentByInstance(ctx context.Context, instanceID, userID uint) ([]*models.Submission, error)

	// CountForSubmitters maps each given user id to the number of
	// submissions that user has for the exercise.
	CountForSubmitters(ctx context.Context, exerciseID uint, submitterIDs []uint) (map[uint]int, error)
	DistinctSubmitterCount(ctx context.Context, exerciseID uint) (int, error)

	AddFiles(ctx context.Context, submissionID uint, files []*models.SubmittedFile) error
}

// UserRepository is the minimal user lookup the grading core needs.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.User, error)
}
