package postgres

import (
	"context"

	"github.com/opencourse/coursework-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB

	course     repositories.CourseRepository
	exercise   repositories.ExerciseRepository
	submission repositories.SubmissionRepository
	deviation  repositories.DeviationRepository
	user       repositories.UserRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:         db,
		course:     NewCoursePostgreSQL(db),
		exercise:   NewExercisePostgreSQL(db),
		submission: NewSubmissionPostgreSQL(db),
		deviation:  NewDeviationPostgreSQL(db),
		user:       NewUserPostgreSQL(db),
	}
}

func (r *gormRepository) Course() repositories.CourseRepository         { return r.course }
func (r *gormRepository) Exercise() repositories.ExerciseRepository     { return r.exercise }
func (r *gormRepository) Submission() repositories.SubmissionRepository { return r.submission }
func (r *gormRepository) Deviation() repositories.DeviationRepository   { return r.deviation }
func (r *gormRepository) User() repositories.UserRepository             { return r.user }

// WithTransaction runs fn against a repository bound to a single database
// transaction; any error rolls everything back.
func (r *gormRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *gormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *gormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
