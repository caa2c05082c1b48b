package postgres

import (
	"context"

	"github.com/opencourse/coursework-service/internal/models"
	"github.com/opencourse/coursework-service/internal/repositories"
	"gorm.io/gorm"
)

type ExercisePostgreSQL struct {
	db *gorm.DB
}

func NewExercisePostgreSQL(db *gorm.DB) repositories.ExerciseRepository {
	return &ExercisePostgreSQL{db: db}
}

func (e ExercisePostgreSQL) Create(ctx context.Context, exercise *models.Exercise) error {
	return e.db.WithContext(ctx).Create(exercise).Error
}

func (e ExercisePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Exercise, error) {
	var exercise models.Exercise
	if err := e.db.WithContext(ctx).
		Preload("CourseModule").
		Preload("Category").
		Preload("Category.HiddenTo").
		First(&exercise, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &exercise, nil
}

func (e ExercisePostgreSQL) Update(ctx context.Context, exercise *models.Exercise) error {
	return e.db.WithContext(ctx).Save(exercise).Error
}

func (e ExercisePostgreSQL) Delete(ctx context.Context, id uint) error {
	return e.db.WithContext(ctx).Delete(&models.Exercise{}, id).Error
}

func (e ExercisePostgreSQL) List(ctx context.Context, filters repositories.ExerciseFilters) ([]*models.Exercise, int64, error) {
	var exercises []*models.Exercise
	var total int64

	query := e.db.WithContext(ctx).Model(&models.Exercise{})
	if filters.Kind != nil {
		query = query.Where("kind = ?", *filters.Kind)
	}
	if filters.ModuleID != nil {
		query = query.Where("course_module_id = ?", *filters.ModuleID)
	}
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Preload("CourseModule").Preload("Category").Order("id ASC").Find(&exercises).Error; err != nil {
		return nil, 0, err
	}
	return exercises, total, nil
}

func (e ExercisePostgreSQL) ListByModule(ctx context.Context, moduleID uint) ([]*models.Exercise, error) {
	var exercises []*models.Exercise
	if err := e.db.WithContext(ctx).
		Where("course_module_id = ?", moduleID).
		Preload("Category").
		Preload("Category.HiddenTo").
		Order("id ASC").
		Find(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

func (e ExercisePostgreSQL) ListByInstance(ctx context.Context, instanceID uint) ([]*models.Exercise, error) {
	var exercises []*models.Exercise
	if err := e.db.WithContext(ctx).
		Joins("JOIN course_modules ON course_modules.id = exercises.course_module_id").
		Where("course_modules.course_instance_id = ?", instanceID).
		Preload("CourseModule").
		Preload("Category").
		Preload("Category.HiddenTo").
		Order("exercises.id ASC").
		Find(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

func (e ExercisePostgreSQL) GetStats(ctx context.Context, exerciseID uint) (*repositories.ExerciseStats, error) {
	exercise, err := e.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	stats := &repositories.ExerciseStats{MaxPoints: exercise.MaxPoints}

	var total int64
	if err := e.db.WithContext(ctx).Model(&models.Submission{}).
		Where("exercise_id = ?", exerciseID).
		Count(&total).Error; err != nil {
		return nil, err
	}
	stats.TotalSubmissions = int(total)

	var graded int64
	if err := e.db.WithContext(ctx).Model(&models.Submission{}).
		Where("exercise_id = ? AND status = ?", exerciseID, models.StatusReady).
		Count(&graded).Error; err != nil {
		return nil, err
	}
	stats.GradedSubmissions = int(graded)

	var distinct int64
	if err := e.db.WithContext(ctx).
		Table("submission_submitters").
		Joins("JOIN submissions ON submissions.id = submission_submitters.submission_id").
		Where("submissions.exercise_id = ?", exerciseID).
		Distinct("submission_submitters.user_id").
		Count(&distinct).Error; err != nil {
		return nil, err
	}
	stats.DistinctSubmitters = int(distinct)

	if graded > 0 {
		var avg float64
		if err := e.db.WithContext(ctx).Model(&models.Submission{}).
			Where("exercise_id = ? AND status = ?", exerciseID, models.StatusReady).
			Select("AVG(grade)").
			Scan(&avg).Error; err != nil {
			return nil, err
		}
		stats.AverageGrade = avg
	}

	return stats, nil
}
