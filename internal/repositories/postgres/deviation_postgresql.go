package postgres

import (
	"context"

	"github.com/opencourse/coursework-service/internal/models"
	"github.com/opencourse/coursework-service/internal/repositories"
	"gorm.io/gorm"
)

type DeviationPostgreSQL struct {
	db *gorm.DB
}

func NewDeviationPostgreSQL(db *gorm.DB) repositories.DeviationRepository {
	return &DeviationPostgreSQL{db: db}
}

func (d DeviationPostgreSQL) Create(ctx context.Context, deviation *models.DeadlineRuleDeviation) error {
	return d.db.WithContext(ctx).Create(deviation).Error
}

func (d DeviationPostgreSQL) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Delete(&models.DeadlineRuleDeviation{}, id).Error
}

func (d DeviationPostgreSQL) ListByExercise(ctx context.Context, exerciseID uint) ([]models.DeadlineRuleDeviation, error) {
	var deviations []models.DeadlineRuleDeviation
	if err := d.db.WithContext(ctx).
		Where("exercise_id = ?", exerciseID).
		Find(&deviations).Error; err != nil {
		return nil, err
	}
	return deviations, nil
}

func (d DeviationPostgreSQL) GetForSubmitters(ctx context.Context, exerciseID uint, submitterIDs []uint) ([]models.DeadlineRuleDeviation, error) {
	if len(submitterIDs) == 0 {
		return nil, nil
	}
	var deviations []models.DeadlineRuleDeviation
	if err := d.db.WithContext(ctx).
		Where("exercise_id = ? AND submitter_id IN ?", exerciseID, submitterIDs).
		Find(&deviations).Error; err != nil {
		return nil, err
	}
	return deviations, nil
}
