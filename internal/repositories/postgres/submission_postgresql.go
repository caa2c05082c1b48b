package postgres

import (
	"context"

	"github.com/opencourse/coursework-service/internal/models"
	"github.com/opencourse/coursework-service/internal/repositories"
	"gorm.io/gorm"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (s SubmissionPostgreSQL) Create(ctx context.Context, submission *models.Submission, submitterIDs []uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(submission).Error; err != nil {
			return err
		}
		submitters := make([]models.User, len(submitterIDs))
		for i, id := range submitterIDs {
			submitters[i] = models.User{ID: id}
		}
		return tx.Model(submission).Association("Submitters").Append(&submitters)
	})
}

func (s SubmissionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).
		Preload("Exercise").
		Preload("Exercise.CourseModule").
		Preload("Exercise.Category").
		Preload("Submitters").
		Preload("Files").
		First(&submission, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &submission, nil
}

func (s SubmissionPostgreSQL) Update(ctx context.Context, submission *models.Submission) error {
	return s.db.WithContext(ctx).Save(submission).Error
}

func (s SubmissionPostgreSQL) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	var submissions []*models.Submission
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Submission{})
	query = s.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.applyPaginationAndSort(query, filters)
	if err := query.Preload("Submitters").Preload("Exercise").Find(&submissions).Error; err != nil {
		return nil, 0, err
	}
	return submissions, total, nil
}

func (s SubmissionPostgreSQL) ListForStudent(ctx context.Context, exerciseID, userID uint) ([]*models.Submission, error) {
	var submissions []*models.Submission
	if err := s.db.WithContext(ctx).
		Joins("JOIN submission_submitters ON submission_submitters.submission_id = submissions.id").
		Where("submissions.exercise_id = ? AND submission_submitters.user_id = ?", exerciseID, userID).
		Preload("Submitters").
		Order("submissions.submission_time DESC, submissions.id DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (s SubmissionPostgreSQL) ListForStudentByInstance(ctx context.Context, instanceID, userID uint) ([]*models.Submission, error) {
	var submissions []*models.Submission
	if err := s.db.WithContext(ctx).
		Joins("JOIN submission_submitters ON submission_submitters.submission_id = submissions.id").
		Joins("JOIN exercises ON exercises.id = submissions.exercise_id").
		Joins("JOIN course_modules ON course_modules.id = exercises.course_module_id").
		Where("course_modules.course_instance_id = ? AND submission_submitters.user_id = ?", instanceID, userID).
		Order("submissions.submission_time ASC, submissions.id ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (s SubmissionPostgreSQL) CountForSubmitters(ctx context.Context, exerciseID uint, submitterIDs []uint) (map[uint]int, error) {
	type row struct {
		UserID uint
		Count  int
	}
	var rows []row
	if err := s.db.WithContext(ctx).
		Table("submission_submitters").
		Joins("JOIN submissions ON submissions.id = submission_submitters.submission_id").
		Where("submissions.exercise_id = ? AND submission_submitters.user_id IN ?", exerciseID, submitterIDs).
		Select("submission_submitters.user_id AS user_id, COUNT(*) AS count").
		Group("submission_submitters.user_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[uint]int, len(rows))
	for _, r := range rows {
		counts[r.UserID] = r.Count
	}
	return counts, nil
}

func (s SubmissionPostgreSQL) DistinctSubmitterCount(ctx context.Context, exerciseID uint) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Table("submission_submitters").
		Joins("JOIN submissions ON submissions.id = submission_submitters.submission_id").
		Where("submissions.exercise_id = ?", exerciseID).
		Distinct("submission_submitters.user_id").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (s SubmissionPostgreSQL) AddFiles(ctx context.Context, submissionID uint, files []*models.SubmittedFile) error {
	for _, f := range files {
		f.SubmissionID = submissionID
	}
	return s.db.WithContext(ctx).Create(&files).Error
}

func (s SubmissionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.SubmissionFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("submissions.status = ?", *filters.Status)
	}
	if filters.ExerciseID != nil {
		query = query.Where("submissions.exercise_id = ?", *filters.ExerciseID)
	}
	if filters.SubmitterID != nil {
		query = query.
			Joins("JOIN submission_submitters ON submission_submitters.submission_id = submissions.id").
			Where("submission_submitters.user_id = ?", *filters.SubmitterID)
	}
	if filters.DateFrom != nil {
		query = query.Where("submissions.submission_time >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submissions.submission_time <= ?", *filters.DateTo)
	}
	return query
}

func (s SubmissionPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.SubmissionFilters) *gorm.DB {
	sortBy := "submission_time"
	if filters.SortBy == "grade" {
		sortBy = "grade"
	}
	order := "DESC"
	if filters.SortOrder == "asc" {
		order = "ASC"
	}
	query = query.Order("submissions." + sortBy + " " + order)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
