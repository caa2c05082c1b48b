package postgres

import (
	"context"
	"errors"

	"github.com/opencourse/coursework-service/internal/models"
	"github.com/opencourse/coursework-service/internal/repositories"
	"gorm.io/gorm"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

// ===== COURSE INSTANCES =====

func (c CoursePostgreSQL) CreateInstance(ctx context.Context, instance *models.CourseInstance) error {
	return c.db.WithContext(ctx).Create(instance).Error
}

func (c CoursePostgreSQL) GetInstanceByID(ctx context.Context, id uint) (*models.CourseInstance, error) {
	var instance models.CourseInstance
	if err := c.db.WithContext(ctx).First(&instance, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &instance, nil
}

func (c CoursePostgreSQL) GetInstanceWithTree(ctx context.Context, id uint) (*models.CourseInstance, error) {
	var instance models.CourseInstance
	if err := c.db.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("course_modules.opening_time ASC, course_modules.id ASC")
		}).
		Preload("Modules.Exercises").
		Preload("Modules.Exercises.Category").
		Preload("Modules.Exercises.Category.HiddenTo").
		Preload("Categories").
		Preload("Categories.HiddenTo").
		First(&instance, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &instance, nil
}

func (c CoursePostgreSQL) UpdateInstance(ctx context.Context, instance *models.CourseInstance) error {
	return c.db.WithContext(ctx).Save(instance).Error
}

// ===== MODULES =====

func (c CoursePostgreSQL) CreateModule(ctx context.Context, module *models.CourseModule) error {
	return c.db.WithContext(ctx).Create(module).Error
}

func (c CoursePostgreSQL) GetModuleByID(ctx context.Context, id uint) (*models.CourseModule, error) {
	var module models.CourseModule
	if err := c.db.WithContext(ctx).First(&module, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &module, nil
}

func (c CoursePostgreSQL) UpdateModule(ctx context.Context, module *models.CourseModule) error {
	return c.db.WithContext(ctx).Save(module).Error
}

func (c CoursePostgreSQL) ListModules(ctx context.Context, instanceID uint) ([]*models.CourseModule, error) {
	var modules []*models.CourseModule
	if err := c.db.WithContext(ctx).
		Where("course_instance_id = ?", instanceID).
		Order("opening_time ASC, id ASC").
		Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

// ===== CATEGORIES =====

func (c CoursePostgreSQL) CreateCategory(ctx context.Context, category *models.LearningObjectCategory) error {
	return c.db.WithContext(ctx).Create(category).Error
}

func (c CoursePostgreSQL) GetCategoryByID(ctx context.Context, id uint) (*models.LearningObjectCategory, error) {
	var category models.LearningObjectCategory
	if err := c.db.WithContext(ctx).Preload("HiddenTo").First(&category, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &category, nil
}

func (c CoursePostgreSQL) ListCategories(ctx context.Context, instanceID uint) ([]*models.LearningObjectCategory, error) {
	var categories []*models.LearningObjectCategory
	if err := c.db.WithContext(ctx).
		Where("course_instance_id = ?", instanceID).
		Preload("HiddenTo").
		Order("id ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ===== PER-USER VISIBILITY =====

func (c CoursePostgreSQL) SetCategoryHidden(ctx context.Context, categoryID, userID uint, hidden bool) error {
	category := models.LearningObjectCategory{ID: categoryID}
	user := models.User{ID: userID}
	assoc := c.db.WithContext(ctx).Model(&category).Association("HiddenTo")
	if hidden {
		return assoc.Append(&user)
	}
	return assoc.Delete(&user)
}

func (c CoursePostgreSQL) IsCategoryHiddenTo(ctx context.Context, categoryID, userID uint) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).
		Table("category_hidden_users").
		Where("learning_object_category_id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (c CoursePostgreSQL) GetHiddenCategoryIDs(ctx context.Context, instanceID, userID uint) ([]uint, error) {
	var ids []uint
	if err := c.db.WithContext(ctx).
		Table("category_hidden_users").
		Joins("JOIN learning_object_categories ON learning_object_categories.id = category_hidden_users.learning_object_category_id").
		Where("learning_object_categories.course_instance_id = ? AND category_hidden_users.user_id = ?", instanceID, userID).
		Pluck("category_hidden_users.learning_object_category_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return err
}
