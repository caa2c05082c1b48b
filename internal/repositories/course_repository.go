package repositories

import (
	"context"

	"github.com/opencourse/coursework-service/internal/models"
)

// CourseRepository covers course instances, their modules and categories.
type CourseRepository interface {
	// Course instances
	CreateInstance(ctx context.Context, instance *models.CourseInstance) error
	GetInstanceByID(ctx context.Context, id uint) (*models.CourseInstance, error)
	// GetInstanceWithTree loads the full grading tree: modules with their
	// exercises, categories with their hidden-to users.
	GetInstanceWithTree(ctx context.Context, id uint) (*models.CourseInstance, error)
	UpdateInstance(ctx context.Context, instance *models.CourseInstance) error

	// Modules
	CreateModule(ctx context.Context, module *models.CourseModule) error
	GetModuleByID(ctx context.Context, id uint) (*models.CourseModule, error)
	UpdateModule(ctx context.Context, module *models.CourseModule) error
	ListModules(ctx context.Context, instanceID uint) ([]*models.CourseModule, error)

	// Categories
	CreateCategory(ctx context.Context, category *models.LearningObjectCategory) error
	GetCategoryByID(ctx context.Context, id uint) (*models.LearningObjectCategory, error)
	ListCategories(ctx context.Context, instanceID uint) ([]*models.LearningObjectCategory, error)

	// Per-user visibility
	SetCategoryHidden(ctx context.Context, categoryID, userID uint, hidden bool) error
	IsCategoryHiddenTo(ctx context.Context, categoryID, userID uint) (bool, error)
	GetHiddenCategoryIDs(ctx context.Context, instanceID, userID uint) ([]uint, error)
}
