package services

import (
	"context"
	"time"

	"github.com/opencourse/coursework-service/internal/cache"
	"github.com/opencourse/coursework-service/internal/models"
	"github.com/opencourse/coursework-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// MockCourseRepository is a mock implementation of CourseRepository
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) CreateInstance(ctx context.Context, instance *models.CourseInstance) error {
	args := m.Called(ctx, instance)
	return args.Error(0)
}

func (m *MockCourseRepository) GetInstanceByID(ctx context.Context, id uint) (*models.CourseInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CourseInstance), args.Error(1)
}

func (m *MockCourseRepository) GetInstanceWithTree(ctx context.Context, id uint) (*models.CourseInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CourseInstance), args.Error(1)
}

func (m *MockCourseRepository) UpdateInstance(ctx context.Context, instance *models.CourseInstance) error {
	args := m.Called(ctx, instance)
	return args.Error(0)
}

func (m *MockCourseRepository) CreateModule(ctx context.Context, module *models.CourseModule) error {
	args := m.Called(ctx, module)
	return args.Error(0)
}

func (m *MockCourseRepository) GetModuleByID(ctx context.Context, id uint) (*models.CourseModule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CourseModule), args.Error(1)
}

func (m *MockCourseRepository) UpdateModule(ctx context.Context, module *models.CourseModule) error {
	args := m.Called(ctx, module)
	return args.Error(0)
}

func (m *MockCourseRepository) ListModules(ctx context.Context, instanceID uint) ([]*models.CourseModule, error) {
	args := m.Called(ctx, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CourseModule), args.Error(1)
}

func (m *MockCourseRepository) CreateCategory(ctx context.Context, category *models.LearningObjectCategory) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCourseRepository) GetCategoryByID(ctx context.Context, id uint) (*models.LearningObjectCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LearningObjectCategory), args.Error(1)
}

func (m *MockCourseRepository) ListCategories(ctx context.Context, instanceID uint) ([]*models.LearningObjectCategory, error) {
	args := m.Called(ctx, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LearningObjectCategory), args.Error(1)
}

func (m *MockCourseRepository) SetCategoryHidden(ctx context.Context, categoryID, userID uint, hidden bool) error {
	args := m.Called(ctx, categoryID, userID, hidden)
	return args.Error(0)
}

func (m *MockCourseRepository) IsCategoryHiddenTo(ctx context.Context, categoryID, userID uint) (bool, error) {
	args := m.Called(ctx, categoryID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCourseRepository) GetHiddenCategoryIDs(ctx context.Context, instanceID, userID uint) ([]uint, error) {
	args := m.Called(ctx, instanceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

// MockExerciseRepository is a mock implementation of ExerciseRepository
type MockExerciseRepository struct {
	mock.Mock
}

func (m *MockExerciseRepository) Create(ctx context.Context, exercise *models.Exercise) error {
	args := m.Called(ctx, exercise)
	return args.Error(0)
}

func (m *MockExerciseRepository) GetByID(ctx context.Context, id uint) (*models.Exercise, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Exercise), args.Error(1)
}

func (m *MockExerciseRepository) Update(ctx context.Context, exercise *models.Exercise) error {
	args := m.Called(ctx, exercise)
	return args.Error(0)
}

func (m *MockExerciseRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExerciseRepository) List(ctx context.Context, filters repositories.ExerciseFilters) ([]*models.Exercise, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Exercise), args.Get(1).(int64), args.Error(2)
}

func (m *MockExerciseRepository) ListByModule(ctx context.Context, moduleID uint) ([]*models.Exercise, error) {
	args := m.Called(ctx, moduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Exercise), args.Error(1)
}

func (m *MockExerciseRepository) ListByInstance(ctx context.Context, instanceID uint) ([]*models.Exercise, error) {
	args := m.Called(ctx, instanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Exercise), args.Error(1)
}

func (m *MockExerciseRepository) GetStats(ctx context.Context, exerciseID uint) (*repositories.ExerciseStats, error) {
	args := m.Called(ctx, exerciseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.ExerciseStats), args.Error(1)
}

// MockSubmissionRepository is a mock implementation of SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, submission *models.Submission, submitterIDs []uint) error {
	args := m.Called(ctx, submission, submitterIDs)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Submission), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubmissionRepository) ListForStudent(ctx context.Context, exerciseID, userID uint) ([]*models.Submission, error) {
	args := m.Called(ctx, exerciseID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) ListForStudentByInstance(ctx context.Context, instanceID, userID uint) ([]*models.Submission, error) {
	args := m.Called(ctx, instanceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) CountForSubmitters(ctx context.Context, exerciseID uint, submitterIDs []uint) (map[uint]int, error) {
	args := m.Called(ctx, exerciseID, submitterIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]int), args.Error(1)
}

func (m *MockSubmissionRepository) DistinctSubmitterCount(ctx context.Context, exerciseID uint) (int, error) {
	args := m.Called(ctx, exerciseID)
	return args.Int(0), args.Error(1)
}

func (m *MockSubmissionRepository) AddFiles(ctx context.Context, submissionID uint, files []*models.SubmittedFile) error {
	args := m.Called(ctx, submissionID, files)
	return args.Error(0)
}

// MockDeviationRepository is a mock implementation of DeviationRepository
type MockDeviationRepository struct {
	mock.Mock
}

func (m *MockDeviationRepository) Create(ctx context.Context, deviation *models.DeadlineRuleDeviation) error {
	args := m.Called(ctx, deviation)
	return args.Error(0)
}

func (m *MockDeviationRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDeviationRepository) ListByExercise(ctx context.Context, exerciseID uint) ([]models.DeadlineRuleDeviation, error) {
	args := m.Called(ctx, exerciseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DeadlineRuleDeviation), args.Error(1)
}

func (m *MockDeviationRepository) GetForSubmitters(ctx context.Context, exerciseID uint, submitterIDs []uint) ([]models.DeadlineRuleDeviation, error) {
	args := m.Called(ctx, exerciseID, submitterIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DeadlineRuleDeviation), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

// MockRepository bundles the entity mocks behind the aggregate interface
type MockRepository struct {
	courseRepo     *MockCourseRepository
	exerciseRepo   *MockExerciseRepository
	submissionRepo *MockSubmissionRepository
	deviationRepo  *MockDeviationRepository
	userRepo       *MockUserRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		courseRepo:     &MockCourseRepository{},
		exerciseRepo:   &MockExerciseRepository{},
		submissionRepo: &MockSubmissionRepository{},
		deviationRepo:  &MockDeviationRepository{},
		userRepo:       &MockUserRepository{},
	}
}

func (m *MockRepository) Course() repositories.CourseRepository         { return m.courseRepo }
func (m *MockRepository) Exercise() repositories.ExerciseRepository     { return m.exerciseRepo }
func (m *MockRepository) Submission() repositories.SubmissionRepository { return m.submissionRepo }
func (m *MockRepository) Deviation() repositories.DeviationRepository   { return m.deviationRepo }
func (m *MockRepository) User() repositories.UserRepository             { return m.userRepo }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }

// MockCacheService is an in-memory CacheService for testing
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) DeletePattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

var _ cache.CacheService = (*MockCacheService)(nil)
