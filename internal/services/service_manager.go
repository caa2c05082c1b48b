package services

import (
	"log/slog"

	"github.com/opencourse/coursework-service/internal/cache"
	"github.com/opencourse/coursework-service/internal/events"
	"github.com/opencourse/coursework-service/internal/repositories"
	"github.com/opencourse/coursework-service/internal/validator"
)

type serviceManager struct {
	course     CourseService
	exercise   ExerciseService
	submission SubmissionService
	summary    SummaryService
	deviation  DeviationService
	export     ExportService
}

// ManagerConfig carries everything the service layer needs from main.
type ManagerConfig struct {
	Repo      repositories.Repository
	Cache     cache.CacheService
	Publisher events.EventPublisher
	Logger    *slog.Logger
	Validator *validator.Validator
	BaseURL   string
}

func NewServiceManager(cfg ManagerConfig) ServiceManager {
	courseService := NewCourseService(cfg.Repo, cfg.Logger, cfg.Validator)
	exerciseService := NewExerciseService(cfg.Repo, cfg.Logger, cfg.Validator)
	summaryService := NewSummaryService(cfg.Repo, cfg.Cache, cfg.Logger)
	submissionService := NewSubmissionService(
		cfg.Repo, exerciseService, summaryService, cfg.Publisher,
		cfg.Logger, cfg.Validator, cfg.BaseURL)
	deviationService := NewDeviationService(cfg.Repo, cfg.Logger, cfg.Validator)
	exportService := NewExportService(summaryService, cfg.Logger)

	return &serviceManager{
		course:     courseService,
		exercise:   exerciseService,
		submission: submissionService,
		summary:    summaryService,
		deviation:  deviationService,
		export:     exportService,
	}
}

func (m *serviceManager) Course() CourseService         { return m.course }
func (m *serviceManager) Exercise() ExerciseService     { return m.exercise }
func (m *serviceManager) Submission() SubmissionService { return m.submission }
func (m *serviceManager) Summary() SummaryService       { return m.summary }
func (m *serviceManager) Deviation() DeviationService   { return m.deviation }
func (m *serviceManager) Export() ExportService         { return m.export }
