package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/opencourse/coursework-service/internal/models"
	"github.com/opencourse/coursework-service/internal/policy"
	"github.com/opencourse/coursework-service/internal/repositories"
)

// ===== REQUEST / RESPONSE TYPES =====

type CreateInstanceRequest struct {
	InstanceName string    `json:"instance_name" validate:"required,min=1,max=200"`
	URL          string    `json:"url" validate:"required,min=1,max=200"`
	StartingTime time.Time `json:"starting_time" validate:"required"`
	EndingTime   time.Time `json:"ending_time" validate:"required"`
}

type CreateModuleRequest struct {
	CourseInstanceID       uint       `json:"course_instance_id" validate:"required"`
	Name                   string     `json:"name" validate:"required,min=1,max=200"`
	URL                    string     `json:"url" validate:"required,min=1,max=200"`
	PointsToPass           int        `json:"points_to_pass" validate:"min=0"`
	OpeningTime            time.Time  `json:"opening_time" validate:"required"`
	ClosingTime            time.Time  `json:"closing_time" validate:"required"`
	LateSubmissionsAllowed bool       `json:"late_submissions_allowed"`
	LateSubmissionDeadline *time.Time `json:"late_submission_deadline"`
	LateSubmissionPenalty  float64    `json:"late_submission_penalty" validate:"min=0,max=1"`
}

type CreateCategoryRequest struct {
	CourseInstanceID uint   `json:"course_instance_id" validate:"required"`
	Name             string `json:"name" validate:"required,min=1,max=200"`
	PointsToPass     int    `json:"points_to_pass" validate:"min=0"`
}

type CreateExerciseRequest struct {
	CourseModuleID        uint                `json:"course_module_id" validate:"required"`
	CategoryID            uint                `json:"category_id" validate:"required"`
	Kind                  models.ExerciseKind `json:"kind" validate:"required,exercise_kind"`
	Name                  string              `json:"name" validate:"required,min=1,max=200"`
	MaxPoints             int                 `json:"max_points" validate:"min=0"`
	PointsToPass          int                 `json:"points_to_pass" validate:"min=0"`
	MaxSubmissions        int                 `json:"max_submissions" validate:"min=0"`
	AllowAssistantGrading bool                `json:"allow_assistant_grading"`
	ServiceURL            string              `json:"service_url" validate:"omitempty,max=500"`
	ExercisePageContent   string              `json:"exercise_page_content"`
	SubmissionPageContent string              `json:"submission_page_content"`
	Instructions          string              `json:"instructions"`
	FilesToSubmit         string              `json:"files_to_submit" validate:"omitempty,max=1000"`
}

type CreateSubmissionRequest struct {
	ExerciseID   uint     `json:"exercise_id" validate:"required"`
	SubmitterIDs []uint   `json:"submitter_ids" validate:"required,min=1"`
	FileNames    []string `json:"file_names"`
}

type CreateDeviationRequest struct {
	ExerciseID   uint `json:"exercise_id" validate:"required"`
	SubmitterID  uint `json:"submitter_id" validate:"required"`
	ExtraMinutes int  `json:"extra_minutes" validate:"min=0"`
}

// GradingRequest is the dispatch contract handed to the grading protocol
// layer, which performs the actual network call.
type GradingRequest struct {
	SubmissionID  uint   `json:"submission_id"`
	SubmissionURL string `json:"submission_url"`
	ServiceURL    string `json:"service_url"`
	MaxPoints     int    `json:"max_points"`
}

// GradingResultRequest is the grading service's callback payload. It may
// arrive from a different execution context with no bound on delay.
type GradingResultRequest struct {
	SubmissionID uint            `json:"submission_id" validate:"required"`
	Points       int             `json:"points" validate:"min=0"`
	MaxPoints    int             `json:"max_points" validate:"min=0"`
	Feedback     string          `json:"feedback"`
	GradingData  json.RawMessage `json:"grading_data"`
	// Errored marks a grading-service failure; the submission goes to the
	// error state and may be re-dispatched later.
	Errored bool `json:"errored"`
}

type SubmissionAllowedResponse struct {
	Allowed bool                `json:"allowed"`
	Reasons []policy.ReasonCode `json:"reasons,omitempty"`
}

// ===== SERVICE INTERFACES =====

type CourseService interface {
	CreateInstance(ctx context.Context, req *CreateInstanceRequest) (*models.CourseInstance, error)
	GetInstance(ctx context.Context, id uint) (*models.CourseInstance, error)
	CreateModule(ctx context.Context, req *CreateModuleRequest) (*models.CourseModule, error)
	GetModule(ctx context.Context, id uint) (*models.CourseModule, error)
	CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.LearningObjectCategory, error)
	GetCategory(ctx context.Context, id uint) (*models.LearningObjectCategory, error)
	SetCategoryHidden(ctx context.Context, categoryID, userID uint, hidden bool) error
	IsCategoryHiddenTo(ctx context.Context, categoryID, userID uint) (bool, error)
}

type ExerciseService interface {
	Create(ctx context.Context, req *CreateExerciseRequest) (*models.Exercise, error)
	GetByID(ctx context.Context, id uint) (*models.Exercise, error)
	List(ctx context.Context, filters repositories.ExerciseFilters) ([]*models.Exercise, int64, error)

	IsOpen(ctx context.Context, exerciseID uint, at time.Time) (bool, error)
	OneHasAccess(ctx context.Context, exerciseID uint, userIDs []uint, at time.Time) (bool, error)
	IsSubmissionAllowed(ctx context.Context, exerciseID uint, userIDs []uint, at time.Time) (*SubmissionAllowedResponse, error)

	OneHasSubmissions(ctx context.Context, exerciseID uint, userIDs []uint) (bool, error)
	SubmissionsForStudent(ctx context.Context, exerciseID, userID uint) ([]*models.Submission, error)
	BestSubmissionForStudent(ctx context.Context, exerciseID, userID uint) (*models.Submission, error)
	TotalSubmitterCount(ctx context.Context, exerciseID uint) (int, error)
	FilesToSubmit(ctx context.Context, exerciseID uint) ([]string, error)
	GetStats(ctx context.Context, exerciseID uint) (*repositories.ExerciseStats, error)
}

type SubmissionService interface {
	// Create records a new submission after the access policy allows it.
	Create(ctx context.Context, req *CreateSubmissionRequest) (*models.Submission, error)
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	ListForStudent(ctx context.Context, exerciseID, userID uint) ([]*models.Submission, error)

	// Dispatch marks the submission waiting and builds the grading request
	// for the protocol layer.
	Dispatch(ctx context.Context, submissionID uint) (*GradingRequest, error)
	BuildGradingRequest(ctx context.Context, submissionID uint) (*GradingRequest, error)
	// HandleGradingResult is the grading callback: it records points with
	// the late policy resolved at submission time, then finalizes the state.
	HandleGradingResult(ctx context.Context, req *GradingResultRequest) (*models.Submission, error)
	MarkError(ctx context.Context, submissionID uint) error
}

type SummaryService interface {
	GetUserCourseSummary(ctx context.Context, instanceID, userID uint) (*UserCourseSummary, error)
	InvalidateUserSummary(ctx context.Context, instanceID, userID uint) error
}

type DeviationService interface {
	Create(ctx context.Context, req *CreateDeviationRequest) (*models.DeadlineRuleDeviation, error)
	Delete(ctx context.Context, id uint) error
	ListByExercise(ctx context.Context, exerciseID uint) ([]models.DeadlineRuleDeviation, error)
}

type ExportService interface {
	// ExportUserResults renders one student's course summary as an XLSX
	// workbook for staff download.
	ExportUserResults(ctx context.Context, instanceID, userID uint) ([]byte, error)
}

// ServiceManager bundles all services the handlers consume.
type ServiceManager interface {
	Course() CourseService
	Exercise() ExerciseService
	Submission() SubmissionService
	Summary() SummaryService
	Deviation() DeviationService
	Export() ExportService
}
