package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type ExerciseKind string

const (
	// KindStatic renders a fixed page and accepts submissions graded by the
	// static submission page content.
	KindStatic ExerciseKind = "static"
	// KindAttachment ships instructions plus an attachment and expects a
	// fixed list of files back from the student.
	KindAttachment ExerciseKind = "attachment"
	// KindRemote delegates both the exercise page and grading to an external
	// grading service.
	KindRemote ExerciseKind = "remote"
)

// Exercise is a gradable learning object. It belongs to exactly one course
// module and one category; the module decides when it is open.
type Exercise struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	CourseModuleID uint         `json:"course_module_id" gorm:"not null;index"`
	CategoryID     uint         `json:"category_id" gorm:"not null;index"`
	Kind           ExerciseKind `json:"kind" gorm:"not null;default:remote;index" validate:"omitempty,exercise_kind"`
	Name           string       `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`

	MaxPoints             int  `json:"max_points" gorm:"default:100" validate:"min=0"`
	PointsToPass          int  `json:"points_to_pass" gorm:"default:40" validate:"min=0"`
	MaxSubmissions        int  `json:"max_submissions" gorm:"default:10" validate:"min=0"` // 0 = unlimited
	AllowAssistantGrading bool `json:"allow_assistant_grading" gorm:"default:false"`

	// Remote exercises: URL of the external grading service.
	ServiceURL string `json:"service_url" gorm:"size:500"`

	// Static exercises.
	ExercisePageContent   string `json:"exercise_page_content" gorm:"type:text"`
	SubmissionPageContent string `json:"submission_page_content" gorm:"type:text"`

	// Attachment exercises. FilesToSubmit is a pipe-separated filename list,
	// Attachment an opaque storage path owned by the file collaborator.
	Instructions  string `json:"instructions" gorm:"type:text"`
	FilesToSubmit string `json:"files_to_submit" gorm:"size:1000"`
	Attachment    string `json:"attachment" gorm:"size:500"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	CourseModule CourseModule           `json:"course_module" gorm:"foreignKey:CourseModuleID"`
	Category     LearningObjectCategory `json:"category" gorm:"foreignKey:CategoryID"`
	Submissions  []Submission           `json:"-" gorm:"foreignKey:ExerciseID"`
}

func (Exercise) TableName() string {
	return "exercises"
}

// GetFilesToSubmit returns the ordered filename manifest for attachment
// exercises. Empty for other kinds.
func (e *Exercise) GetFilesToSubmit() []string {
	if e.FilesToSubmit == "" {
		return nil
	}
	parts := strings.Split(e.FilesToSubmit, "|")
	files := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			files = append(files, name)
		}
	}
	return files
}

// MaxSubmissionsForStudent returns the configured attempt limit; 0 denotes
// unlimited.
func (e *Exercise) MaxSubmissionsForStudent() int {
	return e.MaxSubmissions
}
