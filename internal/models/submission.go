package models

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type SubmissionStatus string

const (
	// StatusInitialized is the state at creation, before grading dispatch.
	StatusInitialized SubmissionStatus = "initialized"
	// StatusWaiting means the submission has been sent to a grading service.
	StatusWaiting SubmissionStatus = "waiting"
	// StatusReady is terminal: the submission has been graded.
	StatusReady SubmissionStatus = "ready"
	// StatusError means the grading service failed; dispatch may be retried.
	StatusError SubmissionStatus = "error"
)

var (
	// ErrPointsExceedMax signals a programming error in the grading caller:
	// awarded points may never exceed the reported maximum.
	ErrPointsExceedMax = errors.New("points must not exceed max points")
	// ErrSubmissionFinal rejects status transitions out of the ready state.
	ErrSubmissionFinal = errors.New("submission is already graded")
)

// Submission is one attempt by one or more submitters at an exercise.
//
// SubmissionTime is set at creation and immutable; GradingTime is stamped
// once, on the first transition to ready. Grade and LatePenaltyApplied are
// written by SetPoints; a repeated SetPoints overwrites both, there is no
// lock against double-scoring.
type Submission struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	ExerciseID uint `json:"exercise_id" gorm:"not null;index"`

	Status         SubmissionStatus `json:"status" gorm:"default:initialized;index" validate:"omitempty,submission_status"`
	SubmissionTime time.Time        `json:"submission_time" gorm:"not null"`
	GradingTime    *time.Time       `json:"grading_time"`

	Grade              int            `json:"grade" gorm:"default:0"`
	LatePenaltyApplied bool           `json:"late_penalty_applied" gorm:"default:false"`
	GradingData        datatypes.JSON `json:"grading_data" gorm:"type:jsonb"`
	Feedback           string         `json:"feedback" gorm:"type:text"`
	GraderID           *uint          `json:"grader_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Exercise   Exercise        `json:"-" gorm:"foreignKey:ExerciseID"`
	Submitters []User          `json:"submitters" gorm:"many2many:submission_submitters"`
	Files      []SubmittedFile `json:"files" gorm:"foreignKey:SubmissionID"`
}

func (Submission) TableName() string {
	return "submissions"
}

// SubmittedFile references one uploaded file of a submission. Content is
// owned by the storage collaborator; Path is the deterministic key it uses.
type SubmittedFile struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	SubmissionID uint   `json:"submission_id" gorm:"not null;index"`
	ParamName    string `json:"param_name" gorm:"not null;size:200"`
	FileName     string `json:"file_name" gorm:"not null;size:500"`
	Path         string `json:"path" gorm:"size:1000"`

	CreatedAt time.Time `json:"created_at"`
}

func (SubmittedFile) TableName() string {
	return "submitted_files"
}

func (s *Submission) IsGraded() bool {
	return s.Status == StatusReady
}

// SetWaiting marks the submission as dispatched to a grading service.
func (s *Submission) SetWaiting() error {
	if s.Status == StatusReady {
		return ErrSubmissionFinal
	}
	s.Status = StatusWaiting
	return nil
}

// SetError records a grading-service failure. A later dispatch may call
// SetWaiting again.
func (s *Submission) SetError() error {
	if s.Status == StatusReady {
		return ErrSubmissionFinal
	}
	s.Status = StatusError
	return nil
}

// SetReady finalizes the submission and stamps the grading time if this is
// the first transition to ready.
func (s *Submission) SetReady() {
	if s.GradingTime == nil {
		now := time.Now()
		s.GradingTime = &now
	}
	s.Status = StatusReady
}

// SetPoints records the points awarded by a grader as a fraction of
// maxPoints, scaled to the exercise's own maximum. When the late penalty
// applied at submission time, the scaled grade is reduced by the module's
// penalty fraction and floored.
//
// The caller resolves penalty applicability against SubmissionTime (the
// penalty reflects lateness of submitting, not of grading) and invokes
// SetReady or SetError separately.
func (s *Submission) SetPoints(points, maxPoints int, latePenaltyApplied bool, penalty float64) error {
	if points > maxPoints {
		return fmt.Errorf("%w: %d > %d", ErrPointsExceedMax, points, maxPoints)
	}

	grade := 0
	if maxPoints > 0 {
		grade = int(math.Round(float64(points) / float64(maxPoints) * float64(s.Exercise.MaxPoints)))
	}
	if latePenaltyApplied {
		grade = int(math.Floor(float64(grade) * (1.0 - penalty)))
	}

	s.Grade = grade
	s.LatePenaltyApplied = latePenaltyApplied
	return nil
}

// SubmitterIDs returns the ids of the loaded submitters in ascending order.
func (s *Submission) SubmitterIDs() []uint {
	ids := make([]uint, 0, len(s.Submitters))
	for _, u := range s.Submitters {
		ids = append(ids, u.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// BuildUploadDir computes the deterministic storage prefix for a submitted
// file, e.g. "submissions/course_instance_1/exercise_3/users_1-4/submission_2/a.txt".
func (s *Submission) BuildUploadDir(courseInstanceID uint, fileName string) string {
	ids := s.SubmitterIDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return fmt.Sprintf("submissions/course_instance_%d/exercise_%d/users_%s/submission_%d/%s",
		courseInstanceID, s.ExerciseID, strings.Join(parts, "-"), s.ID, fileName)
}

// BuildAttachmentUploadDir computes the storage prefix for an exercise
// attachment.
func BuildAttachmentUploadDir(courseInstanceID, exerciseID uint, fileName string) string {
	return fmt.Sprintf("exercise_attachments/course_instance_%d/exercise_%d/%s",
		courseInstanceID, exerciseID, fileName)
}
