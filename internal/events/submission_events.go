package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/opencourse/coursework-service/internal/models"
)

// EventType represents different types of submission lifecycle events
type EventType string

const (
	SubmissionReceived EventType = "submission.received"
	SubmissionWaiting  EventType = "submission.waiting"
	SubmissionGraded   EventType = "submission.graded"
	SubmissionErrored  EventType = "submission.errored"
)

// SubmissionEvent is published on every submission lifecycle transition so
// downstream consumers (notifications, analytics) can react without polling.
type SubmissionEvent struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	Source       string    `json:"source"`
	Version      string    `json:"version"`
	SubmissionID uint      `json:"submission_id"`
	ExerciseID   uint      `json:"exercise_id"`
	SubmitterIDs []uint    `json:"submitter_ids"`
	Status       string    `json:"status"`
	Grade        int       `json:"grade"`
	LatePenalty  bool      `json:"late_penalty_applied"`
}

func NewSubmissionEvent(eventType EventType, submission *models.Submission, submitterIDs []uint) *SubmissionEvent {
	return &SubmissionEvent{
		ID:           uuid.NewString(),
		Type:         eventType,
		Timestamp:    time.Now(),
		Source:       "coursework-service",
		Version:      "1.0",
		SubmissionID: submission.ID,
		ExerciseID:   submission.ExerciseID,
		SubmitterIDs: submitterIDs,
		Status:       string(submission.Status),
		Grade:        submission.Grade,
		LatePenalty:  submission.LatePenaltyApplied,
	}
}
