package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubmission_SetPoints(t *testing.T) {
	tests := []struct {
		name          string
		exerciseMax   int
		points        int
		maxPoints     int
		lateApplied   bool
		penalty       float64
		expectedGrade int
		expectError   bool
	}{
		{
			name:          "points scale to the exercise maximum",
			exerciseMax:   100,
			points:        5,
			maxPoints:     10,
			expectedGrade: 50,
		},
		{
			name:          "full points",
			exerciseMax:   100,
			points:        10,
			maxPoints:     10,
			expectedGrade: 100,
		},
		{
			name:          "scaled grade rounds to nearest",
			exerciseMax:   100,
			points:        1,
			maxPoints:     3,
			expectedGrade: 33,
		},
		{
			name:          "late penalty floors the reduced grade",
			exerciseMax:   100,
			points:        10,
			maxPoints:     10,
			lateApplied:   true,
			penalty:       0.2,
			expectedGrade: 80,
		},
		{
			name:          "scaling and penalty combine",
			exerciseMax:   100,
			points:        5,
			maxPoints:     10,
			lateApplied:   true,
			penalty:       0.5,
			expectedGrade: 25,
		},
		{
			name:          "zero max points yields zero grade",
			exerciseMax:   100,
			points:        0,
			maxPoints:     0,
			expectedGrade: 0,
		},
		{
			name:        "points above max are rejected",
			exerciseMax: 100,
			points:      11,
			maxPoints:   10,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submission := &Submission{
				Exercise: Exercise{MaxPoints: tt.exerciseMax},
			}

			err := submission.SetPoints(tt.points, tt.maxPoints, tt.lateApplied, tt.penalty)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrPointsExceedMax)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedGrade, submission.Grade)
			assert.Equal(t, tt.lateApplied, submission.LatePenaltyApplied)
		})
	}
}

func TestSubmission_StatusTransitions(t *testing.T) {
	t.Run("waiting and error alternate freely", func(t *testing.T) {
		submission := &Submission{Status: StatusInitialized}

		assert.NoError(t, submission.SetWaiting())
		assert.Equal(t, StatusWaiting, submission.Status)

		assert.NoError(t, submission.SetError())
		assert.Equal(t, StatusError, submission.Status)

		assert.NoError(t, submission.SetWaiting())
		assert.Equal(t, StatusWaiting, submission.Status)
	})

	t.Run("ready is terminal", func(t *testing.T) {
		submission := &Submission{Status: StatusWaiting}
		submission.SetReady()
		assert.Equal(t, StatusReady, submission.Status)
		assert.True(t, submission.IsGraded())

		assert.ErrorIs(t, submission.SetWaiting(), ErrSubmissionFinal)
		assert.ErrorIs(t, submission.SetError(), ErrSubmissionFinal)
		assert.Equal(t, StatusReady, submission.Status)
	})

	t.Run("grading time is stamped once", func(t *testing.T) {
		submission := &Submission{Status: StatusWaiting}
		submission.SetReady()

		first := submission.GradingTime
		assert.NotNil(t, first)

		submission.SetReady()
		assert.Equal(t, first, submission.GradingTime)
	})

	t.Run("explicit grading time is preserved", func(t *testing.T) {
		stamp := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
		submission := &Submission{Status: StatusWaiting, GradingTime: &stamp}
		submission.SetReady()
		assert.Equal(t, stamp, *submission.GradingTime)
	})
}

func TestSubmission_SubmitterIDs(t *testing.T) {
	submission := &Submission{
		Submitters: []User{{ID: 4}, {ID: 1}, {ID: 3}},
	}
	assert.Equal(t, []uint{1, 3, 4}, submission.SubmitterIDs())
}

func TestSubmission_BuildUploadDir(t *testing.T) {
	submission := &Submission{
		ID:         2,
		ExerciseID: 3,
		Submitters: []User{{ID: 4}, {ID: 1}},
	}
	assert.Equal(t,
		"submissions/course_instance_1/exercise_3/users_1-4/submission_2/a.txt",
		submission.BuildUploadDir(1, "a.txt"))
}

func TestBuildAttachmentUploadDir(t *testing.T) {
	assert.Equal(t,
		"exercise_attachments/course_instance_1/exercise_5/model_answer.pdf",
		BuildAttachmentUploadDir(1, 5, "model_answer.pdf"))
}

func TestExercise_GetFilesToSubmit(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{
			name:     "empty manifest",
			raw:      "",
			expected: nil,
		},
		{
			name:     "single file",
			raw:      "main.c",
			expected: []string{"main.c"},
		},
		{
			name:     "pipe separated list",
			raw:      "test1.txt|test2.txt|img.png",
			expected: []string{"test1.txt", "test2.txt", "img.png"},
		},
		{
			name:     "whitespace and empty entries are dropped",
			raw:      " a.txt | |b.txt",
			expected: []string{"a.txt", "b.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exercise := &Exercise{FilesToSubmit: tt.raw}
			assert.Equal(t, tt.expected, exercise.GetFilesToSubmit())
		})
	}
}
