package policy

import (
	"testing"
	"time"

	"github.com/opencourse/coursework-service/internal/models"
	"github.com/stretchr/testify/assert"
)

var (
	opening = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	closing = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	lateDL  = time.Date(2026, 3, 22, 12, 0, 0, 0, time.UTC)
)

func testModule(lateAllowed bool) *models.CourseModule {
	module := &models.CourseModule{
		OpeningTime:           opening,
		ClosingTime:           closing,
		LateSubmissionPenalty: 0.5,
	}
	if lateAllowed {
		module.LateSubmissionsAllowed = true
		deadline := lateDL
		module.LateSubmissionDeadline = &deadline
	}
	return module
}

func TestEffectiveClosingTime(t *testing.T) {
	module := testModule(false)

	tests := []struct {
		name       string
		deviations []models.DeadlineRuleDeviation
		expected   time.Time
	}{
		{
			name:     "no deviations",
			expected: closing,
		},
		{
			name: "single deviation extends closing",
			deviations: []models.DeadlineRuleDeviation{
				{ExtraMinutes: 60},
			},
			expected: closing.Add(time.Hour),
		},
		{
			name: "largest deviation wins",
			deviations: []models.DeadlineRuleDeviation{
				{ExtraMinutes: 30},
				{ExtraMinutes: 1440},
				{ExtraMinutes: 60},
			},
			expected: closing.Add(24 * time.Hour),
		},
		{
			name: "negative extension never shortens the window",
			deviations: []models.DeadlineRuleDeviation{
				{ExtraMinutes: -60},
			},
			expected: closing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EffectiveClosingTime(module, tt.deviations))
		})
	}
}

func TestIsOpen(t *testing.T) {
	tests := []struct {
		name       string
		module     *models.CourseModule
		deviations []models.DeadlineRuleDeviation
		at         time.Time
		expected   bool
	}{
		{
			name:     "before opening",
			module:   testModule(false),
			at:       opening.Add(-time.Minute),
			expected: false,
		},
		{
			name:     "exactly at opening",
			module:   testModule(false),
			at:       opening,
			expected: true,
		},
		{
			name:     "inside window",
			module:   testModule(false),
			at:       opening.AddDate(0, 0, 7),
			expected: true,
		},
		{
			name:     "exactly at closing",
			module:   testModule(false),
			at:       closing,
			expected: true,
		},
		{
			name:     "after closing without late submissions",
			module:   testModule(false),
			at:       closing.Add(time.Minute),
			expected: false,
		},
		{
			name:     "after closing inside late window",
			module:   testModule(true),
			at:       closing.AddDate(0, 0, 3),
			expected: true,
		},
		{
			name:     "exactly at late deadline",
			module:   testModule(true),
			at:       lateDL,
			expected: true,
		},
		{
			name:     "past late deadline",
			module:   testModule(true),
			at:       lateDL.Add(time.Minute),
			expected: false,
		},
		{
			name:   "deviation keeps window open past closing",
			module: testModule(false),
			deviations: []models.DeadlineRuleDeviation{
				{ExtraMinutes: 120},
			},
			at:       closing.Add(time.Hour),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsOpen(tt.module, tt.deviations, tt.at))
		})
	}
}

func TestLatePenaltyApplicable(t *testing.T) {
	tests := []struct {
		name       string
		module     *models.CourseModule
		deviations []models.DeadlineRuleDeviation
		at         time.Time
		expected   bool
	}{
		{
			name:     "on time submission",
			module:   testModule(true),
			at:       closing.Add(-time.Hour),
			expected: false,
		},
		{
			name:     "exactly at closing is on time",
			module:   testModule(true),
			at:       closing,
			expected: false,
		},
		{
			name:     "late window submission",
			module:   testModule(true),
			at:       closing.AddDate(0, 0, 2),
			expected: true,
		},
		{
			name:     "past late deadline is not penalized, it is rejected",
			module:   testModule(true),
			at:       lateDL.Add(time.Hour),
			expected: false,
		},
		{
			name:     "late submissions not allowed",
			module:   testModule(false),
			at:       closing.Add(time.Hour),
			expected: false,
		},
		{
			name:   "deviation moves the penalty boundary",
			module: testModule(true),
			deviations: []models.DeadlineRuleDeviation{
				{ExtraMinutes: 1440},
			},
			at:       closing.Add(12 * time.Hour),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LatePenaltyApplicable(tt.module, tt.deviations, tt.at))
		})
	}
}

func TestSubmissionAllowed(t *testing.T) {
	openAt := opening.AddDate(0, 0, 1)
	closedAt := lateDL.AddDate(0, 0, 1)

	exercise := func(maxSubmissions int) *models.Exercise {
		return &models.Exercise{
			MaxSubmissions: maxSubmissions,
			CourseModule:   *testModule(true),
		}
	}

	tests := []struct {
		name            string
		check           SubmissionCheck
		expectedAllowed bool
		expectedReasons []ReasonCode
	}{
		{
			name: "allowed",
			check: SubmissionCheck{
				Exercise:         exercise(10),
				SubmitterIDs:     []uint{1},
				SubmissionCounts: map[uint]int{1: 3},
				At:               openAt,
			},
			expectedAllowed: true,
		},
		{
			name: "not open",
			check: SubmissionCheck{
				Exercise:         exercise(10),
				SubmitterIDs:     []uint{1},
				SubmissionCounts: map[uint]int{},
				At:               closedAt,
			},
			expectedAllowed: false,
			expectedReasons: []ReasonCode{ReasonNotOpen},
		},
		{
			name: "every submitter exhausted the limit",
			check: SubmissionCheck{
				Exercise:         exercise(2),
				SubmitterIDs:     []uint{1, 2},
				SubmissionCounts: map[uint]int{1: 2, 2: 5},
				At:               openAt,
			},
			expectedAllowed: false,
			expectedReasons: []ReasonCode{ReasonMaxSubmissionsReached},
		},
		{
			name: "fresh group member keeps the group submittable",
			check: SubmissionCheck{
				Exercise:         exercise(2),
				SubmitterIDs:     []uint{1, 2},
				SubmissionCounts: map[uint]int{1: 2},
				At:               openAt,
			},
			expectedAllowed: true,
		},
		{
			name: "zero max means unlimited",
			check: SubmissionCheck{
				Exercise:         exercise(0),
				SubmitterIDs:     []uint{1},
				SubmissionCounts: map[uint]int{1: 1000},
				At:               openAt,
			},
			expectedAllowed: true,
		},
		{
			name: "hidden category",
			check: SubmissionCheck{
				Exercise:         exercise(10),
				SubmitterIDs:     []uint{1},
				SubmissionCounts: map[uint]int{},
				HiddenToAny:      true,
				At:               openAt,
			},
			expectedAllowed: false,
			expectedReasons: []ReasonCode{ReasonCategoryHidden},
		},
		{
			name: "all violated reasons are reported together",
			check: SubmissionCheck{
				Exercise:         exercise(1),
				SubmitterIDs:     []uint{1},
				SubmissionCounts: map[uint]int{1: 1},
				HiddenToAny:      true,
				At:               closedAt,
			},
			expectedAllowed: false,
			expectedReasons: []ReasonCode{ReasonNotOpen, ReasonMaxSubmissionsReached, ReasonCategoryHidden},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, reasons := SubmissionAllowed(tt.check)
			assert.Equal(t, tt.expectedAllowed, allowed)
			assert.Equal(t, tt.expectedReasons, reasons)
		})
	}
}
