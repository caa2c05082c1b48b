// Package policy holds the pure deadline and access rules shared by the
// submission flow and the scoring rollup. Nothing here touches storage:
// callers resolve the module, deviations and submission counts first and the
// functions decide from those values alone, so two calls with the same inputs
// always agree.
package policy

import (
	"time"

	"github.com/opencourse/coursework-service/internal/models"
)

// ReasonCode identifies one way a submission attempt can be denied. All
// applicable codes are returned together so the caller can present a complete
// error instead of the first failure found.
type ReasonCode string

const (
	ReasonNotOpen               ReasonCode = "NOT_OPEN"
	ReasonMaxSubmissionsReached ReasonCode = "MAX_SUBMISSIONS_REACHED"
	ReasonCategoryHidden        ReasonCode = "CATEGORY_HIDDEN"
)

// EffectiveClosingTime is the module closing time extended by the largest
// deadline deviation granted to any of the submitters for this exercise.
// Deviations for other exercises or other users must be filtered out by the
// caller; negative extensions never shorten the window.
func EffectiveClosingTime(module *models.CourseModule, deviations []models.DeadlineRuleDeviation) time.Time {
	closing := module.ClosingTime
	var maxExtra time.Duration
	for _, d := range deviations {
		if extra := d.ExtraDuration(); extra > maxExtra {
			maxExtra = extra
		}
	}
	return closing.Add(maxExtra)
}

// IsOpen reports whether at falls inside the exercise's open window: between
// the module opening time and the deviation-extended closing time, or within
// the late-submission window when the module allows one.
func IsOpen(module *models.CourseModule, deviations []models.DeadlineRuleDeviation, at time.Time) bool {
	if at.Before(module.OpeningTime) {
		return false
	}
	if !at.After(EffectiveClosingTime(module, deviations)) {
		return true
	}
	return module.LateSubmissionsAllowed &&
		module.LateSubmissionDeadline != nil &&
		!at.After(*module.LateSubmissionDeadline)
}

// LatePenaltyApplicable reports whether a submission at the given time lands
// in the late window: past the effective closing time but still before the
// module's late-submission deadline.
func LatePenaltyApplicable(module *models.CourseModule, deviations []models.DeadlineRuleDeviation, at time.Time) bool {
	if !at.After(EffectiveClosingTime(module, deviations)) {
		return false
	}
	return module.LateSubmissionsAllowed &&
		module.LateSubmissionDeadline != nil &&
		!at.After(*module.LateSubmissionDeadline)
}

// SubmissionCheck carries the resolved state a submission-allowed decision
// needs. SubmissionCounts maps submitter id to the number of submissions that
// user already has for the exercise (absent means none); HiddenToAny is true
// when the exercise's category is hidden to at least one submitter.
type SubmissionCheck struct {
	Exercise         *models.Exercise
	Deviations       []models.DeadlineRuleDeviation
	SubmitterIDs     []uint
	SubmissionCounts map[uint]int
	HiddenToAny      bool
	At               time.Time
}

// SubmissionAllowed evaluates every denial rule and returns all violated
// reason codes. Staff bypass is the authorization collaborator's concern and
// happens before this is called.
func SubmissionAllowed(check SubmissionCheck) (bool, []ReasonCode) {
	var reasons []ReasonCode

	module := &check.Exercise.CourseModule
	if !IsOpen(module, check.Deviations, check.At) {
		reasons = append(reasons, ReasonNotOpen)
	}

	// 0 means unlimited attempts. The limit blocks only when every submitter
	// has exhausted it; a fresh group member keeps the group submittable.
	if max := check.Exercise.MaxSubmissionsForStudent(); max > 0 && len(check.SubmitterIDs) > 0 {
		allExhausted := true
		for _, id := range check.SubmitterIDs {
			if check.SubmissionCounts[id] < max {
				allExhausted = false
				break
			}
		}
		if allExhausted {
			reasons = append(reasons, ReasonMaxSubmissionsReached)
		}
	}

	if check.HiddenToAny {
		reasons = append(reasons, ReasonCategoryHidden)
	}

	return len(reasons) == 0, reasons
}
