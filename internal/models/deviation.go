package models

import (
	"time"
)

// DeadlineRuleDeviation grants one submitter extra minutes on one exercise's
// deadline. It is created by staff and never mutated by the grading core.
type DeadlineRuleDeviation struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	ExerciseID   uint `json:"exercise_id" gorm:"not null;index:idx_deviation_exercise_submitter"`
	SubmitterID  uint `json:"submitter_id" gorm:"not null;index:idx_deviation_exercise_submitter"`
	ExtraMinutes int  `json:"extra_minutes" gorm:"not null" validate:"min=0"`

	CreatedAt time.Time `json:"created_at"`

	Exercise  Exercise `json:"-" gorm:"foreignKey:ExerciseID"`
	Submitter User     `json:"-" gorm:"foreignKey:SubmitterID"`
}

func (DeadlineRuleDeviation) TableName() string {
	return "deadline_rule_deviations"
}

// ExtraDuration returns the granted extension as a duration.
func (d *DeadlineRuleDeviation) ExtraDuration() time.Duration {
	return time.Duration(d.ExtraMinutes) * time.Minute
}
