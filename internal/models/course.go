package models

import (
	"time"

	"gorm.io/gorm"
)

// CourseInstance is one offering of a course over a fixed time range.
type CourseInstance struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	InstanceName string    `json:"instance_name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	URL          string    `json:"url" gorm:"not null;size:200;uniqueIndex" validate:"required,min=1,max=200"`
	StartingTime time.Time `json:"starting_time" gorm:"not null" validate:"required"`
	EndingTime   time.Time `json:"ending_time" gorm:"not null" validate:"required"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Modules    []CourseModule           `json:"modules" gorm:"foreignKey:CourseInstanceID"`
	Categories []LearningObjectCategory `json:"categories" gorm:"foreignKey:CourseInstanceID"`
}

// CourseModule is a graded unit within a course instance. Its opening and
// closing times govern every exercise it owns unless a deadline deviation
// extends the window for a particular submitter.
type CourseModule struct {
	ID               uint   `json:"id" gorm:"primaryKey"`
	CourseInstanceID uint   `json:"course_instance_id" gorm:"not null;index"`
	Name             string `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	URL              string `json:"url" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	PointsToPass     int    `json:"points_to_pass" gorm:"default:0" validate:"min=0"`

	OpeningTime time.Time `json:"opening_time" gorm:"not null" validate:"required"`
	ClosingTime time.Time `json:"closing_time" gorm:"not null" validate:"required"`

	LateSubmissionsAllowed bool       `json:"late_submissions_allowed" gorm:"default:false"`
	LateSubmissionDeadline *time.Time `json:"late_submission_deadline"`
	LateSubmissionPenalty  float64    `json:"late_submission_penalty" gorm:"default:0.5" validate:"min=0,max=1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CourseInstance CourseInstance `json:"-" gorm:"foreignKey:CourseInstanceID"`
	Exercises      []Exercise     `json:"exercises" gorm:"foreignKey:CourseModuleID"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

// LearningObjectCategory groups exercises across a course instance for
// scoring. Visibility is per user: rows in category_hidden_users hide the
// whole category, and everything it owns, from that user.
type LearningObjectCategory struct {
	ID               uint   `json:"id" gorm:"primaryKey"`
	CourseInstanceID uint   `json:"course_instance_id" gorm:"not null;index"`
	Name             string `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	PointsToPass     int    `json:"points_to_pass" gorm:"default:0" validate:"min=0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CourseInstance CourseInstance `json:"-" gorm:"foreignKey:CourseInstanceID"`
	HiddenTo       []User         `json:"-" gorm:"many2many:category_hidden_users"`
}

func (LearningObjectCategory) TableName() string {
	return "learning_object_categories"
}

// IsHiddenTo checks the loaded HiddenTo relation only; it does not hit the
// database.
func (c *LearningObjectCategory) IsHiddenTo(userID uint) bool {
	for _, u := range c.HiddenTo {
		if u.ID == userID {
			return true
		}
	}
	return false
}
