package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleAssistant UserRole = "assistant"
	RoleTeacher   UserRole = "teacher"
	RoleAdmin     UserRole = "admin"
)

type User struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	Username  string   `json:"username" gorm:"not null;size:100;uniqueIndex" validate:"required,min=1,max=100"`
	FirstName string   `json:"first_name" gorm:"size:100"`
	LastName  string   `json:"last_name" gorm:"size:100"`
	Email     string   `json:"email" gorm:"size:200;index" validate:"omitempty,email"`
	Role      UserRole `json:"role" gorm:"default:student;index" validate:"omitempty,user_role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsCourseStaff reports whether the role may bypass student-facing access
// checks (open windows, hidden categories, submission limits).
func (r UserRole) IsCourseStaff() bool {
	return r == RoleTeacher || r == RoleAdmin || r == RoleAssistant
}

func (u *User) IsCourseStaff() bool {
	return u.Role.IsCourseStaff()
}
