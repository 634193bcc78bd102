package models

import "time"

// Student represents a learner that receives tasks and submits work.
type Student struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EnrollmentNo string    `gorm:"size:64;uniqueIndex;not null" json:"enrollment_no"`
	FirstName    string    `gorm:"size:128;not null" json:"first_name"`
	LastName     string    `gorm:"size:128;not null" json:"last_name"`
	Class        string    `gorm:"size:64;not null" json:"class"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	ContactNo    string    `gorm:"size:32" json:"contact_no"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	ProfileImage string    `gorm:"size:512" json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName returns the display name used in notifications.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
