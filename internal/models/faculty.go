package models

import "time"

// Faculty represents a supervisor that assigns projects and tasks.
type Faculty struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EmployeeID   string    `gorm:"size:64;uniqueIndex;not null" json:"employee_id"`
	FirstName    string    `gorm:"size:128;not null" json:"first_name"`
	LastName     string    `gorm:"size:128;not null" json:"last_name"`
	Department   string    `gorm:"size:128;not null" json:"department"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	ContactNo    string    `gorm:"size:32" json:"contact_no"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	ProfileImage string    `gorm:"size:512" json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName returns the display name used in notifications.
func (f Faculty) FullName() string {
	return f.FirstName + " " + f.LastName
}
