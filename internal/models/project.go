package models

import "time"

// ProjectStatus is the lifecycle state of an academic project.
type ProjectStatus string

const (
	// ProjectStatusPending means the project is still in progress.
	ProjectStatusPending ProjectStatus = "Pending"
	// ProjectStatusCompleted means the project has been closed out.
	ProjectStatusCompleted ProjectStatus = "Completed"
)

// Project groups a team of students under one supervising faculty member.
type Project struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	Description string        `gorm:"type:text;not null" json:"description"`
	FacultyID   uint          `gorm:"not null;index" json:"faculty_id"`
	Domain      string        `gorm:"size:128;not null" json:"domain"`
	TechStack   string        `gorm:"size:255" json:"tech_stack"`
	EndDate     time.Time     `gorm:"not null" json:"end_date"`
	Status      ProjectStatus `gorm:"size:32;not null;default:Pending" json:"status"`
	AssignedAt  time.Time     `json:"assigned_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Faculty     Faculty       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"faculty"`
	Students    []Student     `gorm:"many2many:project_students" json:"students"`
}

// HasStudent reports whether the given student is a member of the project.
func (p Project) HasStudent(studentID uint) bool {
	for _, s := range p.Students {
		if s.ID == studentID {
			return true
		}
	}
	return false
}
