package models

import "time"

// TaskStatus is the coarse faculty-facing indicator on a task. Per-student
// progress lives on the individual Submission records.
type TaskStatus string

const (
	// TaskStatusPending indicates no submission has been received yet.
	TaskStatusPending TaskStatus = "Pending"
	// TaskStatusSubmitted indicates at least one student has submitted work.
	TaskStatusSubmitted TaskStatus = "Submitted"
	// TaskStatusGraded indicates at least one submission has been graded.
	TaskStatusGraded TaskStatus = "Graded"
)

// TaskTargetKind discriminates who a task is addressed to.
type TaskTargetKind string

const (
	// TargetSingle addresses exactly one student.
	TargetSingle TaskTargetKind = "single"
	// TargetBroadcast addresses every student reachable through the
	// assigning faculty's projects.
	TargetBroadcast TaskTargetKind = "broadcast"
)

// TaskTarget is the resolved addressing variant of a task.
type TaskTarget struct {
	Kind      TaskTargetKind
	StudentID uint
}

// Task is a unit of work a faculty member assigns to one student or to all
// students under their projects.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	FacultyID   uint       `gorm:"not null;index" json:"faculty_id"`
	StudentID   *uint      `gorm:"index" json:"student_id"`
	ProjectID   *uint      `gorm:"index" json:"project_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	DueDate     time.Time  `gorm:"not null" json:"due_date"`
	TotalMarks  float64    `gorm:"not null" json:"total_marks"`
	Status      TaskStatus `gorm:"size:32;not null;default:Pending" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Faculty     Faculty    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"faculty"`
	Student     *Student   `json:"student,omitempty"`
	Project     *Project   `json:"project,omitempty"`
}

// Target resolves the nullable student reference into an explicit variant so
// workflow code never branches on nil pointers directly.
func (t Task) Target() TaskTarget {
	if t.StudentID != nil {
		return TaskTarget{Kind: TargetSingle, StudentID: *t.StudentID}
	}
	return TaskTarget{Kind: TargetBroadcast}
}

// IsBroadcast reports whether the task addresses all of the faculty's students.
func (t Task) IsBroadcast() bool {
	return t.StudentID == nil
}

// IsPastDue returns true when the deadline has already passed.
func (t Task) IsPastDue(reference time.Time) bool {
	return !reference.Before(t.DueDate)
}
