package models

import "time"

// SubmissionStatus tracks review progress on a submission.
type SubmissionStatus string

const (
	// SubmissionStatusSubmitted indicates work has been handed in but not reviewed.
	SubmissionStatusSubmitted SubmissionStatus = "Submitted"
	// SubmissionStatusGraded indicates the faculty has recorded a grade.
	SubmissionStatusGraded SubmissionStatus = "Graded"
)

// SubmissionOrigin records how a submission row came to exist. Display and
// business logic branch on this, never on the description text.
type SubmissionOrigin string

const (
	// OriginManual marks a submission created by the student.
	OriginManual SubmissionOrigin = "manual"
	// OriginAutoMissed marks a zero-grade record synthesized after the
	// deadline passed with no student submission.
	OriginAutoMissed SubmissionOrigin = "auto_missed"
)

// MissedDeadlineDescription is the description written onto auto-missed
// submissions. Kept for display compatibility; the Origin column is the
// authoritative discriminant.
const MissedDeadlineDescription = "Automatically graded due to missed deadline"

// Submission is the single live record of a student's work on a task.
// The composite unique index guarantees at most one row per (task, student),
// which also makes the lazy sentinel insert race-safe.
type Submission struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	TaskID           uint             `gorm:"not null;uniqueIndex:idx_submissions_task_student" json:"task_id"`
	StudentID        uint             `gorm:"not null;uniqueIndex:idx_submissions_task_student" json:"student_id"`
	ProjectID        *uint            `gorm:"index" json:"project_id"`
	Description      string           `gorm:"type:text" json:"description"`
	FileURL          string           `gorm:"size:512" json:"file_url"`
	OriginalFileName string           `gorm:"size:255" json:"original_file_name"`
	SubmittedAt      time.Time        `json:"submitted_at"`
	Status           SubmissionStatus `gorm:"size:32;not null;default:Submitted" json:"status"`
	Origin           SubmissionOrigin `gorm:"size:16;not null;default:manual" json:"origin"`
	FacultyComments  string           `gorm:"type:text" json:"faculty_comments"`
	Grade            *float64         `json:"grade"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	Task             Task             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"task"`
	Student          Student          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Project          *Project         `json:"project,omitempty"`
}

// IsGraded reports whether the submission carries a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}

// IsAutoMissed reports whether the row is the missed-deadline sentinel.
func (s Submission) IsAutoMissed() bool {
	return s.Origin == OriginAutoMissed
}

// NewMissedSubmission builds the zero-grade sentinel for a student who let the
// task deadline pass without submitting.
func NewMissedSubmission(task Task, studentID uint, at time.Time) Submission {
	zero := 0.0
	return Submission{
		TaskID:      task.ID,
		StudentID:   studentID,
		ProjectID:   task.ProjectID,
		Description: MissedDeadlineDescription,
		SubmittedAt: at,
		Status:      SubmissionStatusGraded,
		Origin:      OriginAutoMissed,
		Grade:       &zero,
	}
}
