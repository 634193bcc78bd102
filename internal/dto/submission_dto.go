package dto

import (
	"fmt"
	"time"

	"github.com/acadhub/apms-go-api/internal/models"
)

// SubmitTaskRequest describes the multipart payload for a student submission.
// The file part is handled separately by the handler.
type SubmitTaskRequest struct {
	StudentID   uint   `form:"student_id" validate:"required,gt=0"`
	TaskID      uint   `form:"task_id" validate:"required,gt=0"`
	ProjectID   *uint  `form:"project_id" validate:"omitempty,gt=0"`
	Description string `form:"description"`
}

// GradeSubmissionRequest is the faculty grading payload. Grade is mandatory;
// the upper bound is checked against the task's total marks in the service.
type GradeSubmissionRequest struct {
	FacultyComments *string  `json:"faculty_comments"`
	Status          *string  `json:"status" validate:"omitempty,oneof=Submitted Graded"`
	Grade           *float64 `json:"grade" validate:"required"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID               uint         `json:"id"`
	TaskID           uint         `json:"task_id"`
	StudentID        uint         `json:"student_id"`
	ProjectID        *uint        `json:"project_id"`
	Description      string       `json:"description"`
	FileURL          string       `json:"file_url"`
	OriginalFileName string       `json:"original_file_name"`
	SubmittedAt      time.Time    `json:"submitted_at"`
	Status           string       `json:"status"`
	Origin           string       `json:"origin"`
	FacultyComments  string       `json:"faculty_comments"`
	Grade            *float64     `json:"grade"`
	Task             TaskLite     `json:"task"`
	Student          StudentLite  `json:"student"`
	Project          *ProjectLite `json:"project,omitempty"`
}

// TaskLite summarizes a task in submission responses.
type TaskLite struct {
	ID          uint      `json:"id"`
	Title       string    `json:"task_title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	TotalMarks  float64   `json:"total_marks"`
}

// SubmissionStatusResponse answers the deadline evaluator query for one
// (task, student) pair.
type SubmissionStatusResponse struct {
	Submitted     bool                `json:"submitted"`
	DisplayStatus string              `json:"display_status"`
	Submission    *SubmissionResponse `json:"submission"`
}

// DeriveDisplayStatus computes the UI-facing status for a task as seen by one
// student. An auto-missed sentinel shows as "Missed" rather than a plain
// graded zero so a genuinely earned zero stays distinguishable.
func DeriveDisplayStatus(task models.Task, submission *models.Submission, now time.Time) string {
	switch {
	case submission == nil && task.IsPastDue(now):
		return "Missing"
	case submission == nil:
		return "Pending"
	case submission.IsAutoMissed():
		return "Missed"
	case submission.IsGraded() && submission.Grade != nil:
		return fmt.Sprintf("Graded: %g/%g", *submission.Grade, task.TotalMarks)
	default:
		return "Submitted"
	}
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:               model.ID,
		TaskID:           model.TaskID,
		StudentID:        model.StudentID,
		ProjectID:        model.ProjectID,
		Description:      model.Description,
		FileURL:          model.FileURL,
		OriginalFileName: model.OriginalFileName,
		SubmittedAt:      model.SubmittedAt,
		Status:           string(model.Status),
		Origin:           string(model.Origin),
		FacultyComments:  model.FacultyComments,
		Grade:            model.Grade,
	}

	if model.Task.ID != 0 {
		response.Task = TaskLite{
			ID:          model.Task.ID,
			Title:       model.Task.Title,
			Description: model.Task.Description,
			DueDate:     model.Task.DueDate,
			TotalMarks:  model.Task.TotalMarks,
		}
	}

	if model.Student.ID != 0 {
		response.Student = StudentLite{
			ID:           model.Student.ID,
			Name:         model.Student.FullName(),
			EnrollmentNo: model.Student.EnrollmentNo,
		}
	}

	if model.Project != nil && model.Project.ID != 0 {
		response.Project = &ProjectLite{
			ID:    model.Project.ID,
			Title: model.Project.Title,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
