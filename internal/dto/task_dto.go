package dto

import (
	"time"

	"github.com/acadhub/apms-go-api/internal/models"
)

// TaskAssignRequest describes the payload for assigning a task. A nil
// StudentID broadcasts the task to every student under the faculty's projects.
type TaskAssignRequest struct {
	FacultyID   uint    `json:"faculty_id" validate:"required,gt=0"`
	StudentID   *uint   `json:"student_id" validate:"omitempty,gt=0"`
	ProjectID   *uint   `json:"project_id" validate:"omitempty,gt=0"`
	Title       string  `json:"task_title" validate:"required,min=1,max=255"`
	Description string  `json:"description" validate:"required"`
	DueDate     string  `json:"due_date" validate:"required"`
	TotalMarks  float64 `json:"total_marks" validate:"required,gt=0"`
}

// TaskUpdateRequest carries the full replacement state of a task. The
// FacultyID must match the task owner.
type TaskUpdateRequest struct {
	FacultyID   uint    `json:"faculty_id" validate:"required,gt=0"`
	StudentID   *uint   `json:"student_id" validate:"omitempty,gt=0"`
	ProjectID   *uint   `json:"project_id" validate:"omitempty,gt=0"`
	Title       string  `json:"task_title" validate:"required,min=1,max=255"`
	Description string  `json:"description" validate:"required"`
	DueDate     string  `json:"due_date" validate:"required"`
	TotalMarks  float64 `json:"total_marks" validate:"required,gt=0"`
}

// TaskResponse is returned to API clients when viewing tasks.
type TaskResponse struct {
	ID          uint         `json:"id"`
	FacultyID   uint         `json:"faculty_id"`
	StudentID   *uint        `json:"student_id"`
	ProjectID   *uint        `json:"project_id"`
	Target      string       `json:"target"`
	Title       string       `json:"task_title"`
	Description string       `json:"description"`
	DueDate     time.Time    `json:"due_date"`
	TotalMarks  float64      `json:"total_marks"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Faculty     FacultyLite  `json:"faculty"`
	Student     *StudentLite `json:"student,omitempty"`
	Project     *ProjectLite `json:"project,omitempty"`
}

// FacultyLite summarizes a faculty member for embedding in responses.
type FacultyLite struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// StudentLite summarizes a student without exposing full profile data.
type StudentLite struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	EnrollmentNo string `json:"enrollment_no"`
}

// ProjectLite summarizes a project for embedding in responses.
type ProjectLite struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// NewTaskResponse converts a Task model into a DTO.
func NewTaskResponse(model models.Task) TaskResponse {
	response := TaskResponse{
		ID:          model.ID,
		FacultyID:   model.FacultyID,
		StudentID:   model.StudentID,
		ProjectID:   model.ProjectID,
		Target:      string(model.Target().Kind),
		Title:       model.Title,
		Description: model.Description,
		DueDate:     model.DueDate,
		TotalMarks:  model.TotalMarks,
		Status:      string(model.Status),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}

	if model.Faculty.ID != 0 {
		response.Faculty = FacultyLite{
			ID:         model.Faculty.ID,
			Name:       model.Faculty.FullName(),
			Department: model.Faculty.Department,
		}
	}

	if model.Student != nil && model.Student.ID != 0 {
		response.Student = &StudentLite{
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

// NewTaskResponseSlice converts task models into DTOs.
func NewTaskResponseSlice(tasks []models.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, NewTaskResponse(task))
	}

	return responses
}
