package dto

import (
	"time"

	"github.com/acadhub/apms-go-api/internal/models"
)

// ProjectAssignRequest describes the payload for assigning a project to a
// team of students under one faculty supervisor.
type ProjectAssignRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"required"`
	FacultyID   uint   `json:"faculty_id" validate:"required,gt=0"`
	StudentIDs  []uint `json:"student_ids" validate:"required,min=1,dive,gt=0"`
	Domain      string `json:"domain" validate:"required"`
	TechStack   string `json:"tech_stack"`
	EndDate     string `json:"end_date" validate:"required"`
}

// ProjectStatusRequest updates the lifecycle state of a project.
type ProjectStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Completed"`
}

// ProjectResponse is returned to API clients when viewing projects.
type ProjectResponse struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	FacultyID   uint          `json:"faculty_id"`
	Domain      string        `json:"domain"`
	TechStack   string        `json:"tech_stack"`
	EndDate     time.Time     `json:"end_date"`
	Status      string        `json:"status"`
	AssignedAt  time.Time     `json:"assigned_at"`
	Faculty     FacultyLite   `json:"faculty"`
	Students    []StudentLite `json:"students"`
}

// NewProjectResponse converts a Project model into a DTO.
func NewProjectResponse(model models.Project) ProjectResponse {
	response := ProjectResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		FacultyID:   model.FacultyID,
		Domain:      model.Domain,
		TechStack:   model.TechStack,
		EndDate:     model.EndDate,
		Status:      string(model.Status),
		AssignedAt:  model.AssignedAt,
		Students:    make([]StudentLite, 0, len(model.Students)),
	}

	if model.Faculty.ID != 0 {
		response.Faculty = FacultyLite{
			ID:         model.Faculty.ID,
			Name:       model.Faculty.FullName(),
			Department: model.Faculty.Department,
		}
	}

	for _, student := range model.Students {
		response.Students = append(response.Students, StudentLite{
			ID:           student.ID,
			Name:         student.FullName(),
			EnrollmentNo: student.EnrollmentNo,
		})
	}

	return response
}

// NewProjectResponseSlice converts project models into DTOs.
func NewProjectResponseSlice(projects []models.Project) []ProjectResponse {
	responses := make([]ProjectResponse, 0, len(projects))
	for _, project := range projects {
		responses = append(responses, NewProjectResponse(project))
	}

	return responses
}
