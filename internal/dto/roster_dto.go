package dto

import "github.com/acadhub/apms-go-api/internal/models"

// StudentCreateRequest registers a student on the roster.
type StudentCreateRequest struct {
	EnrollmentNo string `json:"enrollment_no" validate:"required,min=1,max=64"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	Class        string `json:"class" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	ContactNo    string `json:"contact_no" validate:"required"`
	Password     string `json:"password" validate:"required,min=6"`
}

// StudentUpdateRequest patches roster fields on a student.
type StudentUpdateRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1"`
	Class     *string `json:"class" validate:"omitempty,min=1"`
	Email     *string `json:"email" validate:"omitempty,email"`
	ContactNo *string `json:"contact_no"`
}

// FacultyCreateRequest registers a faculty member on the roster.
type FacultyCreateRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,min=1,max=64"`
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Department string `json:"department" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	ContactNo  string `json:"contact_no" validate:"required"`
	Password   string `json:"password" validate:"required,min=6"`
}

// FacultyUpdateRequest patches roster fields on a faculty member.
type FacultyUpdateRequest struct {
	FirstName  *string `json:"first_name" validate:"omitempty,min=1"`
	LastName   *string `json:"last_name" validate:"omitempty,min=1"`
	Department *string `json:"department" validate:"omitempty,min=1"`
	Email      *string `json:"email" validate:"omitempty,email"`
	ContactNo  *string `json:"contact_no"`
}

// StudentResponse is the roster view of a student.
type StudentResponse struct {
	ID           uint   `json:"id"`
	EnrollmentNo string `json:"enrollment_no"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Class        string `json:"class"`
	Email        string `json:"email"`
	ContactNo    string `json:"contact_no"`
	ProfileImage string `json:"profile_image"`
}

// FacultyResponse is the roster view of a faculty member.
type FacultyResponse struct {
	ID           uint   `json:"id"`
	EmployeeID   string `json:"employee_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Department   string `json:"department"`
	Email        string `json:"email"`
	ContactNo    string `json:"contact_no"`
	ProfileImage string `json:"profile_image"`
}

// NewStudentResponse converts a Student model into a DTO.
func NewStudentResponse(model models.Student) StudentResponse {
	return StudentResponse{
		ID:           model.ID,
		EnrollmentNo: model.EnrollmentNo,
		FirstName:    model.FirstName,
		LastName:     model.LastName,
		Class:        model.Class,
		Email:        model.Email,
		ContactNo:    model.ContactNo,
		ProfileImage: model.ProfileImage,
	}
}

// NewStudentResponseSlice converts student models into DTOs.
func NewStudentResponseSlice(students []models.Student) []StudentResponse {
	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, NewStudentResponse(student))
	}
	return responses
}

// NewFacultyResponse converts a Faculty model into a DTO.
func NewFacultyResponse(model models.Faculty) FacultyResponse {
	return FacultyResponse{
		ID:           model.ID,
		EmployeeID:   model.EmployeeID,
		FirstName:    model.FirstName,
		LastName:     model.LastName,
		Department:   model.Department,
		Email:        model.Email,
		ContactNo:    model.ContactNo,
		ProfileImage: model.ProfileImage,
	}
}

// NewFacultyResponseSlice converts faculty models into DTOs.
func NewFacultyResponseSlice(faculty []models.Faculty) []FacultyResponse {
	responses := make([]FacultyResponse, 0, len(faculty))
	for _, member := range faculty {
		responses = append(responses, NewFacultyResponse(member))
	}
	return responses
}
