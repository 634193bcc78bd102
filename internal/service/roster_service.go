package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/acadhub/apms-go-api/internal/dto"
	"github.com/acadhub/apms-go-api/internal/models"
	"github.com/acadhub/apms-go-api/internal/repository"
)

// ErrEmailTaken indicates another roster record already uses the email.
var ErrEmailTaken = errors.New("email is already registered")

// RosterService manages student and faculty records.
type RosterService interface {
	CreateStudent(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error)
	UpdateStudent(ctx context.Context, studentID uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error)
	GetStudent(ctx context.Context, studentID uint) (dto.StudentResponse, error)
	ListStudents(ctx context.Context) ([]dto.StudentResponse, error)
	DeleteStudent(ctx context.Context, studentID uint) error

	CreateFaculty(ctx context.Context, payload dto.FacultyCreateRequest) (dto.FacultyResponse, error)
	UpdateFaculty(ctx context.Context, facultyID uint, payload dto.FacultyUpdateRequest) (dto.FacultyResponse, error)
	GetFaculty(ctx context.Context, facultyID uint) (dto.FacultyResponse, error)
	ListFaculty(ctx context.Context) ([]dto.FacultyResponse, error)
	DeleteFaculty(ctx context.Context, facultyID uint) error
}

type rosterService struct {
	students  repository.StudentRepository
	faculties repository.FacultyRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewRosterService constructs the roster service.
func NewRosterService(
	students repository.StudentRepository,
	faculties repository.FacultyRepository,
	validator *validator.Validate,
	logger zerolog.Logger,
) RosterService {
	return &rosterService{
		students:  students,
		faculties: faculties,
		validator: validator,
		logger:    logger.With().Str("component", "roster_service").Logger(),
		now:       time.Now,
	}
}

func (s *rosterService) CreateStudent(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	email := normalizeEmail(payload.Email)
	if _, err := s.students.GetByEmail(ctx, email); err == nil {
		return dto.StudentResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.StudentResponse{}, err
	}

	hash, err := hashPassword(payload.Password)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	student := models.Student{
		EnrollmentNo: payload.EnrollmentNo,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Class:        payload.Class,
		Email:        email,
		ContactNo:    payload.ContactNo,
		PasswordHash: hash,
	}

	if err := s.students.Create(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Msg("student registered")

	return dto.NewStudentResponse(student), nil
}

func (s *rosterService) UpdateStudent(ctx context.Context, studentID uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	if payload.FirstName != nil {
		student.FirstName = *payload.FirstName
	}
	if payload.LastName != nil {
		student.LastName = *payload.LastName
	}
	if payload.Class != nil {
		student.Class = *payload.Class
	}
	if payload.ContactNo != nil {
		student.ContactNo = *payload.ContactNo
	}
	if payload.Email != nil {
		email := normalizeEmail(*payload.Email)
		if email != student.Email {
			if _, err := s.students.GetByEmail(ctx, email); err == nil {
				return dto.StudentResponse{}, ErrEmailTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.StudentResponse{}, err
			}
			student.Email = email
		}
	}

	if err := s.students.Update(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

func (s *rosterService) GetStudent(ctx context.Context, studentID uint) (dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

func (s *rosterService) ListStudents(ctx context.Context) ([]dto.StudentResponse, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}

func (s *rosterService) DeleteStudent(ctx context.Context, studentID uint) error {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	return s.students.Delete(ctx, studentID)
}

func (s *rosterService) CreateFaculty(ctx context.Context, payload dto.FacultyCreateRequest) (dto.FacultyResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FacultyResponse{}, err
	}

	email := normalizeEmail(payload.Email)
	if _, err := s.faculties.GetByEmail(ctx, email); err == nil {
		return dto.FacultyResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.FacultyResponse{}, err
	}

	hash, err := hashPassword(payload.Password)
	if err != nil {
		return dto.FacultyResponse{}, err
	}

	faculty := models.Faculty{
		EmployeeID:   payload.EmployeeID,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Department:   payload.Department,
		Email:        email,
		ContactNo:    payload.ContactNo,
		PasswordHash: hash,
	}

	if err := s.faculties.Create(ctx, &faculty); err != nil {
		return dto.FacultyResponse{}, err
	}

	s.logger.Info().Uint("faculty_id", faculty.ID).Msg("faculty registered")

	return dto.NewFacultyResponse(faculty), nil
}

func (s *rosterService) UpdateFaculty(ctx context.Context, facultyID uint, payload dto.FacultyUpdateRequest) (dto.FacultyResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FacultyResponse{}, err
	}

	faculty, err := s.faculties.GetByID(ctx, facultyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FacultyResponse{}, ErrFacultyNotFound
		}
		return dto.FacultyResponse{}, err
	}

	if payload.FirstName != nil {
		faculty.FirstName = *payload.FirstName
	}
	if payload.LastName != nil {
		faculty.LastName = *payload.LastName
	}
	if payload.Department != nil {
		faculty.Department = *payload.Department
	}
	if payload.ContactNo != nil {
		faculty.ContactNo = *payload.ContactNo
	}
	if payload.Email != nil {
		email := normalizeEmail(*payload.Email)
		if email != faculty.Email {
			if _, err := s.faculties.GetByEmail(ctx, email); err == nil {
				return dto.FacultyResponse{}, ErrEmailTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.FacultyResponse{}, err
			}
			faculty.Email = email
		}
	}

	if err := s.faculties.Update(ctx, &faculty); err != nil {
		return dto.FacultyResponse{}, err
	}

	return dto.NewFacultyResponse(faculty), nil
}

func (s *rosterService) GetFaculty(ctx context.Context, facultyID uint) (dto.FacultyResponse, error) {
	faculty, err := s.faculties.GetByID(ctx, facultyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FacultyResponse{}, ErrFacultyNotFound
		}
		return dto.FacultyResponse{}, err
	}

	return dto.NewFacultyResponse(faculty), nil
}

func (s *rosterService) ListFaculty(ctx context.Context) ([]dto.FacultyResponse, error) {
	faculty, err := s.faculties.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewFacultyResponseSlice(faculty), nil
}

func (s *rosterService) DeleteFaculty(ctx context.Context, facultyID uint) error {
	if _, err := s.faculties.GetByID(ctx, facultyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFacultyNotFound
		}
		return err
	}

	return s.faculties.Delete(ctx, facultyID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}
