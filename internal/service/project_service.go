package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/acadhub/apms-go-api/internal/dto"
	"github.com/acadhub/apms-go-api/internal/models"
	"github.com/acadhub/apms-go-api/internal/repository"
)

// ErrInvalidEndDate indicates the project end date could not be parsed.
var ErrInvalidEndDate = errors.New("end date must be a valid RFC 3339 timestamp")

// ProjectService encapsulates project assignment and team membership.
type ProjectService interface {
	Assign(ctx context.Context, payload dto.ProjectAssignRequest) (dto.ProjectResponse, error)
	Get(ctx context.Context, projectID uint) (dto.ProjectResponse, error)
	List(ctx context.Context) ([]dto.ProjectResponse, error)
	ListByFaculty(ctx context.Context, facultyID uint) ([]dto.ProjectResponse, error)
	ListByStudent(ctx context.Context, studentID uint) ([]dto.ProjectResponse, error)
	UpdateStatus(ctx context.Context, projectID uint, payload dto.ProjectStatusRequest) (dto.ProjectResponse, error)
	Delete(ctx context.Context, projectID uint) error
}

type projectService struct {
	projects  repository.ProjectRepository
	students  repository.StudentRepository
	faculties repository.FacultyRepository
	notifier  Notifier
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewProjectService constructs the project service.
func NewProjectService(
	projects repository.ProjectRepository,
	students repository.StudentRepository,
	faculties repository.FacultyRepository,
	notifier Notifier,
	validator *validator.Validate,
	logger zerolog.Logger,
) ProjectService {
	return &projectService{
		projects:  projects,
		students:  students,
		faculties: faculties,
		notifier:  notifier,
		validator: validator,
		logger:    logger.With().Str("component", "project_service").Logger(),
		now:       time.Now,
	}
}

func (s *projectService) Assign(ctx context.Context, payload dto.ProjectAssignRequest) (dto.ProjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProjectResponse{}, err
	}

	endDate, err := time.Parse(time.RFC3339, payload.EndDate)
	if err != nil {
		return dto.ProjectResponse{}, ErrInvalidEndDate
	}

	faculty, err := s.faculties.GetByID(ctx, payload.FacultyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, ErrFacultyNotFound
		}
		return dto.ProjectResponse{}, err
	}

	members := make([]models.Student, 0, len(payload.StudentIDs))
	for _, studentID := range payload.StudentIDs {
		student, err := s.students.GetByID(ctx, studentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ProjectResponse{}, ErrStudentNotFound
			}
			return dto.ProjectResponse{}, err
		}
		members = append(members, student)
	}

	project := models.Project{
		Title:       payload.Title,
		Description: payload.Description,
		FacultyID:   faculty.ID,
		Domain:      payload.Domain,
		TechStack:   payload.TechStack,
		EndDate:     endDate.UTC(),
		Status:      models.ProjectStatusPending,
		AssignedAt:  s.now(),
		Students:    members,
	}

	if err := s.projects.Create(ctx, &project); err != nil {
		return dto.ProjectResponse{}, err
	}

	s.logger.Info().
		Uint("project_id", project.ID).
		Uint("faculty_id", faculty.ID).
		Int("team_size", len(members)).
		Msg("project assigned")

	for _, student := range members {
		s.notifier.Notify(ctx, NotificationMessage{
			Recipient: student.Email,
			Subject:   fmt.Sprintf("You were added to project %s", project.Title),
			Body: fmt.Sprintf("%s added you to project %q, due %s.",
				faculty.FullName(), project.Title, project.EndDate.Format(time.RFC1123)),
			Kind:    "project_assigned",
			Payload: map[string]interface{}{"project_id": project.ID},
		})
	}

	created, err := s.projects.GetByID(ctx, project.ID)
	if err != nil {
		return dto.NewProjectResponse(project), nil
	}

	return dto.NewProjectResponse(created), nil
}

func (s *projectService) Get(ctx context.Context, projectID uint) (dto.ProjectResponse, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, ErrProjectNotFound
		}
		return dto.ProjectResponse{}, err
	}

	return dto.NewProjectResponse(project), nil
}

func (s *projectService) List(ctx context.Context) ([]dto.ProjectResponse, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewProjectResponseSlice(projects), nil
}

func (s *projectService) ListByFaculty(ctx context.Context, facultyID uint) ([]dto.ProjectResponse, error) {
	projects, err := s.projects.ListByFaculty(ctx, facultyID)
	if err != nil {
		return nil, err
	}

	return dto.NewProjectResponseSlice(projects), nil
}

func (s *projectService) ListByStudent(ctx context.Context, studentID uint) ([]dto.ProjectResponse, error) {
	projects, err := s.projects.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewProjectResponseSlice(projects), nil
}

func (s *projectService) UpdateStatus(ctx context.Context, projectID uint, payload dto.ProjectStatusRequest) (dto.ProjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProjectResponse{}, err
	}

	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, ErrProjectNotFound
		}
		return dto.ProjectResponse{}, err
	}

	if err := s.projects.UpdateStatus(ctx, projectID, models.ProjectStatus(payload.Status)); err != nil {
		return dto.ProjectResponse{}, err
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return dto.ProjectResponse{}, err
	}

	return dto.NewProjectResponse(project), nil
}

func (s *projectService) Delete(ctx context.Context, projectID uint) error {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}

	s.logger.Info().Uint("project_id", projectID).Msg("project deleted")

	return nil
}
