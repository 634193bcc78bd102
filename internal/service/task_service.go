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

// ErrTaskNotFound indicates the task was not located.
var ErrTaskNotFound = errors.New("task not found")

// ErrFacultyNotFound indicates the assigning faculty does not exist.
var ErrFacultyNotFound = errors.New("faculty not found")

// ErrStudentNotFound indicates the targeted student does not exist.
var ErrStudentNotFound = errors.New("student not found")

// ErrProjectNotFound indicates the referenced project does not exist.
var ErrProjectNotFound = errors.New("project not found")

// ErrInvalidProjectForStudent indicates the student is not a member of the
// referenced project.
var ErrInvalidProjectForStudent = errors.New("student is not a member of the project")

// ErrDuplicateBroadcastTask indicates an identical broadcast task already exists.
var ErrDuplicateBroadcastTask = errors.New("an identical broadcast task already exists")

// ErrTaskOwnershipMismatch indicates the faculty does not own the task.
var ErrTaskOwnershipMismatch = errors.New("task belongs to a different faculty")

// ErrNoStudentsForFaculty indicates a broadcast has no reachable students.
var ErrNoStudentsForFaculty = errors.New("faculty has no students to broadcast to")

// ErrInvalidDueDate indicates the due date could not be parsed.
var ErrInvalidDueDate = errors.New("due date must be a valid RFC 3339 timestamp")

// TaskService encapsulates the task assignment lifecycle.
type TaskService interface {
	Assign(ctx context.Context, payload dto.TaskAssignRequest) (dto.TaskResponse, error)
	Update(ctx context.Context, taskID uint, payload dto.TaskUpdateRequest) (dto.TaskResponse, error)
	Delete(ctx context.Context, taskID, facultyID uint) error
	Get(ctx context.Context, taskID uint) (dto.TaskResponse, error)
	ListByFaculty(ctx context.Context, facultyID uint) ([]dto.TaskResponse, error)
	ListForStudent(ctx context.Context, studentID uint) ([]dto.TaskResponse, error)
	ListForProject(ctx context.Context, projectID uint) ([]dto.TaskResponse, error)
}

type taskService struct {
	tasks       repository.TaskRepository
	submissions repository.SubmissionRepository
	projects    repository.ProjectRepository
	students    repository.StudentRepository
	faculties   repository.FacultyRepository
	notifier    Notifier
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewTaskService constructs the task service.
func NewTaskService(
	tasks repository.TaskRepository,
	submissions repository.SubmissionRepository,
	projects repository.ProjectRepository,
	students repository.StudentRepository,
	faculties repository.FacultyRepository,
	notifier Notifier,
	validator *validator.Validate,
	logger zerolog.Logger,
) TaskService {
	return &taskService{
		tasks:       tasks,
		submissions: submissions,
		projects:    projects,
		students:    students,
		faculties:   faculties,
		notifier:    notifier,
		validator:   validator,
		logger:      logger.With().Str("component", "task_service").Logger(),
		now:         time.Now,
	}
}

func (s *taskService) Assign(ctx context.Context, payload dto.TaskAssignRequest) (dto.TaskResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}

	dueDate, err := parseDueDate(payload.DueDate)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	faculty, err := s.faculties.GetByID(ctx, payload.FacultyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskResponse{}, ErrFacultyNotFound
		}
		return dto.TaskResponse{}, err
	}

	task := models.Task{
		FacultyID:   faculty.ID,
		StudentID:   payload.StudentID,
		ProjectID:   payload.ProjectID,
		Title:       payload.Title,
		Description: payload.Description,
		DueDate:     dueDate,
		TotalMarks:  payload.TotalMarks,
		Status:      models.TaskStatusPending,
	}

	var recipients []models.Student

	switch target := task.Target(); target.Kind {
	case models.TargetSingle:
		student, err := s.resolveSingleTarget(ctx, target.StudentID, payload.ProjectID)
		if err != nil {
			return dto.TaskResponse{}, err
		}
		recipients = []models.Student{student}

	case models.TargetBroadcast:
		exists, err := s.tasks.BroadcastExists(ctx, faculty.ID, payload.Title, dueDate, 0)
		if err != nil {
			return dto.TaskResponse{}, err
		}
		if exists {
			return dto.TaskResponse{}, ErrDuplicateBroadcastTask
		}

		recipients, err = s.projects.StudentsByFaculty(ctx, faculty.ID)
		if err != nil {
			return dto.TaskResponse{}, err
		}
		if len(recipients) == 0 {
			return dto.TaskResponse{}, ErrNoStudentsForFaculty
		}
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	s.logger.Info().
		Uint("task_id", task.ID).
		Uint("faculty_id", faculty.ID).
		Str("target", string(task.Target().Kind)).
		Int("recipients", len(recipients)).
		Msg("task assigned")

	for _, student := range recipients {
		s.notifier.Notify(ctx, NotificationMessage{
			Recipient: student.Email,
			Subject:   fmt.Sprintf("New task assigned: %s", task.Title),
			Body: fmt.Sprintf("%s assigned you a new task %q due on %s.",
				faculty.FullName(), task.Title, task.DueDate.Format(time.RFC1123)),
			Kind:    "task_assigned",
			Payload: map[string]interface{}{"task_id": task.ID},
		})
	}

	created, err := s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return dto.NewTaskResponse(task), nil
	}

	return dto.NewTaskResponse(created), nil
}

// resolveSingleTarget validates the student exists and, when a project is
// named, that the student belongs to it.
func (s *taskService) resolveSingleTarget(ctx context.Context, studentID uint, projectID *uint) (models.Student, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}

	if projectID != nil {
		if _, err := s.projects.GetByID(ctx, *projectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Student{}, ErrProjectNotFound
			}
			return models.Student{}, err
		}

		member, err := s.projects.HasMember(ctx, *projectID, student.ID)
		if err != nil {
			return models.Student{}, err
		}
		if !member {
			return models.Student{}, ErrInvalidProjectForStudent
		}
	}

	return student, nil
}

func (s *taskService) Update(ctx context.Context, taskID uint, payload dto.TaskUpdateRequest) (dto.TaskResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}

	dueDate, err := parseDueDate(payload.DueDate)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskResponse{}, ErrTaskNotFound
		}
		return dto.TaskResponse{}, err
	}

	if task.FacultyID != payload.FacultyID {
		return dto.TaskResponse{}, ErrTaskOwnershipMismatch
	}

	if payload.StudentID == nil {
		exists, err := s.tasks.BroadcastExists(ctx, task.FacultyID, payload.Title, dueDate, task.ID)
		if err != nil {
			return dto.TaskResponse{}, err
		}
		if exists {
			return dto.TaskResponse{}, ErrDuplicateBroadcastTask
		}
	} else if _, err := s.resolveSingleTarget(ctx, *payload.StudentID, payload.ProjectID); err != nil {
		return dto.TaskResponse{}, err
	}

	deadlineReopened := dueDate.After(s.now())

	task.StudentID = payload.StudentID
	task.ProjectID = payload.ProjectID
	task.Title = payload.Title
	task.Description = payload.Description
	task.DueDate = dueDate
	task.TotalMarks = payload.TotalMarks

	if err := s.tasks.Update(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	// A due date moved into the future reopens the task. Auto-missed
	// sentinels created against the old deadline are stale, so drop them;
	// manual submissions and their grades stay untouched. A due date that
	// stays in the past keeps the recorded missed rows as they are.
	if deadlineReopened {
		removed, err := s.submissions.DeleteAutoMissedByTask(ctx, task.ID)
		if err != nil {
			s.logger.Error().Err(err).Uint("task_id", task.ID).Msg("failed to clear auto-missed submissions after deadline extension")
		} else if removed > 0 {
			s.logger.Info().
				Uint("task_id", task.ID).
				Int64("removed", removed).
				Msg("cleared auto-missed submissions after deadline extension")
		}
	}

	updated, err := s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return dto.NewTaskResponse(task), nil
	}

	return dto.NewTaskResponse(updated), nil
}

func (s *taskService) Delete(ctx context.Context, taskID, facultyID uint) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	if facultyID != 0 && task.FacultyID != facultyID {
		return ErrTaskOwnershipMismatch
	}

	if err := s.tasks.DeleteWithSubmissions(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	s.logger.Info().Uint("task_id", taskID).Msg("task and its submissions deleted")

	return nil
}

func (s *taskService) Get(ctx context.Context, taskID uint) (dto.TaskResponse, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskResponse{}, ErrTaskNotFound
		}
		return dto.TaskResponse{}, err
	}

	return dto.NewTaskResponse(task), nil
}

func (s *taskService) ListByFaculty(ctx context.Context, facultyID uint) ([]dto.TaskResponse, error) {
	tasks, err := s.tasks.ListByFaculty(ctx, facultyID)
	if err != nil {
		return nil, err
	}

	return dto.NewTaskResponseSlice(tasks), nil
}

// ListForStudent returns tasks addressed to the student directly plus
// broadcast tasks from every faculty supervising one of the student's
// projects.
func (s *taskService) ListForStudent(ctx context.Context, studentID uint) ([]dto.TaskResponse, error) {
	facultyIDs, err := s.projects.FacultyIDsForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListForStudent(ctx, studentID, facultyIDs)
	if err != nil {
		return nil, err
	}

	return dto.NewTaskResponseSlice(tasks), nil
}

func (s *taskService) ListForProject(ctx context.Context, projectID uint) ([]dto.TaskResponse, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	tasks, err := s.tasks.ListForProject(ctx, project.ID, project.FacultyID)
	if err != nil {
		return nil, err
	}

	return dto.NewTaskResponseSlice(tasks), nil
}

func parseDueDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, ErrInvalidDueDate
	}

	return parsed.UTC(), nil
}
