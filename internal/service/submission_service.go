package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/acadhub/apms-go-api/internal/dto"
	"github.com/acadhub/apms-go-api/internal/models"
	"github.com/acadhub/apms-go-api/internal/observability"
	"github.com/acadhub/apms-go-api/internal/repository"
)

// ErrSubmissionExists indicates the student already has a submission for the task.
var ErrSubmissionExists = errors.New("a submission already exists for this task")

// ErrFileTooLarge indicates the uploaded document exceeds the size limit.
var ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")

// ErrNotPDF indicates the uploaded document is not a PDF.
var ErrNotPDF = errors.New("only PDF documents are accepted")

// ErrEmptyFile indicates the uploaded document carried no bytes.
var ErrEmptyFile = errors.New("file must not be empty")

// FileUploader stores a submission document and returns a public URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// SubmissionService covers the student submission lifecycle and the
// deadline evaluator.
type SubmissionService interface {
	Submit(ctx context.Context, payload dto.SubmitTaskRequest, fileName string, file io.Reader) (dto.SubmissionResponse, error)
	Status(ctx context.Context, taskID, studentID uint) (dto.SubmissionStatusResponse, error)
	MarkOverdue(ctx context.Context, facultyID uint) (int64, error)
	ListForFaculty(ctx context.Context, facultyID uint) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	tasks       repository.TaskRepository
	projects    repository.ProjectRepository
	students    repository.StudentRepository
	uploader    FileUploader
	notifier    Notifier
	validator   *validator.Validate
	maxBytes    int64
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	students repository.StudentRepository,
	uploader FileUploader,
	notifier Notifier,
	validator *validator.Validate,
	maxBytes int64,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		tasks:       tasks,
		projects:    projects,
		students:    students,
		uploader:    uploader,
		notifier:    notifier,
		validator:   validator,
		maxBytes:    maxBytes,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, payload dto.SubmitTaskRequest, fileName string, file io.Reader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	task, err := s.tasks.GetByID(ctx, payload.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrTaskNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	student, err := s.students.GetByID(ctx, payload.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrStudentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	data, err := s.readDocument(file)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	fileURL, err := s.uploader.Upload(ctx, fileName, bytes.NewReader(data))
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to store submission document: %w", err)
	}

	submission := models.Submission{
		TaskID:           task.ID,
		StudentID:        student.ID,
		ProjectID:        payload.ProjectID,
		Description:      payload.Description,
		FileURL:          fileURL,
		OriginalFileName: fileName,
		SubmittedAt:      s.now(),
		Status:           models.SubmissionStatusSubmitted,
		Origin:           models.OriginManual,
	}

	inserted, err := s.submissions.CreateIfAbsent(ctx, &submission)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !inserted {
		return dto.SubmissionResponse{}, ErrSubmissionExists
	}

	if task.Status == models.TaskStatusPending {
		if err := s.tasks.UpdateStatus(ctx, task.ID, models.TaskStatusSubmitted); err != nil {
			s.logger.Error().Err(err).Uint("task_id", task.ID).Msg("failed to mark task submitted")
		}
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("task_id", task.ID).
		Uint("student_id", student.ID).
		Msg("submission received")

	if task.Faculty.Email != "" {
		s.notifier.Notify(ctx, NotificationMessage{
			Recipient: task.Faculty.Email,
			Subject:   fmt.Sprintf("New submission for %s", task.Title),
			Body: fmt.Sprintf("%s submitted work for task %q.",
				student.FullName(), task.Title),
			Kind:    "submission_received",
			Payload: map[string]interface{}{"submission_id": submission.ID, "task_id": task.ID},
		})
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.NewSubmissionResponse(submission), nil
	}

	return dto.NewSubmissionResponse(created), nil
}

// readDocument buffers the upload and enforces the size and PDF checks. The
// magic-byte probe catches renamed files that a content-type header would miss.
func (s *submissionService) readDocument(file io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	if !bytes.HasPrefix(data, []byte("%PDF-")) || !mimetype.Detect(data).Is("application/pdf") {
		return nil, ErrNotPDF
	}

	return data, nil
}

// Status answers "where does this student stand on this task". When the
// deadline has passed with no submission it lazily records the zero-grade
// missed sentinel first, so the answer it returns is already durable.
func (s *submissionService) Status(ctx context.Context, taskID, studentID uint) (dto.SubmissionStatusResponse, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionStatusResponse{}, ErrTaskNotFound
		}
		return dto.SubmissionStatusResponse{}, err
	}

	now := s.now()

	submission, err := s.submissions.GetByTaskAndStudent(ctx, taskID, studentID)
	switch {
	case err == nil:
		response := dto.NewSubmissionResponse(submission)
		return dto.SubmissionStatusResponse{
			Submitted:     true,
			DisplayStatus: dto.DeriveDisplayStatus(task, &submission, now),
			Submission:    &response,
		}, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		if !task.IsPastDue(now) {
			return dto.SubmissionStatusResponse{
				Submitted:     false,
				DisplayStatus: dto.DeriveDisplayStatus(task, nil, now),
			}, nil
		}

		missed, err := s.recordMissed(ctx, task, studentID, now)
		if err != nil {
			return dto.SubmissionStatusResponse{}, err
		}
		response := dto.NewSubmissionResponse(missed)
		return dto.SubmissionStatusResponse{
			Submitted:     true,
			DisplayStatus: dto.DeriveDisplayStatus(task, &missed, now),
			Submission:    &response,
		}, nil

	default:
		return dto.SubmissionStatusResponse{}, err
	}
}

// recordMissed writes the sentinel idempotently. A concurrent submit or a
// concurrent status check may win the insert race; either way the surviving
// row is re-read and returned.
func (s *submissionService) recordMissed(ctx context.Context, task models.Task, studentID uint, at time.Time) (models.Submission, error) {
	sentinel := models.NewMissedSubmission(task, studentID, at)

	inserted, err := s.submissions.CreateIfAbsent(ctx, &sentinel)
	if err != nil {
		return models.Submission{}, err
	}
	if inserted {
		observability.MissedSubmissionsRecorded().Inc()
		s.logger.Info().
			Uint("task_id", task.ID).
			Uint("student_id", studentID).
			Msg("missed deadline recorded")
		return s.submissions.GetByID(ctx, sentinel.ID)
	}

	return s.submissions.GetByTaskAndStudent(ctx, task.ID, studentID)
}

// MarkOverdue sweeps the faculty's past-due tasks and records missed
// sentinels for every targeted student who never submitted. It returns the
// number of sentinels created.
func (s *submissionService) MarkOverdue(ctx context.Context, facultyID uint) (int64, error) {
	tasks, err := s.tasks.ListByFaculty(ctx, facultyID)
	if err != nil {
		return 0, err
	}

	now := s.now()
	var created int64

	for _, task := range tasks {
		if !task.IsPastDue(now) {
			continue
		}

		targets, err := s.resolveTargets(ctx, task)
		if err != nil {
			s.logger.Error().Err(err).Uint("task_id", task.ID).Msg("failed to resolve task targets")
			continue
		}

		for _, studentID := range targets {
			sentinel := models.NewMissedSubmission(task, studentID, now)
			inserted, err := s.submissions.CreateIfAbsent(ctx, &sentinel)
			if err != nil {
				s.logger.Error().Err(err).
					Uint("task_id", task.ID).
					Uint("student_id", studentID).
					Msg("failed to record missed deadline")
				continue
			}
			if inserted {
				observability.MissedSubmissionsRecorded().Inc()
				created++
			}
		}
	}

	if created > 0 {
		s.logger.Info().
			Uint("faculty_id", facultyID).
			Int64("created", created).
			Msg("overdue sweep recorded missed submissions")
	}

	return created, nil
}

// resolveTargets lists the student IDs a task addresses.
func (s *submissionService) resolveTargets(ctx context.Context, task models.Task) ([]uint, error) {
	if target := task.Target(); target.Kind == models.TargetSingle {
		return []uint{target.StudentID}, nil
	}

	students, err := s.projects.StudentsByFaculty(ctx, task.FacultyID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(students))
	for _, student := range students {
		ids = append(ids, student.ID)
	}

	return ids, nil
}

func (s *submissionService) ListForFaculty(ctx context.Context, facultyID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListForFaculty(ctx, facultyID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}
