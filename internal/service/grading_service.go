package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/acadhub/apms-go-api/internal/dto"
	"github.com/acadhub/apms-go-api/internal/models"
	"github.com/acadhub/apms-go-api/internal/repository"
)

// ErrSubmissionNotFound indicates the submission was not located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrGradeOutOfRange indicates the grade is negative or exceeds the task's
// total marks.
var ErrGradeOutOfRange = errors.New("grade is outside the allowed range")

// ErrGradeOwnershipMismatch indicates the faculty grading the submission does
// not own the underlying task.
var ErrGradeOwnershipMismatch = errors.New("submission belongs to a different faculty's task")

// GradingService encapsulates the faculty grading workflow.
type GradingService interface {
	Grade(ctx context.Context, submissionID, facultyID uint, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	tasks       repository.TaskRepository
	notifier    Notifier
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(
	submissions repository.SubmissionRepository,
	tasks repository.TaskRepository,
	notifier Notifier,
	validator *validator.Validate,
	logger zerolog.Logger,
) GradingService {
	return &gradingService{
		submissions: submissions,
		tasks:       tasks,
		notifier:    notifier,
		validator:   validator,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

func (s *gradingService) Grade(ctx context.Context, submissionID, facultyID uint, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/acadhub/apms-go-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.update")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.faculty_id", int64(facultyID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	if facultyID != 0 && submission.Task.FacultyID != facultyID {
		err := ErrGradeOwnershipMismatch
		span.RecordError(err)
		span.SetStatus(codes.Error, "ownership_mismatch")
		return dto.SubmissionResponse{}, err
	}

	totalMarks := submission.Task.TotalMarks
	if totalMarks <= 0 {
		totalMarks = 100
	}

	grade := *payload.Grade
	if grade < 0 || grade > totalMarks+1e-9 {
		err := ErrGradeOutOfRange
		span.RecordError(err)
		span.SetStatus(codes.Error, "grade_out_of_range")
		return dto.SubmissionResponse{}, err
	}

	submission.Grade = &grade
	submission.Status = models.SubmissionStatusGraded
	if payload.Status != nil {
		submission.Status = models.SubmissionStatus(*payload.Status)
	}
	if payload.FacultyComments != nil {
		submission.FacultyComments = strings.TrimSpace(*payload.FacultyComments)
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	if submission.Status == models.SubmissionStatusGraded {
		if err := s.tasks.UpdateStatus(ctx, submission.TaskID, models.TaskStatusGraded); err != nil {
			s.logger.Error().Err(err).Uint("task_id", submission.TaskID).Msg("failed to mark task graded")
		}
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("task_id", submission.TaskID).
		Float64("grade", grade).
		Msg("submission graded")

	if submission.Student.Email != "" {
		s.notifier.Notify(ctx, NotificationMessage{
			Recipient: submission.Student.Email,
			Subject:   fmt.Sprintf("Your submission for %s was graded", submission.Task.Title),
			Body: fmt.Sprintf("Your submission for task %q received %g out of %g marks.",
				submission.Task.Title, grade, totalMarks),
			Kind:    "submission_graded",
			Payload: map[string]interface{}{"submission_id": submission.ID, "task_id": submission.TaskID},
		})
	}

	return dto.NewSubmissionResponse(submission), nil
}
