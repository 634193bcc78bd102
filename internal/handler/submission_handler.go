package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadhub/apms-go-api/internal/dto"
	"github.com/acadhub/apms-go-api/internal/service"
	"github.com/acadhub/apms-go-api/internal/utils"
)

// SubmissionHandler wires submission and grading HTTP routes.
type SubmissionHandler struct {
	submissions service.SubmissionService
	grading     service.GradingService
	logger      zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(submissions service.SubmissionService, grading service.GradingService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		grading:     grading,
		logger:      logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission endpoints to the router group. Students
// submit; grading and the overdue sweep are faculty operations.
func (h *SubmissionHandler) Register(router fiber.Router, studentOnly, facultyOnly fiber.Handler) {
	router.Post("", studentOnly, h.submit)
	router.Get("/status/:taskId/:studentId", h.status)
	router.Put("/:id/grade", facultyOnly, h.grade)
	router.Post("/mark-overdue/:facultyId", facultyOnly, h.markOverdue)
	router.Get("/faculty/:facultyId", facultyOnly, h.listForFaculty)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	payload := dto.SubmitTaskRequest{
		Description: c.FormValue("description"),
	}
	if raw := c.FormValue("student_id"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			payload.StudentID = uint(parsed)
		}
	}
	if raw := c.FormValue("task_id"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			payload.TaskID = uint(parsed)
		}
	}
	if raw := c.FormValue("project_id"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			projectID := uint(parsed)
			payload.ProjectID = &projectID
		}
	}
	payload.StudentID = callerStudentID(c, payload.StudentID)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "submission file missing")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read submission file")
	}
	defer func() {
		_ = file.Close()
	}()

	submission, err := h.submissions.Submit(c.Context(), payload, fileHeader.Filename, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "submission recorded", submission)
}

func (h *SubmissionHandler) status(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "taskId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	status, err := h.submissions.Status(c.Context(), taskID, callerStudentID(c, studentID))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission status", status)
}

func (h *SubmissionHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GradeSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.grading.Grade(c.Context(), id, callerFacultyID(c, 0), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission graded", submission)
}

func (h *SubmissionHandler) markOverdue(c *fiber.Ctx) error {
	facultyID, err := parseUintParam(c, "facultyId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	created, err := h.submissions.MarkOverdue(c.Context(), callerFacultyID(c, facultyID))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "overdue tasks processed", fiber.Map{"missed_recorded": created})
}

func (h *SubmissionHandler) listForFaculty(c *fiber.Ctx) error {
	facultyID, err := parseUintParam(c, "facultyId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.submissions.ListForFaculty(c.Context(), callerFacultyID(c, facultyID))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "task not found")
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrSubmissionExists):
		return utils.SendError(c, fiber.StatusConflict, "a submission already exists for this task")
	case errors.Is(err, service.ErrFileTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds the maximum allowed size")
	case errors.Is(err, service.ErrNotPDF):
		return utils.SendError(c, fiber.StatusBadRequest, "only PDF documents are accepted")
	case errors.Is(err, service.ErrEmptyFile):
		return utils.SendError(c, fiber.StatusBadRequest, "file must not be empty")
	case errors.Is(err, service.ErrGradeOutOfRange):
		return utils.SendError(c, fiber.StatusBadRequest, "grade is outside the allowed range")
	case errors.Is(err, service.ErrGradeOwnershipMismatch):
		return utils.SendError(c, fiber.StatusForbidden, "submission belongs to a different faculty's task")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
