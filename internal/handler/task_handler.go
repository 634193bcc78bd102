package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadhub/apms-go-api/internal/dto"
	"github.com/acadhub/apms-go-api/internal/service"
	"github.com/acadhub/apms-go-api/internal/utils"
)

// TaskHandler wires task assignment HTTP routes.
type TaskHandler struct {
	service service.TaskService
	logger  zerolog.Logger
}

// NewTaskHandler constructs the handler.
func NewTaskHandler(service service.TaskService, logger zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		service: service,
		logger:  logger.With().Str("component", "task_handler").Logger(),
	}
}

// Register attaches task endpoints to the router group. Mutations pass
// through the provided guard.
func (h *TaskHandler) Register(router fiber.Router, facultyOnly fiber.Handler) {
	router.Post("", facultyOnly, h.assign)
	router.Get("/faculty/:facultyId", h.listByFaculty)
	router.Get("/student/:studentId", h.listForStudent)
	router.Get("/project/:projectId", h.listForProject)
	router.Get("/:id", h.get)
	router.Put("/:id", facultyOnly, h.update)
	router.Delete("/:id", facultyOnly, h.delete)
}

func (h *TaskHandler) assign(c *fiber.Ctx) error {
	var payload dto.TaskAssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	payload.FacultyID = callerFacultyID(c, payload.FacultyID)

	task, err := h.service.Assign(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "task assigned", task)
}

func (h *TaskHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	task, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "task retrieved", task)
}

func (h *TaskHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.TaskUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	payload.FacultyID = callerFacultyID(c, payload.FacultyID)

	task, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "task updated", task)
}

func (h *TaskHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id, callerFacultyID(c, 0)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "task deleted", fiber.Map{"id": id})
}

func (h *TaskHandler) listByFaculty(c *fiber.Ctx) error {
	facultyID, err := parseUintParam(c, "facultyId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	tasks, err := h.service.ListByFaculty(c.Context(), callerFacultyID(c, facultyID))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "tasks retrieved", tasks)
}

func (h *TaskHandler) listForStudent(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	tasks, err := h.service.ListForStudent(c.Context(), callerStudentID(c, studentID))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "tasks retrieved", tasks)
}

func (h *TaskHandler) listForProject(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "projectId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	tasks, err := h.service.ListForProject(c.Context(), projectID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "tasks retrieved", tasks)
}

func (h *TaskHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "task not found")
	case errors.Is(err, service.ErrFacultyNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "faculty not found")
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrProjectNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "project not found")
	case errors.Is(err, service.ErrInvalidProjectForStudent):
		return utils.SendError(c, fiber.StatusBadRequest, "student is not a member of the project")
	case errors.Is(err, service.ErrDuplicateBroadcastTask):
		return utils.SendError(c, fiber.StatusConflict, "an identical broadcast task already exists")
	case errors.Is(err, service.ErrNoStudentsForFaculty):
		return utils.SendError(c, fiber.StatusBadRequest, "no students found under this faculty")
	case errors.Is(err, service.ErrTaskOwnershipMismatch):
		return utils.SendError(c, fiber.StatusForbidden, "task belongs to a different faculty")
	case errors.Is(err, service.ErrInvalidDueDate):
		return utils.SendError(c, fiber.StatusBadRequest, "due date must be a valid RFC 3339 timestamp")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
