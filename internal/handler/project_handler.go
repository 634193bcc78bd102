package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadhub/apms-go-api/internal/dto"
	"github.com/acadhub/apms-go-api/internal/service"
	"github.com/acadhub/apms-go-api/internal/utils"
)

// ProjectHandler wires project HTTP routes.
type ProjectHandler struct {
	service service.ProjectService
	logger  zerolog.Logger
}

// NewProjectHandler constructs the handler.
func NewProjectHandler(service service.ProjectService, logger zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{
		service: service,
		logger:  logger.With().Str("component", "project_handler").Logger(),
	}
}

// Register attaches project endpoints to the router group. Mutations pass
// through the provided guard.
func (h *ProjectHandler) Register(router fiber.Router, facultyOnly fiber.Handler) {
	router.Post("", facultyOnly, h.assign)
	router.Get("", h.list)
	router.Get("/faculty/:facultyId", h.listByFaculty)
	router.Get("/student/:studentId", h.listByStudent)
	router.Get("/:id", h.get)
	router.Patch("/:id/status", facultyOnly, h.updateStatus)
	router.Delete("/:id", facultyOnly, h.delete)
}

func (h *ProjectHandler) assign(c *fiber.Ctx) error {
	var payload dto.ProjectAssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	payload.FacultyID = callerFacultyID(c, payload.FacultyID)

	project, err := h.service.Assign(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "project assigned", project)
}

func (h *ProjectHandler) list(c *fiber.Ctx) error {
	projects, err := h.service.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "projects retrieved", projects)
}

func (h *ProjectHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	project, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "project retrieved", project)
}

func (h *ProjectHandler) listByFaculty(c *fiber.Ctx) error {
	facultyID, err := parseUintParam(c, "facultyId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	projects, err := h.service.ListByFaculty(c.Context(), callerFacultyID(c, facultyID))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "projects retrieved", projects)
}

func (h *ProjectHandler) listByStudent(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	projects, err := h.service.ListByStudent(c.Context(), callerStudentID(c, studentID))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "projects retrieved", projects)
}

func (h *ProjectHandler) updateStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ProjectStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	project, err := h.service.UpdateStatus(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "project status updated", project)
}

func (h *ProjectHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "project deleted", fiber.Map{"id": id})
}

func (h *ProjectHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "project not found")
	case errors.Is(err, service.ErrFacultyNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "faculty not found")
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrInvalidEndDate):
		return utils.SendError(c, fiber.StatusBadRequest, "end date must be a valid RFC 3339 timestamp")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
