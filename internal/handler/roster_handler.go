package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadhub/apms-go-api/internal/dto"
	"github.com/acadhub/apms-go-api/internal/service"
	"github.com/acadhub/apms-go-api/internal/utils"
)

// RosterHandler wires student and faculty roster routes.
type RosterHandler struct {
	service service.RosterService
	logger  zerolog.Logger
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(service service.RosterService, logger zerolog.Logger) *RosterHandler {
	return &RosterHandler{
		service: service,
		logger:  logger.With().Str("component", "roster_handler").Logger(),
	}
}

// RegisterStudents attaches student roster endpoints to the router group.
func (h *RosterHandler) RegisterStudents(router fiber.Router) {
	router.Post("", h.createStudent)
	router.Get("", h.listStudents)
	router.Get("/:id", h.getStudent)
	router.Patch("/:id", h.updateStudent)
	router.Delete("/:id", h.deleteStudent)
}

// RegisterFaculty attaches faculty roster endpoints to the router group.
func (h *RosterHandler) RegisterFaculty(router fiber.Router) {
	router.Post("", h.createFaculty)
	router.Get("", h.listFaculty)
	router.Get("/:id", h.getFaculty)
	router.Patch("/:id", h.updateFaculty)
	router.Delete("/:id", h.deleteFaculty)
}

func (h *RosterHandler) createStudent(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	student, err := h.service.CreateStudent(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "student registered", student)
}

func (h *RosterHandler) listStudents(c *fiber.Ctx) error {
	students, err := h.service.ListStudents(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *RosterHandler) getStudent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	student, err := h.service.GetStudent(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "student retrieved", student)
}

func (h *RosterHandler) updateStudent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.StudentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	student, err := h.service.UpdateStudent(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "student updated", student)
}

func (h *RosterHandler) deleteStudent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteStudent(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "student removed", fiber.Map{"id": id})
}

func (h *RosterHandler) createFaculty(c *fiber.Ctx) error {
	var payload dto.FacultyCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	faculty, err := h.service.CreateFaculty(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "faculty registered", faculty)
}

func (h *RosterHandler) listFaculty(c *fiber.Ctx) error {
	faculty, err := h.service.ListFaculty(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "faculty retrieved", faculty)
}

func (h *RosterHandler) getFaculty(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	faculty, err := h.service.GetFaculty(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "faculty retrieved", faculty)
}

func (h *RosterHandler) updateFaculty(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.FacultyUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	faculty, err := h.service.UpdateFaculty(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "faculty updated", faculty)
}

func (h *RosterHandler) deleteFaculty(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteFaculty(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "faculty removed", fiber.Map{"id": id})
}

func (h *RosterHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrFacultyNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "faculty not found")
	case errors.Is(err, service.ErrEmailTaken):
		return utils.SendError(c, fiber.StatusConflict, "email is already registered")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
