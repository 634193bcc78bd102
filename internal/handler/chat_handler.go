package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/acadhub/apms-go-api/internal/dto"
	"github.com/acadhub/apms-go-api/internal/middleware"
	"github.com/acadhub/apms-go-api/internal/service"
	"github.com/acadhub/apms-go-api/internal/utils"
)

// ChatHandler wires chat endpoints including the websocket upgrade.
type ChatHandler struct {
	service service.ChatService
	logger  zerolog.Logger
}

// NewChatHandler creates a chat handler instance.
func NewChatHandler(service service.ChatService, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger.With().Str("component", "chat_handler").Logger(),
	}
}

// Register binds chat routes under the provided router group.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
			c.Locals("request_ctx", ctx)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
	router.Get("/room/:studentId/:facultyId", h.room)
	router.Get("/room/:studentId/:facultyId/messages", h.history)
	router.Post("/room/:studentId/:facultyId/messages", h.send)
	router.Post("/room/:studentId/:facultyId/read", h.markRead)
}

func (h *ChatHandler) handleConnection(conn *websocket.Conn) {
	studentID := websocketQueryUint(conn, "student_id")
	facultyID := websocketQueryUint(conn, "faculty_id")
	if studentID == 0 || facultyID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusBadRequest, "student_id and faculty_id required"))
		_ = conn.Close()
		return
	}

	role := websocketRole(conn)
	if !websocketPairAllowed(conn, role, studentID, facultyID) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusForbidden, "not a member of this room"))
		_ = conn.Close()
		return
	}

	correlation := ""
	if value, ok := conn.Locals("correlation_id").(string); ok {
		correlation = value
	}
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)

	opts := service.ChatConnectionOptions{
		StudentID:     studentID,
		FacultyID:     facultyID,
		Role:          role,
		CorrelationID: correlation,
		Context:       baseCtx,
	}

	h.logger.Info().Uint("student_id", studentID).Uint("faculty_id", facultyID).Msg("chat websocket connected")
	h.service.ServeConnection(conn, opts)
	h.logger.Info().Uint("student_id", studentID).Uint("faculty_id", facultyID).Msg("chat websocket disconnected")
}

func (h *ChatHandler) room(c *fiber.Ctx) error {
	studentID, facultyID, err := h.roomParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	room, err := h.service.Room(c.Context(), studentID, facultyID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "chat room", room)
}

func (h *ChatHandler) history(c *fiber.Ctx) error {
	studentID, facultyID, err := h.roomParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	messages, err := h.service.History(c.Context(), studentID, facultyID, limit)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "chat history", messages)
}

func (h *ChatHandler) send(c *fiber.Ctx) error {
	studentID, facultyID, err := h.roomParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ChatSendRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if role := userRoleFromContext(c); role == service.RoleStudent || role == service.RoleFaculty {
		payload.Sender = role
	}

	message, err := h.service.Send(c.Context(), studentID, facultyID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "message sent", message)
}

func (h *ChatHandler) markRead(c *fiber.Ctx) error {
	studentID, facultyID, err := h.roomParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ChatReadRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if role := userRoleFromContext(c); role == service.RoleStudent || role == service.RoleFaculty {
		payload.Reader = role
	}

	if err := h.service.MarkRead(c.Context(), studentID, facultyID, payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "room marked read", nil)
}

// roomParams resolves the room pair, pinning the caller's own side of the
// pair to their token identity.
func (h *ChatHandler) roomParams(c *fiber.Ctx) (uint, uint, error) {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return 0, 0, err
	}
	facultyID, err := parseUintParam(c, "facultyId")
	if err != nil {
		return 0, 0, err
	}

	return callerStudentID(c, studentID), callerFacultyID(c, facultyID), nil
}

func (h *ChatHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrChatNotAuthorised):
		return utils.SendError(c, fiber.StatusForbidden, "sender not authorised for room")
	case errors.Is(err, service.ErrEmptyMessage):
		return utils.SendError(c, fiber.StatusBadRequest, "message content empty after sanitization")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func websocketQueryUint(conn *websocket.Conn, key string) uint {
	value := strings.TrimSpace(conn.Query(key))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0
	}
	return uint(parsed)
}

func websocketRole(conn *websocket.Conn) string {
	if value, ok := conn.Locals("user_role").(string); ok {
		return value
	}
	return ""
}

// websocketPairAllowed pins the caller to their side of the room pair.
func websocketPairAllowed(conn *websocket.Conn, role string, studentID, facultyID uint) bool {
	userID, _ := conn.Locals("user_id").(uint)
	switch role {
	case service.RoleStudent:
		return userID == studentID
	case service.RoleFaculty:
		return userID == facultyID
	case service.RoleAdmin:
		return true
	default:
		return false
	}
}
