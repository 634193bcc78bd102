package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/acadhub/apms-go-api/internal/middleware"
	"github.com/acadhub/apms-go-api/internal/service"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	return middleware.UserID(c)
}

func userRoleFromContext(c *fiber.Ctx) string {
	return middleware.UserRole(c)
}

// callerFacultyID resolves the faculty identity a request acts as. Faculty
// callers always act as themselves; admins may act on behalf of any faculty
// through the route parameter or payload.
func callerFacultyID(c *fiber.Ctx, requested uint) uint {
	if userRoleFromContext(c) == service.RoleFaculty {
		return userIDFromContext(c)
	}
	return requested
}

// callerStudentID mirrors callerFacultyID for student-scoped routes.
func callerStudentID(c *fiber.Ctx, requested uint) uint {
	if userRoleFromContext(c) == service.RoleStudent {
		return userIDFromContext(c)
	}
	return requested
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
