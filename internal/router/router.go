package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/acadhub/apms-go-api/internal/config"
	"github.com/acadhub/apms-go-api/internal/handler"
	"github.com/acadhub/apms-go-api/internal/middleware"
	"github.com/acadhub/apms-go-api/internal/observability"
	"github.com/acadhub/apms-go-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	TaskHandler       *handler.TaskHandler
	SubmissionHandler *handler.SubmissionHandler
	ProjectHandler    *handler.ProjectHandler
	RosterHandler     *handler.RosterHandler
	ChatHandler       *handler.ChatHandler
	DashboardHandler  *handler.DashboardHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"))
	}

	facultyOnly := middleware.RequireRole(service.RoleAdmin, service.RoleFaculty)
	studentOnly := middleware.RequireRole(service.RoleAdmin, service.RoleStudent)

	if deps.TaskHandler != nil {
		deps.TaskHandler.Register(api.Group("/tasks", jwtMiddleware), facultyOnly)
	}

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api.Group("/submissions", jwtMiddleware), studentOnly, facultyOnly)
	}

	if deps.ProjectHandler != nil {
		deps.ProjectHandler.Register(api.Group("/projects", jwtMiddleware), facultyOnly)
	}

	if deps.RosterHandler != nil {
		admin := middleware.RequireRole(service.RoleAdmin)
		deps.RosterHandler.RegisterStudents(api.Group("/students", jwtMiddleware, admin))
		deps.RosterHandler.RegisterFaculty(api.Group("/faculties", jwtMiddleware, admin))
	}

	if deps.ChatHandler != nil {
		chat := api.Group("/chat", jwtMiddleware)
		deps.ChatHandler.Register(chat)
	}

	if deps.DashboardHandler != nil {
		dashboard := api.Group("/dashboard", jwtMiddleware, middleware.RequireRole(service.RoleAdmin))
		deps.DashboardHandler.Register(dashboard)
	}
}
