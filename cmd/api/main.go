package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/acadhub/apms-go-api/internal/config"
	"github.com/acadhub/apms-go-api/internal/database"
	"github.com/acadhub/apms-go-api/internal/handler"
	"github.com/acadhub/apms-go-api/internal/middleware"
	"github.com/acadhub/apms-go-api/internal/models"
	"github.com/acadhub/apms-go-api/internal/repository"
	"github.com/acadhub/apms-go-api/internal/router"
	"github.com/acadhub/apms-go-api/internal/service"
	cloud "github.com/acadhub/apms-go-api/pkg/cloudinary"
	"github.com/acadhub/apms-go-api/pkg/mailer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Faculty{},
		&models.Project{},
		&models.Task{},
		&models.Submission{},
		&models.ChatRoom{},
		&models.ChatMessage{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notifier := service.NewOutboxNotifier(notificationRepo, natsConn, cfg.EventChannelBase, logger)

	authService := service.NewAuthService(userRepo, studentRepo, facultyRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	rosterService := service.NewRosterService(studentRepo, facultyRepo, validate, logger)
	projectService := service.NewProjectService(projectRepo, studentRepo, facultyRepo, notifier, validate, logger)
	taskService := service.NewTaskService(taskRepo, submissionRepo, projectRepo, studentRepo, facultyRepo, notifier, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, taskRepo, projectRepo, studentRepo, uploader, notifier, validate, cfg.MaxUploadBytes, logger)
	gradingService := service.NewGradingService(submissionRepo, taskRepo, notifier, validate, logger)
	chatService := service.NewChatService(chatRepo, redisClient, cfg.EventChannelBase, natsConn, validate, logger)
	dashboardService := service.NewDashboardService(studentRepo, facultyRepo, projectRepo, taskRepo, redisClient, cfg.OverviewCacheTTL, logger)

	runCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	chatService.Start(runCtx)

	if cfg.SendgridAPIKey != "" {
		mail, err := mailer.New(mailer.Config{
			APIKey:      cfg.SendgridAPIKey,
			FromName:    cfg.MailFromName,
			FromAddress: cfg.MailFromAddress,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create mail service: %v", err)
		}
		dispatcher := service.NewNotificationDispatcher(notificationRepo, natsConn, cfg.EventChannelBase, mail, logger)
		dispatcher.Start(runCtx)
	} else {
		logger.Info().Msg("sendgrid api key not configured, notification delivery disabled")
	}

	authHandler := handler.NewAuthHandler(authService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, gradingService, logger)
	projectHandler := handler.NewProjectHandler(projectService, logger)
	rosterHandler := handler.NewRosterHandler(rosterService, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.MaxUploadBytes) + 1024*1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		TaskHandler:       taskHandler,
		SubmissionHandler: submissionHandler,
		ProjectHandler:    projectHandler,
		RosterHandler:     rosterHandler,
		ChatHandler:       chatHandler,
		DashboardHandler:  dashboardHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, stopWorkers)
}

func waitForShutdown(app *fiber.App, stopWorkers context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
