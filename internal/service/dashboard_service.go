package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/acadhub/apms-go-api/internal/dto"
	"github.com/acadhub/apms-go-api/internal/repository"
)

// DashboardService aggregates the admin overview counters.
type DashboardService interface {
	Overview(ctx context.Context) (dto.OverviewResponse, error)
}

type dashboardService struct {
	students  repository.StudentRepository
	faculties repository.FacultyRepository
	projects  repository.ProjectRepository
	tasks     repository.TaskRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(
	students repository.StudentRepository,
	faculties repository.FacultyRepository,
	projects repository.ProjectRepository,
	tasks repository.TaskRepository,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardService{
		students:  students,
		faculties: faculties,
		projects:  projects,
		tasks:     tasks,
		cache:     cache,
		cacheTTL:  ttl,
		logger:    logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func (s *dashboardService) Overview(ctx context.Context) (dto.OverviewResponse, error) {
	const cacheKey = "dashboard:overview"

	tracer := otel.Tracer("github.com/acadhub/apms-go-api/internal/service/dashboard")
	ctx, span := tracer.Start(ctx, "dashboard.overview")
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.OverviewResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				span.SetAttributes(attribute.Bool("dashboard.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read overview cache")
		}
	}

	students, err := s.students.Count(ctx)
	if err != nil {
		return dto.OverviewResponse{}, err
	}
	faculty, err := s.faculties.Count(ctx)
	if err != nil {
		return dto.OverviewResponse{}, err
	}
	projects, err := s.projects.Count(ctx)
	if err != nil {
		return dto.OverviewResponse{}, err
	}
	tasks, err := s.tasks.Count(ctx)
	if err != nil {
		return dto.OverviewResponse{}, err
	}

	response := dto.OverviewResponse{
		Students: students,
		Faculty:  faculty,
		Projects: projects,
		Tasks:    tasks,
	}

	if s.cache != nil {
		if payload, marshalErr := json.Marshal(response); marshalErr == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store overview cache")
			}
		}
	}

	return response, nil
}
