package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/acadhub/apms-go-api/internal/models"
)

func TestDashboardServiceOverview(t *testing.T) {
	server := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	students := newFakeStudentRepo(models.Student{ID: 3}, models.Student{ID: 4})
	faculties := newFakeFacultyRepo(models.Faculty{ID: 7})
	projects := newFakeProjectRepo()
	projects.projects[5] = models.Project{ID: 5, FacultyID: 7}
	tasks := newFakeTaskRepo(models.Task{ID: 1, FacultyID: 7}, models.Task{ID: 2, FacultyID: 7}, models.Task{ID: 3, FacultyID: 7})

	svc := NewDashboardService(students, faculties, projects, tasks, cache, time.Minute, testLogger())

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), overview.Students)
	require.Equal(t, int64(1), overview.Faculty)
	require.Equal(t, int64(1), overview.Projects)
	require.Equal(t, int64(3), overview.Tasks)
	require.True(t, server.Exists("dashboard:overview"))

	// Later counts come from the cache until the TTL expires.
	students.students[9] = models.Student{ID: 9}
	overview, err = svc.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), overview.Students)

	server.FastForward(2 * time.Minute)
	overview, err = svc.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), overview.Students)
}

func TestDashboardServiceOverviewWithoutCache(t *testing.T) {
	svc := NewDashboardService(newFakeStudentRepo(), newFakeFacultyRepo(), newFakeProjectRepo(), newFakeTaskRepo(), nil, time.Minute, testLogger())

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Zero(t, overview.Students)
	require.Zero(t, overview.Tasks)
}
