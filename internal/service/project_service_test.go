package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/acadhub/apms-go-api/internal/dto"
	"github.com/acadhub/apms-go-api/internal/models"
)

func newProjectService(projects *fakeProjectRepo, students *fakeStudentRepo, faculties *fakeFacultyRepo, notifier *recordingNotifier) ProjectService {
	return NewProjectService(projects, students, faculties, notifier, validator.New(validator.WithRequiredStructEnabled()), testLogger())
}

func projectAssignPayload(studentIDs []uint) dto.ProjectAssignRequest {
	return dto.ProjectAssignRequest{
		Title:       "Smart irrigation",
		Description: "An IoT system scheduling irrigation from soil sensors.",
		FacultyID:   7,
		StudentIDs:  studentIDs,
		Domain:      "IoT",
		TechStack:   "Go, MQTT, TimescaleDB",
		EndDate:     time.Now().Add(90 * 24 * time.Hour).UTC().Format(time.RFC3339),
	}
}

func TestProjectServiceAssignTeam(t *testing.T) {
	projects := newFakeProjectRepo()
	students := newFakeStudentRepo(
		models.Student{ID: 3, FirstName: "Asha", LastName: "Verma", Email: "asha@uni.example"},
		models.Student{ID: 4, FirstName: "Rahul", LastName: "Singh", Email: "rahul@uni.example"},
	)
	faculties := newFakeFacultyRepo(models.Faculty{ID: 7, FirstName: "Meera", LastName: "Iyer"})
	notifier := &recordingNotifier{}
	svc := newProjectService(projects, students, faculties, notifier)

	response, err := svc.Assign(context.Background(), projectAssignPayload([]uint{3, 4}))
	require.NoError(t, err)
	require.NotZero(t, response.ID)
	require.Equal(t, string(models.ProjectStatusPending), response.Status)

	require.Len(t, notifier.messages, 2)
	require.Equal(t, "project_assigned", notifier.messages[0].Kind)
}

func TestProjectServiceAssignUnknownStudent(t *testing.T) {
	projects := newFakeProjectRepo()
	students := newFakeStudentRepo(models.Student{ID: 3})
	faculties := newFakeFacultyRepo(models.Faculty{ID: 7})
	svc := newProjectService(projects, students, faculties, &recordingNotifier{})

	_, err := svc.Assign(context.Background(), projectAssignPayload([]uint{3, 99}))
	require.ErrorIs(t, err, ErrStudentNotFound)
	require.Empty(t, projects.projects)
}

func TestProjectServiceAssignUnknownFaculty(t *testing.T) {
	svc := newProjectService(newFakeProjectRepo(), newFakeStudentRepo(models.Student{ID: 3}), newFakeFacultyRepo(), &recordingNotifier{})

	_, err := svc.Assign(context.Background(), projectAssignPayload([]uint{3}))
	require.ErrorIs(t, err, ErrFacultyNotFound)
}

func TestProjectServiceAssignRejectsBadEndDate(t *testing.T) {
	svc := newProjectService(newFakeProjectRepo(), newFakeStudentRepo(models.Student{ID: 3}), newFakeFacultyRepo(models.Faculty{ID: 7}), &recordingNotifier{})

	payload := projectAssignPayload([]uint{3})
	payload.EndDate = "eventually"

	_, err := svc.Assign(context.Background(), payload)
	require.ErrorIs(t, err, ErrInvalidEndDate)
}

func TestProjectServiceUpdateStatus(t *testing.T) {
	projects := newFakeProjectRepo()
	projects.projects[5] = models.Project{ID: 5, FacultyID: 7, Title: "Smart irrigation", Status: models.ProjectStatusPending}
	svc := newProjectService(projects, newFakeStudentRepo(), newFakeFacultyRepo(), &recordingNotifier{})

	response, err := svc.UpdateStatus(context.Background(), 5, dto.ProjectStatusRequest{Status: "Completed"})
	require.NoError(t, err)
	require.Equal(t, string(models.ProjectStatusCompleted), response.Status)

	_, err = svc.UpdateStatus(context.Background(), 6, dto.ProjectStatusRequest{Status: "Completed"})
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectServiceDelete(t *testing.T) {
	projects := newFakeProjectRepo()
	projects.projects[5] = models.Project{ID: 5, FacultyID: 7}
	svc := newProjectService(projects, newFakeStudentRepo(), newFakeFacultyRepo(), &recordingNotifier{})

	require.NoError(t, svc.Delete(context.Background(), 5))
	require.ErrorIs(t, svc.Delete(context.Background(), 5), ErrProjectNotFound)
}
