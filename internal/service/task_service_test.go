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

func uintPtr(v uint) *uint { return &v }

type taskFixtures struct {
	tasks       *fakeTaskRepo
	submissions *fakeSubmissionRepo
	projects    *fakeProjectRepo
	students    *fakeStudentRepo
	faculties   *fakeFacultyRepo
	notifier    *recordingNotifier
}

func newTaskFixtures() taskFixtures {
	projects := newFakeProjectRepo()
	projects.studentsByFac[7] = []models.Student{
		{ID: 3, Email: "asha@uni.example"},
		{ID: 4, Email: "rahul@uni.example"},
	}

	return taskFixtures{
		tasks:       newFakeTaskRepo(),
		submissions: newFakeSubmissionRepo(),
		projects:    projects,
		students: newFakeStudentRepo(
			models.Student{ID: 3, FirstName: "Asha", LastName: "Verma", Email: "asha@uni.example"},
			models.Student{ID: 4, FirstName: "Rahul", LastName: "Singh", Email: "rahul@uni.example"},
		),
		faculties: newFakeFacultyRepo(models.Faculty{ID: 7, FirstName: "Meera", LastName: "Iyer", Email: "meera@uni.example"}),
		notifier:  &recordingNotifier{},
	}
}

func (f taskFixtures) service() TaskService {
	return NewTaskService(
		f.tasks,
		f.submissions,
		f.projects,
		f.students,
		f.faculties,
		f.notifier,
		validator.New(validator.WithRequiredStructEnabled()),
		testLogger(),
	)
}

func assignPayload(studentID *uint) dto.TaskAssignRequest {
	return dto.TaskAssignRequest{
		FacultyID:   7,
		StudentID:   studentID,
		Title:       "Prototype demo",
		Description: "Demonstrate the working prototype.",
		DueDate:     time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		TotalMarks:  50,
	}
}

func TestTaskServiceAssignSingleStudent(t *testing.T) {
	f := newTaskFixtures()
	svc := f.service()

	response, err := svc.Assign(context.Background(), assignPayload(uintPtr(3)))
	require.NoError(t, err)
	require.Equal(t, string(models.TargetSingle), response.Target)
	require.NotNil(t, response.StudentID)
	require.Equal(t, uint(3), *response.StudentID)

	require.Len(t, f.notifier.messages, 1)
	require.Equal(t, "asha@uni.example", f.notifier.messages[0].Recipient)
	require.Equal(t, "task_assigned", f.notifier.messages[0].Kind)
}

func TestTaskServiceAssignBroadcastNotifiesEveryStudent(t *testing.T) {
	f := newTaskFixtures()
	svc := f.service()

	response, err := svc.Assign(context.Background(), assignPayload(nil))
	require.NoError(t, err)
	require.Equal(t, string(models.TargetBroadcast), response.Target)
	require.Len(t, f.notifier.messages, 2)
}

func TestTaskServiceAssignDuplicateBroadcast(t *testing.T) {
	f := newTaskFixtures()
	svc := f.service()
	payload := assignPayload(nil)

	_, err := svc.Assign(context.Background(), payload)
	require.NoError(t, err)

	_, err = svc.Assign(context.Background(), payload)
	require.ErrorIs(t, err, ErrDuplicateBroadcastTask)
	require.Len(t, f.tasks.tasks, 1)
}

func TestTaskServiceAssignBroadcastWithoutStudents(t *testing.T) {
	f := newTaskFixtures()
	f.projects.studentsByFac[7] = nil
	svc := f.service()

	_, err := svc.Assign(context.Background(), assignPayload(nil))
	require.ErrorIs(t, err, ErrNoStudentsForFaculty)
	require.Empty(t, f.tasks.tasks)
}

func TestTaskServiceAssignStudentOutsideProject(t *testing.T) {
	f := newTaskFixtures()
	f.projects.projects[5] = models.Project{ID: 5, FacultyID: 7, Title: "Smart irrigation"}
	f.projects.membership[5] = map[uint]bool{4: true}
	svc := f.service()

	payload := assignPayload(uintPtr(3))
	payload.ProjectID = uintPtr(5)

	_, err := svc.Assign(context.Background(), payload)
	require.ErrorIs(t, err, ErrInvalidProjectForStudent)
}

func TestTaskServiceAssignUnknownStudent(t *testing.T) {
	f := newTaskFixtures()
	svc := f.service()

	_, err := svc.Assign(context.Background(), assignPayload(uintPtr(99)))
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestTaskServiceAssignRejectsBadDueDate(t *testing.T) {
	f := newTaskFixtures()
	svc := f.service()

	payload := assignPayload(uintPtr(3))
	payload.DueDate = "next tuesday"

	_, err := svc.Assign(context.Background(), payload)
	require.ErrorIs(t, err, ErrInvalidDueDate)
}

func TestTaskServiceUpdateOwnershipMismatch(t *testing.T) {
	f := newTaskFixtures()
	svc := f.service()

	created, err := svc.Assign(context.Background(), assignPayload(uintPtr(3)))
	require.NoError(t, err)

	payload := dto.TaskUpdateRequest{
		FacultyID:   9,
		StudentID:   uintPtr(3),
		Title:       "Prototype demo",
		Description: "Demonstrate the working prototype.",
		DueDate:     time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		TotalMarks:  50,
	}
	_, err = svc.Update(context.Background(), created.ID, payload)
	require.ErrorIs(t, err, ErrTaskOwnershipMismatch)
}

func TestTaskServiceUpdateExtendedDeadlineClearsAutoMissed(t *testing.T) {
	f := newTaskFixtures()
	svc := f.service()

	created, err := svc.Assign(context.Background(), assignPayload(uintPtr(3)))
	require.NoError(t, err)

	// One stale sentinel and one real graded submission against the task.
	grade := 38.0
	f.submissions.submissions[1] = models.Submission{ID: 1, TaskID: created.ID, StudentID: 3, Origin: models.OriginAutoMissed, Status: models.SubmissionStatusGraded}
	f.submissions.submissions[2] = models.Submission{ID: 2, TaskID: created.ID, StudentID: 4, Origin: models.OriginManual, Status: models.SubmissionStatusGraded, Grade: &grade}

	payload := dto.TaskUpdateRequest{
		FacultyID:   7,
		StudentID:   uintPtr(3),
		Title:       "Prototype demo",
		Description: "Demonstrate the working prototype.",
		DueDate:     time.Now().Add(96 * time.Hour).UTC().Format(time.RFC3339),
		TotalMarks:  50,
	}
	_, err = svc.Update(context.Background(), created.ID, payload)
	require.NoError(t, err)

	require.Equal(t, []uint{created.ID}, f.submissions.autoMissedSweeps)
	_, err = f.submissions.GetByID(context.Background(), 1)
	require.Error(t, err)
	survivor, err := f.submissions.GetByID(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, models.OriginManual, survivor.Origin)
}

func TestTaskServiceUpdatePastDueDateKeepsMissedRecords(t *testing.T) {
	f := newTaskFixtures()
	f.tasks = newFakeTaskRepo(models.Task{
		ID:          1,
		FacultyID:   7,
		StudentID:   uintPtr(3),
		Title:       "Prototype demo",
		Description: "Demonstrate the working prototype.",
		DueDate:     time.Now().Add(-48 * time.Hour),
		TotalMarks:  50,
	})
	f.submissions.submissions[1] = models.Submission{ID: 1, TaskID: 1, StudentID: 3, Origin: models.OriginAutoMissed, Status: models.SubmissionStatusGraded}
	svc := f.service()

	// Moving the due date later while it still lies in the past does not
	// reopen the task, so the recorded missed row stays.
	payload := dto.TaskUpdateRequest{
		FacultyID:   7,
		StudentID:   uintPtr(3),
		Title:       "Prototype demo",
		Description: "Demonstrate the working prototype.",
		DueDate:     time.Now().Add(-24 * time.Hour).UTC().Format(time.RFC3339),
		TotalMarks:  50,
	}
	_, err := svc.Update(context.Background(), 1, payload)
	require.NoError(t, err)
	require.Empty(t, f.submissions.autoMissedSweeps)

	sentinel, err := f.submissions.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, models.OriginAutoMissed, sentinel.Origin)
}

func TestTaskServiceDeleteChecksOwnership(t *testing.T) {
	f := newTaskFixtures()
	svc := f.service()

	created, err := svc.Assign(context.Background(), assignPayload(uintPtr(3)))
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), created.ID, 9), ErrTaskOwnershipMismatch)
	require.NoError(t, svc.Delete(context.Background(), created.ID, 7))
	require.ErrorIs(t, svc.Delete(context.Background(), created.ID, 7), ErrTaskNotFound)
}

func TestTaskServiceListForStudentIncludesBroadcasts(t *testing.T) {
	f := newTaskFixtures()
	f.projects.facultiesByStu[3] = []uint{7}
	svc := f.service()

	_, err := svc.Assign(context.Background(), assignPayload(uintPtr(3)))
	require.NoError(t, err)

	broadcast := assignPayload(nil)
	broadcast.Title = "Weekly report"
	_, err = svc.Assign(context.Background(), broadcast)
	require.NoError(t, err)

	listed, err := svc.ListForStudent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// A student outside the faculty's projects only sees direct assignments.
	listed, err = svc.ListForStudent(context.Background(), 4)
	require.NoError(t, err)
	require.Empty(t, listed)
}
