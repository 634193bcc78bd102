package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/acadhub/apms-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Faculty{},
		&models.Student{},
		&models.Project{},
		&models.Task{},
		&models.Submission{},
		&models.ChatRoom{},
		&models.ChatMessage{},
	))
	return db
}

func seedTask(t *testing.T, db *gorm.DB, dueDate time.Time, studentID *uint) models.Task {
	t.Helper()
	faculty := models.Faculty{EmployeeID: fmt.Sprintf("EMP-%d", time.Now().UnixNano()), FirstName: "Meera", LastName: "Iyer", Department: "CS", Email: fmt.Sprintf("meera-%d@uni.example", time.Now().UnixNano()), PasswordHash: "x"}
	require.NoError(t, db.Create(&faculty).Error)

	task := models.Task{
		FacultyID:   faculty.ID,
		StudentID:   studentID,
		Title:       "Prototype demo",
		Description: "Demonstrate the working prototype.",
		DueDate:     dueDate,
		TotalMarks:  50,
		Status:      models.TaskStatusPending,
	}
	require.NoError(t, db.Create(&task).Error)
	return task
}

func TestSubmissionRepositoryCreateIfAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	task := seedTask(t, db, time.Now().Add(time.Hour), nil)

	manual := models.Submission{
		TaskID:      task.ID,
		StudentID:   3,
		Description: "first draft",
		SubmittedAt: time.Now(),
		Status:      models.SubmissionStatusSubmitted,
		Origin:      models.OriginManual,
	}
	inserted, err := repo.CreateIfAbsent(context.Background(), &manual)
	require.NoError(t, err)
	require.True(t, inserted)
	require.NotZero(t, manual.ID)

	// A sentinel racing against the stored submission is silently dropped.
	sentinel := models.NewMissedSubmission(task, 3, time.Now())
	inserted, err = repo.CreateIfAbsent(context.Background(), &sentinel)
	require.NoError(t, err)
	require.False(t, inserted)

	stored, err := repo.GetByTaskAndStudent(context.Background(), task.ID, 3)
	require.NoError(t, err)
	require.Equal(t, manual.ID, stored.ID)
	require.Equal(t, models.OriginManual, stored.Origin)

	// A different student still inserts.
	other := models.NewMissedSubmission(task, 4, time.Now())
	inserted, err = repo.CreateIfAbsent(context.Background(), &other)
	require.NoError(t, err)
	require.True(t, inserted)
}

func TestSubmissionRepositoryDeleteAutoMissedByTask(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	task := seedTask(t, db, time.Now().Add(-time.Hour), nil)

	grade := 38.0
	manual := models.Submission{TaskID: task.ID, StudentID: 3, Status: models.SubmissionStatusGraded, Origin: models.OriginManual, Grade: &grade, SubmittedAt: time.Now()}
	require.NoError(t, db.Create(&manual).Error)

	sentinelA := models.NewMissedSubmission(task, 4, time.Now())
	sentinelB := models.NewMissedSubmission(task, 5, time.Now())
	require.NoError(t, db.Create(&sentinelA).Error)
	require.NoError(t, db.Create(&sentinelB).Error)

	removed, err := repo.DeleteAutoMissedByTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)

	survivor, err := repo.GetByTaskAndStudent(context.Background(), task.ID, 3)
	require.NoError(t, err)
	require.Equal(t, models.OriginManual, survivor.Origin)
	require.NotNil(t, survivor.Grade)
	require.Equal(t, 38.0, *survivor.Grade)

	_, err = repo.GetByTaskAndStudent(context.Background(), task.ID, 4)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSubmissionRepositoryListForFaculty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	mine := seedTask(t, db, time.Now().Add(time.Hour), nil)
	other := seedTask(t, db, time.Now().Add(time.Hour), nil)

	require.NoError(t, db.Create(&models.Submission{TaskID: mine.ID, StudentID: 3, SubmittedAt: time.Now().Add(-time.Minute), Origin: models.OriginManual}).Error)
	require.NoError(t, db.Create(&models.Submission{TaskID: mine.ID, StudentID: 4, SubmittedAt: time.Now(), Origin: models.OriginManual}).Error)
	require.NoError(t, db.Create(&models.Submission{TaskID: other.ID, StudentID: 3, SubmittedAt: time.Now(), Origin: models.OriginManual}).Error)

	listed, err := repo.ListForFaculty(context.Background(), mine.FacultyID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, uint(4), listed[0].StudentID, "expected newest submission first")
}
