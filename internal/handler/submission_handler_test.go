package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/acadhub/apms-go-api/internal/config"
	"github.com/acadhub/apms-go-api/internal/dto"
	"github.com/acadhub/apms-go-api/internal/handler"
	"github.com/acadhub/apms-go-api/internal/models"
	"github.com/acadhub/apms-go-api/internal/repository"
	"github.com/acadhub/apms-go-api/internal/router"
	"github.com/acadhub/apms-go-api/internal/service"
)

type portalTestUploader struct{}

func (portalTestUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	return "https://files.test/" + name, nil
}

type portalTestNotifier struct{}

func (portalTestNotifier) Notify(context.Context, service.NotificationMessage) {}

type portal struct {
	db *gorm.DB

	tasks       service.TaskService
	submissions service.SubmissionService
	grading     service.GradingService
}

func setupPortal(t *testing.T) *portal {
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
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)
	notifier := portalTestNotifier{}

	taskRepo := repository.NewTaskRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)

	return &portal{
		db:          db,
		tasks:       service.NewTaskService(taskRepo, submissionRepo, projectRepo, studentRepo, facultyRepo, notifier, validate, logger),
		submissions: service.NewSubmissionService(submissionRepo, taskRepo, projectRepo, studentRepo, portalTestUploader{}, notifier, validate, 1<<20, logger),
		grading:     service.NewGradingService(submissionRepo, taskRepo, notifier, validate, logger),
	}
}

// app builds a fiber application whose requests all carry the given identity.
func (p *portal) app(role string, userID uint) *fiber.App {
	logger := zerolog.New(io.Discard)
	app := fiber.New()

	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		TaskHandler:       handler.NewTaskHandler(p.tasks, logger),
		SubmissionHandler: handler.NewSubmissionHandler(p.submissions, p.grading, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", userID)
			c.Locals("user_role", role)
			return c.Next()
		},
	})

	return app
}

func (p *portal) seedRoster(t *testing.T) (models.Faculty, models.Student) {
	t.Helper()
	faculty := models.Faculty{EmployeeID: "EMP-881", FirstName: "Meera", LastName: "Iyer", Department: "CS", Email: "meera@uni.example", PasswordHash: "x"}
	require.NoError(t, p.db.Create(&faculty).Error)
	student := models.Student{EnrollmentNo: "EN-2031", FirstName: "Asha", LastName: "Verma", Class: "CS-7A", Email: "asha@uni.example", PasswordHash: "x"}
	require.NoError(t, p.db.Create(&student).Error)
	return faculty, student
}

func decodeEnvelope(t *testing.T, resp *http.Response, data interface{}) (bool, string) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	if data != nil && len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
	return envelope.Success, envelope.Message
}

func multipartSubmission(t *testing.T, taskID, studentID uint, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("task_id", strconv.FormatUint(uint64(taskID), 10)))
	require.NoError(t, writer.WriteField("student_id", strconv.FormatUint(uint64(studentID), 10)))
	require.NoError(t, writer.WriteField("description", "final report"))
	part, err := writer.CreateFormFile("file", "report.pdf")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func pdfDocument() []byte {
	return append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte("a"), 256)...)
}

func TestSubmissionLifecycle(t *testing.T) {
	p := setupPortal(t)
	faculty, student := p.seedRoster(t)

	// Faculty assigns a task directly to the student.
	assignBody, err := json.Marshal(map[string]interface{}{
		"faculty_id":  faculty.ID,
		"student_id":  student.ID,
		"task_title":  "Final report",
		"description": "Submit the final project report.",
		"due_date":    time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		"total_marks": 50,
	})
	require.NoError(t, err)

	facultyApp := p.app(service.RoleFaculty, faculty.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewReader(assignBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := facultyApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var task dto.TaskResponse
	success, message := decodeEnvelope(t, resp, &task)
	require.True(t, success)
	require.Equal(t, "task assigned", message)
	require.NotZero(t, task.ID)

	// The student uploads a PDF.
	studentApp := p.app(service.RoleStudent, student.ID)
	body, contentType := multipartSubmission(t, task.ID, student.ID, pdfDocument())
	req = httptest.NewRequest(http.MethodPost, "/api/v1/submissions", body)
	req.Header.Set("Content-Type", contentType)
	resp, err = studentApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var submission dto.SubmissionResponse
	success, _ = decodeEnvelope(t, resp, &submission)
	require.True(t, success)
	require.NotZero(t, submission.ID)
	require.Equal(t, "https://files.test/report.pdf", submission.FileURL)

	// A second upload for the same task conflicts.
	body, contentType = multipartSubmission(t, task.ID, student.ID, pdfDocument())
	req = httptest.NewRequest(http.MethodPost, "/api/v1/submissions", body)
	req.Header.Set("Content-Type", contentType)
	resp, err = studentApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	_, _ = decodeEnvelope(t, resp, nil)

	// The faculty grades the submission.
	gradeBody, err := json.Marshal(map[string]interface{}{"grade": 42, "faculty_comments": "Well structured."})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPut, "/api/v1/submissions/"+strconv.FormatUint(uint64(submission.ID), 10)+"/grade", bytes.NewReader(gradeBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = facultyApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var graded dto.SubmissionResponse
	success, _ = decodeEnvelope(t, resp, &graded)
	require.True(t, success)
	require.NotNil(t, graded.Grade)
	require.Equal(t, 42.0, *graded.Grade)
	require.Equal(t, string(models.SubmissionStatusGraded), graded.Status)

	// The status endpoint reflects the grade.
	statusURL := fmt.Sprintf("/api/v1/submissions/status/%d/%d", task.ID, student.ID)
	req = httptest.NewRequest(http.MethodGet, statusURL, nil)
	resp, err = studentApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var status dto.SubmissionStatusResponse
	success, _ = decodeEnvelope(t, resp, &status)
	require.True(t, success)
	require.True(t, status.Submitted)
	require.Equal(t, "Graded: 42/50", status.DisplayStatus)
}

func TestSubmissionStatusRecordsMissedDeadline(t *testing.T) {
	p := setupPortal(t)
	faculty, student := p.seedRoster(t)

	task := models.Task{
		FacultyID:   faculty.ID,
		StudentID:   &student.ID,
		Title:       "Overdue report",
		Description: "Already past its deadline.",
		DueDate:     time.Now().Add(-time.Hour),
		TotalMarks:  50,
		Status:      models.TaskStatusPending,
	}
	require.NoError(t, p.db.Create(&task).Error)

	studentApp := p.app(service.RoleStudent, student.ID)
	statusURL := fmt.Sprintf("/api/v1/submissions/status/%d/%d", task.ID, student.ID)
	req := httptest.NewRequest(http.MethodGet, statusURL, nil)
	resp, err := studentApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var status dto.SubmissionStatusResponse
	success, _ := decodeEnvelope(t, resp, &status)
	require.True(t, success)
	require.True(t, status.Submitted)
	require.Equal(t, "Missed", status.DisplayStatus)
	require.NotNil(t, status.Submission)
	require.Equal(t, string(models.OriginAutoMissed), status.Submission.Origin)

	var count int64
	require.NoError(t, p.db.Model(&models.Submission{}).Where("task_id = ?", task.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestSubmissionRoutesEnforceRoles(t *testing.T) {
	p := setupPortal(t)
	faculty, student := p.seedRoster(t)

	// Students cannot assign tasks.
	studentApp := p.app(service.RoleStudent, student.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := studentApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Faculty cannot submit work.
	facultyApp := p.app(service.RoleFaculty, faculty.ID)
	body, contentType := multipartSubmission(t, 1, student.ID, pdfDocument())
	req = httptest.NewRequest(http.MethodPost, "/api/v1/submissions", body)
	req.Header.Set("Content-Type", contentType)
	resp, err = facultyApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGradeImpersonationBlocked(t *testing.T) {
	p := setupPortal(t)
	faculty, student := p.seedRoster(t)

	other := models.Faculty{EmployeeID: "EMP-882", FirstName: "Nikhil", LastName: "Rao", Department: "CS", Email: "nikhil@uni.example", PasswordHash: "x"}
	require.NoError(t, p.db.Create(&other).Error)

	task := models.Task{FacultyID: faculty.ID, StudentID: &student.ID, Title: "Report", Description: "d", DueDate: time.Now().Add(time.Hour), TotalMarks: 50}
	require.NoError(t, p.db.Create(&task).Error)
	submission := models.Submission{TaskID: task.ID, StudentID: student.ID, Origin: models.OriginManual, Status: models.SubmissionStatusSubmitted, SubmittedAt: time.Now()}
	require.NoError(t, p.db.Create(&submission).Error)

	// Another faculty cannot grade work against a task they do not own.
	otherApp := p.app(service.RoleFaculty, other.ID)
	gradeBody, err := json.Marshal(map[string]interface{}{"grade": 10})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/submissions/%d/grade", submission.ID), bytes.NewReader(gradeBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := otherApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// An admin may grade on any task.
	adminApp := p.app(service.RoleAdmin, 1)
	req = httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/submissions/%d/grade", submission.ID), bytes.NewReader(gradeBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = adminApp.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
