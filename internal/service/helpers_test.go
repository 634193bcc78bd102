package service

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/acadhub/apms-go-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeTaskRepo struct {
	tasks       map[uint]models.Task
	nextID      uint
	statusCalls int
}

func newFakeTaskRepo(tasks ...models.Task) *fakeTaskRepo {
	repo := &fakeTaskRepo{tasks: make(map[uint]models.Task)}
	for _, task := range tasks {
		repo.tasks[task.ID] = task
		if task.ID > repo.nextID {
			repo.nextID = task.ID
		}
	}
	return repo
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id uint) (models.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return models.Task{}, gorm.ErrRecordNotFound
	}
	return task, nil
}

func (f *fakeTaskRepo) ListByFaculty(_ context.Context, facultyID uint) ([]models.Task, error) {
	var out []models.Task
	for _, task := range f.tasks {
		if task.FacultyID == facultyID {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) ListForStudent(_ context.Context, studentID uint, facultyIDs []uint) ([]models.Task, error) {
	faculties := make(map[uint]struct{}, len(facultyIDs))
	for _, id := range facultyIDs {
		faculties[id] = struct{}{}
	}

	var out []models.Task
	for _, task := range f.tasks {
		if task.StudentID != nil && *task.StudentID == studentID {
			out = append(out, task)
			continue
		}
		if task.StudentID == nil {
			if _, ok := faculties[task.FacultyID]; ok {
				out = append(out, task)
			}
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) ListForProject(_ context.Context, projectID, facultyID uint) ([]models.Task, error) {
	var out []models.Task
	for _, task := range f.tasks {
		if task.ProjectID != nil && *task.ProjectID == projectID {
			out = append(out, task)
			continue
		}
		if task.StudentID == nil && task.FacultyID == facultyID {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) BroadcastExists(_ context.Context, facultyID uint, title string, dueDate time.Time, excludeID uint) (bool, error) {
	for _, task := range f.tasks {
		if task.ID == excludeID || task.StudentID != nil {
			continue
		}
		if task.FacultyID == facultyID && task.Title == title && task.DueDate.Equal(dueDate) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTaskRepo) Create(_ context.Context, task *models.Task) error {
	f.nextID++
	task.ID = f.nextID
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeTaskRepo) Update(_ context.Context, task *models.Task) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeTaskRepo) UpdateStatus(_ context.Context, id uint, status models.TaskStatus) error {
	task, ok := f.tasks[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	task.Status = status
	f.tasks[id] = task
	f.statusCalls++
	return nil
}

func (f *fakeTaskRepo) DeleteWithSubmissions(_ context.Context, id uint) error {
	if _, ok := f.tasks[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.tasks)), nil
}

type fakeSubmissionRepo struct {
	submissions      map[uint]models.Submission
	nextID           uint
	autoMissedSweeps []uint
}

func newFakeSubmissionRepo(submissions ...models.Submission) *fakeSubmissionRepo {
	repo := &fakeSubmissionRepo{submissions: make(map[uint]models.Submission)}
	for _, submission := range submissions {
		repo.submissions[submission.ID] = submission
		if submission.ID > repo.nextID {
			repo.nextID = submission.ID
		}
	}
	return repo
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) GetByTaskAndStudent(_ context.Context, taskID, studentID uint) (models.Submission, error) {
	for _, submission := range f.submissions {
		if submission.TaskID == taskID && submission.StudentID == studentID {
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) ListForFaculty(_ context.Context, facultyID uint) ([]models.Submission, error) {
	var out []models.Submission
	for _, submission := range f.submissions {
		if submission.Task.FacultyID == facultyID {
			out = append(out, submission)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) CreateIfAbsent(_ context.Context, submission *models.Submission) (bool, error) {
	for _, existing := range f.submissions {
		if existing.TaskID == submission.TaskID && existing.StudentID == submission.StudentID {
			return false, nil
		}
	}
	f.nextID++
	submission.ID = f.nextID
	f.submissions[submission.ID] = *submission
	return true, nil
}

func (f *fakeSubmissionRepo) Update(_ context.Context, submission *models.Submission) error {
	if _, ok := f.submissions[submission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) DeleteAutoMissedByTask(_ context.Context, taskID uint) (int64, error) {
	f.autoMissedSweeps = append(f.autoMissedSweeps, taskID)
	var removed int64
	for id, submission := range f.submissions {
		if submission.TaskID == taskID && submission.Origin == models.OriginAutoMissed {
			delete(f.submissions, id)
			removed++
		}
	}
	return removed, nil
}

type fakeProjectRepo struct {
	projects       map[uint]models.Project
	studentsByFac  map[uint][]models.Student
	facultiesByStu map[uint][]uint
	membership     map[uint]map[uint]bool
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{
		projects:       make(map[uint]models.Project),
		studentsByFac:  make(map[uint][]models.Student),
		facultiesByStu: make(map[uint][]uint),
		membership:     make(map[uint]map[uint]bool),
	}
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id uint) (models.Project, error) {
	project, ok := f.projects[id]
	if !ok {
		return models.Project{}, gorm.ErrRecordNotFound
	}
	return project, nil
}

func (f *fakeProjectRepo) List(_ context.Context) ([]models.Project, error) {
	var out []models.Project
	for _, project := range f.projects {
		out = append(out, project)
	}
	return out, nil
}

func (f *fakeProjectRepo) ListByFaculty(_ context.Context, facultyID uint) ([]models.Project, error) {
	var out []models.Project
	for _, project := range f.projects {
		if project.FacultyID == facultyID {
			out = append(out, project)
		}
	}
	return out, nil
}

func (f *fakeProjectRepo) ListByStudent(_ context.Context, studentID uint) ([]models.Project, error) {
	var out []models.Project
	for id, project := range f.projects {
		if f.membership[id][studentID] {
			out = append(out, project)
		}
	}
	return out, nil
}

func (f *fakeProjectRepo) HasMember(_ context.Context, projectID, studentID uint) (bool, error) {
	return f.membership[projectID][studentID], nil
}

func (f *fakeProjectRepo) StudentsByFaculty(_ context.Context, facultyID uint) ([]models.Student, error) {
	return f.studentsByFac[facultyID], nil
}

func (f *fakeProjectRepo) FacultyIDsForStudent(_ context.Context, studentID uint) ([]uint, error) {
	return f.facultiesByStu[studentID], nil
}

func (f *fakeProjectRepo) Create(_ context.Context, project *models.Project) error {
	project.ID = uint(len(f.projects) + 1)
	f.projects[project.ID] = *project
	return nil
}

func (f *fakeProjectRepo) UpdateStatus(_ context.Context, id uint, status models.ProjectStatus) error {
	project, ok := f.projects[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	project.Status = status
	f.projects[id] = project
	return nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id uint) error {
	delete(f.projects, id)
	return nil
}

func (f *fakeProjectRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.projects)), nil
}

type fakeStudentRepo struct {
	students map[uint]models.Student
}

func newFakeStudentRepo(students ...models.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: make(map[uint]models.Student)}
	for _, student := range students {
		repo.students[student.ID] = student
	}
	return repo
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id uint) (models.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (f *fakeStudentRepo) GetByEmail(_ context.Context, email string) (models.Student, error) {
	for _, student := range f.students {
		if student.Email == email {
			return student, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (f *fakeStudentRepo) List(_ context.Context) ([]models.Student, error) {
	var out []models.Student
	for _, student := range f.students {
		out = append(out, student)
	}
	return out, nil
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	student.ID = uint(len(f.students) + 1)
	f.students[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) Update(_ context.Context, student *models.Student) error {
	f.students[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) Delete(_ context.Context, id uint) error {
	delete(f.students, id)
	return nil
}

func (f *fakeStudentRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.students)), nil
}

type fakeFacultyRepo struct {
	faculties map[uint]models.Faculty
}

func newFakeFacultyRepo(faculties ...models.Faculty) *fakeFacultyRepo {
	repo := &fakeFacultyRepo{faculties: make(map[uint]models.Faculty)}
	for _, faculty := range faculties {
		repo.faculties[faculty.ID] = faculty
	}
	return repo
}

func (f *fakeFacultyRepo) GetByID(_ context.Context, id uint) (models.Faculty, error) {
	faculty, ok := f.faculties[id]
	if !ok {
		return models.Faculty{}, gorm.ErrRecordNotFound
	}
	return faculty, nil
}

func (f *fakeFacultyRepo) GetByEmail(_ context.Context, email string) (models.Faculty, error) {
	for _, faculty := range f.faculties {
		if faculty.Email == email {
			return faculty, nil
		}
	}
	return models.Faculty{}, gorm.ErrRecordNotFound
}

func (f *fakeFacultyRepo) List(_ context.Context) ([]models.Faculty, error) {
	var out []models.Faculty
	for _, faculty := range f.faculties {
		out = append(out, faculty)
	}
	return out, nil
}

func (f *fakeFacultyRepo) Create(_ context.Context, faculty *models.Faculty) error {
	faculty.ID = uint(len(f.faculties) + 1)
	f.faculties[faculty.ID] = *faculty
	return nil
}

func (f *fakeFacultyRepo) Update(_ context.Context, faculty *models.Faculty) error {
	f.faculties[faculty.ID] = *faculty
	return nil
}

func (f *fakeFacultyRepo) Delete(_ context.Context, id uint) error {
	delete(f.faculties, id)
	return nil
}

func (f *fakeFacultyRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.faculties)), nil
}

type fakeUserRepo struct {
	users map[string]models.User
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

type recordingNotifier struct {
	messages []NotificationMessage
}

func (r *recordingNotifier) Notify(_ context.Context, message NotificationMessage) {
	r.messages = append(r.messages, message)
}

type fakeUploader struct {
	uploads int
	lastLen int
}

func (f *fakeUploader) Upload(_ context.Context, _ string, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.uploads++
	f.lastLen = len(data)
	return "https://files.example/upload", nil
}

func pdfBytes(size int) []byte {
	data := []byte("%PDF-1.7\n")
	if size > len(data) {
		data = append(data, bytes.Repeat([]byte("a"), size-len(data))...)
	}
	return data
}
