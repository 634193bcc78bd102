package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/acadhub/apms-go-api/internal/models"
)

// TaskRepository defines data operations for tasks.
type TaskRepository interface {
	GetByID(ctx context.Context, id uint) (models.Task, error)
	ListByFaculty(ctx context.Context, facultyID uint) ([]models.Task, error)
	ListForStudent(ctx context.Context, studentID uint, facultyIDs []uint) ([]models.Task, error)
	ListForProject(ctx context.Context, projectID, facultyID uint) ([]models.Task, error)
	BroadcastExists(ctx context.Context, facultyID uint, title string, dueDate time.Time, excludeID uint) (bool, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	UpdateStatus(ctx context.Context, id uint, status models.TaskStatus) error
	DeleteWithSubmissions(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository instantiates the repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Task{}).
		Preload("Faculty").
		Preload("Student").
		Preload("Project")
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (models.Task, error) {
	var task models.Task
	if err := r.baseQuery(ctx).First(&task, id).Error; err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (r *taskRepository) ListByFaculty(ctx context.Context, facultyID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.baseQuery(ctx).
		Where("faculty_id = ?", facultyID).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// ListForStudent returns tasks addressed directly to the student plus
// broadcast tasks from any faculty whose projects include the student.
func (r *taskRepository) ListForStudent(ctx context.Context, studentID uint, facultyIDs []uint) ([]models.Task, error) {
	query := r.baseQuery(ctx)
	if len(facultyIDs) > 0 {
		query = query.Where("student_id = ? OR (student_id IS NULL AND faculty_id IN ?)", studentID, facultyIDs)
	} else {
		query = query.Where("student_id = ?", studentID)
	}

	var tasks []models.Task
	if err := query.Order("due_date ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// ListForProject returns tasks bound to the project plus broadcast tasks
// published by the project's supervising faculty.
func (r *taskRepository) ListForProject(ctx context.Context, projectID, facultyID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.baseQuery(ctx).
		Where("project_id = ? OR (student_id IS NULL AND faculty_id = ?)", projectID, facultyID).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// BroadcastExists reports whether a broadcast task with the same faculty,
// title and due date already exists, ignoring excludeID when non-zero.
func (r *taskRepository) BroadcastExists(ctx context.Context, facultyID uint, title string, dueDate time.Time, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("faculty_id = ?", facultyID).
		Where("title = ?", title).
		Where("due_date = ?", dueDate).
		Where("student_id IS NULL")

	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id uint, status models.TaskStatus) error {
	return r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// DeleteWithSubmissions removes the task and its submissions atomically,
// submissions first, so no orphaned submission can remain on failure.
func (r *taskRepository) DeleteWithSubmissions(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Task{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *taskRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Task{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
