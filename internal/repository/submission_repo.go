package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acadhub/apms-go-api/internal/models"
)

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByTaskAndStudent(ctx context.Context, taskID, studentID uint) (models.Submission, error)
	ListForFaculty(ctx context.Context, facultyID uint) ([]models.Submission, error)
	CreateIfAbsent(ctx context.Context, submission *models.Submission) (bool, error)
	Update(ctx context.Context, submission *models.Submission) error
	DeleteAutoMissedByTask(ctx context.Context, taskID uint) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Task").
		Preload("Student").
		Preload("Project")
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByTaskAndStudent(ctx context.Context, taskID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).
		Where("task_id = ?", taskID).
		Where("student_id = ?", studentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

// ListForFaculty returns every submission against the faculty's tasks.
func (r *submissionRepository) ListForFaculty(ctx context.Context, facultyID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.baseQuery(ctx).
		Joins("JOIN tasks ON tasks.id = submissions.task_id").
		Where("tasks.faculty_id = ?", facultyID).
		Order("submissions.submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

// CreateIfAbsent inserts the submission unless a row already exists for the
// same (task, student) pair. The composite unique index makes this safe under
// concurrent callers; the return value reports whether this call inserted.
func (r *submissionRepository) CreateIfAbsent(ctx context.Context, submission *models.Submission) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "student_id"}},
			DoNothing: true,
		}).
		Create(submission)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

// DeleteAutoMissedByTask removes only sentinel rows for the task; manual
// submissions are never touched by this path.
func (r *submissionRepository) DeleteAutoMissedByTask(ctx context.Context, taskID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Where("origin = ?", models.OriginAutoMissed).
		Delete(&models.Submission{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
