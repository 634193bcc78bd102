package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/acadhub/apms-go-api/internal/models"
)

// ProjectRepository defines data operations for projects and team membership.
type ProjectRepository interface {
	GetByID(ctx context.Context, id uint) (models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	ListByFaculty(ctx context.Context, facultyID uint) ([]models.Project, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Project, error)
	HasMember(ctx context.Context, projectID, studentID uint) (bool, error)
	StudentsByFaculty(ctx context.Context, facultyID uint) ([]models.Student, error)
	FacultyIDsForStudent(ctx context.Context, studentID uint) ([]uint, error)
	Create(ctx context.Context, project *models.Project) error
	UpdateStatus(ctx context.Context, id uint, status models.ProjectStatus) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository instantiates the repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Project{}).
		Preload("Faculty").
		Preload("Students")
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (models.Project, error) {
	var project models.Project
	if err := r.baseQuery(ctx).First(&project, id).Error; err != nil {
		return models.Project{}, err
	}

	return project, nil
}

func (r *projectRepository) List(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := r.baseQuery(ctx).Order("assigned_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

func (r *projectRepository) ListByFaculty(ctx context.Context, facultyID uint) ([]models.Project, error) {
	var projects []models.Project
	if err := r.baseQuery(ctx).
		Where("faculty_id = ?", facultyID).
		Order("assigned_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

func (r *projectRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Project, error) {
	var projects []models.Project
	if err := r.baseQuery(ctx).
		Joins("JOIN project_students ON project_students.project_id = projects.id").
		Where("project_students.student_id = ?", studentID).
		Order("projects.assigned_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

func (r *projectRepository) HasMember(ctx context.Context, projectID, studentID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table("project_students").
		Where("project_id = ?", projectID).
		Where("student_id = ?", studentID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// StudentsByFaculty resolves the distinct set of students reachable through
// the faculty's projects. Broadcast tasks address exactly this set.
func (r *projectRepository) StudentsByFaculty(ctx context.Context, facultyID uint) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Distinct("students.*").
		Joins("JOIN project_students ON project_students.student_id = students.id").
		Joins("JOIN projects ON projects.id = project_students.project_id").
		Where("projects.faculty_id = ?", facultyID).
		Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

// FacultyIDsForStudent lists faculties supervising any project the student
// belongs to. Used to resolve which broadcast tasks reach the student.
func (r *projectRepository) FacultyIDsForStudent(ctx context.Context, studentID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Distinct("projects.faculty_id").
		Joins("JOIN project_students ON project_students.project_id = projects.id").
		Where("project_students.student_id = ?", studentID).
		Pluck("projects.faculty_id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *projectRepository) UpdateStatus(ctx context.Context, id uint, status models.ProjectStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM project_students WHERE project_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Project{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *projectRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Project{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
