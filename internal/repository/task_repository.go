package repository

import (
	"github.com/yukikurage/timetracker-api/internal/database"
	"github.com/yukikurage/timetracker-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Omit("Project", "CreatedBy", "AssignedTo").Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	switch {
	case filter.All:
	case filter.ManagerID != nil:
		managed := r.db.Model(&models.Project{}).Select("id").Where("manager_id = ?", *filter.ManagerID)
		query = query.Where("tasks.project_id IN (?)", managed)
	case filter.VisibleToUserID != nil:
		staffed := r.db.Model(&models.ProjectTeamMember{}).Select("project_id").Where("user_id = ?", *filter.VisibleToUserID)
		query = query.Where("tasks.assigned_to_id = ? OR tasks.project_id IN (?)", *filter.VisibleToUserID, staffed)
	default:
		return []models.Task{}, 0, nil
	}

	// Apply filters
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC").Order("tasks.id DESC")
	listQuery = listQuery.Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update saves every column of the task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit("Project", "CreatedBy", "AssignedTo").Save(task).Error
}

// Delete deletes a task and its time entries
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TimeEntry{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}
