package repository

import (
	"errors"

	"github.com/yukikurage/timetracker-api/internal/database"
	"github.com/yukikurage/timetracker-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// List retrieves projects with filtering and pagination
func (r *GormProjectRepository) List(filter ProjectFilter) ([]models.Project, int64, error) {
	var projects []models.Project

	query := r.db.Model(&models.Project{})

	if !filter.All {
		staffed := r.db.Model(&models.ProjectTeamMember{}).
			Select("project_id").
			Where("user_id = ?", filter.UserID)
		if filter.IncludeManaged {
			query = query.Where("projects.owner_id = ? OR projects.manager_id = ? OR projects.id IN (?)",
				filter.UserID, filter.UserID, staffed)
		} else {
			query = query.Where("projects.owner_id = ? OR projects.id IN (?)", filter.UserID, staffed)
		}
	}
	if filter.Status != nil {
		query = query.Where("projects.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("projects.created_at DESC").Order("projects.id DESC")
	listQuery = listQuery.Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update saves every column of the project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Omit("Owner", "Manager", "Members").Save(project).Error
}

// Delete deletes a project with its tasks, time entries and team
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.TimeEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectTeamMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// AddMember adds a user to the project team
func (r *GormProjectRepository) AddMember(member *models.ProjectTeamMember) error {
	return r.db.Omit("Project", "User").Create(member).Error
}

// UpdateMember saves a team member's rate override
func (r *GormProjectRepository) UpdateMember(member *models.ProjectTeamMember) error {
	return r.db.Model(&models.ProjectTeamMember{}).
		Where("project_id = ? AND user_id = ?", member.ProjectID, member.UserID).
		Update("hourly_rate", member.HourlyRate).Error
}

// RemoveMember removes a user from the project team
func (r *GormProjectRepository) RemoveMember(projectID, userID uint64) error {
	return r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectTeamMember{}).Error
}

// FindMember finds a specific team member
func (r *GormProjectRepository) FindMember(projectID, userID uint64) (*models.ProjectTeamMember, error) {
	var member models.ProjectTeamMember
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// IsMember reports whether the user is on the project team
func (r *GormProjectRepository) IsMember(projectID, userID uint64) (bool, error) {
	_, err := r.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListMembers lists the team with users preloaded
func (r *GormProjectRepository) ListMembers(projectID uint64) ([]models.ProjectTeamMember, error) {
	var members []models.ProjectTeamMember
	if err := r.db.Preload("User").
		Where("project_id = ?", projectID).
		Order("user_id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
