package repository

import (
	"errors"

	"github.com/yukikurage/timetracker-api/internal/database"
	"github.com/yukikurage/timetracker-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrUserHasOpenTimeEntries is returned by Delete while the user has entries that are not APPROVED, REJECTED or BILLED.
	ErrUserHasOpenTimeEntries = errors.New("user repository: user has open time entries")
	// ErrUserOwnsProjects is returned by Delete while the user owns or manages a project.
	ErrUserOwnsProjects = errors.New("user repository: user owns or manages projects")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves users with filtering and pagination
func (r *GormUserRepository) List(filter UserFilter) ([]models.User, int64, error) {
	var users []models.User

	query := r.db.Model(&models.User{})
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("id ASC")
	listQuery = listQuery.Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update saves every column of the user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Count returns the number of users
func (r *GormUserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// Delete removes the user after checking for dependents, inside one transaction
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&models.TimeEntry{}).
			Where("user_id = ? AND status NOT IN ?", id, models.TerminalTimeEntryStatuses()).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrUserHasOpenTimeEntries
		}

		var projects int64
		if err := tx.Model(&models.Project{}).
			Where("owner_id = ? OR manager_id = ?", id, id).
			Count(&projects).Error; err != nil {
			return err
		}
		if projects > 0 {
			return ErrUserOwnsProjects
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.ProjectTeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("assigned_to_id = ?", id).Update("assigned_to_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("created_by_id = ?", id).Update("created_by_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.TimeEntry{}).Where("approved_by_id = ?", id).Update("approved_by_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.TimeEntry{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, id).Error
	})
}
