package repository

import (
	"github.com/yukikurage/timetracker-api/internal/database"
	"github.com/yukikurage/timetracker-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTimeEntryRepository is a GORM implementation of TimeEntryRepository
type GormTimeEntryRepository struct {
	db *gorm.DB
}

// NewTimeEntryRepository creates a new TimeEntryRepository
func NewTimeEntryRepository(db *gorm.DB) TimeEntryRepository {
	return &GormTimeEntryRepository{db: db}
}

// Create creates a new time entry
func (r *GormTimeEntryRepository) Create(entry *models.TimeEntry) error {
	return r.db.Omit(clause.Associations).Create(entry).Error
}

// FindByID finds a time entry by ID with optional preloading
func (r *GormTimeEntryRepository) FindByID(id uint64, preload ...string) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&entry, id).Error; err != nil {
		return nil, err
	}

	return &entry, nil
}

// List retrieves entries ordered by start time, newest first
func (r *GormTimeEntryRepository) List(filter TimeEntryFilter) ([]models.TimeEntry, int64, error) {
	var entries []models.TimeEntry

	query := r.db.Model(&models.TimeEntry{})

	if filter.VisibleToUserID != nil {
		managed := r.db.Model(&models.Project{}).Select("id").Where("manager_id = ?", *filter.VisibleToUserID)
		query = query.Where("time_entries.user_id = ? OR time_entries.project_id IN (?)", *filter.VisibleToUserID, managed)
	}

	// Apply filters
	if filter.UserID != nil {
		query = query.Where("time_entries.user_id = ?", *filter.UserID)
	}
	if filter.ProjectID != nil {
		query = query.Where("time_entries.project_id = ?", *filter.ProjectID)
	}
	if filter.TaskID != nil {
		query = query.Where("time_entries.task_id = ?", *filter.TaskID)
	}
	if filter.Status != nil {
		query = query.Where("time_entries.status = ?", *filter.Status)
	}
	if filter.BillableOnly {
		query = query.Where("time_entries.billable = ?", true)
	}
	if filter.From != nil {
		query = query.Where("time_entries.start_time >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("time_entries.start_time < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("time_entries.start_time DESC").Order("time_entries.id DESC")
	for _, p := range filter.Preload {
		listQuery = listQuery.Preload(p)
	}
	listQuery = listQuery.Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// UpdateIfStatus saves every column of the entry with a status guard, so two
// concurrent transitions from the same state cannot both win
func (r *GormTimeEntryRepository) UpdateIfStatus(entry *models.TimeEntry, expected models.TimeEntryStatus) (bool, error) {
	result := r.db.Model(entry).
		Where("status = ?", expected).
		Select("*").
		Omit(clause.Associations, "created_at").
		Updates(entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteIfStatus deletes the entry only while its stored status equals expected
func (r *GormTimeEntryRepository) DeleteIfStatus(id uint64, expected models.TimeEntryStatus) (bool, error) {
	result := r.db.Where("id = ? AND status = ?", id, expected).Delete(&models.TimeEntry{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
