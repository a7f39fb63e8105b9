package repository

import (
	"fmt"

	"github.com/yukikurage/timetracker-api/internal/models"
	"gorm.io/gorm"
)

// GormMonthlyQuotaRepository is a GORM implementation of MonthlyQuotaRepository
type GormMonthlyQuotaRepository struct {
	db *gorm.DB
}

// NewMonthlyQuotaRepository creates a new MonthlyQuotaRepository
func NewMonthlyQuotaRepository(db *gorm.DB) MonthlyQuotaRepository {
	return &GormMonthlyQuotaRepository{db: db}
}

func (r *GormMonthlyQuotaRepository) Create(quota *models.MonthlyQuota) error {
	return r.db.Create(quota).Error
}

func (r *GormMonthlyQuotaRepository) FindByMonth(month string) (*models.MonthlyQuota, error) {
	var quota models.MonthlyQuota
	if err := r.db.Where("month = ?", month).First(&quota).Error; err != nil {
		return nil, err
	}
	return &quota, nil
}

func (r *GormMonthlyQuotaRepository) ListByYear(year int) ([]models.MonthlyQuota, error) {
	var quotas []models.MonthlyQuota

	query := r.db.Order("month ASC")
	if year > 0 {
		query = query.Where("month LIKE ?", fmt.Sprintf("%04d-%%", year))
	}

	if err := query.Find(&quotas).Error; err != nil {
		return nil, err
	}
	return quotas, nil
}

func (r *GormMonthlyQuotaRepository) Update(quota *models.MonthlyQuota) error {
	return r.db.Save(quota).Error
}

func (r *GormMonthlyQuotaRepository) Delete(id uint64) error {
	return r.db.Delete(&models.MonthlyQuota{}, id).Error
}
