package services

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/yukikurage/timetracker-api/internal/constants"
	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/permissions"
	"github.com/yukikurage/timetracker-api/internal/repository"
	"gorm.io/gorm"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// MonthlyQuotaService manages the per-month capacity table
type MonthlyQuotaService struct {
	quotaRepo repository.MonthlyQuotaRepository
}

// NewMonthlyQuotaService creates a new MonthlyQuotaService
func NewMonthlyQuotaService(quotaRepo repository.MonthlyQuotaRepository) *MonthlyQuotaService {
	return &MonthlyQuotaService{quotaRepo: quotaRepo}
}

// QuotaInput holds quota fields. On create, missing WorkingDays and
// DailyHours fall back to the defaults. MonthlyHours is derived from the
// other two unless given explicitly.
type QuotaInput struct {
	Month        string
	WorkingDays  *int
	DailyHours   *float64
	MonthlyHours *float64
}

// ValidateMonth reports a Validation error unless month is YYYY-MM
func ValidateMonth(month string) error {
	if !monthPattern.MatchString(month) {
		return apierrors.NewValidation("month", "Month must be in YYYY-MM format")
	}
	return nil
}

// ListByYear returns the quotas of a year ordered by month; year 0 lists all
func (s *MonthlyQuotaService) ListByYear(year int) ([]models.MonthlyQuota, error) {
	if year < 0 || year > 9999 {
		return nil, apierrors.NewValidation("year", "Invalid year")
	}
	quotas, err := s.quotaRepo.ListByYear(year)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly quotas: %w", err)
	}
	return quotas, nil
}

// Get returns the quota of a month
func (s *MonthlyQuotaService) Get(month string) (*models.MonthlyQuota, error) {
	if err := ValidateMonth(month); err != nil {
		return nil, err
	}
	return s.find(month)
}

// Create adds the quota for a month that has none yet
func (s *MonthlyQuotaService) Create(actor *models.User, input QuotaInput) (*models.MonthlyQuota, error) {
	if !permissions.CanManageQuotas(actor) {
		return nil, apierrors.NewPermissionDenied()
	}
	if err := ValidateMonth(input.Month); err != nil {
		return nil, err
	}

	if _, err := s.quotaRepo.FindByMonth(input.Month); err == nil {
		return nil, apierrors.NewConflict(fmt.Sprintf("Monthly quota for %s already exists", input.Month))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find monthly quota: %w", err)
	}

	quota := &models.MonthlyQuota{
		Month:       input.Month,
		WorkingDays: constants.DefaultWorkingDays,
		DailyHours:  constants.DefaultDailyHours,
	}
	if err := applyQuota(quota, input); err != nil {
		return nil, err
	}

	if err := s.quotaRepo.Create(quota); err != nil {
		return nil, insertErr(err, "monthly quota", fmt.Sprintf("Monthly quota for %s already exists", input.Month))
	}
	return quota, nil
}

// Update changes a month's quota. MonthlyHours is recomputed unless given.
func (s *MonthlyQuotaService) Update(actor *models.User, month string, input QuotaInput) (*models.MonthlyQuota, error) {
	if err := ValidateMonth(month); err != nil {
		return nil, err
	}
	quota, err := s.find(month)
	if err != nil {
		return nil, err
	}
	if !permissions.CanManageQuotas(actor) {
		return nil, apierrors.NewPermissionDenied()
	}

	if err := applyQuota(quota, input); err != nil {
		return nil, err
	}
	if err := s.quotaRepo.Update(quota); err != nil {
		return nil, fmt.Errorf("failed to update monthly quota: %w", err)
	}
	return quota, nil
}

// Delete removes a month's quota
func (s *MonthlyQuotaService) Delete(actor *models.User, month string) (*models.MonthlyQuota, error) {
	if err := ValidateMonth(month); err != nil {
		return nil, err
	}
	quota, err := s.find(month)
	if err != nil {
		return nil, err
	}
	if !permissions.CanManageQuotas(actor) {
		return nil, apierrors.NewPermissionDenied()
	}

	if err := s.quotaRepo.Delete(quota.ID); err != nil {
		return nil, fmt.Errorf("failed to delete monthly quota: %w", err)
	}
	return quota, nil
}

func (s *MonthlyQuotaService) find(month string) (*models.MonthlyQuota, error) {
	quota, err := s.quotaRepo.FindByMonth(month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NewNotFound(fmt.Sprintf("Monthly quota for %s not found", month))
		}
		return nil, fmt.Errorf("failed to find monthly quota: %w", err)
	}
	return quota, nil
}

func applyQuota(quota *models.MonthlyQuota, input QuotaInput) error {
	if input.WorkingDays != nil {
		if *input.WorkingDays < 0 || *input.WorkingDays > 31 {
			return apierrors.NewValidation("working_days", "working_days must be between 0 and 31")
		}
		quota.WorkingDays = *input.WorkingDays
	}
	if input.DailyHours != nil {
		if *input.DailyHours < 0 || *input.DailyHours > 24 {
			return apierrors.NewValidation("daily_hours", "daily_hours must be between 0 and 24")
		}
		quota.DailyHours = *input.DailyHours
	}

	if input.MonthlyHours != nil {
		if err := validateNonNegative("monthly_hours", input.MonthlyHours); err != nil {
			return err
		}
		quota.MonthlyHours = *input.MonthlyHours
	} else {
		quota.MonthlyHours = float64(quota.WorkingDays) * quota.DailyHours
	}
	return nil
}
