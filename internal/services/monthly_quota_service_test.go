package services

import (
	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/repository"
	"gorm.io/gorm"
)

func intPtr(v int) *int { return &v }

// staleQuotaRepo never sees existing months, as when another request inserts
// the same month between the lookup and the insert.
type staleQuotaRepo struct {
	repository.MonthlyQuotaRepository
}

func (staleQuotaRepo) FindByMonth(string) (*models.MonthlyQuota, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *ServiceTestSuite) TestMonthlyQuotaLifecycle() {
	manager := s.createUser("manager@example.com", models.RoleManager, nil)
	employee := s.createUser("employee@example.com", models.RoleEmployee, nil)

	_, err := s.quotas.Create(employee, QuotaInput{Month: "2024-05"})
	s.assertKind(err, apierrors.KindPermissionDenied)

	quota, err := s.quotas.Create(manager, QuotaInput{Month: "2024-05"})
	s.Require().NoError(err)
	s.Equal(22, quota.WorkingDays)
	s.Equal(8.0, quota.DailyHours)
	s.Equal(176.0, quota.MonthlyHours)

	_, err = s.quotas.Create(manager, QuotaInput{Month: "2024-05"})
	s.assertKind(err, apierrors.KindConflict)

	quota, err = s.quotas.Update(manager, "2024-05", QuotaInput{WorkingDays: intPtr(20)})
	s.Require().NoError(err)
	s.Equal(160.0, quota.MonthlyHours)

	quota, err = s.quotas.Update(manager, "2024-05", QuotaInput{MonthlyHours: floatPtr(150)})
	s.Require().NoError(err)
	s.Equal(150.0, quota.MonthlyHours)
	s.Equal(20, quota.WorkingDays)

	_, err = s.quotas.Update(employee, "2024-05", QuotaInput{WorkingDays: intPtr(1)})
	s.assertKind(err, apierrors.KindPermissionDenied)

	got, err := s.quotas.Get("2024-05")
	s.Require().NoError(err)
	s.Equal(150.0, got.MonthlyHours)

	_, err = s.quotas.Delete(manager, "2024-05")
	s.Require().NoError(err)
	_, err = s.quotas.Get("2024-05")
	s.assertKind(err, apierrors.KindNotFound)
}

func (s *ServiceTestSuite) TestMonthlyQuotaValidation() {
	admin := s.createSuperuser("root@example.com")

	for _, month := range []string{"2024-13", "2024-00", "24-05", "2024-5", "2024/05", ""} {
		_, err := s.quotas.Create(admin, QuotaInput{Month: month})
		s.assertKind(err, apierrors.KindValidation)
	}

	_, err := s.quotas.Create(admin, QuotaInput{Month: "2024-06", WorkingDays: intPtr(40)})
	s.assertKind(err, apierrors.KindValidation)

	_, err = s.quotas.Create(admin, QuotaInput{Month: "2024-06", DailyHours: floatPtr(25)})
	s.assertKind(err, apierrors.KindValidation)

	_, err = s.quotas.Update(admin, "2024-07", QuotaInput{})
	s.assertKind(err, apierrors.KindNotFound)
}

func (s *ServiceTestSuite) TestMonthlyQuotaListByYear() {
	admin := s.createSuperuser("root@example.com")
	for _, month := range []string{"2024-02", "2023-12", "2024-01"} {
		_, err := s.quotas.Create(admin, QuotaInput{Month: month})
		s.Require().NoError(err)
	}

	quotas, err := s.quotas.ListByYear(2024)
	s.Require().NoError(err)
	s.Require().Len(quotas, 2)
	s.Equal("2024-01", quotas[0].Month)
	s.Equal("2024-02", quotas[1].Month)

	all, err := s.quotas.ListByYear(0)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *ServiceTestSuite) TestMonthlyQuotaCreate_ConcurrentDuplicateIsConflict() {
	manager := s.createUser("manager@example.com", models.RoleManager, nil)
	_, err := s.quotas.Create(manager, QuotaInput{Month: "2024-06"})
	s.Require().NoError(err)

	racing := NewMonthlyQuotaService(staleQuotaRepo{repository.NewMonthlyQuotaRepository(s.db)})
	_, err = racing.Create(manager, QuotaInput{Month: "2024-06"})
	s.assertKind(err, apierrors.KindConflict)
}
