package services

import (
	"time"

	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func (s *ServiceTestSuite) TestCreateSuperuser_OnlyOnEmptyDatabase() {
	admin, err := s.users.CreateSuperuser(CreateUserInput{Email: "root@example.com", Password: "password123"}, true)
	s.Require().NoError(err)
	s.True(admin.IsSuperuser)
	s.Equal(models.RoleAdmin, admin.Role)

	_, err = s.users.CreateSuperuser(CreateUserInput{Email: "root2@example.com", Password: "password123"}, true)
	s.assertKind(err, apierrors.KindConflict)
}

func (s *ServiceTestSuite) TestAdminCreateUser_SendsAccountMail() {
	admin := s.createSuperuser("root@example.com")
	manager := s.createUser("manager@example.com", models.RoleManager, nil)

	_, err := s.users.Create(manager, CreateUserInput{Email: "x@example.com", Password: "password123"})
	s.assertKind(err, apierrors.KindPermissionDenied)

	user, err := s.users.Create(admin, CreateUserInput{
		Email:      "new@example.com",
		Password:   "password123",
		Role:       models.RoleManager,
		HourlyRate: floatPtr(55),
	})
	s.Require().NoError(err)
	s.Equal(models.RoleManager, user.Role)

	mail := s.waitMail()
	s.Equal("new_account", mail.kind)
	s.Equal("new@example.com", mail.email)

	_, err = s.users.Create(admin, CreateUserInput{Email: "new@example.com", Password: "password123"})
	s.assertKind(err, apierrors.KindConflict)

	_, err = s.users.Create(admin, CreateUserInput{Email: "bad@example.com", Password: "password123", Role: "BOSS"})
	s.assertKind(err, apierrors.KindValidation)
}

func (s *ServiceTestSuite) TestAdminCreateUser_GeneratesPassword() {
	admin := s.createSuperuser("root@example.com")

	user, err := s.users.Create(admin, CreateUserInput{Email: "nopass@example.com"})
	s.Require().NoError(err)

	mail := s.waitMail()
	s.Equal("new_account", mail.kind)
	s.GreaterOrEqual(len(mail.body), 8)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(mail.body)))
}

func (s *ServiceTestSuite) TestListUsers_Visibility() {
	manager := s.createUser("manager@example.com", models.RoleManager, nil)
	employee := s.createUser("employee@example.com", models.RoleEmployee, nil)
	s.createUser("client@example.com", models.RoleClient, nil)
	inactive := s.createUser("gone@example.com", models.RoleEmployee, nil)
	inactive.IsActive = false
	s.Require().NoError(s.userRepo.Update(inactive))

	all, total, err := s.users.List(manager, ListUsersInput{})
	s.Require().NoError(err)
	s.Equal(int64(4), total)
	s.Len(all, 4)

	role := models.RoleClient
	clients, _, err := s.users.List(manager, ListUsersInput{Role: &role})
	s.Require().NoError(err)
	s.Len(clients, 1)

	visible, _, err := s.users.List(employee, ListUsersInput{Role: &role})
	s.Require().NoError(err)
	s.Require().Len(visible, 1)
	s.Equal(employee.ID, visible[0].ID)

	managers, err := s.users.ListActiveByRole(models.RoleManager)
	s.Require().NoError(err)
	s.Len(managers, 1)
}

func (s *ServiceTestSuite) TestGetUser() {
	manager := s.createUser("manager@example.com", models.RoleManager, nil)
	employee := s.createUser("employee@example.com", models.RoleEmployee, nil)
	other := s.createUser("other@example.com", models.RoleEmployee, nil)

	_, err := s.users.Get(employee, other.ID)
	s.assertKind(err, apierrors.KindPermissionDenied)

	got, err := s.users.Get(employee, employee.ID)
	s.Require().NoError(err)
	s.Equal(employee.Email, got.Email)

	_, err = s.users.Get(manager, other.ID)
	s.NoError(err)

	_, err = s.users.Get(manager, 999)
	s.assertKind(err, apierrors.KindNotFound)
}

func (s *ServiceTestSuite) TestUpdateMe_HourlyRateNeedsManager() {
	employee := s.createUser("employee@example.com", models.RoleEmployee, nil)
	manager := s.createUser("manager@example.com", models.RoleManager, nil)

	_, err := s.users.UpdateMe(employee, UpdateUserInput{HourlyRate: floatPtr(99)})
	s.assertKind(err, apierrors.KindPermissionDenied)

	role := models.RoleAdmin
	updated, err := s.users.UpdateMe(employee, UpdateUserInput{FullName: strPtr("Renamed"), Role: &role})
	s.Require().NoError(err)
	s.Equal("Renamed", updated.FullName)
	s.Equal(models.RoleEmployee, updated.Role)

	updated, err = s.users.UpdateMe(manager, UpdateUserInput{HourlyRate: floatPtr(80)})
	s.Require().NoError(err)
	s.Equal(80.0, *updated.HourlyRate)

	_, err = s.users.UpdateMe(manager, UpdateUserInput{HourlyRate: floatPtr(-1)})
	s.assertKind(err, apierrors.KindValidation)
}

func (s *ServiceTestSuite) TestAdminUpdateAndRole() {
	admin := s.createSuperuser("root@example.com")
	employee := s.createUser("employee@example.com", models.RoleEmployee, nil)

	_, err := s.users.UpdateRole(employee, employee.ID, models.RoleManager)
	s.assertKind(err, apierrors.KindPermissionDenied)

	updated, err := s.users.UpdateRole(admin, employee.ID, models.RoleManager)
	s.Require().NoError(err)
	s.Equal(models.RoleManager, updated.Role)

	inactive := false
	updated, err = s.users.Update(admin, employee.ID, UpdateUserInput{IsActive: &inactive, Email: strPtr("Moved@Example.com")})
	s.Require().NoError(err)
	s.False(updated.IsActive)
	s.Equal("moved@example.com", updated.Email)

	_, err = s.users.Update(admin, employee.ID, UpdateUserInput{Email: strPtr("root@example.com")})
	s.assertKind(err, apierrors.KindConflict)
}

func (s *ServiceTestSuite) TestDeleteUser() {
	admin := s.createSuperuser("root@example.com")
	f := s.timeEntryFixture(nil)
	entry := s.logTime(f, 2)

	_, err := s.users.Delete(admin, admin.ID)
	s.assertKind(err, apierrors.KindValidation)

	_, err = s.users.Delete(f.manager, f.employee.ID)
	s.assertKind(err, apierrors.KindPermissionDenied)

	_, err = s.users.Delete(admin, f.employee.ID)
	s.assertKind(err, apierrors.KindConflict)

	_, err = s.users.Delete(admin, f.manager.ID)
	s.assertKind(err, apierrors.KindConflict)

	_, err = s.entries.Submit(f.employee, entry.ID)
	s.Require().NoError(err)
	_, err = s.entries.Approve(f.manager, entry.ID)
	s.Require().NoError(err)
	_, err = s.entries.MarkBilled(f.manager, entry.ID)
	s.Require().NoError(err)

	f.task.AssignedToID = &f.employee.ID
	s.Require().NoError(s.taskRepo.Update(f.task))

	_, err = s.users.Delete(admin, f.employee.ID)
	s.Require().NoError(err)

	_, err = s.userRepo.FindByID(f.employee.ID)
	s.Error(err)
	task, err := s.taskRepo.FindByID(f.task.ID)
	s.Require().NoError(err)
	s.Nil(task.AssignedToID)
	isMember, err := s.projectRepo.IsMember(f.project.ID, f.employee.ID)
	s.Require().NoError(err)
	s.False(isMember)

	billed := s.reload(entry.ID)
	s.Nil(billed.UserID)
	s.Equal(models.TimeEntryStatusBilled, billed.Status)
	s.Equal(entry.HourlyRate, billed.HourlyRate)
	s.WithinDuration(entry.StartTime, billed.StartTime, time.Second)
	s.Require().NotNil(billed.EndTime)
	s.WithinDuration(*entry.EndTime, *billed.EndTime, time.Second)
	s.InDelta(entry.Cost(), billed.Cost(), 1e-9)
}

func (s *ServiceTestSuite) TestDeleteUser_ClearsApprover() {
	admin := s.createSuperuser("root@example.com")
	f := s.timeEntryFixture(nil)
	reviewer := s.createUser("reviewer@example.com", models.RoleManager, nil)

	entry := s.logTime(f, 1)
	_, err := s.entries.Submit(f.employee, entry.ID)
	s.Require().NoError(err)
	_, err = s.entries.Approve(reviewer, entry.ID)
	s.Require().NoError(err)

	_, err = s.users.Delete(admin, reviewer.ID)
	s.Require().NoError(err)

	stored := s.reload(entry.ID)
	s.Nil(stored.ApprovedByID)
	s.Equal(models.TimeEntryStatusApproved, stored.Status)
	s.WithinDuration(workday, stored.StartTime, time.Second)
}
