package services

import (
	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
)

func (s *ServiceTestSuite) TestCreateProject() {
	manager := s.createUser("manager@example.com", models.RoleManager, nil)
	employee := s.createUser("employee@example.com", models.RoleEmployee, nil)

	_, err := s.projects.Create(employee, CreateProjectInput{Name: "Nope"})
	s.assertKind(err, apierrors.KindPermissionDenied)

	_, err = s.projects.Create(manager, CreateProjectInput{Name: "  "})
	s.assertKind(err, apierrors.KindValidation)

	_, err = s.projects.Create(manager, CreateProjectInput{Name: "Ghost", ManagerID: uintPtr(999)})
	s.assertKind(err, apierrors.KindNotFound)

	project, err := s.projects.Create(manager, CreateProjectInput{
		Name:              "Website",
		DefaultHourlyRate: 60,
		ManagerID:         &manager.ID,
	})
	s.Require().NoError(err)
	s.Equal(models.ProjectStatusPlanned, project.Status)
	s.Equal(manager.ID, project.OwnerID)
	s.True(project.IsManagedBy(manager.ID))
}

func (s *ServiceTestSuite) TestListProjects_Visibility() {
	admin := s.createSuperuser("root@example.com")
	manager := s.createUser("manager@example.com", models.RoleManager, nil)
	employee := s.createUser("employee@example.com", models.RoleEmployee, nil)

	managed := s.createProject("Managed", admin, manager)
	staffed := s.createProject("Staffed", admin, nil)
	s.createProject("Hidden", admin, nil)
	s.addMember(staffed, employee, nil)

	all, total, err := s.projects.List(admin, ListProjectsInput{})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(all, 3)

	mine, _, err := s.projects.List(manager, ListProjectsInput{})
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(managed.ID, mine[0].ID)

	theirs, _, err := s.projects.List(employee, ListProjectsInput{})
	s.Require().NoError(err)
	s.Require().Len(theirs, 1)
	s.Equal(staffed.ID, theirs[0].ID)

	status := models.ProjectStatusCompleted
	none, _, err := s.projects.List(admin, ListProjectsInput{Status: &status})
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *ServiceTestSuite) TestGetProject() {
	owner := s.createUser("owner@example.com", models.RoleEmployee, nil)
	member := s.createUser("member@example.com", models.RoleEmployee, nil)
	stranger := s.createUser("stranger@example.com", models.RoleEmployee, nil)
	project := s.createProject("Website", owner, nil)
	s.addMember(project, member, floatPtr(45))

	got, err := s.projects.Get(member, project.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Members, 1)
	s.Equal(member.Email, got.Members[0].User.Email)

	_, err = s.projects.Get(stranger, project.ID)
	s.assertKind(err, apierrors.KindPermissionDenied)

	_, err = s.projects.Get(stranger, 999)
	s.assertKind(err, apierrors.KindNotFound)
}

func (s *ServiceTestSuite) TestUpdateProject() {
	owner := s.createUser("owner@example.com", models.RoleEmployee, nil)
	manager := s.createUser("manager@example.com", models.RoleEmployee, nil)
	member := s.createUser("member@example.com", models.RoleEmployee, nil)
	project := s.createProject("Website", owner, manager)
	s.addMember(project, member, nil)

	_, err := s.projects.Update(member, project.ID, UpdateProjectInput{Name: strPtr("Mine")})
	s.assertKind(err, apierrors.KindPermissionDenied)

	updated, err := s.projects.Update(owner, project.ID, UpdateProjectInput{
		Name:        strPtr("Website v2"),
		BudgetHours: floatPtr(120),
		ManagerID:   uintPtr(0),
	})
	s.Require().NoError(err)
	s.Equal("Website v2", updated.Name)
	s.Equal(120.0, updated.BudgetHours)
	s.Nil(updated.ManagerID)

	bad := models.ProjectStatus("DONE")
	_, err = s.projects.UpdateStatus(owner, project.ID, bad)
	s.assertKind(err, apierrors.KindValidation)

	updated, err = s.projects.UpdateStatus(owner, project.ID, models.ProjectStatusOnHold)
	s.Require().NoError(err)
	s.Equal(models.ProjectStatusOnHold, updated.Status)
}

func (s *ServiceTestSuite) TestDeleteProject_Cascades() {
	f := s.timeEntryFixture(nil)
	entry := s.logTime(f, 1)

	_, err := s.projects.Delete(f.employee, f.project.ID)
	s.assertKind(err, apierrors.KindPermissionDenied)

	_, err = s.projects.Delete(f.manager, f.project.ID)
	s.Require().NoError(err)

	_, err = s.taskRepo.FindByID(f.task.ID)
	s.Error(err)
	_, err = s.entryRepo.FindByID(entry.ID)
	s.Error(err)
}

func (s *ServiceTestSuite) TestTeamManagement() {
	owner := s.createUser("owner@example.com", models.RoleManager, nil)
	manager := s.createUser("manager@example.com", models.RoleEmployee, nil)
	employee := s.createUser("employee@example.com", models.RoleEmployee, nil)
	project := s.createProject("Website", owner, manager)

	_, err := s.projects.AddMember(owner, project.ID, employee.ID, nil)
	s.assertKind(err, apierrors.KindPermissionDenied)

	_, err = s.projects.AddMember(manager, project.ID, 999, nil)
	s.assertKind(err, apierrors.KindNotFound)

	member, err := s.projects.AddMember(manager, project.ID, employee.ID, floatPtr(35))
	s.Require().NoError(err)
	s.Equal(35.0, *member.HourlyRate)

	_, err = s.projects.AddMember(manager, project.ID, employee.ID, nil)
	s.assertKind(err, apierrors.KindConflict)

	member, err = s.projects.UpdateMemberRate(manager, project.ID, employee.ID, floatPtr(42))
	s.Require().NoError(err)
	s.Equal(42.0, *member.HourlyRate)

	members, err := s.projects.ListMembers(employee, project.ID)
	s.Require().NoError(err)
	s.Require().Len(members, 1)
	s.Equal(42.0, *members[0].HourlyRate)

	s.Require().NoError(s.projects.RemoveMember(manager, project.ID, employee.ID))
	err = s.projects.RemoveMember(manager, project.ID, employee.ID)
	s.assertKind(err, apierrors.KindNotFound)
}
