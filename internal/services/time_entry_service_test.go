package services

import (
	"sync"
	"time"

	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/timesheet"
)

// timeEntryFixture is a project managed by manager with employee on the team
type timeEntryFixture struct {
	manager  *models.User
	employee *models.User
	project  *models.Project
	task     *models.Task
}

func (s *ServiceTestSuite) timeEntryFixture(override *float64) timeEntryFixture {
	manager := s.createUser("manager@example.com", models.RoleManager, nil)
	employee := s.createUser("employee@example.com", models.RoleEmployee, floatPtr(30))
	project := s.createProject("Website", manager, manager)
	s.addMember(project, employee, override)
	task := s.createTask("Login page", project, manager)
	return timeEntryFixture{manager: manager, employee: employee, project: project, task: task}
}

func (s *ServiceTestSuite) logTime(f timeEntryFixture, hours int) *models.TimeEntry {
	entry, err := s.entries.Create(f.employee, CreateTimeEntryInput{
		TaskID:      f.task.ID,
		Description: "Build the form",
		StartTime:   workday,
		EndTime:     timePtr(workday.Add(time.Duration(hours) * time.Hour)),
	})
	s.Require().NoError(err)
	return entry
}

func (s *ServiceTestSuite) TestCreateTimeEntry_SnapshotsOverrideRate() {
	f := s.timeEntryFixture(floatPtr(50))

	entry := s.logTime(f, 2)

	s.Equal(models.TimeEntryStatusDraft, entry.Status)
	s.Equal(50.0, entry.HourlyRate)
	s.Equal(f.project.ID, entry.ProjectID)
	s.True(entry.Billable)

	_, err := s.projects.UpdateMemberRate(f.manager, f.project.ID, f.employee.ID, nil)
	s.Require().NoError(err)

	s.Equal(50.0, s.reload(entry.ID).HourlyRate)

	next := s.logTime(f, 1)
	s.Equal(30.0, next.HourlyRate)
}

func (s *ServiceTestSuite) TestCreateTimeEntry_FallsBackToZeroRate() {
	f := s.timeEntryFixture(nil)
	f.employee.HourlyRate = nil
	s.Require().NoError(s.userRepo.Update(f.employee))

	entry := s.logTime(f, 1)
	s.Equal(0.0, entry.HourlyRate)

	_, err := s.entries.Submit(f.employee, entry.ID)
	s.assertKind(err, apierrors.KindValidation)
}

func (s *ServiceTestSuite) TestCreateTimeEntry_Rules() {
	f := s.timeEntryFixture(nil)
	outsider := s.createUser("outsider@example.com", models.RoleEmployee, nil)

	_, err := s.entries.Create(f.employee, CreateTimeEntryInput{TaskID: 999, StartTime: workday})
	s.assertKind(err, apierrors.KindNotFound)

	_, err = s.entries.Create(outsider, CreateTimeEntryInput{TaskID: f.task.ID, StartTime: workday})
	s.assertKind(err, apierrors.KindPermissionDenied)

	approved := models.TimeEntryStatusApproved
	_, err = s.entries.Create(f.employee, CreateTimeEntryInput{TaskID: f.task.ID, StartTime: workday, Status: &approved})
	s.assertKind(err, apierrors.KindValidation)

	_, err = s.entries.Create(f.employee, CreateTimeEntryInput{
		TaskID:    f.task.ID,
		StartTime: workday,
		EndTime:   timePtr(workday.Add(-time.Minute)),
	})
	s.assertKind(err, apierrors.KindValidation)

	admin := s.createSuperuser("root@example.com")
	entry, err := s.entries.Create(admin, CreateTimeEntryInput{TaskID: f.task.ID, StartTime: workday})
	s.Require().NoError(err)
	s.Nil(entry.EndTime)
}

func (s *ServiceTestSuite) TestTimeEntryWorkflow_EndToEnd() {
	f := s.timeEntryFixture(floatPtr(40))
	f.employee.HourlyRate = nil
	s.Require().NoError(s.userRepo.Update(f.employee))

	entry, err := s.entries.Create(f.employee, CreateTimeEntryInput{
		TaskID:      f.task.ID,
		Description: "Implement login",
		StartTime:   workday,
	})
	s.Require().NoError(err)
	s.Equal(40.0, entry.HourlyRate)

	entry, err = s.entries.Update(f.employee, entry.ID, timesheet.Patch{EndTime: timePtr(workday.Add(3 * time.Hour))})
	s.Require().NoError(err)
	s.Equal(models.TimeEntryStatusSubmitted, entry.Status)
	s.InDelta(120.0, entry.Cost(), 1e-9)

	_, err = s.entries.Approve(f.employee, entry.ID)
	s.assertKind(err, apierrors.KindPermissionDenied)

	entry, err = s.entries.Approve(f.manager, entry.ID)
	s.Require().NoError(err)
	s.Equal(models.TimeEntryStatusApproved, entry.Status)
	s.Require().NotNil(entry.ApprovedByID)
	s.Equal(f.manager.ID, *entry.ApprovedByID)

	_, err = s.entries.Update(f.employee, entry.ID, timesheet.Patch{Description: strPtr("changed")})
	s.assertKind(err, apierrors.KindPermissionDenied)

	entry, err = s.entries.MarkBilled(f.manager, entry.ID)
	s.Require().NoError(err)
	s.Equal(models.TimeEntryStatusBilled, entry.Status)

	stored := s.reload(entry.ID)
	s.Equal(models.TimeEntryStatusBilled, stored.Status)
	s.Equal("Implement login", stored.Description)

	admin := s.createSuperuser("root@example.com")
	_, err = s.entries.Update(admin, entry.ID, timesheet.Patch{Description: strPtr("changed")})
	s.assertKind(err, apierrors.KindPermissionDenied)
	_, err = s.entries.Reopen(admin, entry.ID)
	s.assertKind(err, apierrors.KindPermissionDenied)
	_, err = s.entries.MarkBilled(admin, entry.ID)
	s.assertKind(err, apierrors.KindInvalidState)
}

func (s *ServiceTestSuite) TestTimeEntryWorkflow_RejectAndResubmit() {
	f := s.timeEntryFixture(nil)
	entry := s.logTime(f, 2)

	_, err := s.entries.Submit(f.manager, entry.ID)
	s.assertKind(err, apierrors.KindPermissionDenied)

	_, err = s.entries.Submit(f.employee, entry.ID)
	s.Require().NoError(err)

	_, err = s.entries.Reject(f.manager, entry.ID, " ")
	s.assertKind(err, apierrors.KindValidation)

	entry, err = s.entries.Reject(f.manager, entry.ID, "Split by task")
	s.Require().NoError(err)
	s.Equal(models.TimeEntryStatusRejected, entry.Status)
	s.Equal("Split by task", *s.reload(entry.ID).RejectionReason)

	entry, err = s.entries.Update(f.employee, entry.ID, timesheet.Patch{Description: strPtr("Form only")})
	s.Require().NoError(err)
	s.Equal(models.TimeEntryStatusDraft, entry.Status)
	s.Nil(s.reload(entry.ID).RejectionReason)

	entry, err = s.entries.Submit(f.employee, entry.ID)
	s.Require().NoError(err)
	s.Equal(models.TimeEntryStatusSubmitted, entry.Status)
}

func (s *ServiceTestSuite) TestTimeEntryReopen() {
	f := s.timeEntryFixture(nil)
	entry := s.logTime(f, 2)

	_, err := s.entries.Reopen(f.employee, entry.ID)
	s.assertKind(err, apierrors.KindInvalidState)

	_, err = s.entries.Submit(f.employee, entry.ID)
	s.Require().NoError(err)
	_, err = s.entries.Reject(f.manager, entry.ID, "Wrong task")
	s.Require().NoError(err)

	entry, err = s.entries.Reopen(f.employee, entry.ID)
	s.Require().NoError(err)
	s.Equal(models.TimeEntryStatusDraft, entry.Status)
	s.Nil(entry.RejectionReason)
}

func (s *ServiceTestSuite) TestTimeEntryIllegalTransitionLeavesRowUnchanged() {
	f := s.timeEntryFixture(nil)
	entry := s.logTime(f, 2)
	before := s.reload(entry.ID)

	_, err := s.entries.Approve(f.manager, entry.ID)
	s.assertKind(err, apierrors.KindInvalidState)
	_, err = s.entries.MarkBilled(f.manager, entry.ID)
	s.assertKind(err, apierrors.KindInvalidState)

	after := s.reload(entry.ID)
	s.Equal(before.Status, after.Status)
	s.Nil(after.ApprovedByID)
	s.Equal(before.UpdatedAt, after.UpdatedAt)
}

func (s *ServiceTestSuite) TestTimeEntryConcurrentApprove() {
	f := s.timeEntryFixture(nil)
	entry := s.logTime(f, 2)
	_, err := s.entries.Submit(f.employee, entry.ID)
	s.Require().NoError(err)

	second := s.createUser("second@example.com", models.RoleManager, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, approver := range []*models.User{f.manager, second} {
		wg.Add(1)
		go func(i int, approver *models.User) {
			defer wg.Done()
			_, errs[i] = s.entries.Approve(approver, entry.ID)
		}(i, approver)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.assertKind(err, apierrors.KindInvalidState)
	}
	s.Equal(1, succeeded)
	s.Equal(models.TimeEntryStatusApproved, s.reload(entry.ID).Status)
}

func (s *ServiceTestSuite) TestTimeEntryStaleWriteLoses() {
	f := s.timeEntryFixture(nil)
	entry := s.logTime(f, 2)

	stale := s.reload(entry.ID)
	_, err := s.entries.Submit(f.employee, entry.ID)
	s.Require().NoError(err)

	stale.Description = "overwritten"
	ok, err := s.entryRepo.UpdateIfStatus(stale, models.TimeEntryStatusDraft)
	s.Require().NoError(err)
	s.False(ok)
	s.Equal("Build the form", s.reload(entry.ID).Description)
}

func (s *ServiceTestSuite) TestTimeEntryVisibility() {
	f := s.timeEntryFixture(nil)
	other := s.createUser("other@example.com", models.RoleEmployee, floatPtr(20))
	s.addMember(f.project, other, nil)
	mine := s.logTime(f, 2)

	_, err := s.entries.Get(other, mine.ID)
	s.assertKind(err, apierrors.KindPermissionDenied)

	got, err := s.entries.Get(f.manager, mine.ID)
	s.Require().NoError(err)
	s.Equal(mine.ID, got.ID)

	_, err = s.entries.Get(other, 999)
	s.assertKind(err, apierrors.KindNotFound)

	list, total, err := s.entries.List(other, ListTimeEntriesInput{})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(list)

	list, total, err = s.entries.List(f.employee, ListTimeEntriesInput{})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Len(list, 1)

	draft := models.TimeEntryStatusDraft
	_, total, err = s.entries.List(f.manager, ListTimeEntriesInput{Status: &draft})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
}

func (s *ServiceTestSuite) TestTimeEntryDelete() {
	f := s.timeEntryFixture(nil)
	outsider := s.createUser("outsider@example.com", models.RoleEmployee, nil)
	entry := s.logTime(f, 2)

	_, err := s.entries.Delete(outsider, entry.ID)
	s.assertKind(err, apierrors.KindPermissionDenied)

	_, err = s.entries.Delete(f.employee, entry.ID)
	s.Require().NoError(err)

	_, err = s.entries.Get(f.employee, entry.ID)
	s.assertKind(err, apierrors.KindNotFound)
}

func (s *ServiceTestSuite) TestTimeEntryProjectManagerEditsSubmittedEntry() {
	f := s.timeEntryFixture(nil)
	entry := s.logTime(f, 2)
	_, err := s.entries.Submit(f.employee, entry.ID)
	s.Require().NoError(err)

	_, err = s.entries.Update(f.employee, entry.ID, timesheet.Patch{Description: strPtr("late change")})
	s.assertKind(err, apierrors.KindPermissionDenied)

	_, err = s.entries.Update(f.manager, entry.ID, timesheet.Patch{Description: strPtr("late change")})
	s.assertKind(err, apierrors.KindInvalidState)

	_, err = s.entries.Delete(f.manager, entry.ID)
	s.Require().NoError(err)
}
