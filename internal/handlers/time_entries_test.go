package handlers

import (
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/timetracker-api/internal/dto"
	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
)

type entryFixture struct {
	owner   *models.User
	manager *models.User
	member  *models.User
	project *models.Project
	task    *models.Task
}

func (suite *HandlerTestSuite) entryFixture() entryFixture {
	owner := suite.createUser("owner@example.com", models.RoleEmployee, 0)
	manager := suite.createUser("pm@example.com", models.RoleEmployee, 0)
	member := suite.createUser("dev@example.com", models.RoleEmployee, 35)
	project := suite.createProject("Website", owner, manager)
	suite.addMember(project, member)
	task := suite.createTask("Login page", project, owner)
	return entryFixture{owner: owner, manager: manager, member: member, project: project, task: task}
}

func (suite *HandlerTestSuite) TestCreateTimeEntry_SnapshotsRate() {
	f := suite.entryFixture()

	payload := map[string]interface{}{
		"task_id":     f.task.ID,
		"description": "Form layout",
		"start_time":  "2024-05-06T09:00:00Z",
		"end_time":    "2024-05-06T11:30:00Z",
	}
	c, w := suite.createAuthContext("POST", "/api/v1/time-entries", payload, f.member)

	suite.entries.CreateTimeEntry(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.TimeEntryDTO
	suite.decode(w, &response)
	assert.Equal(suite.T(), models.TimeEntryStatusDraft, response.Status)
	assert.Equal(suite.T(), 35.0, response.HourlyRate)
	assert.Equal(suite.T(), 2.5, response.DurationHours)
	assert.Equal(suite.T(), 87.5, response.Cost)
	assert.True(suite.T(), response.Billable)
	assert.Equal(suite.T(), f.project.ID, response.ProjectID)
}

func (suite *HandlerTestSuite) TestCreateTimeEntry_NotMember() {
	f := suite.entryFixture()
	outsider := suite.createUser("outsider@example.com", models.RoleEmployee, 50)

	payload := map[string]interface{}{
		"task_id":    f.task.ID,
		"start_time": "2024-05-06T09:00:00Z",
	}
	c, w := suite.createAuthContext("POST", "/api/v1/time-entries", payload, outsider)

	suite.entries.CreateTimeEntry(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Equal(suite.T(), apierrors.ErrCodeInsufficientPermissions, suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestCreateTimeEntry_RefusesNonDraftStatus() {
	f := suite.entryFixture()

	payload := map[string]interface{}{
		"task_id":    f.task.ID,
		"start_time": "2024-05-06T09:00:00Z",
		"status":     "APPROVED",
	}
	c, w := suite.createAuthContext("POST", "/api/v1/time-entries", payload, f.member)

	suite.entries.CreateTimeEntry(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var count int64
	suite.db.Model(&models.TimeEntry{}).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *HandlerTestSuite) TestCreateTimeEntry_EndBeforeStart() {
	f := suite.entryFixture()

	payload := map[string]interface{}{
		"task_id":    f.task.ID,
		"start_time": "2024-05-06T09:00:00Z",
		"end_time":   "2024-05-06T08:00:00Z",
	}
	c, w := suite.createAuthContext("POST", "/api/v1/time-entries", payload, f.member)

	suite.entries.CreateTimeEntry(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), apierrors.ErrCodeInvalidInput, suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestTimeEntryWorkflow_SubmitApproveBill() {
	f := suite.entryFixture()
	billing := suite.createUser("billing@example.com", models.RoleManager, 0)
	entry := suite.createEntry(f.task, f.member, models.TimeEntryStatusDraft)
	id := idParam("id", entry.ID)

	c, w := suite.createAuthContext("PUT", "/api/v1/time-entries/1/submit", nil, f.member, id)
	suite.entries.SubmitTimeEntry(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	c, w = suite.createAuthContext("PUT", "/api/v1/time-entries/1/approve", nil, f.manager, id)
	suite.entries.ApproveTimeEntry(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	var approved dto.TimeEntryDTO
	suite.decode(w, &approved)
	assert.Equal(suite.T(), models.TimeEntryStatusApproved, approved.Status)
	if assert.NotNil(suite.T(), approved.ApprovedByID) {
		assert.Equal(suite.T(), f.manager.ID, *approved.ApprovedByID)
	}

	// the project manager role on one project does not grant billing
	c, w = suite.createAuthContext("PUT", "/api/v1/time-entries/1/mark-billed", nil, f.manager, id)
	suite.entries.MarkTimeEntryBilled(c)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	c, w = suite.createAuthContext("PUT", "/api/v1/time-entries/1/mark-billed", nil, billing, id)
	suite.entries.MarkTimeEntryBilled(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	var billed dto.TimeEntryDTO
	suite.decode(w, &billed)
	assert.Equal(suite.T(), models.TimeEntryStatusBilled, billed.Status)

	c, w = suite.createAuthContext("PUT", "/api/v1/time-entries/1", map[string]interface{}{"description": "late edit"}, f.member, id)
	suite.entries.UpdateTimeEntry(c)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestApproveTimeEntry_DraftIsInvalidState() {
	f := suite.entryFixture()
	entry := suite.createEntry(f.task, f.member, models.TimeEntryStatusDraft)

	c, w := suite.createAuthContext("PUT", "/api/v1/time-entries/1/approve", nil, f.manager, idParam("id", entry.ID))

	suite.entries.ApproveTimeEntry(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), apierrors.ErrCodeInvalidState, suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestRejectTimeEntry_RequiresReason() {
	f := suite.entryFixture()
	entry := suite.createEntry(f.task, f.member, models.TimeEntryStatusSubmitted)
	id := idParam("id", entry.ID)

	c, w := suite.createAuthContext("PUT", "/api/v1/time-entries/1/reject", map[string]interface{}{}, f.manager, id)
	suite.entries.RejectTimeEntry(c)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	c, w = suite.createAuthContext("PUT", "/api/v1/time-entries/1/reject", map[string]interface{}{"reason": "Split by task"}, f.manager, id)
	suite.entries.RejectTimeEntry(c)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.TimeEntryDTO
	suite.decode(w, &response)
	assert.Equal(suite.T(), models.TimeEntryStatusRejected, response.Status)
	if assert.NotNil(suite.T(), response.RejectionReason) {
		assert.Equal(suite.T(), "Split by task", *response.RejectionReason)
	}

	c, w = suite.createAuthContext("PUT", "/api/v1/time-entries/1/reopen", nil, f.member, id)
	suite.entries.ReopenTimeEntry(c)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &response)
	assert.Equal(suite.T(), models.TimeEntryStatusDraft, response.Status)
}

func (suite *HandlerTestSuite) TestUpdateTimeEntry_StoppingTimerSubmits() {
	f := suite.entryFixture()
	entry := suite.createEntry(f.task, f.member, models.TimeEntryStatusDraft)
	suite.Require().NoError(suite.db.Model(entry).Update("end_time", nil).Error)

	payload := map[string]interface{}{"end_time": entry.StartTime.Add(90 * time.Minute).Format(time.RFC3339)}
	c, w := suite.createAuthContext("PUT", "/api/v1/time-entries/1", payload, f.member, idParam("id", entry.ID))

	suite.entries.UpdateTimeEntry(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TimeEntryDTO
	suite.decode(w, &response)
	assert.Equal(suite.T(), models.TimeEntryStatusSubmitted, response.Status)
	assert.Equal(suite.T(), 1.5, response.DurationHours)
}

func (suite *HandlerTestSuite) TestListTimeEntries_EmployeeSeesOwnOnly() {
	f := suite.entryFixture()
	other := suite.createUser("other@example.com", models.RoleEmployee, 20)
	suite.addMember(f.project, other)
	mine := suite.createEntry(f.task, f.member, models.TimeEntryStatusDraft)
	suite.createEntry(f.task, other, models.TimeEntryStatusDraft)

	c, w := suite.createAuthContext("GET", "/api/v1/time-entries", nil, f.member)
	suite.entries.ListTimeEntries(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	var response dto.TimeEntryListResponse
	suite.decode(w, &response)
	assert.Equal(suite.T(), int64(1), response.TotalCount)
	if assert.Len(suite.T(), response.TimeEntries, 1) {
		assert.Equal(suite.T(), mine.ID, response.TimeEntries[0].ID)
	}

	c, w = suite.createAuthContext("GET", "/api/v1/time-entries", nil, f.manager)
	suite.entries.ListTimeEntries(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &response)
	assert.Equal(suite.T(), int64(2), response.TotalCount)
}

func (suite *HandlerTestSuite) TestListTimeEntries_InvalidQuery() {
	f := suite.entryFixture()

	c, w := suite.createAuthContext("GET", "/api/v1/time-entries?from=yesterday", nil, f.member)
	suite.entries.ListTimeEntries(c)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	c, w = suite.createAuthContext("GET", "/api/v1/time-entries?task_id=x", nil, f.member)
	suite.entries.ListTimeEntries(c)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteTimeEntry_SubmittedByOwner() {
	f := suite.entryFixture()
	entry := suite.createEntry(f.task, f.member, models.TimeEntryStatusSubmitted)

	c, w := suite.createAuthContext("DELETE", "/api/v1/time-entries/1", nil, f.member, idParam("id", entry.ID))
	suite.entries.DeleteTimeEntry(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}
