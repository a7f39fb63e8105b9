package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/timetracker-api/internal/dto"
	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
)

func (suite *HandlerTestSuite) TestInitSuperuser_OnlyOnEmptyDatabase() {
	payload := map[string]interface{}{
		"email":     "root@example.com",
		"password":  "supersecret",
		"full_name": "Root",
	}

	c, w := suite.createAuthContext("POST", "/api/v1/users/init", payload, nil)
	suite.users.InitSuperuser(c)

	suite.Require().Equal(http.StatusCreated, w.Code)
	var created dto.UserDTO
	suite.decode(w, &created)
	assert.True(suite.T(), created.IsSuperuser)
	assert.Equal(suite.T(), models.RoleAdmin, created.Role)

	payload["email"] = "second@example.com"
	c, w = suite.createAuthContext("POST", "/api/v1/users/init", payload, nil)
	suite.users.InitSuperuser(c)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestListUsers_EmployeeSeesActiveEmployees() {
	employee := suite.createUser("dev@example.com", models.RoleEmployee, 0)
	suite.createUser("boss@example.com", models.RoleManager, 0)
	suite.createUser("peer@example.com", models.RoleEmployee, 0)

	c, w := suite.createAuthContext("GET", "/api/v1/users", nil, employee)
	suite.users.ListUsers(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	var response dto.UserListResponse
	suite.decode(w, &response)
	assert.Equal(suite.T(), int64(2), response.TotalCount)
	for _, u := range response.Users {
		assert.Equal(suite.T(), models.RoleEmployee, u.Role)
	}
}

func (suite *HandlerTestSuite) TestListUsers_RoleFilter() {
	admin := suite.createSuperuser("admin@example.com")
	suite.createUser("boss@example.com", models.RoleManager, 0)
	suite.createUser("dev@example.com", models.RoleEmployee, 0)

	c, w := suite.createAuthContext("GET", "/api/v1/users?role=MANAGER", nil, admin)
	suite.users.ListUsers(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	var response dto.UserListResponse
	suite.decode(w, &response)
	if assert.Len(suite.T(), response.Users, 1) {
		assert.Equal(suite.T(), "boss@example.com", response.Users[0].Email)
	}

	c, w = suite.createAuthContext("GET", "/api/v1/users?role=OWNER", nil, admin)
	suite.users.ListUsers(c)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestGetUser_OtherProfileForbidden() {
	employee := suite.createUser("dev@example.com", models.RoleEmployee, 0)
	other := suite.createUser("peer@example.com", models.RoleEmployee, 0)

	c, w := suite.createAuthContext("GET", "/api/v1/users/2", nil, employee, idParam("id", other.ID))
	suite.users.GetUser(c)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	c, w = suite.createAuthContext("GET", "/api/v1/users/1", nil, employee, idParam("id", employee.ID))
	suite.users.GetUser(c)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestUpdateMe_EmployeeCannotSetRate() {
	employee := suite.createUser("dev@example.com", models.RoleEmployee, 0)

	c, w := suite.createAuthContext("PUT", "/api/v1/users/me", map[string]interface{}{"hourly_rate": 99.0}, employee)
	suite.users.UpdateMe(c)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	c, w = suite.createAuthContext("PUT", "/api/v1/users/me", map[string]interface{}{"full_name": "Dev Eloper", "role": "ADMIN"}, employee)
	suite.users.UpdateMe(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	var response dto.UserDTO
	suite.decode(w, &response)
	assert.Equal(suite.T(), "Dev Eloper", response.FullName)
	assert.Equal(suite.T(), models.RoleEmployee, response.Role)
}

func (suite *HandlerTestSuite) TestUpdateUserRole_AdminOnly() {
	admin := suite.createSuperuser("admin@example.com")
	manager := suite.createUser("boss@example.com", models.RoleManager, 0)
	employee := suite.createUser("dev@example.com", models.RoleEmployee, 0)

	payload := map[string]interface{}{"role": "MANAGER"}
	c, w := suite.createAuthContext("PUT", "/api/v1/users/role/3", payload, manager, idParam("id", employee.ID))
	suite.users.UpdateUserRole(c)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	c, w = suite.createAuthContext("PUT", "/api/v1/users/role/3", payload, admin, idParam("id", employee.ID))
	suite.users.UpdateUserRole(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	var response dto.UserDTO
	suite.decode(w, &response)
	assert.Equal(suite.T(), models.RoleManager, response.Role)
}

func (suite *HandlerTestSuite) TestDeleteUser_Self() {
	admin := suite.createSuperuser("admin@example.com")

	c, w := suite.createAuthContext("DELETE", "/api/v1/users/1", nil, admin, idParam("id", admin.ID))
	suite.users.DeleteUser(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), apierrors.ErrCodeInvalidInput, suite.errorCode(w))
}

func (suite *HandlerTestSuite) TestListManagers() {
	employee := suite.createUser("dev@example.com", models.RoleEmployee, 0)
	suite.createUser("boss@example.com", models.RoleManager, 0)

	c, w := suite.createAuthContext("GET", "/api/v1/users/managers", nil, employee)
	suite.users.ListManagers(c)

	suite.Require().Equal(http.StatusOK, w.Code)
	var response []dto.UserSummaryDTO
	suite.decode(w, &response)
	if assert.Len(suite.T(), response, 1) {
		assert.Equal(suite.T(), "boss@example.com", response[0].Email)
	}
}
