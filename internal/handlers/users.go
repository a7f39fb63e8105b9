package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timetracker-api/internal/dto"
	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/services"
	"github.com/yukikurage/timetracker-api/internal/utils"
)

// UserHandler serves user administration and profile endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

type createUserRequest struct {
	Email       string      `json:"email" binding:"required"`
	Password    string      `json:"password"`
	FullName    string      `json:"full_name"`
	Role        models.Role `json:"role"`
	IsSuperuser bool        `json:"is_superuser"`
	HourlyRate  *float64    `json:"hourly_rate"`
}

func (r createUserRequest) input() services.CreateUserInput {
	return services.CreateUserInput{
		Email:       r.Email,
		Password:    r.Password,
		FullName:    r.FullName,
		Role:        r.Role,
		IsSuperuser: r.IsSuperuser,
		HourlyRate:  r.HourlyRate,
	}
}

type updateUserRequest struct {
	Email           *string      `json:"email"`
	Password        *string      `json:"password"`
	FullName        *string      `json:"full_name"`
	HourlyRate      *float64     `json:"hourly_rate"`
	ClearHourlyRate bool         `json:"clear_hourly_rate"`
	Role            *models.Role `json:"role"`
	IsActive        *bool        `json:"is_active"`
	IsSuperuser     *bool        `json:"is_superuser"`
}

func (r updateUserRequest) input() services.UpdateUserInput {
	return services.UpdateUserInput{
		Email:           r.Email,
		Password:        r.Password,
		FullName:        r.FullName,
		HourlyRate:      r.HourlyRate,
		ClearHourlyRate: r.ClearHourlyRate,
		Role:            r.Role,
		IsActive:        r.IsActive,
		IsSuperuser:     r.IsSuperuser,
	}
}

// InitSuperuser creates the first superuser. It only works while no user exists.
func (h *UserHandler) InitSuperuser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	in := req.input()
	in.Role = models.RoleAdmin
	in.IsSuperuser = true
	user, err := h.userService.CreateSuperuser(in, true)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// ListUsers returns a paginated list of users, optionally filtered by role
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	input := services.ListUsersInput{PageRequest: utils.PageFromQuery(c)}
	if raw := c.Query("role"); raw != "" {
		role := models.Role(raw)
		if !role.IsValid() {
			apierrors.BadRequest(c, "Invalid role")
			return
		}
		input.Role = &role
	}

	users, total, err := h.userService.List(actor, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(users, input.PageRequest, total))
}

// GetMe returns the authenticated user's profile
func (h *UserHandler) GetMe(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*actor))
}

// UpdateMe updates the authenticated user's own profile
func (h *UserHandler) UpdateMe(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateMe(actor, req.input())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ListManagers returns active users with the MANAGER role
func (h *UserHandler) ListManagers(c *gin.Context) {
	h.listByRole(c, models.RoleManager)
}

// ListEmployees returns active users with the EMPLOYEE role
func (h *UserHandler) ListEmployees(c *gin.Context) {
	h.listByRole(c, models.RoleEmployee)
}

func (h *UserHandler) listByRole(c *gin.Context, role models.Role) {
	if _, ok := currentUser(c); !ok {
		return
	}

	users, err := h.userService.ListActiveByRole(role)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	summaries := make([]dto.UserSummaryDTO, len(users))
	for i, u := range users {
		summaries[i] = dto.ToUserSummaryDTO(u)
	}
	c.JSON(http.StatusOK, summaries)
}

// GetUser returns a user by ID
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(actor, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// CreateUser creates an account on behalf of an administrator
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Create(actor, req.input())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// UpdateUser updates any user field as an administrator
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Update(actor, id, req.input())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUserRole changes a user's role
func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type UpdateRoleRequest struct {
		Role models.Role `json:"role" binding:"required"`
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateRole(actor, id, req.Role)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser removes a user and returns the deleted record
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Delete(actor, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
