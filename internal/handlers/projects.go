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

// ProjectHandler serves projects and their teams
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns the projects visible to the current user
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	input := services.ListProjectsInput{PageRequest: utils.PageFromQuery(c)}
	if raw := c.Query("status"); raw != "" {
		status := models.ProjectStatus(raw)
		input.Status = &status
	}

	projects, total, err := h.projectService.List(actor, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectListResponse(projects, input.PageRequest, total))
}

// CreateProject creates a project owned by the current user
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	type CreateProjectRequest struct {
		Name              string               `json:"name" binding:"required"`
		Description       string               `json:"description"`
		Status            models.ProjectStatus `json:"status"`
		BudgetHours       float64              `json:"budget_hours"`
		DefaultHourlyRate float64              `json:"default_hourly_rate"`
		ManagerID         *uint64              `json:"manager_id"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Create(actor, services.CreateProjectInput{
		Name:              req.Name,
		Description:       req.Description,
		Status:            req.Status,
		BudgetHours:       req.BudgetHours,
		DefaultHourlyRate: req.DefaultHourlyRate,
		ManagerID:         req.ManagerID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// GetProject returns a project with its team
func (h *ProjectHandler) GetProject(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Get(actor, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(*project))
}

// UpdateProject applies a sparse update to a project
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		Name              *string               `json:"name"`
		Description       *string               `json:"description"`
		Status            *models.ProjectStatus `json:"status"`
		BudgetHours       *float64              `json:"budget_hours"`
		DefaultHourlyRate *float64              `json:"default_hourly_rate"`
		ManagerID         *uint64               `json:"manager_id"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Update(actor, id, services.UpdateProjectInput{
		Name:              req.Name,
		Description:       req.Description,
		Status:            req.Status,
		BudgetHours:       req.BudgetHours,
		DefaultHourlyRate: req.DefaultHourlyRate,
		ManagerID:         req.ManagerID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// UpdateProjectStatus changes only the project status
func (h *ProjectHandler) UpdateProjectStatus(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status models.ProjectStatus `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateStatus(actor, id, req.Status)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject deletes a project with its tasks and time entries
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Delete(actor, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// ListTeam returns the project's team members
func (h *ProjectHandler) ListTeam(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	members, err := h.projectService.ListMembers(actor, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamMemberDTOs(members))
}

// AddTeamMember adds a user to the project with an optional rate override
func (h *ProjectHandler) AddTeamMember(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserID     uint64   `json:"user_id" binding:"required"`
		HourlyRate *float64 `json:"hourly_rate"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.projectService.AddMember(actor, id, req.UserID, req.HourlyRate)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamMemberDTO(*member))
}

// UpdateTeamMember changes or clears a member's rate override
func (h *ProjectHandler) UpdateTeamMember(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "user_id")
	if !ok {
		return
	}

	type UpdateMemberRequest struct {
		HourlyRate *float64 `json:"hourly_rate"`
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.projectService.UpdateMemberRate(actor, id, userID, req.HourlyRate)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamMemberDTO(*member))
}

// RemoveTeamMember removes a user from the project
func (h *ProjectHandler) RemoveTeamMember(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "user_id")
	if !ok {
		return
	}

	if err := h.projectService.RemoveMember(actor, id, userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
