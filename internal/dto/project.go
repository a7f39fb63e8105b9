package dto

import (
	"time"

	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/utils"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID                uint64               `json:"id"`
	Name              string               `json:"name"`
	Description       string               `json:"description"`
	Status            models.ProjectStatus `json:"status"`
	BudgetHours       float64              `json:"budget_hours"`
	DefaultHourlyRate float64              `json:"default_hourly_rate"`
	OwnerID           uint64               `json:"owner_id"`
	ManagerID         *uint64              `json:"manager_id"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// TeamMemberDTO represents a project team member
type TeamMemberDTO struct {
	User       UserSummaryDTO `json:"user"`
	HourlyRate *float64       `json:"hourly_rate"`
	JoinedAt   time.Time      `json:"joined_at"`
}

// ProjectDetailDTO represents a project with its team
type ProjectDetailDTO struct {
	ProjectDTO
	TeamMembers []TeamMemberDTO `json:"team_members"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects   []ProjectDTO `json:"projects"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalCount int64        `json:"total_count"`
	TotalPages int          `json:"total_pages"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:                project.ID,
		Name:              project.Name,
		Description:       project.Description,
		Status:            project.Status,
		BudgetHours:       project.BudgetHours,
		DefaultHourlyRate: project.DefaultHourlyRate,
		OwnerID:           project.OwnerID,
		ManagerID:         project.ManagerID,
		CreatedAt:         project.CreatedAt,
		UpdatedAt:         project.UpdatedAt,
	}
}

// ToTeamMemberDTO converts a team member; the user must be preloaded
func ToTeamMemberDTO(member models.ProjectTeamMember) TeamMemberDTO {
	return TeamMemberDTO{
		User:       ToUserSummaryDTO(member.User),
		HourlyRate: member.HourlyRate,
		JoinedAt:   member.CreatedAt,
	}
}

// ToTeamMemberDTOs converts a team
func ToTeamMemberDTOs(members []models.ProjectTeamMember) []TeamMemberDTO {
	items := make([]TeamMemberDTO, len(members))
	for i, member := range members {
		items[i] = ToTeamMemberDTO(member)
	}
	return items
}

// ToProjectDetailDTO converts a project with preloaded members
func ToProjectDetailDTO(project models.Project) ProjectDetailDTO {
	return ProjectDetailDTO{
		ProjectDTO:  ToProjectDTO(project),
		TeamMembers: ToTeamMemberDTOs(project.Members),
	}
}

// ToProjectListResponse converts a page of projects to ProjectListResponse
func ToProjectListResponse(projects []models.Project, page utils.PageRequest, totalCount int64) ProjectListResponse {
	items := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		items[i] = ToProjectDTO(project)
	}

	return ProjectListResponse{
		Projects:   items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: totalCount,
		TotalPages: page.TotalPages(totalCount),
	}
}
