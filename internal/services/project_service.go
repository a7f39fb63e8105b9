package services

import (
	"errors"
	"fmt"
	"strings"

	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/permissions"
	"github.com/yukikurage/timetracker-api/internal/repository"
	"github.com/yukikurage/timetracker-api/internal/utils"
	"gorm.io/gorm"
)

// ProjectService handles project and team business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// ListProjectsInput represents filters for listing projects
type ListProjectsInput struct {
	Status *models.ProjectStatus
	utils.PageRequest
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name              string
	Description       string
	Status            models.ProjectStatus
	BudgetHours       float64
	DefaultHourlyRate float64
	ManagerID         *uint64
}

// UpdateProjectInput represents a sparse project update. A ManagerID of 0
// removes the manager.
type UpdateProjectInput struct {
	Name              *string
	Description       *string
	Status            *models.ProjectStatus
	BudgetHours       *float64
	DefaultHourlyRate *float64
	ManagerID         *uint64
}

// Create creates a project owned by the actor
func (s *ProjectService) Create(actor *models.User, input CreateProjectInput) (*models.Project, error) {
	if !permissions.CanCreateProject(actor) {
		return nil, apierrors.NewPermissionDenied()
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apierrors.NewValidation("name", "Name is required")
	}
	if input.Status == "" {
		input.Status = models.ProjectStatusPlanned
	}
	if !input.Status.IsValid() {
		return nil, apierrors.NewValidation("status", "Invalid project status")
	}
	if input.BudgetHours < 0 {
		return nil, apierrors.NewValidation("budget_hours", "budget_hours cannot be negative")
	}
	if input.DefaultHourlyRate < 0 {
		return nil, apierrors.NewValidation("default_hourly_rate", "default_hourly_rate cannot be negative")
	}

	var managerID *uint64
	if input.ManagerID != nil && *input.ManagerID != 0 {
		if err := s.ensureUserExists(*input.ManagerID, "Manager"); err != nil {
			return nil, err
		}
		id := *input.ManagerID
		managerID = &id
	}

	project := &models.Project{
		Name:              name,
		Description:       input.Description,
		Status:            input.Status,
		BudgetHours:       input.BudgetHours,
		DefaultHourlyRate: input.DefaultHourlyRate,
		OwnerID:           actor.ID,
		ManagerID:         managerID,
	}
	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// List returns the projects visible to the actor
func (s *ProjectService) List(actor *models.User, input ListProjectsInput) ([]models.Project, int64, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, 0, apierrors.NewValidation("status", "Invalid project status")
	}

	filter := repository.ProjectFilter{
		All:            actor.IsSuperuser,
		UserID:         actor.ID,
		IncludeManaged: actor.IsManagerRole(),
		Status:         input.Status,
		Page:           input.Page,
		PageSize:       input.PageSize,
	}

	projects, total, err := s.projectRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// Get returns a project with its team
func (s *ProjectService) Get(actor *models.User, id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id, "Members", "Members.User")
	if err != nil {
		return nil, lookupErr(err, "Project")
	}

	isMember := false
	for _, m := range project.Members {
		if m.UserID == actor.ID {
			isMember = true
			break
		}
	}
	if !permissions.CanReadProject(actor, project, isMember) {
		return nil, apierrors.NewPermissionDenied()
	}

	return project, nil
}

// Update applies a sparse update to a project
func (s *ProjectService) Update(actor *models.User, id uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "Project")
	}
	if !permissions.CanUpdateProject(actor, project) {
		return nil, apierrors.NewPermissionDenied()
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apierrors.NewValidation("name", "Name cannot be empty")
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, apierrors.NewValidation("status", "Invalid project status")
		}
		project.Status = *input.Status
	}
	if input.BudgetHours != nil {
		if err := validateNonNegative("budget_hours", input.BudgetHours); err != nil {
			return nil, err
		}
		project.BudgetHours = *input.BudgetHours
	}
	if input.DefaultHourlyRate != nil {
		if err := validateNonNegative("default_hourly_rate", input.DefaultHourlyRate); err != nil {
			return nil, err
		}
		project.DefaultHourlyRate = *input.DefaultHourlyRate
	}
	if input.ManagerID != nil {
		if *input.ManagerID == 0 {
			project.ManagerID = nil
		} else {
			if err := s.ensureUserExists(*input.ManagerID, "Manager"); err != nil {
				return nil, err
			}
			managerID := *input.ManagerID
			project.ManagerID = &managerID
		}
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// UpdateStatus changes only the project status
func (s *ProjectService) UpdateStatus(actor *models.User, id uint64, status models.ProjectStatus) (*models.Project, error) {
	return s.Update(actor, id, UpdateProjectInput{Status: &status})
}

// Delete deletes a project with its tasks, time entries and team
func (s *ProjectService) Delete(actor *models.User, id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "Project")
	}
	if !permissions.CanDeleteProject(actor, project) {
		return nil, apierrors.NewPermissionDenied()
	}

	if err := s.projectRepo.Delete(id); err != nil {
		return nil, fmt.Errorf("failed to delete project: %w", err)
	}
	return project, nil
}

// AddMember adds a user to the project team with an optional rate override
func (s *ProjectService) AddMember(actor *models.User, projectID, userID uint64, hourlyRate *float64) (*models.ProjectTeamMember, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		return nil, lookupErr(err, "Project")
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, lookupErr(err, "User")
	}
	if !permissions.CanManageTeam(actor, project) {
		return nil, apierrors.NewPermissionDenied()
	}
	if err := validateNonNegative("hourly_rate", hourlyRate); err != nil {
		return nil, err
	}

	isMember, err := s.projectRepo.IsMember(projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if isMember {
		return nil, apierrors.NewConflict("User is already a member of this project")
	}

	member := &models.ProjectTeamMember{
		ProjectID:  projectID,
		UserID:     userID,
		HourlyRate: hourlyRate,
	}
	if err := s.projectRepo.AddMember(member); err != nil {
		return nil, insertErr(err, "team member", "User is already a member of this project")
	}
	member.User = *user
	return member, nil
}

// UpdateMemberRate sets or clears (nil) a member's rate override. Existing
// time entries keep the rate they were created with.
func (s *ProjectService) UpdateMemberRate(actor *models.User, projectID, userID uint64, hourlyRate *float64) (*models.ProjectTeamMember, error) {
	project, member, err := s.findMember(projectID, userID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanManageTeam(actor, project) {
		return nil, apierrors.NewPermissionDenied()
	}
	if err := validateNonNegative("hourly_rate", hourlyRate); err != nil {
		return nil, err
	}

	member.HourlyRate = hourlyRate
	if err := s.projectRepo.UpdateMember(member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	if user, err := s.userRepo.FindByID(userID); err == nil {
		member.User = *user
	}
	return member, nil
}

// RemoveMember removes a user from the project team
func (s *ProjectService) RemoveMember(actor *models.User, projectID, userID uint64) error {
	project, _, err := s.findMember(projectID, userID)
	if err != nil {
		return err
	}
	if !permissions.CanManageTeam(actor, project) {
		return apierrors.NewPermissionDenied()
	}

	if err := s.projectRepo.RemoveMember(projectID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// ListMembers returns the project team for anyone who can read the project
func (s *ProjectService) ListMembers(actor *models.User, projectID uint64) ([]models.ProjectTeamMember, error) {
	project, err := s.Get(actor, projectID)
	if err != nil {
		return nil, err
	}
	return project.Members, nil
}

func (s *ProjectService) findMember(projectID, userID uint64) (*models.Project, *models.ProjectTeamMember, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		return nil, nil, lookupErr(err, "Project")
	}
	member, err := s.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apierrors.NewNotFound("Team member not found")
		}
		return nil, nil, fmt.Errorf("failed to find member: %w", err)
	}
	return project, member, nil
}

func (s *ProjectService) ensureUserExists(id uint64, entity string) error {
	if _, err := s.userRepo.FindByID(id); err != nil {
		return lookupErr(err, entity)
	}
	return nil
}
