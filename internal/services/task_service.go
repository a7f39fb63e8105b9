package services

import (
	"fmt"
	"strings"
	"time"

	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/permissions"
	"github.com/yukikurage/timetracker-api/internal/repository"
	"github.com/yukikurage/timetracker-api/internal/utils"
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ProjectID *uint64
	Status    *models.TaskStatus
	Priority  *models.TaskPriority
	utils.PageRequest
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title          string
	Description    string
	Status         models.TaskStatus
	Priority       models.TaskPriority
	EstimatedHours *float64
	DueDate        *time.Time
	ProjectID      uint64
	AssignedToID   *uint64
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
	EstimatedHours *float64
	DueDate        *time.Time
	ClearDueDate   bool
}

// List returns tasks visible to the actor
func (s *TaskService) List(actor *models.User, input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, 0, apierrors.NewValidation("status", "Invalid task status")
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, 0, apierrors.NewValidation("priority", "Invalid task priority")
	}

	filter := repository.TaskFilter{
		ProjectID: input.ProjectID,
		Status:    input.Status,
		Priority:  input.Priority,
		Page:      input.Page,
		PageSize:  input.PageSize,
	}
	actorID := actor.ID
	switch {
	case actor.IsSuperuser:
		filter.All = true
	case actor.IsManagerRole():
		filter.ManagerID = &actorID
	default:
		filter.VisibleToUserID = &actorID
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// Get returns a task the actor may read
func (s *TaskService) Get(actor *models.User, taskID uint64) (*models.Task, error) {
	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}

	isMember, err := s.projectRepo.IsMember(task.ProjectID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !permissions.CanReadTask(actor, task, &task.Project, isMember) {
		return nil, apierrors.NewPermissionDenied()
	}

	return task, nil
}

// Create creates a new task in a project the actor may update
func (s *TaskService) Create(actor *models.User, input CreateTaskInput) (*models.Task, error) {
	project, err := s.projectRepo.FindByID(input.ProjectID)
	if err != nil {
		return nil, lookupErr(err, "Project")
	}
	if !permissions.CanCreateTask(actor, project) {
		return nil, apierrors.NewPermissionDenied()
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apierrors.NewValidation("title", "Title is required")
	}
	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.IsValid() {
		return nil, apierrors.NewValidation("status", "Invalid task status")
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !input.Priority.IsValid() {
		return nil, apierrors.NewValidation("priority", "Invalid task priority")
	}
	if err := validateNonNegative("estimated_hours", input.EstimatedHours); err != nil {
		return nil, err
	}
	if input.AssignedToID != nil {
		if _, err := s.userRepo.FindByID(*input.AssignedToID); err != nil {
			return nil, lookupErr(err, "Assignee")
		}
	}

	creatorID := actor.ID
	task := &models.Task{
		Title:          title,
		Description:    input.Description,
		Status:         input.Status,
		Priority:       input.Priority,
		EstimatedHours: input.EstimatedHours,
		DueDate:        input.DueDate,
		ProjectID:      project.ID,
		CreatedByID:    &creatorID,
		AssignedToID:   input.AssignedToID,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	task.Project = *project

	return task, nil
}

// Update applies a sparse update to a task
func (s *TaskService) Update(actor *models.User, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanUpdateTask(actor, task, &task.Project) {
		return nil, apierrors.NewPermissionDenied()
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apierrors.NewValidation("title", "Title cannot be empty")
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, apierrors.NewValidation("status", "Invalid task status")
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, apierrors.NewValidation("priority", "Invalid task priority")
		}
		task.Priority = *input.Priority
	}
	if input.EstimatedHours != nil {
		if err := validateNonNegative("estimated_hours", input.EstimatedHours); err != nil {
			return nil, err
		}
		task.EstimatedHours = input.EstimatedHours
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	return s.save(task)
}

// Assign sets the task's assignee
func (s *TaskService) Assign(actor *models.User, taskID, assigneeID uint64) (*models.Task, error) {
	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(assigneeID); err != nil {
		return nil, lookupErr(err, "User")
	}
	if !permissions.CanAssignTask(actor, task, &task.Project) {
		return nil, apierrors.NewPermissionDenied()
	}

	task.AssignedToID = &assigneeID
	return s.save(task)
}

// UpdateStatus changes the task status
func (s *TaskService) UpdateStatus(actor *models.User, taskID uint64, status models.TaskStatus) (*models.Task, error) {
	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanUpdateTaskStatus(actor, task, &task.Project) {
		return nil, apierrors.NewPermissionDenied()
	}
	if !status.IsValid() {
		return nil, apierrors.NewValidation("status", "Invalid task status")
	}

	task.Status = status
	return s.save(task)
}

// UpdatePriority changes the task priority
func (s *TaskService) UpdatePriority(actor *models.User, taskID uint64, priority models.TaskPriority) (*models.Task, error) {
	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanUpdateTaskStatus(actor, task, &task.Project) {
		return nil, apierrors.NewPermissionDenied()
	}
	if !priority.IsValid() {
		return nil, apierrors.NewValidation("priority", "Invalid task priority")
	}

	task.Priority = priority
	return s.save(task)
}

// Delete deletes a task and its time entries
func (s *TaskService) Delete(actor *models.User, taskID uint64) (*models.Task, error) {
	task, err := s.load(taskID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanDeleteTask(actor, &task.Project) {
		return nil, apierrors.NewPermissionDenied()
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return task, nil
}

func (s *TaskService) load(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Project")
	if err != nil {
		return nil, lookupErr(err, "Task")
	}
	return task, nil
}

func (s *TaskService) save(task *models.Task) (*models.Task, error) {
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}
