package dto

import (
	"time"

	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID             uint64              `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Status         models.TaskStatus   `json:"status"`
	Priority       models.TaskPriority `json:"priority"`
	EstimatedHours *float64            `json:"estimated_hours"`
	DueDate        *time.Time          `json:"due_date"`
	ProjectID      uint64              `json:"project_id"`
	CreatedByID    *uint64             `json:"created_by_id"`
	AssignedToID   *uint64             `json:"assigned_to_id"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Project        *ProjectDTO         `json:"project,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         task.Status,
		Priority:       task.Priority,
		EstimatedHours: task.EstimatedHours,
		DueDate:        task.DueDate,
		ProjectID:      task.ProjectID,
		CreatedByID:    task.CreatedByID,
		AssignedToID:   task.AssignedToID,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}

	// Include project if preloaded
	if task.Project.ID != 0 {
		project := ToProjectDTO(task.Project)
		dto.Project = &project
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page utils.PageRequest, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: totalCount,
		TotalPages: page.TotalPages(totalCount),
	}
}
