package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusReview     TaskStatus = "REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	default:
		return false
	}
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	default:
		return false
	}
}

type Task struct {
	ID             uint64       `gorm:"primarykey" json:"id"`
	Title          string       `gorm:"type:varchar(255);not null" json:"title"`
	Description    string       `gorm:"type:text" json:"description"`
	Status         TaskStatus   `gorm:"type:varchar(20);not null" json:"status"`
	Priority       TaskPriority `gorm:"type:varchar(20);not null" json:"priority"`
	EstimatedHours *float64     `json:"estimated_hours"`
	DueDate        *time.Time   `json:"due_date"`
	ProjectID      uint64       `gorm:"not null;index" json:"project_id"`
	CreatedByID    *uint64      `gorm:"index" json:"created_by_id"`
	AssignedToID   *uint64      `gorm:"index" json:"assigned_to_id"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	// Relations
	Project    Project `gorm:"foreignKey:ProjectID" json:"-"`
	CreatedBy  *User   `gorm:"foreignKey:CreatedByID" json:"-"`
	AssignedTo *User   `gorm:"foreignKey:AssignedToID" json:"-"`
}

func (t *Task) IsCreatedBy(userID uint64) bool {
	return t.CreatedByID != nil && *t.CreatedByID == userID
}

func (t *Task) IsAssignedTo(userID uint64) bool {
	return t.AssignedToID != nil && *t.AssignedToID == userID
}
