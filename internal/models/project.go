package models

import (
	"time"
)

type ProjectStatus string

const (
	ProjectStatusPlanned    ProjectStatus = "PLANNED"
	ProjectStatusInProgress ProjectStatus = "IN_PROGRESS"
	ProjectStatusOnHold     ProjectStatus = "ON_HOLD"
	ProjectStatusCompleted  ProjectStatus = "COMPLETED"
	ProjectStatusCancelled  ProjectStatus = "CANCELLED"
)

func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPlanned, ProjectStatusInProgress, ProjectStatusOnHold,
		ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	default:
		return false
	}
}

type Project struct {
	ID                uint64        `gorm:"primarykey" json:"id"`
	Name              string        `gorm:"type:varchar(255);not null" json:"name"`
	Description       string        `gorm:"type:text" json:"description"`
	Status            ProjectStatus `gorm:"type:varchar(20);not null" json:"status"`
	BudgetHours       float64       `gorm:"not null" json:"budget_hours"`
	DefaultHourlyRate float64       `gorm:"not null" json:"default_hourly_rate"`
	OwnerID           uint64        `gorm:"not null;index" json:"owner_id"`
	ManagerID         *uint64       `gorm:"index" json:"manager_id"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`

	// Relations
	Owner   *User               `gorm:"foreignKey:OwnerID" json:"-"`
	Manager *User               `gorm:"foreignKey:ManagerID" json:"-"`
	Members []ProjectTeamMember `gorm:"foreignKey:ProjectID" json:"-"`
}

// IsManagedBy reports whether userID is the project's manager (the relationship,
// not the global role).
func (p *Project) IsManagedBy(userID uint64) bool {
	return p.ManagerID != nil && *p.ManagerID == userID
}
