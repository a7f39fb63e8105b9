package models

import "time"

// ProjectTeamMember links a user to a project. HourlyRate, when set,
// overrides the user's personal rate for entries logged on this project.
type ProjectTeamMember struct {
	ProjectID  uint64    `gorm:"primarykey" json:"project_id"`
	UserID     uint64    `gorm:"primarykey" json:"user_id"`
	HourlyRate *float64  `json:"hourly_rate"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"-"`
}
