package models

import (
	"time"
)

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
	RoleClient   Role = "CLIENT"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin, RoleClient:
		return true
	default:
		return false
	}
}

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName     string    `gorm:"type:varchar(255)" json:"full_name"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null" json:"role"`
	IsSuperuser  bool      `gorm:"not null" json:"is_superuser"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	HourlyRate   *float64  `json:"hourly_rate"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsManagerRole reports the global MANAGER role grant, as opposed to being
// the manager of a particular project.
func (u *User) IsManagerRole() bool {
	return u.Role == RoleManager
}
