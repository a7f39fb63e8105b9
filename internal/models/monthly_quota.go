package models

import "time"

// MonthlyQuota holds the expected working capacity for a calendar month.
type MonthlyQuota struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Month        string    `gorm:"type:varchar(7);uniqueIndex;not null" json:"month"`
	WorkingDays  int       `gorm:"not null" json:"working_days"`
	DailyHours   float64   `gorm:"not null" json:"daily_hours"`
	MonthlyHours float64   `gorm:"not null" json:"monthly_hours"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
