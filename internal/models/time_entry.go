package models

import (
	"time"
)

type TimeEntryStatus string

const (
	TimeEntryStatusDraft     TimeEntryStatus = "DRAFT"
	TimeEntryStatusSubmitted TimeEntryStatus = "SUBMITTED"
	TimeEntryStatusApproved  TimeEntryStatus = "APPROVED"
	TimeEntryStatusRejected  TimeEntryStatus = "REJECTED"
	TimeEntryStatusBilled    TimeEntryStatus = "BILLED"
)

func (s TimeEntryStatus) IsValid() bool {
	switch s {
	case TimeEntryStatusDraft, TimeEntryStatusSubmitted, TimeEntryStatusApproved,
		TimeEntryStatusRejected, TimeEntryStatusBilled:
		return true
	default:
		return false
	}
}

// TerminalTimeEntryStatuses lists the statuses that no longer block
// deletion of an entry's owner.
func TerminalTimeEntryStatuses() []TimeEntryStatus {
	return []TimeEntryStatus{TimeEntryStatusApproved, TimeEntryStatusRejected, TimeEntryStatusBilled}
}

func (s TimeEntryStatus) IsTerminal() bool {
	for _, t := range TerminalTimeEntryStatuses() {
		if s == t {
			return true
		}
	}
	return false
}

// TimeEntry is a block of logged work. HourlyRate is a snapshot taken when
// the entry is created. UserID is cleared when the owner is deleted; the
// entry itself stays for billing history.
type TimeEntry struct {
	ID              uint64          `gorm:"primarykey" json:"id"`
	Description     string          `gorm:"type:text" json:"description"`
	StartTime       time.Time       `gorm:"not null;index" json:"start_time"`
	EndTime         *time.Time      `json:"end_time"`
	Billable        bool            `gorm:"not null" json:"billable"`
	HourlyRate      float64         `gorm:"not null" json:"hourly_rate"`
	Status          TimeEntryStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	RejectionReason *string         `gorm:"type:text" json:"rejection_reason"`
	UserID          *uint64         `gorm:"index" json:"user_id"`
	TaskID          uint64          `gorm:"not null;index" json:"task_id"`
	ProjectID       uint64          `gorm:"not null;index" json:"project_id"`
	ApprovedByID    *uint64         `gorm:"index" json:"approved_by_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Relations
	User       *User   `gorm:"foreignKey:UserID" json:"-"`
	Task       Task    `gorm:"foreignKey:TaskID" json:"-"`
	Project    Project `gorm:"foreignKey:ProjectID" json:"-"`
	ApprovedBy *User   `gorm:"foreignKey:ApprovedByID" json:"-"`
}

// DurationHours is zero while the entry has no end time.
func (e *TimeEntry) DurationHours() float64 {
	if e.EndTime == nil {
		return 0
	}
	return e.EndTime.Sub(e.StartTime).Hours()
}

func (e *TimeEntry) Cost() float64 {
	return e.DurationHours() * e.HourlyRate
}

func (e *TimeEntry) IsOwnedBy(userID uint64) bool {
	return e.UserID != nil && *e.UserID == userID
}
