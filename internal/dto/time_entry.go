package dto

import (
	"math"
	"time"

	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/utils"
)

// TimeEntryDTO represents a time entry with its derived duration and cost
type TimeEntryDTO struct {
	ID              uint64                 `json:"id"`
	Description     string                 `json:"description"`
	StartTime       time.Time              `json:"start_time"`
	EndTime         *time.Time             `json:"end_time"`
	Billable        bool                   `json:"billable"`
	HourlyRate      float64                `json:"hourly_rate"`
	Status          models.TimeEntryStatus `json:"status"`
	RejectionReason *string                `json:"rejection_reason"`
	UserID          *uint64                `json:"user_id"`
	TaskID          uint64                 `json:"task_id"`
	ProjectID       uint64                 `json:"project_id"`
	ApprovedByID    *uint64                `json:"approved_by_id"`
	DurationHours   float64                `json:"duration_hours"`
	Cost            float64                `json:"cost"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// TimeEntryListResponse represents a paginated list of time entries
type TimeEntryListResponse struct {
	TimeEntries []TimeEntryDTO `json:"time_entries"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalCount  int64          `json:"total_count"`
	TotalPages  int            `json:"total_pages"`
}

// ToTimeEntryDTO converts a TimeEntry model to TimeEntryDTO
func ToTimeEntryDTO(entry models.TimeEntry) TimeEntryDTO {
	return TimeEntryDTO{
		ID:              entry.ID,
		Description:     entry.Description,
		StartTime:       entry.StartTime,
		EndTime:         entry.EndTime,
		Billable:        entry.Billable,
		HourlyRate:      entry.HourlyRate,
		Status:          entry.Status,
		RejectionReason: entry.RejectionReason,
		UserID:          entry.UserID,
		TaskID:          entry.TaskID,
		ProjectID:       entry.ProjectID,
		ApprovedByID:    entry.ApprovedByID,
		DurationHours:   round2(entry.DurationHours()),
		Cost:            round2(entry.Cost()),
		CreatedAt:       entry.CreatedAt,
		UpdatedAt:       entry.UpdatedAt,
	}
}

// ToTimeEntryListResponse converts a page of entries
func ToTimeEntryListResponse(entries []models.TimeEntry, page utils.PageRequest, totalCount int64) TimeEntryListResponse {
	items := make([]TimeEntryDTO, len(entries))
	for i, entry := range entries {
		items[i] = ToTimeEntryDTO(entry)
	}

	return TimeEntryListResponse{
		TimeEntries: items,
		Page:        page.Page,
		PageSize:    page.PageSize,
		TotalCount:  totalCount,
		TotalPages:  page.TotalPages(totalCount),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
