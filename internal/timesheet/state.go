// Package timesheet holds the time-entry lifecycle: legal status transitions,
// the checks gating each one, sparse edits and hourly rate resolution.
//
// Functions here never touch storage. They mutate the entry only when they
// succeed, so a failed call leaves it exactly as it was.
package timesheet

import (
	"strings"

	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
)

var transitions = map[models.TimeEntryStatus][]models.TimeEntryStatus{
	models.TimeEntryStatusDraft:     {models.TimeEntryStatusSubmitted},
	models.TimeEntryStatusSubmitted: {models.TimeEntryStatusApproved, models.TimeEntryStatusRejected},
	models.TimeEntryStatusApproved:  {models.TimeEntryStatusBilled},
	models.TimeEntryStatusRejected:  {models.TimeEntryStatusDraft},
	models.TimeEntryStatusBilled:    nil,
}

// CanTransition reports whether from -> to is an edge of the lifecycle.
func CanTransition(from, to models.TimeEntryStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsEditable reports whether field edits are allowed in status s.
func IsEditable(s models.TimeEntryStatus) bool {
	return s == models.TimeEntryStatusDraft || s == models.TimeEntryStatusRejected
}

func ensureTransition(entry *models.TimeEntry, to models.TimeEntryStatus) error {
	if CanTransition(entry.Status, to) {
		return nil
	}
	if entry.Status == models.TimeEntryStatusBilled {
		return apierrors.NewInvalidState("Billed time entries are closed")
	}
	return apierrors.NewInvalidState("Cannot move time entry from " + string(entry.Status) + " to " + string(to))
}

// ValidateForSubmission checks the fields a submitted entry must carry.
func ValidateForSubmission(entry *models.TimeEntry) error {
	if entry.EndTime == nil {
		return apierrors.NewValidation("end_time", "End time is required")
	}
	if !entry.StartTime.Before(*entry.EndTime) {
		return apierrors.NewValidation("end_time", "End time must be after start time")
	}
	if strings.TrimSpace(entry.Description) == "" {
		return apierrors.NewValidation("description", "Description is required")
	}
	if entry.HourlyRate <= 0 {
		return apierrors.NewValidation("hourly_rate", "Hourly rate must be positive")
	}
	return nil
}

// ValidateTimes enforces end_time >= start_time when an end is present.
func ValidateTimes(entry *models.TimeEntry) error {
	if entry.EndTime != nil && entry.EndTime.Before(entry.StartTime) {
		return apierrors.NewValidation("end_time", "End time cannot be before start time")
	}
	return nil
}

// Submit moves a DRAFT entry to SUBMITTED.
func Submit(entry *models.TimeEntry) error {
	if err := ensureTransition(entry, models.TimeEntryStatusSubmitted); err != nil {
		return err
	}
	if err := ValidateForSubmission(entry); err != nil {
		return err
	}
	entry.Status = models.TimeEntryStatusSubmitted
	return nil
}

// Approve moves a SUBMITTED entry to APPROVED and records the approver.
func Approve(entry *models.TimeEntry, approverID uint64) error {
	if err := ensureTransition(entry, models.TimeEntryStatusApproved); err != nil {
		return err
	}
	entry.Status = models.TimeEntryStatusApproved
	entry.ApprovedByID = &approverID
	return nil
}

// Reject moves a SUBMITTED entry to REJECTED with a mandatory reason.
func Reject(entry *models.TimeEntry, reason string) error {
	if err := ensureTransition(entry, models.TimeEntryStatusRejected); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apierrors.NewValidation("reason", "Rejection reason is required")
	}
	entry.Status = models.TimeEntryStatusRejected
	entry.RejectionReason = &reason
	return nil
}

// MarkBilled moves an APPROVED entry to BILLED. No other field changes.
func MarkBilled(entry *models.TimeEntry) error {
	if err := ensureTransition(entry, models.TimeEntryStatusBilled); err != nil {
		return err
	}
	entry.Status = models.TimeEntryStatusBilled
	return nil
}

// Reopen moves a REJECTED entry back to DRAFT and clears the rejection reason.
func Reopen(entry *models.TimeEntry) error {
	if err := ensureTransition(entry, models.TimeEntryStatusDraft); err != nil {
		return err
	}
	entry.Status = models.TimeEntryStatusDraft
	entry.RejectionReason = nil
	return nil
}
