package timesheet

import (
	"time"

	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
)

// Patch is a sparse edit of a time entry. Nil fields are left untouched.
// Status, rate, owner and task are not editable through a patch.
type Patch struct {
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
	Billable    *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Description == nil && p.StartTime == nil && p.EndTime == nil && p.Billable == nil
}

// Outcome describes the status side effects of ApplyPatch.
type Outcome struct {
	// Reopened is set when a REJECTED entry went back to DRAFT.
	Reopened bool
	// Submitted is set when the edit stopped a running entry and submitted it.
	Submitted bool
}

// ApplyPatch merges p into entry. Only DRAFT and REJECTED entries accept
// edits; a REJECTED entry returns to DRAFT. When the patch gives the entry
// its first end time the entry is submitted, with the same checks as Submit.
// On error entry is left unchanged.
func ApplyPatch(entry *models.TimeEntry, p Patch) (Outcome, error) {
	var out Outcome
	if !IsEditable(entry.Status) {
		return out, apierrors.NewInvalidState("Time entry can only be edited while DRAFT or REJECTED")
	}

	next := *entry
	stopping := entry.EndTime == nil && p.EndTime != nil

	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.StartTime != nil {
		next.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		end := *p.EndTime
		next.EndTime = &end
	}
	if p.Billable != nil {
		next.Billable = *p.Billable
	}

	if err := ValidateTimes(&next); err != nil {
		return out, err
	}

	if next.Status == models.TimeEntryStatusRejected {
		if err := Reopen(&next); err != nil {
			return out, err
		}
		out.Reopened = true
	}

	if stopping {
		if err := Submit(&next); err != nil {
			return Outcome{}, err
		}
		out.Submitted = true
	}

	*entry = next
	return out, nil
}
