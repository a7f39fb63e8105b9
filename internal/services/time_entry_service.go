package services

import (
	"errors"
	"fmt"
	"time"

	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/metrics"
	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/permissions"
	"github.com/yukikurage/timetracker-api/internal/repository"
	"github.com/yukikurage/timetracker-api/internal/timesheet"
	"github.com/yukikurage/timetracker-api/internal/utils"
	"gorm.io/gorm"
)

// TimeEntryService runs the time entry workflow: creation with rate
// snapshotting, sparse edits and status transitions.
type TimeEntryService struct {
	entryRepo   repository.TimeEntryRepository
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

// NewTimeEntryService creates a new TimeEntryService
func NewTimeEntryService(entryRepo repository.TimeEntryRepository, taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository) *TimeEntryService {
	return &TimeEntryService{
		entryRepo:   entryRepo,
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
	}
}

// CreateTimeEntryInput represents input for logging time. Status exists only
// so that a caller asking for anything but DRAFT can be refused.
type CreateTimeEntryInput struct {
	TaskID      uint64
	Description string
	StartTime   time.Time
	EndTime     *time.Time
	Billable    *bool
	Status      *models.TimeEntryStatus
}

// ListTimeEntriesInput represents filters for listing time entries
type ListTimeEntriesInput struct {
	UserID       *uint64
	ProjectID    *uint64
	TaskID       *uint64
	Status       *models.TimeEntryStatus
	BillableOnly bool
	From         *time.Time
	To           *time.Time
	Preload      []string
	utils.PageRequest
}

// Create logs a new DRAFT entry on a task. The hourly rate is resolved once
// here and never recalculated.
func (s *TimeEntryService) Create(actor *models.User, input CreateTimeEntryInput) (*models.TimeEntry, error) {
	task, err := s.taskRepo.FindByID(input.TaskID)
	if err != nil {
		return nil, lookupErr(err, "Task")
	}

	member, err := s.projectRepo.FindMember(task.ProjectID, actor.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !permissions.CanCreateTimeEntry(actor, member != nil) {
		return nil, apierrors.NewPermissionDenied()
	}

	if input.Status != nil && *input.Status != models.TimeEntryStatusDraft {
		return nil, apierrors.NewValidation("status", "Time entries are always created as DRAFT")
	}
	if input.StartTime.IsZero() {
		return nil, apierrors.NewValidation("start_time", "start_time is required")
	}

	ownerID := actor.ID
	billable := true
	if input.Billable != nil {
		billable = *input.Billable
	}

	entry := &models.TimeEntry{
		Description: input.Description,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Billable:    billable,
		HourlyRate:  timesheet.ResolveRate(member, actor),
		Status:      models.TimeEntryStatusDraft,
		UserID:      &ownerID,
		TaskID:      task.ID,
		ProjectID:   task.ProjectID,
	}
	if err := timesheet.ValidateTimes(entry); err != nil {
		return nil, err
	}

	if err := s.entryRepo.Create(entry); err != nil {
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}
	return entry, nil
}

// List returns entries visible to the actor, newest first. Superusers and
// MANAGERs see everything; others see their own entries and those of the
// projects they manage.
func (s *TimeEntryService) List(actor *models.User, input ListTimeEntriesInput) ([]models.TimeEntry, int64, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, 0, apierrors.NewValidation("status", "Invalid time entry status")
	}

	filter := repository.TimeEntryFilter{
		UserID:       input.UserID,
		ProjectID:    input.ProjectID,
		TaskID:       input.TaskID,
		Status:       input.Status,
		BillableOnly: input.BillableOnly,
		From:         input.From,
		To:           input.To,
		Preload:      input.Preload,
		Page:         input.Page,
		PageSize:     input.PageSize,
	}
	if !permissions.CanSeeAllTimeEntries(actor) {
		actorID := actor.ID
		filter.VisibleToUserID = &actorID
	}

	entries, total, err := s.entryRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list time entries: %w", err)
	}
	return entries, total, nil
}

// Get returns an entry the actor may read
func (s *TimeEntryService) Get(actor *models.User, id uint64) (*models.TimeEntry, error) {
	entry, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !permissions.CanReadTimeEntry(actor, entry, &entry.Project) {
		return nil, apierrors.NewPermissionDenied()
	}
	return entry, nil
}

// Update applies a sparse patch. Editing a REJECTED entry puts it back to
// DRAFT, and giving a running entry its end time submits it.
func (s *TimeEntryService) Update(actor *models.User, id uint64, patch timesheet.Patch) (*models.TimeEntry, error) {
	entry, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !permissions.CanEditTimeEntry(actor, entry, &entry.Project) {
		return nil, apierrors.NewPermissionDenied()
	}

	from := entry.Status
	out, err := timesheet.ApplyPatch(entry, patch)
	if err != nil {
		return nil, err
	}
	if err := s.commit(entry, from); err != nil {
		return nil, err
	}

	if out.Reopened {
		metrics.TimeEntryTransitions.WithLabelValues(string(models.TimeEntryStatusDraft)).Inc()
	}
	if out.Submitted {
		metrics.TimeEntryTransitions.WithLabelValues(string(models.TimeEntryStatusSubmitted)).Inc()
	}
	return entry, nil
}

// Delete removes an entry the actor may edit
func (s *TimeEntryService) Delete(actor *models.User, id uint64) (*models.TimeEntry, error) {
	entry, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !permissions.CanEditTimeEntry(actor, entry, &entry.Project) {
		return nil, apierrors.NewPermissionDenied()
	}

	deleted, err := s.entryRepo.DeleteIfStatus(entry.ID, entry.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to delete time entry: %w", err)
	}
	if !deleted {
		metrics.TimeEntryTransitionConflicts.Inc()
		return nil, apierrors.NewInvalidState("Time entry status changed, try again")
	}
	return entry, nil
}

// Submit moves the actor's own DRAFT entry to SUBMITTED
func (s *TimeEntryService) Submit(actor *models.User, id uint64) (*models.TimeEntry, error) {
	return s.transition(id, func(entry *models.TimeEntry) bool {
		return permissions.CanSubmitTimeEntry(actor, entry)
	}, timesheet.Submit)
}

// Approve records the actor as approver of a SUBMITTED entry
func (s *TimeEntryService) Approve(actor *models.User, id uint64) (*models.TimeEntry, error) {
	return s.transition(id, func(entry *models.TimeEntry) bool {
		return permissions.CanReviewTimeEntry(actor, &entry.Project)
	}, func(entry *models.TimeEntry) error {
		return timesheet.Approve(entry, actor.ID)
	})
}

// Reject sends a SUBMITTED entry back to its owner with a reason
func (s *TimeEntryService) Reject(actor *models.User, id uint64, reason string) (*models.TimeEntry, error) {
	return s.transition(id, func(entry *models.TimeEntry) bool {
		return permissions.CanReviewTimeEntry(actor, &entry.Project)
	}, func(entry *models.TimeEntry) error {
		return timesheet.Reject(entry, reason)
	})
}

// MarkBilled closes an APPROVED entry
func (s *TimeEntryService) MarkBilled(actor *models.User, id uint64) (*models.TimeEntry, error) {
	return s.transition(id, func(*models.TimeEntry) bool {
		return permissions.CanMarkBilled(actor)
	}, timesheet.MarkBilled)
}

// Reopen returns a REJECTED entry to DRAFT
func (s *TimeEntryService) Reopen(actor *models.User, id uint64) (*models.TimeEntry, error) {
	return s.transition(id, func(entry *models.TimeEntry) bool {
		return permissions.CanReopenTimeEntry(actor, entry, &entry.Project)
	}, timesheet.Reopen)
}

// transition loads the entry, checks allowed, applies step and persists the
// result only if no other writer changed the status in the meantime.
func (s *TimeEntryService) transition(id uint64, allowed func(*models.TimeEntry) bool, step func(*models.TimeEntry) error) (*models.TimeEntry, error) {
	entry, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !allowed(entry) {
		return nil, apierrors.NewPermissionDenied()
	}

	from := entry.Status
	if err := step(entry); err != nil {
		return nil, err
	}
	if err := s.commit(entry, from); err != nil {
		return nil, err
	}

	if entry.Status != from {
		metrics.TimeEntryTransitions.WithLabelValues(string(entry.Status)).Inc()
	}
	return entry, nil
}

func (s *TimeEntryService) commit(entry *models.TimeEntry, from models.TimeEntryStatus) error {
	ok, err := s.entryRepo.UpdateIfStatus(entry, from)
	if err != nil {
		return fmt.Errorf("failed to update time entry: %w", err)
	}
	if !ok {
		metrics.TimeEntryTransitionConflicts.Inc()
		return apierrors.NewInvalidState("Time entry status changed, try again")
	}
	return nil
}

func (s *TimeEntryService) load(id uint64) (*models.TimeEntry, error) {
	entry, err := s.entryRepo.FindByID(id, "Project")
	if err != nil {
		return nil, lookupErr(err, "Time entry")
	}
	return entry, nil
}
