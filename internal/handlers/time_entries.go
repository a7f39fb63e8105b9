package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timetracker-api/internal/dto"
	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/services"
	"github.com/yukikurage/timetracker-api/internal/timesheet"
	"github.com/yukikurage/timetracker-api/internal/utils"
)

// TimeEntryHandler serves time entries and their review workflow
type TimeEntryHandler struct {
	entryService *services.TimeEntryService
}

// NewTimeEntryHandler creates a new TimeEntryHandler
func NewTimeEntryHandler(entryService *services.TimeEntryService) *TimeEntryHandler {
	return &TimeEntryHandler{
		entryService: entryService,
	}
}

// ListTimeEntries returns visible entries, newest first
func (h *TimeEntryHandler) ListTimeEntries(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	input := services.ListTimeEntriesInput{
		BillableOnly: c.Query("billable") == "true",
		PageRequest:  utils.PageFromQuery(c),
	}
	for name, dst := range map[string]**uint64{
		"user_id":    &input.UserID,
		"project_id": &input.ProjectID,
		"task_id":    &input.TaskID,
	} {
		v, ok := optionalUintQuery(c, name)
		if !ok {
			return
		}
		*dst = v
	}
	if input.From, ok = optionalTimeQuery(c, "from"); !ok {
		return
	}
	if input.To, ok = optionalTimeQuery(c, "to"); !ok {
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := models.TimeEntryStatus(raw)
		input.Status = &status
	}

	entries, total, err := h.entryService.List(actor, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryListResponse(entries, input.PageRequest, total))
}

// CreateTimeEntry logs time on a task as a DRAFT entry
func (h *TimeEntryHandler) CreateTimeEntry(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	type CreateTimeEntryRequest struct {
		TaskID      uint64                  `json:"task_id" binding:"required"`
		Description string                  `json:"description"`
		StartTime   time.Time               `json:"start_time" binding:"required"`
		EndTime     *time.Time              `json:"end_time"`
		Billable    *bool                   `json:"billable"`
		Status      *models.TimeEntryStatus `json:"status"`
	}

	var req CreateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	entry, err := h.entryService.Create(actor, services.CreateTimeEntryInput{
		TaskID:      req.TaskID,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Billable:    req.Billable,
		Status:      req.Status,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimeEntryDTO(*entry))
}

// GetTimeEntry returns a single entry
func (h *TimeEntryHandler) GetTimeEntry(c *gin.Context) {
	h.respondEntry(c, h.entryService.Get)
}

// UpdateTimeEntry applies a sparse edit
func (h *TimeEntryHandler) UpdateTimeEntry(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	type UpdateTimeEntryRequest struct {
		Description *string    `json:"description"`
		StartTime   *time.Time `json:"start_time"`
		EndTime     *time.Time `json:"end_time"`
		Billable    *bool      `json:"billable"`
	}

	var req UpdateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	entry, err := h.entryService.Update(actor, id, timesheet.Patch{
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Billable:    req.Billable,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryDTO(*entry))
}

// DeleteTimeEntry removes an editable entry
func (h *TimeEntryHandler) DeleteTimeEntry(c *gin.Context) {
	h.respondEntry(c, h.entryService.Delete)
}

// SubmitTimeEntry sends a DRAFT entry for review
func (h *TimeEntryHandler) SubmitTimeEntry(c *gin.Context) {
	h.respondEntry(c, h.entryService.Submit)
}

// ApproveTimeEntry approves a SUBMITTED entry
func (h *TimeEntryHandler) ApproveTimeEntry(c *gin.Context) {
	h.respondEntry(c, h.entryService.Approve)
}

// RejectTimeEntry rejects a SUBMITTED entry with a reason
func (h *TimeEntryHandler) RejectTimeEntry(c *gin.Context) {
	type RejectRequest struct {
		Reason string `json:"reason" binding:"required"`
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	h.respondEntry(c, func(actor *models.User, id uint64) (*models.TimeEntry, error) {
		return h.entryService.Reject(actor, id, req.Reason)
	})
}

// MarkTimeEntryBilled marks an APPROVED entry as billed
func (h *TimeEntryHandler) MarkTimeEntryBilled(c *gin.Context) {
	h.respondEntry(c, h.entryService.MarkBilled)
}

// ReopenTimeEntry returns a REJECTED entry to DRAFT
func (h *TimeEntryHandler) ReopenTimeEntry(c *gin.Context) {
	h.respondEntry(c, h.entryService.Reopen)
}

func (h *TimeEntryHandler) respondEntry(c *gin.Context, op func(*models.User, uint64) (*models.TimeEntry, error)) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	entry, err := op(actor, id)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryDTO(*entry))
}
