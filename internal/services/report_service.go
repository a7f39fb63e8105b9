package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/permissions"
)

// ReportService builds time entry reports from the entries an actor can see
type ReportService struct {
	entries *TimeEntryService
}

// NewReportService creates a new ReportService
func NewReportService(entries *TimeEntryService) *ReportService {
	return &ReportService{entries: entries}
}

// ReportInput selects entries by start time within [Start, End] (whole days)
type ReportInput struct {
	Start     time.Time
	End       time.Time
	UserID    *uint64
	ProjectID *uint64
}

// ReportSummary aggregates a report's entries. TotalCost covers all logged
// work; BillableCost only the billable part.
type ReportSummary struct {
	EntryCount    int     `json:"entry_count"`
	TotalHours    float64 `json:"total_hours"`
	BillableHours float64 `json:"billable_hours"`
	TotalCost     float64 `json:"total_cost"`
	BillableCost  float64 `json:"billable_cost"`
	ProjectCount  int     `json:"project_count"`
	TaskCount     int     `json:"task_count"`
}

// Report is the reporting collaborator's input: already authorized entries
// with their range and totals.
type Report struct {
	Start   time.Time
	End     time.Time
	Summary ReportSummary
	Entries []models.TimeEntry
}

// Generate collects the actor's visible entries in range. Only superusers
// and MANAGERs may report on another user.
func (s *ReportService) Generate(actor *models.User, input ReportInput) (*Report, error) {
	if input.Start.IsZero() || input.End.IsZero() {
		return nil, apierrors.NewValidation("start_date", "start_date and end_date are required")
	}
	if input.End.Before(input.Start) {
		return nil, apierrors.NewValidation("end_date", "end_date must not be before start_date")
	}
	if input.UserID != nil && *input.UserID != actor.ID && !permissions.CanSeeAllTimeEntries(actor) {
		return nil, apierrors.NewPermissionDenied()
	}

	from := truncateDay(input.Start)
	to := truncateDay(input.End).AddDate(0, 0, 1)

	entries, _, err := s.entries.List(actor, ListTimeEntriesInput{
		UserID:    input.UserID,
		ProjectID: input.ProjectID,
		From:      &from,
		To:        &to,
		Preload:   []string{"Project", "Task"},
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, apierrors.NewNotFound("No time entries found for the selected criteria")
	}

	return &Report{
		Start:   from,
		End:     truncateDay(input.End),
		Summary: summarize(entries),
		Entries: entries,
	}, nil
}

func summarize(entries []models.TimeEntry) ReportSummary {
	projects := make(map[uint64]struct{})
	tasks := make(map[uint64]struct{})
	var sum ReportSummary

	for i := range entries {
		e := &entries[i]
		hours := e.DurationHours()
		sum.TotalHours += hours
		if e.Billable {
			sum.BillableHours += hours
		}
		sum.TotalCost += e.Cost()
		sum.BillableCost += billableCost(e)
		projects[e.ProjectID] = struct{}{}
		tasks[e.TaskID] = struct{}{}
	}

	sum.EntryCount = len(entries)
	sum.ProjectCount = len(projects)
	sum.TaskCount = len(tasks)
	return sum
}

// WriteCSV renders the report as CSV: one row per entry followed by a total row.
func WriteCSV(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)

	header := []string{"Date", "Project", "Task", "Description", "Hours", "Billable", "Rate", "Cost", "Billable Cost", "Status"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	for i := range report.Entries {
		e := &report.Entries[i]
		row := []string{
			e.StartTime.Format("2006-01-02"),
			nameOr(e.Project.Name),
			nameOr(e.Task.Title),
			e.Description,
			formatHours(e.DurationHours()),
			strconv.FormatBool(e.Billable),
			formatHours(e.HourlyRate),
			formatHours(e.Cost()),
			formatHours(billableCost(e)),
			string(e.Status),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	total := []string{
		"Total", "", "", "",
		formatHours(report.Summary.TotalHours), "", "",
		formatHours(report.Summary.TotalCost),
		formatHours(report.Summary.BillableCost),
		"",
	}
	if err := cw.Write(total); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

// billableCost is the entry's cost, or zero for non-billable work.
func billableCost(e *models.TimeEntry) float64 {
	if !e.Billable {
		return 0
	}
	return e.Cost()
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func nameOr(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
