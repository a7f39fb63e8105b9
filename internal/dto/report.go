package dto

import (
	"github.com/yukikurage/timetracker-api/internal/services"
)

// ReportResponse is the JSON rendering of a time entry report
type ReportResponse struct {
	StartDate   string                 `json:"start_date"`
	EndDate     string                 `json:"end_date"`
	Summary     services.ReportSummary `json:"summary"`
	TimeEntries []TimeEntryDTO         `json:"time_entries"`
}

// ToReportResponse converts a generated report
func ToReportResponse(report *services.Report) ReportResponse {
	items := make([]TimeEntryDTO, len(report.Entries))
	for i, entry := range report.Entries {
		items[i] = ToTimeEntryDTO(entry)
	}

	summary := report.Summary
	summary.TotalHours = round2(summary.TotalHours)
	summary.BillableHours = round2(summary.BillableHours)
	summary.TotalCost = round2(summary.TotalCost)
	summary.BillableCost = round2(summary.BillableCost)

	return ReportResponse{
		StartDate:   report.Start.Format("2006-01-02"),
		EndDate:     report.End.Format("2006-01-02"),
		Summary:     summary,
		TimeEntries: items,
	}
}
