package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timetracker-api/internal/dto"
	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/services"
	"go.uber.org/zap"
)

// ReportHandler renders time entry reports as JSON or CSV
type ReportHandler struct {
	reportService *services.ReportService
	log           *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *services.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		log:           log,
	}
}

// GenerateReport reads the criteria from the query string:
// start_date, end_date, user_id, project_id and format (json or csv).
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	type ReportQuery struct {
		StartDate string  `form:"start_date" binding:"required"`
		EndDate   string  `form:"end_date" binding:"required"`
		UserID    *uint64 `form:"user_id"`
		ProjectID *uint64 `form:"project_id"`
		Format    string  `form:"format"`
	}

	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		apierrors.BadRequest(c, "start_date and end_date are required")
		return
	}
	h.generate(c, q.StartDate, q.EndDate, q.UserID, q.ProjectID, q.Format)
}

// GenerateReportFromBody accepts the same criteria as a JSON body
func (h *ReportHandler) GenerateReportFromBody(c *gin.Context) {
	type ReportRequest struct {
		StartDate string  `json:"start_date" binding:"required"`
		EndDate   string  `json:"end_date" binding:"required"`
		UserID    *uint64 `json:"user_id"`
		ProjectID *uint64 `json:"project_id"`
		Format    string  `json:"format"`
	}

	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "start_date and end_date are required")
		return
	}
	h.generate(c, req.StartDate, req.EndDate, req.UserID, req.ProjectID, req.Format)
}

func (h *ReportHandler) generate(c *gin.Context, startRaw, endRaw string, userID, projectID *uint64, format string) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	start, err := time.Parse("2006-01-02", startRaw)
	if err != nil {
		apierrors.BadRequest(c, "Invalid start_date")
		return
	}
	end, err := time.Parse("2006-01-02", endRaw)
	if err != nil {
		apierrors.BadRequest(c, "Invalid end_date")
		return
	}
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		apierrors.BadRequest(c, "format must be json or csv")
		return
	}

	report, err := h.reportService.Generate(actor, services.ReportInput{
		Start:     start,
		End:       end,
		UserID:    userID,
		ProjectID: projectID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	if format == "json" {
		c.JSON(http.StatusOK, dto.ToReportResponse(report))
		return
	}

	filename := fmt.Sprintf("time-report-%s-%s.csv", start.Format("20060102"), end.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := services.WriteCSV(c.Writer, report); err != nil {
		// headers are already sent
		h.log.Error("failed to write csv report", zap.Error(err))
	}
}
