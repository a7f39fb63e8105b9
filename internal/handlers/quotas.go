package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/services"
)

// MonthlyQuotaHandler serves the expected working hours per month
type MonthlyQuotaHandler struct {
	quotaService *services.MonthlyQuotaService
}

// NewMonthlyQuotaHandler creates a new MonthlyQuotaHandler
func NewMonthlyQuotaHandler(quotaService *services.MonthlyQuotaService) *MonthlyQuotaHandler {
	return &MonthlyQuotaHandler{
		quotaService: quotaService,
	}
}

type quotaRequest struct {
	Month        string   `json:"month"`
	WorkingDays  *int     `json:"working_days"`
	DailyHours   *float64 `json:"daily_hours"`
	MonthlyHours *float64 `json:"monthly_hours"`
}

func (r quotaRequest) input(month string) services.QuotaInput {
	return services.QuotaInput{
		Month:        month,
		WorkingDays:  r.WorkingDays,
		DailyHours:   r.DailyHours,
		MonthlyHours: r.MonthlyHours,
	}
}

// ListQuotas returns the quotas of ?year=, or all of them
func (h *MonthlyQuotaHandler) ListQuotas(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	year := 0
	if raw := c.Query("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid year")
			return
		}
		year = v
	}

	quotas, err := h.quotaService.ListByYear(year)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, quotas)
}

// GetQuota returns the quota of a YYYY-MM month
func (h *MonthlyQuotaHandler) GetQuota(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	quota, err := h.quotaService.Get(c.Param("month"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, quota)
}

// CreateQuota defines the quota of a new month
func (h *MonthlyQuotaHandler) CreateQuota(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req quotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	quota, err := h.quotaService.Create(actor, req.input(req.Month))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, quota)
}

// UpdateQuota changes an existing month's quota
func (h *MonthlyQuotaHandler) UpdateQuota(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req quotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	month := c.Param("month")
	quota, err := h.quotaService.Update(actor, month, req.input(month))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, quota)
}

// DeleteQuota removes a month's quota
func (h *MonthlyQuotaHandler) DeleteQuota(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	quota, err := h.quotaService.Delete(actor, c.Param("month"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, quota)
}
