package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/resolvedesk/complaint-api/internal/service"
	"github.com/resolvedesk/complaint-api/pkg/response"
)

// AnalyticsHandler serves the aggregated complaint statistics endpoints.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler creates a new handler.
func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc}
}

// CategoryStats godoc
// @Summary Complaints per category
// @Description Complaint counts grouped by category, highest first
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /admin/analytics/category-stats [get]
func (h *AnalyticsHandler) CategoryStats(c *gin.Context) {
	stats, cached, err := h.service.CategoryStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil, map[string]interface{}{"cache": cached})
}

// MonthlyTrends godoc
// @Summary Monthly complaint trends
// @Description Per-month status breakdown for a calendar year
// @Tags Analytics
// @Produce json
// @Param year query int false "Calendar year (defaults to current)"
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /admin/analytics/monthly-trends [get]
func (h *AnalyticsHandler) MonthlyTrends(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))

	trends, cached, err := h.service.MonthlyTrends(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, trends, nil, map[string]interface{}{"cache": cached})
}

// FrequentIssues godoc
// @Summary Frequently reported issues
// @Description Recurring category and title pairs with average resolution time
// @Tags Analytics
// @Produce json
// @Param limit query int false "Maximum rows (defaults to 10)"
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /admin/analytics/frequent-issues [get]
func (h *AnalyticsHandler) FrequentIssues(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	issues, cached, err := h.service.FrequentIssues(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, issues, nil, map[string]interface{}{"cache": cached})
}

// PriorityStats godoc
// @Summary Complaints per priority
// @Description Complaint counts grouped by priority in severity order
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /admin/analytics/priority-stats [get]
func (h *AnalyticsHandler) PriorityStats(c *gin.Context) {
	stats, cached, err := h.service.PriorityStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil, map[string]interface{}{"cache": cached})
}
