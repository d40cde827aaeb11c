package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "hestia/internal/errors"
	"hestia/internal/period"
	"hestia/internal/services"
)

// DashboardHandler handles dashboard aggregation requests.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, name string) (*int, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, name+" must be an integer")
	}
	return &n, nil
}

// GetSummary handles the dashboard summary request.
// @Summary     Get dashboard summary
// @Description Get the month's spending picture: totals, top categories, recent expenses, alerts and pending obligations
// @Tags        dashboard
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       year  query int false "Year (defaults to current)"
// @Param       month query int false "Month 1-12 (defaults to current)"
// @Success     200 {object} services.DashboardSummary "Dashboard summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, err := queryInt(c, "year")
	if err != nil {
		respondWithError(c, err)
		return
	}
	month, err := queryInt(c, "month")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.dashboardService.GetSummary(userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetWeeklyData handles the weekly spending chart request.
// @Summary     Get weekly chart
// @Description Get per-day spending for the week containing the reference date
// @Tags        dashboard
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       year  query int false "Year (defaults to current)"
// @Param       month query int false "Month 1-12 (defaults to current)"
// @Param       day   query int false "Day of month (defaults to current)"
// @Success     200 {object} services.ChartData "Weekly chart data"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/charts/weekly [get]
func (h *DashboardHandler) GetWeeklyData(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, err := queryInt(c, "year")
	if err != nil {
		respondWithError(c, err)
		return
	}
	month, err := queryInt(c, "month")
	if err != nil {
		respondWithError(c, err)
		return
	}
	day, err := queryInt(c, "day")
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := h.dashboardService.GetWeeklyData(userID, year, month, day)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// GetMonthlyData handles the monthly spending chart request.
// @Summary     Get monthly chart
// @Description Get per-week spending for the month containing the reference date
// @Tags        dashboard
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       year  query int false "Year (defaults to current)"
// @Param       month query int false "Month 1-12 (defaults to current)"
// @Success     200 {object} services.ChartData "Monthly chart data"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/charts/monthly [get]
func (h *DashboardHandler) GetMonthlyData(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, err := queryInt(c, "year")
	if err != nil {
		respondWithError(c, err)
		return
	}
	month, err := queryInt(c, "month")
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := h.dashboardService.GetMonthlyData(userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// GetAnnualData handles the annual spending chart request.
// @Summary     Get annual chart
// @Description Get per-month spending for the reference year
// @Tags        dashboard
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Year (defaults to current)"
// @Success     200 {object} services.ChartData "Annual chart data"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/charts/annual [get]
func (h *DashboardHandler) GetAnnualData(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, err := queryInt(c, "year")
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := h.dashboardService.GetAnnualData(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// GetCategoryBreakdown handles the category breakdown request.
// @Summary     Get category breakdown
// @Description Split the current period window's spending by category
// @Tags        dashboard
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "Period (weekly/monthly/annual, default monthly)"
// @Success     200 {array} services.CategorySpending "Category breakdown"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/breakdown [get]
func (h *DashboardHandler) GetCategoryBreakdown(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	p := period.Monthly
	if v := c.Query("period"); v != "" {
		p = period.Period(v)
		if !p.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be 'weekly', 'monthly' or 'annual'"))
			return
		}
	}

	breakdown, err := h.dashboardService.GetCategoryBreakdown(userID, p)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"breakdown": breakdown})
}

// GetPendingObligations handles the pending obligations request.
// @Summary     Get pending obligations
// @Description List mandatory subcategories whose expected expense is still unpaid in the current period
// @Tags        dashboard
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       date query string false "Reference date (RFC 3339, defaults to now)"
// @Success     200 {array} services.PendingObligation "Pending obligations"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/pending [get]
func (h *DashboardHandler) GetPendingObligations(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ref := time.Now()
	if v := c.Query("date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be RFC 3339"))
			return
		}
		ref = t
	}

	pending, err := h.dashboardService.PendingObligations(userID, ref)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending": pending})
}
