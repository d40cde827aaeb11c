package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "hestia/internal/errors"
	"hestia/internal/pagination"
	"hestia/internal/services"
)

// AlertHandler handles budget alert requests.
type AlertHandler struct {
	alertService services.AlertServicer
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertService services.AlertServicer) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// GetAlerts handles listing the user's alerts.
// @Summary     Get alerts
// @Description Get a paginated list of budget alerts, newest first
// @Tags        alerts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Alert] "Paginated alerts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /alerts [get]
func (h *AlertHandler) GetAlerts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.alertService.GetAlerts(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUnreadAlerts handles listing unread alerts.
// @Summary     Get unread alerts
// @Description Get all unread budget alerts, newest first
// @Tags        alerts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Alert "Unread alerts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /alerts/unread [get]
func (h *AlertHandler) GetUnreadAlerts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	alerts, err := h.alertService.GetUnreadAlerts(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// GetUnreadCount handles counting unread alerts.
// @Summary     Get unread alert count
// @Description Get the number of unread budget alerts
// @Tags        alerts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Unread count"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /alerts/unread/count [get]
func (h *AlertHandler) GetUnreadCount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	count, err := h.alertService.GetUnreadCount(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkAsRead handles marking one alert as read.
// @Summary     Mark alert as read
// @Description Mark a single alert as read
// @Tags        alerts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Alert ID"
// @Success     204 "Alert marked as read"
// @Failure     400 {object} ErrorResponse "Invalid alert ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Alert not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /alerts/{id}/read [put]
func (h *AlertHandler) MarkAsRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	alertID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.alertService.MarkAsRead(userID, alertID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkAllAsRead handles marking all alerts as read.
// @Summary     Mark all alerts as read
// @Description Mark every unread alert as read
// @Tags        alerts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     204 "Alerts marked as read"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /alerts/read [put]
func (h *AlertHandler) MarkAllAsRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.alertService.MarkAllAsRead(userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
