package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "hestia/internal/errors"
	"hestia/internal/models"
	"hestia/internal/pagination"
)

// alertService implements the alert policy engine and the alert read model.
type alertService struct {
	db *gorm.DB
}

// NewAlertService creates a new AlertServicer.
func NewAlertService(db *gorm.DB) AlertServicer {
	return &alertService{db: db}
}

// CheckBudgets re-evaluates every budget touching the written expense's
// category and inserts an alert row for each one at or above its warning
// threshold. Alerts are intentionally not deduplicated; repeated writes
// against an exceeded budget keep appending to the log. Evaluation and
// inserts run on tx so they commit or roll back with the expense itself.
func (s *alertService) CheckBudgets(tx *gorm.DB, userID, categoryID string, subCategoryID *string, expenseDate time.Time) error {
	var budgets []models.Budget
	err := tx.
		Preload("Category").
		Preload("SubCategory").
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Find(&budgets).Error
	if err != nil {
		return err
	}

	for i := range budgets {
		budget := &budgets[i]

		// A subcategory-scoped budget is skipped only when the write is
		// tagged with a different subcategory. Untagged writes match every
		// budget of the category, so an already-hot sub-budget re-announces.
		if budget.SubCategoryID != nil && subCategoryID != nil && *budget.SubCategoryID != *subCategoryID {
			continue
		}

		status, err := evaluateBudget(tx, budget, expenseDate)
		if err != nil {
			return err
		}
		if status.Status == BudgetStatusOK {
			continue
		}

		scope := budget.Category.Name
		if budget.SubCategory != nil {
			scope = fmt.Sprintf("%s - %s", budget.Category.Name, budget.SubCategory.Name)
		}

		// Round in decimal space so .25 boundaries round up, not half-to-even.
		pct := status.UtilizationPercentage.Round(1).StringFixed(1)

		alertType := models.AlertTypeWarning
		message := fmt.Sprintf("Warning: %s is at %s%% of budget", scope, pct)
		if status.Status == BudgetStatusExceeded {
			alertType = models.AlertTypeExceeded
			message = fmt.Sprintf("Budget exceeded for %s! Currently at %s%%", scope, pct)
		}

		alert := &models.Alert{
			UserID:     userID,
			BudgetID:   budget.ID,
			AlertType:  alertType,
			Message:    message,
			Percentage: status.UtilizationPercentage,
		}
		if err := tx.Create(alert).Error; err != nil {
			return err
		}
	}

	return nil
}

// GetAlerts retrieves the user's alerts, newest first.
func (s *alertService) GetAlerts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Alert], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Alert{}).Where("user_id = ?", userID).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var alerts []models.Alert
	err := s.db.
		Preload("Budget").
		Preload("Budget.Category").
		Preload("Budget.SubCategory").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&alerts).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(alerts, page.Page, page.PageSize, totalItems)
	return &resp, nil
}

// GetUnreadAlerts retrieves all unread alerts, newest first.
func (s *alertService) GetUnreadAlerts(userID string) ([]models.Alert, error) {
	var alerts []models.Alert
	err := s.db.
		Preload("Budget").
		Preload("Budget.Category").
		Preload("Budget.SubCategory").
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return alerts, nil
}

// GetUnreadCount returns the number of unread alerts.
func (s *alertService) GetUnreadCount(userID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Alert{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

// MarkAsRead marks one alert as read.
func (s *alertService) MarkAsRead(userID, alertID string) error {
	var alert models.Alert
	err := s.db.Where("id = ? AND user_id = ?", alertID, userID).First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrAlertNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&alert).Update("is_read", true).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// MarkAllAsRead marks all of the user's unread alerts as read.
func (s *alertService) MarkAllAsRead(userID string) error {
	err := s.db.Model(&models.Alert{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
