package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hestia/internal/clock"
	apperrors "hestia/internal/errors"
	"hestia/internal/models"
	"hestia/internal/period"
)

// budgetService handles budget business logic and status evaluation.
type budgetService struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewBudgetService creates a new BudgetServicer using the wall clock.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db, clock: clock.System{}}
}

// NewBudgetServiceWithClock creates a BudgetServicer with an explicit time
// source.
func NewBudgetServiceWithClock(db *gorm.DB, c clock.Clock) BudgetServicer {
	return &budgetService{db: db, clock: c}
}

// CreateBudget creates a budget for a category or one of its subcategories.
// A missing warning threshold falls back to the default of 80 percent.
func (s *budgetService) CreateBudget(
	userID string,
	categoryID string,
	subCategoryID *string,
	limitAmount decimal.Decimal,
	warningThreshold *int,
	p period.Period,
) (*models.Budget, error) {
	if !p.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be weekly, monthly or annual")
	}
	if !limitAmount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit amount must be positive")
	}

	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if subCategoryID != nil {
		var count int64
		if err := s.db.Model(&models.SubCategory{}).
			Where("id = ? AND category_id = ?", *subCategoryID, categoryID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrSubCategoryNotFound
		}
	}

	threshold := models.DefaultWarningThreshold
	if warningThreshold != nil {
		threshold = *warningThreshold
	}

	budget := &models.Budget{
		UserID:           userID,
		CategoryID:       categoryID,
		SubCategoryID:    subCategoryID,
		LimitAmount:      limitAmount,
		WarningThreshold: threshold,
		Period:           p,
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetBudgetByID(userID, budget.ID)
}

// GetUserBudgets retrieves all budgets for a user.
func (s *budgetService) GetUserBudgets(userID string) ([]models.Budget, error) {
	var budgets []models.Budget
	err := s.db.
		Preload("Category").
		Preload("SubCategory").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// GetBudgetByID retrieves a budget by ID for a specific user
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	err := s.db.
		Preload("Category").
		Preload("SubCategory").
		Where("id = ? AND user_id = ?", budgetID, userID).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates a budget's limit and warning threshold.
func (s *budgetService) UpdateBudget(userID, budgetID string, limitAmount decimal.Decimal, warningThreshold *int) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	if !limitAmount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit amount must be positive")
	}

	updates := map[string]interface{}{"limit_amount": limitAmount}
	if warningThreshold != nil {
		updates["warning_threshold"] = *warningThreshold
	}

	if err := s.db.Model(budget).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetBudgetByID(userID, budgetID)
}

// DeleteBudget removes a budget. Alerts raised against it stay in the log.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetStatus evaluates a single budget against the period window
// containing the current date.
func (s *budgetService) GetBudgetStatus(userID, budgetID string) (*BudgetStatus, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	status, err := evaluateBudget(s.db, budget, s.clock.Now())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return status, nil
}

// GetAllBudgetStatuses evaluates every budget the user has.
func (s *budgetService) GetAllBudgetStatuses(userID string) ([]BudgetStatus, error) {
	budgets, err := s.GetUserBudgets(userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	statuses := make([]BudgetStatus, 0, len(budgets))
	for i := range budgets {
		status, err := evaluateBudget(s.db, &budgets[i], now)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		statuses = append(statuses, *status)
	}
	return statuses, nil
}

// evaluateBudget computes the spending, utilization and status of a budget
// within the period window containing ref. It is shared with the alert
// engine, which evaluates budgets inside the expense-write transaction.
func evaluateBudget(db *gorm.DB, budget *models.Budget, ref time.Time) (*BudgetStatus, error) {
	start, end := period.Window(budget.Period, ref)

	spent, err := sumSpending(db, budget, start, end)
	if err != nil {
		return nil, err
	}

	utilization := decimal.Zero
	if budget.LimitAmount.IsPositive() {
		utilization = spent.Mul(decimal.NewFromInt(100)).DivRound(budget.LimitAmount, 2)
	}

	status := BudgetStatusOK
	switch {
	case utilization.GreaterThanOrEqual(decimal.NewFromInt(100)):
		status = BudgetStatusExceeded
	case utilization.GreaterThanOrEqual(decimal.NewFromInt(int64(budget.WarningThreshold))):
		status = BudgetStatusWarning
	}

	return &BudgetStatus{
		Budget:                *budget,
		CurrentSpending:       spent,
		RemainingAmount:       budget.LimitAmount.Sub(spent),
		UtilizationPercentage: utilization,
		Status:                status,
		DaysRemaining:         period.DaysRemaining(budget.Period, ref),
		PeriodStart:           start,
		PeriodEnd:             end,
	}, nil
}

// sumSpending totals the user's expenses in the budget's scope within
// [start, end]. Expenses of soft-deleted categories are excluded; a budget
// scoped to a subcategory only counts expenses tagged with it.
func sumSpending(db *gorm.DB, budget *models.Budget, start, end time.Time) (decimal.Decimal, error) {
	query := db.Model(&models.Expense{}).
		Joins("JOIN categories ON categories.id = expenses.category_id AND categories.is_active = ?", true).
		Where("expenses.user_id = ?", budget.UserID).
		Where("expenses.expense_date >= ? AND expenses.expense_date <= ?", start, end)

	if budget.SubCategoryID != nil {
		query = query.Where("expenses.sub_category_id = ?", *budget.SubCategoryID)
	} else {
		query = query.Where("expenses.category_id = ?", budget.CategoryID)
	}

	var total decimal.NullDecimal
	if err := query.Select("SUM(expenses.amount)").Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
