package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hestia/internal/models"
	"hestia/internal/pagination"
	"hestia/internal/period"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	RecordLogin(userID string) error
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	ClearRefreshToken(userID string) error
}

// CategoryServicer defines the contract for category and subcategory logic.
type CategoryServicer interface {
	CreateCategory(userID, name, icon, color string, expenseType models.ExpenseType, displayOrder *int) (*models.Category, error)
	GetUserCategories(userID string) ([]models.Category, error)
	GetUserCategoriesByType(userID string, expenseType models.ExpenseType) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, icon, color string, expenseType models.ExpenseType, displayOrder *int) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
	ReorderCategory(userID, categoryID string, newOrder int) (*models.Category, error)

	CreateSubCategory(userID, categoryID, name, icon string, displayOrder *int, budgetLimit *decimal.Decimal, isMandatory bool, fixedAmount *decimal.Decimal) (*models.SubCategory, error)
	UpdateSubCategory(userID, subCategoryID, name, icon string, displayOrder *int, budgetLimit *decimal.Decimal, isMandatory bool, fixedAmount *decimal.Decimal) (*models.SubCategory, error)
	DeleteSubCategory(userID, subCategoryID string) error
}

// BudgetStatusValue classifies a budget's utilization.
type BudgetStatusValue string

const (
	BudgetStatusOK       BudgetStatusValue = "ok"
	BudgetStatusWarning  BudgetStatusValue = "warning"
	BudgetStatusExceeded BudgetStatusValue = "exceeded"
)

// BudgetStatus contains the derived state of a budget within the period
// window containing the reference date.
type BudgetStatus struct {
	Budget                models.Budget     `json:"budget"`
	CurrentSpending       decimal.Decimal   `json:"current_spending"`
	RemainingAmount       decimal.Decimal   `json:"remaining_amount"`
	UtilizationPercentage decimal.Decimal   `json:"utilization_percentage"`
	Status                BudgetStatusValue `json:"status"`
	DaysRemaining         int               `json:"days_remaining"`
	PeriodStart           time.Time         `json:"period_start"`
	PeriodEnd             time.Time         `json:"period_end"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, categoryID string, subCategoryID *string, limitAmount decimal.Decimal, warningThreshold *int, p period.Period) (*models.Budget, error)
	GetUserBudgets(userID string) ([]models.Budget, error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, limitAmount decimal.Decimal, warningThreshold *int) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetStatus(userID, budgetID string) (*BudgetStatus, error)
	GetAllBudgetStatuses(userID string) ([]BudgetStatus, error)
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	FromDate      *time.Time
	ToDate        *time.Time
	CategoryID    *string
	SubCategoryID *string
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(userID, categoryID string, subCategoryID *string, amount decimal.Decimal, description string, date time.Time, expenseType models.ExpenseType) (*models.Expense, error)
	CreateBulkExpenses(userID string, inputs []ExpenseInput) ([]models.Expense, error)
	GetExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	UpdateExpense(userID, expenseID, categoryID string, subCategoryID *string, amount decimal.Decimal, description string, date time.Time, expenseType models.ExpenseType) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
}

// ExpenseInput carries one expense of a bulk create.
type ExpenseInput struct {
	CategoryID    string
	SubCategoryID *string
	Amount        decimal.Decimal
	Description   string
	Date          time.Time
	ExpenseType   models.ExpenseType
}

// AlertServicer defines the contract for the alert policy engine and the
// alert read model.
type AlertServicer interface {
	// CheckBudgets re-evaluates every budget matching the written expense's
	// category/subcategory and inserts alert rows for threshold crossings.
	// It runs on the caller's transaction so alerts commit or roll back
	// together with the expense write.
	CheckBudgets(tx *gorm.DB, userID, categoryID string, subCategoryID *string, expenseDate time.Time) error

	GetAlerts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Alert], error)
	GetUnreadAlerts(userID string) ([]models.Alert, error)
	GetUnreadCount(userID string) (int64, error)
	MarkAsRead(userID, alertID string) error
	MarkAllAsRead(userID string) error
}

// CategorySpending is one category's share of spending within a window.
type CategorySpending struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Icon         string          `json:"icon"`
	Color        string          `json:"color"`
	Amount       decimal.Decimal `json:"amount"`
	BudgetLimit  decimal.Decimal `json:"budget_limit"`
	Percentage   decimal.Decimal `json:"percentage"`
}

// PendingObligation is a mandatory subcategory whose expected expense has
// not been satisfied in the current period.
type PendingObligation struct {
	SubCategoryID       string             `json:"sub_category_id"`
	SubCategoryName     string             `json:"sub_category_name"`
	CategoryID          string             `json:"category_id"`
	CategoryName        string             `json:"category_name"`
	CategoryColor       string             `json:"category_color"`
	CategoryExpenseType models.ExpenseType `json:"category_expense_type"`
	ExpectedAmount      decimal.Decimal    `json:"expected_amount"`
	IsFixed             bool               `json:"is_fixed"`
	IsPaidThisPeriod    bool               `json:"is_paid_this_period"`
	PaidAmount          decimal.Decimal    `json:"paid_amount"`
	LastPaidDate        *time.Time         `json:"last_paid_date,omitempty"`
	PaymentCount        int                `json:"payment_count"`
}

// ChartPoint is one labeled value of a time-series chart.
type ChartPoint struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// ChartData is a spending time series with its total and average.
type ChartData struct {
	DataPoints []ChartPoint    `json:"data_points"`
	Total      decimal.Decimal `json:"total"`
	Average    decimal.Decimal `json:"average"`
}

// DashboardSummary aggregates the month's spending picture.
type DashboardSummary struct {
	TotalSpending         decimal.Decimal     `json:"total_spending"`
	BudgetLimit           decimal.Decimal     `json:"budget_limit"`
	UtilizationPercentage decimal.Decimal     `json:"utilization_percentage"`
	TopCategories         []CategorySpending  `json:"top_categories"`
	RecentExpenses        []models.Expense    `json:"recent_expenses"`
	Alerts                []models.Alert      `json:"alerts"`
	UnreadAlertCount      int64               `json:"unread_alert_count"`
	PendingExpenses       []PendingObligation `json:"pending_expenses"`
}

// DashboardServicer defines the contract for dashboard aggregation views.
type DashboardServicer interface {
	GetSummary(userID string, year, month *int) (*DashboardSummary, error)
	GetWeeklyData(userID string, year, month, day *int) (*ChartData, error)
	GetMonthlyData(userID string, year, month *int) (*ChartData, error)
	GetAnnualData(userID string, year *int) (*ChartData, error)
	GetCategoryBreakdown(userID string, p period.Period) ([]CategorySpending, error)
	PendingObligations(userID string, referenceDate time.Time) ([]PendingObligation, error)
}
