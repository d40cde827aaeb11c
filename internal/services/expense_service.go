package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "hestia/internal/errors"
	"hestia/internal/models"
	"hestia/internal/pagination"
)

// expenseService handles expense business logic. Writes that can move a
// budget across its warning threshold run the alert engine in the same
// transaction.
type expenseService struct {
	db     *gorm.DB
	alerts AlertServicer
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, alerts AlertServicer) ExpenseServicer {
	return &expenseService{db: db, alerts: alerts}
}

// CreateExpense records an expense and runs the alert check in the same
// transaction, so the expense and any alerts it triggers commit together.
func (s *expenseService) CreateExpense(
	userID string,
	categoryID string,
	subCategoryID *string,
	amount decimal.Decimal,
	description string,
	date time.Time,
	expenseType models.ExpenseType,
) (*models.Expense, error) {
	expense, err := s.buildExpense(userID, categoryID, subCategoryID, amount, description, date, expenseType)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(expense).Error; err != nil {
			return err
		}
		return s.alerts.CheckBudgets(tx, userID, categoryID, subCategoryID, date)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetExpenseByID(userID, expense.ID)
}

// CreateBulkExpenses records several expenses atomically. The alert engine
// runs after every row, so a batch whose rows individually stay under a
// limit but together cross it still alerts at the crossing row.
func (s *expenseService) CreateBulkExpenses(userID string, inputs []ExpenseInput) ([]models.Expense, error) {
	if len(inputs) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one expense is required")
	}

	expenses := make([]*models.Expense, 0, len(inputs))
	for _, in := range inputs {
		expense, err := s.buildExpense(userID, in.CategoryID, in.SubCategoryID, in.Amount, in.Description, in.Date, in.ExpenseType)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i, expense := range expenses {
			if err := tx.Create(expense).Error; err != nil {
				return err
			}
			if err := s.alerts.CheckBudgets(tx, userID, expense.CategoryID, expense.SubCategoryID, inputs[i].Date); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	created := make([]models.Expense, 0, len(expenses))
	for _, expense := range expenses {
		full, err := s.GetExpenseByID(userID, expense.ID)
		if err != nil {
			return nil, err
		}
		created = append(created, *full)
	}
	return created, nil
}

// GetExpenses retrieves a page of the user's expenses, newest first,
// optionally filtered by date range, category or subcategory.
func (s *expenseService) GetExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	query := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	if filter.FromDate != nil {
		query = query.Where("expense_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("expense_date <= ?", *filter.ToDate)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.SubCategoryID != nil {
		query = query.Where("sub_category_id = ?", *filter.SubCategoryID)
	}

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	err := query.
		Preload("Category").
		Preload("SubCategory").
		Order("expense_date DESC, created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&expenses).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &resp, nil
}

// GetExpenseByID retrieves an expense by ID for a specific user
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	err := s.db.
		Preload("Category").
		Preload("SubCategory").
		Where("id = ? AND user_id = ?", expenseID, userID).
		First(&expense).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense rewrites an expense in place. Updates do not re-run the
// alert engine; only fresh writes append to the alert log.
func (s *expenseService) UpdateExpense(
	userID string,
	expenseID string,
	categoryID string,
	subCategoryID *string,
	amount decimal.Decimal,
	description string,
	date time.Time,
	expenseType models.ExpenseType,
) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	if err := s.validateScope(userID, categoryID, subCategoryID); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}

	updates := map[string]interface{}{
		"category_id":     categoryID,
		"sub_category_id": subCategoryID,
		"amount":          amount,
		"description":     description,
		"expense_date":    date,
		"expense_type":    expenseType,
	}

	if err := s.db.Model(expense).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetExpenseByID(userID, expenseID)
}

// DeleteExpense permanently removes an expense.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// buildExpense validates the inputs and assembles an unsaved expense row.
func (s *expenseService) buildExpense(
	userID string,
	categoryID string,
	subCategoryID *string,
	amount decimal.Decimal,
	description string,
	date time.Time,
	expenseType models.ExpenseType,
) (*models.Expense, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if err := s.validateScope(userID, categoryID, subCategoryID); err != nil {
		return nil, err
	}
	if expenseType == "" {
		expenseType = models.ExpenseTypeMonthly
	}

	return &models.Expense{
		UserID:        userID,
		CategoryID:    categoryID,
		SubCategoryID: subCategoryID,
		Amount:        amount,
		Description:   description,
		ExpenseDate:   date,
		ExpenseType:   expenseType,
	}, nil
}

// validateScope checks that the category belongs to the user and is active,
// and that the subcategory, when given, belongs to the category.
func (s *expenseService) validateScope(userID, categoryID string, subCategoryID *string) error {
	var count int64
	err := s.db.Model(&models.Category{}).
		Where("id = ? AND user_id = ? AND is_active = ?", categoryID, userID, true).
		Count(&count).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}

	if subCategoryID != nil {
		err := s.db.Model(&models.SubCategory{}).
			Where("id = ? AND category_id = ?", *subCategoryID, categoryID).
			Count(&count).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return apperrors.ErrSubCategoryNotFound
		}
	}
	return nil
}
