package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hestia/internal/models"
	"hestia/internal/period"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates an active monthly category.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()
	return CreateTestCategoryOfType(t, db, userID, models.ExpenseTypeMonthly)
}

// CreateTestCategoryOfType creates an active category of the given expense type.
func CreateTestCategoryOfType(t *testing.T, db *gorm.DB, userID string, expenseType models.ExpenseType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID:      userID,
		Name:        fmt.Sprintf("Test Category %d", nextID()),
		Icon:        "shopping-cart",
		Color:       "#4A90D9",
		ExpenseType: expenseType,
		IsActive:    true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestSubCategory creates an active subcategory under the given category.
func CreateTestSubCategory(t *testing.T, db *gorm.DB, categoryID string) *models.SubCategory {
	t.Helper()

	subCategory := &models.SubCategory{
		CategoryID: categoryID,
		Name:       fmt.Sprintf("Test SubCategory %d", nextID()),
		IsActive:   true,
	}
	if err := db.Create(subCategory).Error; err != nil {
		t.Fatalf("failed to create test subcategory: %v", err)
	}
	return subCategory
}

// CreateTestMandatorySubCategory creates a mandatory subcategory, optionally
// with a fixed amount.
func CreateTestMandatorySubCategory(t *testing.T, db *gorm.DB, categoryID string, fixedAmount *decimal.Decimal) *models.SubCategory {
	t.Helper()

	subCategory := &models.SubCategory{
		CategoryID:  categoryID,
		Name:        fmt.Sprintf("Test Mandatory %d", nextID()),
		IsMandatory: true,
		FixedAmount: fixedAmount,
		IsActive:    true,
	}
	if err := db.Create(subCategory).Error; err != nil {
		t.Fatalf("failed to create test mandatory subcategory: %v", err)
	}
	return subCategory
}

// CreateTestBudget creates a monthly category-level budget with the given
// limit and the default warning threshold.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID string, limit decimal.Decimal) *models.Budget {
	t.Helper()
	return CreateTestBudgetForPeriod(t, db, userID, categoryID, nil, limit, period.Monthly)
}

// CreateTestBudgetForPeriod creates a budget with full control over scope and period.
func CreateTestBudgetForPeriod(t *testing.T, db *gorm.DB, userID, categoryID string, subCategoryID *string, limit decimal.Decimal, p period.Period) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:           userID,
		CategoryID:       categoryID,
		SubCategoryID:    subCategoryID,
		LimitAmount:      limit,
		WarningThreshold: models.DefaultWarningThreshold,
		Period:           p,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestExpense creates an expense on the given date.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, categoryID string, amount decimal.Decimal, date time.Time) *models.Expense {
	t.Helper()
	return CreateTestExpenseInSubCategory(t, db, userID, categoryID, nil, amount, date)
}

// CreateTestExpenseInSubCategory creates an expense tagged with a subcategory.
func CreateTestExpenseInSubCategory(t *testing.T, db *gorm.DB, userID, categoryID string, subCategoryID *string, amount decimal.Decimal, date time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:        userID,
		CategoryID:    categoryID,
		SubCategoryID: subCategoryID,
		Amount:        amount,
		Description:   fmt.Sprintf("Test Expense %d", nextID()),
		ExpenseDate:   date,
		ExpenseType:   models.ExpenseTypeMonthly,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}
