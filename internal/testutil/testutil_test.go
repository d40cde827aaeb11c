package testutil_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hestia/internal/errors"
	"hestia/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "categories", "sub_categories", "budgets", "expenses", "alerts"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	category := testutil.CreateTestCategory(t, db, user.ID)
	if category.UserID != user.ID {
		t.Errorf("expected category owner %s, got %s", user.ID, category.UserID)
	}

	subCategory := testutil.CreateTestSubCategory(t, db, category.ID)
	if subCategory.CategoryID != category.ID {
		t.Errorf("expected subcategory parent %s, got %s", category.ID, subCategory.CategoryID)
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, category.ID, decimal.NewFromInt(100))
	if !budget.LimitAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected limit 100, got %s", budget.LimitAmount)
	}

	expense := testutil.CreateTestExpense(t, db, user.ID, category.ID, decimal.NewFromInt(25), time.Now())
	if !expense.Amount.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected amount 25, got %s", expense.Amount)
	}
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, errors.ErrCategoryNotFound, "CATEGORY_NOT_FOUND")
	testutil.AssertNoError(t, nil)
}
