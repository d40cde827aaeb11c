package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hestia/internal/clock"
	"hestia/internal/models"
	"hestia/internal/period"
	"hestia/internal/testutil"
)

// refDate is a Wednesday in mid-June, safely inside every window kind.
var refDate = time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC)

func TestCreateBudget(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		budget, err := svc.CreateBudget(user.ID, cat.ID, nil, decimal.NewFromInt(500), nil, period.Monthly)
		testutil.AssertNoError(t, err)

		if budget.ID == "" {
			t.Fatal("expected budget ID")
		}
		if !budget.LimitAmount.Equal(decimal.NewFromInt(500)) {
			t.Errorf("expected limit 500, got %s", budget.LimitAmount)
		}
		if budget.WarningThreshold != models.DefaultWarningThreshold {
			t.Errorf("expected default threshold %d, got %d", models.DefaultWarningThreshold, budget.WarningThreshold)
		}
	})

	t.Run("explicit_threshold", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		threshold := 90
		budget, err := svc.CreateBudget(user.ID, cat.ID, nil, decimal.NewFromInt(500), &threshold, period.Weekly)
		testutil.AssertNoError(t, err)
		if budget.WarningThreshold != 90 {
			t.Errorf("expected threshold 90, got %d", budget.WarningThreshold)
		}
	})

	t.Run("subcategory_scope", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		sub := testutil.CreateTestSubCategory(t, db, cat.ID)

		budget, err := svc.CreateBudget(user.ID, cat.ID, &sub.ID, decimal.NewFromInt(100), nil, period.Monthly)
		testutil.AssertNoError(t, err)
		if budget.SubCategoryID == nil || *budget.SubCategoryID != sub.ID {
			t.Error("expected budget scoped to subcategory")
		}
	})

	t.Run("invalid_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		_, err := svc.CreateBudget(user.ID, cat.ID, nil, decimal.NewFromInt(500), nil, period.Period("quarterly"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("nonpositive_limit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		_, err := svc.CreateBudget(user.ID, cat.ID, nil, decimal.Zero, nil, period.Monthly)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("wrong_user_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user2.ID)

		_, err := svc.CreateBudget(user1.ID, cat.ID, nil, decimal.NewFromInt(500), nil, period.Monthly)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("subcategory_of_other_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		cat1 := testutil.CreateTestCategory(t, db, user.ID)
		cat2 := testutil.CreateTestCategory(t, db, user.ID)
		sub := testutil.CreateTestSubCategory(t, db, cat2.ID)

		_, err := svc.CreateBudget(user.ID, cat1.ID, &sub.ID, decimal.NewFromInt(500), nil, period.Monthly)
		testutil.AssertAppError(t, err, "SUBCATEGORY_NOT_FOUND")
	})
}

func TestGetBudgetStatus(t *testing.T) {
	setup := func(t *testing.T) (*testSetup, BudgetServicer) {
		s := newTestSetup(t)
		return s, NewBudgetServiceWithClock(s.db, clock.At(refDate))
	}

	t.Run("ok_below_threshold", func(t *testing.T) {
		s, svc := setup(t)
		defer s.teardown(t)
		budget := testutil.CreateTestBudget(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(100))
		testutil.CreateTestExpense(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(50), refDate)

		status, err := svc.GetBudgetStatus(s.user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		if status.Status != BudgetStatusOK {
			t.Errorf("expected ok, got %s", status.Status)
		}
		if !status.UtilizationPercentage.Equal(decimal.NewFromInt(50)) {
			t.Errorf("expected 50%%, got %s", status.UtilizationPercentage)
		}
		if !status.RemainingAmount.Equal(decimal.NewFromInt(50)) {
			t.Errorf("expected 50 remaining, got %s", status.RemainingAmount)
		}
	})

	t.Run("warning_at_exact_threshold", func(t *testing.T) {
		s, svc := setup(t)
		defer s.teardown(t)
		budget := testutil.CreateTestBudget(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(100))
		testutil.CreateTestExpense(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(80), refDate)

		status, err := svc.GetBudgetStatus(s.user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		if status.Status != BudgetStatusWarning {
			t.Errorf("expected warning at exactly 80%%, got %s", status.Status)
		}
	})

	t.Run("exceeded_at_exactly_100", func(t *testing.T) {
		s, svc := setup(t)
		defer s.teardown(t)
		budget := testutil.CreateTestBudget(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(100))
		testutil.CreateTestExpense(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(100), refDate)

		status, err := svc.GetBudgetStatus(s.user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		if status.Status != BudgetStatusExceeded {
			t.Errorf("expected exceeded at exactly 100%%, got %s", status.Status)
		}
		if !status.RemainingAmount.IsZero() {
			t.Errorf("expected 0 remaining, got %s", status.RemainingAmount)
		}
	})

	t.Run("utilization_rounds_half_up", func(t *testing.T) {
		s, svc := setup(t)
		defer s.teardown(t)
		budget := testutil.CreateTestBudget(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(300))
		testutil.CreateTestExpense(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(100), refDate)

		status, err := svc.GetBudgetStatus(s.user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		// 100/300 = 33.333..., rounds to 33.33 at two decimal places.
		if !status.UtilizationPercentage.Equal(decimal.RequireFromString("33.33")) {
			t.Errorf("expected 33.33, got %s", status.UtilizationPercentage)
		}
	})

	t.Run("expense_outside_window_ignored", func(t *testing.T) {
		s, svc := setup(t)
		defer s.teardown(t)
		budget := testutil.CreateTestBudget(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(100))
		testutil.CreateTestExpense(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(90), refDate.AddDate(0, -1, 0))

		status, err := svc.GetBudgetStatus(s.user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		if !status.CurrentSpending.IsZero() {
			t.Errorf("expected no spending in window, got %s", status.CurrentSpending)
		}
		if status.Status != BudgetStatusOK {
			t.Errorf("expected ok, got %s", status.Status)
		}
	})

	t.Run("subcategory_budget_only_counts_tagged_expenses", func(t *testing.T) {
		s, svc := setup(t)
		defer s.teardown(t)
		sub := testutil.CreateTestSubCategory(t, s.db, s.category.ID)
		budget := testutil.CreateTestBudgetForPeriod(t, s.db, s.user.ID, s.category.ID, &sub.ID, decimal.NewFromInt(100), period.Monthly)

		testutil.CreateTestExpense(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(70), refDate)
		testutil.CreateTestExpenseInSubCategory(t, s.db, s.user.ID, s.category.ID, &sub.ID, decimal.NewFromInt(30), refDate)

		status, err := svc.GetBudgetStatus(s.user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		if !status.CurrentSpending.Equal(decimal.NewFromInt(30)) {
			t.Errorf("expected 30 spent, got %s", status.CurrentSpending)
		}
	})

	t.Run("soft_deleted_category_excluded", func(t *testing.T) {
		s, svc := setup(t)
		defer s.teardown(t)
		budget := testutil.CreateTestBudget(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(100))
		testutil.CreateTestExpense(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(90), refDate)

		if err := s.db.Model(s.category).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate category: %v", err)
		}

		status, err := svc.GetBudgetStatus(s.user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		if !status.CurrentSpending.IsZero() {
			t.Errorf("expected inactive category's expenses excluded, got %s", status.CurrentSpending)
		}
	})

	t.Run("window_and_days_remaining", func(t *testing.T) {
		s, svc := setup(t)
		defer s.teardown(t)
		budget := testutil.CreateTestBudgetForPeriod(t, s.db, s.user.ID, s.category.ID, nil, decimal.NewFromInt(100), period.Weekly)

		status, err := svc.GetBudgetStatus(s.user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		wantStart, wantEnd := period.Window(period.Weekly, refDate)
		if !status.PeriodStart.Equal(wantStart) || !status.PeriodEnd.Equal(wantEnd) {
			t.Errorf("expected window [%s, %s], got [%s, %s]", wantStart, wantEnd, status.PeriodStart, status.PeriodEnd)
		}
		if status.DaysRemaining != 4 {
			t.Errorf("expected 4 days remaining on Wednesday, got %d", status.DaysRemaining)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		s, svc := setup(t)
		defer s.teardown(t)

		_, err := svc.GetBudgetStatus(s.user.ID, "11111111-1111-7111-8111-111111111111")
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestGetAllBudgetStatuses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetServiceWithClock(db, clock.At(refDate))
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID)

	testutil.CreateTestBudget(t, db, user.ID, cat.ID, decimal.NewFromInt(100))
	testutil.CreateTestBudgetForPeriod(t, db, user.ID, cat.ID, nil, decimal.NewFromInt(1000), period.Annual)
	testutil.CreateTestExpense(t, db, user.ID, cat.ID, decimal.NewFromInt(90), refDate)

	statuses, err := svc.GetAllBudgetStatuses(user.ID)
	testutil.AssertNoError(t, err)

	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}

	// Both budgets see the same expense through their own windows.
	for _, status := range statuses {
		if !status.CurrentSpending.Equal(decimal.NewFromInt(90)) {
			t.Errorf("expected 90 spent for %s budget, got %s", status.Budget.Period, status.CurrentSpending)
		}
	}
}

func TestUpdateBudget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db)
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID)
	budget := testutil.CreateTestBudget(t, db, user.ID, cat.ID, decimal.NewFromInt(100))

	threshold := 70
	updated, err := svc.UpdateBudget(user.ID, budget.ID, decimal.NewFromInt(250), &threshold)
	testutil.AssertNoError(t, err)

	if !updated.LimitAmount.Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected limit 250, got %s", updated.LimitAmount)
	}
	if updated.WarningThreshold != 70 {
		t.Errorf("expected threshold 70, got %d", updated.WarningThreshold)
	}
}

func TestDeleteBudget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db)
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID)
	budget := testutil.CreateTestBudget(t, db, user.ID, cat.ID, decimal.NewFromInt(100))

	testutil.AssertNoError(t, svc.DeleteBudget(user.ID, budget.ID))

	_, err := svc.GetBudgetByID(user.ID, budget.ID)
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
}
