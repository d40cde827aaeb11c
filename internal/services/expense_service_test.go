package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hestia/internal/models"
	"hestia/internal/pagination"
	"hestia/internal/testutil"
)

func newExpenseService(s *testSetup) ExpenseServicer {
	return NewExpenseService(s.db, NewAlertService(s.db))
}

func TestCreateExpense(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := newExpenseService(s)

		expense, err := svc.CreateExpense(s.user.ID, s.category.ID, nil, decimal.NewFromInt(25), "groceries", refDate, models.ExpenseTypeMonthly)
		testutil.AssertNoError(t, err)

		if expense.ID == "" {
			t.Fatal("expected expense ID")
		}
		if !expense.Amount.Equal(decimal.NewFromInt(25)) {
			t.Errorf("expected amount 25, got %s", expense.Amount)
		}
		if expense.Category.ID != s.category.ID {
			t.Error("expected category preloaded")
		}
	})

	t.Run("defaults_to_monthly_type", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := newExpenseService(s)

		expense, err := svc.CreateExpense(s.user.ID, s.category.ID, nil, decimal.NewFromInt(25), "", refDate, "")
		testutil.AssertNoError(t, err)
		if expense.ExpenseType != models.ExpenseTypeMonthly {
			t.Errorf("expected monthly default, got %s", expense.ExpenseType)
		}
	})

	t.Run("nonpositive_amount", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := newExpenseService(s)

		_, err := svc.CreateExpense(s.user.ID, s.category.ID, nil, decimal.Zero, "", refDate, models.ExpenseTypeMonthly)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("inactive_category_rejected", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := newExpenseService(s)

		if err := s.db.Model(s.category).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate category: %v", err)
		}

		_, err := svc.CreateExpense(s.user.ID, s.category.ID, nil, decimal.NewFromInt(25), "", refDate, models.ExpenseTypeMonthly)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("subcategory_of_other_category_rejected", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := newExpenseService(s)
		other := testutil.CreateTestCategory(t, s.db, s.user.ID)
		sub := testutil.CreateTestSubCategory(t, s.db, other.ID)

		_, err := svc.CreateExpense(s.user.ID, s.category.ID, &sub.ID, decimal.NewFromInt(25), "", refDate, models.ExpenseTypeMonthly)
		testutil.AssertAppError(t, err, "SUBCATEGORY_NOT_FOUND")
	})

	t.Run("write_triggers_alert", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := newExpenseService(s)

		testutil.CreateTestBudget(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(100))

		_, err := svc.CreateExpense(s.user.ID, s.category.ID, nil, decimal.NewFromInt(110), "overspend", refDate, models.ExpenseTypeMonthly)
		testutil.AssertNoError(t, err)

		var alert models.Alert
		testutil.AssertNoError(t, s.db.Where("user_id = ?", s.user.ID).First(&alert).Error)
		if alert.AlertType != models.AlertTypeExceeded {
			t.Errorf("expected exceeded alert from expense write, got %s", alert.AlertType)
		}
	})

	t.Run("update_does_not_rerun_alerts", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := newExpenseService(s)

		testutil.CreateTestBudget(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(100))
		expense, err := svc.CreateExpense(s.user.ID, s.category.ID, nil, decimal.NewFromInt(10), "", refDate, models.ExpenseTypeMonthly)
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateExpense(s.user.ID, expense.ID, s.category.ID, nil, decimal.NewFromInt(500), "", refDate, models.ExpenseTypeMonthly)
		testutil.AssertNoError(t, err)

		var count int64
		s.db.Model(&models.Alert{}).Where("user_id = ?", s.user.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected no alerts from update, got %d", count)
		}
	})
}

func TestCreateBulkExpenses(t *testing.T) {
	t.Run("creates_all_rows", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := newExpenseService(s)

		inputs := []ExpenseInput{
			{CategoryID: s.category.ID, Amount: decimal.NewFromInt(10), Description: "a", Date: refDate, ExpenseType: models.ExpenseTypeMonthly},
			{CategoryID: s.category.ID, Amount: decimal.NewFromInt(20), Description: "b", Date: refDate, ExpenseType: models.ExpenseTypeMonthly},
			{CategoryID: s.category.ID, Amount: decimal.NewFromInt(30), Description: "c", Date: refDate, ExpenseType: models.ExpenseTypeMonthly},
		}

		created, err := svc.CreateBulkExpenses(s.user.ID, inputs)
		testutil.AssertNoError(t, err)
		if len(created) != 3 {
			t.Fatalf("expected 3 expenses, got %d", len(created))
		}
	})

	t.Run("alerts_when_batch_crosses_limit", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := newExpenseService(s)

		testutil.CreateTestBudget(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(100))

		// Each row alone stays under the limit; together they cross it.
		inputs := []ExpenseInput{
			{CategoryID: s.category.ID, Amount: decimal.NewFromInt(60), Date: refDate, ExpenseType: models.ExpenseTypeMonthly},
			{CategoryID: s.category.ID, Amount: decimal.NewFromInt(60), Date: refDate, ExpenseType: models.ExpenseTypeMonthly},
		}

		_, err := svc.CreateBulkExpenses(s.user.ID, inputs)
		testutil.AssertNoError(t, err)

		var alerts []models.Alert
		testutil.AssertNoError(t, s.db.Where("user_id = ?", s.user.ID).Find(&alerts).Error)
		if len(alerts) != 1 {
			t.Fatalf("expected 1 alert at the crossing row, got %d", len(alerts))
		}
		if alerts[0].AlertType != models.AlertTypeExceeded {
			t.Errorf("expected exceeded alert, got %s", alerts[0].AlertType)
		}
	})

	t.Run("empty_batch_rejected", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := newExpenseService(s)

		_, err := svc.CreateBulkExpenses(s.user.ID, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("atomic_rollback_on_bad_row", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := newExpenseService(s)

		inputs := []ExpenseInput{
			{CategoryID: s.category.ID, Amount: decimal.NewFromInt(10), Date: refDate, ExpenseType: models.ExpenseTypeMonthly},
			{CategoryID: "22222222-2222-7222-8222-222222222222", Amount: decimal.NewFromInt(20), Date: refDate, ExpenseType: models.ExpenseTypeMonthly},
		}

		_, err := svc.CreateBulkExpenses(s.user.ID, inputs)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")

		var count int64
		s.db.Model(&models.Expense{}).Where("user_id = ?", s.user.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected no expenses persisted after failed batch, got %d", count)
		}
	})
}

func TestGetExpenses(t *testing.T) {
	t.Run("pagination_and_order", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := newExpenseService(s)

		for i := 0; i < 5; i++ {
			testutil.CreateTestExpense(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(10), refDate.AddDate(0, 0, -i))
		}

		result, err := svc.GetExpenses(s.user.ID, pagination.PageRequest{Page: 1, PageSize: 3}, ExpenseFilter{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 5 {
			t.Errorf("expected 5 total, got %d", result.TotalItems)
		}
		if len(result.Data) != 3 {
			t.Fatalf("expected 3 on page, got %d", len(result.Data))
		}
		if result.Data[0].ExpenseDate.Before(result.Data[1].ExpenseDate) {
			t.Error("expected newest first")
		}
	})

	t.Run("date_and_scope_filters", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := newExpenseService(s)

		other := testutil.CreateTestCategory(t, s.db, s.user.ID)
		sub := testutil.CreateTestSubCategory(t, s.db, s.category.ID)

		testutil.CreateTestExpense(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(10), refDate)
		testutil.CreateTestExpenseInSubCategory(t, s.db, s.user.ID, s.category.ID, &sub.ID, decimal.NewFromInt(20), refDate)
		testutil.CreateTestExpense(t, s.db, s.user.ID, other.ID, decimal.NewFromInt(30), refDate)
		testutil.CreateTestExpense(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(40), refDate.AddDate(0, -2, 0))

		result, err := svc.GetExpenses(s.user.ID, pagination.PageRequest{}, ExpenseFilter{CategoryID: &s.category.ID})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 3 {
			t.Errorf("expected 3 in category, got %d", result.TotalItems)
		}

		result, err = svc.GetExpenses(s.user.ID, pagination.PageRequest{}, ExpenseFilter{SubCategoryID: &sub.ID})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 in subcategory, got %d", result.TotalItems)
		}

		from := refDate.AddDate(0, -1, 0)
		result, err = svc.GetExpenses(s.user.ID, pagination.PageRequest{}, ExpenseFilter{FromDate: &from})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 3 {
			t.Errorf("expected 3 after from_date, got %d", result.TotalItems)
		}
	})

	t.Run("other_users_hidden", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := newExpenseService(s)

		other := testutil.CreateTestUser(t, s.db)
		otherCat := testutil.CreateTestCategory(t, s.db, other.ID)
		testutil.CreateTestExpense(t, s.db, other.ID, otherCat.ID, decimal.NewFromInt(10), refDate)

		result, err := svc.GetExpenses(s.user.ID, pagination.PageRequest{}, ExpenseFilter{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 0 {
			t.Errorf("expected 0 expenses for user, got %d", result.TotalItems)
		}
	})
}

func TestDeleteExpense(t *testing.T) {
	s := newTestSetup(t)
	defer s.teardown(t)
	svc := newExpenseService(s)

	expense := testutil.CreateTestExpense(t, s.db, s.user.ID, s.category.ID, decimal.NewFromInt(10), time.Now())

	testutil.AssertNoError(t, svc.DeleteExpense(s.user.ID, expense.ID))

	_, err := svc.GetExpenseByID(s.user.ID, expense.ID)
	testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
}
