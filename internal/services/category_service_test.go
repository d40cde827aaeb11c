package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"hestia/internal/models"
	"hestia/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		category, err := svc.CreateCategory(user.ID, "Groceries", "cart", "#22AA44", models.ExpenseTypeMonthly, nil)
		testutil.AssertNoError(t, err)

		if category.ID == "" {
			t.Fatal("expected category ID")
		}
		if !category.IsActive {
			t.Error("expected category to be active")
		}
		if category.DisplayOrder != 0 {
			t.Errorf("expected first category at order 0, got %d", category.DisplayOrder)
		}
	})

	t.Run("appends_display_order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "First", "a", "#111111", models.ExpenseTypeMonthly, nil)
		testutil.AssertNoError(t, err)
		second, err := svc.CreateCategory(user.ID, "Second", "b", "#222222", models.ExpenseTypeMonthly, nil)
		testutil.AssertNoError(t, err)

		if second.DisplayOrder != 1 {
			t.Errorf("expected second category at order 1, got %d", second.DisplayOrder)
		}
	})

	t.Run("duplicate_name_case_insensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Groceries", "cart", "#22AA44", models.ExpenseTypeMonthly, nil)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user.ID, "groceries", "cart", "#22AA44", models.ExpenseTypeMonthly, nil)
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("same_name_different_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user1.ID, "Groceries", "cart", "#22AA44", models.ExpenseTypeMonthly, nil)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user2.ID, "Groceries", "cart", "#22AA44", models.ExpenseTypeMonthly, nil)
		testutil.AssertNoError(t, err)
	})
}

func TestGetUserCategories(t *testing.T) {
	t.Run("excludes_inactive_and_sorts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		a := testutil.CreateTestCategory(t, db, user.ID)
		b := testutil.CreateTestCategory(t, db, user.ID)
		if err := db.Model(b).Update("display_order", 1).Error; err != nil {
			t.Fatal(err)
		}

		deleted := testutil.CreateTestCategory(t, db, user.ID)
		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, deleted.ID))

		categories, err := svc.GetUserCategories(user.ID)
		testutil.AssertNoError(t, err)

		if len(categories) != 2 {
			t.Fatalf("expected 2 active categories, got %d", len(categories))
		}
		if categories[0].ID != a.ID {
			t.Error("expected display-order sorting")
		}
	})

	t.Run("filter_by_expense_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestCategoryOfType(t, db, user.ID, models.ExpenseTypeMonthly)
		testutil.CreateTestCategoryOfType(t, db, user.ID, models.ExpenseTypeAnnual)

		annual, err := svc.GetUserCategoriesByType(user.ID, models.ExpenseTypeAnnual)
		testutil.AssertNoError(t, err)
		if len(annual) != 1 {
			t.Errorf("expected 1 annual category, got %d", len(annual))
		}
	})

	t.Run("preloads_active_subcategories_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		testutil.CreateTestSubCategory(t, db, cat.ID)
		gone := testutil.CreateTestSubCategory(t, db, cat.ID)
		testutil.AssertNoError(t, svc.DeleteSubCategory(user.ID, gone.ID))

		categories, err := svc.GetUserCategories(user.ID)
		testutil.AssertNoError(t, err)
		if len(categories) != 1 || len(categories[0].SubCategories) != 1 {
			t.Errorf("expected 1 active subcategory preloaded, got %d", len(categories[0].SubCategories))
		}
	})
}

func TestDeleteCategoryKeepsExpenses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID)
	expense := testutil.CreateTestExpense(t, db, user.ID, cat.ID, decimal.NewFromInt(10), refDate)

	testutil.AssertNoError(t, svc.DeleteCategory(user.ID, cat.ID))

	// The category row survives with is_active false; expenses keep pointing at it.
	var reloaded models.Category
	testutil.AssertNoError(t, db.First(&reloaded, "id = ?", cat.ID).Error)
	if reloaded.IsActive {
		t.Error("expected category deactivated")
	}

	var count int64
	db.Model(&models.Expense{}).Where("id = ?", expense.ID).Count(&count)
	if count != 1 {
		t.Error("expected expense to survive category deletion")
	}

	_, err := svc.GetCategoryByID(user.ID, cat.ID)
	testutil.AssertNoError(t, err) // lookup by ID still works for history views
}

func TestReorderCategory(t *testing.T) {
	setupFour := func(t *testing.T) (*testSetup, CategoryServicer, []*models.Category) {
		s := newTestSetup(t)
		svc := NewCategoryService(s.db)

		cats := []*models.Category{s.category}
		for i := 1; i < 4; i++ {
			c := testutil.CreateTestCategory(t, s.db, s.user.ID)
			if err := s.db.Model(c).Update("display_order", i).Error; err != nil {
				t.Fatal(err)
			}
			c.DisplayOrder = i
			cats = append(cats, c)
		}
		return s, svc, cats
	}

	orderOf := func(t *testing.T, s *testSetup, id string) int {
		var c models.Category
		testutil.AssertNoError(t, s.db.First(&c, "id = ?", id).Error)
		return c.DisplayOrder
	}

	t.Run("move_forward", func(t *testing.T) {
		s, svc, cats := setupFour(t)
		defer s.teardown(t)

		// Move position 0 to position 2; 1 and 2 shift back.
		_, err := svc.ReorderCategory(s.user.ID, cats[0].ID, 2)
		testutil.AssertNoError(t, err)

		want := map[string]int{cats[0].ID: 2, cats[1].ID: 0, cats[2].ID: 1, cats[3].ID: 3}
		for id, order := range want {
			if got := orderOf(t, s, id); got != order {
				t.Errorf("category %s: expected order %d, got %d", id, order, got)
			}
		}
	})

	t.Run("move_backward", func(t *testing.T) {
		s, svc, cats := setupFour(t)
		defer s.teardown(t)

		// Move position 3 to position 1; 1 and 2 shift forward.
		_, err := svc.ReorderCategory(s.user.ID, cats[3].ID, 1)
		testutil.AssertNoError(t, err)

		want := map[string]int{cats[0].ID: 0, cats[1].ID: 2, cats[2].ID: 3, cats[3].ID: 1}
		for id, order := range want {
			if got := orderOf(t, s, id); got != order {
				t.Errorf("category %s: expected order %d, got %d", id, order, got)
			}
		}
	})

	t.Run("not_found", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := NewCategoryService(s.db)

		_, err := svc.ReorderCategory(s.user.ID, "33333333-3333-7333-8333-333333333333", 0)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestSubCategoryCRUD(t *testing.T) {
	t.Run("create_with_fixed_amount", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := NewCategoryService(s.db)

		fixed := decimal.NewFromInt(50)
		sub, err := svc.CreateSubCategory(s.user.ID, s.category.ID, "Rent", "home", nil, nil, false, &fixed)
		testutil.AssertNoError(t, err)

		if !sub.Fixed() {
			t.Error("expected subcategory to be fixed")
		}
		if !sub.Mandatory() {
			t.Error("expected fixed subcategory to count as mandatory")
		}
	})

	t.Run("duplicate_name_within_category", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := NewCategoryService(s.db)

		_, err := svc.CreateSubCategory(s.user.ID, s.category.ID, "Rent", "", nil, nil, false, nil)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateSubCategory(s.user.ID, s.category.ID, "rent", "", nil, nil, false, nil)
		testutil.AssertAppError(t, err, "DUPLICATE_SUBCATEGORY")
	})

	t.Run("update", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := NewCategoryService(s.db)
		sub := testutil.CreateTestSubCategory(t, s.db, s.category.ID)

		limit := decimal.NewFromInt(200)
		updated, err := svc.UpdateSubCategory(s.user.ID, sub.ID, "Utilities", "bolt", nil, &limit, true, nil)
		testutil.AssertNoError(t, err)

		if updated.BudgetLimit == nil || !updated.BudgetLimit.Equal(limit) {
			t.Error("expected budget limit updated")
		}
		if !updated.IsMandatory {
			t.Error("expected mandatory flag set")
		}
	})

	t.Run("wrong_user_rejected", func(t *testing.T) {
		s := newTestSetup(t)
		defer s.teardown(t)
		svc := NewCategoryService(s.db)
		sub := testutil.CreateTestSubCategory(t, s.db, s.category.ID)
		other := testutil.CreateTestUser(t, s.db)

		err := svc.DeleteSubCategory(other.ID, sub.ID)
		testutil.AssertAppError(t, err, "SUBCATEGORY_NOT_FOUND")
	})
}
