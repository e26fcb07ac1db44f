package services

import (
	"context"
	"testing"

	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/models"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat, err := svc.CreateCategory(ctx, user.ID, "Groceries", models.CategoryTypeExpense)
		testutil.AssertNoError(t, err)

		if cat.ID == 0 {
			t.Fatal("expected non-zero category ID")
		}
		if cat.UserID == nil || *cat.UserID != user.ID {
			t.Errorf("expected owner %d, got %v", user.ID, cat.UserID)
		}
	})

	t.Run("duplicate_name_ignores_case", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(ctx, user.ID, "Food", models.CategoryTypeExpense)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(ctx, user.ID, "food", models.CategoryTypeExpense)
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("same_name_other_owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		a := testutil.CreateTestUser(t, db)
		b := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(ctx, a.ID, "Food", models.CategoryTypeExpense)
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(ctx, b.ID, "Food", models.CategoryTypeExpense)
		testutil.AssertNoError(t, err)
	})

	t.Run("invalid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(ctx, user.ID, "", models.CategoryTypeExpense)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.CreateCategory(ctx, user.ID, "Misc", "transfer")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestListCategories(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	testutil.CreateTestNamedCategory(t, db, &user.ID, "Salary", models.CategoryTypeIncome)
	testutil.CreateTestNamedCategory(t, db, &user.ID, "Food", models.CategoryTypeExpense)
	testutil.CreateTestNamedCategory(t, db, nil, "Housing", models.CategoryTypeExpense)
	testutil.CreateTestNamedCategory(t, db, &other.ID, "Secret", models.CategoryTypeExpense)

	t.Run("own_and_global", func(t *testing.T) {
		list, err := svc.ListCategories(ctx, user.ID, nil)
		testutil.AssertNoError(t, err)

		names := make([]string, len(list))
		for i, c := range list {
			names[i] = c.Name
		}
		want := []string{"Food", "Housing", "Salary"}
		if len(names) != len(want) {
			t.Fatalf("expected %v, got %v", want, names)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("expected %v, got %v", want, names)
				break
			}
		}
	})

	t.Run("by_type", func(t *testing.T) {
		kind := models.CategoryTypeIncome
		list, err := svc.ListCategories(ctx, user.ID, &kind)
		testutil.AssertNoError(t, err)
		if len(list) != 1 || list[0].Name != "Salary" {
			t.Errorf("expected only Salary, got %+v", list)
		}
	})
}

func TestUpdateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("rename", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		updated, err := svc.UpdateCategory(ctx, user.ID, cat.ID, "Transport", models.CategoryTypeExpense)
		testutil.AssertNoError(t, err)
		if updated.Name != "Transport" {
			t.Errorf("expected Transport, got %s", updated.Name)
		}
	})

	t.Run("global_is_read_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		global := testutil.CreateTestNamedCategory(t, db, nil, "Housing", models.CategoryTypeExpense)

		_, err := svc.UpdateCategory(ctx, user.ID, global.ID, "Mine now", models.CategoryTypeExpense)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("nulls_references", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		var ids []uint
		for i := 0; i < 3; i++ {
			tx := testutil.CreateTestTransactionWith(t, db, user.ID, models.TransactionTypeExpense, "10", testutil.TxOpts{CategoryID: &cat.ID})
			ids = append(ids, tx.ID)
		}
		rule := testutil.CreateTestRecurringRule(t, db, user.ID, 5, nil)
		db.Model(rule).Update("category_id", cat.ID)

		testutil.AssertNoError(t, svc.DeleteCategory(ctx, user.ID, cat.ID))

		var remaining []models.Transaction
		db.Where("id IN ?", ids).Find(&remaining)
		if len(remaining) != 3 {
			t.Fatalf("expected 3 transactions to survive, got %d", len(remaining))
		}
		for _, tx := range remaining {
			if tx.CategoryID != nil {
				t.Errorf("transaction %d still references category %d", tx.ID, *tx.CategoryID)
			}
		}

		var reloaded models.RecurringRule
		db.First(&reloaded, rule.ID)
		if reloaded.CategoryID != nil {
			t.Errorf("rule still references category %d", *reloaded.CategoryID)
		}

		_, err := svc.GetCategoryByID(ctx, user.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("other_owner_is_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, owner.ID, models.CategoryTypeExpense)

		err := svc.DeleteCategory(ctx, intruder.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")

		_, err = svc.GetCategoryByID(ctx, owner.ID, cat.ID)
		testutil.AssertNoError(t, err)
	})

	t.Run("global_cannot_be_deleted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		global := testutil.CreateTestNamedCategory(t, db, nil, "Housing", models.CategoryTypeExpense)

		err := svc.DeleteCategory(ctx, user.ID, global.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}
