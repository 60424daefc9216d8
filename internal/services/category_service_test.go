package services

import (
	"testing"
	"time"

	"meubolso/internal/models"
	"meubolso/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		category, err := svc.CreateCategory(user.ID, "Salário", models.CategoryTypeRevenue, "#00aa00", "wallet")
		testutil.AssertNoError(t, err)
		if category.ID == "" || category.Type != models.CategoryTypeRevenue {
			t.Errorf("unexpected category %+v", category)
		}
	})

	t.Run("invalid_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Weird", "savings", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("blocked_while_in_use", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 10, time.Now())
		testutil.AssertNoError(t, db.Model(tx).Update("category_id", category.ID).Error)

		testutil.AssertAppError(t, svc.DeleteCategory(user.ID, category.ID), "CATEGORY_IN_USE")
	})

	t.Run("deletes_unused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, category.ID))
		_, err := svc.GetCategoryByID(user.ID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("scoped_to_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, owner.ID, models.CategoryTypeExpense)

		testutil.AssertAppError(t, svc.DeleteCategory(intruder.ID, category.ID), "CATEGORY_NOT_FOUND")
	})
}
