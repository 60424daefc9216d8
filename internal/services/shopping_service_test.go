package services

import (
	"testing"
	"time"

	"meubolso/internal/models"
	"meubolso/internal/pagination"
	"meubolso/internal/testutil"
)

func TestShoppingCategories(t *testing.T) {
	t.Run("create_and_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewShoppingService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateShoppingCategory(user.ID, "Hortifruti", "#00ff00", "leaf")
		testutil.AssertNoError(t, err)

		categories, err := svc.GetShoppingCategories(user.ID)
		testutil.AssertNoError(t, err)
		if len(categories) != 1 || categories[0].Name != "Hortifruti" {
			t.Errorf("unexpected categories %+v", categories)
		}
	})

	t.Run("delete_blocked_while_in_use", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewShoppingService(db)
		user := testutil.CreateTestUser(t, db)

		category := testutil.CreateTestShoppingCategory(t, db, user.ID)
		_, err := svc.CreateProduct(user.ID, ProductInput{Name: "Banana", Unit: models.ProductUnitKilo, CategoryID: &category.ID})
		testutil.AssertNoError(t, err)

		testutil.AssertAppError(t, svc.DeleteShoppingCategory(user.ID, category.ID), "SHOPPING_CATEGORY_IN_USE")
	})
}

func TestProducts(t *testing.T) {
	t.Run("unit_defaults", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewShoppingService(db)
		user := testutil.CreateTestUser(t, db)

		product, err := svc.CreateProduct(user.ID, ProductInput{Name: "Detergente"})
		testutil.AssertNoError(t, err)
		if product.Unit != models.ProductUnitUnit {
			t.Errorf("expected default unit un, got %s", product.Unit)
		}
	})

	t.Run("paginated_listing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewShoppingService(db)
		user := testutil.CreateTestUser(t, db)

		for i := 0; i < 3; i++ {
			testutil.CreateTestProduct(t, db, user.ID)
		}

		result, err := svc.GetProducts(user.ID, pagination.PageRequest{Page: 1, PageSize: 2})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 3 || len(result.Data) != 2 || result.TotalPages != 2 {
			t.Errorf("unexpected page %+v", result)
		}
	})

	t.Run("delete_blocked_while_on_a_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewShoppingService(db)
		user := testutil.CreateTestUser(t, db)

		product := testutil.CreateTestProduct(t, db, user.ID)
		list := testutil.CreateTestShoppingList(t, db, user.ID)
		_, err := svc.AddItems(user.ID, list.ID, []ItemInput{{Name: "Arroz", ProductID: &product.ID, Quantity: 2, UnitPrice: 20}})
		testutil.AssertNoError(t, err)

		testutil.AssertAppError(t, svc.DeleteProduct(user.ID, product.ID), "PRODUCT_IN_USE")
	})
}

func TestShoppingLists(t *testing.T) {
	t.Run("sync_replaces_items", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewShoppingService(db)
		user := testutil.CreateTestUser(t, db)

		list := testutil.CreateTestShoppingList(t, db, user.ID)
		testutil.CreateTestShoppingListItem(t, db, list.ID, 1, 5)
		testutil.CreateTestShoppingListItem(t, db, list.ID, 2, 3)

		updated, err := svc.UpdateList(user.ID, list.ID, "Feira da semana", []ItemInput{
			{Name: "Tomate", Quantity: 1, UnitPrice: 8},
		})
		testutil.AssertNoError(t, err)

		if updated.Name != "Feira da semana" {
			t.Errorf("expected rename, got %s", updated.Name)
		}
		if len(updated.Items) != 1 || updated.Items[0].Name != "Tomate" {
			t.Errorf("expected replaced item set, got %+v", updated.Items)
		}
	})

	t.Run("rename_only_keeps_items", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewShoppingService(db)
		user := testutil.CreateTestUser(t, db)

		list := testutil.CreateTestShoppingList(t, db, user.ID)
		testutil.CreateTestShoppingListItem(t, db, list.ID, 1, 5)

		updated, err := svc.UpdateList(user.ID, list.ID, "Renamed", nil)
		testutil.AssertNoError(t, err)
		if len(updated.Items) != 1 {
			t.Errorf("expected items to survive a rename, got %d", len(updated.Items))
		}
	})

	t.Run("batch_add_items", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewShoppingService(db)
		user := testutil.CreateTestUser(t, db)

		list := testutil.CreateTestShoppingList(t, db, user.ID)
		created, err := svc.AddItems(user.ID, list.ID, []ItemInput{
			{Name: "Arroz", Quantity: 1, UnitPrice: 20},
			{Name: "Feijão", Quantity: 2, UnitPrice: 8},
		})
		testutil.AssertNoError(t, err)
		if len(created) != 2 {
			t.Fatalf("expected 2 items, got %d", len(created))
		}
	})
}

func TestCompleteList(t *testing.T) {
	t.Run("totals_and_generates_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewShoppingService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestCategoryWithName(t, db, user.ID, "Alimentação", models.CategoryTypeExpense)

		list := testutil.CreateTestShoppingList(t, db, user.ID)
		item1 := testutil.CreateTestShoppingListItem(t, db, list.ID, 1, 5)
		item2 := testutil.CreateTestShoppingListItem(t, db, list.ID, 1, 1)

		completed, err := svc.CompleteList(user.ID, list.ID, []ItemUpdate{
			{ID: item1.ID, Quantity: 2, UnitPrice: 10, Checked: true},
			{ID: item2.ID, Quantity: 3, UnitPrice: 4.5, Checked: true},
		})
		testutil.AssertNoError(t, err)

		if completed.Status != models.ListStatusCompleted {
			t.Errorf("expected completed status, got %s", completed.Status)
		}
		if completed.TotalAmount != 33.5 {
			t.Errorf("expected total 33.5, got %v", completed.TotalAmount)
		}
		if completed.CompletedAt == nil {
			t.Error("expected completion timestamp")
		}

		var tx models.Transaction
		err = db.Where("user_id = ? AND description = ?", user.ID, "Compras: "+list.Name).First(&tx).Error
		if err != nil {
			t.Fatalf("expected generated transaction: %v", err)
		}
		if tx.Amount != 33.5 || tx.Type != models.TransactionTypeExpense {
			t.Errorf("unexpected generated transaction %+v", tx)
		}
	})

	t.Run("fails_without_food_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewShoppingService(db)
		user := testutil.CreateTestUser(t, db)

		list := testutil.CreateTestShoppingList(t, db, user.ID)
		_, err := svc.CompleteList(user.ID, list.ID, nil)
		testutil.AssertAppError(t, err, "FOOD_CATEGORY_MISSING")
	})

	t.Run("cannot_complete_twice", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewShoppingService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestCategoryWithName(t, db, user.ID, "Alimentação", models.CategoryTypeExpense)

		list := testutil.CreateTestShoppingList(t, db, user.ID)
		_, err := svc.CompleteList(user.ID, list.ID, nil)
		testutil.AssertNoError(t, err)

		_, err = svc.CompleteList(user.ID, list.ID, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestDeleteList(t *testing.T) {
	t.Run("completed_list_removes_its_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewShoppingService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestCategoryWithName(t, db, user.ID, "Alimentação", models.CategoryTypeExpense)

		list := testutil.CreateTestShoppingList(t, db, user.ID)
		testutil.CreateTestShoppingListItem(t, db, list.ID, 1, 10)
		_, err := svc.CompleteList(user.ID, list.ID, nil)
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteList(user.ID, list.ID))

		var count int64
		db.Model(&models.Transaction{}).Where("user_id = ? AND description = ?", user.ID, "Compras: "+list.Name).Count(&count)
		if count != 0 {
			t.Error("expected generated transaction to be deleted with the list")
		}
	})

	t.Run("pending_list_leaves_transactions_alone", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewShoppingService(db)
		user := testutil.CreateTestUser(t, db)

		list := testutil.CreateTestShoppingList(t, db, user.ID)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 10, time.Now())

		testutil.AssertNoError(t, svc.DeleteList(user.ID, list.ID))

		var count int64
		db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected unrelated transaction to survive, got %d left", count)
		}
	})
}

func TestCleanupOrphanTransactions(t *testing.T) {
	t.Run("removes_only_orphans", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewShoppingService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestCategoryWithName(t, db, user.ID, "Alimentação", models.CategoryTypeExpense)

		// A completed list with its matching transaction.
		list := testutil.CreateTestShoppingList(t, db, user.ID)
		_, err := svc.CompleteList(user.ID, list.ID, nil)
		testutil.AssertNoError(t, err)

		// An orphaned shopping transaction with no matching list.
		orphan := &models.Transaction{
			UserID:      user.ID,
			Type:        models.TransactionTypeExpense,
			Amount:      42,
			Description: "Compras: Lista apagada",
			Date:        time.Now(),
		}
		testutil.AssertNoError(t, db.Create(orphan).Error)

		// A regular expense that merely looks nothing like a shopping one.
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 10, time.Now())

		removed, err := svc.CleanupOrphanTransactions(user.ID)
		testutil.AssertNoError(t, err)
		if removed != 1 {
			t.Errorf("expected 1 removal, got %d", removed)
		}

		var count int64
		db.Model(&models.Transaction{}).Where("id = ?", orphan.ID).Count(&count)
		if count != 0 {
			t.Error("expected orphan to be deleted")
		}
	})

	t.Run("name_match_ignores_case_and_spacing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewShoppingService(db)
		user := testutil.CreateTestUser(t, db)

		list := testutil.CreateTestShoppingList(t, db, user.ID)
		testutil.AssertNoError(t, db.Model(list).Update("name", "Feira  da Semana").Error)

		kept := &models.Transaction{
			UserID:      user.ID,
			Type:        models.TransactionTypeExpense,
			Amount:      42,
			Description: "Compras: feira da semana",
			Date:        time.Now(),
		}
		testutil.AssertNoError(t, db.Create(kept).Error)

		removed, err := svc.CleanupOrphanTransactions(user.ID)
		testutil.AssertNoError(t, err)
		if removed != 0 {
			t.Errorf("expected no removals, got %d", removed)
		}
	})
}
