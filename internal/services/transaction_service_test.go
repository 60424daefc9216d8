package services

import (
	"testing"
	"time"

	"meubolso/internal/models"
	"meubolso/internal/pagination"
	"meubolso/internal/testutil"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateTransaction(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type:        models.TransactionTypeExpense,
			Amount:      45.9,
			Description: "Lunch",
			Date:        day(2025, time.March, 10),
		})
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected non-empty transaction ID")
		}
		if tx.TotalInstallments != 1 || tx.InstallmentNumber != 1 {
			t.Errorf("single transactions normalize to one installment, got %d/%d", tx.InstallmentNumber, tx.TotalInstallments)
		}
		if tx.Installments == nil || tx.Installments.TotalInstallments != 1 ||
			tx.Installments.PaidInstallments == nil || *tx.Installments.PaidInstallments != 1 {
			t.Errorf("unexpected embedded object %+v", tx.Installments)
		}
		if tx.Installments.StartDate != "2025-03-10" {
			t.Errorf("embedded start should mirror the transaction date, got %s", tx.Installments.StartDate)
		}
	})

	t.Run("installment_defaults", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type:              models.TransactionTypeExpense,
			Amount:            1200,
			Description:       "TV",
			Date:              day(2025, time.January, 15),
			IsInstallment:     true,
			TotalInstallments: 12,
		})
		testutil.AssertNoError(t, err)

		if tx.StartDate == nil || !tx.StartDate.Equal(day(2025, time.January, 15)) {
			t.Errorf("start date should default to the transaction date, got %v", tx.StartDate)
		}
		if tx.Installments == nil || tx.Installments.PaidInstallments == nil || *tx.Installments.PaidInstallments != 0 {
			t.Errorf("installment plans default to zero paid, got %+v", tx.Installments)
		}
		if tx.RecurrenceStartDate != nil {
			t.Error("installment plans must not carry a recurrence anchor")
		}
	})

	t.Run("recurring_anchor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		anchor := day(2025, time.February, 5)
		tx, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type:                models.TransactionTypeExpense,
			Amount:              1500,
			Description:         "Rent",
			Date:                day(2025, time.February, 5),
			IsRecurrent:         true,
			RecurrenceStartDate: &anchor,
		})
		testutil.AssertNoError(t, err)

		if tx.Installments == nil || tx.Installments.StartDate != "2025-02-05" {
			t.Errorf("embedded start should mirror the anchor, got %+v", tx.Installments)
		}
		if tx.StartDate != nil {
			t.Error("recurring transactions must not carry a plan start date")
		}
	})

	t.Run("conflicting_kinds_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type:          models.TransactionTypeExpense,
			Amount:        100,
			Description:   "Broken",
			Date:          day(2025, time.March, 1),
			IsInstallment: true,
			IsRecurrent:   true,
		})
		testutil.AssertAppError(t, err, "CONFLICTING_KIND")
	})

	t.Run("non_positive_amount_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type:        models.TransactionTypeExpense,
			Amount:      0,
			Description: "Free",
			Date:        day(2025, time.March, 1),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_type_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type:        "transfer",
			Amount:      10,
			Description: "Wrong",
			Date:        day(2025, time.March, 1),
		})
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})
}

func TestGetUserTransactions(t *testing.T) {
	t.Run("scoped_to_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user1.ID, models.TransactionTypeExpense, 10, day(2025, time.March, 1))
		testutil.CreateTestTransaction(t, db, user1.ID, models.TransactionTypeRevenue, 20, day(2025, time.March, 2))
		testutil.CreateTestTransaction(t, db, user2.ID, models.TransactionTypeExpense, 30, day(2025, time.March, 3))

		result, err := svc.GetUserTransactions(user1.ID, pagination.PageRequest{Page: 1, PageSize: 20}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 transactions, got %d", result.TotalItems)
		}
	})

	t.Run("filter_by_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 10, day(2025, time.March, 1))
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeRevenue, 20, day(2025, time.March, 2))

		revenue := models.TransactionTypeRevenue
		result, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{Page: 1, PageSize: 20}, TransactionFilter{Type: &revenue})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 revenue transaction, got %d", result.TotalItems)
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("renormalizes_on_kind_change", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx := testutil.CreateTestInstallmentTransaction(t, db, user.ID, 1200, 12, day(2025, time.January, 15))

		updated, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionInput{
			Type:        models.TransactionTypeExpense,
			Amount:      100,
			Description: "Now single",
			Date:        day(2025, time.January, 15),
		})
		testutil.AssertNoError(t, err)

		if updated.IsInstallment || updated.TotalInstallments != 1 {
			t.Errorf("expected demotion to single, got %+v", updated)
		}
		if updated.StartDate != nil {
			t.Error("single transactions must not keep a plan start date")
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpdateTransaction(user.ID, "missing", TransactionInput{
			Type: models.TransactionTypeExpense, Amount: 10, Description: "x", Date: day(2025, time.January, 1),
		})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("removes_own_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 10, day(2025, time.March, 1))
		testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, tx.ID))

		_, err := svc.GetTransactionByID(user.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("cannot_delete_other_users_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)

		tx := testutil.CreateTestTransaction(t, db, owner.ID, models.TransactionTypeExpense, 10, day(2025, time.March, 1))
		testutil.AssertAppError(t, svc.DeleteTransaction(intruder.ID, tx.ID), "TRANSACTION_NOT_FOUND")
	})
}

func TestMonthlyCandidates(t *testing.T) {
	t.Run("prefilter_shape", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		inMonth := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 10, day(2025, time.March, 15))
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 10, day(2025, time.April, 1))
		plan := testutil.CreateTestInstallmentTransaction(t, db, user.ID, 1200, 12, day(2024, time.June, 1))
		recurring := testutil.CreateTestRecurringTransaction(t, db, user.ID, 50, day(2025, time.January, 5))
		testutil.CreateTestRecurringTransaction(t, db, user.ID, 50, day(2025, time.June, 5)) // anchored after the month

		candidates, err := svc.MonthlyCandidates(user.ID, 2025, 3)
		testutil.AssertNoError(t, err)

		got := map[string]bool{}
		for _, c := range candidates {
			got[c.ID] = true
		}
		if len(candidates) != 3 {
			t.Fatalf("expected 3 candidates, got %d", len(candidates))
		}
		for _, want := range []string{inMonth.ID, plan.ID, recurring.ID} {
			if !got[want] {
				t.Errorf("expected candidate %s", want)
			}
		}
	})

	t.Run("ordered_by_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		later := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 10, day(2025, time.March, 20))
		earlier := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 10, day(2025, time.March, 5))

		candidates, err := svc.MonthlyCandidates(user.ID, 2025, 3)
		testutil.AssertNoError(t, err)
		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(candidates))
		}
		if candidates[0].ID != earlier.ID || candidates[1].ID != later.ID {
			t.Error("candidates must be ordered by transaction date ascending")
		}
	})
}

func TestMonthlyView(t *testing.T) {
	t.Run("combines_all_kinds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeRevenue, 5000, day(2025, time.March, 5))
		testutil.CreateTestInstallmentTransaction(t, db, user.ID, 1200, 12, day(2025, time.January, 15))
		testutil.CreateTestRecurringTransaction(t, db, user.ID, 1500, day(2024, time.June, 10))

		view, err := svc.MonthlyView(user.ID, 2025, 3)
		testutil.AssertNoError(t, err)

		if view.Year != 2025 || view.Month != 3 {
			t.Errorf("unexpected period %d-%d", view.Year, view.Month)
		}
		if len(view.Transactions) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(view.Transactions))
		}
		if view.Summary.TotalRevenue != 5000 {
			t.Errorf("expected revenue 5000, got %v", view.Summary.TotalRevenue)
		}
		// 1200/12 installment plus the full recurrence.
		if view.Summary.TotalExpense != 1600 {
			t.Errorf("expected expense 1600, got %v", view.Summary.TotalExpense)
		}
		if view.Summary.Balance != 3400 {
			t.Errorf("expected balance 3400, got %v", view.Summary.Balance)
		}
	})

	t.Run("empty_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		view, err := svc.MonthlyView(user.ID, 2025, 3)
		testutil.AssertNoError(t, err)
		if len(view.Transactions) != 0 {
			t.Errorf("expected no entries, got %d", len(view.Transactions))
		}
	})
}

func TestInstallmentPlans(t *testing.T) {
	t.Run("only_multi_installment_plans", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		plan := testutil.CreateTestInstallmentTransaction(t, db, user.ID, 1200, 12, day(2025, time.January, 15))
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 10, day(2025, time.March, 1))

		plans, err := svc.InstallmentPlans(user.ID)
		testutil.AssertNoError(t, err)
		if len(plans) != 1 {
			t.Fatalf("expected 1 plan, got %d", len(plans))
		}
		if plans[0].ID != plan.ID {
			t.Errorf("expected plan %s, got %s", plan.ID, plans[0].ID)
		}
		if plans[0].InstallmentAmount != 100 {
			t.Errorf("expected installment amount 100, got %v", plans[0].InstallmentAmount)
		}
	})

	t.Run("scoped_to_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		testutil.CreateTestInstallmentTransaction(t, db, user2.ID, 600, 6, day(2025, time.January, 1))

		plans, err := svc.InstallmentPlans(user1.ID)
		testutil.AssertNoError(t, err)
		if len(plans) != 0 {
			t.Errorf("expected no plans for other user, got %d", len(plans))
		}
	})
}
