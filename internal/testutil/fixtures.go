package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"meubolso/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
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

// CreateTestCategory creates a financial category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestCategoryWithName creates a financial category with an exact name.
func CreateTestCategoryWithName(t *testing.T, db *gorm.DB, userID, name string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a single transaction of the given type and amount.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, amount float64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
		Date:        date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestInstallmentTransaction creates an installment plan transaction.
func CreateTestInstallmentTransaction(t *testing.T, db *gorm.DB, userID string, amount float64, total int, start time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:            userID,
		Type:              models.TransactionTypeExpense,
		Amount:            amount,
		Description:       fmt.Sprintf("Test Plan %d", nextID()),
		Date:              start,
		IsInstallment:     true,
		TotalInstallments: total,
		InstallmentNumber: 1,
		StartDate:         &start,
		Installments: &models.InstallmentInfo{
			TotalInstallments: total,
			StartDate:         start.Format("2006-01-02"),
		},
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test installment transaction: %v", err)
	}
	return tx
}

// CreateTestRecurringTransaction creates a monthly recurring transaction.
func CreateTestRecurringTransaction(t *testing.T, db *gorm.DB, userID string, amount float64, anchor time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:              userID,
		Type:                models.TransactionTypeExpense,
		Amount:              amount,
		Description:         fmt.Sprintf("Test Recurrence %d", nextID()),
		Date:                anchor,
		IsRecurrent:         true,
		RecurrenceStartDate: &anchor,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test recurring transaction: %v", err)
	}
	return tx
}

// CreateTestShoppingCategory creates a shopping category.
func CreateTestShoppingCategory(t *testing.T, db *gorm.DB, userID string) *models.ShoppingCategory {
	t.Helper()

	category := &models.ShoppingCategory{
		UserID: userID,
		Name:   fmt.Sprintf("Test Shopping Category %d", nextID()),
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test shopping category: %v", err)
	}
	return category
}

// CreateTestProduct creates a product in the user's catalog.
func CreateTestProduct(t *testing.T, db *gorm.DB, userID string) *models.Product {
	t.Helper()

	product := &models.Product{
		UserID: userID,
		Name:   fmt.Sprintf("Test Product %d", nextID()),
		Unit:   models.ProductUnitUnit,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

// CreateTestShoppingList creates a pending shopping list.
func CreateTestShoppingList(t *testing.T, db *gorm.DB, userID string) *models.ShoppingList {
	t.Helper()

	list := &models.ShoppingList{
		UserID: userID,
		Name:   fmt.Sprintf("Test List %d", nextID()),
		Status: models.ListStatusPending,
	}
	if err := db.Create(list).Error; err != nil {
		t.Fatalf("failed to create test shopping list: %v", err)
	}
	return list
}

// CreateTestShoppingListItem creates an item on the given list.
func CreateTestShoppingListItem(t *testing.T, db *gorm.DB, listID string, quantity, unitPrice float64) *models.ShoppingListItem {
	t.Helper()

	item := &models.ShoppingListItem{
		ListID:    listID,
		Name:      fmt.Sprintf("Test Item %d", nextID()),
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test shopping list item: %v", err)
	}
	return item
}
