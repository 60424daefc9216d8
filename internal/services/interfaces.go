package services

import (
	"time"

	"meubolso/internal/models"
	"meubolso/internal/pagination"
	"meubolso/internal/projection"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// CategoryServicer defines the contract for financial category business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, categoryType models.CategoryType, color, icon string) (*models.Category, error)
	GetUserCategories(userID string) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, color, icon string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// TransactionInput carries a transaction create/update payload after binding.
type TransactionInput struct {
	CategoryID          *string
	Type                models.TransactionType
	Amount              float64
	Description         string
	Date                time.Time
	PaymentMethod       string
	IsInstallment       bool
	IsRecurrent         bool
	TotalInstallments   int
	InstallmentNumber   int
	StartDate           *time.Time
	RecurrenceStartDate *time.Time
	Installments        *models.InstallmentInfo
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, input TransactionInput) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error

	// MonthlyCandidates fetches the coarse superset of transactions that
	// can contribute entries to a month; InstallmentTransactions fetches
	// every multi-installment plan. Both feed the projection package.
	MonthlyCandidates(userID string, year, month int) ([]models.Transaction, error)
	InstallmentTransactions(userID string) ([]models.Transaction, error)

	MonthlyView(userID string, year, month int) (*projection.MonthlyView, error)
	InstallmentPlans(userID string) ([]projection.Plan, error)
}

// ProductInput carries a product create/update payload after binding.
type ProductInput struct {
	CategoryID *string
	Name       string
	Unit       models.ProductUnit
	Brand      string
	Notes      string
}

// ItemInput carries a shopping list item create/update payload.
type ItemInput struct {
	ProductID *string
	Name      string
	Quantity  float64
	UnitPrice float64
	Checked   *bool
}

// ItemUpdate pairs an existing item ID with its final values at list
// completion time.
type ItemUpdate struct {
	ID        string
	Quantity  float64
	UnitPrice float64
	Checked   bool
}

// ShoppingServicer defines the contract for shopping-related business logic.
type ShoppingServicer interface {
	CreateShoppingCategory(userID, name, color, icon string) (*models.ShoppingCategory, error)
	GetShoppingCategories(userID string) ([]models.ShoppingCategory, error)
	UpdateShoppingCategory(userID, categoryID, name, color, icon string) (*models.ShoppingCategory, error)
	DeleteShoppingCategory(userID, categoryID string) error

	CreateProduct(userID string, input ProductInput) (*models.Product, error)
	GetProducts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Product], error)
	UpdateProduct(userID, productID string, input ProductInput) (*models.Product, error)
	DeleteProduct(userID, productID string) error

	CreateList(userID, name string) (*models.ShoppingList, error)
	GetLists(userID string) ([]models.ShoppingList, error)
	GetListByID(userID, listID string) (*models.ShoppingList, error)
	UpdateList(userID, listID, name string, items []ItemInput) (*models.ShoppingList, error)
	DeleteList(userID, listID string) error
	CompleteList(userID, listID string, items []ItemUpdate) (*models.ShoppingList, error)

	AddItems(userID, listID string, items []ItemInput) ([]models.ShoppingListItem, error)
	UpdateItem(userID, listID, itemID string, input ItemInput) (*models.ShoppingListItem, error)
	DeleteItem(userID, listID, itemID string) error

	CleanupOrphanTransactions(userID string) (int64, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
