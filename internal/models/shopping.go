package models

import "time"

// ProductUnit represents the unit a product is sold in
type ProductUnit string

const (
	ProductUnitUnit   ProductUnit = "un"
	ProductUnitKilo   ProductUnit = "kg"
	ProductUnitLiter  ProductUnit = "l"
	ProductUnitDozen  ProductUnit = "dz"
	ProductUnitMeter  ProductUnit = "m"
	ProductUnitBox    ProductUnit = "cx"
)

// ListStatus represents the lifecycle state of a shopping list
type ListStatus string

const (
	ListStatusPending   ListStatus = "pending"
	ListStatusCompleted ListStatus = "completed"
)

// ShoppingCategory groups products (e.g. produce, cleaning supplies)
type ShoppingCategory struct {
	Base
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string `gorm:"not null" json:"name"`
	Color  string `json:"color"`
	Icon   string `json:"icon"`

	// Relationships
	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// Product represents a purchasable item in the user's catalog
type Product struct {
	Base
	UserID     string      `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID *string     `gorm:"type:uuid" json:"category_id,omitempty"`
	Name       string      `gorm:"not null" json:"name"`
	Unit       ProductUnit `gorm:"default:un" json:"unit"`
	Brand      string      `json:"brand,omitempty"`
	Notes      string      `json:"notes,omitempty"`

	// Relationships
	Category *ShoppingCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// ShoppingList represents a shopping list and its completion state.
// Completing a list freezes its total and records a matching expense
// transaction named after the list.
type ShoppingList struct {
	Base
	UserID      string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string     `gorm:"not null" json:"name"`
	Status      ListStatus `gorm:"default:pending" json:"status"`
	TotalAmount float64    `gorm:"default:0" json:"total_amount"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Relationships
	Items []ShoppingListItem `gorm:"foreignKey:ListID" json:"items,omitempty"`
}

// ShoppingListItem is a product entry on a shopping list
type ShoppingListItem struct {
	Base
	ListID    string  `gorm:"type:uuid;not null;index" json:"list_id"`
	ProductID *string `gorm:"type:uuid" json:"product_id,omitempty"`
	Name      string  `gorm:"not null" json:"name"`
	Quantity  float64 `gorm:"default:1" json:"quantity"`
	UnitPrice float64 `gorm:"default:0" json:"unit_price"`
	Checked   bool    `gorm:"default:false" json:"checked"`

	// Relationships
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
