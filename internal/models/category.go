package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeRevenue CategoryType = "revenue"
	CategoryTypeExpense CategoryType = "expense"
)

// Category represents a financial transaction category
type Category struct {
	Base
	UserID string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string       `gorm:"not null" json:"name"`
	Type   CategoryType `gorm:"not null" json:"type"`
	Color  string       `json:"color"`
	Icon   string       `json:"icon"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}
