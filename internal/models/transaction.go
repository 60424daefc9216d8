package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeRevenue TransactionType = "revenue"
	TransactionTypeExpense TransactionType = "expense"
)

// InstallmentInfo is the embedded installment metadata stored as a JSON
// column alongside the transaction. Keys are camelCase on the wire and in
// storage; older rows may carry only a subset of them. PaidInstallments
// is a pointer because an explicit zero and an absent key mean different
// things to the fallback chain.
type InstallmentInfo struct {
	TotalInstallments int    `json:"totalInstallments,omitempty"`
	PaidInstallments  *int   `json:"paidInstallments,omitempty"`
	StartDate         string `json:"startDate,omitempty"`
}

// Scan implements sql.Scanner so gorm can read the JSON column.
func (i *InstallmentInfo) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type for InstallmentInfo: %T", value)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, i)
}

// Value implements driver.Valuer so gorm can write the JSON column.
func (i InstallmentInfo) Value() (driver.Value, error) {
	return json.Marshal(i)
}

// Transaction represents a financial transaction in the system.
// A transaction is exactly one of: a single entry, an installment plan
// (IsInstallment with TotalInstallments > 1), or a recurring entry
// (IsRecurrent with a recurrence anchor date).
type Transaction struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID    *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Type          TransactionType `gorm:"not null" json:"type"`
	Amount        float64         `gorm:"not null" json:"amount"`
	Description   string          `gorm:"not null" json:"description"`
	Date          time.Time       `gorm:"column:transaction_date;not null;index" json:"transaction_date"`
	PaymentMethod string          `json:"payment_method,omitempty"`

	// Installment plan columns
	IsInstallment     bool             `gorm:"default:false" json:"is_installment"`
	TotalInstallments int              `gorm:"default:1" json:"total_installments"`
	InstallmentNumber int              `gorm:"default:1" json:"installment_number"`
	StartDate         *time.Time       `json:"start_date,omitempty"`
	Installments      *InstallmentInfo `gorm:"type:jsonb" json:"installments,omitempty"`

	// Recurrence columns
	IsRecurrent         bool       `gorm:"default:false" json:"is_recurrent"`
	RecurrenceStartDate *time.Time `json:"recurrence_start_date,omitempty"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
