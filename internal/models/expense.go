package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense represents a single recorded expense. Expenses are hard-deleted.
type Expense struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID    string          `gorm:"type:uuid;not null" json:"category_id"`
	SubCategoryID *string         `gorm:"type:uuid" json:"sub_category_id,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Description   string          `json:"description"`
	ExpenseDate   time.Time       `gorm:"not null;index" json:"expense_date"`
	ExpenseType   ExpenseType     `gorm:"size:10;default:monthly" json:"expense_type"`

	// Relationships
	Category    Category     `gorm:"foreignKey:CategoryID" json:"category"`
	SubCategory *SubCategory `gorm:"foreignKey:SubCategoryID" json:"sub_category,omitempty"`
}
