package models

// ExpenseType determines which period family a category is evaluated
// against for pending-obligation purposes.
type ExpenseType string

const (
	ExpenseTypeMonthly ExpenseType = "monthly"
	ExpenseTypeAnnual  ExpenseType = "annual"
)

// Category represents a user-owned expense category. Categories are
// soft-deleted via IsActive so historical expenses keep their reference.
type Category struct {
	Base
	UserID       string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string      `gorm:"size:100;not null" json:"name"`
	Icon         string      `gorm:"size:50;not null" json:"icon"`
	Color        string      `gorm:"size:7;not null" json:"color"`
	ExpenseType  ExpenseType `gorm:"size:10;not null" json:"expense_type"`
	DisplayOrder int         `gorm:"default:0" json:"display_order"`
	IsActive     bool        `gorm:"default:true" json:"is_active"`

	// Relationships
	SubCategories []SubCategory `gorm:"foreignKey:CategoryID" json:"sub_categories,omitempty"`
	Budgets       []Budget      `gorm:"foreignKey:CategoryID" json:"budgets,omitempty"`
	Expenses      []Expense     `gorm:"foreignKey:CategoryID" json:"expenses,omitempty"`
}
