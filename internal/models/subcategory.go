package models

import "github.com/shopspring/decimal"

// SubCategory belongs to exactly one Category. BudgetLimit is a soft
// expected amount; FixedAmount is a hard expected recurring amount.
type SubCategory struct {
	Base
	CategoryID   string           `gorm:"type:uuid;not null;index" json:"category_id"`
	Name         string           `gorm:"size:100;not null" json:"name"`
	Icon         string           `gorm:"size:50" json:"icon"`
	DisplayOrder int              `gorm:"default:0" json:"display_order"`
	BudgetLimit  *decimal.Decimal `gorm:"type:decimal(10,2)" json:"budget_limit,omitempty"`
	IsMandatory  bool             `gorm:"default:false" json:"is_mandatory"`
	FixedAmount  *decimal.Decimal `gorm:"type:decimal(10,2)" json:"fixed_amount,omitempty"`
	IsActive     bool             `gorm:"default:true" json:"is_active"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
}

// Fixed reports whether the subcategory carries a positive fixed amount.
func (sc *SubCategory) Fixed() bool {
	return sc.FixedAmount != nil && sc.FixedAmount.IsPositive()
}

// Mandatory reports whether the subcategory is expected to incur an expense
// every period. A positive fixed amount makes a subcategory mandatory
// regardless of its IsMandatory flag.
func (sc *SubCategory) Mandatory() bool {
	return sc.Fixed() || sc.IsMandatory
}
