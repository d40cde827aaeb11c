package models

import (
	"github.com/shopspring/decimal"

	"hestia/internal/period"
)

// DefaultWarningThreshold is the warning percentage applied when a budget
// is created without an explicit threshold.
const DefaultWarningThreshold = 80

// Budget represents a spending limit for a category (or a single
// subcategory within it) over a recurring period. Several budgets may
// coexist for the same scope and period; each is evaluated independently.
type Budget struct {
	Base
	UserID           string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID       string          `gorm:"type:uuid;not null" json:"category_id"`
	SubCategoryID    *string         `gorm:"type:uuid" json:"sub_category_id,omitempty"`
	LimitAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"limit_amount"`
	WarningThreshold int             `gorm:"default:80" json:"warning_threshold"`
	Period           period.Period   `gorm:"size:10;not null" json:"period"`

	// Relationships
	Category    Category     `gorm:"foreignKey:CategoryID" json:"category"`
	SubCategory *SubCategory `gorm:"foreignKey:SubCategoryID" json:"sub_category,omitempty"`
}
