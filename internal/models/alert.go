package models

import "github.com/shopspring/decimal"

// AlertType classifies a budget alert.
type AlertType string

const (
	AlertTypeWarning  AlertType = "warning"
	AlertTypeExceeded AlertType = "exceeded"
)

// Alert is generated by the alert engine when an expense write leaves a
// budget at or above its warning threshold. Alerts are never deduplicated;
// every qualifying write produces a new row.
type Alert struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	BudgetID   string          `gorm:"type:uuid;not null" json:"budget_id"`
	AlertType  AlertType       `gorm:"size:20;not null" json:"alert_type"`
	Message    string          `gorm:"not null" json:"message"`
	Percentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percentage"`
	IsRead     bool            `gorm:"default:false" json:"is_read"`

	// Relationships
	Budget Budget `gorm:"foreignKey:BudgetID" json:"budget"`
}
