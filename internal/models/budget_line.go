package models

import "github.com/shopspring/decimal"

// BudgetLine holds the monthly budget for one category. BeginningBalance and
// BudgetAmount are configured by an administrator; the remaining amounts are
// derived and rewritten by every reconciliation run.
type BudgetLine struct {
	Base
	CategoryID       string              `gorm:"type:uuid;not null;uniqueIndex" json:"category_id"`
	BeginningBalance decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"beginning_balance"`
	BudgetAmount     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"budget_amount"`

	// Derived
	TotalAvailable decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"total_available"`
	ExpenseAmount  decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"expense_amount"`
	CurrentBalance decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"current_balance"`

	// Relationships
	Category *ExpenseCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
