package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single recorded payment. CreatedAt is written once on insert.
type Expense struct {
	Base
	ExpenseDate  time.Time       `gorm:"type:date;not null;index" json:"expense_date"`
	CategoryID   string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Name         string          `gorm:"size:200;not null" json:"name"`
	Organization string          `gorm:"size:200;not null" json:"organization"`
	Amount       decimal.Decimal `gorm:"type:decimal(9,2);not null" json:"amount"`
	Notes        string          `gorm:"size:200" json:"notes"`

	// Relationships
	Category *ExpenseCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
