package models

// ExpenseCategory is an administrator-managed grouping for expenses and
// budget allocation, e.g. "Food" or "Transportation-Gas".
type ExpenseCategory struct {
	Base
	Name string `gorm:"size:200;uniqueIndex;not null" json:"name"`
}

// TableName pins the table name used by migrations.
func (ExpenseCategory) TableName() string { return "expense_categories" }
