package services

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"expensetrack/internal/budget"
	"expensetrack/internal/models"
	"expensetrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string, isAdmin bool) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// CategoryServicer defines the contract for expense category administration.
type CategoryServicer interface {
	CreateCategory(name string) (*models.ExpenseCategory, error)
	GetCategories(page pagination.PageRequest) (*pagination.PageResponse[models.ExpenseCategory], error)
	GetCategoryByID(categoryID string) (*models.ExpenseCategory, error)
	UpdateCategory(categoryID, name string) (*models.ExpenseCategory, error)
	DeleteCategory(categoryID string) error
}

// ExpenseInput carries every user-editable field of an expense.
type ExpenseInput struct {
	ExpenseDate  time.Time
	CategoryID   string
	Name         string
	Organization string
	Amount       decimal.Decimal
	Notes        string
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	CategoryID *string
	Search     *string
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
}

// ExpenseServicer defines the contract for the expense ledger.
type ExpenseServicer interface {
	CreateExpense(input ExpenseInput) (*models.Expense, error)
	GetExpenses(page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(expenseID string) (*models.Expense, error)
	UpdateExpense(expenseID string, input ExpenseInput) (*models.Expense, error)
	DeleteExpense(expenseID string) error
	ImportCSV(r io.Reader) (int, error)
}

// BudgetLineServicer defines the contract for budget line administration.
// Only the configured fields are writable here.
type BudgetLineServicer interface {
	CreateBudgetLine(categoryID string, beginningBalance decimal.Decimal, budgetAmount *decimal.Decimal) (*models.BudgetLine, error)
	GetBudgetLines(page pagination.PageRequest) (*pagination.PageResponse[models.BudgetLine], error)
	GetBudgetLineByID(lineID string) (*models.BudgetLine, error)
	UpdateBudgetLine(lineID string, beginningBalance, budgetAmount *decimal.Decimal) (*models.BudgetLine, error)
	DeleteBudgetLine(lineID string) error
}

// BudgetReconciler recomputes the current month's budget lines from the
// recorded expenses and returns the report.
type BudgetReconciler interface {
	Reconcile(ctx context.Context) (*budget.Report, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
