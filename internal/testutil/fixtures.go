package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"expensetrack/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates an expense category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB) *models.ExpenseCategory {
	t.Helper()
	return CreateTestCategoryNamed(t, db, fmt.Sprintf("Test Category %d", nextID()))
}

// CreateTestCategoryNamed creates an expense category with the given name.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, name string) *models.ExpenseCategory {
	t.Helper()

	category := &models.ExpenseCategory{Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestExpense records an expense in the category on the given date.
// amount is parsed as a decimal string, e.g. "12.50".
func CreateTestExpense(t *testing.T, db *gorm.DB, categoryID string, date time.Time, amount string) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		ExpenseDate:  time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		CategoryID:   categoryID,
		Name:         fmt.Sprintf("Test Expense %d", nextID()),
		Organization: "Test Org",
		Amount:       decimal.RequireFromString(amount),
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestBudgetLine creates a budget line for the category. An empty
// budgetAmount leaves the line unconfigured.
func CreateTestBudgetLine(t *testing.T, db *gorm.DB, categoryID, beginningBalance, budgetAmount string) *models.BudgetLine {
	t.Helper()

	line := &models.BudgetLine{
		CategoryID:       categoryID,
		BeginningBalance: decimal.RequireFromString(beginningBalance),
	}
	if budgetAmount != "" {
		line.BudgetAmount = decimal.NewNullDecimal(decimal.RequireFromString(budgetAmount))
	}
	if err := db.Create(line).Error; err != nil {
		t.Fatalf("failed to create test budget line: %v", err)
	}
	return line
}

// ReloadBudgetLine reads the current persisted state of a budget line.
func ReloadBudgetLine(t *testing.T, db *gorm.DB, lineID string) *models.BudgetLine {
	t.Helper()

	var line models.BudgetLine
	if err := db.Where("id = ?", lineID).First(&line).Error; err != nil {
		t.Fatalf("failed to reload budget line: %v", err)
	}
	return &line
}
