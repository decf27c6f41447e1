package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "expensetrack/internal/errors"
	"expensetrack/internal/models"
	"expensetrack/internal/pagination"
	"expensetrack/internal/validator"
)

// expenseSortColumns are the fields the ledger can be sorted by.
var expenseSortColumns = map[string]string{
	"expense_date": "expense_date",
	"amount":       "amount",
	"name":         "name",
	"organization": "organization",
	"created_at":   "created_at",
}

const defaultExpenseOrder = "expense_date DESC, created_at DESC"

// expenseService handles the expense ledger.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// CreateExpense records a new expense.
func (s *expenseService) CreateExpense(input ExpenseInput) (*models.Expense, error) {
	var expense *models.Expense
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		expense, txErr = createExpenseWithDB(tx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// createExpenseWithDB validates and inserts one expense using the given
// connection, so bulk imports can share a transaction.
func createExpenseWithDB(tx *gorm.DB, input ExpenseInput) (*models.Expense, error) {
	input, err := normalizeExpenseInput(input)
	if err != nil {
		return nil, err
	}

	category, err := findCategory(tx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		ExpenseDate:  input.ExpenseDate,
		CategoryID:   category.ID,
		Name:         input.Name,
		Organization: input.Organization,
		Amount:       input.Amount,
		Notes:        input.Notes,
	}
	if err := tx.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expense.Category = category
	return expense, nil
}

// GetExpenses returns a filtered, paginated page of the ledger, newest first
// unless another sort is requested.
func (s *expenseService) GetExpenses(page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := applyExpenseFilters(s.db.Model(&models.Expense{}), filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Preload("Category").
		Order(page.OrderClause(expenseSortColumns, defaultExpenseOrder)).
		Scopes(pagination.Paginate(page)).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyExpenseFilters(q *gorm.DB, f ExpenseFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("expense_date >= ?", dateOnly(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("expense_date <= ?", dateOnly(*f.ToDate))
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Search != nil && strings.TrimSpace(*f.Search) != "" {
		like := "%" + strings.ToLower(strings.TrimSpace(*f.Search)) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(organization) LIKE ? OR LOWER(notes) LIKE ?)", like, like, like)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetExpenseByID retrieves an expense with its category.
func (s *expenseService) GetExpenseByID(expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Preload("Category").Where("id = ?", expenseID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense replaces every editable field. The creation timestamp is
// never written.
func (s *expenseService) UpdateExpense(expenseID string, input ExpenseInput) (*models.Expense, error) {
	input, err := normalizeExpenseInput(input)
	if err != nil {
		return nil, err
	}

	expense, err := s.GetExpenseByID(expenseID)
	if err != nil {
		return nil, err
	}

	category, err := findCategory(s.db, input.CategoryID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"expense_date": input.ExpenseDate,
		"category_id":  category.ID,
		"name":         input.Name,
		"organization": input.Organization,
		"amount":       input.Amount,
		"notes":        input.Notes,
	}
	if err := s.db.Model(expense).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	expense.ExpenseDate = input.ExpenseDate
	expense.CategoryID = category.ID
	expense.Category = category
	expense.Name = input.Name
	expense.Organization = input.Organization
	expense.Amount = input.Amount
	expense.Notes = input.Notes
	return expense, nil
}

// DeleteExpense permanently removes an expense.
func (s *expenseService) DeleteExpense(expenseID string) error {
	res := s.db.Where("id = ?", expenseID).Delete(&models.Expense{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrExpenseNotFound
	}
	return nil
}

func normalizeExpenseInput(in ExpenseInput) (ExpenseInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Organization = strings.TrimSpace(in.Organization)
	in.Notes = strings.TrimSpace(in.Notes)

	switch {
	case in.ExpenseDate.IsZero():
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "Please select an expense date.")
	case in.CategoryID == "":
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "Please enter an expense category.")
	case in.Name == "":
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "Please enter a name.")
	case in.Organization == "":
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "Please enter an organization.")
	case !validator.ValidMoney(in.Amount):
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must have at most two decimal places and seven digits.")
	}

	in.ExpenseDate = dateOnly(in.ExpenseDate)
	return in, nil
}

func findCategory(db *gorm.DB, categoryID string) (*models.ExpenseCategory, error) {
	var category models.ExpenseCategory
	if err := db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// dateOnly truncates t to its calendar date at UTC midnight.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
