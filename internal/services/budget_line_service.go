package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "expensetrack/internal/errors"
	"expensetrack/internal/models"
	"expensetrack/internal/pagination"
	"expensetrack/internal/validator"
)

// budgetLineService handles budget line administration. The derived
// columns are owned by the reconciler and never written here.
type budgetLineService struct {
	db *gorm.DB
}

// NewBudgetLineService creates a new BudgetLineServicer.
func NewBudgetLineService(db *gorm.DB) BudgetLineServicer {
	return &budgetLineService{db: db}
}

// CreateBudgetLine seeds the budget line for a category. budgetAmount may be
// nil, leaving the line unconfigured until it is set.
func (s *budgetLineService) CreateBudgetLine(categoryID string, beginningBalance decimal.Decimal, budgetAmount *decimal.Decimal) (*models.BudgetLine, error) {
	if err := validateLineAmounts(&beginningBalance, budgetAmount); err != nil {
		return nil, err
	}

	category, err := findCategory(s.db, categoryID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.BudgetLine{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateBudgetLine
	}

	line := &models.BudgetLine{
		CategoryID:       category.ID,
		BeginningBalance: beginningBalance,
	}
	if budgetAmount != nil {
		line.BudgetAmount = decimal.NewNullDecimal(*budgetAmount)
	}

	if err := s.db.Create(line).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	line.Category = category
	return line, nil
}

// GetBudgetLines returns a page of budget lines ordered by category name.
func (s *budgetLineService) GetBudgetLines(page pagination.PageRequest) (*pagination.PageResponse[models.BudgetLine], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.BudgetLine{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var lines []models.BudgetLine
	if err := s.db.Model(&models.BudgetLine{}).
		Joins("Category").
		Order(clause.OrderByColumn{Column: clause.Column{Table: "Category", Name: "name"}}).
		Scopes(pagination.Paginate(page)).
		Find(&lines).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(lines, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetLineByID retrieves a budget line with its category.
func (s *budgetLineService) GetBudgetLineByID(lineID string) (*models.BudgetLine, error) {
	var line models.BudgetLine
	if err := s.db.Preload("Category").Where("id = ?", lineID).First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetLineNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &line, nil
}

// UpdateBudgetLine changes the configured amounts. Nil arguments are left as is.
func (s *budgetLineService) UpdateBudgetLine(lineID string, beginningBalance, budgetAmount *decimal.Decimal) (*models.BudgetLine, error) {
	if err := validateLineAmounts(beginningBalance, budgetAmount); err != nil {
		return nil, err
	}

	line, err := s.GetBudgetLineByID(lineID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if beginningBalance != nil {
		updates["beginning_balance"] = *beginningBalance
		line.BeginningBalance = *beginningBalance
	}
	if budgetAmount != nil {
		updates["budget_amount"] = decimal.NewNullDecimal(*budgetAmount)
		line.BudgetAmount = decimal.NewNullDecimal(*budgetAmount)
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.BudgetLine{}).Where("id = ?", line.ID).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return line, nil
}

// DeleteBudgetLine permanently removes a budget line.
func (s *budgetLineService) DeleteBudgetLine(lineID string) error {
	res := s.db.Where("id = ?", lineID).Delete(&models.BudgetLine{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrBudgetLineNotFound
	}
	return nil
}

func validateLineAmounts(amounts ...*decimal.Decimal) error {
	for _, a := range amounts {
		if a != nil && !validator.ValidMoney(*a) {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "amounts must have at most two decimal places and seven digits")
		}
	}
	return nil
}
