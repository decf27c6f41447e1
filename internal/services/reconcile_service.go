package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"expensetrack/internal/budget"
	apperrors "expensetrack/internal/errors"
	"expensetrack/internal/logger"
	"expensetrack/internal/models"
)

// reconcileService runs the monthly budget reconciliation against the database.
type reconcileService struct {
	db    *gorm.DB
	opts  budget.Options
	now   func() time.Time
	group singleflight.Group
}

// NewBudgetReconciler creates a BudgetReconciler. now supplies the current
// date and defaults to time.Now when nil.
func NewBudgetReconciler(db *gorm.DB, opts budget.Options, now func() time.Time) BudgetReconciler {
	if now == nil {
		now = time.Now
	}
	return &reconcileService{db: db, opts: opts, now: now}
}

// Reconcile recomputes every budget line for the current month and returns
// the report. Concurrent calls for the same month share one run, which is
// detached from the cancellation of whichever caller started it.
//
// The read-aggregate-write sequence runs in a single transaction with the
// budget lines locked, so a completed run always persists the state of its
// own snapshot and a failed run persists nothing.
func (s *reconcileService) Reconcile(ctx context.Context) (*budget.Report, error) {
	start, end := budget.MonthWindow(s.now())

	v, err, shared := s.group.Do(start.Format("2006-01"), func() (interface{}, error) {
		return s.run(context.WithoutCancel(ctx), start, end)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Named("reconcile").Debugw("joined in-flight reconciliation", "month", start.Format("2006-01"))
	}
	return v.(*budget.Report), nil
}

// spendRow is the projection of an expense read by the aggregation.
type spendRow struct {
	CategoryID string
	Amount     decimal.Decimal
}

func (s *reconcileService) run(ctx context.Context, start, end time.Time) (*budget.Report, error) {
	log := logger.Named("reconcile")
	year, month := start.Year(), start.Month()

	var report *budget.Report
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var spends []spendRow
		if err := tx.Model(&models.Expense{}).
			Select("category_id", "amount").
			Where("expense_date >= ? AND expense_date < ?", start, end).
			Scan(&spends).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(spends) == 0 {
			report = budget.Empty(year, month, budget.StatusNoExpenses)
			return nil
		}

		var lines []models.BudgetLine
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Order("id").Find(&lines).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(lines) == 0 {
			report = budget.Empty(year, month, budget.StatusNoBudgetLines)
			return nil
		}

		var categories []models.ExpenseCategory
		if err := tx.Find(&categories).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		result, err := budget.Reconcile(toBudgetLines(lines), toBudgetCategories(categories), aggregate(spends), s.opts)
		if err != nil {
			var cfgErr *budget.UnconfiguredError
			if errors.As(err, &cfgErr) {
				return apperrors.WithMessage(apperrors.ErrBudgetNotConfigured, cfgErr.Error())
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		// Every line was orphaned: there is nothing to write.
		if len(result.Lines()) == 0 {
			report = budget.Empty(year, month, budget.StatusNoBudgetLines)
			report.Warnings = result.Warnings
			return nil
		}

		for _, row := range result.Lines() {
			res := tx.Model(&models.BudgetLine{}).Where("id = ?", row.LineID).Updates(map[string]interface{}{
				"beginning_balance": row.BeginningBalance,
				"total_available":   decimal.NewNullDecimal(row.TotalAvailable),
				"expense_amount":    decimal.NewNullDecimal(row.ExpenseAmount),
				"current_balance":   decimal.NewNullDecimal(row.CurrentBalance),
			})
			if res.Error != nil {
				return apperrors.Wrap(apperrors.ErrReconciliationFailed, res.Error)
			}
			if res.RowsAffected == 0 {
				return apperrors.Wrap(apperrors.ErrReconciliationFailed, fmt.Errorf("budget line %s disappeared during reconciliation", row.LineID))
			}
		}

		report = &budget.Report{
			Year:     year,
			Month:    month,
			Status:   budget.StatusReconciled,
			Rows:     result.Rows,
			Chart:    result.Chart,
			Warnings: result.Warnings,
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			err = apperrors.Wrap(apperrors.ErrReconciliationFailed, err)
		}
		log.Warnw("reconciliation failed", "year", year, "month", int(month), "error", err, "cause", errors.Unwrap(err))
		return nil, err
	}

	for _, w := range report.Warnings {
		log.Warnw("budget configuration warning", "kind", w.Kind, "category_id", w.CategoryID, "category", w.Category, "message", w.Message)
	}
	log.Infow("reconciliation finished",
		"year", year,
		"month", int(month),
		"status", report.Status,
		"rows", len(report.Rows),
		"warnings", len(report.Warnings),
	)
	return report, nil
}

func aggregate(rows []spendRow) map[string]decimal.Decimal {
	spends := make([]budget.Spend, len(rows))
	for i, r := range rows {
		spends[i] = budget.Spend{CategoryID: r.CategoryID, Amount: r.Amount}
	}
	return budget.Aggregate(spends)
}

func toBudgetLines(lines []models.BudgetLine) []budget.Line {
	out := make([]budget.Line, len(lines))
	for i, l := range lines {
		out[i] = budget.Line{
			ID:               l.ID,
			CategoryID:       l.CategoryID,
			BeginningBalance: l.BeginningBalance,
			BudgetAmount:     budget.AmountFromNull(l.BudgetAmount),
		}
	}
	return out
}

func toBudgetCategories(categories []models.ExpenseCategory) []budget.Category {
	out := make([]budget.Category, len(categories))
	for i, c := range categories {
		out[i] = budget.Category{ID: c.ID, Name: c.Name}
	}
	return out
}
