// Package budget implements the monthly budget reconciliation: it sums the
// month's expenses per category, merges the sums into the configured budget
// lines, derives the balances and builds the report rows.
//
// The package does no I/O. Persistence and transaction handling live in the
// reconcile service, which feeds this package a consistent snapshot.
package budget

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a money value that may be unconfigured. An unconfigured amount
// is never treated as zero.
type Amount struct {
	value decimal.Decimal
	set   bool
}

// Configured returns a set amount.
func Configured(v decimal.Decimal) Amount { return Amount{value: v, set: true} }

// Unconfigured returns an amount that has not been set.
func Unconfigured() Amount { return Amount{} }

// AmountFromNull converts a nullable column value.
func AmountFromNull(n decimal.NullDecimal) Amount {
	if !n.Valid {
		return Unconfigured()
	}
	return Configured(n.Decimal)
}

// Value returns the amount and whether it is configured.
func (a Amount) Value() (decimal.Decimal, bool) { return a.value, a.set }

// Category is an expense category as seen by the reconciliation.
type Category struct {
	ID   string
	Name string
}

// Line is the configured part of a persisted budget line.
type Line struct {
	ID               string
	CategoryID       string
	BeginningBalance decimal.Decimal
	BudgetAmount     Amount
}

// Spend is one expense amount attributed to a category.
type Spend struct {
	CategoryID string
	Amount     decimal.Decimal
}

// MoneyPlaces is the number of fraction digits every computed sum and
// balance is rounded to. Persisted values are always exact cents.
const MoneyPlaces int32 = 2

// Options controls presentation of a report. It is passed explicitly to
// every call; there is no package-level formatting state.
type Options struct {
	// Places is the number of fraction digits amounts are displayed with.
	// It never affects the computed values.
	Places int32
	// TotalsLabel is the category label of the synthetic totals row.
	TotalsLabel string
}

// DefaultOptions displays cents and labels the totals row "Totals".
func DefaultOptions() Options {
	return Options{Places: 2, TotalsLabel: "Totals"}
}

// Row is one line of the reconciliation report.
type Row struct {
	LineID               string          `json:"-"`
	Category             string          `json:"category"`
	BeginningBalance     decimal.Decimal `json:"beginning_balance"`
	BudgetAmount         decimal.Decimal `json:"budget_amount"`
	TotalAvailable       decimal.Decimal `json:"total_available"`
	ExpenseAmount        decimal.Decimal `json:"expense_amount"`
	RoundedExpenseAmount decimal.Decimal `json:"rounded_expense_amount"`
	CurrentBalance       decimal.Decimal `json:"current_balance"`
}

// ChartPoint is the budget-vs-actual pair rendered per category.
type ChartPoint struct {
	BudgetAmount  decimal.Decimal `json:"budget_amount"`
	ExpenseAmount decimal.Decimal `json:"expense_amount"`
}

// WarningKind classifies a configuration warning.
type WarningKind string

const (
	// WarningOrphanedLine is a budget line whose category does not exist.
	WarningOrphanedLine WarningKind = "orphaned_budget_line"
	// WarningUnbudgetedCategory is a category without a budget line.
	WarningUnbudgetedCategory WarningKind = "unbudgeted_category"
)

// Warning reports a mismatch between categories and budget lines.
type Warning struct {
	Kind       WarningKind     `json:"kind"`
	CategoryID string          `json:"category_id"`
	Category   string          `json:"category,omitempty"`
	Spent      decimal.Decimal `json:"spent"`
	Message    string          `json:"message"`
}

// Result is the outcome of merging a month's spending into the budget lines.
type Result struct {
	// Rows holds one row per reconciled line sorted by category name,
	// followed by the totals row.
	Rows     []Row
	Chart    map[string]ChartPoint
	Warnings []Warning
}

// Lines returns the reconciled rows without the totals row.
func (r *Result) Lines() []Row {
	if len(r.Rows) == 0 {
		return nil
	}
	return r.Rows[:len(r.Rows)-1]
}

// Totals returns the totals row.
func (r *Result) Totals() Row {
	return r.Rows[len(r.Rows)-1]
}

// UnconfiguredError lists the categories whose budget line has no budget amount.
type UnconfiguredError struct {
	Categories []string
}

func (e *UnconfiguredError) Error() string {
	return fmt.Sprintf("budget amount not configured for: %s", strings.Join(e.Categories, ", "))
}

// Aggregate sums spends per category ID. Each sum is rounded once, after
// summation, to MoneyPlaces using round half away from zero.
func Aggregate(spends []Spend) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, s := range spends {
		sums[s.CategoryID] = sums[s.CategoryID].Add(s.Amount)
	}
	for id, sum := range sums {
		sums[id] = sum.Round(MoneyPlaces)
	}
	return sums
}

// Reconcile merges the monthly sums into lines. Lines are joined to
// categories by ID; lines without a category and categories without a line
// become warnings. A line with no budget amount fails the whole run with an
// *UnconfiguredError and no rows are produced.
func Reconcile(lines []Line, categories []Category, spent map[string]decimal.Decimal, opts Options) (*Result, error) {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	result := &Result{Chart: make(map[string]ChartPoint, len(lines))}
	budgeted := make(map[string]bool, len(lines))
	var unconfigured []string
	var rows []Row

	for _, line := range lines {
		name, ok := names[line.CategoryID]
		if !ok {
			result.Warnings = append(result.Warnings, Warning{
				Kind:       WarningOrphanedLine,
				CategoryID: line.CategoryID,
				Spent:      spent[line.CategoryID],
				Message:    fmt.Sprintf("budget line %s references unknown category %s", line.ID, line.CategoryID),
			})
			continue
		}
		budgeted[line.CategoryID] = true

		budgetAmt, ok := line.BudgetAmount.Value()
		if !ok {
			unconfigured = append(unconfigured, name)
			continue
		}

		// Unmatched categories are zero-filled, never left stale.
		expense := spent[line.CategoryID]
		total := line.BeginningBalance.Add(budgetAmt).Round(MoneyPlaces)
		rows = append(rows, Row{
			LineID:               line.ID,
			Category:             name,
			BeginningBalance:     line.BeginningBalance,
			BudgetAmount:         budgetAmt,
			TotalAvailable:       total,
			ExpenseAmount:        expense,
			RoundedExpenseAmount: expense.Ceil(),
			CurrentBalance:       total.Sub(expense).Round(MoneyPlaces),
		})
		result.Chart[name] = ChartPoint{BudgetAmount: budgetAmt, ExpenseAmount: expense}
	}

	if len(unconfigured) > 0 {
		sort.Strings(unconfigured)
		return nil, &UnconfiguredError{Categories: unconfigured}
	}

	for _, c := range categories {
		if budgeted[c.ID] {
			continue
		}
		result.Warnings = append(result.Warnings, Warning{
			Kind:       WarningUnbudgetedCategory,
			CategoryID: c.ID,
			Category:   c.Name,
			Spent:      spent[c.ID],
			Message:    fmt.Sprintf("category %q has no budget line", c.Name),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Category < rows[j].Category })
	result.Rows = append(rows, Totals(rows, opts))
	return result, nil
}

// Totals returns the column-wise sum of rows labelled opts.TotalsLabel.
func Totals(rows []Row, opts Options) Row {
	t := Row{Category: opts.TotalsLabel}
	for _, r := range rows {
		t.BeginningBalance = t.BeginningBalance.Add(r.BeginningBalance)
		t.BudgetAmount = t.BudgetAmount.Add(r.BudgetAmount)
		t.TotalAvailable = t.TotalAvailable.Add(r.TotalAvailable)
		t.ExpenseAmount = t.ExpenseAmount.Add(r.ExpenseAmount)
		t.RoundedExpenseAmount = t.RoundedExpenseAmount.Add(r.RoundedExpenseAmount)
		t.CurrentBalance = t.CurrentBalance.Add(r.CurrentBalance)
	}
	return t
}
