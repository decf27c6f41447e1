package budget

import "time"

// Status describes the outcome of a reconciliation run.
type Status string

const (
	// StatusReconciled means the budget lines were updated and rows are present.
	StatusReconciled Status = "reconciled"
	// StatusNoExpenses means no expense fell in the month; nothing was written.
	StatusNoExpenses Status = "no_expenses"
	// StatusNoBudgetLines means no budget line is configured.
	StatusNoBudgetLines Status = "no_budget_lines"
)

// Informational messages for the empty states.
const (
	MessageNoExpenses    = "No expense records found for this month."
	MessageNoBudgetLines = "No records found."
)

// Report is what a reconciliation run hands to the presentation layer.
type Report struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Status Status     `json:"status"`
	// Message is set for the empty states.
	Message  string                `json:"message,omitempty"`
	Rows     []Row                 `json:"rows,omitempty"`
	Chart    map[string]ChartPoint `json:"chart,omitempty"`
	Warnings []Warning             `json:"warnings,omitempty"`
}

// Empty returns a report in one of the informational empty states.
func Empty(year int, month time.Month, status Status) *Report {
	r := &Report{Year: year, Month: month, Status: status}
	switch status {
	case StatusNoExpenses:
		r.Message = MessageNoExpenses
	case StatusNoBudgetLines:
		r.Message = MessageNoBudgetLines
	}
	return r
}

// MonthWindow returns the half-open [start, end) interval of the calendar
// month containing now. Expense dates are stored as UTC midnights, so the
// window is expressed in UTC using now's own calendar month.
func MonthWindow(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
