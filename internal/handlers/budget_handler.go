package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"expensetrack/internal/budget"
	"expensetrack/internal/services"
)

// BudgetHandler serves the monthly budget reconciliation view.
type BudgetHandler struct {
	reconciler   services.BudgetReconciler
	auditService services.AuditServicer
	opts         budget.Options
}

// NewBudgetHandler creates a new BudgetHandler. opts controls how amounts
// are rendered and must match the options the reconciler was built with.
func NewBudgetHandler(reconciler services.BudgetReconciler, auditService services.AuditServicer, opts budget.Options) *BudgetHandler {
	return &BudgetHandler{reconciler: reconciler, auditService: auditService, opts: opts}
}

// BudgetRowResponse is one rendered report row. Amounts are fixed-point strings.
type BudgetRowResponse struct {
	Category             string `json:"category"`
	BeginningBalance     string `json:"beginning_balance"`
	BudgetAmount         string `json:"budget_amount"`
	TotalAvailable       string `json:"total_available"`
	ExpenseAmount        string `json:"expense_amount"`
	RoundedExpenseAmount string `json:"rounded_expense_amount"`
	CurrentBalance       string `json:"current_balance"`
}

// ChartPointResponse is the budget-vs-actual pair for one category.
type ChartPointResponse struct {
	Category      string `json:"category"`
	BudgetAmount  string `json:"budget_amount"`
	ExpenseAmount string `json:"expense_amount"`
}

// WarningResponse is a rendered configuration warning.
type WarningResponse struct {
	Kind       string `json:"kind"`
	CategoryID string `json:"category_id"`
	Category   string `json:"category,omitempty"`
	Spent      string `json:"spent"`
	Message    string `json:"message"`
}

// BudgetReportResponse is the reconciliation view. Rows are sorted by
// category with the totals row last.
type BudgetReportResponse struct {
	Year     int                  `json:"year"`
	Month    string               `json:"month"`
	Status   string               `json:"status"`
	Message  string               `json:"message,omitempty"`
	Rows     []BudgetRowResponse  `json:"rows"`
	Chart    []ChartPointResponse `json:"chart"`
	Warnings []WarningResponse    `json:"warnings"`
}

// GetBudget reconciles the current month and returns the report.
// @Summary     Monthly budget reconciliation
// @Description Recompute every budget line from this month's expenses, persist the derived amounts and return the report
// @Tags        budget
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} BudgetReportResponse "Budget report or an informational empty state"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     422 {object} ErrorResponse "A budget line has no budget amount"
// @Failure     500 {object} ErrorResponse "Reconciliation failed"
// @Router      /budget [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reconciler.Reconcile(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	if report.Status == budget.StatusReconciled {
		h.auditService.Log(userID, "RECONCILE_BUDGET", "budget", "", c.ClientIP(), map[string]any{
			"year":     report.Year,
			"month":    int(report.Month),
			"rows":     len(report.Rows),
			"warnings": len(report.Warnings),
		})
	}

	c.JSON(http.StatusOK, renderReport(report, h.opts))
}

func renderReport(report *budget.Report, opts budget.Options) BudgetReportResponse {
	resp := BudgetReportResponse{
		Year:     report.Year,
		Month:    report.Month.String(),
		Status:   string(report.Status),
		Message:  report.Message,
		Rows:     make([]BudgetRowResponse, 0, len(report.Rows)),
		Chart:    make([]ChartPointResponse, 0, len(report.Chart)),
		Warnings: make([]WarningResponse, 0, len(report.Warnings)),
	}

	for _, r := range report.Rows {
		resp.Rows = append(resp.Rows, BudgetRowResponse{
			Category:             r.Category,
			BeginningBalance:     r.BeginningBalance.StringFixed(opts.Places),
			BudgetAmount:         r.BudgetAmount.StringFixed(opts.Places),
			TotalAvailable:       r.TotalAvailable.StringFixed(opts.Places),
			ExpenseAmount:        r.ExpenseAmount.StringFixed(opts.Places),
			RoundedExpenseAmount: r.RoundedExpenseAmount.StringFixed(0),
			CurrentBalance:       r.CurrentBalance.StringFixed(opts.Places),
		})
	}

	names := make([]string, 0, len(report.Chart))
	for name := range report.Chart {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := report.Chart[name]
		resp.Chart = append(resp.Chart, ChartPointResponse{
			Category:      name,
			BudgetAmount:  p.BudgetAmount.StringFixed(opts.Places),
			ExpenseAmount: p.ExpenseAmount.StringFixed(opts.Places),
		})
	}

	for _, w := range report.Warnings {
		resp.Warnings = append(resp.Warnings, WarningResponse{
			Kind:       string(w.Kind),
			CategoryID: w.CategoryID,
			Category:   w.Category,
			Spent:      w.Spent.StringFixed(opts.Places),
			Message:    w.Message,
		})
	}

	return resp
}
