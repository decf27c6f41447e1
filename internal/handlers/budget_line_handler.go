package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "expensetrack/internal/errors"
	"expensetrack/internal/pagination"
	"expensetrack/internal/services"
)

// BudgetLineHandler handles budget line administration.
type BudgetLineHandler struct {
	lineService  services.BudgetLineServicer
	auditService services.AuditServicer
}

// NewBudgetLineHandler creates a new BudgetLineHandler.
func NewBudgetLineHandler(lineService services.BudgetLineServicer, auditService services.AuditServicer) *BudgetLineHandler {
	return &BudgetLineHandler{lineService: lineService, auditService: auditService}
}

// CreateBudgetLineRequest seeds a budget line. A missing budget_amount leaves
// the line unconfigured.
type CreateBudgetLineRequest struct {
	CategoryID       string           `json:"category_id" binding:"required,uuid"`
	BeginningBalance decimal.Decimal  `json:"beginning_balance" binding:"money" swaggertype:"string" example:"100.00"`
	BudgetAmount     *decimal.Decimal `json:"budget_amount" binding:"omitempty,money" swaggertype:"string" example:"300.00"`
}

// UpdateBudgetLineRequest changes the configured amounts. Omitted fields are
// left unchanged.
type UpdateBudgetLineRequest struct {
	BeginningBalance *decimal.Decimal `json:"beginning_balance" binding:"omitempty,money" swaggertype:"string"`
	BudgetAmount     *decimal.Decimal `json:"budget_amount" binding:"omitempty,money" swaggertype:"string"`
}

// CreateBudgetLine handles seeding a budget line.
// @Summary     Create a budget line
// @Description Create the budget line for a category (admin only)
// @Tags        budget-lines
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetLineRequest true "Budget line"
// @Success     201 {object} models.BudgetLine "Budget line created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Budget line already exists"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget-lines [post]
func (h *BudgetLineHandler) CreateBudgetLine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	line, err := h.lineService.CreateBudgetLine(req.CategoryID, req.BeginningBalance, req.BudgetAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BUDGET_LINE", "budget_line", line.ID, c.ClientIP(),
		map[string]any{"category_id": req.CategoryID, "beginning_balance": req.BeginningBalance.StringFixed(2)})

	c.JSON(http.StatusCreated, gin.H{"budget_line": line})
}

// GetBudgetLines lists budget lines.
// @Summary     List budget lines
// @Description Get a paginated list of budget lines ordered by category name
// @Tags        budget-lines
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.BudgetLine] "Paginated budget lines"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget-lines [get]
func (h *BudgetLineHandler) GetBudgetLines(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.lineService.GetBudgetLines(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudgetLine returns one budget line.
// @Summary     Get budget line by ID
// @Tags        budget-lines
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget line ID"
// @Success     200 {object} models.BudgetLine "Budget line"
// @Failure     400 {object} ErrorResponse "Invalid budget line ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget line not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget-lines/{id} [get]
func (h *BudgetLineHandler) GetBudgetLine(c *gin.Context) {
	lineID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	line, err := h.lineService.GetBudgetLineByID(lineID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget_line": line})
}

// UpdateBudgetLine changes the configured amounts of a budget line.
// @Summary     Update budget line
// @Description Update the beginning balance and/or budget amount (admin only)
// @Tags        budget-lines
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Budget line ID"
// @Param       request body UpdateBudgetLineRequest true "Amounts"
// @Success     200 {object} models.BudgetLine "Updated budget line"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Budget line not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget-lines/{id} [put]
func (h *BudgetLineHandler) UpdateBudgetLine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	lineID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	line, err := h.lineService.UpdateBudgetLine(lineID, req.BeginningBalance, req.BudgetAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]any{}
	if req.BeginningBalance != nil {
		changes["beginning_balance"] = req.BeginningBalance.StringFixed(2)
	}
	if req.BudgetAmount != nil {
		changes["budget_amount"] = req.BudgetAmount.StringFixed(2)
	}
	h.auditService.Log(userID, "UPDATE_BUDGET_LINE", "budget_line", lineID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"budget_line": line})
}

// DeleteBudgetLine removes a budget line.
// @Summary     Delete budget line
// @Tags        budget-lines
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget line ID"
// @Success     200 {object} MessageResponse "Budget line deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget line ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Budget line not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget-lines/{id} [delete]
func (h *BudgetLineHandler) DeleteBudgetLine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	lineID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.lineService.DeleteBudgetLine(lineID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET_LINE", "budget_line", lineID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Budget line deleted successfully"})
}
