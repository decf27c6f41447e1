package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "expensetrack/internal/errors"
	"expensetrack/internal/models"
	"expensetrack/internal/pagination"
)

const testLineID = "0191a2b3-0000-7000-8000-0000000000b1"

// --- mock budget line service ---

type mockBudgetLineService struct {
	createBudgetLineFn  func(categoryID string, beginningBalance decimal.Decimal, budgetAmount *decimal.Decimal) (*models.BudgetLine, error)
	getBudgetLinesFn    func(page pagination.PageRequest) (*pagination.PageResponse[models.BudgetLine], error)
	getBudgetLineByIDFn func(lineID string) (*models.BudgetLine, error)
	updateBudgetLineFn  func(lineID string, beginningBalance, budgetAmount *decimal.Decimal) (*models.BudgetLine, error)
	deleteBudgetLineFn  func(lineID string) error
}

func (m *mockBudgetLineService) CreateBudgetLine(categoryID string, beginningBalance decimal.Decimal, budgetAmount *decimal.Decimal) (*models.BudgetLine, error) {
	if m.createBudgetLineFn != nil {
		return m.createBudgetLineFn(categoryID, beginningBalance, budgetAmount)
	}
	return &models.BudgetLine{Base: models.Base{ID: testLineID}, CategoryID: categoryID}, nil
}

func (m *mockBudgetLineService) GetBudgetLines(page pagination.PageRequest) (*pagination.PageResponse[models.BudgetLine], error) {
	if m.getBudgetLinesFn != nil {
		return m.getBudgetLinesFn(page)
	}
	resp := pagination.NewPageResponse([]models.BudgetLine{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockBudgetLineService) GetBudgetLineByID(lineID string) (*models.BudgetLine, error) {
	if m.getBudgetLineByIDFn != nil {
		return m.getBudgetLineByIDFn(lineID)
	}
	return &models.BudgetLine{Base: models.Base{ID: lineID}}, nil
}

func (m *mockBudgetLineService) UpdateBudgetLine(lineID string, beginningBalance, budgetAmount *decimal.Decimal) (*models.BudgetLine, error) {
	if m.updateBudgetLineFn != nil {
		return m.updateBudgetLineFn(lineID, beginningBalance, budgetAmount)
	}
	return &models.BudgetLine{Base: models.Base{ID: lineID}}, nil
}

func (m *mockBudgetLineService) DeleteBudgetLine(lineID string) error {
	if m.deleteBudgetLineFn != nil {
		return m.deleteBudgetLineFn(lineID)
	}
	return nil
}

func setupBudgetLineRouter(handler *BudgetLineHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/budget-lines", handler.CreateBudgetLine)
	auth.GET("/budget-lines", handler.GetBudgetLines)
	auth.GET("/budget-lines/:id", handler.GetBudgetLine)
	auth.PUT("/budget-lines/:id", handler.UpdateBudgetLine)
	auth.DELETE("/budget-lines/:id", handler.DeleteBudgetLine)
	return r
}

func TestBudgetLineHandler_CreateBudgetLine(t *testing.T) {
	t.Run("creates a configured line", func(t *testing.T) {
		var gotBeginning decimal.Decimal
		var gotBudget *decimal.Decimal
		svc := &mockBudgetLineService{
			createBudgetLineFn: func(categoryID string, beginning decimal.Decimal, budgetAmount *decimal.Decimal) (*models.BudgetLine, error) {
				gotBeginning, gotBudget = beginning, budgetAmount
				return &models.BudgetLine{Base: models.Base{ID: testLineID}, CategoryID: categoryID}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupBudgetLineRouter(NewBudgetLineHandler(svc, audit))

		rec := doRequest(r, "POST", "/budget-lines",
			`{"category_id":"`+testCategoryID+`","beginning_balance":"100.00","budget_amount":"300.00"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !gotBeginning.Equal(decimal.NewFromInt(100)) {
			t.Errorf("unexpected beginning balance %s", gotBeginning)
		}
		if gotBudget == nil || !gotBudget.Equal(decimal.NewFromInt(300)) {
			t.Errorf("unexpected budget amount %v", gotBudget)
		}
		if len(audit.entries) != 1 || audit.entries[0].Action != "CREATE_BUDGET_LINE" {
			t.Errorf("expected CREATE_BUDGET_LINE audit entry, got %+v", audit.entries)
		}
	})

	t.Run("leaves budget amount unset when omitted", func(t *testing.T) {
		called := false
		svc := &mockBudgetLineService{
			createBudgetLineFn: func(categoryID string, _ decimal.Decimal, budgetAmount *decimal.Decimal) (*models.BudgetLine, error) {
				called = true
				if budgetAmount != nil {
					t.Errorf("expected nil budget amount, got %s", budgetAmount)
				}
				return &models.BudgetLine{Base: models.Base{ID: testLineID}, CategoryID: categoryID}, nil
			},
		}
		r := setupBudgetLineRouter(NewBudgetLineHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budget-lines", `{"category_id":"`+testCategoryID+`","beginning_balance":"0"}`)

		if rec.Code != http.StatusCreated || !called {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 on invalid amount", func(t *testing.T) {
		r := setupBudgetLineRouter(NewBudgetLineHandler(&mockBudgetLineService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budget-lines",
			`{"category_id":"`+testCategoryID+`","beginning_balance":"1.234"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate", func(t *testing.T) {
		svc := &mockBudgetLineService{
			createBudgetLineFn: func(string, decimal.Decimal, *decimal.Decimal) (*models.BudgetLine, error) {
				return nil, apperrors.ErrDuplicateBudgetLine
			},
		}
		r := setupBudgetLineRouter(NewBudgetLineHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budget-lines", `{"category_id":"`+testCategoryID+`","beginning_balance":"0"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_BUDGET_LINE")
	})
}

func TestBudgetLineHandler_GetBudgetLine(t *testing.T) {
	svc := &mockBudgetLineService{
		getBudgetLineByIDFn: func(string) (*models.BudgetLine, error) { return nil, apperrors.ErrBudgetLineNotFound },
	}
	r := setupBudgetLineRouter(NewBudgetLineHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/budget-lines/"+testLineID, "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "BUDGET_LINE_NOT_FOUND")
}

func TestBudgetLineHandler_UpdateBudgetLine(t *testing.T) {
	var gotBeginning, gotBudget *decimal.Decimal
	svc := &mockBudgetLineService{
		updateBudgetLineFn: func(lineID string, beginning, budgetAmount *decimal.Decimal) (*models.BudgetLine, error) {
			gotBeginning, gotBudget = beginning, budgetAmount
			return &models.BudgetLine{Base: models.Base{ID: lineID}}, nil
		},
	}
	audit := &mockAuditService{}
	r := setupBudgetLineRouter(NewBudgetLineHandler(svc, audit))

	rec := doRequest(r, "PUT", "/budget-lines/"+testLineID, `{"budget_amount":"250.50"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotBeginning != nil {
		t.Errorf("expected beginning balance untouched, got %s", gotBeginning)
	}
	if gotBudget == nil || gotBudget.String() != "250.5" {
		t.Errorf("unexpected budget amount %v", gotBudget)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != "UPDATE_BUDGET_LINE" {
		t.Errorf("expected UPDATE_BUDGET_LINE audit entry, got %+v", audit.entries)
	}
}

func TestBudgetLineHandler_DeleteBudgetLine(t *testing.T) {
	t.Run("returns 200", func(t *testing.T) {
		r := setupBudgetLineRouter(NewBudgetLineHandler(&mockBudgetLineService{}, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/budget-lines/"+testLineID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupBudgetLineRouter(NewBudgetLineHandler(&mockBudgetLineService{}, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/budget-lines/not-a-uuid", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
