package http

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/audit"
	"github.com/mrlokans/weddingplanner/internal/budget"
	"github.com/mrlokans/weddingplanner/internal/database/wedding"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

var currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// BudgetController exposes the budget total, its derived summary and the
// expense list.
type BudgetController struct {
	store   BudgetStore
	auditor Auditor
	errors  *apperr.Handler
}

func NewBudgetController(store BudgetStore, auditor Auditor, errs *apperr.Handler) *BudgetController {
	return &BudgetController{store: store, auditor: auditor, errors: errs}
}

type budgetRequest struct {
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`
}

type expenseRequest struct {
	Category      string     `json:"category"`
	Vendor        string     `json:"vendor"`
	Description   string     `json:"description"`
	EstimatedCost float64    `json:"estimated_cost"`
	ActualCost    float64    `json:"actual_cost"`
	PaidAmount    float64    `json:"paid_amount"`
	DueDate       *time.Time `json:"due_date"`
	ReceiptURL    string     `json:"receipt_url"`
	Notes         string     `json:"notes"`
}

func (r expenseRequest) apply(e *entities.Expense) {
	e.Category = r.Category
	e.Vendor = r.Vendor
	e.Description = r.Description
	e.EstimatedCost = r.EstimatedCost
	e.ActualCost = r.ActualCost
	e.PaidAmount = r.PaidAmount
	e.DueDate = r.DueDate
	e.ReceiptURL = r.ReceiptURL
	e.Notes = r.Notes
}

// ExpenseResponse adds the derived payment status to an expense.
type ExpenseResponse struct {
	entities.Expense
	Status budget.PaymentStatus `json:"status"`
}

func newExpenseResponse(e entities.Expense) ExpenseResponse {
	return ExpenseResponse{Expense: e, Status: budget.ExpenseStatus(e)}
}

func (bc *BudgetController) GetBudget(c *gin.Context) {
	b, err := bc.store.GetOrCreateBudget(GetUserID(c))
	if err != nil {
		bc.errors.Respond(c, err, "get_budget")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (bc *BudgetController) UpdateBudget(c *gin.Context) {
	var req budgetRequest
	if err := bindJSON(c, &req); err != nil {
		bc.errors.Respond(c, err, "update_budget")
		return
	}
	if err := budget.ValidateTotal(req.TotalAmount); err != nil {
		bc.errors.Respond(c, err, "update_budget")
		return
	}
	req.Currency = strings.TrimSpace(req.Currency)
	if req.Currency != "" && !currencyPattern.MatchString(req.Currency) {
		bc.errors.Respond(c, apperr.Validation("invalid input",
			map[string]string{"currency": "must be a three-letter currency code"}), "update_budget")
		return
	}

	b, err := bc.store.UpdateBudget(GetUserID(c), budget.Round(req.TotalAmount), req.Currency)
	if err != nil {
		bc.errors.Respond(c, err, "update_budget")
		return
	}
	recordAction(bc.auditor, c, audit.Action{
		EventType:   entities.AuditEventBudget,
		Action:      "budget_update",
		Description: "Updated budget total",
		EntityType:  "budget",
		EntityID:    b.ID,
		Metadata:    map[string]any{"total_amount": b.TotalAmount, "currency": b.Currency},
	})
	c.JSON(http.StatusOK, b)
}

// Summary returns totals, remaining balance and per-category breakdown.
func (bc *BudgetController) Summary(c *gin.Context) {
	userID := GetUserID(c)
	b, err := bc.store.GetOrCreateBudget(userID)
	if err != nil {
		bc.errors.Respond(c, err, "budget_summary")
		return
	}
	expenses, err := bc.store.ListExpenses(userID, wedding.ExpenseFilter{})
	if err != nil {
		bc.errors.Respond(c, err, "budget_summary")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"currency": b.Currency,
		"summary":  budget.Summarize(b.TotalAmount, expenses),
	})
}

// Suggestions splits the budget total (or the ?total= override) across the
// typical wedding categories.
func (bc *BudgetController) Suggestions(c *gin.Context) {
	b, err := bc.store.GetOrCreateBudget(GetUserID(c))
	if err != nil {
		bc.errors.Respond(c, err, "budget_suggestions")
		return
	}
	total := b.TotalAmount
	if raw := c.Query("total"); raw != "" {
		var parsed struct {
			Total float64 `form:"total"`
		}
		if err := c.ShouldBindQuery(&parsed); err != nil || budget.ValidateTotal(parsed.Total) != nil {
			respondBadRequest(c, "invalid total")
			return
		}
		total = parsed.Total
	}

	c.JSON(http.StatusOK, gin.H{
		"total":       total,
		"currency":    b.Currency,
		"allocations": budget.SuggestAllocation(total),
		"categories":  budget.Categories,
	})
}

func (bc *BudgetController) ListExpenses(c *gin.Context) {
	filter := wedding.ExpenseFilter{Sort: c.Query("sort")}
	if category := c.Query("category"); category != "" {
		filter.Category = budget.NormalizeCategory(category)
	}

	expenses, err := bc.store.ListExpenses(GetUserID(c), filter)
	if err != nil {
		bc.errors.Respond(c, err, "list_expenses")
		return
	}
	out := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = newExpenseResponse(e)
	}
	c.JSON(http.StatusOK, gin.H{"expenses": out, "total": len(out)})
}

func (bc *BudgetController) GetExpense(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	expense, err := bc.store.GetExpense(GetUserID(c), id)
	if err != nil {
		bc.errors.Respond(c, notFoundAs(err, "expense"), "get_expense")
		return
	}
	c.JSON(http.StatusOK, newExpenseResponse(*expense))
}

func (bc *BudgetController) CreateExpense(c *gin.Context) {
	var req expenseRequest
	if err := bindJSON(c, &req); err != nil {
		bc.errors.Respond(c, err, "create_expense")
		return
	}

	expense := &entities.Expense{UserID: GetUserID(c)}
	req.apply(expense)
	if err := budget.ValidateExpense(expense); err != nil {
		bc.errors.Respond(c, err, "create_expense")
		return
	}
	if err := bc.store.CreateExpense(expense); err != nil {
		bc.errors.Respond(c, err, "create_expense")
		return
	}
	recordAction(bc.auditor, c, audit.Action{
		EventType:  entities.AuditEventBudget,
		Action:     "expense_create",
		EntityType: "expense",
		EntityID:   expense.ID,
		Metadata:   map[string]any{"category": expense.Category},
	})
	respondCreated(c, newExpenseResponse(*expense))
}

func (bc *BudgetController) UpdateExpense(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req expenseRequest
	if err := bindJSON(c, &req); err != nil {
		bc.errors.Respond(c, err, "update_expense")
		return
	}

	expense, err := bc.store.GetExpense(GetUserID(c), id)
	if err != nil {
		bc.errors.Respond(c, notFoundAs(err, "expense"), "update_expense")
		return
	}
	req.apply(expense)
	if err := budget.ValidateExpense(expense); err != nil {
		bc.errors.Respond(c, err, "update_expense")
		return
	}
	if err := bc.store.UpdateExpense(expense); err != nil {
		bc.errors.Respond(c, notFoundAs(err, "expense"), "update_expense")
		return
	}
	c.JSON(http.StatusOK, newExpenseResponse(*expense))
}

func (bc *BudgetController) DeleteExpense(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := bc.store.DeleteExpense(GetUserID(c), id); err != nil {
		bc.errors.Respond(c, notFoundAs(err, "expense"), "delete_expense")
		return
	}
	recordAction(bc.auditor, c, audit.Action{
		EventType:  entities.AuditEventBudget,
		Action:     "expense_delete",
		EntityType: "expense",
		EntityID:   id,
	})
	c.Status(http.StatusNoContent)
}
