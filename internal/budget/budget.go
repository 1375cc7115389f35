// Package budget derives totals, per-category breakdowns and suggested
// allocations from a couple's budget and expenses.
//
// All amounts are float64 in the budget's currency and rounded to cents on output.
package budget

import (
	"math"
	"sort"
	"strings"

	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/security"
)

// Categories are the expense categories known to the planner, in display order.
var Categories = []string{
	"venue",
	"catering",
	"photography",
	"videography",
	"attire",
	"flowers",
	"music",
	"decor",
	"stationery",
	"beauty",
	"rings",
	"transportation",
	"favors",
	"officiant",
	"honeymoon",
	"other",
}

var knownCategories = func() map[string]bool {
	m := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		m[c] = true
	}
	return m
}()

func IsKnownCategory(category string) bool {
	return knownCategories[category]
}

// NormalizeCategory lowercases the category and maps unknown values to "other".
func NormalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if knownCategories[category] {
		return category
	}
	return "other"
}

// MaxAmount bounds every amount so cent arithmetic stays within int64.
const MaxAmount = 1e12

type PaymentStatus string

const (
	StatusUnpaid  PaymentStatus = "unpaid"
	StatusPartial PaymentStatus = "partial"
	StatusPaid    PaymentStatus = "paid"
)

// Committed is what an expense counts against the budget: the actual cost
// once known, otherwise the estimate.
func Committed(e entities.Expense) float64 {
	if e.ActualCost > 0 {
		return e.ActualCost
	}
	return e.EstimatedCost
}

// Outstanding is the unpaid remainder of an expense, never negative.
func Outstanding(e entities.Expense) float64 {
	return math.Max(Committed(e)-e.PaidAmount, 0)
}

func ExpenseStatus(e entities.Expense) PaymentStatus {
	if e.PaidAmount <= 0 {
		return StatusUnpaid
	}
	if e.PaidAmount >= Committed(e) {
		return StatusPaid
	}
	return StatusPartial
}

type CategorySummary struct {
	Category  string  `json:"category"`
	Estimated float64 `json:"estimated"`
	Actual    float64 `json:"actual"`
	Paid      float64 `json:"paid"`
	Committed float64 `json:"committed"`
	Count     int     `json:"count"`
	Percent   float64 `json:"percent"` // share of total committed
}

type Summary struct {
	TotalBudget        float64           `json:"total_budget"`
	TotalEstimated     float64           `json:"total_estimated"`
	TotalActual        float64           `json:"total_actual"`
	TotalPaid          float64           `json:"total_paid"`
	Committed          float64           `json:"committed"`
	Remaining          float64           `json:"remaining"`
	OutstandingBalance float64           `json:"outstanding_balance"`
	PercentUsed        float64           `json:"percent_used"`
	OverBudget         bool              `json:"over_budget"`
	ExpenseCount       int               `json:"expense_count"`
	Categories         []CategorySummary `json:"categories"`
}

// Summarize aggregates expenses against the total budget. Categories are
// sorted by committed amount, largest first, ties broken by name.
func Summarize(total float64, expenses []entities.Expense) Summary {
	byCategory := make(map[string]*CategorySummary)
	s := Summary{TotalBudget: total, ExpenseCount: len(expenses)}

	for _, e := range expenses {
		committed := Committed(e)
		s.TotalEstimated += e.EstimatedCost
		s.TotalActual += e.ActualCost
		s.TotalPaid += e.PaidAmount
		s.Committed += committed
		s.OutstandingBalance += Outstanding(e)

		name := NormalizeCategory(e.Category)
		cs, ok := byCategory[name]
		if !ok {
			cs = &CategorySummary{Category: name}
			byCategory[name] = cs
		}
		cs.Estimated += e.EstimatedCost
		cs.Actual += e.ActualCost
		cs.Paid += e.PaidAmount
		cs.Committed += committed
		cs.Count++
	}

	s.Remaining = total - s.Committed
	if total > 0 {
		s.PercentUsed = s.Committed / total * 100
	}
	s.OverBudget = s.Committed > total

	s.Categories = make([]CategorySummary, 0, len(byCategory))
	for _, cs := range byCategory {
		if s.Committed > 0 {
			cs.Percent = Round(cs.Committed / s.Committed * 100)
		}
		cs.Estimated = Round(cs.Estimated)
		cs.Actual = Round(cs.Actual)
		cs.Paid = Round(cs.Paid)
		cs.Committed = Round(cs.Committed)
		s.Categories = append(s.Categories, *cs)
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		if s.Categories[i].Committed != s.Categories[j].Committed {
			return s.Categories[i].Committed > s.Categories[j].Committed
		}
		return s.Categories[i].Category < s.Categories[j].Category
	})

	s.TotalBudget = Round(s.TotalBudget)
	s.TotalEstimated = Round(s.TotalEstimated)
	s.TotalActual = Round(s.TotalActual)
	s.TotalPaid = Round(s.TotalPaid)
	s.Committed = Round(s.Committed)
	s.Remaining = Round(s.Remaining)
	s.OutstandingBalance = Round(s.OutstandingBalance)
	s.PercentUsed = Round(s.PercentUsed)
	return s
}

// Round rounds to two decimal places.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// ValidateExpense normalizes the category and rejects negative or non-finite
// amounts and malformed text fields.
func ValidateExpense(e *entities.Expense) error {
	e.Category = NormalizeCategory(e.Category)
	e.Vendor = security.SanitizeText(e.Vendor, security.MaxNameLength)
	e.Description = security.SanitizeText(e.Description, security.MaxShortText)
	e.Notes = security.SanitizeText(e.Notes, security.MaxNoteLength)
	e.ReceiptURL = strings.TrimSpace(e.ReceiptURL)

	errs := security.FieldErrors{}
	checkAmount(errs, "estimated_cost", e.EstimatedCost)
	checkAmount(errs, "actual_cost", e.ActualCost)
	checkAmount(errs, "paid_amount", e.PaidAmount)
	if e.ReceiptURL != "" && !strings.HasPrefix(e.ReceiptURL, "/") {
		errs.URL("receipt_url", e.ReceiptURL)
	}
	return errs.Err()
}

// ValidateTotal rejects a negative or non-finite budget total.
func ValidateTotal(total float64) error {
	errs := security.FieldErrors{}
	checkAmount(errs, "total_amount", total)
	return errs.Err()
}

func checkAmount(errs security.FieldErrors, field string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		errs.Add(field, "must be a finite number")
		return
	}
	errs.NonNegative(field, v)
	if v > MaxAmount {
		errs.Add(field, "must not exceed 1000000000000")
	}
}
