package http

import (
	"time"

	"finboard/internal/core"
)

// View types define the wire shape of the API. Domain types stay free of
// serialization concerns; everything crossing the HTTP boundary is mapped
// through here.

type transactionView struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id,omitempty"`
	Category    string `json:"category"`
	Color       string `json:"color"`
	Direction   string `json:"direction"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at"`
}

type categoryView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type summaryView struct {
	BalanceCents         int64   `json:"balance_cents"`
	Balance              string  `json:"balance"`
	BalanceChangePct     float64 `json:"balance_change_pct"`
	IncomeCents          int64   `json:"income_cents"`
	Income               string  `json:"income"`
	IncomeChangePct      float64 `json:"income_change_pct"`
	ExpensesCents        int64   `json:"expenses_cents"`
	Expenses             string  `json:"expenses"`
	ExpensesChangePct    float64 `json:"expenses_change_pct"`
	SavingsRatePct       float64 `json:"savings_rate_pct"`
	SavingsRateChangePts float64 `json:"savings_rate_change_pts"`
}

type monthlyPointView struct {
	Month         string `json:"month"`
	IncomeCents   int64  `json:"income_cents"`
	ExpensesCents int64  `json:"expenses_cents"`
}

type recommendationView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Icon        string `json:"icon"`
	CreatedAt   string `json:"created_at"`
}

func newTransactionView(tx core.Transaction, categories map[string]core.Category) transactionView {
	var cat *core.Category
	if c, ok := categories[tx.CategoryID]; ok {
		cat = &c
	}
	return transactionView{
		ID:          tx.ID,
		Type:        string(tx.Type),
		AmountCents: tx.Amount.Cents,
		Amount:      tx.Amount.FormatSigned(),
		Description: tx.Description,
		CategoryID:  tx.CategoryID,
		Category:    core.ResolveCategoryName(cat),
		Color:       core.CategoryColor(cat),
		Direction:   string(core.ClassifyDirection(tx)),
		Date:        tx.Date.String(),
		CreatedAt:   tx.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func newTransactionViews(txs []core.Transaction, categories map[string]core.Category) []transactionView {
	views := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, newTransactionView(tx, categories))
	}
	return views
}

func newCategoryView(cat core.Category) categoryView {
	return categoryView{
		ID:    cat.ID,
		Name:  cat.Name,
		Type:  string(cat.Type),
		Color: cat.Color,
		Icon:  cat.Icon,
	}
}

func newSummaryView(s core.FinancialSummary) summaryView {
	return summaryView{
		BalanceCents:         s.Balance.Cents,
		Balance:              s.Balance.FormatSigned(),
		BalanceChangePct:     s.BalanceChangePct,
		IncomeCents:          s.Income.Cents,
		Income:               s.Income.FormatSigned(),
		IncomeChangePct:      s.IncomeChangePct,
		ExpensesCents:        s.Expenses.Cents,
		Expenses:             s.Expenses.FormatSigned(),
		ExpensesChangePct:    s.ExpensesChangePct,
		SavingsRatePct:       s.SavingsRatePct,
		SavingsRateChangePts: s.SavingsRateChangePts,
	}
}

func newMonthlyViews(points []core.MonthlyPoint) []monthlyPointView {
	views := make([]monthlyPointView, 0, len(points))
	for _, p := range points {
		views = append(views, monthlyPointView{
			Month:         p.Label,
			IncomeCents:   p.Income.Cents,
			ExpensesCents: p.Expenses.Cents,
		})
	}
	return views
}

func newRecommendationViews(recs []core.Recommendation) []recommendationView {
	views := make([]recommendationView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, recommendationView{
			ID:          rec.ID,
			Title:       rec.Title,
			Description: rec.Description,
			Impact:      rec.Impact,
			Icon:        rec.Icon,
			CreatedAt:   rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return views
}

func parseTab(raw string) core.Tab {
	switch core.Tab(raw) {
	case core.TabIncome, core.TabExpense, core.TabInvestment, core.TabTransfer:
		return core.Tab(raw)
	default:
		return core.TabAll
	}
}
