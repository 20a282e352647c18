package core

import (
	"sort"
	"time"
)

// FinancialSummary is the derived month-over-month dashboard summary. It is
// recomputed from scratch on every request and never persisted.
//
// Change fields are percentages relative to the previous month, except
// SavingsRateChangePts which is an absolute difference of the two rates.
// The asymmetry matches the observed product behavior and is kept on
// purpose; see DESIGN.md.
type FinancialSummary struct {
	Balance              Money
	BalanceChangePct     float64
	Income               Money
	IncomeChangePct      float64
	Expenses             Money
	ExpensesChangePct    float64
	SavingsRatePct       float64
	SavingsRateChangePts float64
}

// MonthlyPoint is one bar-chart point: a calendar month with at least one
// transaction.
type MonthlyPoint struct {
	Label    string // 3-letter month abbreviation
	Income   Money
	Expenses Money
}

// monthTotals partitions a month's transactions by amount sign. Expenses are
// accumulated as absolute values. Classification is by sign, not by the type
// tag: the stored sign is authoritative on read paths.
func monthTotals(txs []Transaction) (income, expenses Money) {
	for _, tx := range txs {
		if tx.Amount.IsPositive() {
			income.Cents += tx.Amount.Cents
		} else if tx.Amount.IsNegative() {
			expenses.Cents += -tx.Amount.Cents
		}
	}
	return income, expenses
}

// percentChange returns (cur-prev)/prev*100, defined as 0 when prev is 0.
// A swing from 0 to any value therefore reports 0% change; that edge case is
// part of the contract, not something to fix here.
func percentChange(cur, prev int64) float64 {
	if prev == 0 {
		return 0
	}
	return float64(cur-prev) / float64(prev) * 100
}

// absPercentChange is percentChange with |prev| as denominator, used for the
// balance which may be negative.
func absPercentChange(cur, prev int64) float64 {
	if prev == 0 {
		return 0
	}
	denom := prev
	if denom < 0 {
		denom = -denom
	}
	return float64(cur-prev) / float64(denom) * 100
}

// savingsRate returns balance/income*100 for a month, 0 when there is no
// income.
func savingsRate(balance, income Money) float64 {
	if income.Cents <= 0 {
		return 0
	}
	return float64(balance.Cents) / float64(income.Cents) * 100
}

// ComputeFinancialSummary derives the dashboard summary from the current and
// previous calendar month transaction slices. Pure function: same input,
// same output.
func ComputeFinancialSummary(current, previous []Transaction) FinancialSummary {
	curIncome, curExpenses := monthTotals(current)
	prevIncome, prevExpenses := monthTotals(previous)

	curBalance := Money{Cents: curIncome.Cents - curExpenses.Cents}
	prevBalance := Money{Cents: prevIncome.Cents - prevExpenses.Cents}

	curRate := savingsRate(curBalance, curIncome)
	prevRate := savingsRate(prevBalance, prevIncome)
	rateChange := 0.0
	if prevRate != 0 {
		rateChange = curRate - prevRate
	}

	return FinancialSummary{
		Balance:              curBalance,
		BalanceChangePct:     absPercentChange(curBalance.Cents, prevBalance.Cents),
		Income:               curIncome,
		IncomeChangePct:      percentChange(curIncome.Cents, prevIncome.Cents),
		Expenses:             curExpenses,
		ExpensesChangePct:    percentChange(curExpenses.Cents, prevExpenses.Cents),
		SavingsRatePct:       curRate,
		SavingsRateChangePts: rateChange,
	}
}

// ComputeMonthlyTimeSeries groups transactions by calendar year-month over
// the trailing window ending at now and returns one chronologically ordered
// point per month that has at least one transaction. Empty months produce a
// gap, never a zero point, and the result holds at most trailingMonths
// entries.
func ComputeMonthlyTimeSeries(txs []Transaction, trailingMonths int, now time.Time) []MonthlyPoint {
	if trailingMonths <= 0 {
		return nil
	}

	// First day of the earliest month in the window.
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(trailingMonths - 1), 0)

	type bucket struct {
		income   int64
		expenses int64
	}
	buckets := make(map[int]bucket) // key: year*100 + month

	for _, tx := range txs {
		d := tx.Date.Time
		if d.Before(start) || d.After(now) {
			continue
		}
		key := d.Year()*100 + int(d.Month())
		b := buckets[key]
		if tx.Amount.IsPositive() {
			b.income += tx.Amount.Cents
		} else if tx.Amount.IsNegative() {
			b.expenses += -tx.Amount.Cents
		}
		buckets[key] = b
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	if len(keys) > trailingMonths {
		keys = keys[len(keys)-trailingMonths:]
	}

	points := make([]MonthlyPoint, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		points = append(points, MonthlyPoint{
			Label:    time.Month(k % 100).String()[:3],
			Income:   Money{Cents: b.income},
			Expenses: Money{Cents: b.expenses},
		})
	}
	return points
}

// CategoryTotal is a category rollup entry: the sum of absolute expense
// amounts under one resolved category name.
type CategoryTotal struct {
	Name  string
	Total Money
}

// ExpensesByCategory groups expense transactions (negative amounts) by
// resolved category name and returns totals sorted descending. Ties keep a
// stable name order so the output is deterministic.
func ExpensesByCategory(txs []Transaction, categories map[string]Category) []CategoryTotal {
	sums := make(map[string]int64)
	for _, tx := range txs {
		if !tx.Amount.IsNegative() {
			continue
		}
		name := "Uncategorized"
		if cat, ok := categories[tx.CategoryID]; ok && tx.CategoryID != "" {
			name = ResolveCategoryName(&cat)
		}
		sums[name] += -tx.Amount.Cents
	}

	totals := make([]CategoryTotal, 0, len(sums))
	for name, cents := range sums {
		totals = append(totals, CategoryTotal{Name: name, Total: Money{Cents: cents}})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total.Cents != totals[j].Total.Cents {
			return totals[i].Total.Cents > totals[j].Total.Cents
		}
		return totals[i].Name < totals[j].Name
	})
	return totals
}

// TotalIncome sums the positive amounts of txs.
func TotalIncome(txs []Transaction) Money {
	var total Money
	for _, tx := range txs {
		if tx.Amount.IsPositive() {
			total.Cents += tx.Amount.Cents
		}
	}
	return total
}
