package core

import (
	"testing"
	"time"
)

func tx(amountCents int64, t TransactionType, date Date) Transaction {
	return Transaction{
		ID:          "tx",
		UserID:      "u1",
		Type:        t,
		Amount:      Money{Cents: amountCents},
		Description: "test",
		Date:        date,
	}
}

func TestComputeFinancialSummaryScenario(t *testing.T) {
	cur := NewDate(2025, 8, 15)
	prev := NewDate(2025, 7, 15)

	current := []Transaction{
		tx(100000, TypeIncome, cur),
		tx(-30000, TypeExpense, cur),
		tx(-20000, TypeExpense, cur),
	}
	previous := []Transaction{
		tx(80000, TypeIncome, prev),
		tx(-40000, TypeExpense, prev),
	}

	s := ComputeFinancialSummary(current, previous)

	if got := s.Balance.Cents; got != 50000 {
		t.Fatalf("balance = %d, want 50000", got)
	}
	if got := s.Income.Cents; got != 100000 {
		t.Fatalf("income = %d, want 100000", got)
	}
	if got := s.Expenses.Cents; got != 50000 {
		t.Fatalf("expenses = %d, want 50000", got)
	}
	if got := s.IncomeChangePct; got != 25.0 {
		t.Fatalf("income change = %v, want 25.0", got)
	}
	if got := s.ExpensesChangePct; got != 25.0 {
		t.Fatalf("expenses change = %v, want 25.0", got)
	}
	if got := s.BalanceChangePct; got != 25.0 {
		t.Fatalf("balance change = %v, want 25.0", got)
	}
	if got := s.SavingsRatePct; got != 50.0 {
		t.Fatalf("savings rate = %v, want 50.0", got)
	}
	if got := s.SavingsRateChangePts; got != 0.0 {
		t.Fatalf("savings rate change = %v, want 0.0", got)
	}
}

func TestComputeFinancialSummaryBalanceIdentity(t *testing.T) {
	d := NewDate(2025, 3, 1)
	sets := [][]Transaction{
		{},
		{tx(100, TypeIncome, d)},
		{tx(100, TypeIncome, d), tx(-40, TypeExpense, d)},
		{tx(-40, TypeExpense, d), tx(-60, TypeExpense, d), tx(10, TypeIncome, d)},
		{tx(500, TypeInvestment, d), tx(-123, TypeExpense, d), tx(77, TypeTransfer, d)},
	}
	for i, set := range sets {
		s := ComputeFinancialSummary(set, nil)
		if s.Balance.Cents != s.Income.Cents-s.Expenses.Cents {
			t.Fatalf("case %d: balance %d != income %d - expenses %d",
				i, s.Balance.Cents, s.Income.Cents, s.Expenses.Cents)
		}
	}
}

func TestPercentChangeZeroPrevious(t *testing.T) {
	cases := []struct {
		cur, prev int64
		want      float64
	}{
		{0, 0, 0},
		{50000, 0, 0}, // 0 -> nonzero swing reports 0%, by contract
		{-50000, 0, 0},
		{150, 100, 50.0},
		{50, 100, -50.0},
	}
	for i, tc := range cases {
		if got := percentChange(tc.cur, tc.prev); got != tc.want {
			t.Fatalf("case %d: percentChange(%d, %d) = %v, want %v", i, tc.cur, tc.prev, got, tc.want)
		}
	}
}

func TestIncomeFromZeroPreviousMonth(t *testing.T) {
	current := []Transaction{tx(50000, TypeIncome, NewDate(2025, 8, 1))}
	s := ComputeFinancialSummary(current, nil)
	if s.IncomeChangePct != 0 {
		t.Fatalf("income change = %v, want 0 when previous month had none", s.IncomeChangePct)
	}
}

func TestBalanceChangeUsesAbsoluteDenominator(t *testing.T) {
	// Previous balance -200, current +100: change = (100 - -200)/|-200| = 150%.
	current := []Transaction{tx(10000, TypeIncome, NewDate(2025, 8, 1))}
	previous := []Transaction{tx(-20000, TypeExpense, NewDate(2025, 7, 1))}
	s := ComputeFinancialSummary(current, previous)
	if s.BalanceChangePct != 150.0 {
		t.Fatalf("balance change = %v, want 150.0", s.BalanceChangePct)
	}
}

func TestComputeFinancialSummaryIdempotent(t *testing.T) {
	d := NewDate(2025, 5, 10)
	current := []Transaction{tx(1234, TypeIncome, d), tx(-567, TypeExpense, d)}
	previous := []Transaction{tx(1000, TypeIncome, d)}
	a := ComputeFinancialSummary(current, previous)
	b := ComputeFinancialSummary(current, previous)
	if a != b {
		t.Fatalf("summary not idempotent: %+v vs %+v", a, b)
	}
}

func TestComputeMonthlyTimeSeries(t *testing.T) {
	now := time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx(10000, TypeIncome, NewDate(2025, 8, 5)),
		tx(-2500, TypeExpense, NewDate(2025, 8, 20)),
		tx(5000, TypeIncome, NewDate(2025, 6, 1)),
		// gap: no transactions in July
		tx(999, TypeIncome, NewDate(2023, 1, 1)), // outside trailing window
	}

	points := ComputeMonthlyTimeSeries(txs, 12, now)

	if len(points) != 2 {
		t.Fatalf("got %d points, want 2 (gaps are not zero-filled)", len(points))
	}
	if points[0].Label != "Jun" || points[1].Label != "Aug" {
		t.Fatalf("labels = %q, %q; want Jun, Aug in chronological order", points[0].Label, points[1].Label)
	}
	if points[1].Income.Cents != 10000 || points[1].Expenses.Cents != 2500 {
		t.Fatalf("Aug point = %+v, want income 10000 expenses 2500", points[1])
	}
}

func TestComputeMonthlyTimeSeriesCap(t *testing.T) {
	now := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	var txs []Transaction
	for m := 1; m <= 12; m++ {
		txs = append(txs, tx(100, TypeIncome, NewDate(2025, m, 15)))
	}
	points := ComputeMonthlyTimeSeries(txs, 12, now)
	if len(points) != 12 {
		t.Fatalf("got %d points, want 12", len(points))
	}

	points = ComputeMonthlyTimeSeries(txs, 6, now)
	if len(points) != 6 {
		t.Fatalf("got %d points, want 6 with a 6-month window", len(points))
	}
	if points[0].Label != "Jul" {
		t.Fatalf("first label = %q, want Jul", points[0].Label)
	}
}

func TestExpensesByCategory(t *testing.T) {
	d := NewDate(2025, 8, 1)
	cats := map[string]Category{
		"c1": {ID: "c1", Name: "Food", Type: TypeExpense, Color: "orange"},
		"c2": {ID: "c2", Name: "Rent", Type: TypeExpense, Color: "blue"},
	}
	txs := []Transaction{
		{UserID: "u", Amount: Money{Cents: -3000}, CategoryID: "c1", Date: d},
		{UserID: "u", Amount: Money{Cents: -1500}, CategoryID: "c1", Date: d},
		{UserID: "u", Amount: Money{Cents: -90000}, CategoryID: "c2", Date: d},
		{UserID: "u", Amount: Money{Cents: -200}, CategoryID: "", Date: d},
		{UserID: "u", Amount: Money{Cents: 100000}, CategoryID: "c1", Date: d}, // income, excluded
	}

	totals := ExpensesByCategory(txs, cats)

	if len(totals) != 3 {
		t.Fatalf("got %d groups, want 3", len(totals))
	}
	if totals[0].Name != "Rent" || totals[0].Total.Cents != 90000 {
		t.Fatalf("top group = %+v, want Rent 90000", totals[0])
	}
	if totals[1].Name != "Food" || totals[1].Total.Cents != 4500 {
		t.Fatalf("second group = %+v, want Food 4500 (sum of individual absolutes)", totals[1])
	}
	if totals[2].Name != "Uncategorized" || totals[2].Total.Cents != 200 {
		t.Fatalf("third group = %+v, want Uncategorized 200", totals[2])
	}
}
