package services

import (
	"context"
	"testing"
	"time"

	"finboard/internal/auth"
	"finboard/internal/core"
	"finboard/internal/store/memory"
)

func seedTx(t *testing.T, st *memory.Store, userID string, cents int64, typ core.TransactionType, date core.Date) {
	t.Helper()
	_, err := st.InsertTransaction(context.Background(), core.Transaction{
		UserID:      userID,
		Type:        typ,
		Amount:      core.Money{Cents: cents},
		Description: "seed",
		Date:        date,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestFinancialSummaryAcrossMonths(t *testing.T) {
	st := memory.New()
	svc := NewSummaryService(st)
	now := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	svc.SetNow(func() time.Time { return now })

	// Current month: +1000, -300, -200. Previous: +800, -400.
	seedTx(t, st, "u1", 100000, core.TypeIncome, core.NewDate(2025, 8, 5))
	seedTx(t, st, "u1", -30000, core.TypeExpense, core.NewDate(2025, 8, 10))
	seedTx(t, st, "u1", -20000, core.TypeExpense, core.NewDate(2025, 8, 15))
	seedTx(t, st, "u1", 80000, core.TypeIncome, core.NewDate(2025, 7, 5))
	seedTx(t, st, "u1", -40000, core.TypeExpense, core.NewDate(2025, 7, 10))
	// Noise outside both months and for another user.
	seedTx(t, st, "u1", -99900, core.TypeExpense, core.NewDate(2025, 6, 1))
	seedTx(t, st, "u2", -12300, core.TypeExpense, core.NewDate(2025, 8, 1))

	s := svc.FinancialSummary(context.Background(), &auth.Session{UserID: "u1"})
	if s == nil {
		t.Fatal("expected summary")
	}
	if s.Balance.Cents != 50000 || s.Income.Cents != 100000 || s.Expenses.Cents != 50000 {
		t.Fatalf("totals = %+v", s)
	}
	if s.IncomeChangePct != 25.0 || s.ExpensesChangePct != 25.0 || s.BalanceChangePct != 25.0 {
		t.Fatalf("changes = %+v", s)
	}
	if s.SavingsRatePct != 50.0 || s.SavingsRateChangePts != 0.0 {
		t.Fatalf("savings = %+v", s)
	}
}

func TestFinancialSummaryWithoutSession(t *testing.T) {
	svc := NewSummaryService(memory.New())
	if got := svc.FinancialSummary(context.Background(), nil); got != nil {
		t.Fatal("missing session must return nil summary")
	}
}

func TestMonthlyDataWindow(t *testing.T) {
	st := memory.New()
	svc := NewSummaryService(st)
	now := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	svc.SetNow(func() time.Time { return now })

	seedTx(t, st, "u1", 10000, core.TypeIncome, core.NewDate(2025, 8, 1))
	seedTx(t, st, "u1", -5000, core.TypeExpense, core.NewDate(2024, 9, 15)) // oldest month in window
	seedTx(t, st, "u1", -5000, core.TypeExpense, core.NewDate(2024, 8, 15)) // just outside

	points := svc.MonthlyData(context.Background(), &auth.Session{UserID: "u1"})
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].Label != "Sep" || points[1].Label != "Aug" {
		t.Fatalf("labels = %q, %q", points[0].Label, points[1].Label)
	}
}
