package worker

import (
	"context"
	"testing"

	"finboard/internal/amqp"
	"finboard/internal/core"
	sheetsmem "finboard/internal/sheets/memory"
	storemem "finboard/internal/store/memory"
)

func seedTransaction(t *testing.T, st *storemem.Store, desc string, cents int64, categoryID string) core.Transaction {
	t.Helper()
	tx, err := st.InsertTransaction(context.Background(), core.Transaction{
		UserID:      "user-1",
		Type:        core.TypeExpense,
		Amount:      core.Money{Cents: cents},
		Description: desc,
		CategoryID:  categoryID,
		Date:        core.NewDate(2025, 8, 15),
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return tx
}

func TestHandleEventCreatedExportsRow(t *testing.T) {
	st := storemem.New()
	st.SeedCategories([]core.Category{
		{ID: "cat-food", Name: "Food & Dining", Type: core.TypeExpense},
	})
	exp := sheetsmem.New()
	w := NewExportWorker(st, exp, 10)

	tx := seedTransaction(t, st, "Groceries", -4250, "cat-food")

	if err := w.HandleEvent(context.Background(), amqp.NewCreatedEvent(tx.ID, tx.UserID)); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	rows := exp.Rows()
	if len(rows) != 1 {
		t.Fatalf("exported %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.ID != tx.ID {
		t.Errorf("row.ID = %q, want %q", row.ID, tx.ID)
	}
	if row.AmountCents != -4250 {
		t.Errorf("row.AmountCents = %d, want -4250", row.AmountCents)
	}
	if row.Category != "Food & Dining" {
		t.Errorf("row.Category = %q, want Food & Dining", row.Category)
	}
	if row.Date != "2025-08-15" {
		t.Errorf("row.Date = %q, want 2025-08-15", row.Date)
	}

	// Export confirmed: nothing pending afterwards.
	ids, err := st.ListUnexported(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("%d transactions still pending, want 0", len(ids))
	}
}

func TestHandleEventCreatedMissingRowIsSkipped(t *testing.T) {
	st := storemem.New()
	exp := sheetsmem.New()
	w := NewExportWorker(st, exp, 10)

	if err := w.HandleEvent(context.Background(), amqp.NewCreatedEvent("gone", "user-1")); err != nil {
		t.Fatalf("HandleEvent() error = %v, want nil for a missing row", err)
	}
	if len(exp.Rows()) != 0 {
		t.Error("missing row was exported")
	}
}

func TestHandleEventDeletedRemovesRow(t *testing.T) {
	st := storemem.New()
	exp := sheetsmem.New()
	w := NewExportWorker(st, exp, 10)

	tx := seedTransaction(t, st, "Coffee", -500, "")
	if err := w.HandleEvent(context.Background(), amqp.NewCreatedEvent(tx.ID, tx.UserID)); err != nil {
		t.Fatal(err)
	}

	deleted := amqp.NewDeletedEvent(tx.ID, tx.UserID, tx.Date.String(), tx.Description, tx.Amount.Cents)
	if err := w.HandleEvent(context.Background(), deleted); err != nil {
		t.Fatalf("HandleEvent(deleted) error = %v", err)
	}
	if len(exp.Rows()) != 0 {
		t.Errorf("%d rows left after deletion, want 0", len(exp.Rows()))
	}
}

func TestHandleEventUnknownIsDropped(t *testing.T) {
	st := storemem.New()
	w := NewExportWorker(st, sheetsmem.New(), 10)

	err := w.HandleEvent(context.Background(), &amqp.TransactionEvent{Event: "transaction.updated", ID: "x"})
	if err != nil {
		t.Errorf("unknown event returned error %v, want nil", err)
	}
}

func TestProcessPendingCatchesUpMissedExports(t *testing.T) {
	st := storemem.New()
	exp := sheetsmem.New()
	w := NewExportWorker(st, exp, 10)

	// Two rows inserted without any AMQP event being handled.
	seedTransaction(t, st, "Rent", -120000, "")
	seedTransaction(t, st, "Internet", -4900, "")

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if got := len(exp.Rows()); got != 2 {
		t.Errorf("exported %d rows, want 2", got)
	}

	// Second pass is a no-op.
	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := len(exp.Rows()); got != 2 {
		t.Errorf("second pass re-exported rows: %d, want 2", got)
	}
}

func TestProcessPendingRespectsBatchSize(t *testing.T) {
	st := storemem.New()
	exp := sheetsmem.New()
	w := NewExportWorker(st, exp, 1)

	seedTransaction(t, st, "One", -100, "")
	seedTransaction(t, st, "Two", -200, "")

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := len(exp.Rows()); got != 1 {
		t.Errorf("exported %d rows with batch size 1, want 1", got)
	}
}

func TestExportFailureLeavesRowPending(t *testing.T) {
	st := storemem.New()
	exp := sheetsmem.New()
	exp.FailAppend = true
	w := NewExportWorker(st, exp, 10)

	tx := seedTransaction(t, st, "Groceries", -4250, "")

	if err := w.HandleEvent(context.Background(), amqp.NewCreatedEvent(tx.ID, tx.UserID)); err == nil {
		t.Fatal("HandleEvent() = nil, want error when the exporter fails")
	}

	ids, err := st.ListUnexported(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != tx.ID {
		t.Errorf("pending ids = %v, want [%s]", ids, tx.ID)
	}

	// Exporter recovers; the catch-up loop drains the backlog.
	exp.FailAppend = false
	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := len(exp.Rows()); got != 1 {
		t.Errorf("exported %d rows after recovery, want 1", got)
	}
}
