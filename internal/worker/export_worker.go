// Package worker mirrors transactions into a spreadsheet. Events arrive
// over AMQP; a periodic catch-up loop re-drives rows whose export never
// got confirmed, so lost messages do not lose data.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/sheets"
	"finboard/internal/store"
)

// ExportStateStore tracks which transactions have been confirmed in the
// spreadsheet. Implemented by the sqlite and memory backends.
type ExportStateStore interface {
	ListUnexported(ctx context.Context, limit int) ([]string, error)
	MarkExported(ctx context.Context, id string) error
	MarkExportError(ctx context.Context, id, cause string) error
}

// Source is the storage surface the worker reads from.
type Source interface {
	store.TransactionStore
	store.CategoryStore
	ExportStateStore
}

type ExportWorker struct {
	source    Source
	exporter  sheets.Exporter
	batchSize int
}

func NewExportWorker(source Source, exporter sheets.Exporter, batchSize int) *ExportWorker {
	return &ExportWorker{
		source:    source,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleEvent processes one transaction event from the queue. Errors are
// returned so the AMQP consumer can requeue the delivery.
func (w *ExportWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	switch event.Event {
	case amqp.EventCreated:
		return w.exportByID(ctx, event.ID)
	case amqp.EventDeleted:
		return w.removeRow(ctx, event)
	default:
		slog.WarnContext(ctx, "Unknown transaction event, dropping",
			"event", event.Event, "id", event.ID)
		return nil
	}
}

func (w *ExportWorker) exportByID(ctx context.Context, id string) error {
	tx, err := w.source.GetTransaction(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		// Row deleted before the worker got to it; nothing to mirror.
		slog.InfoContext(ctx, "Transaction gone before export, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction %s: %w", id, err)
	}
	return w.export(ctx, tx)
}

func (w *ExportWorker) export(ctx context.Context, tx core.Transaction) error {
	ref, err := w.exporter.Append(ctx, w.rowFor(ctx, tx))
	if err != nil {
		if markErr := w.source.MarkExportError(ctx, tx.ID, err.Error()); markErr != nil {
			slog.ErrorContext(ctx, "Failed to record export error",
				"id", tx.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.source.MarkExported(ctx, tx.ID); err != nil {
		// The row is in the sheet; only the bookkeeping failed. The catch-up
		// loop may export it again, which the user-visible ID column makes
		// easy to spot and clean up.
		slog.ErrorContext(ctx, "Failed to mark transaction exported",
			"id", tx.ID, "error", err)
	}

	slog.InfoContext(ctx, "Transaction exported",
		"id", tx.ID,
		"sheets_ref", ref,
		"amount_cents", tx.Amount.Cents)
	return nil
}

func (w *ExportWorker) removeRow(ctx context.Context, event *amqp.TransactionEvent) error {
	row := sheets.Row{
		ID:          event.ID,
		Date:        event.Date,
		Description: event.Description,
		AmountCents: event.AmountCents,
	}
	if err := w.exporter.Remove(ctx, row); err != nil {
		return fmt.Errorf("remove exported row %s: %w", event.ID, err)
	}
	slog.InfoContext(ctx, "Exported row removed", "id", event.ID)
	return nil
}

// ProcessPending exports transactions whose export was never confirmed.
// This is the backup path for lost or nacked AMQP messages.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	ids, err := w.source.ListUnexported(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unexported: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(ids))
	for _, id := range ids {
		if err := w.exportByID(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending transaction",
				"id", id, "error", err)
		}
	}
	return nil
}

// StartupCheck drains a larger pending backlog once when the worker boots,
// recovering from downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	ids, err := w.source.ListUnexported(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list unexported for startup check: %w", err)
	}
	if len(ids) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup", "count", len(ids))
	exported, failed := 0, 0
	for _, id := range ids {
		if err := w.exportByID(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Startup export failed", "id", id, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export check completed",
		"total", len(ids), "exported", exported, "errors", failed)
	return nil
}

// RunPeriodic runs the pending catch-up loop until the context is done.
func (w *ExportWorker) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending export pass failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// rowFor resolves the category name for the exported line. Lookup failures
// degrade to an empty category rather than blocking the export.
func (w *ExportWorker) rowFor(ctx context.Context, tx core.Transaction) sheets.Row {
	categoryName := ""
	if tx.CategoryID != "" {
		if cats, err := w.source.ListCategories(ctx); err == nil {
			for _, cat := range cats {
				if cat.ID == tx.CategoryID {
					categoryName = cat.Name
					break
				}
			}
		} else {
			slog.WarnContext(ctx, "Failed to resolve category for export",
				"id", tx.ID, "error", err)
		}
	}
	return sheets.Row{
		ID:          tx.ID,
		Date:        tx.Date.String(),
		Description: tx.Description,
		AmountCents: tx.Amount.Cents,
		Type:        string(tx.Type),
		Category:    categoryName,
	}
}
