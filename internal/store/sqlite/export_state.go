package sqlite

import (
	"context"
	"fmt"
	"time"
)

// Export bookkeeping for the spreadsheet worker. Rows without an
// exported_at mark are retried by the periodic catch-up loop.

func (r *Repository) ListUnexported(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id
		FROM transactions t
		LEFT JOIN export_state es ON es.transaction_id = t.id
		WHERE es.exported_at IS NULL
		ORDER BY t.created_at ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unexported transactions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan unexported id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) MarkExported(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO export_state (transaction_id, exported_at, attempts, last_error)
		VALUES (?, ?, 1, NULL)
		ON CONFLICT(transaction_id) DO UPDATE SET
			exported_at = excluded.exported_at,
			attempts = export_state.attempts + 1,
			last_error = NULL`,
		id, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

func (r *Repository) MarkExportError(ctx context.Context, id, cause string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO export_state (transaction_id, exported_at, attempts, last_error)
		VALUES (?, NULL, 1, ?)
		ON CONFLICT(transaction_id) DO UPDATE SET
			attempts = export_state.attempts + 1,
			last_error = excluded.last_error`,
		id, cause)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	return nil
}
