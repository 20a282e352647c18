// Package memory implements the sheets export ports in memory, for tests
// and for running the worker without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"finboard/internal/sheets"
)

type Exporter struct {
	mu   sync.Mutex
	rows []sheets.Row

	// FailAppend makes Append return an error, for exercising retry paths.
	FailAppend bool
}

var _ sheets.Exporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) Append(ctx context.Context, row sheets.Row) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.FailAppend {
		return "", fmt.Errorf("append %s: export unavailable", row.ID)
	}
	e.rows = append(e.rows, row)
	return fmt.Sprintf("memory!A%d", len(e.rows)), nil
}

func (e *Exporter) Remove(ctx context.Context, row sheets.Row) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, r := range e.rows {
		if r.ID == row.ID {
			e.rows = append(e.rows[:i], e.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// Rows returns a copy of the exported rows in append order.
func (e *Exporter) Rows() []sheets.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sheets.Row(nil), e.rows...)
}
