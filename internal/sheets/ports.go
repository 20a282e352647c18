// Package sheets defines the outbound ports for the spreadsheet export
// pipeline. Transactions are mirrored into a Google Sheet so users can run
// their own analysis outside the dashboard.
package sheets

import "context"

// Row is one exported transaction line. The transaction ID is written
// alongside the visible columns so deletions can locate the exact row later.
type Row struct {
	ID          string
	Date        string // YYYY-MM-DD
	Description string
	AmountCents int64
	Type        string
	Category    string
}

type (
	TransactionAppender interface {
		Append(ctx context.Context, row Row) (rowRef string, err error)
	}

	TransactionRemover interface {
		Remove(ctx context.Context, row Row) error
	}

	// Exporter is the full export surface the worker depends on.
	Exporter interface {
		TransactionAppender
		TransactionRemover
	}
)
