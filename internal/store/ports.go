// Package store defines the ports for the relational data service and is
// implemented by the sqlite and memory backends.
package store

import (
	"context"
	"errors"
	"time"

	"finboard/internal/auth"
	"finboard/internal/core"
)

var ErrNotFound = errors.New("not found")

type (
	// TransactionStore reads and writes transaction rows scoped to a user.
	TransactionStore interface {
		// ListTransactions returns every transaction of the user,
		// descending by date.
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)

		// ListTransactionsBetween returns the user's transactions with
		// from <= date <= to, descending by date.
		ListTransactionsBetween(ctx context.Context, userID string, from, to core.Date) ([]core.Transaction, error)

		InsertTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)

		// DeleteTransaction removes a row only when it belongs to userID.
		DeleteTransaction(ctx context.Context, id, userID string) error

		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	}

	// CategoryStore reads the shared category taxonomy.
	CategoryStore interface {
		// ListCategories returns all categories ordered by name.
		ListCategories(ctx context.Context) ([]core.Category, error)
	}

	// RecommendationStore reads and writes advisor batches. Rows accumulate;
	// there is no delete.
	RecommendationStore interface {
		// ListRecentRecommendations returns up to limit rows for the user,
		// newest first.
		ListRecentRecommendations(ctx context.Context, userID string, limit int) ([]core.Recommendation, error)

		InsertRecommendation(ctx context.Context, rec core.Recommendation) (core.Recommendation, error)
	}

	// Backend is the full relational data service surface.
	Backend interface {
		TransactionStore
		CategoryStore
		RecommendationStore
		auth.SessionStore
		Close() error
	}
)

// MonthRange returns the first and last calendar day of the month containing
// ref, the slice boundaries used by the summary read path.
func MonthRange(ref time.Time) (core.Date, core.Date) {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return core.DateOf(first), core.DateOf(last)
}

// PreviousMonthRange returns the boundaries of the month before the one
// containing ref.
func PreviousMonthRange(ref time.Time) (core.Date, core.Date) {
	return MonthRange(time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0))
}
