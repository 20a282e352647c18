package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"finboard/internal/auth"
	"finboard/internal/core"
	"finboard/internal/store"
)

const trailingMonths = 12

// SummaryService computes the dashboard aggregates. It owns no state: every
// call fetches fresh slices and runs the pure core computations.
type SummaryService struct {
	store store.TransactionStore
	now   func() time.Time
}

func NewSummaryService(st store.TransactionStore) *SummaryService {
	return &SummaryService{store: st, now: time.Now}
}

// SetNow overrides the clock, for tests that pin the current month.
func (s *SummaryService) SetNow(now func() time.Time) { s.now = now }

// FinancialSummary returns the month-over-month summary for the session
// user, or nil without a session or on store failure (reads degrade
// silently). Current and previous month slices are fetched concurrently.
func (s *SummaryService) FinancialSummary(ctx context.Context, sess *auth.Session) *core.FinancialSummary {
	now := s.now()
	if !sess.Valid(now) {
		return nil
	}

	curFrom, curTo := store.MonthRange(now)
	prevFrom, prevTo := store.PreviousMonthRange(now)

	var current, previous []core.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.store.ListTransactionsBetween(gctx, sess.UserID, curFrom, curTo)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.store.ListTransactionsBetween(gctx, sess.UserID, prevFrom, prevTo)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "Failed to fetch summary slices",
			"user_id", sess.UserID, "error", err)
		return nil
	}

	summary := core.ComputeFinancialSummary(current, previous)
	return &summary
}

// MonthlyData returns the trailing twelve months bar-chart points for the
// session user. Missing session or store failure degrades to empty.
func (s *SummaryService) MonthlyData(ctx context.Context, sess *auth.Session) []core.MonthlyPoint {
	now := s.now()
	if !sess.Valid(now) {
		return nil
	}

	// Anchor on the first of the current month before shifting back, so
	// month-end dates cannot normalize into the wrong month.
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	from := core.DateOf(firstOfMonth.AddDate(0, -(trailingMonths - 1), 0))
	to := core.DateOf(now)

	txs, err := s.store.ListTransactionsBetween(ctx, sess.UserID, from, to)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch monthly data",
			"user_id", sess.UserID, "error", err)
		return nil
	}

	return core.ComputeMonthlyTimeSeries(txs, trailingMonths, now)
}
