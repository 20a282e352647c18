// Package services orchestrates the core operations across storage and the
// optional export publisher. All functions take the session explicitly;
// there is no ambient current-user state.
package services

import (
	"context"
	"log/slog"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/auth"
	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/store"
)

// EventPublisher is the optional export pipeline. A nil publisher disables
// the pipeline without changing write semantics.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
}

// WriteResult is the explicit outcome surfaced to the caller for write
// paths: failures become {success:false, message}, never a propagated panic.
type WriteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AddTransactionInput is the raw form input for a new transaction. Amount is
// the unsigned decimal string the user typed; the sign is derived from Type.
type AddTransactionInput struct {
	Type        core.TransactionType
	Amount      string
	Description string
	CategoryID  string
	Date        core.Date
}

type TransactionService struct {
	store     store.TransactionStore
	publisher EventPublisher
}

func NewTransactionService(st store.TransactionStore, publisher EventPublisher) *TransactionService {
	return &TransactionService{store: st, publisher: publisher}
}

// Add validates and inserts a transaction for the session user. Expenses are
// stored negative regardless of the entered sign; everything else positive.
func (s *TransactionService) Add(ctx context.Context, sess *auth.Session, input AddTransactionInput) (WriteResult, error) {
	if !sess.Valid(time.Now()) {
		return WriteResult{Success: false, Message: "unauthorized"}, auth.ErrUnauthorized
	}

	cents, err := core.ParseDecimalToCents(input.Amount)
	if err != nil {
		return WriteResult{Success: false, Message: "invalid amount"}, nil
	}

	tx := core.Transaction{
		UserID:      sess.UserID,
		Type:        input.Type,
		Amount:      core.NormalizedAmount(input.Type, core.Money{Cents: cents}),
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Date:        input.Date,
	}
	if err := tx.Validate(); err != nil {
		return WriteResult{Success: false, Message: err.Error()}, nil
	}

	saved, err := s.store.InsertTransaction(ctx, tx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to insert transaction",
			applog.NewFields().
				WithComponent(applog.ComponentTransaction).
				WithOperation(applog.OpCreate).
				WithUser(sess.UserID).
				WithError(err).
				Args()...)
		return WriteResult{Success: false, Message: err.Error()}, nil
	}

	slog.InfoContext(ctx, "Transaction added",
		applog.NewFields().
			WithComponent(applog.ComponentTransaction).
			WithOperation(applog.OpCreate).
			WithUser(saved.UserID).
			WithTransaction(saved.ID, string(saved.Type), saved.Amount.Cents).
			Args()...)

	s.publish(ctx, amqp.NewCreatedEvent(saved.ID, saved.UserID))

	return WriteResult{Success: true, Message: "Transaction added successfully"}, nil
}

// Delete removes a transaction owned by the session user.
func (s *TransactionService) Delete(ctx context.Context, sess *auth.Session, id string) (WriteResult, error) {
	if !sess.Valid(time.Now()) {
		return WriteResult{Success: false, Message: "unauthorized"}, auth.ErrUnauthorized
	}

	// Capture the row before deletion so the export worker can locate it.
	var event *amqp.TransactionEvent
	if tx, err := s.store.GetTransaction(ctx, id); err == nil && tx.UserID == sess.UserID {
		event = amqp.NewDeletedEvent(tx.ID, tx.UserID, tx.Date.String(), tx.Description, tx.Amount.Cents)
	}

	if err := s.store.DeleteTransaction(ctx, id, sess.UserID); err != nil {
		slog.ErrorContext(ctx, "Failed to delete transaction",
			applog.NewFields().
				WithComponent(applog.ComponentTransaction).
				WithOperation(applog.OpDelete).
				WithUser(sess.UserID).
				WithError(err).
				Args()...)
		return WriteResult{Success: false, Message: err.Error()}, nil
	}

	slog.InfoContext(ctx, "Transaction deleted",
		applog.NewFields().
			WithComponent(applog.ComponentTransaction).
			WithOperation(applog.OpDelete).
			WithUser(sess.UserID).
			Args()...)

	if event != nil {
		s.publish(ctx, event)
	}

	return WriteResult{Success: true, Message: "Transaction deleted successfully"}, nil
}

// List returns the session user's transactions filtered by tab and search
// term. A missing session degrades to an empty list; this is a display path.
func (s *TransactionService) List(ctx context.Context, sess *auth.Session, categories map[string]core.Category, tab core.Tab, search string) []core.Transaction {
	if !sess.Valid(time.Now()) {
		return nil
	}

	txs, err := s.store.ListTransactions(ctx, sess.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list transactions",
			applog.NewFields().
				WithComponent(applog.ComponentTransaction).
				WithOperation(applog.OpList).
				WithUser(sess.UserID).
				WithError(err).
				Args()...)
		return nil
	}

	filtered := txs[:0]
	for _, tx := range txs {
		if !core.MatchesTab(tx, tab) {
			continue
		}
		name := ""
		if cat, ok := categories[tx.CategoryID]; ok {
			name = cat.Name
		}
		if !core.MatchesSearch(tx, name, search) {
			continue
		}
		filtered = append(filtered, tx)
	}
	return filtered
}

func (s *TransactionService) publish(ctx context.Context, event *amqp.TransactionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, event); err != nil {
		// The write already succeeded locally; export lags until the worker
		// catches up.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"event", event.Event, "id", event.ID, "error", err)
	}
}
