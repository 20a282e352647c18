// Package memory is an in-memory store backend used by tests and as the
// zero-configuration default. It is safe for concurrent use.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"finboard/internal/auth"
	"finboard/internal/core"
	"finboard/internal/store"
)

type Store struct {
	mu              sync.RWMutex
	transactions    map[string]core.Transaction
	categories      []core.Category
	recommendations []core.Recommendation
	sessions        map[string]auth.Session
	exported        map[string]bool

	now func() time.Time
}

func New() *Store {
	return &Store{
		transactions: make(map[string]core.Transaction),
		sessions:     make(map[string]auth.Session),
		exported:     make(map[string]bool),
		now:          time.Now,
	}
}

// SetNow overrides the clock, for tests that pin created_at values.
func (s *Store) SetNow(now func() time.Time) { s.now = now }

// SeedCategories replaces the category taxonomy.
func (s *Store) SeedCategories(cats []core.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append([]core.Category(nil), cats...)
}

// SeedSession registers a bearer token for a user.
func (s *Store) SeedSession(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = auth.Session{Token: token, UserID: userID}
}

func (s *Store) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Transaction
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sortDescending(out)
	return out, nil
}

func (s *Store) ListTransactionsBetween(ctx context.Context, userID string, from, to core.Date) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Transaction
	for _, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}
		if tx.Date.Before(from.Time) || tx.Date.After(to.Time) {
			continue
		}
		out = append(out, tx)
	}
	sortDescending(out)
	return out, nil
}

func (s *Store) InsertTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	now := s.now()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	s.transactions[tx.ID] = tx
	return tx, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, store.ErrNotFound
	}
	return tx, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]core.Category(nil), s.categories...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListRecentRecommendations(ctx context.Context, userID string, limit int) ([]core.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Recommendation
	for _, rec := range s.recommendations {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) InsertRecommendation(ctx context.Context, rec core.Recommendation) (core.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = s.now()
	s.recommendations = append(s.recommendations, rec)
	return rec, nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	out := sess
	return &out, nil
}

// ListUnexported returns ids of transactions the export worker has not
// confirmed yet, oldest first.
func (s *Store) ListUnexported(ctx context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []core.Transaction
	for _, tx := range s.transactions {
		if !s.exported[tx.ID] {
			pending = append(pending, tx)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	ids := make([]string, 0, len(pending))
	for _, tx := range pending {
		ids = append(ids, tx.ID)
	}
	return ids, nil
}

func (s *Store) MarkExported(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exported[id] = true
	return nil
}

func (s *Store) MarkExportError(ctx context.Context, id, cause string) error {
	return nil
}

func (s *Store) Close() error { return nil }

func sortDescending(txs []core.Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date.Time) {
			return txs[i].Date.After(txs[j].Date.Time)
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}
