package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finboard/internal/auth"
	"finboard/internal/core"
	"finboard/internal/store"
)

const (
	// FreshnessWindow is how long a persisted batch is served before a new
	// fetch triggers regeneration.
	FreshnessWindow = 24 * time.Hour

	// BatchSize is the number of recommendations requested and returned.
	BatchSize = 3

	generateTemperature = 0.7
	generateMaxTokens   = 1000
)

// Preparer implements the recommendation lifecycle: a two-state freshness
// check (Fresh -> reuse, Stale or absent -> regenerate) evaluated against
// the newest persisted created_at. The check-then-regenerate sequence is not
// atomic; racing calls may persist duplicate batches, which is accepted.
type Preparer struct {
	transactions    store.TransactionStore
	categories      store.CategoryStore
	recommendations store.RecommendationStore
	generator       TextGenerator

	now func() time.Time
}

func NewPreparer(txs store.TransactionStore, cats store.CategoryStore, recs store.RecommendationStore, gen TextGenerator) *Preparer {
	return &Preparer{
		transactions:    txs,
		categories:      cats,
		recommendations: recs,
		generator:       gen,
		now:             time.Now,
	}
}

// SetNow overrides the clock, for freshness tests.
func (p *Preparer) SetNow(now func() time.Time) { p.now = now }

// Recommendations returns the user's current batch, regenerating when the
// newest row is older than the freshness window or none exists. Failures
// degrade to an empty result; this is a display path.
func (p *Preparer) Recommendations(ctx context.Context, sess *auth.Session) []core.Recommendation {
	if !sess.Valid(p.now()) {
		return nil
	}

	existing, err := p.recommendations.ListRecentRecommendations(ctx, sess.UserID, BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch recommendations", "user_id", sess.UserID, "error", err)
		return nil
	}

	if len(existing) > 0 && p.now().Sub(existing[0].CreatedAt) < FreshnessWindow {
		return existing
	}

	batch, err := p.Regenerate(ctx, sess)
	if err != nil {
		slog.ErrorContext(ctx, "Recommendation regeneration failed",
			"user_id", sess.UserID, "error", err)
		// The previous batch, if any, stays available on the next fetch.
		return nil
	}
	return batch
}

// Regenerate runs the full pipeline: fetch transactions, build the digest,
// call the generator, parse, persist, and return the new batch. A user with
// no transactions short-circuits to an empty batch without calling the
// generator.
func (p *Preparer) Regenerate(ctx context.Context, sess *auth.Session) ([]core.Recommendation, error) {
	if !sess.Valid(p.now()) {
		return nil, nil
	}

	txs, err := p.transactions.ListTransactions(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	if len(txs) == 0 {
		return nil, nil
	}

	cats, err := p.categoryIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}

	prompt := BuildPrompt(BuildDigest(txs, cats))

	raw, err := p.generator.Generate(ctx, prompt, generateTemperature, generateMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("generate recommendations: %w", err)
	}

	items, err := ParseRecommendations(raw)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		rec := core.Recommendation{
			UserID:      sess.UserID,
			Title:       item.Title,
			Description: item.Description,
			Impact:      item.Impact,
			Icon:        item.Icon,
		}
		if _, err := p.recommendations.InsertRecommendation(ctx, rec); err != nil {
			return nil, fmt.Errorf("persist recommendation: %w", err)
		}
	}

	slog.InfoContext(ctx, "Recommendation batch generated",
		"user_id", sess.UserID, "count", len(items))

	return p.recommendations.ListRecentRecommendations(ctx, sess.UserID, BatchSize)
}

func (p *Preparer) categoryIndex(ctx context.Context) (map[string]core.Category, error) {
	cats, err := p.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]core.Category, len(cats))
	for _, c := range cats {
		index[c.ID] = c
	}
	return index, nil
}
