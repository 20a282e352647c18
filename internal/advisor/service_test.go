package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"finboard/internal/auth"
	"finboard/internal/core"
	"finboard/internal/store/memory"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func newTestPreparer(gen TextGenerator) (*Preparer, *memory.Store) {
	st := memory.New()
	return NewPreparer(st, st, st, gen), st
}

func seedTransaction(t *testing.T, st *memory.Store, userID string, cents int64) {
	t.Helper()
	_, err := st.InsertTransaction(context.Background(), core.Transaction{
		UserID:      userID,
		Type:        core.TypeExpense,
		Amount:      core.Money{Cents: cents},
		Description: "seed",
		Date:        core.NewDate(2025, 8, 1),
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
}

func TestRegenerateNoTransactionsSkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{response: validBatch}
	p, _ := newTestPreparer(gen)

	batch, err := p.Regenerate(context.Background(), &auth.Session{UserID: "u1"})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if len(batch) != 0 {
		t.Fatalf("got %d recommendations, want 0", len(batch))
	}
	if gen.calls != 0 {
		t.Fatalf("generator called %d times, want 0", gen.calls)
	}
}

func TestRegeneratePersistsBatch(t *testing.T) {
	gen := &fakeGenerator{response: validBatch}
	p, st := newTestPreparer(gen)
	seedTransaction(t, st, "u1", -5000)

	batch, err := p.Regenerate(context.Background(), &auth.Session{UserID: "u1"})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("got %d recommendations, want 3", len(batch))
	}
	for _, rec := range batch {
		if rec.UserID != "u1" || rec.ID == "" {
			t.Fatalf("recommendation not persisted for user: %+v", rec)
		}
	}
}

func TestRegenerateMalformedResponse(t *testing.T) {
	gen := &fakeGenerator{response: "I'm sorry, I can't produce JSON today."}
	p, st := newTestPreparer(gen)
	seedTransaction(t, st, "u1", -5000)

	_, err := p.Regenerate(context.Background(), &auth.Session{UserID: "u1"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("got %v, want ErrMalformedResponse", err)
	}

	recs, _ := st.ListRecentRecommendations(context.Background(), "u1", BatchSize)
	if len(recs) != 0 {
		t.Fatalf("malformed response must not persist rows, found %d", len(recs))
	}
}

func TestRecommendationsFreshBatchReused(t *testing.T) {
	gen := &fakeGenerator{response: validBatch}
	p, st := newTestPreparer(gen)
	seedTransaction(t, st, "u1", -5000)
	sess := &auth.Session{UserID: "u1"}

	first := p.Recommendations(context.Background(), sess)
	if len(first) != 3 || gen.calls != 1 {
		t.Fatalf("first fetch: %d recs, %d calls; want 3, 1", len(first), gen.calls)
	}

	second := p.Recommendations(context.Background(), sess)
	if len(second) != 3 || gen.calls != 1 {
		t.Fatalf("fresh batch must be reused without a generator call: %d calls", gen.calls)
	}
}

func TestRecommendationsStaleBatchRegenerated(t *testing.T) {
	gen := &fakeGenerator{response: validBatch}
	p, st := newTestPreparer(gen)
	seedTransaction(t, st, "u1", -5000)
	sess := &auth.Session{UserID: "u1"}

	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	st.SetNow(func() time.Time { return base })
	p.SetNow(func() time.Time { return base })

	p.Recommendations(context.Background(), sess)
	if gen.calls != 1 {
		t.Fatalf("expected initial generation, got %d calls", gen.calls)
	}

	// Just inside the window: reuse.
	p.SetNow(func() time.Time { return base.Add(23 * time.Hour) })
	p.Recommendations(context.Background(), sess)
	if gen.calls != 1 {
		t.Fatalf("batch inside the 24h window must be reused, got %d calls", gen.calls)
	}

	// Past the window: regenerate. History accumulates, no deletes.
	later := base.Add(25 * time.Hour)
	st.SetNow(func() time.Time { return later })
	p.SetNow(func() time.Time { return later })
	p.Recommendations(context.Background(), sess)
	if gen.calls != 2 {
		t.Fatalf("stale batch must trigger regeneration, got %d calls", gen.calls)
	}
}

func TestRecommendationsNoSession(t *testing.T) {
	gen := &fakeGenerator{response: validBatch}
	p, st := newTestPreparer(gen)
	seedTransaction(t, st, "u1", -5000)

	if got := p.Recommendations(context.Background(), nil); got != nil {
		t.Fatalf("nil session must return empty, got %v", got)
	}
	if gen.calls != 0 {
		t.Fatalf("generator must not run without a session")
	}
}

func TestRecommendationsGeneratorFailureDegrades(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	p, st := newTestPreparer(gen)
	seedTransaction(t, st, "u1", -5000)

	got := p.Recommendations(context.Background(), &auth.Session{UserID: "u1"})
	if len(got) != 0 {
		t.Fatalf("generator failure must degrade to empty, got %d", len(got))
	}
}
