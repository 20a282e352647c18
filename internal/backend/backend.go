// Package backend selects and constructs the storage backend from
// configuration.
package backend

import (
	"fmt"

	"finboard/internal/config"
	"finboard/internal/core"
	"finboard/internal/store"
	"finboard/internal/store/memory"
	"finboard/internal/store/sqlite"
)

// defaultCategories seeds the memory backend; the sqlite backend gets the
// same taxonomy from its migrations.
var defaultCategories = []core.Category{
	{ID: "c1000000-0000-0000-0000-000000000001", Name: "Food & Dining", Type: core.TypeExpense, Color: "green", Icon: "utensils"},
	{ID: "c1000000-0000-0000-0000-000000000002", Name: "Transportation", Type: core.TypeExpense, Color: "blue", Icon: "car"},
	{ID: "c1000000-0000-0000-0000-000000000003", Name: "Entertainment", Type: core.TypeExpense, Color: "purple", Icon: "film"},
	{ID: "c1000000-0000-0000-0000-000000000004", Name: "Utilities", Type: core.TypeExpense, Color: "yellow", Icon: "zap"},
	{ID: "c1000000-0000-0000-0000-000000000005", Name: "Shopping", Type: core.TypeExpense, Color: "orange", Icon: "shopping-bag"},
	{ID: "c1000000-0000-0000-0000-000000000006", Name: "Healthcare", Type: core.TypeExpense, Color: "pink", Icon: "heart-pulse"},
	{ID: "c1000000-0000-0000-0000-000000000007", Name: "Housing", Type: core.TypeExpense, Color: "red", Icon: "home"},
	{ID: "c1000000-0000-0000-0000-000000000008", Name: "Salary", Type: core.TypeIncome, Color: "teal", Icon: "banknote"},
	{ID: "c1000000-0000-0000-0000-000000000009", Name: "Investments", Type: core.TypeInvestment, Color: "cyan", Icon: "trending-up"},
	{ID: "c1000000-0000-0000-0000-000000000010", Name: "Transfers", Type: core.TypeTransfer, Color: "indigo", Icon: "arrow-left-right"},
}

// New builds the backend named by cfg.DataBackend. Validation has already
// constrained the value, but an unknown name still fails loudly here.
func New(cfg *config.Config) (store.Backend, error) {
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("sqlite backend: %w", err)
		}
		return repo, nil
	case "memory":
		st := memory.New()
		st.SeedCategories(defaultCategories)
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
