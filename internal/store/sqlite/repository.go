// Package sqlite implements the store ports on a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"finboard/internal/auth"
	"finboard/internal/core"
	"finboard/internal/store"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = `id, user_id, type, amount_cents, description,
	COALESCE(category_id, ''), transaction_date, created_at, updated_at`

func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ?
		ORDER BY transaction_date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *Repository) ListTransactionsBetween(ctx context.Context, userID string, from, to core.Date) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ? AND transaction_date >= ? AND transaction_date <= ?
		ORDER BY transaction_date DESC, created_at DESC`,
		userID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions between: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *Repository) InsertTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	var categoryID any
	if tx.CategoryID != "" {
		categoryID = tx.CategoryID
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, type, amount_cents, description, category_id, transaction_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, string(tx.Type), tx.Amount.Cents, tx.Description,
		categoryID, tx.Date.String(), now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"user_id", tx.UserID,
		"type", tx.Type,
		"amount_cents", tx.Amount.Cents)
	return tx, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	return tx, err
}

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, color, icon FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &typ, &c.Color, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TransactionType(typ)
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *Repository) ListRecentRecommendations(ctx context.Context, userID string, limit int) ([]core.Recommendation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, impact, icon, created_at
		FROM recommendations
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	defer rows.Close()

	var recs []core.Recommendation
	for rows.Next() {
		var rec core.Recommendation
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Description,
			&rec.Impact, &rec.Icon, &createdAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		rec.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse recommendation created_at: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *Repository) InsertRecommendation(ctx context.Context, rec core.Recommendation) (core.Recommendation, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recommendations (id, user_id, title, description, impact, icon, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Title, rec.Description, rec.Impact, rec.Icon,
		rec.CreatedAt.Format(timeLayout))
	if err != nil {
		return core.Recommendation{}, fmt.Errorf("insert recommendation: %w", err)
	}

	slog.InfoContext(ctx, "Recommendation saved",
		"id", rec.ID,
		"user_id", rec.UserID,
		"impact", rec.Impact)
	return rec, nil
}

func (r *Repository) GetSession(ctx context.Context, token string) (*auth.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, COALESCE(expires_at, '') FROM sessions WHERE token = ?`, token)

	var sess auth.Session
	var expiresAt string
	err := row.Scan(&sess.Token, &sess.UserID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if expiresAt != "" {
		sess.ExpiresAt, err = parseTime(expiresAt)
		if err != nil {
			return nil, fmt.Errorf("parse session expires_at: %w", err)
		}
	}
	return &sess, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var tx core.Transaction
	var typ, date, createdAt, updatedAt string
	err := row.Scan(&tx.ID, &tx.UserID, &typ, &tx.Amount.Cents, &tx.Description,
		&tx.CategoryID, &date, &createdAt, &updatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TransactionType(typ)

	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction_date: %w", err)
	}
	tx.Date = core.DateOf(d)

	if tx.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at: %w", err)
	}
	if tx.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.Transaction{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return tx, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// parseTime accepts both RFC3339 strings written by this code and the
// "YYYY-MM-DD HH:MM:SS" form sqlite produces for CURRENT_TIMESTAMP defaults.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}
