package core

import (
	"errors"
	"strings"
	"time"
)

const (
	TypeIncome     TransactionType = "income"
	TypeExpense    TransactionType = "expense"
	TypeInvestment TransactionType = "investment"
	TypeTransfer   TransactionType = "transfer"
)

const (
	ImpactLow    = "Low"
	ImpactMedium = "Medium"
	ImpactHigh   = "High"
)

type (
	TransactionType string

	// Date is a calendar date with no time component.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID          string
		UserID      string
		Type        TransactionType
		Amount      Money // signed: negative iff stored as an expense
		Description string
		CategoryID  string // empty means uncategorized
		Date        Date
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	Category struct {
		ID    string
		Name  string
		Type  TransactionType
		Color string
		Icon  string
	}

	// Recommendation is one advisor suggestion. Rows are immutable once
	// persisted; a new batch supersedes the old one without updating it.
	Recommendation struct {
		ID          string
		UserID      string
		Title       string
		Description string
		Impact      string
		Icon        string
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrMissingUser      = errors.New("missing user id")
)

// IsValid reports whether t is one of the four closed enum values.
func (t TransactionType) IsValid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeInvestment, TypeTransfer:
		return true
	}
	return false
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// String renders the date in ISO form (YYYY-MM-DD).
func (d Date) String() string {
	return d.Time.Format("2006-01-02")
}

// Validate checks a transaction before insertion. Amount sign is not checked
// here: NormalizedAmount derives it from the type at creation time, and after
// that the stored sign is authoritative for classification.
func (tx Transaction) Validate() error {
	if strings.TrimSpace(tx.UserID) == "" {
		return ErrMissingUser
	}
	if !tx.Type.IsValid() {
		return ErrInvalidType
	}
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(tx.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(tx.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if tx.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NormalizedAmount applies the storage sign convention: expenses are stored
// negative, everything else positive.
func NormalizedAmount(t TransactionType, amount Money) Money {
	abs := amount.Abs()
	if t == TypeExpense {
		return Money{Cents: -abs.Cents}
	}
	return abs
}

func (r Recommendation) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrMissingUser
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("empty title")
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}
