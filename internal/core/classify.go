package core

import "strings"

// Direction is the display glyph class for a transaction row.
type Direction string

const (
	DirectionUp      Direction = "up"   // money in
	DirectionDown    Direction = "down" // money out
	DirectionNeutral Direction = "neutral"
	DirectionBoth    Direction = "both" // transfer, bidirectional
)

// Tab identifies a categorized list view.
type Tab string

const (
	TabAll        Tab = "all"
	TabIncome     Tab = "income"
	TabExpense    Tab = "expense"
	TabInvestment Tab = "investment"
	TabTransfer   Tab = "transfer"
)

// ClassifyDirection resolves the display direction from the signed amount.
// The type tag only matters for the zero-amount case: investment resolves to
// neutral, transfer to both, and anything else falls back to down.
func ClassifyDirection(tx Transaction) Direction {
	if tx.Amount.IsPositive() {
		return DirectionUp
	}
	if tx.Amount.IsNegative() {
		return DirectionDown
	}
	switch tx.Type {
	case TypeInvestment:
		return DirectionNeutral
	case TypeTransfer:
		return DirectionBoth
	}
	return DirectionDown
}

// MatchesTab applies the amount-sign filter used by the categorized views.
// The investment and transfer tabs are declared but fall through the generic
// filter and include everything, matching the audited behavior.
func MatchesTab(tx Transaction, tab Tab) bool {
	switch tab {
	case TabIncome:
		return tx.Amount.IsPositive()
	case TabExpense:
		return tx.Amount.IsNegative()
	}
	return true
}

// MatchesSearch matches term case-insensitively against the description or
// the resolved category name. An empty term matches everything.
func MatchesSearch(tx Transaction, categoryName, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(tx.Description), term) {
		return true
	}
	return strings.Contains(strings.ToLower(categoryName), term)
}

// categoryPalette maps category color tags to display style classes.
var categoryPalette = map[string]string{
	"green":  "green",
	"blue":   "blue",
	"purple": "purple",
	"yellow": "yellow",
	"amber":  "yellow",
	"orange": "orange",
	"pink":   "pink",
	"rose":   "pink",
	"red":    "red",
	"teal":   "teal",
	"cyan":   "cyan",
	"indigo": "indigo",
}

const paletteFallback = "gray"

// CategoryColor resolves a category's color tag through the fixed palette.
// A nil category and an unknown tag both fall back to gray.
func CategoryColor(cat *Category) string {
	if cat == nil {
		return paletteFallback
	}
	if style, ok := categoryPalette[cat.Color]; ok {
		return style
	}
	return paletteFallback
}

// ResolveCategoryName returns the category name for display and grouping,
// with nil rendered as "Uncategorized".
func ResolveCategoryName(cat *Category) string {
	if cat == nil || cat.Name == "" {
		return "Uncategorized"
	}
	return cat.Name
}
