package advisor

import (
	"strings"

	"finboard/internal/core"
)

const recentTransactionCount = 10

// BuildDigest renders the deterministic natural-language summary of a user's
// finances that feeds the generator prompt: total income, expense rollups by
// category (descending), and the most recent transactions. txs must already
// be ordered descending by date, as the stores return them.
func BuildDigest(txs []core.Transaction, categories map[string]core.Category) string {
	income := core.TotalIncome(txs)
	rollup := core.ExpensesByCategory(txs, categories)

	var b strings.Builder
	b.WriteString("Income: $" + income.FormatAbs() + "\n\n")

	b.WriteString("Top Expenses by Category:\n")
	for _, ct := range rollup {
		b.WriteString(ct.Name + ": $" + ct.Total.FormatAbs() + "\n")
	}

	b.WriteString("\nRecent Transactions:\n")
	recent := txs
	if len(recent) > recentTransactionCount {
		recent = recent[:recentTransactionCount]
	}
	for _, tx := range recent {
		name := "Uncategorized"
		if cat, ok := categories[tx.CategoryID]; ok && tx.CategoryID != "" {
			name = core.ResolveCategoryName(&cat)
		}
		b.WriteString(tx.Date.String() + ": " + tx.Description + " - " +
			tx.Amount.FormatSigned() + " (" + name + ")\n")
	}

	return b.String()
}

// BuildPrompt wraps the digest in the fixed instruction template. The
// template pins the output contract: exactly three items, bounded title,
// short description, closed impact and icon sets, raw JSON array.
func BuildPrompt(digest string) string {
	var b strings.Builder
	b.WriteString("As a financial advisor, analyze this user's financial data and provide 3 personalized recommendations.\n\n")
	b.WriteString(digest)
	b.WriteString("\nFor each recommendation:\n")
	b.WriteString("1. Provide a short, specific title (max 5 words)\n")
	b.WriteString("2. Write a detailed explanation (1-2 sentences)\n")
	b.WriteString("3. Assign an impact level (Low, Medium, or High)\n")
	b.WriteString("4. Suggest an icon name from: " + strings.Join(allowedIcons, ", ") + "\n\n")
	b.WriteString("Format your response as a JSON array with objects containing title, description, impact, and icon fields.\n")
	b.WriteString("Return ONLY valid raw JSON. Do NOT wrap the response in code fences.\n")
	return b.String()
}
