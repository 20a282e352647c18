package advisor

import (
	"encoding/json"
	"fmt"
	"strings"
)

// allowedIcons is the closed icon vocabulary the prompt offers and the
// parser enforces.
var allowedIcons = []string{
	"trending-up", "piggy-bank", "lightbulb", "alert-circle",
	"credit-card", "shopping-bag", "zap",
}

var allowedImpacts = []string{"Low", "Medium", "High"}

// ParsedRecommendation is one schema-validated item from the generator.
type ParsedRecommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Icon        string `json:"icon"`
}

// ParseRecommendations validates raw generator output into a typed batch.
// Any structural or field-level failure collapses to ErrMalformedResponse;
// the model is not retried and the caller keeps the previous batch.
func ParseRecommendations(raw string) ([]ParsedRecommendation, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	var items []ParsedRecommendation
	if err := json.Unmarshal([]byte(clean), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrMalformedResponse)
	}

	for i, item := range items {
		if strings.TrimSpace(item.Title) == "" {
			return nil, fmt.Errorf("%w: item %d missing title", ErrMalformedResponse, i)
		}
		if strings.TrimSpace(item.Description) == "" {
			return nil, fmt.Errorf("%w: item %d missing description", ErrMalformedResponse, i)
		}
		if !contains(allowedImpacts, item.Impact) {
			return nil, fmt.Errorf("%w: item %d invalid impact %q", ErrMalformedResponse, i, item.Impact)
		}
		if !contains(allowedIcons, item.Icon) {
			return nil, fmt.Errorf("%w: item %d invalid icon %q", ErrMalformedResponse, i, item.Icon)
		}
	}
	return items, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk that models
// emit despite instructions, keeping only the outermost JSON array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
