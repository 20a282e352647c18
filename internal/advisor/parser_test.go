package advisor

import (
	"errors"
	"testing"
)

const validBatch = `[
  {"title": "Cut dining out", "description": "Restaurant spending is a third of expenses. Cooking twice a week would save noticeably.", "impact": "High", "icon": "shopping-bag"},
  {"title": "Automate savings", "description": "Move a fixed amount right after payday.", "impact": "Medium", "icon": "piggy-bank"},
  {"title": "Review subscriptions", "description": "Several small recurring charges add up.", "impact": "Low", "icon": "credit-card"}
]`

func TestParseRecommendationsValid(t *testing.T) {
	items, err := ParseRecommendations(validBatch)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[0].Title != "Cut dining out" || items[0].Impact != "High" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
}

func TestParseRecommendationsFenced(t *testing.T) {
	fenced := "```json\n" + validBatch + "\n```"
	items, err := ParseRecommendations(fenced)
	if err != nil {
		t.Fatalf("expected fenced JSON to parse, got %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
}

func TestParseRecommendationsSurroundingText(t *testing.T) {
	noisy := "Here are your recommendations:\n" + validBatch + "\nLet me know if you need more."
	if _, err := ParseRecommendations(noisy); err != nil {
		t.Fatalf("expected array extraction to recover, got %v", err)
	}
}

func TestParseRecommendationsMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "I cannot help with that."},
		{"object not array", `{"title": "x"}`},
		{"empty array", `[]`},
		{"missing title", `[{"title": "", "description": "d", "impact": "Low", "icon": "zap"}]`},
		{"missing description", `[{"title": "t", "description": "", "impact": "Low", "icon": "zap"}]`},
		{"bad impact", `[{"title": "t", "description": "d", "impact": "Severe", "icon": "zap"}]`},
		{"bad icon", `[{"title": "t", "description": "d", "impact": "Low", "icon": "rocket"}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRecommendations(tc.raw)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("got %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestCleanModelJSON(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`[1]`, `[1]`},
		{"```json\n[1]\n```", `[1]`},
		{"```\n[1]\n```", `[1]`},
		{"prefix [1] suffix", `[1]`},
		{"  [1]  ", `[1]`},
	}
	for i, tc := range cases {
		if got := cleanModelJSON(tc.in); got != tc.want {
			t.Fatalf("case %d: got %q, want %q", i, got, tc.want)
		}
	}
}
