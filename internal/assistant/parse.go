package assistant

import (
	"regexp"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary

	openFence = regexp.MustCompile("```(?:json)?\\n?")
)

// stripFences removes markdown code fences models like to wrap JSON in.
func stripFences(text string) string {
	text = openFence.ReplaceAllString(text, "")
	return strings.TrimSpace(strings.ReplaceAll(text, "```", ""))
}

func parseFilters(text string) (Filters, error) {
	var f Filters
	if err := json.UnmarshalFromString(stripFences(text), &f); err != nil {
		return Filters{}, err
	}
	f.Title = strings.TrimSpace(f.Title)
	f.Author = strings.TrimSpace(f.Author)
	f.Genre = strings.TrimSpace(f.Genre)
	return f, nil
}

// parseRecommendations keeps only entries naming one of the offered books.
func parseRecommendations(text string, offered []CatalogEntry) ([]Recommendation, error) {
	var recs []Recommendation
	if err := json.UnmarshalFromString(stripFences(text), &recs); err != nil {
		return nil, err
	}

	titles := make(map[string]string, len(offered))
	for _, c := range offered {
		titles[c.ID] = c.Title
	}

	out := make([]Recommendation, 0, len(recs))
	seen := make(map[string]bool, len(recs))
	for _, r := range recs {
		title, ok := titles[r.ID]
		if !ok || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		r.Title = title
		r.Reason = strings.TrimSpace(r.Reason)
		out = append(out, r)
	}
	return out, nil
}
