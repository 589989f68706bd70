package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"title\":\"Dune\"}\n```": `{"title":"Dune"}`,
		"```\n[]\n```":                       `[]`,
		"  {\"a\":1}  ":                      `{"a":1}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, stripFences(in))
	}
}

func TestParseFilters(t *testing.T) {
	f, err := parseFilters("```json\n{\"author\":\" Herbert \",\"availableOnly\":true}\n```")
	require.NoError(t, err)
	assert.Equal(t, Filters{Author: "Herbert", AvailableOnly: true}, f)

	_, err = parseFilters("I think you want science fiction!")
	assert.Error(t, err)
}

func TestParseRecommendations(t *testing.T) {
	offered := []CatalogEntry{
		{ID: "b1", Title: "Dune"},
		{ID: "b2", Title: "Emma"},
	}
	text := `[
		{"id":"b1","title":"dune!!","reason":" classic "},
		{"id":"b9","title":"Invented","reason":"hallucinated"},
		{"id":"b1","title":"Dune","reason":"again"},
		{"id":"b2","title":"Emma","reason":"wit"}
	]`

	recs, err := parseRecommendations(text, offered)
	require.NoError(t, err)
	assert.Equal(t, []Recommendation{
		{ID: "b1", Title: "Dune", Reason: "classic"},
		{ID: "b2", Title: "Emma", Reason: "wit"},
	}, recs)

	_, err = parseRecommendations(`{"id":"b1"}`, offered)
	assert.Error(t, err)
}
