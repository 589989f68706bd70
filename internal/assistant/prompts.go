package assistant

import (
	"fmt"
	"strings"
)

func genreOr(g *string, fallback string) string {
	if g == nil || *g == "" {
		return fallback
	}
	return *g
}

func searchPrompt(query string) string {
	return fmt.Sprintf(`Convert this natural language library search query into structured search filters.

Query: %q

Return a JSON object with these optional fields:
- "title": partial title match string
- "author": partial author match string
- "genre": genre category string
- "availableOnly": boolean, true if user wants only available books

Only return the JSON object, nothing else.`, query)
}

func recommendPrompt(history []HistoryEntry, candidates []CatalogEntry) string {
	var b strings.Builder
	b.WriteString("You are a librarian AI. Based on the user's reading history, recommend 3-5 books from the available catalog.\n\n")

	b.WriteString("User's reading history:\n")
	if len(history) == 0 {
		b.WriteString("No reading history yet - suggest popular diverse picks.\n")
	}
	for _, h := range history {
		fmt.Fprintf(&b, "%q by %s (%s)\n", h.Title, h.Author, genreOr(h.Genre, "General"))
	}

	b.WriteString("\nAvailable books in our library:\n")
	for _, c := range candidates {
		desc := "No description"
		if c.Description != nil && *c.Description != "" {
			desc = truncate(*c.Description, 100)
		}
		fmt.Fprintf(&b, "ID:%s - %q by %s (%s): %s\n", c.ID, c.Title, c.Author, genreOr(c.Genre, "General"), desc)
	}

	b.WriteString(`
Return your response as a JSON array with objects containing: "id" (the book ID), "title", "reason" (a short personalized explanation of why you recommend it).
Only return the JSON array, no other text.`)
	return b.String()
}

func summaryPrompt(in SummarizeInput) string {
	isbn := ""
	if in.ISBN != "" {
		isbn = fmt.Sprintf(" (ISBN: %s)", in.ISBN)
	}
	return fmt.Sprintf(`Write a compelling 2-3 sentence book description for a library catalog entry.

Book: %q by %s%s

The description should be engaging and informative, mentioning the genre, themes, and what makes this book notable. Keep it concise and suitable for a library catalog.`, in.Title, in.Author, isbn)
}

func chatSystemPrompt(catalog []CatalogEntry) string {
	var b strings.Builder
	b.WriteString(`You are a helpful AI library assistant for "Mini Library", a library management system.
You help users find books, get recommendations, and answer questions about the library.
Be friendly, concise, and knowledgeable about literature.

Here is the current library catalog:
`)
	for _, c := range catalog {
		status := "Checked out"
		if c.AvailableCopies > 0 {
			status = "Available"
		}
		fmt.Fprintf(&b, "- %q by %s (%s) - %s\n", c.Title, c.Author, genreOr(c.Genre, "General"), status)
	}
	b.WriteString("\nWhen recommending books, prioritize ones that are available. If a user asks about a book not in the catalog, let them know and suggest similar available books.")
	return b.String()
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
