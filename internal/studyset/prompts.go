package studyset

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed summary_system.tmpl
var summarySystemPrompt string

//go:embed flashcards_system.tmpl
var flashcardsSystemPrompt string

//go:embed quiz_system.tmpl
var quizSystemPrompt string

// systemPrompt returns the system prompt for a study aid kind.
func systemPrompt(kind Kind) string {
	switch kind {
	case KindSummary:
		return summarySystemPrompt
	case KindFlashcards:
		return flashcardsSystemPrompt
	case KindQuiz:
		return quizSystemPrompt
	}
	return ""
}

// buildUserPrompt assembles the user message carrying the document text.
func buildUserPrompt(kind Kind, title, text string, count int) string {
	var b strings.Builder

	switch kind {
	case KindSummary:
		b.WriteString("Summarize the following document.\n")
	case KindFlashcards:
		fmt.Fprintf(&b, "Create %d flashcards from the following document.\n", count)
	case KindQuiz:
		fmt.Fprintf(&b, "Create a %d-question quiz from the following document.\n", count)
	}

	if title != "" {
		fmt.Fprintf(&b, "\nDocument title: %s\n", title)
	}
	b.WriteString("\n--- DOCUMENT START ---\n")
	b.WriteString(text)
	b.WriteString("\n--- DOCUMENT END ---\n")
	return b.String()
}
