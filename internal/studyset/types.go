// Package studyset generates study aids (summaries, flashcards, quizzes)
// from document text using an LLM, and validates the model's JSON output
// field by field before returning it.
package studyset

import "time"

// Kind identifies a study aid type.
type Kind string

const (
	KindSummary    Kind = "summary"
	KindFlashcards Kind = "flashcards"
	KindQuiz       Kind = "quiz"
)

// Summary is a structured document summary.
type Summary struct {
	Overview  string   `json:"overview"`
	KeyPoints []string `json:"keyPoints"`
}

// Flashcard is a single front/back study card.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// QuizQuestion is a multiple-choice question. Options always has exactly
// four entries and CorrectIndex points into it. SourceSnippet quotes the
// passage the question was drawn from.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectIndex  int      `json:"correctIndex"`
	Explanation   string   `json:"explanation,omitempty"`
	SourceSnippet string   `json:"sourceSnippet"`
}

// StudySet is a persisted generation result.
type StudySet struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	Kind       Kind           `json:"kind"`
	Model      string         `json:"model,omitempty"`
	Provider   string         `json:"provider,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	Summary    *Summary       `json:"summary,omitempty"`
	Flashcards []Flashcard    `json:"flashcards,omitempty"`
	Quiz       []QuizQuestion `json:"quiz,omitempty"`
}
