package studyset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/studydeck/studydeck/internal/providers"
)

// ErrModelOutput indicates the model's response could not be turned into
// usable study aids even after recovery and repair attempts. The server
// maps this to 502.
var ErrModelOutput = errors.New("model returned unusable output")

const (
	DefaultFlashcardCount = 15
	DefaultQuizCount      = 10

	// maxSourceChars bounds the document text sent to the model.
	maxSourceChars = 24000
)

// Generator produces study sets from document text.
type Generator struct {
	client providers.LLMClient
	model  string
	logger *slog.Logger
}

// NewGenerator creates a generator backed by the given LLM client.
// model may be empty to use the client's default.
func NewGenerator(client providers.LLMClient, model string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, model: model, logger: logger}
}

// Request describes one generation call.
type Request struct {
	DocumentID string
	Title      string
	Text       string
	Count      int // Flashcard/question count; ignored for summaries
}

// Summary generates a structured summary of the document.
func (g *Generator) Summary(ctx context.Context, req Request) (*StudySet, error) {
	result, err := providers.ChatStructured(ctx, g.client, g.chatRequest(KindSummary, req, SummarySchema))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelOutput, err)
	}

	var summary Summary
	if err := json.Unmarshal(result.ParsedJSON, &summary); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelOutput, err)
	}
	if summary.Overview == "" {
		return nil, fmt.Errorf("%w: summary has no overview", ErrModelOutput)
	}

	g.logResult(KindSummary, req.DocumentID, result)
	set := g.newSet(KindSummary, req.DocumentID, result)
	set.Summary = &summary
	return set, nil
}

// Flashcards generates front/back study cards. Cards with an empty side
// are dropped; the call fails only when nothing usable remains.
func (g *Generator) Flashcards(ctx context.Context, req Request) (*StudySet, error) {
	if req.Count <= 0 {
		req.Count = DefaultFlashcardCount
	}

	result, parsed, err := g.chat(ctx, KindFlashcards, req, FlashcardsSchema)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Flashcards []Flashcard `json:"flashcards"`
	}
	if err := json.Unmarshal(parsed, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelOutput, err)
	}

	kept := make([]Flashcard, 0, len(envelope.Flashcards))
	for _, card := range envelope.Flashcards {
		if card.Front == "" || card.Back == "" {
			continue
		}
		kept = append(kept, card)
	}
	if dropped := len(envelope.Flashcards) - len(kept); dropped > 0 {
		g.logger.Warn("dropped invalid flashcards", "doc_id", req.DocumentID, "dropped", dropped, "kept", len(kept))
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: no valid flashcards in response", ErrModelOutput)
	}

	g.logResult(KindFlashcards, req.DocumentID, result)
	set := g.newSet(KindFlashcards, req.DocumentID, result)
	set.Flashcards = kept
	return set, nil
}

// Quiz generates multiple-choice questions. Questions that fail field
// validation (not exactly 4 options, correctIndex out of range, missing
// question or sourceSnippet) are dropped rather than failing the batch.
func (g *Generator) Quiz(ctx context.Context, req Request) (*StudySet, error) {
	if req.Count <= 0 {
		req.Count = DefaultQuizCount
	}

	result, parsed, err := g.chat(ctx, KindQuiz, req, QuizSchema)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Questions []QuizQuestion `json:"questions"`
	}
	if err := json.Unmarshal(parsed, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelOutput, err)
	}

	kept := make([]QuizQuestion, 0, len(envelope.Questions))
	for _, q := range envelope.Questions {
		if !validQuizQuestion(q) {
			continue
		}
		kept = append(kept, q)
	}
	if dropped := len(envelope.Questions) - len(kept); dropped > 0 {
		g.logger.Warn("dropped invalid quiz questions", "doc_id", req.DocumentID, "dropped", dropped, "kept", len(kept))
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: no valid questions in response", ErrModelOutput)
	}

	g.logResult(KindQuiz, req.DocumentID, result)
	set := g.newSet(KindQuiz, req.DocumentID, result)
	set.Quiz = kept
	return set, nil
}

// chat runs a single completion with structured output requested and
// returns the recovered JSON. Unlike providers.ChatStructured it does not
// enforce the schema locally: list outputs get field-level validation with
// a drop policy instead, so one malformed entry cannot fail the batch.
func (g *Generator) chat(ctx context.Context, kind Kind, req Request, schema map[string]any) (*providers.ChatResult, json.RawMessage, error) {
	result, err := g.client.Chat(ctx, g.chatRequest(kind, req, schema))
	if err != nil {
		return nil, nil, fmt.Errorf("%s generation failed: %w", kind, err)
	}
	if len(result.ParsedJSON) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrModelOutput, result.ErrorMessage)
	}
	return result, result.ParsedJSON, nil
}

func (g *Generator) chatRequest(kind Kind, req Request, schema map[string]any) *providers.ChatRequest {
	return &providers.ChatRequest{
		Model: g.model,
		Messages: []providers.Message{
			{Role: "system", Content: systemPrompt(kind)},
			{Role: "user", Content: buildUserPrompt(kind, req.Title, TruncateSource(req.Text, maxSourceChars), req.Count)},
		},
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: schemaJSON(schema),
		},
	}
}

func (g *Generator) newSet(kind Kind, docID string, result *providers.ChatResult) *StudySet {
	return &StudySet{
		ID:         uuid.New().String(),
		DocumentID: docID,
		Kind:       kind,
		Model:      result.ModelUsed,
		Provider:   result.Provider,
		CreatedAt:  time.Now().UTC(),
	}
}

func (g *Generator) logResult(kind Kind, docID string, result *providers.ChatResult) {
	g.logger.Info("generated study aid",
		"kind", kind,
		"doc_id", docID,
		"provider", result.Provider,
		"model", result.ModelUsed,
		"tokens", result.TotalTokens,
		"cost_usd", result.CostUSD,
		"attempts", result.Attempts,
	)
}

// validQuizQuestion applies the field-level contract for quiz questions.
func validQuizQuestion(q QuizQuestion) bool {
	if q.Question == "" || q.SourceSnippet == "" {
		return false
	}
	if len(q.Options) != 4 {
		return false
	}
	if q.CorrectIndex < 0 || q.CorrectIndex > 3 {
		return false
	}
	for _, opt := range q.Options {
		if opt == "" {
			return false
		}
	}
	return true
}
