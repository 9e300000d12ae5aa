package studyset

import "encoding/json"

// Output schemas sent as response_format and used for local validation.

// SummarySchema is the JSON schema for summary output.
var SummarySchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "document_summary",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"overview": map[string]any{
					"type":        "string",
					"description": "Two to four sentence overview of the document",
				},
				"keyPoints": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "The most important facts or ideas, one per entry",
				},
			},
			"required":             []string{"overview", "keyPoints"},
			"additionalProperties": false,
		},
	},
}

// FlashcardsSchema is the JSON schema for flashcard output.
var FlashcardsSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "flashcards",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"flashcards": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"front": map[string]any{"type": "string"},
							"back":  map[string]any{"type": "string"},
						},
						"required":             []string{"front", "back"},
						"additionalProperties": false,
					},
				},
			},
			"required":             []string{"flashcards"},
			"additionalProperties": false,
		},
	},
}

// QuizSchema is the JSON schema for quiz output.
var QuizSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "quiz",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"question": map[string]any{"type": "string"},
							"options": map[string]any{
								"type":     "array",
								"items":    map[string]any{"type": "string"},
								"minItems": 4,
								"maxItems": 4,
							},
							"correctIndex": map[string]any{
								"type":    "integer",
								"minimum": 0,
								"maximum": 3,
							},
							"explanation":   map[string]any{"type": "string"},
							"sourceSnippet": map[string]any{"type": "string"},
						},
						"required":             []string{"question", "options", "correctIndex", "sourceSnippet"},
						"additionalProperties": false,
					},
				},
			},
			"required":             []string{"questions"},
			"additionalProperties": false,
		},
	},
}

// schemaJSON marshals a schema document for the provider request.
func schemaJSON(schema map[string]any) json.RawMessage {
	b, err := json.Marshal(schema)
	if err != nil {
		// Schemas are static package data; a marshal failure is a bug.
		panic(err)
	}
	return b
}
