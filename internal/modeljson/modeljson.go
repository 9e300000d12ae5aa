// Package modeljson extracts a valid JSON value from raw LLM completion text.
//
// Models asked to emit JSON routinely wrap it in markdown code fences or
// prose, leave literal newlines inside string values, add trailing commas,
// or get cut off mid-object when they hit a token limit. This package pulls
// a syntactically valid JSON value out of that text where one can be
// recovered, and fails with diagnostic context where it cannot.
//
// Recovery is purely textual and local: there is no model re-request here.
// Callers own any retry-against-the-model policy.
package modeljson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Error kinds. All errors returned by this package wrap one of these, so
// callers can branch with errors.Is.
var (
	// ErrInvalidInput indicates empty or whitespace-only input.
	ErrInvalidInput = errors.New("modeljson: invalid input")

	// ErrNoJSON indicates no '{' or '[' could be located in the text.
	ErrNoJSON = errors.New("modeljson: no JSON value found")

	// ErrUnrecoverable indicates the direct parse and every recovery
	// strategy failed.
	ErrUnrecoverable = errors.New("modeljson: unrecoverable parse failure")
)

// Parse extracts a JSON value from model output text and unmarshals it into
// T. It guarantees syntactic validity only; field-level validation (option
// counts, index ranges) belongs to the caller.
func Parse[T any](text string) (T, error) {
	var out T
	raw, err := Decode(text)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: recovered JSON does not fit %T: %v", ErrUnrecoverable, out, err)
	}
	return out, nil
}

// Decode extracts a JSON value from model output text and returns it in
// normalized raw form.
func Decode(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty or whitespace-only text", ErrInvalidInput)
	}

	stripped := StripFences(trimmed)

	candidate := extractBalanced(stripped)
	if candidate == "" {
		candidate = sliceHeuristic(stripped)
	}
	if candidate == "" {
		return nil, fmt.Errorf("%w: no '{' or '[' in %d bytes of text (preview: %s)",
			ErrNoJSON, len(stripped), preview(stripped))
	}

	sanitized := sanitize(candidate)

	// Direct parse of the sanitized candidate.
	if raw, err := parseValue(sanitized); err == nil {
		return raw, nil
	}

	// Recovery chain: ordered best-effort transformations, first valid
	// result wins.
	for _, strategy := range []func(string) (json.RawMessage, error){
		recoverLastCompleteObject,
		recoverKeyedArray,
		recoverAnyCompleteObject,
	} {
		if raw, err := strategy(sanitized); err == nil {
			return raw, nil
		}
	}

	// Fixup-retry: light syntax corrections on the sanitized candidate.
	fixed := stripTrailingCommas(sanitized)
	if raw, err := parseValue(fixed); err == nil {
		return raw, nil
	}

	_, parseErr := parseValue(sanitized)
	return nil, &RecoveryError{
		OriginalLen:    len(text),
		SanitizedLen:   len(sanitized),
		Cause:          parseErr,
		RawPreview:     preview(text),
		CleanPreview:   preview(sanitized),
		LooksTruncated: looksTruncated(parseErr),
	}
}

// RecoveryError reports an exhausted recovery chain with enough context to
// debug the offending completion from logs alone.
type RecoveryError struct {
	OriginalLen    int
	SanitizedLen   int
	Cause          error
	RawPreview     string
	CleanPreview   string
	LooksTruncated bool
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf(
		"%v: all strategies exhausted (original=%d bytes, sanitized=%d bytes, truncation_suspected=%v): %v; raw preview: %s; sanitized preview: %s",
		ErrUnrecoverable, e.OriginalLen, e.SanitizedLen, e.LooksTruncated, e.Cause, e.RawPreview, e.CleanPreview,
	)
}

func (e *RecoveryError) Unwrap() error { return ErrUnrecoverable }

// previewLimit caps diagnostic previews embedded in error messages.
const previewLimit = 200

func preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= previewLimit {
		return s
	}
	return s[:previewLimit] + "...[truncated]"
}

// looksTruncated reports whether a parse error message matches the patterns
// the standard decoder emits for cut-off input. Heuristic only.
func looksTruncated(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{
		"unexpected end of JSON input",
		"Expected ',' or ']'",
		"unexpected character",
		"invalid character",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// parseValue parses s as a single JSON value and returns it re-marshaled in
// normalized form.
func parseValue(s string) (json.RawMessage, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	normalized, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize JSON: %w", err)
	}
	return normalized, nil
}

// StripFences removes a leading/trailing markdown code fence (``` or
// ```json) anchored at the very start and end of the trimmed text. It is
// idempotent and a no-op on unfenced text.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}

	// Drop the opening fence line (``` or ```json).
	lines = lines[1:]
	// Drop the closing fence if present.
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// extractBalanced locates the first top-level '{' or '[' and returns the
// substring through its matching close, tracking a bracket stack and
// skipping string literal interiors. Returns "" when no balanced value
// closes before the text ends.
func extractBalanced(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}

	stack := make([]byte, 0, 8)
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) == 0 {
				return ""
			}
			top := stack[len(stack)-1]
			if (top == '{' && c == '}') || (top == '[' && c == ']') {
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					return s[start : i+1]
				}
			} else {
				// Mismatched close; the structure is broken.
				return ""
			}
		}
	}
	return ""
}

// sliceHeuristic is the loose fallback when balanced extraction fails: span
// from the first '{' or '[' to the last '}' or ']'. Starting anywhere later
// than the first opener would cut the root value off and hand the recovery
// chain an inner fragment with the wrong root. The result is usually still
// malformed and only feeds the recovery chain.
func sliceHeuristic(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	end := max(strings.LastIndexByte(s, '}'), strings.LastIndexByte(s, ']'))
	if end <= start {
		// No closer after the opener. Take everything from the opener so
		// truncated output still reaches the recovery chain.
		return s[start:]
	}
	return s[start : end+1]
}
