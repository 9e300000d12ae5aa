package modeljson

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Recovery strategies for text that fails the direct parse. Each takes the
// sanitized candidate and returns normalized JSON or an error; Decode tries
// them in order and stops at the first success.

var (
	// keyedArrayPattern matches `"<key>": [` introducing a JSON array.
	keyedArrayPattern = regexp.MustCompile(`"([^"\\]+)"\s*:\s*\[`)

	// flatObjectPattern matches object literals with no nested braces.
	flatObjectPattern = regexp.MustCompile(`\{[^{}]*\}`)
)

// recoverLastCompleteObject handles "the model was emitting an array of
// objects and got cut off mid-object": truncate at the last '}' that
// follows the last top-level '[', then close whatever brackets a forward
// scan finds still open.
func recoverLastCompleteObject(s string) (json.RawMessage, error) {
	lastArray := lastTopLevelArrayIndex(s)
	if lastArray < 0 {
		return nil, errors.New("no top-level array opener found")
	}
	lastClose := lastIndexOutsideStrings(s[lastArray:], '}')
	if lastClose < 0 {
		return nil, errors.New("no complete object after array opener")
	}
	truncated := s[:lastArray+lastClose+1]

	balanced := truncated + closersFor(truncated)
	return parseValue(balanced)
}

// lastTopLevelArrayIndex returns the index of the last '[' opened at the
// shallowest bracket depth any array opens at, string-aware, or -1. That
// is the array whose elements the model was emitting; a '[' nested inside
// one of those elements must not win, or the truncation point lands inside
// an element and the salvage comes from the wrong depth.
func lastTopLevelArrayIndex(s string) int {
	last := -1
	minDepth := 0
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
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
		case '[':
			if last < 0 || depth < minDepth {
				minDepth = depth
				last = i
			} else if depth == minDepth {
				last = i
			}
			depth++
		case '{':
			depth++
		case ']', '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return last
}

// recoverKeyedArray rebuilds `{ "<key>": [obj, ...] }` from the flat object
// literals found after the first keyed array opener. Objects that fail to
// parse on their own are dropped rather than repaired.
func recoverKeyedArray(s string) (json.RawMessage, error) {
	loc := keyedArrayPattern.FindStringSubmatchIndex(s)
	if loc == nil {
		return nil, errors.New("no keyed array pattern found")
	}
	key := s[loc[2]:loc[3]]
	tail := s[loc[1]:]

	var kept []string
	for _, obj := range flatObjectPattern.FindAllString(tail, -1) {
		if json.Valid([]byte(obj)) {
			kept = append(kept, obj)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("no parseable objects inside %q array", key)
	}

	rebuilt := fmt.Sprintf("{%s: [%s]}", mustQuote(key), strings.Join(kept, ","))
	return parseValue(rebuilt)
}

// recoverAnyCompleteObject is the last resort: return the last flat object
// literal anywhere in the text that parses on its own, ignoring whatever
// structure wrapped it.
//
// Known precision tradeoff: if the model emitted several unrelated objects
// in its prose, this can salvage one from the wrong place. It runs only
// after the structure-aware strategies have failed, and callers still apply
// field-level validation, but a semantically wrong object that matches the
// expected shape would not be caught here.
func recoverAnyCompleteObject(s string) (json.RawMessage, error) {
	matches := flatObjectPattern.FindAllString(s, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		if raw, err := parseValue(matches[i]); err == nil {
			return raw, nil
		}
	}
	return nil, errors.New("no standalone parseable object found")
}

// closersFor forward-scans s (string-aware) and returns the closing tokens
// needed to balance its still-open brackets, innermost first.
func closersFor(s string) string {
	stack := make([]byte, 0, 8)
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
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
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

// lastIndexOutsideStrings returns the index of the last occurrence of c
// that is not inside a string literal, or -1.
func lastIndexOutsideStrings(s string, c byte) int {
	last := -1
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch ch {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			continue
		}
		if ch == c {
			last = i
		}
	}
	return last
}

// stripTrailingCommas removes commas that directly precede a '}' or ']'
// (ignoring whitespace), looping until stable to handle nesting.
func stripTrailingCommas(s string) string {
	for {
		changed := false
		var b strings.Builder
		b.Grow(len(s))

		inString := false
		escaped := false
		for i := 0; i < len(s); i++ {
			c := s[i]

			if inString {
				b.WriteByte(c)
				if escaped {
					escaped = false
				} else if c == '\\' {
					escaped = true
				} else if c == '"' {
					inString = false
				}
				continue
			}

			if c == '"' {
				inString = true
				b.WriteByte(c)
				continue
			}

			if c == ',' {
				j := i + 1
				for j < len(s) && (s[j] == ' ' || s[j] == '\n' || s[j] == '\r' || s[j] == '\t') {
					j++
				}
				if j < len(s) && (s[j] == '}' || s[j] == ']') {
					changed = true
					continue // drop the comma, keep whitespace + bracket
				}
			}
			b.WriteByte(c)
		}

		if !changed {
			return s
		}
		s = b.String()
	}
}

// mustQuote renders key as a JSON string.
func mustQuote(key string) string {
	b, _ := json.Marshal(key)
	return string(b)
}
