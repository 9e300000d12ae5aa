package modeljson

import "strings"

// scanState tracks the string-literal state machine during sanitization.
type scanState int

const (
	stateNormal scanState = iota
	stateInString
	stateInStringEscaped
)

// sanitize walks the candidate and escapes characters that are illegal
// inside JSON string literals: literal newlines, carriage returns, tabs and
// the U+2028/U+2029 separators. Characters outside string literals are
// never touched, and existing escape sequences pass through unchanged.
//
// If the scan ends while still inside a string the model was cut off
// mid-value; the string is auto-closed (completing a dangling backslash
// first) so the result is at least parseable, trading content completeness
// for syntactic validity.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)

	state := stateNormal
	for _, r := range s {
		switch state {
		case stateNormal:
			if r == '"' {
				state = stateInString
			}
			b.WriteRune(r)

		case stateInString:
			switch r {
			case '\\':
				state = stateInStringEscaped
				b.WriteRune(r)
			case '"':
				state = stateNormal
				b.WriteRune(r)
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			case '\u2028':
				b.WriteString(`\u2028`)
			case '\u2029':
				b.WriteString(`\u2029`)
			default:
				b.WriteRune(r)
			}

		case stateInStringEscaped:
			// The escaped character passes through verbatim, even if it
			// is itself illegal; the backslash already consumed it.
			state = stateInString
			b.WriteRune(r)
		}
	}

	switch state {
	case stateInStringEscaped:
		// Truncated immediately after a backslash: complete the escape,
		// then close the string.
		b.WriteString(`\"`)
	case stateInString:
		b.WriteByte('"')
	}

	return b.String()
}
