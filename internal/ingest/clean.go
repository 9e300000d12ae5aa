package ingest

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// Word broken across a line by a hyphen, e.g. "photo-\nsynthesis".
	hyphenBreak = regexp.MustCompile(`([a-zA-Z])-\n([a-z])`)

	// Runs of spaces and tabs.
	spaceRun = regexp.MustCompile(`[ \t]+`)

	// Three or more newlines collapse to a paragraph break.
	blankRun = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes extracted document text: consistent line endings,
// no control characters, re-joined hyphenated line breaks, and collapsed
// whitespace. PDF extractors produce all of these artifacts routinely.
func CleanText(s string) string {
	// Normalize line endings
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	// Drop control characters except newline and tab
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	// Re-join words hyphenated across line breaks
	s = hyphenBreak.ReplaceAllString(s, "$1$2")

	// Collapse horizontal whitespace and trim line edges
	s = spaceRun.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")

	// Collapse runs of blank lines
	s = blankRun.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
