package studyset

import "strings"

// TruncateSource bounds document text to maxChars, preferring to cut at
// a paragraph boundary and falling back to a word boundary. Long uploads
// would otherwise blow past the model's context window.
func TruncateSource(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}

	cut := text[:maxChars]

	// Prefer the last paragraph break in the back half of the budget.
	if idx := strings.LastIndex(cut, "\n\n"); idx > maxChars/2 {
		return strings.TrimSpace(cut[:idx])
	}

	// Otherwise cut at a word boundary.
	if idx := strings.LastIndexAny(cut, " \n\t"); idx > 0 {
		return strings.TrimSpace(cut[:idx])
	}
	return cut
}
