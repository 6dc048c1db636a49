package security

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

// Common length limits for user supplied text.
const (
	MaxNameLength     = 40
	MaxTitleLength    = 200
	MaxTextLength     = 1000
	MaxURLLength      = 512
	MaxOptionLength   = 200
	MaxQuestionsLimit = 100
)

// CleanText drops control bytes, trims, and caps the rune length without
// touching markup. Answers and options are compared verbatim at grading time.
func CleanText(input string, maxLen int) string {
	input = strings.TrimSpace(strings.ReplaceAll(input, "\x00", ""))
	if maxLen > 0 && utf8.RuneCountInString(input) > maxLen {
		input = strings.TrimSpace(string([]rune(input)[:maxLen]))
	}
	return input
}

// CleanList applies CleanText to every item and drops empty results.
func CleanList(items []string, maxLen int) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := CleanText(item, maxLen); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SanitizeText strips markup and control bytes and caps the rune length.
// Entities are unescaped again so stored text stays plain.
func SanitizeText(input string, maxLen int) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = html.UnescapeString(htmlPolicy.Sanitize(input))
	input = strings.TrimSpace(input)
	if maxLen > 0 && utf8.RuneCountInString(input) > maxLen {
		input = string([]rune(input)[:maxLen])
	}
	return input
}
