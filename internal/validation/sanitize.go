package validation

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Prompt field caps applied after schema validation.
const (
	MaxDescriptionLen = 50000
	MaxTitleLen       = 500
	MaxCompanyLen     = 500
	MaxSkillLen       = 100
	MaxNameLen        = 200
)

var htmlPolicy = newHTMLPolicy()

func newHTMLPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}

// Sanitize truncates text to maxLen runes and removes C0 control characters
// other than tab, newline and carriage return.
func Sanitize(text string, maxLen int) string {
	if maxLen < 0 {
		maxLen = 0
	}
	if utf8.RuneCountInString(text) > maxLen {
		text = truncateRunes(text, maxLen)
	}
	return strings.Map(func(r rune) rune {
		if isStrippedControl(r) {
			return -1
		}
		return r
	}, text)
}

// SanitizeAll applies Sanitize to each element and returns a new slice.
func SanitizeAll(items []string, maxLen int) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, Sanitize(item, maxLen))
	}
	return out
}

// StripHTML reduces pasted markup to plain text lines. Script and style
// bodies are dropped entirely.
func StripHTML(raw string) string {
	text := html.UnescapeString(htmlPolicy.Sanitize(raw))

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func isStrippedControl(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return false
	case r <= 0x1F:
		return true
	default:
		return false
	}
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
