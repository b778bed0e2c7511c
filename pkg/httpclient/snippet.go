package httpclient

import (
	"strings"
	"unicode/utf8"
)

// SnippetLimit is the number of bytes BodySnippet keeps from a response body.
const SnippetLimit = 512

// BodySnippet returns the trimmed start of a response body for error messages.
// Long bodies are cut on a rune boundary and suffixed with "...".
func BodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "<empty>"
	}
	if len(s) <= SnippetLimit {
		return s
	}
	cut := SnippetLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
