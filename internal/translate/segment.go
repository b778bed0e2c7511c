package translate

import "unicode"

// DefaultChunkSize is the largest chunk, in runes, sent to a provider in one call.
const DefaultChunkSize = 5000

// Segment splits text into chunks of at most maxLen runes, cutting at the last
// whitespace at or before rune position maxLen. The whitespace at a cut is
// consumed. When the window has no whitespace the cut falls exactly at maxLen,
// which may split a word. The remainder is always the last chunk, so empty
// input yields [""].
func Segment(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultChunkSize
	}

	rest := []rune(text)
	var chunks []string
	for len(rest) > maxLen {
		if cut := lastSpace(rest[:maxLen+1]); cut >= 0 {
			chunks = append(chunks, string(rest[:cut]))
			rest = rest[cut+1:]
			continue
		}
		chunks = append(chunks, string(rest[:maxLen]))
		rest = rest[maxLen:]
	}
	return append(chunks, string(rest))
}

func lastSpace(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i
		}
	}
	return -1
}

// runeLen reports the length of s in the unit Segment measures.
func runeLen(s string) int {
	return len([]rune(s))
}
