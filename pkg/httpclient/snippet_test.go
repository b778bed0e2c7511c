package httpclient

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBodySnippetEmpty(t *testing.T) {
	if got := BodySnippet([]byte("  \n")); got != "<empty>" {
		t.Fatalf("BodySnippet = %q", got)
	}
}

func TestBodySnippetShortBodyTrimmed(t *testing.T) {
	if got := BodySnippet([]byte("  bad gateway\n")); got != "bad gateway" {
		t.Fatalf("BodySnippet = %q", got)
	}
}

func TestBodySnippetCutsOnRuneBoundary(t *testing.T) {
	// One ASCII byte shifts the three-byte runes so the limit falls mid-rune.
	body := "x" + strings.Repeat("中", SnippetLimit)

	got := BodySnippet([]byte(body))
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncation marker, got %q", got[len(got)-8:])
	}
	head := strings.TrimSuffix(got, "...")
	if !utf8.ValidString(head) {
		t.Fatalf("snippet split a rune: % x", head[len(head)-4:])
	}
	if len(head) > SnippetLimit || len(head) < SnippetLimit-2 {
		t.Fatalf("snippet length %d, want close to %d", len(head), SnippetLimit)
	}
	if !strings.HasPrefix(body, head) {
		t.Fatalf("snippet is not a prefix of the body")
	}
}
