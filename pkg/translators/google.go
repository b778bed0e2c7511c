package translators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Adda-Baaj/briefing-harvester/pkg/httpclient"
)

const googleDefaultURL = "https://translate.googleapis.com/translate_a/single"

// googleTranslator calls the public Google Translate endpoint used by browser widgets.
type googleTranslator struct {
	endpoint string
	client   httpclient.Client
}

// NewGoogle builds a Google Translate backed translator.
func NewGoogle(cfg Config) (Translator, error) {
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" {
		endpoint = googleDefaultURL
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("parse google translator url: %w", err)
	}
	return &googleTranslator{endpoint: endpoint, client: cfg.client()}, nil
}

func (g *googleTranslator) Name() string { return TypeGoogle }

func (g *googleTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if text == "" {
		return "", nil
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	q.Set("q", text)

	resp, err := g.client.Get(ctx, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("google translate request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("google translate returned status %d body: %s", resp.StatusCode(), httpclient.BodySnippet(resp.Body()))
	}

	return parseGoogleResponse(resp.Body())
}

// parseGoogleResponse concatenates the translated segments of a
// translate_a/single payload: [[["translated","source",...],...],...].
func parseGoogleResponse(body []byte) (string, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return "", fmt.Errorf("decode google translate response: %w", err)
	}
	if len(top) == 0 {
		return "", errors.New("google translate response is empty")
	}

	var segments []json.RawMessage
	if err := json.Unmarshal(top[0], &segments); err != nil {
		return "", fmt.Errorf("decode google translate segments: %w", err)
	}

	var b strings.Builder
	found := false
	for _, raw := range segments {
		var seg []any
		if err := json.Unmarshal(raw, &seg); err != nil || len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			b.WriteString(s)
			found = true
		}
	}
	if !found {
		return "", errors.New("google translate response has no translated segments")
	}
	return b.String(), nil
}
