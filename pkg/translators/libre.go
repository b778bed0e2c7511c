package translators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Adda-Baaj/briefing-harvester/pkg/httpclient"
)

// libreTranslator talks to a LibreTranslate compatible /translate endpoint.
type libreTranslator struct {
	endpoint string
	apiKey   string
	client   httpclient.JSONClient
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText *string `json:"translatedText"`
	Error          string  `json:"error"`
}

// NewLibre builds a LibreTranslate backed translator. cfg.URL is the server base URL.
func NewLibre(cfg Config) (Translator, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, errors.New("libre translator requires a url")
	}
	endpoint := base
	if !strings.HasSuffix(endpoint, "/translate") {
		endpoint += "/translate"
	}
	return &libreTranslator{
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		client:   cfg.client(),
	}, nil
}

func (l *libreTranslator) Name() string { return TypeLibre }

func (l *libreTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if text == "" {
		return "", nil
	}

	resp, err := l.client.PostJSON(ctx, l.endpoint, nil, libreRequest{
		Q:      text,
		Source: "auto",
		Target: targetLang,
		Format: "text",
		APIKey: l.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("libre translate request: %w", err)
	}

	var out libreResponse
	decodeErr := json.Unmarshal(resp.Body(), &out)

	if resp.StatusCode() != http.StatusOK {
		if decodeErr == nil && out.Error != "" {
			return "", fmt.Errorf("libre translate returned status %d: %s", resp.StatusCode(), out.Error)
		}
		return "", fmt.Errorf("libre translate returned status %d body: %s", resp.StatusCode(), httpclient.BodySnippet(resp.Body()))
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode libre translate response: %w", decodeErr)
	}
	if out.TranslatedText == nil {
		return "", errors.New("libre translate response missing translatedText")
	}
	return *out.TranslatedText, nil
}
