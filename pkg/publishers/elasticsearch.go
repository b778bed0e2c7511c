package publishers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// esPublisher indexes each event's article as a searchable document.
type esPublisher struct {
	id    string
	index string
	es    *elasticsearch.Client
	log   Logger
}

// esDocument is the indexed shape: the article plus run metadata.
type esDocument struct {
	EventID     string `json:"event_id"`
	RunID       string `json:"run_id"`
	Source      string `json:"source"`
	CollectedAt string `json:"collected_at"`
	Title       string `json:"title"`
	NewsDate    string `json:"news_date"`
	URL         string `json:"url"`
	ShortText   string `json:"short_text"`
	MainText    string `json:"main_text"`
	Country     string `json:"country"`
	Category    string `json:"category"`
	// Translations are omitted when translation is disabled.
	ShortTextTranslated string `json:"short_text_translated,omitempty"`
	MainTextTranslated  string `json:"main_text_translated,omitempty"`
}

func newESPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.ES == nil {
		return nil, fmt.Errorf("publisher %q missing elasticsearch configuration", cfg.ID)
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.ES.Addresses,
		Username:  cfg.ES.Username,
		Password:  cfg.ES.Password,
		APIKey:    cfg.ES.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	return &esPublisher{
		id:    cfg.ID,
		index: cfg.ES.Index,
		es:    es,
		log:   ensureLogger(log),
	}, nil
}

func (e *esPublisher) ID() string   { return e.id }
func (e *esPublisher) Type() string { return TypeES }

func (e *esPublisher) Publish(ctx context.Context, evt Event) error {
	a := evt.Article
	payload, err := json.Marshal(esDocument{
		EventID:             evt.ID,
		RunID:               evt.RunID,
		Source:              evt.Source,
		CollectedAt:         evt.CollectedAt.Format(time.RFC3339),
		Title:               a.Title,
		NewsDate:            a.NewsDate,
		URL:                 a.NewsHref,
		ShortText:           a.ShortText,
		MainText:            a.MainText,
		Country:             a.Country,
		Category:            a.Category,
		ShortTextTranslated: a.ShortTextTranslated,
		MainTextTranslated:  a.MainTextTranslated,
	})
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: a.ID,
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, e.es)
	if err != nil {
		e.log.ErrorObj("elasticsearch publisher send failed", "publisher_es_error", map[string]any{
			"publisher_id": e.id,
			"error":        err.Error(),
		})
		return fmt.Errorf("index doc: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index doc failed: %s", strings.TrimSpace(string(body)))
	}
	e.log.DebugObj("elasticsearch publisher indexed article", "publisher_es_delivery", map[string]any{
		"publisher_id": e.id,
		"index":        e.index,
		"article_id":   a.ID,
	})
	return nil
}
