package crawler

import (
	"context"

	"github.com/Adda-Baaj/briefing-harvester/internal/domain"
	"github.com/Adda-Baaj/briefing-harvester/pkg/publishers"
)

// PageScraper returns the fully scraped articles of one listing page.
type PageScraper interface {
	ScrapePage(ctx context.Context, page int) ([]domain.Article, error)
}

// BatchTranslator fills the translated fields of a batch, preserving order.
type BatchTranslator interface {
	TranslateBatch(ctx context.Context, articles []domain.Article) []domain.Article
}

// ArticleSink persists collected articles.
type ArticleSink interface {
	Append(articles []domain.Article) error
}

// Deduper remembers articles written by earlier runs.
type Deduper interface {
	Seen(id string) (bool, error)
	Mark(ids ...string) error
}

// EventPublisher publishes written articles downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
