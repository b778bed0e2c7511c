package crawler

import (
	"context"
	"fmt"
	"sync"

	"github.com/Adda-Baaj/briefing-harvester/internal/domain"
	"github.com/Adda-Baaj/briefing-harvester/internal/logger"
	"github.com/Adda-Baaj/briefing-harvester/pkg/publishers"
)

// Settings carries the per-deployment values stamped onto every page.
type Settings struct {
	Country  string
	Category string
	Source   string
	SkipSeen bool
}

// PageProcessor runs one listing page through scrape, dedupe, translate,
// write, mark and publish.
type PageProcessor struct {
	scraper    PageScraper
	translator BatchTranslator
	sink       ArticleSink
	deduper    Deduper
	publisher  EventPublisher
	settings   Settings
	log        logger.Logger

	mu      sync.Mutex
	runID   string
	runSeen map[string]struct{}
}

// NewPageProcessor wires a processor. translator, deduper and publisher are optional.
func NewPageProcessor(scraper PageScraper, translator BatchTranslator, sink ArticleSink, deduper Deduper, publisher EventPublisher, settings Settings, log logger.Logger) *PageProcessor {
	if settings.Source == "" {
		settings.Source = "china-briefing"
	}
	return &PageProcessor{
		scraper:    scraper,
		translator: translator,
		sink:       sink,
		deduper:    deduper,
		publisher:  publisher,
		settings:   settings,
		log:        logger.Ensure(log),
		runSeen:    make(map[string]struct{}),
	}
}

// startRun resets the per-run link set so a link repeated on two pages is written once.
func (p *PageProcessor) startRun(runID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runID = runID
	p.runSeen = make(map[string]struct{})
}

// Process collects one page. Scrape and write failures are returned; dedupe,
// mark and publish failures are only logged. Nothing is written once ctx is
// cancelled.
func (p *PageProcessor) Process(ctx context.Context, page int) error {
	if p == nil || p.scraper == nil || p.sink == nil {
		return fmt.Errorf("page processor is not initialized")
	}

	articles, err := p.scraper.ScrapePage(ctx, page)
	if err != nil {
		return fmt.Errorf("scrape page %d: %w", page, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("scrape page %d: %w", page, err)
	}
	scraped := len(articles)

	for i := range articles {
		articles[i] = articles[i].WithDefaults(p.settings.Country, p.settings.Category)
	}
	articles = p.dropRepeated(articles)
	if p.settings.SkipSeen {
		articles = p.filterNewArticles(page, articles)
	}

	if len(articles) == 0 {
		p.log.InfoObj("page collected", "page_result", map[string]any{
			"page":    page,
			"scraped": scraped,
			"written": 0,
		})
		return nil
	}

	if p.translator != nil {
		articles = p.translator.TranslateBatch(ctx, articles)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("translate page %d: %w", page, err)
		}
	}

	if err := p.sink.Append(articles); err != nil {
		return fmt.Errorf("write page %d: %w", page, err)
	}

	p.markWritten(page, articles)
	published := p.publish(ctx, articles)

	p.log.InfoObj("page collected", "page_result", map[string]any{
		"page":      page,
		"scraped":   scraped,
		"written":   len(articles),
		"published": published,
	})
	return nil
}

func (p *PageProcessor) dropRepeated(articles []domain.Article) []domain.Article {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := articles[:0]
	for _, art := range articles {
		if _, dup := p.runSeen[art.NewsHref]; dup {
			continue
		}
		p.runSeen[art.NewsHref] = struct{}{}
		out = append(out, art)
	}
	return out
}

// filterNewArticles drops articles written by earlier runs. A failed lookup keeps the article.
func (p *PageProcessor) filterNewArticles(page int, articles []domain.Article) []domain.Article {
	if p.deduper == nil {
		return articles
	}

	out := make([]domain.Article, 0, len(articles))
	for _, art := range articles {
		seen, err := p.deduper.Seen(art.ID)
		if err != nil {
			p.log.WarnObj("seen lookup failed", "dedupe_error", map[string]any{
				"page":       page,
				"article_id": art.ID,
				"error":      err.Error(),
			})
			out = append(out, art)
			continue
		}
		if seen {
			p.log.DebugObj("skipping seen article", "dedupe_skip", map[string]any{
				"page": page,
				"url":  art.NewsHref,
			})
			continue
		}
		out = append(out, art)
	}
	return out
}

func (p *PageProcessor) markWritten(page int, articles []domain.Article) {
	if p.deduper == nil {
		return
	}
	ids := make([]string, 0, len(articles))
	for _, art := range articles {
		if art.BodyMissing {
			continue
		}
		ids = append(ids, art.ID)
	}
	if len(ids) == 0 {
		return
	}
	if err := p.deduper.Mark(ids...); err != nil {
		p.log.WarnObj("mark articles failed", "dedupe_error", map[string]any{
			"page":  page,
			"count": len(ids),
			"error": err.Error(),
		})
	}
}

func (p *PageProcessor) publish(ctx context.Context, articles []domain.Article) int {
	if p.publisher == nil {
		return 0
	}

	p.mu.Lock()
	runID := p.runID
	p.mu.Unlock()

	published := 0
	for _, art := range articles {
		evt := publishers.NewEvent(runID, p.settings.Source, art)
		n, err := p.publisher.Publish(ctx, evt)
		if err != nil {
			p.log.ErrorObj("publish article failed", "publish_error", map[string]any{
				"article_id": art.ID,
				"url":        art.NewsHref,
				"delivered":  n,
				"error":      err.Error(),
			})
			continue
		}
		if n > 0 {
			published++
		}
	}
	return published
}
