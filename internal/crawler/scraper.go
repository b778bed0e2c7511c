package crawler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Adda-Baaj/briefing-harvester/internal/domain"
	"github.com/Adda-Baaj/briefing-harvester/internal/logger"
	"github.com/Adda-Baaj/briefing-harvester/pkg/httpclient"
)

const (
	maxHTMLBodyBytes = 4 << 20 // 4 MiB
)

// ScraperOptions configures where and how listing pages are fetched.
type ScraperOptions struct {
	BaseURL      string
	Category     string
	Headers      map[string]string
	RequestDelay time.Duration
}

// Scraper fetches listing pages and article bodies from the news site.
type Scraper struct {
	client httpclient.Client
	opts   ScraperOptions
	log    logger.Logger
}

// NewScraper constructs a scraper with the provided HTTP client.
func NewScraper(client httpclient.Client, opts ScraperOptions, log logger.Logger) *Scraper {
	if client == nil {
		client = httpclient.NewRestyClient(httpclient.Options{Timeout: 15 * time.Second})
	}
	if opts.Headers == nil {
		opts.Headers = map[string]string{"Accept": "text/html,application/xhtml+xml"}
	}
	return &Scraper{client: client, opts: opts, log: logger.Ensure(log)}
}

// ScrapePage returns the articles of one listing page with their main text filled in.
func (s *Scraper) ScrapePage(ctx context.Context, page int) ([]domain.Article, error) {
	pageURL := PageURL(s.opts.BaseURL, s.opts.Category, page)

	body, err := s.download(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing page %d: %w", page, err)
	}

	articles, err := parseListing(body, pageURL)
	if err != nil {
		return nil, fmt.Errorf("listing page %d: %w", page, err)
	}
	s.log.DebugObj("listing page parsed", "listing_meta", map[string]any{
		"page":     page,
		"url":      pageURL,
		"articles": len(articles),
	})

	return s.Enrich(ctx, articles), nil
}

// Enrich fetches each article page (with throttling) and fills in its main text.
// A failed article keeps an empty main text and is flagged BodyMissing. On
// cancellation only the articles fully enriched so far are returned.
func (s *Scraper) Enrich(ctx context.Context, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, 0, len(articles))

	for i, art := range articles {
		select {
		case <-ctx.Done():
			return out
		default:
		}

		text, err := s.fetchMainText(ctx, art.NewsHref)
		if err != nil {
			if ctx.Err() != nil {
				return out
			}
			s.log.WarnObj("article body scrape failed", "article_error", map[string]any{
				"url":   art.NewsHref,
				"error": err.Error(),
			})
			art.BodyMissing = true
		}
		art.MainText = text
		out = append(out, art)

		if s.opts.RequestDelay > 0 && i < len(articles)-1 {
			timer := time.NewTimer(s.opts.RequestDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return out
			case <-timer.C:
			}
		}
	}

	return out
}

func (s *Scraper) fetchMainText(ctx context.Context, articleURL string) (string, error) {
	body, err := s.download(ctx, articleURL)
	if err != nil {
		return "", err
	}

	text, found, err := parseArticleBody(body)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("article body %q not found", articleBodySelector)
	}
	return text, nil
}

func (s *Scraper) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := s.client.Get(ctx, url, s.opts.Headers)
	if err != nil {
		return nil, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("status %d body: %s", resp.StatusCode(), httpclient.BodySnippet(resp.Body()))
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	return body, nil
}
