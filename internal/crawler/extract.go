package crawler

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/Adda-Baaj/briefing-harvester/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

const (
	listingItemSelector = "div.briefing-news"
	listingDateSelector = "time.entry-date"
	articleBodySelector = "div.article-content.post-content"
	articleTextSelector = "p, li"
)

// PageURL builds the listing URL for a category page. Page 1 has no /page/ suffix.
func PageURL(baseURL, category string, page int) string {
	base := strings.TrimRight(baseURL, "/")
	category = strings.Trim(category, "/")
	if page <= 1 {
		return fmt.Sprintf("%s/news/category/%s/", base, category)
	}
	return fmt.Sprintf("%s/news/category/%s/page/%d", base, category, page)
}

// parseListing extracts partial articles (no main text yet) from a listing page.
// Items without a link are skipped, and repeated links keep their first occurrence.
func parseListing(body []byte, pageURL string) ([]domain.Article, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	var articles []domain.Article
	seen := make(map[string]struct{})
	doc.Find(listingItemSelector).Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a").First()
		href, _ := link.Attr("href")
		href = resolveURL(strings.TrimSpace(href), pageURL)
		if href == "" {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}

		articles = append(articles, domain.Article{
			ID:        hashURL(href),
			Title:     cleanText(link.Text()),
			NewsDate:  cleanText(item.Find(listingDateSelector).First().Text()),
			NewsHref:  href,
			ShortText: shortText(item),
		})
	})
	return articles, nil
}

// shortText takes the second paragraph of a listing item, falling back to the
// first when the item has only one.
func shortText(item *goquery.Selection) string {
	paragraphs := item.Find("p")
	switch {
	case paragraphs.Length() >= 2:
		return cleanText(paragraphs.Eq(1).Text())
	case paragraphs.Length() == 1:
		return cleanText(paragraphs.First().Text())
	default:
		return ""
	}
}

// parseArticleBody joins the text of every <p> and <li> in the article body.
// found is false when the page has no article body container.
func parseArticleBody(body []byte) (text string, found bool, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("parse article html: %w", err)
	}

	container := doc.Find(articleBodySelector).First()
	if container.Length() == 0 {
		return "", false, nil
	}

	var parts []string
	container.Find(articleTextSelector).Each(func(_ int, el *goquery.Selection) {
		if t := cleanText(el.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " "), true, nil
}

// cleanText trims and collapses inner whitespace runs to single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolveURL(raw, base string) string {
	if raw == "" {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return b.ResolveReference(ref).String()
}

func hashURL(u string) string {
	sum := sha1.Sum([]byte(u))
	return hex.EncodeToString(sum[:])
}
