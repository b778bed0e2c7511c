package crawler

import (
	"testing"
)

const listingHTML = `
<html><body>
<div class="briefing-news">
  <h3><a href="/news/tariff-update/">  China   Tariff
  Update </a></h3>
  <time class="entry-date">March 1, 2024</time>
  <p>Posted by Dezan Shira</p>
  <p>New tariff   rules take effect.</p>
</div>
<div class="briefing-news">
  <a href="https://www.china-briefing.com/news/vat-changes/">VAT Changes</a>
  <p>Only one paragraph.</p>
</div>
<div class="briefing-news"><span>no link here</span></div>
<div class="briefing-news"><a href="/news/tariff-update/">Repeated</a></div>
</body></html>`

func TestPageURL(t *testing.T) {
	cases := []struct {
		base, category string
		page           int
		want           string
	}{
		{"https://www.china-briefing.com", "economy-trade", 1, "https://www.china-briefing.com/news/category/economy-trade/"},
		{"https://www.china-briefing.com/", "/economy-trade/", 2, "https://www.china-briefing.com/news/category/economy-trade/page/2"},
		{"https://example.com", "tax", 0, "https://example.com/news/category/tax/"},
	}
	for _, tc := range cases {
		if got := PageURL(tc.base, tc.category, tc.page); got != tc.want {
			t.Fatalf("PageURL(%q, %q, %d) = %q, want %q", tc.base, tc.category, tc.page, got, tc.want)
		}
	}
}

func TestParseListingExtractsItems(t *testing.T) {
	pageURL := "https://www.china-briefing.com/news/category/economy-trade/"
	articles, err := parseListing([]byte(listingHTML), pageURL)
	if err != nil {
		t.Fatalf("parseListing: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d: %#v", len(articles), articles)
	}

	first := articles[0]
	if first.Title != "China Tariff Update" {
		t.Fatalf("title = %q", first.Title)
	}
	if first.NewsDate != "March 1, 2024" {
		t.Fatalf("news date = %q", first.NewsDate)
	}
	if first.NewsHref != "https://www.china-briefing.com/news/tariff-update/" {
		t.Fatalf("href = %q", first.NewsHref)
	}
	if first.ShortText != "New tariff rules take effect." {
		t.Fatalf("short text = %q", first.ShortText)
	}
	if first.ID == "" || first.ID != hashURL(first.NewsHref) {
		t.Fatalf("id not derived from href: %q", first.ID)
	}

	second := articles[1]
	if second.ShortText != "Only one paragraph." {
		t.Fatalf("expected fallback to first paragraph, got %q", second.ShortText)
	}
	if second.NewsDate != "" {
		t.Fatalf("expected empty date, got %q", second.NewsDate)
	}
}

func TestParseArticleBodyJoinsParagraphsAndListItems(t *testing.T) {
	html := []byte(`
<div class="article-content post-content">
  <p>First  paragraph.</p>
  <ul><li>Item one</li><li>  </li></ul>
  <p>Last.</p>
</div>
<p>Outside body.</p>`)

	text, found, err := parseArticleBody(html)
	if err != nil {
		t.Fatalf("parseArticleBody: %v", err)
	}
	if !found {
		t.Fatalf("expected article body container to be found")
	}
	if text != "First paragraph. Item one Last." {
		t.Fatalf("text = %q", text)
	}
}

func TestParseArticleBodyMissingContainer(t *testing.T) {
	text, found, err := parseArticleBody([]byte(`<div class="article-content"><p>x</p></div>`))
	if err != nil {
		t.Fatalf("parseArticleBody: %v", err)
	}
	if found || text != "" {
		t.Fatalf("expected not found, got found=%v text=%q", found, text)
	}
}

func TestResolveURLHandlesRelative(t *testing.T) {
	got := resolveURL("/news/a/", "https://www.china-briefing.com/news/category/tax/")
	if got != "https://www.china-briefing.com/news/a/" {
		t.Fatalf("resolveURL got %q", got)
	}
	if got := resolveURL("https://other.com/x", "https://www.china-briefing.com"); got != "https://other.com/x" {
		t.Fatalf("absolute url changed: %q", got)
	}
	if got := resolveURL("", "https://example.com"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestCleanText(t *testing.T) {
	if got := cleanText("  a \n\t b  c "); got != "a b c" {
		t.Fatalf("cleanText got %q", got)
	}
}
