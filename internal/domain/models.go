package domain

// Domain contains core models shared by the crawler, translator and sinks.

const (
	DefaultCountry  = "China"
	DefaultCategory = "economy-trade"
)

// Article is one scraped news item. Only the translator sets the *Translated fields.
type Article struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	NewsDate            string `json:"news_date"`
	NewsHref            string `json:"news_href"`
	ShortText           string `json:"news_short_text"`
	MainText            string `json:"news_main_text"`
	Country             string `json:"country"`
	Category            string `json:"category"`
	ShortTextTranslated string `json:"news_short_text_translated,omitempty"`
	MainTextTranslated  string `json:"news_main_text_translated,omitempty"`

	// BodyMissing is set when the article page could not be fetched. Such
	// articles are written but never marked seen, so a later run retries them.
	BodyMissing bool `json:"-"`
}

// WithDefaults fills country and category when the extractor left them empty.
func (a Article) WithDefaults(country, category string) Article {
	if a.Country == "" {
		a.Country = country
	}
	if a.Country == "" {
		a.Country = DefaultCountry
	}
	if a.Category == "" {
		a.Category = category
	}
	if a.Category == "" {
		a.Category = DefaultCategory
	}
	return a
}
