package publishers

import (
	"time"

	"github.com/Adda-Baaj/briefing-harvester/internal/domain"
	"github.com/google/uuid"
)

// Event represents the payload published downstream for one written article.
type Event struct {
	ID          string         `json:"id"`
	RunID       string         `json:"run_id"`
	Source      string         `json:"source"`
	Article     domain.Article `json:"article"`
	CollectedAt time.Time      `json:"collected_at"`
}

// NewEvent constructs an Event for an article collected during runID.
func NewEvent(runID, source string, article domain.Article) Event {
	return Event{
		ID:          uuid.NewString(),
		RunID:       runID,
		Source:      source,
		Article:     article,
		CollectedAt: time.Now().UTC(),
	}
}

// attributes are the string metadata attached to queue/topic messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"source":     e.Source,
		"category":   e.Article.Category,
		"article_id": e.Article.ID,
	}
}
