package publishers

import "context"

// Publisher sends events to a downstream sink (queue, topic, index or webhook).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// closer is implemented by publishers holding connections.
type closer interface {
	Close() error
}
