package translators

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Adda-Baaj/briefing-harvester/pkg/httpclient"
)

const (
	// Supported translator types.
	TypeGoogle = "google"
	TypeLibre  = "libre"
	TypeNone   = "none"

	defaultTimeout = 15 * time.Second
)

// Translator turns text into targetLang. The source language is auto-detected.
type Translator interface {
	Name() string
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Config selects and configures a translator backend.
type Config struct {
	Type      string
	URL       string
	APIKey    string
	Timeout   time.Duration
	UserAgent string
	// Client overrides the HTTP transport; nil builds a resty client.
	Client httpclient.JSONClient
}

func (c Config) client() httpclient.JSONClient {
	if c.Client != nil {
		return c.Client
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return httpclient.NewRestyClient(httpclient.Options{Timeout: timeout, UserAgent: c.UserAgent})
}

// Builder creates a Translator from config.
type Builder func(cfg Config) (Translator, error)

// Registry maps translator types to builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a registry with optional pre-registered builders.
func NewRegistry(builders map[string]Builder) *Registry {
	r := &Registry{builders: make(map[string]Builder)}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// Register associates a builder with a translator type.
func (r *Registry) Register(typ string, builder Builder) {
	if typ = normalizeType(typ); typ == "" || builder == nil {
		return
	}

	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// Build returns the translator for cfg.Type.
func (r *Registry) Build(cfg Config) (Translator, error) {
	typ := normalizeType(cfg.Type)
	if typ == "" {
		return nil, fmt.Errorf("translator type is empty")
	}

	r.mu.RLock()
	builder := r.builders[typ]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no translator registered for type %q", cfg.Type)
	}
	return builder(cfg)
}

// DefaultRegistry wires up known translators.
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]Builder{
		TypeGoogle: NewGoogle,
		TypeLibre:  NewLibre,
		TypeNone:   func(Config) (Translator, error) { return Identity{}, nil },
	})
}

func normalizeType(typ string) string {
	return strings.ToLower(strings.TrimSpace(typ))
}

// Identity returns text unchanged.
type Identity struct{}

func (Identity) Name() string { return TypeNone }
func (Identity) Translate(_ context.Context, text, _ string) (string, error) {
	return text, nil
}
