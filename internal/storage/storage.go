package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage remembers which articles were already written so later runs
// can skip them.

// Store tracks written article IDs.
type Store interface {
	Close() error
	Seen(id string) (bool, error)
	Mark(ids ...string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

const (
	TypeBBolt  = "bbolt"
	TypeSQLite = "sqlite"
	TypeNone   = "none"

	defaultTTL             = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		store, err := openBolt(path, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	case TypeSQLite:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("sqlite storage requires a path")
		}
		store, err := openSQLite(path, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error              { return nil }
func (noopStore) Seen(string) (bool, error) { return false, nil }
func (noopStore) Mark(...string) error      { return nil }
