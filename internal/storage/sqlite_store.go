package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteStore keeps article IDs with an expiry timestamp in a SQLite table.
type sqliteStore struct {
	db              *sql.DB
	ttl             time.Duration
	cleanupInterval time.Duration
	now             func() time.Time

	mu          sync.Mutex
	lastCleanup time.Time
}

func openSQLite(path string, opts Options) (*sqliteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// go-sqlite3 serializes writers; one connection avoids "database is locked".
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS seen_articles (
		id TEXT PRIMARY KEY,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS seen_articles_expires_at ON seen_articles (expires_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	store := &sqliteStore{
		db:              db,
		ttl:             opts.TTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup = store.now()
	return store, nil
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Seen reports whether id was marked and has not expired yet.
func (s *sqliteStore) Seen(id string) (bool, error) {
	now := s.now()
	if err := s.maybeCleanupExpired(now); err != nil {
		return false, err
	}

	var expiresAt int64
	err := s.db.QueryRow(`SELECT expires_at FROM seen_articles WHERE id = ?`, id).Scan(&expiresAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", id, err)
	}
	return expiresAt > now.Unix(), nil
}

// Mark records ids in a single transaction, refreshing their expiry.
func (s *sqliteStore) Mark(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	now := s.now()
	if err := s.maybeCleanupExpired(now); err != nil {
		return err
	}
	expiresAt := now.Add(s.ttl).Unix()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin mark: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO seen_articles (id, expires_at) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET expires_at = excluded.expires_at`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare mark: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := stmt.Exec(id, expiresAt); err != nil {
			tx.Rollback()
			return fmt.Errorf("mark %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// maybeCleanupExpired drops expired IDs at most once per cleanupInterval.
func (s *sqliteStore) maybeCleanupExpired(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return nil
	}
	if _, err := s.db.Exec(`DELETE FROM seen_articles WHERE expires_at <= ?`, now.Unix()); err != nil {
		return fmt.Errorf("cleanup expired: %w", err)
	}
	s.lastCleanup = now
	return nil
}
