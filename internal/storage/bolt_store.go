package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	seenBucket       = "seen_articles"
	expiryValueBytes = 8
)

var errBucketMissing = errors.New("seen bucket missing")

// boltStore keeps article IDs with an expiry timestamp in BoltDB.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	ttl             time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

func openBolt(path string, opts Options) (*boltStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(seenBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		ttl:             opts.TTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Seen reports whether id was marked and has not expired yet.
func (b *boltStore) Seen(id string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return false, err
	}

	var seen bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(seenBucket))
		if bucket == nil {
			return errBucketMissing
		}
		expiry, ok := decodeExpiry(bucket.Get([]byte(id)))
		seen = ok && expiry.After(now)
		return nil
	})
	return seen, err
}

// Mark records ids in a single transaction, refreshing their expiry.
func (b *boltStore) Mark(ids ...string) error {
	if b == nil || b.db == nil || len(ids) == 0 {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	buf := make([]byte, expiryValueBytes)
	binary.BigEndian.PutUint64(buf, uint64(now.Add(b.ttl).Unix()))

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(seenBucket))
		if bucket == nil {
			return errBucketMissing
		}
		for _, id := range ids {
			if id == "" {
				continue
			}
			if err := bucket.Put([]byte(id), buf); err != nil {
				return fmt.Errorf("mark %s: %w", id, err)
			}
		}
		return nil
	})
}

// maybeCleanupExpired drops expired IDs at most once per cleanupInterval.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if now.Sub(time.Unix(b.lastCleanup.Load(), 0)) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	if now.Sub(time.Unix(b.lastCleanup.Load(), 0)) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(seenBucket))
		if bucket == nil {
			return errBucketMissing
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			if expiry, ok := decodeExpiry(v); !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) != expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
