// Package cache is a Badger-backed TTL cache for upstream payloads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

var errCorrupt = errors.New("corrupt cache entry")

// Cache stores JSON-encoded values with a time-to-live.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time
}

// entry wraps a cached value with its fetch time so a shortened TTL
// takes effect on values written under a longer one.
type entry[T any] struct {
	Value     T         `json:"value"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Open opens (or creates) a cache at path.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logging
	opts.CompactL0OnClose = true

	return open(opts, logger)
}

// OpenInMemory opens a cache that lives only as long as the process.
func OpenInMemory(logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Cache, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger cache: %w", err)
	}
	return &Cache{db: db, logger: logger, now: time.Now}, nil
}

// Close flushes and closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get loads the value stored under key.
// Returns nil, nil on a miss or when the value is older than ttl.
func Get[T any](ctx context.Context, c *Cache, key string, ttl time.Duration) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cached entry[T]
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &cached); err != nil {
				return fmt.Errorf("%w: %w", errCorrupt, err)
			}
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if errors.Is(err, errCorrupt) {
		c.logger.Warn("dropping undecodable cache entry", "key", key, "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached %s: %w", key, err)
	}

	if ttl > 0 && c.now().Sub(cached.FetchedAt) > ttl {
		return nil, nil
	}

	return &cached.Value, nil
}

// Set stores value under key. Badger expires the key after ttl.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entry[T]{Value: value, FetchedAt: c.now()})
	if err != nil {
		return fmt.Errorf("marshal cached %s: %w", key, err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// DropPrefix removes every key starting with prefix.
func (c *Cache) DropPrefix(prefix string) error {
	return c.db.DropPrefix([]byte(prefix))
}
