// Package tablestore keeps built dispatch tables in memory, keyed by the
// table digest, so they can be fetched and queried after the build call.
package tablestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/ardanlabs/dispatch/foundation/dispatch"
)

// Set of errors returned by the store.
var (
	ErrNotFound = errors.New("table not found")
	ErrTooLarge = errors.New("table too large to store")
)

// DefaultShards is the number of cache shards used when none is configured.
// A stored table has to fit in a single shard.
const DefaultShards = 8

// expectedTables sizes the cache's initial allocation. Tables are large and
// few compared to the entries bigcache defaults to.
const expectedTables = 1024

// Config represents the settings for the store.
type Config struct {
	LifeWindow       time.Duration // How long a table is kept.
	MaxEntrySize     int           // Expected size of an encoded table in bytes.
	HardMaxCacheSize int           // Upper bound on memory in MB, 0 is unbounded.
	Shards           int           // Number of cache shards, a power of two.
}

// Store holds encoded tables in a bigcache. It is safe for concurrent use.
type Store struct {
	cache    *bigcache.BigCache
	maxEntry int
}

// New constructs a store. The context controls the lifetime of the cache's
// cleanup goroutine.
func New(ctx context.Context, cfg Config) (*Store, error) {
	bcfg := bigcache.DefaultConfig(cfg.LifeWindow)
	bcfg.Verbose = false
	bcfg.MaxEntriesInWindow = expectedTables
	bcfg.HardMaxCacheSize = cfg.HardMaxCacheSize
	bcfg.Shards = DefaultShards
	if cfg.Shards > 0 {
		bcfg.Shards = cfg.Shards
	}
	if cfg.MaxEntrySize > 0 {
		bcfg.MaxEntrySize = cfg.MaxEntrySize
	}

	cache, err := bigcache.New(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("constructing cache: %w", err)
	}

	// With a hard limit each shard gets an equal part of it and an entry
	// can't span shards. Half a shard leaves room for the queue to wrap.
	var maxEntry int
	if bcfg.HardMaxCacheSize > 0 {
		maxEntry = bcfg.HardMaxCacheSize * 1024 * 1024 / bcfg.Shards / 2
	}

	return &Store{cache: cache, maxEntry: maxEntry}, nil
}

// Close releases the cache.
func (s *Store) Close() error {
	return s.cache.Close()
}

// Save stores the table and returns the digest it is stored under. Saving
// the same table twice stores it once.
func (s *Store) Save(tbl dispatch.Table) (string, error) {
	digest, err := tbl.Digest()
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(tbl)
	if err != nil {
		return "", fmt.Errorf("encoding table: %w", err)
	}

	if s.maxEntry > 0 && len(digest)+len(data) > s.maxEntry {
		return "", fmt.Errorf("%w: %d bytes, limit is %d", ErrTooLarge, len(data), s.maxEntry)
	}

	if err := s.cache.Set(digest, data); err != nil {
		return "", fmt.Errorf("storing table %s: %w", digest, err)
	}

	return digest, nil
}

// Get returns the table stored under the digest.
func (s *Store) Get(digest string) (dispatch.Table, error) {
	data, err := s.cache.Get(digest)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return dispatch.Table{}, fmt.Errorf("%w: %s", ErrNotFound, digest)
		}
		return dispatch.Table{}, fmt.Errorf("reading table %s: %w", digest, err)
	}

	var tbl dispatch.Table
	if err := json.Unmarshal(data, &tbl); err != nil {
		return dispatch.Table{}, fmt.Errorf("decoding table %s: %w", digest, err)
	}

	return tbl, nil
}

// Len returns the number of stored tables.
func (s *Store) Len() int {
	return s.cache.Len()
}
