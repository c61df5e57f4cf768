package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by stores when the key is absent.
var ErrCacheMiss = errors.New("cache: miss")

// Entry is a cached value with the moment it was stored. Freshness is
// decided by the Cache, not by the store.
type Entry struct {
	Value    json.RawMessage `json:"value"`
	StoredAt time.Time       `json:"stored_at"`
}

type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Cache is the single caching abstraction of the service: key, value,
// stored-at timestamp and one freshness predicate, shared by every
// screen instead of ad hoc TTL checks.
type Cache struct {
	store     Store
	freshness time.Duration

	// now is swappable in tests.
	now func() time.Time
}

func New(store Store, freshness time.Duration) *Cache {
	return &Cache{
		store:     store,
		freshness: freshness,
		now:       time.Now,
	}
}

// Fresh reports whether the entry is inside the freshness window.
func (c *Cache) Fresh(entry *Entry) bool {
	if entry == nil {
		return false
	}
	return c.now().Sub(entry.StoredAt) < c.freshness
}

// GetFresh unmarshals the cached value into dest and reports true only
// when the entry exists and is still fresh. A stale or missing entry
// means the caller must re-fetch.
func (c *Cache) GetFresh(ctx context.Context, key string, dest any) bool {
	entry, err := c.store.Get(ctx, key)
	if err != nil {
		return false
	}
	if !c.Fresh(entry) {
		return false
	}
	if err := json.Unmarshal(entry.Value, dest); err != nil {
		return false
	}
	return true
}

func (c *Cache) Put(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := &Entry{
		Value:    raw,
		StoredAt: c.now(),
	}
	// Keep the entry around for twice the freshness window so a stale
	// hit can still be observed and logged before eviction.
	return c.store.Set(ctx, key, entry, c.freshness*2)
}

func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// --- Redis store ---

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, raw, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// --- In-memory store (tests and single-node fallback) ---

type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return entry, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, entry *Entry, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
