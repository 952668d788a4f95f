package docket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// WindowStore records hits in a sliding window per key. Hit records a
// hit at now unless limit hits already fall within (now-window, now];
// a rejected hit is not recorded and retryAfter says when the oldest
// hit leaves the window.
type WindowStore interface {
	Hit(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (allowed bool, retryAfter time.Duration, err error)
	Close() error
}

// MemoryWindowStore keeps windows in process memory. Counts are lost on
// restart and are not shared between instances.
type MemoryWindowStore struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	window time.Duration
	stop   chan struct{}
	once   sync.Once
}

// NewMemoryWindowStore creates a store that prunes idle keys every window.
func NewMemoryWindowStore(window time.Duration) *MemoryWindowStore {
	s := &MemoryWindowStore{
		hits:   make(map[string][]time.Time),
		window: window,
		stop:   make(chan struct{}),
	}
	go s.cleanup()
	return s
}

func (s *MemoryWindowStore) cleanup() {
	ticker := time.NewTicker(s.window)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.prune(now)
		}
	}
}

func (s *MemoryWindowStore) prune(now time.Time) {
	cutoff := now.Add(-s.window)
	s.mu.Lock()
	for key, hits := range s.hits {
		kept := within(hits, cutoff)
		if len(kept) == 0 {
			delete(s.hits, key)
		} else {
			s.hits[key] = kept
		}
	}
	s.mu.Unlock()
}

// within drops hits at or before cutoff, reusing the backing array.
func within(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Hit implements WindowStore.
func (s *MemoryWindowStore) Hit(_ context.Context, key string, now time.Time, window time.Duration, limit int) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := within(s.hits[key], now.Add(-window))
	if len(kept) >= limit {
		s.hits[key] = kept
		return false, kept[0].Add(window).Sub(now), nil
	}
	s.hits[key] = append(kept, now)
	return true, 0, nil
}

// Len reports the number of tracked keys.
func (s *MemoryWindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hits)
}

// Close stops the pruning goroutine.
func (s *MemoryWindowStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

// slidingWindow trims the sorted set to the window, then adds a member
// scored at now unless the set is full. It returns {allowed, retryAfterMs}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  local retry = window
  if oldest[2] then
    retry = tonumber(oldest[2]) + window - now
  end
  return {0, retry}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, 0}
`)

// RedisWindowStore keeps windows in Redis sorted sets so every instance
// behind a load balancer shares the same counts.
type RedisWindowStore struct {
	client *redis.Client
	prefix string
	owned  bool
}

// NewRedisWindowStore uses client; keys are namespaced with prefix.
func NewRedisWindowStore(client *redis.Client, prefix string) *RedisWindowStore {
	return &RedisWindowStore{client: client, prefix: prefix}
}

// OpenRedisWindowStore connects to the Redis server at url, e.g.
// "redis://localhost:6379/0", and checks the connection.
func OpenRedisWindowStore(ctx context.Context, url string) (*RedisWindowStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	s := NewRedisWindowStore(client, "docket:ratelimit:")
	s.owned = true
	return s, nil
}

// Hit implements WindowStore.
func (s *RedisWindowStore) Hit(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, time.Duration, error) {
	res, err := slidingWindow.Run(ctx, s.client, []string{s.prefix + key},
		now.UnixMilli(), window.Milliseconds(), limit, uuid.NewString()).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate window %s: %w", key, err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("rate window %s: unexpected reply %v", key, res)
	}
	return res[0] == 1, time.Duration(res[1]) * time.Millisecond, nil
}

// Close closes the client if the store opened it.
func (s *RedisWindowStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

// RateLimiter allows limit events per key in any sliding window.
type RateLimiter struct {
	store  WindowStore
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter creates a RateLimiter backed by store.
func NewRateLimiter(store WindowStore, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{store: store, limit: limit, window: window, now: time.Now}
}

// Allow records an event for key and reports whether it is within the
// limit. When it is not, retryAfter is at least one second.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	ok, retry, err := l.store.Hit(ctx, key, l.now(), l.window, l.limit)
	if err != nil || ok {
		return ok, 0, err
	}
	if retry < time.Second {
		retry = time.Second
	}
	return false, retry, nil
}
