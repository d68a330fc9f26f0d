// Package cache is the two-tier review cache: an in-process ttlcache in
// front of Redis. Redis failures are logged and counted, never returned, so
// a cache outage degrades to database reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// Config configures a Tiered cache.
type Config struct {
	// LocalTTL caps how long an entry lives in process memory.
	LocalTTL time.Duration
	// LocalCapacity bounds the number of in-process entries; 0 is unbounded.
	LocalCapacity uint64
	// KeyPrefix namespaces Redis keys.
	KeyPrefix string
	Breaker   BreakerConfig
}

// DefaultConfig returns a 1 minute, 10k entry local tier.
func DefaultConfig() Config {
	return Config{
		LocalTTL:      time.Minute,
		LocalCapacity: 10_000,
		KeyPrefix:     "sip_rswc:",
		Breaker:       DefaultBreakerConfig(),
	}
}

// Tiered implements repository.Cache.
type Tiered struct {
	local   *ttlcache.Cache[string, localEntry]
	remote  redis.Cmdable
	breaker *gobreaker.CircuitBreaker[[]byte]
	cfg     Config
	now     func() time.Time
	logger  *slog.Logger
}

// localEntry carries its own deadline: ttlcache extends an item's TTL on
// every hit, which would keep a hot entry alive forever.
type localEntry struct {
	data     []byte
	deadline time.Time
}

// New creates a cache. remote may be nil, in which case only the local tier
// is used. Call Start to run local expiry and Stop on shutdown.
func New(remote redis.Cmdable, cfg Config, logger *slog.Logger) *Tiered {
	if cfg.LocalTTL <= 0 {
		cfg.LocalTTL = time.Minute
	}
	opts := []ttlcache.Option[string, localEntry]{
		ttlcache.WithTTL[string, localEntry](cfg.LocalTTL),
	}
	if cfg.LocalCapacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, localEntry](cfg.LocalCapacity))
	}

	return &Tiered{
		local:   ttlcache.New[string, localEntry](opts...),
		remote:  remote,
		breaker: newBreaker[[]byte]("redis-review-cache", cfg.Breaker, logger),
		cfg:     cfg,
		now:     time.Now,
		logger:  logger,
	}
}

// Start runs the local expiry loop until Stop is called.
func (c *Tiered) Start() {
	go c.local.Start()
}

// Stop ends the local expiry loop.
func (c *Tiered) Stop() {
	c.local.Stop()
}

// Get decodes the value of key into dst, trying the local tier then Redis.
// A Redis hit is copied into the local tier. Only a corrupt entry yields an error.
func (c *Tiered) Get(ctx context.Context, key string, dst any) (bool, error) {
	if data, ok := c.localGet(key); ok {
		cacheRequests.WithLabelValues(tierLocal, resultHit).Inc()
		return true, c.decode(key, data, dst)
	}
	cacheRequests.WithLabelValues(tierLocal, resultMiss).Inc()

	if c.remote == nil {
		return false, nil
	}

	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.remote.Get(ctx, c.cfg.KeyPrefix+key).Bytes()
	})
	switch {
	case errors.Is(err, redis.Nil):
		cacheRequests.WithLabelValues(tierRemote, resultMiss).Inc()
		return false, nil
	case err != nil:
		c.remoteFailed(ctx, "get", key, err)
		return false, nil
	}

	cacheRequests.WithLabelValues(tierRemote, resultHit).Inc()
	if err := c.decode(key, data, dst); err != nil {
		return false, err
	}
	c.localSet(key, data, c.cfg.LocalTTL)
	return true, nil
}

// Set stores value in both tiers. The local copy lives for at most LocalTTL.
func (c *Tiered) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}

	c.localSet(key, data, min(ttl, c.cfg.LocalTTL))

	if c.remote == nil {
		return nil
	}
	if _, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.remote.Set(ctx, c.cfg.KeyPrefix+key, data, ttl).Err()
	}); err != nil {
		c.remoteFailed(ctx, "set", key, err)
	}
	return nil
}

// Delete removes keys from both tiers.
func (c *Tiered) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	remoteKeys := make([]string, len(keys))
	for i, k := range keys {
		c.local.Delete(k)
		remoteKeys[i] = c.cfg.KeyPrefix + k
	}

	if c.remote == nil {
		return nil
	}
	if _, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.remote.Del(ctx, remoteKeys...).Err()
	}); err != nil {
		c.remoteFailed(ctx, "delete", keys[0], err)
	}
	return nil
}

// Ping checks Redis for the readiness probe. It bypasses the breaker.
func (c *Tiered) Ping(ctx context.Context) error {
	if c.remote == nil {
		return nil
	}
	return c.remote.Ping(ctx).Err()
}

// BreakerState reports the state of the Redis circuit breaker.
func (c *Tiered) BreakerState() gobreaker.State {
	return c.breaker.State()
}

func (c *Tiered) localGet(key string) ([]byte, bool) {
	item := c.local.Get(key)
	if item == nil {
		return nil, false
	}
	entry := item.Value()
	if !c.now().Before(entry.deadline) {
		c.local.Delete(key)
		return nil, false
	}
	return entry.data, true
}

func (c *Tiered) localSet(key string, data []byte, ttl time.Duration) {
	c.local.Set(key, localEntry{data: data, deadline: c.now().Add(ttl)}, ttl)
}

func (c *Tiered) decode(key string, data []byte, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		c.local.Delete(key)
		return fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return nil
}

func (c *Tiered) remoteFailed(ctx context.Context, op, key string, err error) {
	cacheRequests.WithLabelValues(tierRemote, resultError).Inc()
	c.logger.WarnContext(ctx, "review cache unavailable",
		slog.String("op", op),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}
