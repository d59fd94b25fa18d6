package repo

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"narrativeradar/internal/platform/logger"
	dom "narrativeradar/internal/services/narratives/domain"

	"github.com/go-redis/redis/v8"
)

// DefaultTTL matches the hourly refresh cadence of the upstream sources
const DefaultTTL = time.Hour

// Memory holds one result with the time it was stored
type Memory struct {
	mu    sync.RWMutex
	value dom.Result
	at    time.Time
	set   bool
	ttl   time.Duration
	now   func() time.Time
}

var _ dom.Cache = (*Memory)(nil)

// NewMemory returns an empty in-process cache
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, now: time.Now}
}

// Get returns the stored result while it is younger than the TTL
func (m *Memory) Get(context.Context) (dom.Result, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.set || m.now().Sub(m.at) >= m.ttl {
		return dom.Result{}, false
	}
	return m.value, true
}

// Set replaces the stored result
func (m *Memory) Set(_ context.Context, r dom.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.at, m.set = r, m.now(), true
}

// Redis shares the last result between replicas. Redis errors read as misses
type Redis struct {
	rds *redis.Client
	key string
	ttl time.Duration
	log logger.Logger
}

var _ dom.Cache = (*Redis)(nil)

// NewRedis stores the result under key with ttl expiry
func NewRedis(rds *redis.Client, key string, ttl time.Duration) *Redis {
	if key == "" {
		key = "narrativeradar:result"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{rds: rds, key: key, ttl: ttl, log: *logger.Named("cache.redis")}
}

// Get loads and decodes the cached result
func (r *Redis) Get(ctx context.Context) (dom.Result, bool) {
	b, err := r.rds.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return dom.Result{}, false
	}
	if err != nil {
		r.log.Warn().Err(err).Msg("redis cache get failed")
		return dom.Result{}, false
	}
	var res dom.Result
	if err := json.Unmarshal(b, &res); err != nil {
		r.log.Warn().Err(err).Msg("redis cache entry undecodable")
		return dom.Result{}, false
	}
	return res, true
}

// Set encodes and stores res with the TTL
func (r *Redis) Set(ctx context.Context, res dom.Result) {
	b, err := json.Marshal(res)
	if err != nil {
		r.log.Warn().Err(err).Msg("redis cache encode failed")
		return
	}
	if err := r.rds.Set(ctx, r.key, b, r.ttl).Err(); err != nil {
		r.log.Warn().Err(err).Msg("redis cache set failed")
	}
}
