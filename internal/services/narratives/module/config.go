package module

import (
	"time"

	"narrativeradar/internal/adapters/collect/breaker"
	"narrativeradar/internal/platform/config"
	"narrativeradar/internal/services/narratives/repo"
)

// Backend choices. Auto picks the store backend when it is open
const (
	BackendAuto   = "auto"
	BackendFile   = "file"
	BackendPG     = "pg"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options holds the narratives module settings
type Options struct {
	SnapshotDir     string
	SnapshotBackend string
	CacheBackend    string
	CacheTTL        time.Duration
	CacheKey        string
	History         bool
	RefreshToken    string
	RunTimeout      time.Duration
	APITimeout      time.Duration
	StreamOrigins   []string
	Breaker         breaker.Settings
}

// FromConfig reads NARRATIVE_* keys
func FromConfig(cfg config.Conf) Options {
	n := cfg.Prefix("NARRATIVE_")
	return Options{
		SnapshotDir:     n.MayString("SNAPSHOT_DIR", "data/snapshots"),
		SnapshotBackend: n.MayEnum("SNAPSHOT_BACKEND", BackendAuto, BackendAuto, BackendFile, BackendPG),
		CacheBackend:    n.MayEnum("CACHE_BACKEND", BackendAuto, BackendAuto, BackendMemory, BackendRedis),
		CacheTTL:        n.MayDuration("CACHE_TTL", repo.DefaultTTL),
		CacheKey:        n.MayString("CACHE_KEY", ""),
		History:         n.MayBool("HISTORY", true),
		RefreshToken:    n.MayString("REFRESH_TOKEN", ""),
		RunTimeout:      n.MayDuration("RUN_TIMEOUT", 2*time.Minute),
		APITimeout:      n.MayDuration("API_TIMEOUT", 3*time.Minute),
		StreamOrigins:   n.MayCSV("STREAM_ORIGINS", nil),
		Breaker: breaker.Settings{
			Interval:    n.MayDuration("BREAKER_INTERVAL", breaker.DefaultSettings.Interval),
			Timeout:     n.MayDuration("BREAKER_TIMEOUT", breaker.DefaultSettings.Timeout),
			Trip:        uint32(n.MayInt("BREAKER_TRIP", int(breaker.DefaultSettings.Trip))),
			HalfOpenMax: breaker.DefaultSettings.HalfOpenMax,
		},
	}
}
