package store

import (
	"time"

	"narrativeradar/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG  PGConfig
	CH  CHConfig
	RDS RedisConfig
}

// PGConfig configures the snapshot database
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures the score history database
type CHConfig struct {
	Enabled bool
	URL     string
}

// RedisConfig configures the result cache
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// Defaults for the Postgres boot loop
const (
	DefaultConnectRetries = 20
	DefaultPingTimeout    = 3 * time.Second
)

// ConfigFromEnv reads STORE_* below c. A backend whose URL or address is set
// is enabled unless its ENABLED key says otherwise
func ConfigFromEnv(c config.Conf) Config {
	c = c.Prefix("STORE_")
	pgURL := c.MayString("PG_URL", "")
	chURL := c.MayString("CH_URL", "")
	rdsAddr := c.MayString("REDIS_ADDR", "")

	return Config{
		AppName: c.MayString("APP_NAME", "narrativeradar"),
		PG: PGConfig{
			Enabled:        c.MayBool("PG_ENABLED", pgURL != ""),
			URL:            pgURL,
			MaxConns:       int32(c.MayInt("PG_MAX_CONNS", 4)),
			LogSQL:         c.MayBool("PG_LOG_SQL", false),
			SlowQueryMs:    c.MayInt("PG_SLOW_MS", 250),
			ConnectRetries: c.MayInt("PG_CONNECT_RETRIES", DefaultConnectRetries),
			PingTimeout:    c.MayDuration("PG_PING_TIMEOUT", DefaultPingTimeout),
		},
		CH: CHConfig{
			Enabled: c.MayBool("CH_ENABLED", chURL != ""),
			URL:     chURL,
		},
		RDS: RedisConfig{
			Enabled:  c.MayBool("REDIS_ENABLED", rdsAddr != ""),
			Addr:     rdsAddr,
			Password: c.MayString("REDIS_PASSWORD", ""),
			DB:       c.MayInt("REDIS_DB", 0),
		},
	}
}
