package github

import (
	"time"

	"narrativeradar/internal/platform/config"
)

// OptionsFromEnv reads COLLECT_GITHUB_* keys from c. A bare GITHUB_TOKEN is
// used when no token list is set
func OptionsFromEnv(c config.Conf) Options {
	g := c.Prefix("GITHUB_")
	return Options{
		BaseURL:           g.MayURL("BASE_URL", baseURLDefault),
		UserAgent:         g.MayString("USER_AGENT", defaultUA),
		Timeout:           g.MayDuration("TIMEOUT", defaultTimeout),
		TokensCSV:         g.MayString("TOKENS", config.New().MayString("GITHUB_TOKEN", "")),
		MaxRetries:        g.MayInt("MAX_RETRIES", defaultMaxRetry),
		RetryBase:         g.MayDuration("RETRY_BASE", defaultRetryBase),
		RequestsPerSecond: g.MayFloat64("RPS", 2),
		MaxRateWait:       g.MayDuration("MAX_RATE_WAIT", time.Minute),
	}
}
