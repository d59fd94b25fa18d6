package defillama

import (
	"time"

	"narrativeradar/internal/adapters/collect/rest"
	"narrativeradar/internal/platform/config"
)

// OptionsFromEnv reads COLLECT_DEFILLAMA_* keys from c
func OptionsFromEnv(c config.Conf) Options {
	d := c.Prefix("DEFILLAMA_")
	return Options{
		BaseURL:        d.MayURL("BASE_URL", baseURLDefault),
		StablecoinsURL: d.MayURL("STABLECOINS_URL", stablecoinsURLDefault),
		HTTP: rest.Options{
			Timeout:    d.MayDuration("TIMEOUT", 45*time.Second),
			RetryCount: d.MayInt("RETRIES", 1),
		},
	}
}
