package module

import (
	"narrativeradar/internal/adapters/collect/breaker"
	"narrativeradar/internal/adapters/collect/defillama"
	"narrativeradar/internal/adapters/collect/github"
	"narrativeradar/internal/adapters/collect/social"
	"narrativeradar/internal/adapters/collect/solanarpc"
	"narrativeradar/internal/core/catalog"
	"narrativeradar/internal/platform/config"
	dom "narrativeradar/internal/services/narratives/domain"
)

// Collectors builds the enabled collectors from COLLECT_* keys. Every
// upstream call goes through br
func Collectors(cfg config.Conf, cat *catalog.Catalog, br *breaker.Manager) dom.Collectors {
	c := cfg.Prefix("COLLECT_")
	var cols dom.Collectors
	if c.MayBool("GITHUB_ENABLED", true) {
		client := github.NewClient(github.OptionsFromEnv(c))
		cols.GitHub = github.NewCollector(client, cat.Probes, github.WithBreakers(br))
	}
	if c.MayBool("DEFILLAMA_ENABLED", true) {
		var opts []defillama.Option
		if c.MayBool("SOLANA_RPC_ENABLED", true) {
			opts = append(opts, defillama.WithNetwork(solanarpc.FromEnv(c, solanarpc.WithBreakers(br))))
		}
		cols.DeFi = defillama.New(defillama.OptionsFromEnv(c), append(opts, defillama.WithBreakers(br))...)
	}
	if c.MayBool("SOCIAL_ENABLED", true) {
		cols.Social = social.New(social.OptionsFromEnv(c), social.WithBreakers(br))
	}
	return cols
}

// BreakerStatuses adapts the breaker manager to the health report
func BreakerStatuses(br *breaker.Manager) func() []dom.BreakerStatus {
	return func() []dom.BreakerStatus {
		st := br.Status()
		out := make([]dom.BreakerStatus, 0, len(st))
		for _, s := range st {
			out = append(out, dom.BreakerStatus{
				Name:                s.Name,
				State:               s.State,
				ConsecutiveFailures: s.ConsecutiveFailures,
				TotalFailures:       s.TotalFailures,
			})
		}
		return out
	}
}
