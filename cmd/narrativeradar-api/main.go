// Command narrativeradar-api serves the narratives dashboard, JSON API and
// live stream
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"narrativeradar/internal/modkit"
	"narrativeradar/internal/modkit/module"
	"narrativeradar/internal/platform/config"
	"narrativeradar/internal/platform/logger"
	"narrativeradar/internal/platform/metrics"
	phttp "narrativeradar/internal/platform/net/http"
	"narrativeradar/internal/platform/net/middleware"
	"narrativeradar/internal/platform/store"
	dom "narrativeradar/internal/services/narratives/domain"
	narrmod "narrativeradar/internal/services/narratives/module"

	"github.com/go-chi/chi/v5"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logger.Get().Fatal().Err(err).Msg("load .env")
	}
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.ConfigFromEnv(root), store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	reg := metrics.New()
	srv := phttp.NewServer(apiCfg, func(m *chi.Mux) {
		m.Use(middleware.Defaults(middleware.AccessLogOptions{
			Slow: apiCfg.MayDuration("SLOW_REQUEST", 2*time.Second),
			Skip: []string{"/health", "/metrics"},
		})...)
		m.Use(middleware.Instrument(reg))
		m.Use(middleware.CORS(middleware.CORSOptions{
			AllowedOrigins: apiCfg.MayCSV("CORS_ORIGINS", nil),
			MaxAge:         300,
		}))
	})
	phttp.MountProfiler(srv.Router(), "/debug", apiCfg.MayBool("PROFILER", false))

	mod, err := narrmod.New(modkit.Deps{Log: *l, Cfg: root, Store: st, Metrics: reg})
	if err != nil {
		l.Fatal().Err(err).Msg("narratives module")
	}
	module.RegisterModule(mod)
	mod.MountRoutes(srv.Router())
	if c, ok := mod.(interface{ Close() }); ok {
		defer c.Close()
	}

	// first run in the background so the dashboard is warm
	if root.Prefix("NARRATIVE_").MayBool("WARM_START", true) {
		svc := module.MustPortsOf[dom.ServicePort](mod)
		go func() {
			if _, err := svc.Run(ctx, false); err != nil {
				l.Warn().Err(err).Msg("warm start run failed")
			}
		}()
	}

	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("http server stopped")
	}
}
