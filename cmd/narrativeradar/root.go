package main

import (
	"context"
	"fmt"

	"narrativeradar/internal/modkit"
	"narrativeradar/internal/modkit/module"
	"narrativeradar/internal/platform/config"
	"narrativeradar/internal/platform/logger"
	"narrativeradar/internal/platform/store"
	dom "narrativeradar/internal/services/narratives/domain"
	narrmod "narrativeradar/internal/services/narratives/module"

	"github.com/spf13/cobra"
)

// Execute builds the command tree and runs it under ctx
func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:           "narrativeradar",
		Short:         "Solana narrative radar",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(scanCmd())
	root.AddCommand(snapshotsCmd())
	root.AddCommand(catalogCmd())
	root.AddCommand(versionCmd())
	return root.ExecuteContext(ctx)
}

// session is an opened store plus the narratives module built on it
type session struct {
	svc   dom.ServicePort
	close func()
}

// open loads .env, opens the configured stores and builds the module the
// same way the API server does
func open(ctx context.Context) (*session, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	root := config.New()
	l := logger.Get()

	st, err := store.Open(ctx, store.ConfigFromEnv(root), store.WithLogger(*l))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	mod, err := narrmod.NewWith(modkit.Deps{Log: *l, Cfg: root, Store: st}, narrmod.FromConfig(root))
	if err != nil {
		_ = st.Close(context.Background())
		return nil, fmt.Errorf("narratives module: %w", err)
	}
	return &session{
		svc: module.MustPortsOf[dom.ServicePort](mod),
		close: func() {
			mod.Close()
			if err := st.Close(context.Background()); err != nil {
				l.Warn().Err(err).Msg("close store")
			}
		},
	}, nil
}
