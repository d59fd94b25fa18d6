// Package module wires the narratives service into the API using modkit
package module

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"narrativeradar/internal/adapters/collect/breaker"
	"narrativeradar/internal/core/catalog"
	"narrativeradar/internal/core/version"
	"narrativeradar/internal/modkit"
	"narrativeradar/internal/modkit/httpkit"
	"narrativeradar/internal/platform/logger"
	dom "narrativeradar/internal/services/narratives/domain"
	narrhttp "narrativeradar/internal/services/narratives/http"
	"narrativeradar/internal/services/narratives/repo"
	"narrativeradar/internal/services/narratives/service"

	"github.com/sony/gobreaker"
)

// Ports exposed by the narratives module
type Ports struct {
	Service   dom.ServicePort
	Snapshots dom.SnapshotStore
}

// Module implements the narratives module
type Module struct {
	deps   modkit.Deps
	opts   Options
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	register func(httpkit.Router)

	svc   *service.Service
	hub   *narrhttp.Hub
	snaps dom.SnapshotStore
	build version.BuildInfo
}

var _ modkit.Module = (*Module)(nil)

// New builds the module from deps and NARRATIVE_* config. Storage backends
// follow what deps.Store has open unless pinned by config
func New(deps modkit.Deps, opts ...modkit.Option) (modkit.Module, error) {
	return NewWith(deps, FromConfig(deps.Cfg), opts...)
}

// NewWith builds the module from explicit options
func NewWith(deps modkit.Deps, o Options, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(opts...)
	log := deps.Log.With().Str("module", b.NameOr("narratives")).Logger()

	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("narratives: catalog: %w", err)
	}

	br := breaker.New(o.Breaker, breaker.OnStateChange(func(name string, st gobreaker.State) {
		deps.Metrics.SetBreaker(name, int(st))
		if st != gobreaker.StateClosed {
			log.Warn().Str("upstream", name).Str("state", st.String()).Msg("breaker state changed")
		}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snaps, err := snapshotStore(ctx, deps, o)
	if err != nil {
		return nil, err
	}
	cache := resultCache(deps, o)
	hub := narrhttp.NewHub(deps.Metrics, o.StreamOrigins)

	svcOpts := []service.Option{
		service.WithPublisher(hub),
		service.WithBreakers(BreakerStatuses(br)),
		service.WithMetrics(deps.Metrics),
	}
	if o.History && deps.Store != nil && deps.Store.CH != nil {
		h := repo.NewHistory(deps.Store.CH)
		if err := h.Migrate(ctx); err != nil {
			return nil, err
		}
		svcOpts = append(svcOpts, service.WithHistory(h))
	}

	svc, err := service.New(service.Config{RunTimeout: o.RunTimeout}, cat, Collectors(deps.Cfg, cat, br), snaps, cache, svcOpts...)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("snapshots", fmt.Sprintf("%T", snaps)).
		Str("cache", fmt.Sprintf("%T", cache)).
		Bool("history", o.History && deps.Store != nil && deps.Store.CH != nil).
		Bool("refresh_protected", o.RefreshToken != "").
		Msg("narratives module ready")

	return &Module{
		deps:     deps,
		opts:     o,
		name:     b.NameOr("narratives"),
		prefix:   b.Prefix,
		mws:      b.Mw,
		register: b.Register,
		svc:      svc,
		hub:      hub,
		snaps:    snaps,
		build:    version.Info("narrativeradar"),
	}, nil
}

func snapshotStore(ctx context.Context, deps modkit.Deps, o Options) (dom.SnapshotStore, error) {
	hasPG := deps.Store != nil && deps.Store.PG != nil
	switch {
	case o.SnapshotBackend == BackendPG && !hasPG:
		return nil, fmt.Errorf("narratives: snapshot backend pg needs STORE_PG_ENABLED")
	case o.SnapshotBackend == BackendPG, o.SnapshotBackend == BackendAuto && hasPG:
		p := repo.NewPG(deps.Store.PG)
		if err := p.Migrate(ctx); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return repo.NewFiles(o.SnapshotDir)
	}
}

func resultCache(deps modkit.Deps, o Options) dom.Cache {
	hasRedis := deps.Store != nil && deps.Store.RDS != nil
	if hasRedis && (o.CacheBackend == BackendRedis || o.CacheBackend == BackendAuto) {
		return repo.NewRedis(deps.Store.RDS, o.CacheKey, o.CacheTTL)
	}
	if o.CacheBackend == BackendRedis {
		logger.Get().Warn().Msg("redis cache requested without STORE_REDIS_ENABLED; using memory")
	}
	return repo.NewMemory(o.CacheTTL)
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return Ports{Service: m.svc, Snapshots: m.snaps} }

// Service returns the pipeline service
func (m *Module) Service() *service.Service { return m.svc }

// MountRoutes mounts the dashboard, API and operational routes
func (m *Module) MountRoutes(r httpkit.Router) {
	o := narrhttp.Options{
		RefreshToken: m.opts.RefreshToken,
		APITimeout:   m.opts.APITimeout,
		Build:        m.build,
		Stream:       m.hub,
	}
	if m.deps.Metrics != nil {
		o.Metrics = m.deps.Metrics.Handler()
	}
	httpkit.MountUnder(r, m.prefix, m.mws, func(rr httpkit.Router) {
		narrhttp.Register(rr, m.svc, o)
		m.register(rr)
	})
}

// Close disconnects stream clients
func (m *Module) Close() { m.hub.Close() }
