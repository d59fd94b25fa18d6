// Package service runs the narrative pipeline: collect, extract, match, mine,
// score, snapshot, compare and synthesize
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"narrativeradar/internal/core/catalog"
	"narrativeradar/internal/core/matcher"
	"narrativeradar/internal/core/trend"
	"narrativeradar/internal/platform/logger"
	"narrativeradar/internal/platform/metrics"
	dom "narrativeradar/internal/services/narratives/domain"

	"golang.org/x/sync/singleflight"
)

// Config tunes the service
type Config struct {
	// RunTimeout bounds one pipeline run including every collector
	RunTimeout time.Duration
}

// Service implements dom.ServicePort
type Service struct {
	cfg        Config
	cat        *catalog.Catalog
	match      *matcher.Matcher
	collectors dom.Collectors
	snapshots  dom.SnapshotStore
	cache      dom.Cache
	history    dom.HistorySink
	publisher  dom.Publisher
	breakers   func() []dom.BreakerStatus
	metrics    *metrics.Registry
	now        func() time.Time
	newID      func() string

	flight singleflight.Group

	mu     sync.RWMutex
	health map[string]dom.CollectorStatus
}

var _ dom.ServicePort = (*Service)(nil)

// Option configures optional collaborators
type Option func(*Service)

// WithHistory appends every run's scores to h
func WithHistory(h dom.HistorySink) Option { return func(s *Service) { s.history = h } }

// WithPublisher pushes every fresh result to p
func WithPublisher(p dom.Publisher) Option { return func(s *Service) { s.publisher = p } }

// WithBreakers reports upstream breaker states on the health endpoint
func WithBreakers(fn func() []dom.BreakerStatus) Option { return func(s *Service) { s.breakers = fn } }

// WithMetrics records pipeline metrics on m
func WithMetrics(m *metrics.Registry) Option { return func(s *Service) { s.metrics = m } }

// WithClock pins the clock
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithIDs replaces the run id generator
func WithIDs(fn func() string) Option { return func(s *Service) { s.newID = fn } }

// New wires a Service. Catalog, snapshots and cache are required
func New(cfg Config, cat *catalog.Catalog, cols dom.Collectors, snaps dom.SnapshotStore, cache dom.Cache, opts ...Option) (*Service, error) {
	if cat == nil || snaps == nil || cache == nil {
		return nil, fmt.Errorf("narratives service: catalog, snapshot store and cache are required")
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 2 * time.Minute
	}
	s := &Service{
		cfg:        cfg,
		cat:        cat,
		match:      matcher.New(cat),
		collectors: cols,
		snapshots:  snaps,
		cache:      cache,
		now:        time.Now,
		newID:      newRunID,
		health:     map[string]dom.CollectorStatus{},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Run returns the cached result unless it expired or force is set. Callers
// arriving while a run is in flight share its result
func (s *Service) Run(ctx context.Context, force bool) (dom.Result, error) {
	if !force {
		if r, ok := s.cache.Get(ctx); ok {
			s.metrics.CacheHit()
			return r, nil
		}
		s.metrics.CacheMiss()
	}

	ch := s.flight.DoChan("run", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.RunTimeout)
		defer cancel()
		return s.run(rctx), nil
	})
	select {
	case <-ctx.Done():
		return dom.Result{}, ctx.Err()
	case res := <-ch:
		return res.Val.(dom.Result), nil
	}
}

// Snapshots lists stored snapshots, newest first
func (s *Service) Snapshots(ctx context.Context, limit int) ([]dom.SnapshotInfo, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.snapshots.List(ctx, limit)
}

// Snapshot loads one snapshot by id
func (s *Service) Snapshot(ctx context.Context, id string) (trend.Snapshot, error) {
	return s.snapshots.Get(ctx, id)
}

// Health reports the last outcome of every collector and breaker states
func (s *Service) Health(context.Context) dom.Health {
	s.mu.RLock()
	out := dom.Health{Collectors: make([]dom.CollectorStatus, 0, len(s.health))}
	for _, name := range collectorNames {
		if st, ok := s.health[name]; ok {
			out.Collectors = append(out.Collectors, st)
		}
	}
	s.mu.RUnlock()
	out.Breakers = []dom.BreakerStatus{}
	if s.breakers != nil {
		out.Breakers = append(out.Breakers, s.breakers()...)
	}
	return out
}

func (s *Service) log(ctx context.Context) *logger.Logger {
	l := logger.C(ctx).With().Str("component", "narratives").Logger()
	return &l
}
