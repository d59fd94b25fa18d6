// Package http mounts the narratives dashboard, JSON API, live stream and
// operational endpoints
package http

import (
	stdhttp "net/http"
	"time"

	"narrativeradar/internal/core/version"
	"narrativeradar/internal/modkit/httpkit"
	"narrativeradar/internal/platform/logger"
	"narrativeradar/internal/platform/net/http/bind"
	dom "narrativeradar/internal/services/narratives/domain"
)

// Options configures Register. Nil handlers leave their route unmounted
type Options struct {
	RefreshToken string
	APITimeout   time.Duration
	Build        version.BuildInfo
	Metrics      stdhttp.Handler
	Stream       stdhttp.Handler
	Now          func() time.Time
}

// SnapshotsQuery binds GET /api/snapshots
type SnapshotsQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=500"`
}

// RefreshInput binds POST /api/refresh. The body is optional
type RefreshInput struct {
	Reason string `json:"reason" validate:"omitempty,max=200"`
}

// HealthBody is the /health response
type HealthBody struct {
	Status  string    `json:"status"`
	Version string    `json:"version"`
	Commit  string    `json:"commit"`
	TS      time.Time `json:"ts"`
}

// Register mounts every narratives route on r. The stream, dashboard and
// metrics routes sit outside the API stack so its timeout never cuts them
func Register(r httpkit.Router, s dom.ServicePort, o Options) {
	if o.Now == nil {
		o.Now = time.Now
	}
	h := &handlers{svc: s, build: o.Build, now: o.Now, page: mustDashboard()}

	r.Get("/", h.dashboard)
	httpkit.Get(r, "/health", h.health)
	if o.Metrics != nil {
		r.Handle("/metrics", o.Metrics)
	}
	if o.Stream != nil {
		r.Handle("/api/stream", o.Stream)
	}

	httpkit.MountUnder(r, "/api", httpkit.APIStack(o.APITimeout), func(api httpkit.Router) {
		// ranked narratives, ideas and deltas
		httpkit.Get(api, "/narratives", h.narratives)

		// stats and the per-source data behind them
		httpkit.Get(api, "/signals", h.signals)

		httpkit.GetQuery(api, "/snapshots", h.snapshots)
		httpkit.Get(api, "/snapshots/{id}", h.snapshot)
		httpkit.Get(api, "/health/collectors", h.collectors)

		httpkit.Protected(api, o.RefreshToken, func(p httpkit.Router) {
			httpkit.PostJSON(p, "/refresh", h.refresh)
		})
	})
}

type handlers struct {
	svc   dom.ServicePort
	build version.BuildInfo
	now   func() time.Time
	page  *dashboardPage
}

func (h *handlers) health(*stdhttp.Request) (any, error) {
	return HealthBody{Status: "ok", Version: h.build.Version, Commit: h.build.Commit, TS: h.now().UTC()}, nil
}

func (h *handlers) narratives(r *stdhttp.Request) (any, error) {
	res, err := h.svc.Run(r.Context(), false)
	if err != nil {
		return nil, err
	}
	return res.NarrativesView(), nil
}

func (h *handlers) signals(r *stdhttp.Request) (any, error) {
	res, err := h.svc.Run(r.Context(), false)
	if err != nil {
		return nil, err
	}
	return res.SignalsView(), nil
}

func (h *handlers) refresh(r *stdhttp.Request, in RefreshInput) (any, error) {
	logger.C(r.Context()).Info().Str("reason", in.Reason).Msg("forced refresh")
	res, err := h.svc.Run(r.Context(), true)
	if err != nil {
		return nil, err
	}
	return dom.Refreshed{Status: "refreshed", GeneratedAt: res.GeneratedAt, NarrativesCount: len(res.Narratives)}, nil
}

func (h *handlers) snapshots(r *stdhttp.Request, q SnapshotsQuery) (any, error) {
	return h.svc.Snapshots(r.Context(), q.Limit)
}

func (h *handlers) snapshot(r *stdhttp.Request) (any, error) {
	id := httpkit.Param(r, "id")
	if err := bind.Var("id", id, "snapshot_id"); err != nil {
		return nil, err
	}
	return h.svc.Snapshot(r.Context(), id)
}

func (h *handlers) collectors(r *stdhttp.Request) (any, error) {
	return h.svc.Health(r.Context()), nil
}
