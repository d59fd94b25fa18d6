// Package defillama collects Solana TVL, protocol, fee, DEX, stablecoin and
// bridge figures from the public DeFiLlama APIs
package defillama

import (
	"context"
	"errors"

	"narrativeradar/internal/adapters/collect/breaker"
	"narrativeradar/internal/adapters/collect/rest"
	"narrativeradar/internal/core/signals"
	"narrativeradar/internal/platform/logger"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

const (
	// Upstream names the breaker guarding api.llama.fi
	Upstream = "defillama"
	// StablecoinsUpstream names the breaker guarding stablecoins.llama.fi
	StablecoinsUpstream = "defillama_stablecoins"

	baseURLDefault        = "https://api.llama.fi"
	stablecoinsURLDefault = "https://stablecoins.llama.fi"
	chain                 = "Solana"
)

// NetworkProber supplies live chain statistics merged into the payload
type NetworkProber interface {
	Network(ctx context.Context) (signals.Network, error)
}

// Options configures the Collector
type Options struct {
	BaseURL        string
	StablecoinsURL string
	HTTP           rest.Options
}

// Collector fetches every endpoint concurrently. Each endpoint fails soft
type Collector struct {
	httpClient     *resty.Client
	baseURL        string
	stablecoinsURL string
	network        NetworkProber
	breakers       *breaker.Manager
	log            logger.Logger
}

// Option configures a Collector
type Option func(*Collector)

// WithNetwork merges chain statistics from p
func WithNetwork(p NetworkProber) Option { return func(c *Collector) { c.network = p } }

// WithBreakers routes requests through m
func WithBreakers(m *breaker.Manager) Option { return func(c *Collector) { c.breakers = m } }

// WithHTTPClient swaps the resty client
func WithHTTPClient(h *resty.Client) Option { return func(c *Collector) { c.httpClient = h } }

// New returns a Collector
func New(o Options, opts ...Option) *Collector {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.StablecoinsURL == "" {
		o.StablecoinsURL = stablecoinsURLDefault
	}
	c := &Collector{
		httpClient:     rest.New(o.HTTP),
		baseURL:        o.BaseURL,
		stablecoinsURL: o.StablecoinsURL,
		log:            *logger.Named("collect.defillama"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) get(ctx context.Context, upstream, url string, out any) error {
	_, err := breaker.Do(c.breakers, upstream, func() (struct{}, error) {
		return struct{}{}, rest.GetJSON(ctx, c.httpClient, url, out)
	})
	if err != nil {
		c.log.Warn().Err(err).Str("url", url).Msg("defillama request failed")
	}
	return err
}

// Collect gathers the DeFi payload. Failed endpoints leave their section at
// the zero value; the returned error is non-nil only when every endpoint failed
func (c *Collector) Collect(ctx context.Context) (signals.DeFiPayload, error) {
	var p signals.DeFiPayload
	errs := make([]error, 6)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { p.TVL, errs[0] = c.TVL(gctx); return nil })
	g.Go(func() error { p.Protocols, errs[1] = c.Protocols(gctx); return nil })
	g.Go(func() error { p.Fees, errs[2] = c.Fees(gctx); return nil })
	g.Go(func() error { p.DEX, errs[3] = c.DEX(gctx); return nil })
	g.Go(func() error { p.Stablecoins, errs[4] = c.Stablecoins(gctx); return nil })
	g.Go(func() error { p.Bridges, errs[5] = c.Bridges(gctx); return nil })
	if c.network != nil {
		g.Go(func() error {
			n, err := c.network.Network(gctx)
			if err != nil {
				c.log.Warn().Err(err).Msg("network stats unavailable")
				return nil
			}
			p.Network = n
			return nil
		})
	}
	_ = g.Wait()

	if p.Protocols == nil {
		p.Protocols = []signals.Protocol{}
	}
	if p.Fees == nil {
		p.Fees = []signals.Fee{}
	}
	for _, err := range errs {
		if err == nil {
			return p, nil
		}
	}
	return p, errors.Join(errs...)
}
