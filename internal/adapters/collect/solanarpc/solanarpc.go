// Package solanarpc reads network throughput and supply over Solana JSON-RPC
package solanarpc

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"narrativeradar/internal/adapters/collect/breaker"
	"narrativeradar/internal/adapters/collect/rest"
	"narrativeradar/internal/core/signals"
	"narrativeradar/internal/platform/config"
	perr "narrativeradar/internal/platform/errors"

	"github.com/go-resty/resty/v2"
)

const (
	// Upstream names the breaker guarding the RPC endpoint
	Upstream = "solana_rpc"

	endpointDefault = "https://api.mainnet-beta.solana.com"
	perfSamples     = 10
	lamportsPerSOL  = 1e9
)

// Client is a minimal JSON-RPC 2.0 client
type Client struct {
	httpClient *resty.Client
	endpoint   string
	breakers   *breaker.Manager
	id         atomic.Int64
}

// Option configures a Client
type Option func(*Client)

// WithBreakers routes calls through m
func WithBreakers(m *breaker.Manager) Option { return func(c *Client) { c.breakers = m } }

// WithHTTPClient swaps the resty client
func WithHTTPClient(h *resty.Client) Option { return func(c *Client) { c.httpClient = h } }

// New returns a Client for endpoint, or mainnet-beta when empty
func New(endpoint string, o rest.Options, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = endpointDefault
	}
	c := &Client{httpClient: rest.New(o), endpoint: endpoint}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromEnv builds a Client from COLLECT_SOLANA_RPC_* keys, falling back to
// SOLANA_RPC for the endpoint
func FromEnv(c config.Conf, opts ...Option) *Client {
	s := c.Prefix("SOLANA_RPC_")
	endpoint := s.MayURL("URL", config.New().MayURL("SOLANA_RPC", endpointDefault))
	return New(endpoint, rest.Options{Timeout: s.MayDuration("TIMEOUT", 0), RetryCount: s.MayInt("RETRIES", 1)}, opts...)
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type response[T any] struct {
	Result T         `json:"result"`
	Error  *rpcError `json:"error"`
}

func call[T any](ctx context.Context, c *Client, method string, params ...any) (T, error) {
	return breaker.Do(c.breakers, Upstream, func() (T, error) {
		var out response[T]
		req := request{JSONRPC: "2.0", ID: c.id.Add(1), Method: method, Params: params}
		if err := rest.PostJSON(ctx, c.httpClient, c.endpoint, req, &out); err != nil {
			var zero T
			return zero, err
		}
		if out.Error != nil {
			var zero T
			return zero, perr.Upstreamf("solana rpc %s: %d %s", method, out.Error.Code, out.Error.Message)
		}
		return out.Result, nil
	})
}

type perfSample struct {
	NumTransactions  int64 `json:"numTransactions"`
	SamplePeriodSecs int64 `json:"samplePeriodSecs"`
}

// AvgTPS averages transactions per second over the recent samples
func (c *Client) AvgTPS(ctx context.Context) (float64, error) {
	samples, err := call[[]perfSample](ctx, c, "getRecentPerformanceSamples", perfSamples)
	if err != nil {
		return 0, err
	}
	var tx, secs int64
	for _, s := range samples {
		tx += s.NumTransactions
		secs += s.SamplePeriodSecs
	}
	return math.Round(float64(tx)/float64(max(secs, 1))*10) / 10, nil
}

type supply struct {
	Value struct {
		Total       float64 `json:"total"`
		Circulating float64 `json:"circulating"`
	} `json:"value"`
}

// Supply returns total and circulating SOL
func (c *Client) Supply(ctx context.Context) (total, circulating float64, err error) {
	s, err := call[supply](ctx, c, "getSupply")
	if err != nil {
		return 0, 0, err
	}
	return math.Round(s.Value.Total / lamportsPerSOL), math.Round(s.Value.Circulating / lamportsPerSOL), nil
}

// Network combines throughput and supply. Either call failing fails the whole
func (c *Client) Network(ctx context.Context) (signals.Network, error) {
	tps, err := c.AvgTPS(ctx)
	if err != nil {
		return signals.Network{}, fmt.Errorf("avg tps: %w", err)
	}
	total, circ, err := c.Supply(ctx)
	if err != nil {
		return signals.Network{}, fmt.Errorf("supply: %w", err)
	}
	return signals.Network{AvgTPS: tps, TotalSOL: total, CirculatingSOL: circ}, nil
}
