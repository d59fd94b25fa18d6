// Package github collects repository activity from the GitHub search API
package github

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	perr "narrativeradar/internal/platform/errors"
	"narrativeradar/internal/platform/logger"

	"golang.org/x/time/rate"
)

const (
	baseURLDefault   = "https://api.github.com"
	defaultTimeout   = 15 * time.Second
	defaultUA        = "narrativeradar"
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
	maxBackoff       = 30 * time.Second
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Comma separated tokens. Empty means unauthenticated search, which
	// allows about ten requests a minute
	TokensCSV string

	MaxRetries int
	RetryBase  time.Duration

	// RequestsPerSecond caps outbound calls; zero disables the limiter
	RequestsPerSecond float64
	// MaxRateWait bounds how long a rate-limit reset is waited out
	MaxRateWait time.Duration
}

// Client is a small GitHub REST client with token rotation and retries
type Client struct {
	http    *http.Client
	opts    Options
	tokens  []string
	cur     atomic.Int32
	limiter *rate.Limiter
	log     logger.Logger
	now     func() time.Time
	sleep   func(context.Context, time.Duration) error
}

// NewClient fills defaults and returns a Client
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.MaxRateWait <= 0 {
		o.MaxRateWait = time.Minute
	}
	var toks []string
	for t := range strings.SplitSeq(o.TokensCSV, ",") {
		if t = strings.TrimSpace(t); t != "" {
			toks = append(toks, t)
		}
	}
	c := &Client{
		http:   &http.Client{Timeout: o.Timeout},
		opts:   o,
		tokens: toks,
		log:    *logger.Named("github"),
		now:    time.Now,
		sleep:  sleepCtx,
	}
	if o.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(o.RequestsPerSecond), 1)
	}
	return c
}

// WithHTTPClient swaps the transport, mostly for tests
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// Authenticated reports whether at least one token is configured
func (c *Client) Authenticated() bool { return len(c.tokens) > 0 }

func (c *Client) nextToken() string {
	n := int(c.cur.Add(1))
	if len(c.tokens) == 0 {
		return ""
	}
	return c.tokens[n%len(c.tokens)]
}

// Get issues a GET with auth headers, retrying transport errors, rate limits
// and transient gateway failures. The caller closes the body
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	url := c.opts.BaseURL + path
	attempts := 0
	for {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		} else if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "github new request")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/vnd.github.v3+json")
		if tok := c.nextToken(); tok != "" {
			req.Header.Set("Authorization", "token "+tok)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if ctx.Err() != nil || !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "github get %s", path)
			}
			if err := c.wait(ctx, c.backoff(attempts), attempts, "github transport error retrying"); err != nil {
				return nil, err
			}
			attempts++
			continue
		}

		rem, reset, retryAfter := parseRateHeaders(resp.Header)
		c.log.Debug().
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Int("rate_remaining", rem).
			Time("rate_reset", reset).
			Int("retry_after_s", retryAfter).
			Msg("github http response")

		switch resp.StatusCode {
		case http.StatusOK:
			return resp, nil
		case http.StatusTooManyRequests, http.StatusForbidden:
			_ = drainAndClose(resp.Body)
			w := computeWait(rem, reset, retryAfter, c.now())
			if w <= 0 {
				w = c.backoff(attempts)
			}
			if !c.shouldRetry(attempts) || w > c.opts.MaxRateWait {
				return nil, &StatusError{Status: resp.StatusCode, Err: perr.Newf(perr.ErrorCodeTooManyRequests, "github rate limited, reset in %s", w.Round(time.Second))}
			}
			if err := c.wait(ctx, w, attempts, "github rate limited backing off"); err != nil {
				return nil, err
			}
			attempts++
			continue
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return nil, &StatusError{Status: resp.StatusCode, Err: perr.Newf(perr.ErrorCodeUnavailable, "github transient status %d", resp.StatusCode)}
			}
			if err := c.wait(ctx, c.backoff(attempts), attempts, "github transient error retrying"); err != nil {
				return nil, err
			}
			attempts++
			continue
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, &StatusError{
				Status: resp.StatusCode,
				Body:   string(body),
				Err:    perr.Newf(perr.ErrorCodeUpstream, "github unexpected status %d", resp.StatusCode),
			}
		}
	}
}

func (c *Client) wait(ctx context.Context, d time.Duration, attempt int, msg string) error {
	c.log.Warn().Dur("retry_in", d).Int("attempt", attempt).Msg(msg)
	return c.sleep(ctx, d)
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}

func (c *Client) shouldRetry(attempt int) bool { return attempt < c.opts.MaxRetries }

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
