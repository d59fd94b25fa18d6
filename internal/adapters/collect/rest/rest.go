// Package rest holds the resty setup shared by the JSON and RSS collectors
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	perr "narrativeradar/internal/platform/errors"

	"github.com/go-resty/resty/v2"
)

// Options configures a resty client
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	RetryCount int
	RetryWait  time.Duration
}

// DefaultUserAgent identifies the collectors to upstream APIs
const DefaultUserAgent = "narrativeradar/1.0 (narrative discovery)"

// New returns a resty client honouring proxy env vars that retries
// transport errors, 429 and 5xx responses
func New(o Options) *resty.Client {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.RetryWait <= 0 {
		o.RetryWait = 500 * time.Millisecond
	}
	return resty.New().
		SetTransport(&http.Transport{Proxy: http.ProxyFromEnvironment}).
		SetTimeout(o.Timeout).
		SetHeader("User-Agent", o.UserAgent).
		SetRetryCount(o.RetryCount).
		SetRetryWaitTime(o.RetryWait).
		SetRetryMaxWaitTime(10 * o.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
}

// Body issues a GET and returns the body of a 200 response
func Body(ctx context.Context, c *resty.Client, url string) ([]byte, error) {
	resp, err := c.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "get %s", url)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, perr.Upstreamf("get %s: unexpected status code: %d", url, resp.StatusCode())
	}
	return resp.Body(), nil
}

// GetJSON decodes a 200 GET response into out
func GetJSON(ctx context.Context, c *resty.Client, url string, out any) error {
	b, err := Body(ctx, c, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "decode %s", url)
	}
	return nil
}

// PostJSON sends body as JSON and decodes a 200 response into out
func PostJSON(ctx context.Context, c *resty.Client, url string, body, out any) error {
	resp, err := c.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(url)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "post %s", url)
	}
	if resp.StatusCode() != http.StatusOK {
		return perr.Upstreamf("post %s: unexpected status code: %d", url, resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "decode %s", url)
	}
	return nil
}
