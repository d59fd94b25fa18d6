package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	perr "narrativeradar/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, o Options) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	o.BaseURL = srv.URL
	if o.RetryBase == 0 {
		o.RetryBase = time.Millisecond
	}
	c := NewClient(o).WithHTTPClient(srv.Client())
	var slept []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return c, &slept
}

func TestGetRotatesTokensAndSetsHeaders(t *testing.T) {
	var auths []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
		assert.Equal(t, "radar-test", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}, Options{TokensCSV: " a, ,b ", UserAgent: "radar-test"})

	require.True(t, c.Authenticated())
	for range 3 {
		resp, err := c.Get(context.Background(), "/x")
		require.NoError(t, err)
		_ = resp.Body.Close()
	}
	assert.Equal(t, []string{"token b", "token a", "token b"}, auths)
}

func TestGetRetriesTransientStatus(t *testing.T) {
	var hits atomic.Int32
	c, slept := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}, Options{MaxRetries: 3, RetryBase: 10 * time.Millisecond})

	resp, err := c.Get(context.Background(), "/x")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, *slept)
}

func TestGetGivesUpOnLongRateLimit(t *testing.T) {
	c, slept := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "3600")
		w.WriteHeader(http.StatusForbidden)
	}, Options{MaxRetries: 3, MaxRateWait: time.Minute})

	_, err := c.Get(context.Background(), "/x")
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.True(t, perr.IsCode(err, perr.ErrorCodeTooManyRequests))
	assert.Empty(t, *slept)
}

func TestGetWaitsOutShortRateLimit(t *testing.T) {
	var hits atomic.Int32
	c, slept := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}, Options{MaxRetries: 2})

	resp, err := c.Get(context.Background(), "/x")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, []time.Duration{2 * time.Second}, *slept)
}

func TestGetUnexpectedStatusIsUpstream(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"bad query"}`))
	}, Options{})

	_, err := c.Get(context.Background(), "/x")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.HTTPStatus())
	assert.Contains(t, se.Body, "bad query")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUpstream))
}

func TestGetHonoursCancelledContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, Options{RequestsPerSecond: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Get(ctx, "/x")
	require.Error(t, err)
}

func TestComputeWait(t *testing.T) {
	now := time.Unix(1_000, 0)
	assert.Equal(t, 5*time.Second, computeWait(0, now.Add(time.Minute), 5, now))
	assert.Equal(t, time.Minute, computeWait(0, now.Add(time.Minute), 0, now))
	assert.Zero(t, computeWait(10, now.Add(time.Minute), 0, now))
	assert.Zero(t, computeWait(0, now.Add(-time.Minute), 0, now))
	assert.Zero(t, computeWait(-1, time.Time{}, 0, now))
}

func TestParseRateHeaders(t *testing.T) {
	h := http.Header{}
	rem, reset, ra := parseRateHeaders(h)
	assert.Equal(t, -1, rem)
	assert.True(t, reset.IsZero())
	assert.Zero(t, ra)

	h.Set("X-RateLimit-Remaining", "0")
	h.Set("X-RateLimit-Reset", strconv.Itoa(1_700_000_000))
	h.Set("Retry-After", "7")
	rem, reset, ra = parseRateHeaders(h)
	assert.Equal(t, 0, rem)
	assert.Equal(t, int64(1_700_000_000), reset.Unix())
	assert.Equal(t, 7, ra)
}

func TestBackoffCaps(t *testing.T) {
	c := NewClient(Options{RetryBase: time.Second})
	assert.Equal(t, time.Second, c.backoff(0))
	assert.Equal(t, 8*time.Second, c.backoff(3))
	assert.Equal(t, maxBackoff, c.backoff(10))
}
