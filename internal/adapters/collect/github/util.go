package github

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"
)

// StatusError wraps a non-success GitHub response
type StatusError struct {
	Status int
	Body   string
	Err    error
}

func (e *StatusError) Error() string   { return e.Err.Error() }
func (e *StatusError) Unwrap() error   { return e.Err }
func (e *StatusError) HTTPStatus() int { return e.Status }

func parseRateHeaders(h http.Header) (remaining int, reset time.Time, retryAfter int) {
	remaining = -1
	if v := h.Get("X-RateLimit-Remaining"); v != "" {
		remaining = atoi(v)
	}
	if sec := atoi(h.Get("X-RateLimit-Reset")); sec > 0 {
		reset = time.Unix(int64(sec), 0).UTC()
	}
	retryAfter = atoi(h.Get("Retry-After"))
	return
}

// computeWait prefers Retry-After, then an exhausted quota's reset time
func computeWait(remaining int, reset time.Time, retryAfter int, now time.Time) time.Duration {
	if retryAfter > 0 {
		return time.Duration(retryAfter) * time.Second
	}
	if remaining == 0 && !reset.IsZero() && reset.After(now) {
		return reset.Sub(now)
	}
	return 0
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}

// IsRateLimited reports whether err is a 429 or 403 StatusError
func IsRateLimited(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status == http.StatusTooManyRequests || se.Status == http.StatusForbidden
	}
	return false
}
