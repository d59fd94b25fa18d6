package middleware

import (
	"net/http"
	"time"

	"narrativeradar/internal/platform/logger"
)

// AccessLogOptions configures AccessLog
type AccessLogOptions struct {
	// Slow logs requests at or above this duration at warn, 0 disables
	Slow time.Duration
	// Skip suppresses logging for exact paths such as /health
	Skip []string
}

// AccessLog writes one zerolog line per request through the context logger
func AccessLog(opt AccessLogOptions) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(opt.Skip))
	for _, p := range opt.Skip {
		skip[p] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cw := newCapture(w)
			start := time.Now()
			next.ServeHTTP(cw, r)
			if skip[r.URL.Path] {
				return
			}

			elapsed := time.Since(start)
			log := logger.C(r.Context())
			evt := log.Info()
			switch {
			case cw.status >= http.StatusInternalServerError:
				evt = log.Error()
			case opt.Slow > 0 && elapsed >= opt.Slow:
				evt = log.Warn()
			}
			evt.Int("status", cw.status).
				Dur("elapsed", elapsed).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("bytes", cw.bytes).
				Msg("request done")
		})
	}
}
