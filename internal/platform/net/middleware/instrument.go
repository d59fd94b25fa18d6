package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"narrativeradar/internal/platform/metrics"
)

// Instrument records request latency labelled by the chi route pattern, so
// /api/snapshots/{id} is one series regardless of id
func Instrument(m *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cw := newCapture(w)
			start := time.Now()
			next.ServeHTTP(cw, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if p := rc.RoutePattern(); p != "" {
					route = p
				}
			}
			m.ObserveHTTP(route, r.Method, strconv.Itoa(cw.status), time.Since(start))
		})
	}
}
