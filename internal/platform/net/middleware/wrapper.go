// Package middleware wraps chi middleware behind plain func(http.Handler)
// http.Handler values and adds the service's own logging, recovery, metrics
// and token guard
package middleware

import (
	"compress/flate"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"

	pnet "narrativeradar/internal/platform/net"
	pstrings "narrativeradar/internal/platform/strings"
)

// RequestID accepts or generates X-Request-ID and puts it on the context
// logger
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chimw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chimw.GetReqID(r.Context())
			w.Header().Set(chimw.RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(pnet.WithRequest(r.Context(), id)))
		}))
	}
}

// RealIP trusts X-Forwarded-For and X-Real-IP
func RealIP() func(http.Handler) http.Handler { return chimw.RealIP }

// Timeout cancels the request context after d
func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

// Compress gzips/deflates responses at level
func Compress(level int) func(http.Handler) http.Handler {
	c := chimw.NewCompressor(level)
	return c.Handler
}

// NoCache disables client caching
func NoCache() func(http.Handler) http.Handler { return chimw.NoCache }

// CORSOptions is the subset of go-chi/cors the service configures
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// CORS applies go-chi/cors with read-mostly defaults
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: pstrings.IfEmpty(o.AllowedOrigins, []string{"*"}),
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		AllowedHeaders: pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"}),
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         o.MaxAge,
	})
}

// Defaults is the stack every route gets: real ip, request id, access log
// and JSON panic recovery
func Defaults(log AccessLogOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		RealIP(),
		RequestID(),
		AccessLog(log),
		RecoverJSON,
	}
}

// API is the extra stack for JSON routes. Streaming routes skip it
func API(timeout time.Duration) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		Timeout(timeout),
		Compress(flate.DefaultCompression),
		NoCache(),
	}
}
