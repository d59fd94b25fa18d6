package middleware

import (
	"net/http"
	"runtime/debug"

	perr "narrativeradar/internal/platform/errors"
	"narrativeradar/internal/platform/logger"
	pnet "narrativeradar/internal/platform/net"
	phttp "narrativeradar/internal/platform/net/http"
)

// RecoverJSON turns a handler panic into the 500 JSON envelope and logs the stack
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			reqID := pnet.RequestID(r.Context())
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if reqID != "" {
				w.Header().Set("X-Request-ID", reqID)
			}
			status, body := pnet.Error(perr.PanicErrf("internal error"), reqID)
			phttp.JSON(w, status, body)
		}()
		next.ServeHTTP(w, r)
	})
}
