package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perr "narrativeradar/internal/platform/errors"
	pnet "narrativeradar/internal/platform/net"
	phttp "narrativeradar/internal/platform/net/http"
)

// BearerToken rejects requests whose Authorization bearer does not match
// token. An empty token disables the guard
func BearerToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		want := []byte(token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), want) != 1 {
				status, body := pnet.Error(perr.New(perr.ErrorCodeUnauthorized, "missing or invalid token"), pnet.RequestID(r.Context()))
				phttp.JSON(w, status, body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
