package httpkit

import (
	"net/http"
	"time"

	"narrativeradar/internal/platform/net/middleware"
)

// APIStack is the per-route stack for JSON endpoints: timeout, compression
// and no-cache. Long-lived routes such as websockets mount outside it
func APIStack(timeout time.Duration) []func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return middleware.API(timeout)
}
