package httpkit

import (
	"narrativeradar/internal/platform/net/middleware"
)

// Protected groups routes behind a static bearer token. An empty token
// leaves them open
func Protected(r Router, token string, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(middleware.BearerToken(token))
		fn(gr)
	})
}
