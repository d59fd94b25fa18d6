package httpkit

import (
	"net/http"

	phttp "narrativeradar/internal/platform/net/http"
	"narrativeradar/internal/platform/net/http/bind"
)

// Get mounts a body-less JSON GET
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	phttp.GetJSON(r, path, h)
}

// GetQuery mounts a JSON GET whose query string binds to T
func GetQuery[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	phttp.GetQuery(r, path, h)
}

// PostJSON mounts a JSON POST whose body binds to T. An empty body is
// allowed so every field of T is optional
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	phttp.PostJSON(r, path, h, bind.JSONOptions{MaxBytes: 1 << 16, DisallowUnknown: true, AllowEmptyBody: true})
}
