package http

import (
	"net/http"

	"narrativeradar/internal/platform/net/http/bind"
)

// GetJSON mounts a body-less JSON GET
func GetJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, NoBodyHandler(h))
}

// GetQuery mounts a JSON GET whose query binds to T
func GetQuery[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Get(path, QueryHandler(h))
}

// PostJSON mounts a JSON POST whose body binds to T
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error), opts ...bind.JSONOptions) {
	r.Post(path, JSONHandler(h, opts...))
}
