// Package http hosts the chi-backed router facade, the API server and the
// JSON response helpers
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler is the platform handler type
type Handler = func(http.ResponseWriter, *http.Request)

// Router is the surface modules mount routes against
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	Handle(path string, h http.Handler)
	Use(mw ...func(http.Handler) http.Handler)
	With(mw ...func(http.Handler) http.Handler) Router
	Group(fn func(Router))
	Route(pattern string, fn func(Router))
	Mux() http.Handler
}

// chiRouter adapts any chi.Router; *chi.Mux satisfies it at the root
type chiRouter struct{ r chi.Router }

// AdaptChi wraps a chi router
func AdaptChi(r chi.Router) Router { return chiRouter{r: r} }

func (c chiRouter) Get(p string, h Handler)  { c.r.Method(http.MethodGet, p, http.HandlerFunc(h)) }
func (c chiRouter) Post(p string, h Handler) { c.r.Method(http.MethodPost, p, http.HandlerFunc(h)) }

func (c chiRouter) Handle(p string, h http.Handler)           { c.r.Handle(p, h) }
func (c chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.r.Use(mw...) }

func (c chiRouter) With(mw ...func(http.Handler) http.Handler) Router {
	return chiRouter{r: c.r.With(mw...)}
}

func (c chiRouter) Group(fn func(Router)) {
	c.r.Group(func(sub chi.Router) { fn(chiRouter{r: sub}) })
}

func (c chiRouter) Route(pattern string, fn func(Router)) {
	c.r.Route(pattern, func(sub chi.Router) { fn(chiRouter{r: sub}) })
}

func (c chiRouter) Mux() http.Handler { return c.r }

// URLParam returns a chi path parameter
func URLParam(r *http.Request, name string) string { return chi.URLParam(r, name) }
