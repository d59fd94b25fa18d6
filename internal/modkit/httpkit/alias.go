// Package httpkit re-exports the platform http surface for modules so they
// do not import internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "narrativeradar/internal/platform/net/http"
)

type (
	// Response is a return-style handler result
	Response = phttp.Response
	// Handler is the platform handler type
	Handler = phttp.Handler
	// Router is the platform router seam
	Router = phttp.Router
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// Accepted returns a 202 response
func Accepted(data any) Response { return phttp.Accepted(data) }

// Error maps err to its status and envelope
func Error(err error) Response { return phttp.Error(err) }

// Handle adapts a Response-returning function
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// Param returns a path parameter
func Param(r *http.Request, name string) string { return phttp.URLParam(r, name) }
