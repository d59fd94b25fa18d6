package modkit

import (
	"net/http"

	phttp "narrativeradar/internal/platform/net/http"
)

// Built is the resolved option set
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Ports    any
	Register func(phttp.Router)
}

// Build applies opts and fills defaults. Mw is a copy
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.register == nil {
		c.register = func(phttp.Router) {}
	}
	return Built{
		Name:     c.name,
		Prefix:   c.prefix,
		Mw:       append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:    c.ports,
		Register: c.register,
	}
}

// NameOr returns the configured name or def
func (b Built) NameOr(def string) string {
	if b.Name == "" {
		return def
	}
	return b.Name
}
