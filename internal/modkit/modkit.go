package modkit

import (
	phttp "narrativeradar/internal/platform/net/http"
)

// Module is what cmd mains compose: something that mounts routes and can
// hand its ports to other modules
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}

// Builder constructs a Module from shared deps and options
type Builder func(Deps, ...Option) (Module, error)
