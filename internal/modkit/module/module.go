// Package module holds the module contract and a process-wide port registry
// for cross wiring during bootstrap
package module

import (
	phttp "narrativeradar/internal/platform/net/http"
)

// Module mirrors modkit.Module without importing it
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
