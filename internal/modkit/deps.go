// Package modkit wires modules from shared dependencies and build options
package modkit

import (
	"narrativeradar/internal/platform/config"
	"narrativeradar/internal/platform/logger"
	"narrativeradar/internal/platform/metrics"
	"narrativeradar/internal/platform/store"
)

// Deps holds what every module may use. Store and Metrics may be nil
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	Store   *store.Store
	Metrics *metrics.Registry
}

// HasStore reports whether any persistence backend is available
func (d Deps) HasStore() bool {
	return d.Store != nil && (d.Store.PG != nil || d.Store.CH != nil || d.Store.RDS != nil)
}
