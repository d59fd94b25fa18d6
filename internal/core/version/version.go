// Package version reports build metadata stamped at link time
package version

import "runtime/debug"

// BuildInfo identifies a binary build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// Set with -ldflags "-X narrativeradar/internal/core/version.version=v0.1.0
// -X narrativeradar/internal/core/version.commit=abcd -X narrativeradar/internal/core/version.date=2026-10-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build metadata for service. An unstamped commit falls back
// to the VCS revision recorded by the Go toolchain when available
func Info(service string) BuildInfo {
	bi := BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
	if info, ok := debug.ReadBuildInfo(); ok {
		bi.Go = info.GoVersion
		if bi.Commit == "none" {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && s.Value != "" {
					bi.Commit = s.Value
				}
			}
		}
	}
	return bi
}
