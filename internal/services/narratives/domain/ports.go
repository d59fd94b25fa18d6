package domain

import (
	"context"
	"time"

	"narrativeradar/internal/core/scorer"
	"narrativeradar/internal/core/signals"
	"narrativeradar/internal/core/trend"
)

// GitHubCollector fetches the code-hosting payload
type GitHubCollector interface {
	Collect(ctx context.Context) (signals.GitHubPayload, error)
}

// DeFiCollector fetches the on-chain payload
type DeFiCollector interface {
	Collect(ctx context.Context) (signals.DeFiPayload, error)
}

// SocialCollector fetches the community payload
type SocialCollector interface {
	Collect(ctx context.Context) (signals.SocialPayload, error)
}

// Collectors bundles one collector per source family. A nil member
// contributes an empty payload
type Collectors struct {
	GitHub GitHubCollector
	DeFi   DeFiCollector
	Social SocialCollector
}

// SnapshotStore persists one snapshot per run
type SnapshotStore interface {
	// Save writes s and returns the id it was stored under
	Save(ctx context.Context, s trend.Snapshot) (string, error)
	// Previous returns the newest snapshot other than currentID, nil when
	// there is none or it cannot be read
	Previous(ctx context.Context, currentID string) (*trend.Snapshot, error)
	// List returns up to limit snapshots, newest first
	List(ctx context.Context, limit int) ([]SnapshotInfo, error)
	// Get loads one snapshot; a missing id is perr.ErrNotFound
	Get(ctx context.Context, id string) (trend.Snapshot, error)
}

// Cache holds the last result for a TTL
type Cache interface {
	Get(ctx context.Context) (Result, bool)
	Set(ctx context.Context, r Result)
}

// HistorySink records every run's scores for long-range trend queries
type HistorySink interface {
	Append(ctx context.Context, runID string, at time.Time, ns []scorer.Narrative) error
}

// Publisher fans a finished result out to live subscribers
type Publisher interface {
	Publish(r Result)
}

// ServicePort is consumed by handlers and the CLI
type ServicePort interface {
	Run(ctx context.Context, force bool) (Result, error)
	Snapshots(ctx context.Context, limit int) ([]SnapshotInfo, error)
	Snapshot(ctx context.Context, id string) (trend.Snapshot, error)
	Health(ctx context.Context) Health
}
