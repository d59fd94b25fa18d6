package repo

import (
	"context"
	"time"

	"narrativeradar/internal/core/scorer"
	perr "narrativeradar/internal/platform/errors"
	"narrativeradar/internal/platform/store"
	dom "narrativeradar/internal/services/narratives/domain"
)

const historyTable = "narrative_scores"

const chSchema = `
CREATE TABLE IF NOT EXISTS narrative_scores (
	run_id       String,
	taken_at     DateTime64(3, 'UTC'),
	rank         UInt16,
	name         String,
	score        Float64,
	raw_score    Float64,
	signal_count UInt32,
	sources      Array(String),
	discovered   UInt8,
	delta        LowCardinality(String),
	score_change Float64
) ENGINE = MergeTree
ORDER BY (name, taken_at)
`

// History appends one row per narrative per run to ClickHouse
type History struct {
	ch store.Clickhouse
}

var _ dom.HistorySink = (*History)(nil)

// NewHistory returns a ClickHouse history sink; call Migrate before first use
func NewHistory(ch store.Clickhouse) *History { return &History{ch: ch} }

// Migrate creates the table when missing
func (h *History) Migrate(ctx context.Context) error {
	if err := h.ch.Exec(ctx, chSchema); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeStorage, "migrate %s", historyTable)
	}
	return nil
}

// Append writes ns in rank order
func (h *History) Append(ctx context.Context, runID string, at time.Time, ns []scorer.Narrative) error {
	if len(ns) == 0 {
		return nil
	}
	if err := h.ch.Insert(ctx, historyTable, Rows(runID, at, ns)); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeStorage, "append history")
	}
	return nil
}

// Rows lays ns out in narrative_scores column order
func Rows(runID string, at time.Time, ns []scorer.Narrative) [][]any {
	out := make([][]any, 0, len(ns))
	for i, n := range ns {
		sources := make([]string, 0, len(n.Sources))
		for _, s := range n.Sources {
			sources = append(sources, string(s))
		}
		var discovered uint8
		if n.Discovered {
			discovered = 1
		}
		out = append(out, []any{
			runID,
			at.UTC(),
			uint16(i + 1),
			n.Name,
			n.Score,
			n.RawScore,
			uint32(n.SignalCount),
			sources,
			discovered,
			n.Delta,
			n.ScoreChange,
		})
	}
	return out
}
