// Package trend summarizes a run into a snapshot and classifies each
// narrative against the previous snapshot
package trend

import (
	"time"

	"narrativeradar/internal/core/scorer"
	"narrativeradar/internal/core/signals"
)

// Delta labels
const (
	New       = "new"
	Rising    = "rising"
	Fading    = "fading"
	Stable    = "stable"
	Threshold = 5.0
)

// SnapshotNarrative is the retained summary of one narrative
type SnapshotNarrative struct {
	Name        string           `json:"name"`
	Score       float64          `json:"score"`
	SignalCount int              `json:"signal_count"`
	Sources     []signals.Source `json:"sources"`
	Discovered  bool             `json:"discovered"`
}

// Snapshot is the persisted record of one run
type Snapshot struct {
	ID         string              `json:"id,omitempty"`
	Timestamp  time.Time           `json:"timestamp"`
	Narratives []SnapshotNarrative `json:"narratives"`
	IdeaCount  int                 `json:"idea_count"`
}

// Delta is the run-over-run classification of one narrative
type Delta struct {
	Name        string  `json:"name"`
	Delta       string  `json:"delta"`
	ScoreChange float64 `json:"score_change"`
}

// Summarize keeps the snapshot fields of ns in ranked order
func Summarize(runID string, ts time.Time, ns []scorer.Narrative, ideaCount int) Snapshot {
	snap := Snapshot{
		ID:         runID,
		Timestamp:  ts.UTC(),
		Narratives: make([]SnapshotNarrative, 0, len(ns)),
		IdeaCount:  ideaCount,
	}
	for _, n := range ns {
		snap.Narratives = append(snap.Narratives, SnapshotNarrative{
			Name:        n.Name,
			Score:       n.Score,
			SignalCount: n.SignalCount,
			Sources:     n.Sources,
			Discovered:  n.Discovered,
		})
	}
	return snap
}

// Deltas classifies every current narrative. A nil previous marks all of them
// new with the current score as the change
func Deltas(current []scorer.Narrative, previous *Snapshot) []Delta {
	prev := map[string]float64{}
	if previous != nil {
		for _, n := range previous.Narratives {
			prev[n.Name] = n.Score
		}
	}
	out := make([]Delta, 0, len(current))
	for _, n := range current {
		before, ok := prev[n.Name]
		if !ok {
			out = append(out, Delta{Name: n.Name, Delta: New, ScoreChange: n.Score})
			continue
		}
		change := n.Score - before
		out = append(out, Delta{Name: n.Name, Delta: Classify(change), ScoreChange: scorer.Round1(change)})
	}
	return out
}

// Classify labels a score change. Thresholds are strict
func Classify(change float64) string {
	switch {
	case change > Threshold:
		return Rising
	case change < -Threshold:
		return Fading
	default:
		return Stable
	}
}

// Annotate copies deltas onto the narratives by name. Narratives without a
// delta are marked new with no change
func Annotate(ns []scorer.Narrative, deltas []Delta) {
	byName := make(map[string]Delta, len(deltas))
	for _, d := range deltas {
		byName[d.Name] = d
	}
	for i := range ns {
		d, ok := byName[ns[i].Name]
		if !ok {
			ns[i].Delta, ns[i].ScoreChange = New, 0
			continue
		}
		ns[i].Delta, ns[i].ScoreChange = d.Delta, d.ScoreChange
	}
}
