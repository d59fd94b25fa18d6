// Package scorer turns matched and discovered theme groups into ranked
// narratives with a 0 to 100 score
package scorer

import (
	"math"
	"sort"

	"narrativeradar/internal/core/matcher"
	"narrativeradar/internal/core/miner"
	"narrativeradar/internal/core/signals"
)

// Scoring constants
const (
	DiversityStep   = 0.4
	CountPivot      = 3.0
	CountFactorCap  = 2.0
	FlatScore       = 50.0
	ScoreScale      = 100.0
	scoreRoundScale = 10
)

// Narrative is one ranked theme. Delta and ScoreChange are filled by the
// trend package after the snapshot comparison
type Narrative struct {
	Name            string           `json:"name"`
	Score           float64          `json:"score"`
	RawScore        float64          `json:"raw_score"`
	SignalCount     int              `json:"signal_count"`
	Sources         []signals.Source `json:"sources"`
	SourceDiversity int              `json:"source_diversity"`
	Signals         []signals.Signal `json:"signals"`
	Discovered      bool             `json:"discovered"`
	Delta           string           `json:"delta,omitempty"`
	ScoreChange     float64          `json:"score_change"`
}

// Score builds narratives from catalog groups followed by discovered themes,
// normalizes their raw scores and sorts them by score descending. Equal
// scores keep catalog-then-discovered order
func Score(groups []matcher.Group, discovered []miner.Discovered) []Narrative {
	out := make([]Narrative, 0, len(groups)+len(discovered))
	for _, g := range groups {
		if len(g.Signals) == 0 {
			continue
		}
		out = append(out, fromGroup(g))
	}
	for _, d := range discovered {
		out = append(out, Narrative{
			Name:            d.Name,
			RawScore:        d.RawScore,
			SignalCount:     d.Count,
			Sources:         []signals.Source{signals.SourceText},
			SourceDiversity: 1,
			Signals:         []signals.Signal{d.Signal},
			Discovered:      true,
		})
	}
	if len(out) == 0 {
		return out
	}

	raw := make([]float64, len(out))
	for i := range out {
		raw[i] = out[i].RawScore
	}
	for i, v := range Normalize(raw) {
		out[i].Score = v
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func fromGroup(g matcher.Group) Narrative {
	srcs := Sources(g.Signals)
	var sum float64
	for _, s := range g.Signals {
		sum += s.StrengthRaw
	}
	avg := sum / float64(len(g.Signals))
	return Narrative{
		Name:            g.Theme,
		RawScore:        avg * DiversityMultiplier(len(srcs)) * CountFactor(len(g.Signals)),
		SignalCount:     len(g.Signals),
		Sources:         srcs,
		SourceDiversity: len(srcs),
		Signals:         g.Signals,
	}
}

// Sources lists the distinct sources of sigs in first-seen order
func Sources(sigs []signals.Signal) []signals.Source {
	var out []signals.Source
	seen := map[signals.Source]bool{}
	for _, s := range sigs {
		if !seen[s.Source] {
			seen[s.Source] = true
			out = append(out, s.Source)
		}
	}
	return out
}

// DiversityMultiplier is 1 for a single source plus DiversityStep per extra
// source, uncapped
func DiversityMultiplier(distinct int) float64 {
	if distinct < 1 {
		return 1
	}
	return 1 + DiversityStep*float64(distinct-1)
}

// CountFactor grows linearly to CountFactorCap at twice CountPivot signals
func CountFactor(n int) float64 {
	return math.Min(float64(n)/CountPivot, CountFactorCap)
}

// Normalize min-max scales values onto 0..100 rounded to one decimal. When
// every value is equal, each maps to FlatScore
func Normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	for i, v := range values {
		if hi == lo {
			out[i] = FlatScore
			continue
		}
		out[i] = Round1((v - lo) / (hi - lo) * ScoreScale)
	}
	return out
}

// Round1 rounds to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*scoreRoundScale) / scoreRoundScale
}
