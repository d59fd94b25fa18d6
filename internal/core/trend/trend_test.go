package trend

import (
	"testing"
	"time"

	"narrativeradar/internal/core/scorer"
	"narrativeradar/internal/core/signals"
)

func narr(name string, score float64) scorer.Narrative {
	return scorer.Narrative{Name: name, Score: score, SignalCount: 2, Sources: []signals.Source{signals.SourceSocial}}
}

func prevWith(name string, score float64) *Snapshot {
	return &Snapshot{Narratives: []SnapshotNarrative{{Name: name, Score: score}}}
}

func TestDeltasFirstRun(t *testing.T) {
	cur := []scorer.Narrative{narr("a", 80), narr("b", 50), narr("c", 20)}
	got := Deltas(cur, nil)
	for i, want := range []float64{80, 50, 20} {
		if got[i].Delta != New || got[i].ScoreChange != want {
			t.Fatalf("got[%d] = %+v", i, got[i])
		}
	}
}

func TestDeltasRisingStable(t *testing.T) {
	prev := prevWith("X", 40)
	if d := Deltas([]scorer.Narrative{narr("X", 47)}, prev)[0]; d.Delta != Rising || d.ScoreChange != 7.0 {
		t.Fatalf("47 vs 40 = %+v", d)
	}
	if d := Deltas([]scorer.Narrative{narr("X", 43)}, prev)[0]; d.Delta != Stable || d.ScoreChange != 3.0 {
		t.Fatalf("43 vs 40 = %+v", d)
	}
	if d := Deltas([]scorer.Narrative{narr("X", 12.5)}, prev)[0]; d.Delta != Fading || d.ScoreChange != -27.5 {
		t.Fatalf("12.5 vs 40 = %+v", d)
	}
}

func TestDeltasUnknownNameIsNew(t *testing.T) {
	got := Deltas([]scorer.Narrative{narr("Y", 33.3)}, prevWith("X", 40))
	if got[0].Delta != New || got[0].ScoreChange != 33.3 {
		t.Fatalf("got %+v", got[0])
	}
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		change float64
		want   string
	}{
		{5, Stable},
		{5.01, Rising},
		{-5, Stable},
		{-5.01, Fading},
		{0, Stable},
	}
	for _, c := range cases {
		if got := Classify(c.change); got != c.want {
			t.Fatalf("Classify(%v) = %s, want %s", c.change, got, c.want)
		}
	}
}

func TestSummarizeAndAnnotate(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("X", 3600))
	ns := []scorer.Narrative{narr("a", 100), narr("b", 0)}
	snap := Summarize("run-1", ts, ns, 4)
	if snap.ID != "run-1" || snap.IdeaCount != 4 || snap.Timestamp.Location() != time.UTC {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(snap.Narratives) != 2 || snap.Narratives[1].Name != "b" || snap.Narratives[0].SignalCount != 2 {
		t.Fatalf("narratives = %+v", snap.Narratives)
	}

	Annotate(ns, []Delta{{Name: "a", Delta: Rising, ScoreChange: 9.5}})
	if ns[0].Delta != Rising || ns[0].ScoreChange != 9.5 {
		t.Fatalf("a = %+v", ns[0])
	}
	if ns[1].Delta != New || ns[1].ScoreChange != 0 {
		t.Fatalf("b = %+v", ns[1])
	}
}
