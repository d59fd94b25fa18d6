package matcher

import (
	"testing"

	"narrativeradar/internal/core/catalog"
	"narrativeradar/internal/core/signals"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Parse([]byte(`
themes:
  - {name: Agents, keywords: [agent, sendai]}
  - {name: Payments, keywords: [usdc, pay]}
  - {name: Unused, keywords: [nothingmatches]}
  - {name: Overlap, keywords: [he, she, his, hers]}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return c
}

func sig(topic, text string) signals.Signal {
	return signals.Signal{Source: signals.SourceSocial, Topic: topic, Text: text}
}

func TestMatchGroupsInCatalogOrder(t *testing.T) {
	m := New(testCatalog(t))
	in := []signals.Signal{
		sig("payments", "USDC rails"),
		sig("", "An AI AGENT that pays in USDC"),
		sig("misc", "nada"),
	}
	got := m.Match(in)
	if len(got) != 2 {
		t.Fatalf("groups = %d, want 2: %+v", len(got), got)
	}
	if got[0].Theme != "Agents" || got[1].Theme != "Payments" {
		t.Fatalf("order = %q, %q", got[0].Theme, got[1].Theme)
	}
	if len(got[0].Signals) != 1 || got[0].Signals[0].Text != in[1].Text {
		t.Fatalf("agents = %+v", got[0].Signals)
	}
	// a signal lands in a theme once even when several keywords hit
	if len(got[1].Signals) != 2 || got[1].Signals[0].Topic != "payments" {
		t.Fatalf("payments = %+v", got[1].Signals)
	}
}

func TestMatchSubstringInsideWords(t *testing.T) {
	m := New(testCatalog(t))
	got := m.Match([]signals.Signal{sig("toolkit", "sendaiframework release")})
	if len(got) != 1 || got[0].Theme != "Agents" {
		t.Fatalf("got %+v", got)
	}
	// "repayment" contains "pay"
	got = m.Match([]signals.Signal{sig("", "repayment schedule")})
	if len(got) != 1 || got[0].Theme != "Payments" {
		t.Fatalf("got %+v", got)
	}
}

func TestMatchTopicAndTextJoined(t *testing.T) {
	m := New(testCatalog(t))
	// "ag" + " " + "ent" must not form a keyword across the join
	if got := m.Match([]signals.Signal{sig("ag", "ent")}); len(got) != 0 {
		t.Fatalf("matched across separator: %+v", got)
	}
	if got := m.Match([]signals.Signal{sig("agent", "")}); len(got) != 1 {
		t.Fatalf("topic alone should match")
	}
}

func TestOverlappingPatterns(t *testing.T) {
	m := New(testCatalog(t))
	idx := m.ThemesOf(sig("", "ushers"))
	if len(idx) != 1 || m.Themes()[idx[0]] != "Overlap" {
		t.Fatalf("ThemesOf = %v", idx)
	}
}

func TestMatchIdempotent(t *testing.T) {
	m := New(catalog.Default())
	in := []signals.Signal{
		sig("AI agent", "12 active repos matching 'solana AI agent'"),
		sig("stablecoin ecosystem", "$11.0B stablecoin supply"),
		sig("Firedancer", "validator client ships"),
	}
	a, b := m.Match(in), m.Match(in)
	if len(a) != len(b) {
		t.Fatalf("non-deterministic group count")
	}
	for i := range a {
		if a[i].Theme != b[i].Theme || len(a[i].Signals) != len(b[i].Signals) {
			t.Fatalf("group %d differs", i)
		}
	}
	names := map[string]bool{}
	for _, g := range a {
		names[g.Theme] = true
	}
	for _, want := range []string{"AI & Autonomous Agents", "Stablecoin & PayFi Expansion", "Infrastructure & Validators"} {
		if !names[want] {
			t.Fatalf("missing %q in %v", want, names)
		}
	}
}

func TestMatchEmpty(t *testing.T) {
	if got := New(catalog.Default()).Match(nil); got != nil {
		t.Fatalf("got %+v", got)
	}
}
