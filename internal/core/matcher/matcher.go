// Package matcher assigns signals to catalog themes by keyword substring
// search over folded signal text
package matcher

import (
	"narrativeradar/internal/core/catalog"
	"narrativeradar/internal/core/normalize"
	"narrativeradar/internal/core/signals"
)

// Group is the set of signals that matched one theme
type Group struct {
	Theme   string
	Signals []signals.Signal
}

// Matcher is immutable after New and safe for concurrent use
type Matcher struct {
	themes []string
	ac     *automaton
	owner  []int // pattern id -> theme index
}

// New compiles every keyword of every theme into one automaton
func New(cat *catalog.Catalog) *Matcher {
	m := &Matcher{ac: newAutomaton()}
	for ti, th := range cat.Themes {
		m.themes = append(m.themes, th.Name)
		for _, kw := range th.Keywords {
			m.ac.add(normalize.Fold(kw), len(m.owner))
			m.owner = append(m.owner, ti)
		}
	}
	m.ac.build()
	return m
}

// Themes returns the theme names in catalog order
func (m *Matcher) Themes() []string { return append([]string(nil), m.themes...) }

// ThemesOf returns the indexes of every theme whose keywords occur in s
func (m *Matcher) ThemesOf(s signals.Signal) []int {
	hit := make([]bool, len(m.themes))
	left := len(m.themes)
	m.ac.scan(normalize.Fold(s.MatchText()), func(id int) bool {
		ti := m.owner[id]
		if !hit[ti] {
			hit[ti] = true
			left--
		}
		return left > 0
	})
	var out []int
	for i, h := range hit {
		if h {
			out = append(out, i)
		}
	}
	return out
}

// Match groups sigs by theme. A signal joins every theme it matches, at most
// once each. Groups follow catalog order and empty themes are dropped
func (m *Matcher) Match(sigs []signals.Signal) []Group {
	buckets := make([][]signals.Signal, len(m.themes))
	for _, s := range sigs {
		for _, ti := range m.ThemesOf(s) {
			buckets[ti] = append(buckets[ti], s)
		}
	}
	var out []Group
	for i, b := range buckets {
		if len(b) == 0 {
			continue
		}
		out = append(out, Group{Theme: m.themes[i], Signals: b})
	}
	return out
}
