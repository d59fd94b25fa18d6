package catalog

import (
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if len(c.Themes) != 15 {
		t.Fatalf("themes = %d, want 15", len(c.Themes))
	}
	if c.Themes[0].Name != "AI & Autonomous Agents" {
		t.Fatalf("first theme = %q", c.Themes[0].Name)
	}
	if len(c.Probes) != 8 {
		t.Fatalf("probes = %d, want 8", len(c.Probes))
	}
	if len(c.IdeaPriority) != 9 || len(c.IdeaKeys()) != 9 {
		t.Fatalf("idea keys = %d priority = %d", len(c.IdeaKeys()), len(c.IdeaPriority))
	}
	for _, it := range c.Ideas {
		if it.Template() == nil {
			t.Fatalf("idea %q has no parsed template", it.Title)
		}
	}
}

func TestStopAndKnownWords(t *testing.T) {
	c := Default()
	for _, w := range []string{"the", "solana", "supply", "validator"} {
		if !c.IsStopWord(w) {
			t.Fatalf("%q should be a stop word", w)
		}
	}
	if c.IsStopWord("agents") {
		t.Fatalf("agents is not a stop word")
	}
	// multi-word and hyphenated keywords are split into alphabetic words
	for _, w := range []string{"agent", "machine", "learning", "cross", "chain", "token", "order", "flow"} {
		if !c.IsKnownWord(w) {
			t.Fatalf("%q should be a known keyword word", w)
		}
	}
	if c.IsKnownWord("memecoin") {
		t.Fatalf("memecoin is not a catalog word")
	}
}

func TestParseRejectsBrokenCatalogs(t *testing.T) {
	cases := map[string]string{
		"no themes":       "version: 1\n",
		"duplicate theme": "themes:\n  - {name: A, keywords: [a]}\n  - {name: A, keywords: [b]}\n",
		"empty keywords":  "themes:\n  - {name: A, keywords: []}\n",
		"blank keyword":   "themes:\n  - {name: A, keywords: ['  ']}\n",
		"orphan priority": "themes:\n  - {name: A, keywords: [a]}\nidea_priority: [A]\n",
		"bad template":    "themes:\n  - {name: A, keywords: [a]}\nideas:\n  - {theme: A, title: T, description: '{{.Oops'}\n",
		"not yaml":        "themes: [",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseLowercasesKeywords(t *testing.T) {
	c, err := Parse([]byte("themes:\n  - {name: X, keywords: [' ZK Proof ']}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := c.Themes[0].Keywords[0]; got != "zk proof" {
		t.Fatalf("keyword = %q", got)
	}
	if !c.IsKnownWord("proof") || !c.IsKnownWord("zk") {
		t.Fatalf("known words not derived")
	}
}

func TestIdeaTemplateRenders(t *testing.T) {
	c := Default()
	ideas := c.IdeasFor("AI & Autonomous Agents")
	if len(ideas) != 1 {
		t.Fatalf("templates = %d", len(ideas))
	}
	var sb strings.Builder
	err := ideas[0].Template().Execute(&sb, map[string]string{
		"TopProtocols": "Jupiter, Raydium", "TVL": "$9.1B", "DEXVolume": "$1500M",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(sb.String(), "across Jupiter, Raydium. With $9.1B Solana TVL and $1500M daily") {
		t.Fatalf("rendered = %q", sb.String())
	}
}
