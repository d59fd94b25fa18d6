// Package ideas ties catalog idea templates to the strongest narratives and
// renders them with live DeFi figures
package ideas

import (
	"fmt"
	"strings"

	"narrativeradar/internal/core/catalog"
	"narrativeradar/internal/core/scorer"
	"narrativeradar/internal/core/signals"
	pstrings "narrativeradar/internal/platform/strings"
)

// Limit caps the number of ideas per run
const Limit = 5

const fuzzyMinLen = 4

var (
	defaultProtocols = []string{"Jupiter", "Raydium"}
	defaultDEXes     = []string{"Jupiter"}
)

// Figures are the live numbers interpolated into idea descriptions
type Figures struct {
	TopProtocols     string `json:"top_protocols"`
	TopFeeEarners    string `json:"top_fee_earners"`
	TopDEX           string `json:"top_dex"`
	StableSymbols    string `json:"stable_symbols"`
	TVL              string `json:"tvl"`
	StablecoinSupply string `json:"stablecoin_supply"`
	DEXVolume        string `json:"dex_volume"`
}

// Idea is one rendered project suggestion
type Idea struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Stack          string  `json:"solana_stack"`
	TargetUsers    string  `json:"target_users"`
	TiedNarrative  string  `json:"tied_narrative"`
	NarrativeScore float64 `json:"narrative_score"`
	SignalCount    int     `json:"signal_count"`
}

// FiguresFrom derives display figures from the DeFi payload. Missing lists
// fall back to well-known names
func FiguresFrom(p signals.DeFiPayload) Figures {
	protocols := names(pstrings.Head(p.Protocols, 5), func(x signals.Protocol) string { return x.Name })
	fees := names(pstrings.Head(p.Fees, 3), func(x signals.Fee) string { return x.Name })
	dexes := names(pstrings.Head(p.DEX.TopDEXes, 3), func(x signals.DEX) string { return x.Name })
	stables := names(pstrings.Head(p.Stablecoins.Assets, 4), func(x signals.Stablecoin) string { return x.Symbol })

	return Figures{
		TopProtocols:     strings.Join(pstrings.Head(pstrings.IfEmpty(protocols, defaultProtocols), 3), ", "),
		TopFeeEarners:    strings.Join(pstrings.IfEmpty(fees, defaultProtocols), ", "),
		TopDEX:           pstrings.IfEmpty(dexes, defaultDEXes)[0],
		StableSymbols:    strings.Join(stables, ", "),
		TVL:              fmt.Sprintf("$%.1fB", p.TVL.CurrentUSD/1e9),
		StablecoinSupply: fmt.Sprintf("$%.1fB", p.Stablecoins.TotalMCapUSD/1e9),
		DEXVolume:        fmt.Sprintf("$%.0fM", p.DEX.Total24hUSD/1e6),
	}
}

func names[T any](in []T, get func(T) string) []string {
	out := make([]string, 0, len(in))
	for _, x := range in {
		out = append(out, get(x))
	}
	return out
}

// Synthesize returns up to Limit ideas. Narratives are walked in rank order
// and matched to a template key exactly or by a long key word occurring in the
// narrative name. Unfilled slots come from the catalog priority order
func Synthesize(ns []scorer.Narrative, fig Figures, cat *catalog.Catalog) []Idea {
	order := keyOrder(cat)
	used := map[string]bool{}
	var out []Idea

	for _, n := range ns {
		if len(out) >= Limit {
			break
		}
		key := match(n.Name, order)
		if key == "" || used[key] {
			continue
		}
		used[key] = true
		out = append(out, render(cat.IdeasFor(key), fig, n.Name, n.Score, n.SignalCount)...)
	}

	for _, key := range order {
		if len(out) >= Limit {
			break
		}
		if used[key] {
			continue
		}
		used[key] = true
		var score float64
		var count int
		if tied, ok := find(ns, key); ok {
			score, count = tied.Score, tied.SignalCount
		}
		out = append(out, render(cat.IdeasFor(key), fig, key, score, count)...)
	}
	return pstrings.Head(out, Limit)
}

// keyOrder is the priority list followed by any template key it omits
func keyOrder(cat *catalog.Catalog) []string {
	seen := map[string]bool{}
	var order []string
	for _, k := range append(append([]string(nil), cat.IdeaPriority...), cat.IdeaKeys()...) {
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}
	return order
}

func match(name string, order []string) string {
	for _, k := range order {
		if k == name {
			return k
		}
	}
	lower := strings.ToLower(name)
	for _, k := range order {
		for _, w := range strings.Fields(strings.ToLower(k)) {
			if len(w) >= fuzzyMinLen && strings.Contains(lower, w) {
				return k
			}
		}
	}
	return ""
}

func find(ns []scorer.Narrative, name string) (scorer.Narrative, bool) {
	for _, n := range ns {
		if n.Name == name {
			return n, true
		}
	}
	return scorer.Narrative{}, false
}

func render(tmpls []catalog.IdeaTemplate, fig Figures, tied string, score float64, count int) []Idea {
	out := make([]Idea, 0, len(tmpls))
	for _, it := range tmpls {
		out = append(out, Idea{
			Title:          it.Title,
			Description:    describe(it, fig),
			Stack:          it.Stack,
			TargetUsers:    it.TargetUsers,
			TiedNarrative:  tied,
			NarrativeScore: score,
			SignalCount:    count,
		})
	}
	return out
}

// describe renders the description, keeping the raw template text if it
// cannot execute
func describe(it catalog.IdeaTemplate, fig Figures) string {
	t := it.Template()
	if t == nil {
		return it.Description
	}
	var sb strings.Builder
	if err := t.Execute(&sb, fig); err != nil {
		return it.Description
	}
	return sb.String()
}
