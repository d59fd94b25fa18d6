// Package signals turns already-fetched collector payloads into uniform
// Signal records. Extraction is pure and never fails: missing fields
// contribute nothing
package signals

import (
	"fmt"
	"math"
	"sort"
	"strings"

	pstrings "narrativeradar/internal/platform/strings"
)

// Source identifies the family a signal came from
type Source string

// Source families
const (
	SourceCodeHosting Source = "github"
	SourceOnChain     Source = "defi"
	SourceSocial      Source = "social"
	SourceText        Source = "text_analysis"
)

// Signal kinds
const (
	KindNarrativeProbe     = "narrative_probe"
	KindNewRepo            = "new_repo"
	KindTrending           = "trending"
	KindTVLTrend           = "tvl_trend"
	KindCategory           = "category"
	KindFees               = "fees"
	KindStablecoins        = "stablecoins"
	KindDEXVolume          = "dex_volume"
	KindReddit             = "reddit"
	KindDeveloperQuestions = "developer_questions"
	KindGovernance         = "governance"
	KindBigram             = "bigram"
)

// Signal is one source-attributed observation. StrengthRaw is comparable only
// within a kind
type Signal struct {
	Source      Source         `json:"source"`
	Kind        string         `json:"type"`
	Topic       string         `json:"topic"`
	Text        string         `json:"text"`
	Metrics     map[string]any `json:"metrics"`
	StrengthRaw float64        `json:"strength_raw"`
}

// MatchText is the text keyword matching runs against, before folding
func (s Signal) MatchText() string { return s.Topic + " " + s.Text }

const (
	trendingLimit  = 5
	redditTop      = 5
	seTopTags      = 10
	seTextTags     = 5
	categoryMinTVL = 5_000_000
	stableMinTotal = 1e9
	feeGrowthPct   = 10
)

// FromGitHub extracts probe, new-repo and trending signals
func FromGitHub(p GitHubPayload) []Signal {
	var out []Signal

	for _, pr := range p.NarrativeProbes {
		if pr.Count <= 0 {
			continue
		}
		out = append(out, Signal{
			Source: SourceCodeHosting,
			Kind:   KindNarrativeProbe,
			Topic:  strings.ReplaceAll(pr.Query, "solana ", ""),
			Metrics: map[string]any{
				"repo_count":  pr.Count,
				"total_stars": pr.TotalStars,
			},
			Text:        fmt.Sprintf("%d active repos matching '%s' with %d combined stars", pr.Count, pr.Query, pr.TotalStars),
			StrengthRaw: float64(pr.Count),
		})
	}

	for _, r := range p.NewRepos {
		if len(r.Topics) == 0 && r.Description == "" {
			continue
		}
		topic := pstrings.Truncate(r.Description, 60)
		if len(r.Topics) > 0 {
			topic = strings.Join(pstrings.Head(r.Topics, 3), ", ")
		}
		out = append(out, Signal{
			Source:      SourceCodeHosting,
			Kind:        KindNewRepo,
			Topic:       topic,
			Metrics:     map[string]any{"stars": r.Stars, "name": r.Name},
			Text:        fmt.Sprintf("New repo: %s (%d stars) - %s", r.Name, r.Stars, pstrings.Truncate(r.Description, 80)),
			StrengthRaw: float64(max(r.Stars, 1)),
		})
	}

	for _, r := range pstrings.Head(p.TrendingRepos, trendingLimit) {
		out = append(out, Signal{
			Source:      SourceCodeHosting,
			Kind:        KindTrending,
			Topic:       strings.Join(pstrings.Head(r.Topics, 3), ", "),
			Metrics:     map[string]any{"stars": r.Stars, "name": r.Name},
			Text:        fmt.Sprintf("Trending: %s (%d stars)", r.Name, r.Stars),
			StrengthRaw: float64(r.Stars),
		})
	}

	return out
}

type categoryAgg struct {
	name      string
	tvl       float64
	changes   []float64
	protocols []string
}

// FromDeFi extracts TVL, category, fee, stablecoin and DEX signals
func FromDeFi(p DeFiPayload) []Signal {
	var out []Signal

	if p.TVL.CurrentUSD != 0 {
		direction := "outflow"
		if p.TVL.Change14dPct > 0 {
			direction = "inflow"
		}
		out = append(out, Signal{
			Source:      SourceOnChain,
			Kind:        KindTVLTrend,
			Topic:       "TVL " + direction,
			Metrics:     map[string]any{"tvl_usd": p.TVL.CurrentUSD, "change_pct": p.TVL.Change14dPct},
			Text:        fmt.Sprintf("Solana TVL: $%.2fB (%+.1f%% in 14d)", p.TVL.CurrentUSD/1e9, p.TVL.Change14dPct),
			StrengthRaw: math.Abs(p.TVL.Change14dPct),
		})
	}

	out = append(out, categorySignals(p.Protocols)...)

	if len(p.Fees) > 0 {
		var total float64
		growing := 0
		for _, f := range p.Fees {
			total += f.Fees24h
			if f.Change7dPct > feeGrowthPct {
				growing++
			}
		}
		out = append(out, Signal{
			Source: SourceOnChain,
			Kind:   KindFees,
			Topic:  "protocol revenue",
			Metrics: map[string]any{
				"total_24h":     total,
				"growing_count": growing,
				"top_earners":   pstrings.Head(p.Fees, 3),
			},
			Text:        fmt.Sprintf("$%.0fK daily protocol fees, %d protocols with >10%% weekly fee growth", total/1e3, growing),
			StrengthRaw: total / 1000,
		})
	}

	if total := p.Stablecoins.TotalMCapUSD; total > stableMinTotal {
		var minor float64
		for _, s := range p.Stablecoins.Assets {
			if s.Symbol != "USDC" && s.Symbol != "USDT" {
				minor += s.MCapUSD
			}
		}
		out = append(out, Signal{
			Source: SourceOnChain,
			Kind:   KindStablecoins,
			Topic:  "stablecoin ecosystem",
			Metrics: map[string]any{
				"total_mcap":     total,
				"non_major_mcap": minor,
				"assets":         pstrings.Head(p.Stablecoins.Assets, 5),
			},
			Text:        fmt.Sprintf("$%.1fB stablecoin supply, $%.0fM in non-USDC/USDT stables", total/1e9, minor/1e6),
			StrengthRaw: total / 1e9,
		})
	}

	if vol := p.DEX.Total24hUSD; vol != 0 {
		change := p.DEX.Change7dPct
		strength := math.Abs(change)
		if change == 0 {
			strength = vol / 1e8
		}
		out = append(out, Signal{
			Source: SourceOnChain,
			Kind:   KindDEXVolume,
			Topic:  "DEX trading",
			Metrics: map[string]any{
				"volume_24h":    vol,
				"change_7d_pct": change,
				"top_dexes":     pstrings.Head(p.DEX.TopDEXes, 3),
			},
			Text:        fmt.Sprintf("$%.0fM daily DEX volume (%+.1f%% WoW)", vol/1e6, change),
			StrengthRaw: strength,
		})
	}

	return out
}

// categorySignals groups protocols by category, ordered by summed TVL
// descending with first-seen order on ties, keeping categories above 5M TVL
func categorySignals(protocols []Protocol) []Signal {
	if len(protocols) == 0 {
		return nil
	}
	idx := map[string]int{}
	var aggs []*categoryAgg
	for _, p := range protocols {
		cat := p.Category
		if cat == "" {
			cat = "Other"
		}
		i, ok := idx[cat]
		if !ok {
			i = len(aggs)
			idx[cat] = i
			aggs = append(aggs, &categoryAgg{name: cat})
		}
		a := aggs[i]
		a.tvl += p.TVLUSD
		if p.Change7dPct != 0 {
			a.changes = append(a.changes, p.Change7dPct)
		}
		a.protocols = append(a.protocols, p.Name)
	}
	sort.SliceStable(aggs, func(i, j int) bool { return aggs[i].tvl > aggs[j].tvl })

	var out []Signal
	for _, a := range aggs {
		if a.tvl <= categoryMinTVL {
			continue
		}
		var avg float64
		if len(a.changes) > 0 {
			for _, c := range a.changes {
				avg += c
			}
			avg /= float64(len(a.changes))
		}
		strength := math.Abs(avg)
		if avg == 0 {
			strength = a.tvl / 1e9
		}
		out = append(out, Signal{
			Source: SourceOnChain,
			Kind:   KindCategory,
			Topic:  a.name,
			Metrics: map[string]any{
				"tvl_usd":        a.tvl,
				"avg_change_7d":  math.Round(avg*100) / 100,
				"protocol_count": len(a.protocols),
				"top_protocols":  pstrings.Head(a.protocols, 3),
			},
			Text:        fmt.Sprintf("%s: $%.0fM TVL across %d protocols (%+.1f%% avg 7d)", a.name, a.tvl/1e6, len(a.protocols), avg),
			StrengthRaw: strength,
		})
	}
	return out
}

// TagCount is a StackExchange tag with its question count
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// FromSocial extracts Reddit, StackExchange and forum signals
func FromSocial(p SocialPayload) []Signal {
	var out []Signal

	posts := p.Reddit.All()
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Score+posts[i].Comments > posts[j].Score+posts[j].Comments
	})
	for _, post := range pstrings.Head(posts, redditTop) {
		topic := post.Flair
		if topic == "" {
			topic = "discussion"
		}
		out = append(out, Signal{
			Source:      SourceSocial,
			Kind:        KindReddit,
			Topic:       topic,
			Metrics:     map[string]any{"score": post.Score, "comments": post.Comments, "title": post.Title},
			Text:        fmt.Sprintf("Reddit (%d↑, %d comments): \"%s\"", post.Score, post.Comments, pstrings.Truncate(post.Title, 80)),
			StrengthRaw: float64(post.Score + 2*post.Comments),
		})
	}

	if tags := topTags(p.StackExchange, seTopTags); len(tags) > 0 {
		names := make([]string, 0, seTextTags)
		for _, tc := range pstrings.Head(tags, seTextTags) {
			names = append(names, tc.Tag)
		}
		n := len(p.StackExchange)
		out = append(out, Signal{
			Source:      SourceSocial,
			Kind:        KindDeveloperQuestions,
			Topic:       "developer activity",
			Metrics:     map[string]any{"top_tags": tags, "question_count": n},
			Text:        fmt.Sprintf("%d active dev questions, top topics: %s", n, strings.Join(names, ", ")),
			StrengthRaw: float64(n),
		})
	}

	if len(p.Forum) > 0 {
		type item struct {
			Title string `json:"title"`
			Link  string `json:"link"`
		}
		items := make([]item, 0, 5)
		for _, f := range pstrings.Head(p.Forum, 5) {
			items = append(items, item{Title: f.Title, Link: f.Link})
		}
		out = append(out, Signal{
			Source:      SourceSocial,
			Kind:        KindGovernance,
			Topic:       "governance",
			Metrics:     map[string]any{"items": items},
			Text:        fmt.Sprintf("%d recent governance discussions: %s", len(p.Forum), pstrings.Truncate(p.Forum[0].Title, 60)),
			StrengthRaw: float64(len(p.Forum)),
		})
	}

	return out
}

// topTags counts tags across questions, most common first, first-seen order on ties
func topTags(qs []Question, n int) []TagCount {
	idx := map[string]int{}
	var counts []TagCount
	for _, q := range qs {
		for _, tag := range q.Tags {
			i, ok := idx[tag]
			if !ok {
				i = len(counts)
				idx[tag] = i
				counts = append(counts, TagCount{Tag: tag})
			}
			counts[i].Count++
		}
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return pstrings.Head(counts, n)
}

// Collect concatenates the signals of all three source families in
// code-hosting, on-chain, social order
func Collect(gh GitHubPayload, defi DeFiPayload, social SocialPayload) []Signal {
	out := FromGitHub(gh)
	out = append(out, FromDeFi(defi)...)
	return append(out, FromSocial(social)...)
}

// Corpus merges the collectors' lowercase text snippets
func Corpus(gh GitHubPayload, social SocialPayload) []string {
	out := make([]string, 0, len(gh.TextCorpus)+len(social.TextCorpus))
	out = append(out, gh.TextCorpus...)
	return append(out, social.TextCorpus...)
}
