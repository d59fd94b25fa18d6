package signals

import (
	"strings"
	"testing"
)

func TestFromGitHub(t *testing.T) {
	p := GitHubPayload{
		NarrativeProbes: []Probe{
			{Query: "solana AI agent", Count: 12, TotalStars: 340},
			{Query: "solana depin", Count: 0},
		},
		NewRepos: []Repo{
			{Name: "a/agentkit", Description: "agent toolkit", Stars: 0, Topics: []string{"ai", "agents", "solana", "llm"}},
			{Name: "b/empty", Stars: 9},
			{Name: "c/desc-only", Description: strings.Repeat("x", 70), Stars: 3},
		},
		TrendingRepos: []Repo{
			{Name: "t/1", Stars: 100, Topics: []string{"defi"}},
			{Name: "t/2", Stars: 90},
			{Name: "t/3", Stars: 80},
			{Name: "t/4", Stars: 70},
			{Name: "t/5", Stars: 60},
			{Name: "t/6", Stars: 50},
		},
	}
	got := FromGitHub(p)
	if len(got) != 1+2+5 {
		t.Fatalf("signals = %d, want 8", len(got))
	}

	probe := got[0]
	if probe.Kind != KindNarrativeProbe || probe.Topic != "AI agent" || probe.StrengthRaw != 12 {
		t.Fatalf("probe = %+v", probe)
	}
	if probe.Text != "12 active repos matching 'solana AI agent' with 340 combined stars" {
		t.Fatalf("probe text = %q", probe.Text)
	}

	nr := got[1]
	if nr.Topic != "ai, agents, solana" || nr.StrengthRaw != 1 {
		t.Fatalf("new repo = %+v", nr)
	}
	if got[2].Topic != strings.Repeat("x", 60) {
		t.Fatalf("description topic not truncated: %q", got[2].Topic)
	}

	last := got[len(got)-1]
	if last.Kind != KindTrending || last.Metrics["name"] != "t/5" || last.StrengthRaw != 60 {
		t.Fatalf("trending cap broken: %+v", last)
	}
	for _, s := range got {
		if s.Source != SourceCodeHosting {
			t.Fatalf("source = %q", s.Source)
		}
	}
}

func TestFromDeFi(t *testing.T) {
	p := DeFiPayload{
		TVL: TVL{CurrentUSD: 9.2e9, Change14dPct: -3.5},
		Protocols: []Protocol{
			{Name: "Jupiter", Category: "Dexs", TVLUSD: 2e9, Change7dPct: 4},
			{Name: "Kamino", Category: "Lending", TVLUSD: 3e9},
			{Name: "Raydium", Category: "Dexs", TVLUSD: 1.5e9, Change7dPct: -2},
			{Name: "Tiny", Category: "Gaming", TVLUSD: 1e6, Change7dPct: 50},
		},
		Fees: []Fee{
			{Name: "Jupiter", Fees24h: 900_000, Change7dPct: 12},
			{Name: "Pump", Fees24h: 600_000, Change7dPct: 3},
		},
		Stablecoins: Stablecoins{TotalMCapUSD: 11e9, Assets: []Stablecoin{
			{Symbol: "USDC", MCapUSD: 8e9},
			{Symbol: "USDT", MCapUSD: 2e9},
			{Symbol: "PYUSD", MCapUSD: 0.6e9},
		}},
		DEX: DEXOverview{Total24hUSD: 2.5e9},
	}
	got := FromDeFi(p)
	kinds := make([]string, len(got))
	for i, s := range got {
		kinds[i] = s.Kind + ":" + s.Topic
	}
	want := []string{
		"tvl_trend:TVL outflow",
		"category:Dexs",
		"category:Lending",
		"fees:protocol revenue",
		"stablecoins:stablecoin ecosystem",
		"dex_volume:DEX trading",
	}
	if strings.Join(kinds, "|") != strings.Join(want, "|") {
		t.Fatalf("kinds = %v", kinds)
	}

	if got[0].StrengthRaw != 3.5 || got[0].Text != "Solana TVL: $9.20B (-3.5% in 14d)" {
		t.Fatalf("tvl = %+v", got[0])
	}
	// Dexs avg change (4 + -2)/2 = 1
	if got[1].StrengthRaw != 1 || got[1].Text != "Dexs: $3500M TVL across 2 protocols (+1.0% avg 7d)" {
		t.Fatalf("dexs = %+v", got[1])
	}
	// Lending has no non-zero change, strength falls back to TVL in billions
	if got[2].StrengthRaw != 3 {
		t.Fatalf("lending strength = %v", got[2].StrengthRaw)
	}
	if got[3].StrengthRaw != 1500 || !strings.Contains(got[3].Text, "1 protocols with >10% weekly fee growth") {
		t.Fatalf("fees = %+v", got[3])
	}
	if got[4].StrengthRaw != 11 || got[4].Text != "$11.0B stablecoin supply, $600M in non-USDC/USDT stables" {
		t.Fatalf("stables = %+v", got[4])
	}
	if got[5].StrengthRaw != 25 {
		t.Fatalf("dex strength = %v, want volume/1e8", got[5].StrengthRaw)
	}
}

func TestFromDeFiEmptyAndThresholds(t *testing.T) {
	if got := FromDeFi(DeFiPayload{}); len(got) != 0 {
		t.Fatalf("empty payload produced %d signals", len(got))
	}
	got := FromDeFi(DeFiPayload{
		TVL:         TVL{CurrentUSD: 1, Change14dPct: 2},
		Stablecoins: Stablecoins{TotalMCapUSD: 1e9},
		DEX:         DEXOverview{Total24hUSD: 1, Change7dPct: -8},
	})
	if len(got) != 2 {
		t.Fatalf("signals = %d, want tvl and dex only", len(got))
	}
	if got[0].Topic != "TVL inflow" || got[1].StrengthRaw != 8 {
		t.Fatalf("got %+v", got)
	}
}

func TestFromSocial(t *testing.T) {
	p := SocialPayload{
		Reddit: Reddit{
			Solana: []Post{
				{Title: "low", Score: 1},
				{Title: "Firedancer is live", Score: 50, Comments: 10, Flair: "News"},
				{Title: "b", Score: 5},
				{Title: "c", Score: 4},
			},
			SolanaDev: []Post{
				{Title: "How do transfer hooks work", Score: 20, Comments: 30},
				{Title: "d", Score: 3},
			},
		},
		StackExchange: []Question{
			{Title: "q1", Tags: []string{"anchor", "pda"}},
			{Title: "q2", Tags: []string{"pda", "token-2022"}},
			{Title: "q3"},
		},
		Forum: []FeedItem{{Title: "SIMD-0228: inflation", Link: "https://forum"}, {Title: "other"}},
	}
	got := FromSocial(p)
	if len(got) != 5+1+1 {
		t.Fatalf("signals = %d", len(got))
	}
	if got[0].Topic != "News" || got[0].StrengthRaw != 70 {
		t.Fatalf("top post = %+v", got[0])
	}
	if got[1].Topic != "discussion" || got[1].StrengthRaw != 80 {
		t.Fatalf("second post = %+v", got[1])
	}
	if got[0].Text != `Reddit (50↑, 10 comments): "Firedancer is live"` {
		t.Fatalf("reddit text = %q", got[0].Text)
	}

	dq := got[5]
	if dq.Kind != KindDeveloperQuestions || dq.StrengthRaw != 3 {
		t.Fatalf("dev questions = %+v", dq)
	}
	if dq.Text != "3 active dev questions, top topics: pda, anchor, token-2022" {
		t.Fatalf("dev text = %q", dq.Text)
	}

	gov := got[6]
	if gov.Kind != KindGovernance || gov.StrengthRaw != 2 || gov.Text != "2 recent governance discussions: SIMD-0228: inflation" {
		t.Fatalf("governance = %+v", gov)
	}
}

func TestFromSocialNoTags(t *testing.T) {
	got := FromSocial(SocialPayload{StackExchange: []Question{{Title: "untagged"}}})
	if len(got) != 0 {
		t.Fatalf("untagged questions should not produce a signal, got %+v", got)
	}
}

func TestCollectAndCorpus(t *testing.T) {
	gh := GitHubPayload{
		NarrativeProbes: []Probe{{Query: "solana depin", Count: 2}},
		TextCorpus:      []string{"gh one"},
	}
	soc := SocialPayload{Forum: []FeedItem{{Title: "x"}}, TextCorpus: []string{"social one", "social two"}}
	all := Collect(gh, DeFiPayload{TVL: TVL{CurrentUSD: 5}}, soc)
	if len(all) != 3 || all[0].Source != SourceCodeHosting || all[1].Source != SourceOnChain || all[2].Source != SourceSocial {
		t.Fatalf("Collect order = %+v", all)
	}
	c := Corpus(gh, soc)
	if strings.Join(c, "|") != "gh one|social one|social two" {
		t.Fatalf("Corpus = %v", c)
	}
}
