package signals

// Raw per-source payloads as produced by the collectors. Every field is
// optional; absent values decode to their zero value and contribute nothing

// Repo is one GitHub repository search hit
type Repo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Stars       int      `json:"stars"`
	Forks       int      `json:"forks"`
	Language    string   `json:"language,omitempty"`
	Topics      []string `json:"topics"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
	OpenIssues  int      `json:"open_issues"`
}

// Probe is the result of one narrative search query
type Probe struct {
	Query      string `json:"query"`
	Count      int    `json:"count"`
	TotalStars int    `json:"total_stars"`
	Repos      []Repo `json:"repos,omitempty"`
}

// GitHubPayload is the code-hosting collector output
type GitHubPayload struct {
	TrendingRepos   []Repo   `json:"trending_repos"`
	NewRepos        []Repo   `json:"new_repos"`
	MostActive      []Repo   `json:"most_active"`
	NarrativeProbes []Probe  `json:"narrative_probes"`
	TextCorpus      []string `json:"text_corpus"`
	UniqueRepoCount int      `json:"unique_repo_count"`
}

// TVLPoint is one daily chain TVL sample
type TVLPoint struct {
	Date string  `json:"date"`
	TVL  float64 `json:"tvl"`
}

// TVL is the chain TVL trend over the lookback window
type TVL struct {
	CurrentUSD   float64    `json:"current_usd"`
	Prev14dUSD   float64    `json:"prev_14d_usd"`
	Change14dPct float64    `json:"change_14d_pct"`
	Daily        []TVLPoint `json:"daily,omitempty"`
}

// Protocol is one DeFi protocol deployed on the chain
type Protocol struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	TVLUSD      float64 `json:"tvl_usd"`
	Change1dPct float64 `json:"change_1d_pct"`
	Change7dPct float64 `json:"change_7d_pct"`
	Slug        string  `json:"slug,omitempty"`
}

// Fee is one protocol's fee revenue
type Fee struct {
	Name        string  `json:"name"`
	Fees24h     float64 `json:"fees_24h"`
	Fees7d      float64 `json:"fees_7d"`
	Change7dPct float64 `json:"change_7d_pct"`
}

// DEX is one exchange's volume
type DEX struct {
	Name        string  `json:"name"`
	Volume24h   float64 `json:"volume_24h"`
	Change7dPct float64 `json:"change_7d_pct"`
}

// DEXOverview aggregates DEX volume on the chain
type DEXOverview struct {
	Total24hUSD float64 `json:"total_24h_usd"`
	Total7dUSD  float64 `json:"total_7d_usd"`
	Change7dPct float64 `json:"change_7d_pct"`
	TopDEXes    []DEX   `json:"top_dexes"`
}

// Stablecoin is one pegged asset's on-chain supply
type Stablecoin struct {
	Name    string  `json:"name"`
	Symbol  string  `json:"symbol"`
	MCapUSD float64 `json:"mcap_usd"`
}

// Stablecoins aggregates stablecoin supply on the chain
type Stablecoins struct {
	TotalMCapUSD float64      `json:"total_mcap_usd"`
	Assets       []Stablecoin `json:"assets"`
}

// Bridge is one bridge touching the chain
type Bridge struct {
	Name      string  `json:"name"`
	Volume24h float64 `json:"volume_24h"`
}

// Bridges summarises bridge flows
type Bridges struct {
	BridgeCount int      `json:"bridge_count"`
	Bridges     []Bridge `json:"bridges"`
}

// Network holds RPC-derived chain stats
type Network struct {
	AvgTPS         float64 `json:"avg_tps"`
	TotalSOL       float64 `json:"total_sol"`
	CirculatingSOL float64 `json:"circulating_sol"`
}

// DeFiPayload is the on-chain/DeFi collector output
type DeFiPayload struct {
	TVL         TVL         `json:"tvl"`
	Protocols   []Protocol  `json:"protocols"`
	Fees        []Fee       `json:"fees"`
	DEX         DEXOverview `json:"dex"`
	Stablecoins Stablecoins `json:"stablecoins"`
	Bridges     Bridges     `json:"bridges"`
	Network     Network     `json:"network"`
}

// Post is one Reddit post
type Post struct {
	Title      string  `json:"title"`
	Score      int     `json:"score"`
	Comments   int     `json:"comments"`
	CreatedUTC float64 `json:"created_utc"`
	URL        string  `json:"url"`
	Flair      string  `json:"flair"`
	Subreddit  string  `json:"subreddit"`
}

// Reddit holds hot posts per tracked subreddit
type Reddit struct {
	Solana    []Post `json:"solana"`
	SolanaDev []Post `json:"solanadev"`
}

// All returns r/solana posts followed by r/solanadev posts
func (r Reddit) All() []Post {
	out := make([]Post, 0, len(r.Solana)+len(r.SolanaDev))
	out = append(out, r.Solana...)
	return append(out, r.SolanaDev...)
}

// Question is one StackExchange question
type Question struct {
	Title   string   `json:"title"`
	Score   int      `json:"score"`
	Views   int      `json:"views"`
	Answers int      `json:"answers"`
	Tags    []string `json:"tags"`
	Created int64    `json:"created"`
	Link    string   `json:"link"`
}

// FeedItem is one RSS item
type FeedItem struct {
	Title  string `json:"title"`
	Link   string `json:"link"`
	Date   string `json:"date"`
	Source string `json:"source"`
}

// SocialPayload is the social/forum collector output
type SocialPayload struct {
	Reddit        Reddit     `json:"reddit"`
	StackExchange []Question `json:"stackexchange"`
	Blog          []FeedItem `json:"blog"`
	Forum         []FeedItem `json:"forum"`
	TextCorpus    []string   `json:"text_corpus"`
}
