// Package domain holds the narratives service types and ports
package domain

import (
	"time"

	"narrativeradar/internal/core/ideas"
	"narrativeradar/internal/core/scorer"
	"narrativeradar/internal/core/signals"
	"narrativeradar/internal/core/trend"
)

// Period labels the lookback window every collector uses
const Period = "Last 14 days"

// Stats are the headline counts shown above the narratives
type Stats struct {
	GitHubRepos  int     `json:"github_repos"`
	GitHubProbes int     `json:"github_probes"`
	RedditPosts  int     `json:"reddit_posts"`
	SEQuestions  int     `json:"se_questions"`
	SignalsTotal int     `json:"signals_total"`
	TVLUSD       float64 `json:"tvl_usd"`
	AvgTPS       float64 `json:"avg_tps"`
	DEXVolume24h float64 `json:"dex_volume_24h"`
}

// GitHubView is the code-hosting data shown beside the narratives
type GitHubView struct {
	Trending []signals.Repo `json:"trending"`
	NewRepos []signals.Repo `json:"new_repos"`
}

// DeFiView is the on-chain data shown beside the narratives
type DeFiView struct {
	TVL         signals.TVL         `json:"tvl"`
	Protocols   []signals.Protocol  `json:"protocols"`
	Fees        []signals.Fee       `json:"fees"`
	DEX         signals.DEXOverview `json:"dex"`
	Stablecoins signals.Stablecoins `json:"stablecoins"`
	Network     signals.Network     `json:"network"`
}

// SocialView is the community data shown beside the narratives
type SocialView struct {
	RedditTop []signals.Post     `json:"reddit_top"`
	SETop     []signals.Question `json:"se_top"`
	Forum     []signals.FeedItem `json:"forum"`
}

// Result is one complete pipeline run
type Result struct {
	RunID       string             `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Period      string             `json:"period"`
	Stats       Stats              `json:"stats"`
	Narratives  []scorer.Narrative `json:"narratives"`
	Ideas       []ideas.Idea       `json:"ideas"`
	Deltas      []trend.Delta      `json:"deltas"`
	HasPrevious bool               `json:"has_previous"`
	GitHub      GitHubView         `json:"github"`
	DeFi        DeFiView           `json:"defi"`
	Social      SocialView         `json:"social"`
}

// NarrativesView is the /api/narratives body
type NarrativesView struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Narratives  []scorer.Narrative `json:"narratives"`
	Ideas       []ideas.Idea       `json:"ideas"`
	Deltas      []trend.Delta      `json:"deltas"`
}

// SignalsView is the /api/signals body
type SignalsView struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Stats       Stats      `json:"stats"`
	GitHub      GitHubView `json:"github"`
	DeFi        DeFiView   `json:"defi"`
	Social      SocialView `json:"social"`
}

// NarrativesView projects r onto the narratives view
func (r Result) NarrativesView() NarrativesView {
	return NarrativesView{GeneratedAt: r.GeneratedAt, Narratives: r.Narratives, Ideas: r.Ideas, Deltas: r.Deltas}
}

// SignalsView projects r onto the supporting data view
func (r Result) SignalsView() SignalsView {
	return SignalsView{GeneratedAt: r.GeneratedAt, Stats: r.Stats, GitHub: r.GitHub, DeFi: r.DeFi, Social: r.Social}
}

// Refreshed is the forced refresh acknowledgement
type Refreshed struct {
	Status          string    `json:"status"`
	GeneratedAt     time.Time `json:"generated_at"`
	NarrativesCount int       `json:"narratives_count"`
}

// SnapshotInfo lists one stored snapshot without its narratives
type SnapshotInfo struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	NarrativeCount int       `json:"narrative_count"`
	IdeaCount      int       `json:"idea_count"`
}

// Info summarizes s under the store-assigned id
func Info(id string, s trend.Snapshot) SnapshotInfo {
	return SnapshotInfo{ID: id, Timestamp: s.Timestamp, NarrativeCount: len(s.Narratives), IdeaCount: s.IdeaCount}
}

// CollectorStatus is the last outcome of one collector
type CollectorStatus struct {
	Name       string    `json:"name"`
	LastRun    time.Time `json:"last_run"`
	DurationMs int64     `json:"duration_ms"`
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
}

// BreakerStatus is one upstream circuit breaker
type BreakerStatus struct {
	Name                string `json:"name"`
	State               string `json:"state"`
	ConsecutiveFailures uint32 `json:"consecutive_failures"`
	TotalFailures       uint32 `json:"total_failures"`
}

// Health is the /api/health/collectors body
type Health struct {
	Collectors []CollectorStatus `json:"collectors"`
	Breakers   []BreakerStatus   `json:"breakers"`
}
