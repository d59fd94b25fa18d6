package service

import (
	"cmp"
	"context"
	"slices"

	"narrativeradar/internal/core/ideas"
	"narrativeradar/internal/core/miner"
	"narrativeradar/internal/core/scorer"
	"narrativeradar/internal/core/signals"
	"narrativeradar/internal/core/trend"
	"narrativeradar/internal/platform/logger"
	pstrings "narrativeradar/internal/platform/strings"
	dom "narrativeradar/internal/services/narratives/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	colGitHub = "github"
	colDeFi   = "defi"
	colSocial = "social"
)

var collectorNames = []string{colGitHub, colDeFi, colSocial}

func newRunID() string { return uuid.NewString() }

// run executes one full pipeline. It never fails: collectors and stores
// degrade to empty input or skipped persistence
func (s *Service) run(ctx context.Context) dom.Result {
	runID := s.newID()
	ctx = logger.WithRun(ctx, runID)
	log := s.log(ctx)
	timer := s.metrics.StartPipeline()
	now := s.now().UTC()

	log.Info().Msg("pipeline started")

	gh, defi, social := s.collect(ctx)

	sigs := signals.Collect(gh, defi, social)
	groups := s.match.Match(sigs)
	discovered := miner.Mine(signals.Corpus(gh, social), s.cat)
	ns := scorer.Score(groups, discovered)
	ideaList := ideas.Synthesize(ns, ideas.FiguresFrom(defi), s.cat)

	snap := trend.Summarize(runID, now, ns, len(ideaList))
	snapID, err := s.snapshots.Save(ctx, snap)
	if err != nil {
		log.Error().Err(err).Msg("snapshot save failed")
	}
	prev, err := s.snapshots.Previous(ctx, snapID)
	if err != nil {
		log.Warn().Err(err).Msg("previous snapshot unavailable")
		prev = nil
	}
	deltas := trend.Deltas(ns, prev)
	trend.Annotate(ns, deltas)

	if s.history != nil {
		if err := s.history.Append(ctx, runID, now, ns); err != nil {
			log.Warn().Err(err).Msg("history append failed")
		}
	}

	res := dom.Result{
		RunID:       runID,
		GeneratedAt: now,
		Period:      dom.Period,
		Stats:       stats(gh, defi, social, len(sigs)),
		Narratives:  ns,
		Ideas:       ideaList,
		Deltas:      deltas,
		HasPrevious: prev != nil,
		GitHub:      githubView(gh),
		DeFi:        defiView(defi),
		Social:      socialView(social),
	}
	if res.Narratives == nil {
		res.Narratives = []scorer.Narrative{}
	}

	s.cache.Set(ctx, res)
	if s.publisher != nil {
		s.publisher.Publish(res)
	}

	bySource := map[string]int{}
	for _, sig := range sigs {
		bySource[string(sig.Source)]++
	}
	catalogCount := 0
	for _, n := range ns {
		if !n.Discovered {
			catalogCount++
		}
	}
	s.metrics.ObserveRun(bySource, catalogCount, len(ns)-catalogCount)
	d := timer.Stop("ok")

	log.Info().
		Int("narratives", len(ns)).
		Int("ideas", len(ideaList)).
		Int("signals", len(sigs)).
		Bool("has_previous", prev != nil).
		Str("snapshot", snapID).
		Dur("took", d).
		Msg("pipeline complete")
	return res
}

// collect runs the three collectors concurrently. A failed or missing
// collector contributes its empty payload
func (s *Service) collect(ctx context.Context) (gh signals.GitHubPayload, defi signals.DeFiPayload, social signals.SocialPayload) {
	g, gctx := errgroup.WithContext(ctx)
	if c := s.collectors.GitHub; c != nil {
		g.Go(func() error { gh = fetch(gctx, s, colGitHub, c.Collect); return nil })
	}
	if c := s.collectors.DeFi; c != nil {
		g.Go(func() error { defi = fetch(gctx, s, colDeFi, c.Collect); return nil })
	}
	if c := s.collectors.Social; c != nil {
		g.Go(func() error { social = fetch(gctx, s, colSocial, c.Collect); return nil })
	}
	_ = g.Wait()
	return gh, defi, social
}

func fetch[T any](ctx context.Context, s *Service, name string, fn func(context.Context) (T, error)) T {
	timer := s.metrics.StartCollector()
	v, err := fn(ctx)
	d := timer.Stop(name)

	st := dom.CollectorStatus{Name: name, LastRun: s.now().UTC(), DurationMs: d.Milliseconds(), OK: err == nil}
	if err != nil {
		st.Error = err.Error()
		s.metrics.CollectorFailed(name)
		s.log(ctx).Error().Err(err).Str("collector", name).Dur("took", d).Msg("collector failed")
		var zero T
		v = zero
	}
	s.mu.Lock()
	s.health[name] = st
	s.mu.Unlock()
	return v
}

func stats(gh signals.GitHubPayload, defi signals.DeFiPayload, social signals.SocialPayload, total int) dom.Stats {
	return dom.Stats{
		GitHubRepos:  gh.UniqueRepoCount,
		GitHubProbes: len(gh.NarrativeProbes),
		RedditPosts:  len(social.Reddit.Solana) + len(social.Reddit.SolanaDev),
		SEQuestions:  len(social.StackExchange),
		SignalsTotal: total,
		TVLUSD:       defi.TVL.CurrentUSD,
		AvgTPS:       defi.Network.AvgTPS,
		DEXVolume24h: defi.DEX.Total24hUSD,
	}
}

func githubView(gh signals.GitHubPayload) dom.GitHubView {
	return dom.GitHubView{
		Trending: orEmpty(pstrings.Head(gh.TrendingRepos, 10)),
		NewRepos: orEmpty(pstrings.Head(gh.NewRepos, 10)),
	}
}

func defiView(d signals.DeFiPayload) dom.DeFiView {
	return dom.DeFiView{
		TVL:         d.TVL,
		Protocols:   orEmpty(pstrings.Head(d.Protocols, 12)),
		Fees:        orEmpty(pstrings.Head(d.Fees, 10)),
		DEX:         d.DEX,
		Stablecoins: d.Stablecoins,
		Network:     d.Network,
	}
}

func socialView(sp signals.SocialPayload) dom.SocialView {
	top := slices.Clone(sp.Reddit.Solana)
	slices.SortStableFunc(top, func(a, b signals.Post) int { return cmp.Compare(b.Score, a.Score) })
	return dom.SocialView{
		RedditTop: orEmpty(pstrings.Head(top, 5)),
		SETop:     orEmpty(pstrings.Head(sp.StackExchange, 5)),
		Forum:     orEmpty(pstrings.Head(sp.Forum, 5)),
	}
}

func orEmpty[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
