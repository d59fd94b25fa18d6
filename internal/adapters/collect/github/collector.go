package github

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"narrativeradar/internal/adapters/collect/breaker"
	"narrativeradar/internal/core/signals"
	"narrativeradar/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

const (
	// Upstream names the breaker guarding the search API
	Upstream = "github"

	lookback      = 14 * 24 * time.Hour
	activeWindow  = 7 * 24 * time.Hour
	listCap       = 15
	probeRepos    = 3
	probeParallel = 5
	dateLayout    = "2006-01-02"
)

// Collector runs the discovery searches and narrative probes
type Collector struct {
	client   *Client
	probes   []string
	breakers *breaker.Manager
	now      func() time.Time
	log      logger.Logger
}

// CollectorOption configures a Collector
type CollectorOption func(*Collector)

// WithBreakers routes every search through m
func WithBreakers(m *breaker.Manager) CollectorOption {
	return func(c *Collector) { c.breakers = m }
}

// WithClock pins the clock used for date qualifiers
func WithClock(now func() time.Time) CollectorOption {
	return func(c *Collector) { c.now = now }
}

// NewCollector returns a Collector probing the given free-text queries
func NewCollector(client *Client, probes []string, opts ...CollectorOption) *Collector {
	c := &Collector{
		client: client,
		probes: probes,
		now:    time.Now,
		log:    *logger.Named("collect.github"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Collector) search(ctx context.Context, q Query) (SearchResult, error) {
	return breaker.Do(c.breakers, Upstream, func() (SearchResult, error) {
		return c.client.Search(ctx, q)
	})
}

// Collect runs every search. Failed searches contribute nothing; an error is
// returned only when no search succeeded
func (c *Collector) Collect(ctx context.Context) (signals.GitHubPayload, error) {
	now := c.now().UTC()
	since := now.Add(-lookback).Format(dateLayout)
	week := now.Add(-activeWindow).Format(dateLayout)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Format(dateLayout)

	lists := []Query{
		{Q: "topic:solana pushed:>" + since, Sort: "stars", Order: "desc", PerPage: 50},
		{Q: "topic:solana created:>" + month, Sort: "stars", Order: "desc", PerPage: 30},
		{Q: "topic:solana pushed:>" + week + " stars:>10", Sort: "updated", Order: "desc", PerPage: 30},
	}
	listOut := make([][]signals.Repo, len(lists))
	probeOut := make([]*signals.Probe, len(c.probes))

	var (
		mu    sync.Mutex
		errs  []error
		okAny bool
	)
	record := func(q Query, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, err)
			c.log.Warn().Err(err).Str("query", q.String()).Msg("github search failed")
			return
		}
		okAny = true
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeParallel)
	for i, q := range lists {
		g.Go(func() error {
			res, err := c.search(gctx, q)
			record(q, err)
			if err == nil {
				listOut[i] = res.Repos
			}
			return nil
		})
	}
	for i, p := range c.probes {
		q := Query{Q: p + " pushed:>" + since, Sort: "stars", Order: "desc", PerPage: 5}
		g.Go(func() error {
			res, err := c.search(gctx, q)
			record(q, err)
			if err != nil {
				return nil
			}
			stars := 0
			for _, r := range res.Repos {
				stars += r.Stars
			}
			probeOut[i] = &signals.Probe{
				Query:      p,
				Count:      res.TotalCount,
				TotalStars: stars,
				Repos:      head(res.Repos, probeRepos),
			}
			return nil
		})
	}
	_ = g.Wait()

	if !okAny && len(errs) > 0 {
		return signals.GitHubPayload{}, errors.Join(errs...)
	}
	return assemble(listOut[0], listOut[1], listOut[2], probeOut), nil
}

// assemble builds the payload. The corpus and unique count cover every
// listed repo fetched, while the published lists are capped
func assemble(trending, fresh, active []signals.Repo, probes []*signals.Probe) signals.GitHubPayload {
	p := signals.GitHubPayload{
		TrendingRepos:   head(trending, listCap),
		NewRepos:        head(fresh, listCap),
		MostActive:      head(active, listCap),
		NarrativeProbes: []signals.Probe{},
		TextCorpus:      []string{},
	}
	seen := map[string]bool{}
	add := func(rs []signals.Repo) {
		for _, r := range rs {
			if r.Name == "" || seen[r.Name] {
				continue
			}
			seen[r.Name] = true
			if line := corpusLine(r); strings.TrimSpace(line) != "" {
				p.TextCorpus = append(p.TextCorpus, line)
			}
		}
	}
	add(trending)
	add(fresh)
	add(active)
	for _, pr := range probes {
		if pr == nil {
			continue
		}
		p.NarrativeProbes = append(p.NarrativeProbes, *pr)
	}
	p.UniqueRepoCount = len(seen)
	return p
}

func corpusLine(r signals.Repo) string {
	return strings.ToLower(r.Description + " " + strings.Join(r.Topics, " "))
}

func head[T any](xs []T, n int) []T {
	if len(xs) > n {
		xs = xs[:n]
	}
	out := make([]T, len(xs))
	copy(out, xs)
	return out
}
