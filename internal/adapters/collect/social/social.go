// Package social collects community chatter from Reddit, StackExchange and
// the Solana blog and forum feeds
package social

import (
	"context"
	"errors"
	"strings"

	"narrativeradar/internal/adapters/collect/breaker"
	"narrativeradar/internal/adapters/collect/rest"
	"narrativeradar/internal/core/signals"
	"narrativeradar/internal/platform/logger"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

// Breaker names, one per upstream host
const (
	RedditUpstream        = "reddit"
	StackExchangeUpstream = "stackexchange"
	FeedsUpstream         = "rss"
)

// Feed is one RSS source
type Feed struct {
	URL    string
	Source string
}

// Options configures the Collector
type Options struct {
	RedditURL        string
	StackExchangeURL string
	Blog             Feed
	Forum            Feed
	SolanaLimit      int
	SolanaDevLimit   int
	QuestionLimit    int
	FeedLimit        int
	HTTP             rest.Options
}

// DefaultOptions points at the public endpoints
func DefaultOptions() Options {
	return Options{
		RedditURL:        "https://www.reddit.com",
		StackExchangeURL: "https://api.stackexchange.com",
		Blog:             Feed{URL: "https://solana.com/news/rss.xml", Source: "Solana Blog"},
		Forum:            Feed{URL: "https://forum.solana.com/latest.rss", Source: "Solana Forum"},
		SolanaLimit:      30,
		SolanaDevLimit:   20,
		QuestionLimit:    20,
		FeedLimit:        15,
		HTTP: rest.Options{
			UserAgent: "Mozilla/5.0 (compatible; NarrativeRadar/1.0; research)",
		},
	}
}

// Collector fetches every source concurrently; each source fails soft
type Collector struct {
	httpClient *resty.Client
	opts       Options
	breakers   *breaker.Manager
	log        logger.Logger
}

// Option configures a Collector
type Option func(*Collector)

// WithBreakers routes requests through m
func WithBreakers(m *breaker.Manager) Option { return func(c *Collector) { c.breakers = m } }

// WithHTTPClient swaps the resty client
func WithHTTPClient(h *resty.Client) Option { return func(c *Collector) { c.httpClient = h } }

// New returns a Collector. Zero fields in o take DefaultOptions values
func New(o Options, opts ...Option) *Collector {
	d := DefaultOptions()
	if o.RedditURL == "" {
		o.RedditURL = d.RedditURL
	}
	if o.StackExchangeURL == "" {
		o.StackExchangeURL = d.StackExchangeURL
	}
	if o.Blog.URL == "" {
		o.Blog = d.Blog
	}
	if o.Forum.URL == "" {
		o.Forum = d.Forum
	}
	if o.SolanaLimit <= 0 {
		o.SolanaLimit = d.SolanaLimit
	}
	if o.SolanaDevLimit <= 0 {
		o.SolanaDevLimit = d.SolanaDevLimit
	}
	if o.QuestionLimit <= 0 {
		o.QuestionLimit = d.QuestionLimit
	}
	if o.FeedLimit <= 0 {
		o.FeedLimit = d.FeedLimit
	}
	if o.HTTP.UserAgent == "" {
		o.HTTP.UserAgent = d.HTTP.UserAgent
	}
	c := &Collector{httpClient: rest.New(o.HTTP), opts: o, log: *logger.Named("collect.social")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) fetch(ctx context.Context, upstream, url string) ([]byte, error) {
	b, err := breaker.Do(c.breakers, upstream, func() ([]byte, error) {
		return rest.Body(ctx, c.httpClient, url)
	})
	if err != nil {
		c.log.Warn().Err(err).Str("upstream", upstream).Str("url", url).Msg("social source failed")
	}
	return b, err
}

// Collect gathers the social payload. The returned error is non-nil only
// when every source failed
func (c *Collector) Collect(ctx context.Context) (signals.SocialPayload, error) {
	var p signals.SocialPayload
	errs := make([]error, 5)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { p.Reddit.Solana, errs[0] = c.Subreddit(gctx, "solana", c.opts.SolanaLimit); return nil })
	g.Go(func() error { p.Reddit.SolanaDev, errs[1] = c.Subreddit(gctx, "solanadev", c.opts.SolanaDevLimit); return nil })
	g.Go(func() error { p.StackExchange, errs[2] = c.Questions(gctx); return nil })
	g.Go(func() error { p.Blog, errs[3] = c.Feed(gctx, c.opts.Blog); return nil })
	g.Go(func() error { p.Forum, errs[4] = c.Feed(gctx, c.opts.Forum); return nil })
	_ = g.Wait()

	p.Reddit.Solana = orEmpty(p.Reddit.Solana)
	p.Reddit.SolanaDev = orEmpty(p.Reddit.SolanaDev)
	p.StackExchange = orEmpty(p.StackExchange)
	p.Blog = orEmpty(p.Blog)
	p.Forum = orEmpty(p.Forum)
	p.TextCorpus = corpus(p)

	c.log.Info().
		Int("reddit", len(p.Reddit.Solana)).
		Int("reddit_dev", len(p.Reddit.SolanaDev)).
		Int("stackexchange", len(p.StackExchange)).
		Int("blog", len(p.Blog)).
		Int("forum", len(p.Forum)).
		Msg("social collected")

	for _, err := range errs {
		if err == nil {
			return p, nil
		}
	}
	return p, errors.Join(errs...)
}

func corpus(p signals.SocialPayload) []string {
	out := []string{}
	add := func(s string) {
		if s != "" {
			out = append(out, strings.ToLower(s))
		}
	}
	for _, post := range p.Reddit.All() {
		add(post.Title)
	}
	for _, q := range p.StackExchange {
		add(q.Title)
		for _, t := range q.Tags {
			out = append(out, strings.ToLower(t))
		}
	}
	for _, it := range p.Blog {
		add(it.Title)
	}
	for _, it := range p.Forum {
		add(it.Title)
	}
	return out
}

func orEmpty[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
