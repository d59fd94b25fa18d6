package social

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"narrativeradar/internal/core/signals"
	perr "narrativeradar/internal/platform/errors"
)

type listing struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				Title       string  `json:"title"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				CreatedUTC  float64 `json:"created_utc"`
				URL         string  `json:"url"`
				Flair       string  `json:"link_flair_text"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Subreddit returns the hot link posts of r/sub
func (c *Collector) Subreddit(ctx context.Context, sub string, limit int) ([]signals.Post, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}, "raw_json": {"1"}}
	b, err := c.fetch(ctx, RedditUpstream, fmt.Sprintf("%s/r/%s/hot.json?%s", c.opts.RedditURL, sub, q.Encode()))
	if err != nil {
		return nil, err
	}
	var l listing
	if err := json.Unmarshal(b, &l); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "decode r/%s", sub)
	}
	out := []signals.Post{}
	for _, ch := range l.Data.Children {
		if ch.Kind != "t3" {
			continue
		}
		out = append(out, signals.Post{
			Title:      ch.Data.Title,
			Score:      ch.Data.Score,
			Comments:   ch.Data.NumComments,
			CreatedUTC: ch.Data.CreatedUTC,
			URL:        ch.Data.URL,
			Flair:      ch.Data.Flair,
			Subreddit:  sub,
		})
	}
	return out, nil
}

type questionItem struct {
	Title        string   `json:"title"`
	Score        int      `json:"score"`
	ViewCount    int      `json:"view_count"`
	AnswerCount  int      `json:"answer_count"`
	Tags         []string `json:"tags"`
	CreationDate int64    `json:"creation_date"`
	Link         string   `json:"link"`
}

// Questions returns the hot questions on the Solana StackExchange site
func (c *Collector) Questions(ctx context.Context) ([]signals.Question, error) {
	q := url.Values{
		"order":    {"desc"},
		"sort":     {"hot"},
		"site":     {"solana"},
		"pagesize": {strconv.Itoa(c.opts.QuestionLimit)},
		"filter":   {"default"},
	}
	b, err := c.fetch(ctx, StackExchangeUpstream, c.opts.StackExchangeURL+"/2.3/questions?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var body struct {
		Items []questionItem `json:"items"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "decode stackexchange")
	}
	out := make([]signals.Question, 0, len(body.Items))
	for _, it := range body.Items {
		tags := it.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, signals.Question{
			Title:   it.Title,
			Score:   it.Score,
			Views:   it.ViewCount,
			Answers: it.AnswerCount,
			Tags:    tags,
			Created: it.CreationDate,
			Link:    it.Link,
		})
	}
	return out, nil
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// Feed returns the first items of an RSS feed
func (c *Collector) Feed(ctx context.Context, f Feed) ([]signals.FeedItem, error) {
	b, err := c.fetch(ctx, FeedsUpstream, f.URL)
	if err != nil {
		return nil, err
	}
	items, err := parseItems(b, c.opts.FeedLimit)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUpstream, "parse feed %s", f.Source)
	}
	out := make([]signals.FeedItem, 0, len(items))
	for _, it := range items {
		out = append(out, signals.FeedItem{Title: it.Title, Link: it.Link, Date: it.PubDate, Source: f.Source})
	}
	return out, nil
}

// parseItems decodes up to limit <item> elements found anywhere in the document
func parseItems(b []byte, limit int) ([]rssItem, error) {
	dec := xml.NewDecoder(bytes.NewReader(b))
	var out []rssItem
	for len(out) < limit {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "item" {
			continue
		}
		var it rssItem
		if err := dec.DecodeElement(&it, &se); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}
