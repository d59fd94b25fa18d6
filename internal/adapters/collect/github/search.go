package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"narrativeradar/internal/core/signals"
	perr "narrativeradar/internal/platform/errors"
)

// Query is one repository search
type Query struct {
	Q       string
	Sort    string
	Order   string
	PerPage int
}

// SearchResult is a decoded search page
type SearchResult struct {
	TotalCount int
	Repos      []signals.Repo
}

type searchResponse struct {
	TotalCount int        `json:"total_count"`
	Items      []repoItem `json:"items"`
}

type repoItem struct {
	FullName        string   `json:"full_name"`
	Description     *string  `json:"description"`
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	Language        *string  `json:"language"`
	Topics          []string `json:"topics"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	OpenIssuesCount int      `json:"open_issues_count"`
}

func (it repoItem) repo() signals.Repo {
	r := signals.Repo{
		Name:       it.FullName,
		Stars:      it.StargazersCount,
		Forks:      it.ForksCount,
		Topics:     it.Topics,
		CreatedAt:  it.CreatedAt,
		UpdatedAt:  it.UpdatedAt,
		OpenIssues: it.OpenIssuesCount,
	}
	if it.Description != nil {
		r.Description = *it.Description
	}
	if it.Language != nil {
		r.Language = *it.Language
	}
	if r.Topics == nil {
		r.Topics = []string{}
	}
	return r
}

func (q Query) path() string {
	v := url.Values{}
	v.Set("q", q.Q)
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return "/search/repositories?" + v.Encode()
}

// Search runs one repository search
func (c *Client) Search(ctx context.Context, q Query) (SearchResult, error) {
	resp, err := c.Get(ctx, q.path())
	if err != nil {
		return SearchResult{}, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("github close body failed")
		}
	}()

	var out searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&out); err != nil {
		return SearchResult{}, perr.Wrapf(err, perr.ErrorCodeJSON, "github decode search %q", q.Q)
	}
	res := SearchResult{TotalCount: out.TotalCount, Repos: make([]signals.Repo, 0, len(out.Items))}
	for _, it := range out.Items {
		res.Repos = append(res.Repos, it.repo())
	}
	return res, nil
}

// String is used in log lines
func (q Query) String() string { return fmt.Sprintf("%s sort=%s", q.Q, q.Sort) }
