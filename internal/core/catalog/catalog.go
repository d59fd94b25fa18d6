// Package catalog loads the hand-maintained theme catalog embedded in the
// binary: theme keywords, miner stop words, GitHub probes and idea templates
package catalog

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Theme is a named keyword list. Keywords are lowercase substrings
type Theme struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// IdeaTemplate is a fixed project idea tied to a catalog theme. Description
// is a text/template body
type IdeaTemplate struct {
	Theme       string `yaml:"theme"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Stack       string `yaml:"stack"`
	TargetUsers string `yaml:"target_users"`

	tmpl *template.Template
}

// Template returns the parsed description template
func (it IdeaTemplate) Template() *template.Template { return it.tmpl }

// Catalog is the parsed catalog file
type Catalog struct {
	Version      int            `yaml:"version"`
	Themes       []Theme        `yaml:"themes"`
	StopWords    []string       `yaml:"stop_words"`
	Probes       []string       `yaml:"probes"`
	IdeaPriority []string       `yaml:"idea_priority"`
	Ideas        []IdeaTemplate `yaml:"ideas"`

	stop  map[string]struct{}
	known map[string]struct{}
}

var wordRe = regexp.MustCompile(`[a-z]+`)

var (
	defOnce sync.Once
	defCat  *Catalog
	defErr  error
)

// Default returns the embedded catalog, parsed once. It panics if the
// embedded file is invalid, which a unit test guards
func Default() *Catalog {
	defOnce.Do(func() { defCat, defErr = Parse(embedded) })
	if defErr != nil {
		panic(defErr)
	}
	return defCat
}

// Load parses the embedded catalog afresh
func Load() (*Catalog, error) { return Parse(embedded) }

// Parse decodes and validates a catalog document
func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	for i := range c.Themes {
		for j, kw := range c.Themes[i].Keywords {
			c.Themes[i].Keywords[j] = strings.ToLower(strings.TrimSpace(kw))
		}
	}
	for i := range c.Ideas {
		t, err := template.New(c.Ideas[i].Theme).Option("missingkey=error").Parse(c.Ideas[i].Description)
		if err != nil {
			return nil, fmt.Errorf("catalog: idea %q: %w", c.Ideas[i].Title, err)
		}
		c.Ideas[i].tmpl = t
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.stop = make(map[string]struct{}, len(c.StopWords))
	for _, w := range c.StopWords {
		c.stop[strings.ToLower(w)] = struct{}{}
	}
	c.known = make(map[string]struct{})
	for _, th := range c.Themes {
		for _, kw := range th.Keywords {
			for _, w := range wordRe.FindAllString(kw, -1) {
				c.known[w] = struct{}{}
			}
		}
	}
	return &c, nil
}

// Validate reports the first structural problem in the catalog
func (c *Catalog) Validate() error {
	if len(c.Themes) == 0 {
		return fmt.Errorf("catalog: no themes")
	}
	seen := make(map[string]bool, len(c.Themes))
	for i, th := range c.Themes {
		if strings.TrimSpace(th.Name) == "" {
			return fmt.Errorf("catalog: theme %d has no name", i)
		}
		if seen[th.Name] {
			return fmt.Errorf("catalog: duplicate theme %q", th.Name)
		}
		seen[th.Name] = true
		if len(th.Keywords) == 0 {
			return fmt.Errorf("catalog: theme %q has no keywords", th.Name)
		}
		for _, kw := range th.Keywords {
			if kw == "" {
				return fmt.Errorf("catalog: theme %q has a blank keyword", th.Name)
			}
		}
	}
	for _, key := range c.IdeaPriority {
		if len(c.IdeasFor(key)) == 0 {
			return fmt.Errorf("catalog: idea priority %q has no template", key)
		}
	}
	return nil
}

// IsStopWord reports whether w is excluded from mining
func (c *Catalog) IsStopWord(w string) bool {
	_, ok := c.stop[w]
	return ok
}

// IsKnownWord reports whether w appears in any catalog keyword
func (c *Catalog) IsKnownWord(w string) bool {
	_, ok := c.known[w]
	return ok
}

// IdeaKeys returns the distinct idea template keys in declaration order
func (c *Catalog) IdeaKeys() []string {
	var keys []string
	seen := map[string]bool{}
	for _, it := range c.Ideas {
		if !seen[it.Theme] {
			seen[it.Theme] = true
			keys = append(keys, it.Theme)
		}
	}
	return keys
}

// IdeasFor returns the templates registered under key
func (c *Catalog) IdeasFor(key string) []IdeaTemplate {
	var out []IdeaTemplate
	for _, it := range c.Ideas {
		if it.Theme == key {
			out = append(out, it)
		}
	}
	return out
}
