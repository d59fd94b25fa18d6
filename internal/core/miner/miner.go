// Package miner discovers themes the catalog does not cover by counting
// adjacent word pairs across the text corpus
package miner

import (
	"fmt"
	"regexp"
	"sort"

	"narrativeradar/internal/core/catalog"
	"narrativeradar/internal/core/normalize"
	"narrativeradar/internal/core/signals"
	pstrings "narrativeradar/internal/platform/strings"
)

const (
	// Window is how many of the most frequent bigrams are considered
	Window = 30
	// MinCount is the frequency a bigram needs to qualify
	MinCount = 3
	// Cap bounds the number of discovered themes per run
	Cap = 3
	// Weight multiplies a bigram count into a raw score
	Weight = 3

	minWordLen = 3
	suffix     = " (Emerging)"
)

var wordRe = regexp.MustCompile(`[a-z]+`)

// Discovered is one text-mined theme with its single synthetic signal
type Discovered struct {
	Name     string
	Bigram   [2]string
	Count    int
	RawScore float64
	Signal   signals.Signal
}

type bigram [2]string

type tally struct {
	bg    bigram
	count int
}

// Mine returns at most Cap discovered themes, most frequent first
func Mine(corpus []string, cat *catalog.Catalog) []Discovered {
	if len(corpus) == 0 {
		return nil
	}

	idx := map[bigram]int{}
	var counts []tally
	for _, text := range corpus {
		words := tokens(normalize.Fold(text), cat)
		for i := 0; i+1 < len(words); i++ {
			bg := bigram{words[i], words[i+1]}
			if j, ok := idx[bg]; ok {
				counts[j].count++
				continue
			}
			idx[bg] = len(counts)
			counts = append(counts, tally{bg: bg, count: 1})
		}
	}

	// equal counts keep first-seen order
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].count > counts[j].count })

	var out []Discovered
	for _, c := range pstrings.Head(counts, Window) {
		if c.count < MinCount {
			continue
		}
		w1, w2 := c.bg[0], c.bg[1]
		if cat.IsKnownWord(w1) || cat.IsKnownWord(w2) {
			continue
		}
		out = append(out, build(w1, w2, c.count))
		if len(out) == Cap {
			break
		}
	}
	return out
}

func tokens(text string, cat *catalog.Catalog) []string {
	all := wordRe.FindAllString(text, -1)
	out := all[:0]
	for _, w := range all {
		if len(w) < minWordLen || cat.IsStopWord(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func build(w1, w2 string, count int) Discovered {
	phrase := w1 + " " + w2
	return Discovered{
		Name:     pstrings.Title(phrase) + suffix,
		Bigram:   [2]string{w1, w2},
		Count:    count,
		RawScore: float64(count * Weight),
		Signal: signals.Signal{
			Source:      signals.SourceText,
			Kind:        signals.KindBigram,
			Topic:       phrase,
			Text:        fmt.Sprintf("Emerging topic %q appeared %d times across sources", phrase, count),
			Metrics:     map[string]any{"frequency": count},
			StrengthRaw: float64(count),
		},
	}
}
