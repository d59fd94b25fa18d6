// Package normalize folds free text into the form used for keyword matching
// and corpus mining
//
// Pipeline order
// 1 UTF-8 repair, invalid bytes dropped
// 2 Unicode NFKC
// 3 Case folding
// 4 Format characters removed (ZWSP, ZWJ, BOM)
// 5 Fullwidth forms folded to ASCII
//
// ASCII input takes a fast path equal to strings.ToLower
package normalize

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	},
}

// Fold returns the matching form of s
func Fold(s string) string {
	if s == "" {
		return ""
	}
	if isASCII(s) {
		return strings.ToLower(s)
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}


func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
