// Package strings holds small string and slice helpers shared across layers
package strings

import (
	std "strings"
	"unicode/utf8"
)

// IfEmpty returns def when in has no elements
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// Head returns at most the first n elements of in
func Head[T any](in []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(in) <= n {
		return in
	}
	return in[:n]
}

// Truncate returns at most n runes of s
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// MustPrefix normalizes a route root like /api to a single leading slash and
// no trailing slash. It panics on an empty root
func MustPrefix(s string) string {
	s = "/" + std.Trim(std.TrimSpace(s), " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}

// Title upper-cases the first letter of each space separated ASCII word and
// lower-cases the rest
func Title(s string) string {
	words := std.Fields(s)
	for i, w := range words {
		b := []byte(std.ToLower(w))
		if len(b) > 0 && b[0] >= 'a' && b[0] <= 'z' {
			b[0] -= 'a' - 'A'
		}
		words[i] = string(b)
	}
	return std.Join(words, " ")
}
