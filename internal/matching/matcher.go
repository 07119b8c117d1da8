// Package matching resolves raw chart artist strings to genre table entries.
//
// Resolution runs an ordered chain of matchers over the normalized artist
// string and stops at the first one that yields a key present in the genre
// index. A string no matcher resolves is unmatched; that is a value, not an
// error.
package matching

import (
	"strings"

	"weatherchart/internal/join"
)

// Index answers whether a normalized artist name is a genre table key.
type Index interface {
	Has(key string) bool
}

// Matcher proposes a lookup key for a normalized artist string.
type Matcher interface {
	Name() string
	Match(normalized string, idx Index) (key string, ok bool)
}

// ExactMatcher looks up the whole normalized string.
type ExactMatcher struct{}

func (ExactMatcher) Name() string { return "exact" }

func (ExactMatcher) Match(normalized string, idx Index) (string, bool) {
	if normalized != "" && idx.Has(normalized) {
		return normalized, true
	}
	return "", false
}

// PrimaryArtistMatcher looks up the text before the first separator.
// Separators are literal and compared against the lowercased string, so
// "feat" without its period does not split.
type PrimaryArtistMatcher struct {
	Separators []string
}

func (PrimaryArtistMatcher) Name() string { return "primary_artist" }

func (m PrimaryArtistMatcher) Match(normalized string, idx Index) (string, bool) {
	primary, ok := m.Primary(normalized)
	if !ok || primary == "" || !idx.Has(primary) {
		return "", false
	}
	return primary, true
}

// Primary returns the trimmed token before the earliest separator. ok is
// false when no separator occurs.
func (m PrimaryArtistMatcher) Primary(s string) (string, bool) {
	cut := -1
	for _, sep := range m.Separators {
		if sep == "" {
			continue
		}
		if i := strings.Index(s, sep); i >= 0 && (cut < 0 || i < cut) {
			cut = i
		}
	}
	if cut < 0 {
		return "", false
	}
	return strings.TrimSpace(s[:cut]), true
}

// Chain evaluates matchers in order and counts which tier resolved each
// input.
type Chain struct {
	matchers []Matcher
	hits     []int
	misses   int
}

// NewChain builds a chain in evaluation order.
func NewChain(matchers ...Matcher) *Chain {
	return &Chain{matchers: matchers, hits: make([]int, len(matchers))}
}

// DefaultChain is exact match followed by primary-artist fallback.
func DefaultChain(separators []string) *Chain {
	return NewChain(ExactMatcher{}, PrimaryArtistMatcher{Separators: separators})
}

// Resolve normalizes raw and returns the first key a matcher finds, with
// the name of the matcher that found it.
func (c *Chain) Resolve(raw string, idx Index) (key, tier string, ok bool) {
	norm := join.Normalize(raw)
	if norm != "" {
		for i, m := range c.matchers {
			if k, ok := m.Match(norm, idx); ok {
				c.hits[i]++
				return k, m.Name(), true
			}
		}
	}
	c.misses++
	return "", "", false
}

// Hits returns the per-matcher resolution counts.
func (c *Chain) Hits() map[string]int {
	out := make(map[string]int, len(c.matchers))
	for i, m := range c.matchers {
		out[m.Name()] = c.hits[i]
	}
	return out
}

// Misses is the number of unresolved inputs.
func (c *Chain) Misses() int { return c.misses }
