// Package join holds the pieces shared by the region-keyed left joins:
// key normalization, region resolution and a streaming column appender.
package join

import (
	"sort"
	"strings"
)

// Normalize is the lookup key form of a name: lowercased and trimmed.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Resolver maps a chart region to a reference country name. A region
// resolves by normalized exact match first; failing that, an override
// applies, but only when its target exists in the reference set.
type Resolver struct {
	canonical map[string]string
	overrides map[string]string
}

// NewResolver indexes the reference country names.
func NewResolver(countries []string, overrides map[string]string) *Resolver {
	r := &Resolver{
		canonical: make(map[string]string, len(countries)),
		overrides: make(map[string]string, len(overrides)),
	}
	for _, c := range countries {
		k := Normalize(c)
		if k == "" {
			continue
		}
		if _, dup := r.canonical[k]; !dup {
			r.canonical[k] = c
		}
	}
	for from, to := range overrides {
		r.overrides[Normalize(from)] = to
	}
	return r
}

// Resolve returns the reference country for region.
func (r *Resolver) Resolve(region string) (string, bool) {
	k := Normalize(region)
	if k == "" {
		return "", false
	}
	if c, ok := r.canonical[k]; ok {
		return c, true
	}
	if to, ok := r.overrides[k]; ok {
		if c, ok := r.canonical[Normalize(to)]; ok {
			return c, true
		}
	}
	return "", false
}

// KeyCount is a key with its occurrence count.
type KeyCount struct {
	Key   string
	Count int
}

// SortedCounts orders counts by count descending, then key ascending.
func SortedCounts(m map[string]int) []KeyCount {
	out := make([]KeyCount, 0, len(m))
	for k, c := range m {
		out = append(out, KeyCount{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}
