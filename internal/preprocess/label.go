package preprocess

import (
	"strings"

	"weatherchart/internal/genres"
	"weatherchart/internal/stats"
)

// PrimaryGenre returns the first element of a genre list literal such as
// "['pop', 'dance']". A plain string comes back trimmed; an empty list or
// a malformed literal comes back as the raw value.
func PrimaryGenre(raw string) string {
	items, ok := genres.ParseList(raw)
	if !ok {
		return strings.TrimSpace(raw)
	}
	if len(items) == 0 {
		return raw
	}
	return items[0]
}

// FilterRare marks labels whose class has at least minCount members. It returns
// the keep mask and the removed classes, most frequent first.
func FilterRare(labels []string, minCount int) (keep []bool, removed []stats.ValueCount) {
	var counts stats.Counts
	for _, l := range labels {
		counts.Add(l)
	}
	keep = make([]bool, len(labels))
	for i, l := range labels {
		keep[i] = counts.Get(l) >= minCount
	}
	for _, vc := range counts.Top(0) {
		if vc.Count < minCount {
			removed = append(removed, vc)
		}
	}
	return keep, removed
}
