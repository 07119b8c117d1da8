package join

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"weatherchart/internal/csvio"
)

// Reference is a per-country feature table.
type Reference struct {
	// Columns are the appended columns, every column but the key.
	Columns    []string
	countries  []string
	rows       map[string][]string
	Duplicates int
}

// LoadReference reads path keyed by keyColumn. The first row for a country
// wins; later duplicates are counted and skipped.
func LoadReference(path, keyColumn string) (*Reference, error) {
	tbl, err := csvio.Load(path)
	if err != nil {
		return nil, err
	}
	idx, err := tbl.Require(keyColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewReference(tbl, idx[0]), nil
}

// NewReference indexes tbl on column key.
func NewReference(tbl *csvio.Table, key int) *Reference {
	ref := &Reference{rows: make(map[string][]string, tbl.Len())}
	keep := make([]int, 0, len(tbl.Header))
	for i, h := range tbl.Header {
		if i != key {
			keep = append(keep, i)
			ref.Columns = append(ref.Columns, h)
		}
	}
	for _, rec := range tbl.Rows {
		c := rec[key]
		if _, dup := ref.rows[c]; dup {
			ref.Duplicates++
			continue
		}
		vals := make([]string, len(keep))
		for i, j := range keep {
			vals[i] = rec[j]
		}
		ref.rows[c] = vals
		ref.countries = append(ref.countries, c)
	}
	return ref
}

// Countries lists the key values in file order.
func (r *Reference) Countries() []string { return r.countries }

// Get returns the feature values for country.
func (r *Reference) Get(country string) ([]string, bool) {
	v, ok := r.rows[country]
	return v, ok
}

// ByRegion left-joins ref onto inPath by resolving each row's region.
func ByRegion(ctx context.Context, inPath, outPath string, ref *Reference, overrides map[string]string, what string) (Stats, error) {
	log := zerolog.Ctx(ctx)
	resolver := NewResolver(ref.Countries(), overrides)
	blank := make([]string, len(ref.Columns))

	var stats Stats
	_, err := Append(ctx, inPath, outPath, ref.Columns, func(r *csvio.Reader) (RowFunc, error) {
		idx, err := r.Require("region")
		if err != nil {
			return nil, err
		}
		return func(rec []string) []string {
			region := rec[idx[0]]
			country, ok := resolver.Resolve(region)
			if !ok {
				stats.Observe(region, false)
				return blank
			}
			stats.Observe(region, true)
			vals, _ := ref.Get(country)
			return vals
		}, nil
	})
	if err != nil {
		return stats, err
	}
	stats.Log(*log, what, 20)
	return stats, nil
}
