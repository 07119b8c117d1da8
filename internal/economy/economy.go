// Package economy selects per-country population and GDP features and joins
// them onto chart rows by region.
package economy

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"weatherchart/internal/csvio"
	"weatherchart/internal/join"
	"weatherchart/internal/stats"
)

// SourceColumns are kept from the country reference, in output order.
var SourceColumns = []string{"Country", "Continent", "Population", "GDP_per_capita"}

// ProcessOptions configures Process.
type ProcessOptions struct {
	Input  string
	Output string
}

// Quality is the data quality summary of the selected columns.
type Quality struct {
	Rows               int
	Nulls              map[string]int
	DuplicateCountries int
	Population         stats.Summary
	GDPPerCapita       stats.Summary
	Continents         []stats.ValueCount
}

// Process keeps SourceColumns with lowercased names.
func Process(ctx context.Context, opts ProcessOptions) (Quality, error) {
	log := zerolog.Ctx(ctx)

	src, err := csvio.Load(opts.Input)
	if err != nil {
		return Quality{}, err
	}
	idx, err := src.Require(SourceColumns...)
	if err != nil {
		return Quality{}, fmt.Errorf("%s: %w", opts.Input, err)
	}

	header := make([]string, len(SourceColumns))
	for i, c := range SourceColumns {
		header[i] = strings.ToLower(c)
	}
	rows := make([][]string, 0, src.Len())
	for _, rec := range src.Rows {
		out := make([]string, len(idx))
		for i, j := range idx {
			out[i] = rec[j]
		}
		rows = append(rows, out)
	}
	tbl := csvio.NewTable(header, rows)
	q := assess(tbl)
	if err := csvio.WriteTable(opts.Output, tbl); err != nil {
		return q, err
	}

	ev := log.Info().Int("rows", q.Rows).Int("duplicate_countries", q.DuplicateCountries)
	for _, c := range header {
		ev = ev.Int("null_"+c, q.Nulls[c])
	}
	ev.Msg("economy data quality")
	log.Info().
		Float64("mean", q.Population.Mean).Float64("min", q.Population.Min).Float64("max", q.Population.Max).
		Msg("population summary")
	log.Info().
		Float64("mean", q.GDPPerCapita.Mean).Float64("min", q.GDPPerCapita.Min).Float64("max", q.GDPPerCapita.Max).
		Msg("gdp_per_capita summary")
	for _, vc := range q.Continents {
		log.Info().Str("continent", vc.Value).Int("countries", vc.Count).Msg("countries per continent")
	}
	log.Info().Str("output", opts.Output).Msg("country economy written")
	return q, nil
}

func assess(tbl *csvio.Table) Quality {
	q := Quality{Rows: tbl.Len(), Nulls: make(map[string]int)}
	country, continent := tbl.Col("country"), tbl.Col("continent")
	pop, gdp := tbl.Col("population"), tbl.Col("gdp_per_capita")

	seen := make(map[string]bool)
	var pops, gdps []float64
	var continents stats.Counts
	for _, rec := range tbl.Rows {
		for i, h := range tbl.Header {
			if csvio.IsBlank(rec[i]) {
				q.Nulls[h]++
			}
		}
		if seen[rec[country]] {
			q.DuplicateCountries++
		}
		seen[rec[country]] = true
		if v, ok := csvio.ParseFloat(rec[pop]); ok {
			pops = append(pops, v)
		}
		if v, ok := csvio.ParseFloat(rec[gdp]); ok {
			gdps = append(gdps, v)
		}
		if !csvio.IsBlank(rec[continent]) {
			continents.Add(rec[continent])
		}
	}
	q.Population = stats.Describe(pops)
	q.GDPPerCapita = stats.Describe(gdps)
	q.Continents = continents.Top(0)
	return q
}

// JoinOptions configures Join.
type JoinOptions struct {
	Input     string
	Economy   string
	Output    string
	Overrides map[string]string
}

// Join appends continent, population and gdp_per_capita by region.
func Join(ctx context.Context, opts JoinOptions) (join.Stats, error) {
	ref, err := join.LoadReference(opts.Economy, "country")
	if err != nil {
		return join.Stats{}, err
	}
	if ref.Duplicates > 0 {
		zerolog.Ctx(ctx).Warn().Int("rows", ref.Duplicates).Msg("duplicate economy countries ignored")
	}
	return join.ByRegion(ctx, opts.Input, opts.Output, ref, opts.Overrides, "economy")
}
