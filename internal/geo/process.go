// Package geo builds the per-country geographic and socioeconomic table,
// patches known gaps from a versioned override list, corrects coordinate
// signs from a hemisphere table, and joins the result onto chart rows.
package geo

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"weatherchart/internal/csvio"
	"weatherchart/internal/join"
	"weatherchart/internal/stats"
)

// Source column names and their output names.
var columnMap = []struct{ from, to string }{
	{"Countries and areas", "country"},
	{"Latitude", "latitude"},
	{"Longitude", "longitude"},
	{"Gross_Tertiary_Education_Enrollment", "tertiary_enrollment"},
	{"Unemployment_Rate", "unemployment_rate"},
}

// Record is one country's geo row. Missing numbers are NaN.
type Record struct {
	Country            string
	Latitude           float64
	Longitude          float64
	TertiaryEnrollment float64
	UnemploymentRate   float64
}

func (r Record) fields() []string {
	return []string{
		r.Country,
		csvio.FormatFloat(r.Latitude),
		csvio.FormatFloat(r.Longitude),
		csvio.FormatFloat(r.TertiaryEnrollment),
		csvio.FormatFloat(r.UnemploymentRate),
	}
}

// ProcessOptions configures Process.
type ProcessOptions struct {
	Input    string
	Output   string
	Encoding string
	// Overrides defaults to the package Overrides when nil.
	Overrides []Override
}

// Quality is the data quality summary of the source selection.
type Quality struct {
	Rows               int
	Nulls              map[string]int
	DuplicateCountries int
	ZeroUnemployment   []string
	Summaries          map[string]stats.Summary
}

// ProcessResult reports what Process did.
type ProcessResult struct {
	Quality    Quality
	Applied    []Applied
	SignFixed  []string
	NotInTable []string
	Records    int
}

// Process reads the source, applies overrides and sign correction, and
// writes one record per country.
func Process(ctx context.Context, opts ProcessOptions) (ProcessResult, error) {
	log := zerolog.Ctx(ctx)
	var res ProcessResult

	r, err := csvio.Open(opts.Input, csvio.WithEncoding(opts.Encoding), csvio.WithTrimmedHeader())
	if err != nil {
		return res, err
	}
	defer r.Close()
	src, err := csvio.ReadAll(r, 0)
	if err != nil {
		return res, fmt.Errorf("%s: %w", opts.Input, err)
	}
	from := make([]string, len(columnMap))
	for i, c := range columnMap {
		from[i] = c.from
	}
	idx, err := src.Require(from...)
	if err != nil {
		return res, fmt.Errorf("%s: %w", opts.Input, err)
	}

	recs := make([]Record, 0, src.Len())
	for _, row := range src.Rows {
		recs = append(recs, Record{
			Country:            row[idx[0]],
			Latitude:           num(row[idx[1]]),
			Longitude:          num(row[idx[2]]),
			TertiaryEnrollment: num(row[idx[3]]),
			UnemploymentRate:   num(row[idx[4]]),
		})
	}
	res.Quality = assess(recs)
	logQuality(log, res.Quality)

	rules := opts.Overrides
	if rules == nil {
		rules = Overrides
	}
	recs, res.Applied, err = ApplyOverrides(recs, rules)
	if err != nil {
		return res, err
	}
	for _, a := range res.Applied {
		log.Info().
			Str("version", OverridesVersion).
			Str("country", a.Rule.Country).
			Stringer("action", a.Rule.Action).
			Str("proxy", a.Rule.Proxy).
			Int("replaced_records", a.Removed).
			Str("reason", a.Rule.Reason).
			Msg("geo override applied")
	}

	hemispheres, err := LoadHemispheres()
	if err != nil {
		return res, fmt.Errorf("hemisphere table: %w", err)
	}
	res.SignFixed, res.NotInTable = CorrectSigns(recs, hemispheres)
	if len(res.SignFixed) > 0 {
		log.Info().Strs("countries", res.SignFixed).Msg("coordinate signs corrected")
	}
	if len(res.NotInTable) > 0 {
		log.Warn().Strs("countries", res.NotInTable).Msg("no hemisphere entry, coordinates left unchanged")
	}

	header := make([]string, len(columnMap))
	for i, c := range columnMap {
		header[i] = c.to
	}
	w, err := csvio.Create(opts.Output, header)
	if err != nil {
		return res, err
	}
	for _, rec := range recs {
		if err := w.Write(rec.fields()); err != nil {
			w.Close()
			return res, err
		}
	}
	if err := w.Close(); err != nil {
		return res, err
	}
	res.Records = len(recs)
	log.Info().Int("records", res.Records).Str("output", opts.Output).Msg("geo table written")
	return res, nil
}

// CorrectSigns forces each coordinate to its country's hemisphere sign. It
// returns the countries whose values changed and those absent from t.
func CorrectSigns(recs []Record, t HemisphereTable) (fixed, missing []string) {
	for i := range recs {
		h, ok := t.Lookup(recs[i].Country)
		if !ok {
			missing = append(missing, recs[i].Country)
			continue
		}
		lat := float64(h.Lat) * math.Abs(recs[i].Latitude)
		lon := float64(h.Lon) * math.Abs(recs[i].Longitude)
		if lat != recs[i].Latitude && !math.IsNaN(lat) || lon != recs[i].Longitude && !math.IsNaN(lon) {
			fixed = append(fixed, recs[i].Country)
		}
		recs[i].Latitude, recs[i].Longitude = lat, lon
	}
	return fixed, missing
}

func num(s string) float64 {
	if v, ok := csvio.ParseFloat(s); ok {
		return v
	}
	return math.NaN()
}

func assess(recs []Record) Quality {
	q := Quality{Rows: len(recs), Nulls: make(map[string]int), Summaries: make(map[string]stats.Summary)}
	cols := map[string][]float64{}
	seen := make(map[string]bool)
	for _, r := range recs {
		if csvio.IsBlank(r.Country) {
			q.Nulls["country"]++
		}
		if seen[r.Country] {
			q.DuplicateCountries++
		}
		seen[r.Country] = true
		for name, v := range map[string]float64{
			"latitude":            r.Latitude,
			"longitude":           r.Longitude,
			"tertiary_enrollment": r.TertiaryEnrollment,
			"unemployment_rate":   r.UnemploymentRate,
		} {
			if math.IsNaN(v) {
				q.Nulls[name]++
			}
			cols[name] = append(cols[name], v)
		}
		if r.UnemploymentRate == 0 {
			q.ZeroUnemployment = append(q.ZeroUnemployment, r.Country)
		}
	}
	for name, xs := range cols {
		q.Summaries[name] = stats.Describe(xs)
	}
	return q
}

func logQuality(log *zerolog.Logger, q Quality) {
	ev := log.Info().Int("rows", q.Rows).Int("duplicate_countries", q.DuplicateCountries)
	for _, c := range columnMap {
		ev = ev.Int("null_"+c.to, q.Nulls[c.to])
	}
	ev.Msg("geo data quality")
	for _, c := range columnMap[1:] {
		s := q.Summaries[c.to]
		log.Info().Str("column", c.to).Int("count", s.Count).
			Float64("mean", s.Mean).Float64("min", s.Min).Float64("max", s.Max).
			Msg("geo column summary")
	}
	if n := len(q.ZeroUnemployment); n > 0 {
		log.Warn().Int("countries", n).Strs("sample", head(q.ZeroUnemployment, 5)).Msg("zero unemployment rate")
	}
}

func head(xs []string, n int) []string {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}

// JoinOptions configures Join.
type JoinOptions struct {
	Input     string
	Geo       string
	Output    string
	Overrides map[string]string
}

// Join appends the geo columns by region.
func Join(ctx context.Context, opts JoinOptions) (join.Stats, error) {
	ref, err := join.LoadReference(opts.Geo, "country")
	if err != nil {
		return join.Stats{}, err
	}
	return join.ByRegion(ctx, opts.Input, opts.Output, ref, opts.Overrides, "geo")
}
