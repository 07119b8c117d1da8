// Package climate builds per-country monthly temperature normals and joins
// them onto chart rows by (country, calendar month).
package climate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"weatherchart/internal/csvio"
)

// ProcessOptions configures Process.
type ProcessOptions struct {
	Input     string
	Output    string
	StartYear int
}

type monthKey struct {
	country string
	month   int
}

type acc struct {
	sum float64
	n   int
}

// ProcessResult summarizes a climate aggregation.
type ProcessResult struct {
	SourceRows    int
	KeptRows      int
	Countries     int
	FullCountries int
	Records       int
}

// Process averages AverageTemperature per (Country, month) over readings
// from StartYear on. Readings with a blank temperature are dropped.
func Process(ctx context.Context, opts ProcessOptions) (ProcessResult, error) {
	log := zerolog.Ctx(ctx)

	r, err := csvio.Open(opts.Input)
	if err != nil {
		return ProcessResult{}, err
	}
	defer r.Close()
	idx, err := r.Require("dt", "AverageTemperature", "Country")
	if err != nil {
		return ProcessResult{}, fmt.Errorf("%s: %w", opts.Input, err)
	}
	dtIdx, tempIdx, countryIdx := idx[0], idx[1], idx[2]

	var res ProcessResult
	var badDates int
	groups := make(map[monthKey]*acc)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("%s row %d: %w", opts.Input, r.Rows()+1, err)
		}
		res.SourceRows++
		dt, err := time.Parse("2006-01-02", strings.TrimSpace(rec[dtIdx]))
		if err != nil {
			badDates++
			continue
		}
		if dt.Year() < opts.StartYear {
			continue
		}
		temp, ok := csvio.ParseFloat(rec[tempIdx])
		if !ok {
			continue
		}
		res.KeptRows++
		k := monthKey{country: rec[countryIdx], month: int(dt.Month())}
		a := groups[k]
		if a == nil {
			a = &acc{}
			groups[k] = a
		}
		a.sum += temp
		a.n++
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	keys := make([]monthKey, 0, len(groups))
	months := make(map[string]int)
	for k := range groups {
		keys = append(keys, k)
		months[k.country]++
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].country != keys[j].country {
			return keys[i].country < keys[j].country
		}
		return keys[i].month < keys[j].month
	})

	w, err := csvio.Create(opts.Output, []string{"country", "month", "avg_temp"})
	if err != nil {
		return res, err
	}
	for _, k := range keys {
		a := groups[k]
		if err := w.Write([]string{k.country, strconv.Itoa(k.month), csvio.FormatFloat(a.sum / float64(a.n))}); err != nil {
			w.Close()
			return res, err
		}
	}
	if err := w.Close(); err != nil {
		return res, err
	}

	res.Records = len(keys)
	res.Countries = len(months)
	for _, n := range months {
		if n == 12 {
			res.FullCountries++
		}
	}
	if badDates > 0 {
		log.Warn().Int("rows", badDates).Msg("unparseable dt values skipped")
	}
	log.Info().
		Int("source_rows", res.SourceRows).
		Int("kept_rows", res.KeptRows).
		Int("start_year", opts.StartYear).
		Int("records", res.Records).
		Str("countries_with_12_months", fmt.Sprintf("%d/%d", res.FullCountries, res.Countries)).
		Str("output", opts.Output).
		Msg("monthly temperatures computed")
	return res, nil
}
