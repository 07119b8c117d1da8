// Package trainset produces the final training file from the fully joined
// dataset and loads it into relational storage.
package trainset

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"weatherchart/internal/csvio"
	"weatherchart/internal/join"
)

// Options configures Assemble.
type Options struct {
	Input    string
	Output   string
	Required []string
}

// Result summarizes an assembly run.
type Result struct {
	SourceRows int
	KeptRows   int
	// DroppedBy counts dropped rows by the first required column found blank.
	DroppedBy map[string]int
	Regions   []join.KeyCount
}

// Retention is the kept share of rows in percent.
func (r Result) Retention() float64 {
	if r.SourceRows == 0 {
		return 0
	}
	return 100 * float64(r.KeptRows) / float64(r.SourceRows)
}

// Assemble copies rows that have a value in every required column.
func Assemble(ctx context.Context, opts Options) (Result, error) {
	log := zerolog.Ctx(ctx)
	res := Result{DroppedBy: make(map[string]int)}

	r, err := csvio.Open(opts.Input)
	if err != nil {
		return res, err
	}
	defer r.Close()
	req, err := r.Require(opts.Required...)
	if err != nil {
		return res, fmt.Errorf("%s: %w", opts.Input, err)
	}
	regionIdx, hasRegion := r.Index("region")

	w, err := csvio.Create(opts.Output, r.Header())
	if err != nil {
		return res, err
	}
	regions := make(map[string]int)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			w.Close()
			return res, fmt.Errorf("%s row %d: %w", opts.Input, r.Rows()+1, err)
		}
		res.SourceRows++
		if res.SourceRows%(1<<16) == 0 {
			if err := ctx.Err(); err != nil {
				w.Close()
				return res, err
			}
		}
		if col := firstBlank(rec, req, opts.Required); col != "" {
			res.DroppedBy[col]++
			continue
		}
		if err := w.Write(rec[:len(r.Header())]); err != nil {
			w.Close()
			return res, err
		}
		res.KeptRows++
		if hasRegion {
			regions[rec[regionIdx]]++
		}
	}
	if err := w.Close(); err != nil {
		return res, err
	}
	res.Regions = join.SortedCounts(regions)

	ev := log.Info().
		Int("source_rows", res.SourceRows).
		Int("kept_rows", res.KeptRows).
		Str("retention", fmt.Sprintf("%.2f%%", res.Retention())).
		Int("regions", len(res.Regions))
	for col, n := range res.DroppedBy {
		ev = ev.Int("dropped_blank_"+col, n)
	}
	ev.Str("output", opts.Output).Msg("training set assembled")
	for i, kc := range res.Regions {
		if i < 10 || i >= len(res.Regions)-5 {
			log.Info().Int("rank", i+1).Str("region", kc.Key).Int("rows", kc.Count).Msg("region rows")
		}
	}
	return res, nil
}

func firstBlank(rec []string, idx []int, names []string) string {
	for i, j := range idx {
		if csvio.IsBlank(rec[j]) {
			return names[i]
		}
	}
	return ""
}
