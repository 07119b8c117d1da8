// Package eda writes a descriptive report and charts for the training set.
// Nothing it computes feeds back into the pipeline.
package eda

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"weatherchart/internal/csvio"
)

// Options configures Analyze.
type Options struct {
	Input    string
	Report   string
	PlotsDir string
	// SampleRows caps the rows loaded for statistics and plots; 0 loads all.
	SampleRows int
	TopN       int
	// DuckDB adds value counts computed over the whole input file.
	DuckDB        bool
	AudioFeatures []string
}

// Result lists what Analyze produced.
type Result struct {
	Rows  int
	Plots []string
}

// Analyze loads a sample of the training set and writes the report and
// plots.
func Analyze(ctx context.Context, opts Options) (Result, error) {
	log := zerolog.Ctx(ctx)
	var res Result

	r, err := csvio.Open(opts.Input)
	if err != nil {
		return res, err
	}
	tbl, err := csvio.ReadAll(r, opts.SampleRows)
	r.Close()
	if err != nil {
		return res, fmt.Errorf("%s: %w", opts.Input, err)
	}
	f := newFrame(tbl)
	res.Rows = f.rows
	log.Info().Int("rows", f.rows).Int("columns", len(f.columns)).Msg("sample loaded")

	var full []fullCounts
	if opts.DuckDB {
		full, err = valueCountsDuckDB(ctx, opts.Input, []string{"region", "track_genre"}, tbl.Header, opts.TopN)
		if err != nil {
			return res, fmt.Errorf("duckdb value counts: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(opts.Report), 0o755); err != nil {
		return res, err
	}
	if err := os.WriteFile(opts.Report, []byte(buildReport(f, opts.TopN, full)), 0o644); err != nil {
		return res, err
	}
	log.Info().Str("report", opts.Report).Msg("eda report written")

	res.Plots, err = writePlots(f, opts.PlotsDir, opts.AudioFeatures, opts.TopN)
	if err != nil {
		return res, err
	}
	log.Info().Int("plots", len(res.Plots)).Str("dir", opts.PlotsDir).Msg("eda plots written")
	return res, nil
}
