// Package preprocess turns the training set into model-ready partitions:
// primary-genre labels, encoded categoricals, a stratified split and
// features scaled on the training partition alone.
package preprocess

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"weatherchart/internal/csvio"
	"weatherchart/internal/stats"
)

// Output file names inside Options.OutputDir.
const (
	XTrainFile   = "X_train.parquet"
	XTestFile    = "X_test.parquet"
	YTrainFile   = "y_train.parquet"
	YTestFile    = "y_test.parquet"
	ArtifactFile = "preprocessing_artifacts.json"
	ReportFile   = "preprocess_report.txt"
)

// TargetName is the label column written to the y partitions.
const TargetName = "primary_genre"

var ErrEmptyInput = errors.New("no rows left to split")

// Options configures Run.
type Options struct {
	Input     string
	OutputDir string
	// SampleRows caps the rows read; 0 reads the whole file.
	SampleRows      int
	TestSize        float64
	RandomState     int64
	MinClassSamples int
	Target          string
	IDColumns       []string
	Categorical     []string
	Numerical       []string
}

// Result summarizes a run.
type Result struct {
	LoadedRows int
	KeptRows   int
	Removed    []stats.ValueCount
	Train      []int
	Test       []int
	Artifact   *Artifact
}

// Run executes the whole preprocessing stage.
func Run(ctx context.Context, opts Options) (Result, error) {
	log := zerolog.Ctx(ctx)
	var res Result
	rep := &report{}
	rep.rule("=")
	rep.line("WeatherChart preprocessing")
	rep.rule("=")

	r, err := csvio.Open(opts.Input)
	if err != nil {
		return res, err
	}
	tbl, err := csvio.ReadAll(r, opts.SampleRows)
	r.Close()
	if err != nil {
		return res, fmt.Errorf("%s: %w", opts.Input, err)
	}
	targetCol, err := tbl.Require(opts.Target)
	if err != nil {
		return res, fmt.Errorf("%s: %w", opts.Input, err)
	}
	res.LoadedRows = tbl.Len()
	rep.section("Load")
	rep.printf("  Loaded %s rows (sample cap %d)", csvio.FormatInt(tbl.Len()), opts.SampleRows)
	rep.printf("  Columns (%d): %s", len(tbl.Header), strings.Join(tbl.Header, ", "))
	log.Info().Int("rows", tbl.Len()).Msg("training sample loaded")

	features, categorical, numerical, ignored := selectFeatures(tbl.Header, opts)
	rep.section("Columns")
	rep.printf("  Dropped identifiers: %s", strings.Join(present(tbl, opts.IDColumns), ", "))
	if len(ignored) > 0 {
		rep.printf("  Ignored columns: %s", strings.Join(ignored, ", "))
		log.Warn().Strs("columns", ignored).Msg("columns neither categorical nor numerical are not features")
	}
	rep.printf("  Features (%d): %s", len(features), strings.Join(features, ", "))

	// Target labels and rare-class filter.
	labels := make([]string, tbl.Len())
	for i, row := range tbl.Rows {
		labels[i] = PrimaryGenre(row[targetCol[0]])
	}
	var all stats.Counts
	for _, l := range labels {
		all.Add(l)
	}
	rep.section("Target")
	rep.printf("  Unique primary genres: %d", all.Unique())
	for _, vc := range all.Top(10) {
		rep.printf("    %-25s %10s (%.1f%%)", vc.Value, csvio.FormatInt(vc.Count), 100*float64(vc.Count)/float64(all.Total))
	}
	keep, removed := FilterRare(labels, opts.MinClassSamples)
	res.Removed = removed
	rows := make([]int, 0, len(labels))
	for i, k := range keep {
		if k {
			rows = append(rows, i)
		}
	}
	res.KeptRows = len(rows)
	rep.printf("  Removed %d classes below %d rows: %s", len(removed), opts.MinClassSamples, classList(removed, 10))
	rep.printf("  Remaining rows: %s", csvio.FormatInt(len(rows)))
	log.Info().Int("removed_classes", len(removed)).Int("kept_rows", len(rows)).Msg("rare classes filtered")
	if len(rows) == 0 {
		return res, ErrEmptyInput
	}

	// Encoders.
	encoders := make(map[string]*LabelEncoder, len(categorical))
	rep.section("Encoding")
	for _, c := range categorical {
		i := tbl.Col(c)
		vals := make([]string, len(rows))
		for k, r := range rows {
			vals[k] = categoryValue(tbl.Rows[r][i])
		}
		encoders[c] = FitLabelEncoder(vals)
		rep.printf("  %s: %d classes", c, len(encoders[c].classes))
	}
	kept := make([]string, len(rows))
	for k, r := range rows {
		kept[k] = labels[r]
	}
	target := FitLabelEncoder(kept)
	rep.printf("  %s: %d classes", TargetName, len(target.classes))

	// Feature matrix and codes, indexed by kept position.
	x := make([][]float64, len(rows))
	y := make([]int, len(rows))
	colIdx := make([]int, len(features))
	for j, f := range features {
		colIdx[j] = tbl.Col(f)
	}
	isNum := make(map[string]bool, len(numerical))
	for _, c := range numerical {
		isNum[c] = true
	}
	for k, r := range rows {
		row := tbl.Rows[r]
		x[k] = make([]float64, len(features))
		for j, f := range features {
			raw := row[colIdx[j]]
			if isNum[f] {
				v, err := parseNumeric(raw)
				if err != nil {
					return res, fmt.Errorf("%s row %d column %s: %w", opts.Input, r+1, f, err)
				}
				x[k][j] = v
				continue
			}
			code, _ := encoders[f].Transform(categoryValue(raw))
			x[k][j] = float64(code)
		}
		y[k], _ = target.Transform(labels[r])
		if k%(1<<16) == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
	}

	train, test, err := StratifiedSplit(y, opts.TestSize, opts.RandomState)
	if err != nil {
		return res, err
	}
	res.Train, res.Test = train, test
	rep.section("Split")
	rep.printf("  Train rows: %s", csvio.FormatInt(len(train)))
	rep.printf("  Test rows:  %s", csvio.FormatInt(len(test)))
	rep.stratification(y, train, test, target, 5)
	log.Info().Int("train", len(train)).Int("test", len(test)).Float64("test_size", opts.TestSize).Msg("stratified split")

	// Scale numerical features with parameters from the training rows only.
	numPos := make([]int, 0, len(numerical))
	for j, f := range features {
		if isNum[f] {
			numPos = append(numPos, j)
		}
	}
	sub := func(k int) []float64 {
		v := make([]float64, len(numPos))
		for i, j := range numPos {
			v[i] = x[k][j]
		}
		return v
	}
	trainNum := make([][]float64, len(train))
	for i, k := range train {
		trainNum[i] = sub(k)
	}
	scaler := FitStandardScaler(trainNum, len(numPos))
	for k := range x {
		v := sub(k)
		scaler.Transform(v)
		for i, j := range numPos {
			x[k][j] = v[i]
		}
	}
	rep.section("Scaling")
	rep.printf("  Scaled %d numerical features", len(numPos))
	rep.scaled(x, train, features, numPos, 5)

	// Outputs.
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return res, err
	}
	xcols := make([]parquetColumn, len(features))
	for j, f := range features {
		xcols[j] = parquetColumn{Name: f, Integer: !isNum[f]}
	}
	ycols := []parquetColumn{{Name: TargetName, Integer: true}}
	xval := func(k, j int) float64 { return x[k][j] }
	yval := func(k, _ int) float64 { return float64(y[k]) }
	for _, out := range []struct {
		name string
		cols []parquetColumn
		idx  []int
		val  func(int, int) float64
	}{
		{XTrainFile, xcols, train, xval},
		{XTestFile, xcols, test, xval},
		{YTrainFile, ycols, train, yval},
		{YTestFile, ycols, test, yval},
	} {
		if err := writeParquet(filepath.Join(opts.OutputDir, out.name), out.cols, out.idx, out.val); err != nil {
			return res, err
		}
	}
	numNames := make([]string, len(numPos))
	for i, j := range numPos {
		numNames[i] = features[j]
	}
	art, err := newArtifact(features, numNames, categorical, encoders, target, scaler, SplitParams{
		SampleRows:      opts.SampleRows,
		TestSize:        opts.TestSize,
		RandomState:     opts.RandomState,
		MinClassSamples: opts.MinClassSamples,
	})
	if err != nil {
		return res, err
	}
	if err := art.Save(filepath.Join(opts.OutputDir, ArtifactFile)); err != nil {
		return res, err
	}
	res.Artifact = art
	log.Info().Str("dir", opts.OutputDir).Str("run_id", art.RunID().String()).Msg("partitions and artifact written")

	rep.rule("=")
	rep.printf("  Final rows:       %12s", csvio.FormatInt(len(rows)))
	rep.printf("  Training samples: %12s", csvio.FormatInt(len(train)))
	rep.printf("  Testing samples:  %12s", csvio.FormatInt(len(test)))
	rep.printf("  Features:         %12d", len(features))
	rep.printf("  Target classes:   %12d", len(target.classes))
	rep.printf("  Run ID:           %s", art.RunID())
	rep.rule("=")
	return res, os.WriteFile(filepath.Join(opts.OutputDir, ReportFile), []byte(rep.String()), 0o644)
}

// selectFeatures keeps the configured categorical and numerical columns in
// file order. Identifier and target columns are never features.
func selectFeatures(header []string, opts Options) (features, categorical, numerical, ignored []string) {
	skip := map[string]bool{opts.Target: true}
	for _, c := range opts.IDColumns {
		skip[c] = true
	}
	cat := make(map[string]bool, len(opts.Categorical))
	for _, c := range opts.Categorical {
		cat[c] = true
	}
	num := make(map[string]bool, len(opts.Numerical))
	for _, c := range opts.Numerical {
		num[c] = true
	}
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if skip[h] || seen[h] {
			continue
		}
		seen[h] = true
		switch {
		case cat[h]:
			features = append(features, h)
			categorical = append(categorical, h)
		case num[h]:
			features = append(features, h)
			numerical = append(numerical, h)
		default:
			ignored = append(ignored, h)
		}
	}
	return features, categorical, numerical, ignored
}

func present(t *csvio.Table, cols []string) []string {
	var out []string
	for _, c := range cols {
		if t.Col(c) >= 0 {
			out = append(out, c)
		}
	}
	return out
}

func classList(vcs []stats.ValueCount, limit int) string {
	names := make([]string, 0, limit)
	for i, vc := range vcs {
		if i == limit {
			return strings.Join(names, ", ") + ", ..."
		}
		names = append(names, vc.Value)
	}
	return strings.Join(names, ", ")
}
