package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"weatherchart/internal/charts"
	"weatherchart/internal/climate"
	"weatherchart/internal/config"
	"weatherchart/internal/economy"
	"weatherchart/internal/eda"
	"weatherchart/internal/genres"
	"weatherchart/internal/geo"
	"weatherchart/internal/matching"
	"weatherchart/internal/preprocess"
	"weatherchart/internal/trainset"
)

func filterCharts(ctx context.Context, cfg *config.Config) error {
	_, err := charts.Filter(ctx, charts.Options{
		Input:   cfg.Path(cfg.Paths.Charts),
		Output:  cfg.Path(cfg.Paths.ChartsCleaned),
		Columns: cfg.Charts.Columns,
	})
	return err
}

func processGenres(ctx context.Context, cfg *config.Config) error {
	_, err := genres.Aggregate(ctx, genres.Options{
		Input:        cfg.Path(cfg.Paths.Genres),
		Output:       cfg.Path(cfg.Paths.ArtistGenres),
		ArtistColumn: cfg.Genres.ArtistColumn,
		GenreColumn:  cfg.Genres.GenreColumn,
		Separator:    cfg.Genres.ArtistSeparator,
		Features:     cfg.Genres.Features,
	})
	return err
}

func joinGenres(ctx context.Context, cfg *config.Config) error {
	_, err := matching.Join(ctx, matching.JoinOptions{
		Charts:       cfg.Path(cfg.Paths.ChartsCleaned),
		Genres:       cfg.Path(cfg.Paths.ArtistGenres),
		Output:       cfg.Path(cfg.Paths.Joined),
		ArtistColumn: "artist",
		Separators:   cfg.Matching.Separators,
	})
	return err
}

func auditMissing(ctx context.Context, cfg *config.Config) error {
	_, err := matching.Audit(ctx, matching.AuditOptions{
		Joined:       cfg.Path(cfg.Paths.Joined),
		Genres:       cfg.Path(cfg.Paths.ArtistGenres),
		Output:       cfg.Path(cfg.Paths.MissingReport),
		ArtistColumn: "artist",
		GenreColumn:  cfg.Genres.GenreColumn,
		TopN:         cfg.Matching.AuditTopN,
	})
	return err
}

func processClimate(ctx context.Context, cfg *config.Config) error {
	_, err := climate.Process(ctx, climate.ProcessOptions{
		Input:     cfg.Path(cfg.Paths.Climate),
		Output:    cfg.Path(cfg.Paths.ClimateMonthly),
		StartYear: cfg.Climate.StartYear,
	})
	return err
}

func joinClimate(ctx context.Context, cfg *config.Config) error {
	_, err := climate.Join(ctx, climate.JoinOptions{
		Input:     cfg.Path(cfg.Paths.Joined),
		Temps:     cfg.Path(cfg.Paths.ClimateMonthly),
		Output:    cfg.Path(cfg.Paths.JoinedClimate),
		Overrides: cfg.Climate.Overrides,
	})
	return err
}

func processCountries(ctx context.Context, cfg *config.Config) error {
	_, err := economy.Process(ctx, economy.ProcessOptions{
		Input:  cfg.Path(cfg.Paths.Countries),
		Output: cfg.Path(cfg.Paths.Economy),
	})
	return err
}

func joinEconomy(ctx context.Context, cfg *config.Config) error {
	_, err := economy.Join(ctx, economy.JoinOptions{
		Input:     cfg.Path(cfg.Paths.JoinedClimate),
		Economy:   cfg.Path(cfg.Paths.Economy),
		Output:    cfg.Path(cfg.Paths.JoinedEconomy),
		Overrides: cfg.Economy.Overrides,
	})
	return err
}

func processGeo(ctx context.Context, cfg *config.Config) error {
	_, err := geo.Process(ctx, geo.ProcessOptions{
		Input:    cfg.Path(cfg.Paths.Latitude),
		Output:   cfg.Path(cfg.Paths.Geo),
		Encoding: cfg.Geo.Encoding,
	})
	return err
}

func joinGeo(ctx context.Context, cfg *config.Config) error {
	_, err := geo.Join(ctx, geo.JoinOptions{
		Input:     cfg.Path(cfg.Paths.JoinedEconomy),
		Geo:       cfg.Path(cfg.Paths.Geo),
		Output:    cfg.Path(cfg.Paths.JoinedGeo),
		Overrides: cfg.Geo.Overrides,
	})
	return err
}

// assembleTraining writes the training file, the SQL Server load script for
// it and, when configured, a SQLite copy.
func assembleTraining(ctx context.Context, cfg *config.Config) error {
	training := cfg.Path(cfg.Paths.Training)
	if _, err := trainset.Assemble(ctx, trainset.Options{
		Input:    cfg.Path(cfg.Paths.JoinedGeo),
		Output:   training,
		Required: cfg.Trainset.RequiredColumns,
	}); err != nil {
		return err
	}

	types := trainset.ColumnTypes(cfg.Preprocess.NumericalColumns)
	sqlPath := cfg.Path(cfg.Paths.BulkInsertSQL)
	if err := trainset.WriteBulkInsertSQL(sqlPath, cfg.BulkLoad.Table, training, types); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("path", sqlPath).Msg("bulk insert script written")

	if cfg.BulkLoad.SQLitePath == "" {
		return nil
	}
	_, err := trainset.LoadSQLite(ctx, trainset.LoadOptions{
		CSV:      training,
		Database: cfg.Path(cfg.BulkLoad.SQLitePath),
		Table:    cfg.BulkLoad.Table,
		Types:    types,
	})
	return err
}

func runEDA(ctx context.Context, cfg *config.Config) error {
	_, err := eda.Analyze(ctx, eda.Options{
		Input:         cfg.Path(cfg.Paths.Training),
		Report:        cfg.Path(cfg.Paths.EDAReport),
		PlotsDir:      cfg.Path(cfg.Paths.PlotsDir),
		SampleRows:    cfg.EDA.SampleRows,
		TopN:          cfg.EDA.TopN,
		DuckDB:        cfg.EDA.DuckDB,
		AudioFeatures: config.AudioFeatures,
	})
	return err
}

func runPreprocess(ctx context.Context, cfg *config.Config) error {
	p := cfg.Preprocess
	_, err := preprocess.Run(ctx, preprocess.Options{
		Input:           cfg.Path(cfg.Paths.Training),
		OutputDir:       cfg.Path(cfg.Paths.PreprocessDir),
		SampleRows:      p.SampleRows,
		TestSize:        p.TestSize,
		RandomState:     p.RandomState,
		MinClassSamples: p.MinClassSamples,
		Target:          p.TargetColumn,
		IDColumns:       p.IDColumns,
		Categorical:     p.CategoricalColumns,
		Numerical:       p.NumericalColumns,
	})
	return err
}
