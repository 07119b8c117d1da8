// Package config loads pipeline configuration with koanf.
//
// Sources are layered, later ones winning:
//
//  1. Built-in defaults (defaultConfig)
//  2. A YAML file (-config flag, WEATHERCHART_CONFIG, or weatherchart.yaml)
//  3. WEATHERCHART_* environment variables
//
// The merged result is validated before it is returned.
package config

import (
	"path/filepath"
)

// Config is the full pipeline configuration.
type Config struct {
	// DataDir is the base directory for relative paths in Paths.
	DataDir string `koanf:"data_dir" validate:"required"`

	Paths      PathsConfig      `koanf:"paths"`
	Charts     ChartsConfig     `koanf:"charts"`
	Genres     GenresConfig     `koanf:"genres"`
	Matching   MatchingConfig   `koanf:"matching"`
	Climate    ClimateConfig    `koanf:"climate"`
	Economy    EconomyConfig    `koanf:"economy"`
	Geo        GeoConfig        `koanf:"geo"`
	Trainset   TrainsetConfig   `koanf:"trainset"`
	BulkLoad   BulkLoadConfig   `koanf:"bulk_load"`
	EDA        EDAConfig        `koanf:"eda"`
	Preprocess PreprocessConfig `koanf:"preprocess"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// PathsConfig names every stage input and output file.
type PathsConfig struct {
	Charts         string `koanf:"charts" validate:"required"`
	ChartsCleaned  string `koanf:"charts_cleaned" validate:"required"`
	Genres         string `koanf:"genres" validate:"required"`
	ArtistGenres   string `koanf:"artist_genres" validate:"required"`
	Joined         string `koanf:"joined" validate:"required"`
	MissingReport  string `koanf:"missing_report" validate:"required"`
	Climate        string `koanf:"climate" validate:"required"`
	ClimateMonthly string `koanf:"climate_monthly" validate:"required"`
	JoinedClimate  string `koanf:"joined_climate" validate:"required"`
	Countries      string `koanf:"countries" validate:"required"`
	Economy        string `koanf:"economy" validate:"required"`
	JoinedEconomy  string `koanf:"joined_economy" validate:"required"`
	Latitude       string `koanf:"latitude" validate:"required"`
	Geo            string `koanf:"geo" validate:"required"`
	JoinedGeo      string `koanf:"joined_geo" validate:"required"`
	Training       string `koanf:"training" validate:"required"`
	BulkInsertSQL  string `koanf:"bulk_insert_sql" validate:"required"`
	EDAReport      string `koanf:"eda_report" validate:"required"`
	PlotsDir       string `koanf:"plots_dir" validate:"required"`
	PreprocessDir  string `koanf:"preprocess_dir" validate:"required"`
}

type ChartsConfig struct {
	Columns []string `koanf:"columns" validate:"min=1,dive,required"`
}

type GenresConfig struct {
	ArtistColumn    string   `koanf:"artist_column" validate:"required"`
	GenreColumn     string   `koanf:"genre_column" validate:"required"`
	ArtistSeparator string   `koanf:"artist_separator" validate:"required"`
	Features        []string `koanf:"features" validate:"dive,required"`
}

// MatchingConfig drives the artist-to-genre join.
type MatchingConfig struct {
	// Separators are literal tokens that split a multi-artist string. They
	// are matched against the lowercased artist string.
	Separators []string `koanf:"separators" validate:"min=1,dive,required"`
	AuditTopN  int      `koanf:"audit_top_n" validate:"min=1"`
}

type ClimateConfig struct {
	StartYear int               `koanf:"start_year" validate:"min=1700,max=2100"`
	Overrides map[string]string `koanf:"overrides"`
}

type EconomyConfig struct {
	Overrides map[string]string `koanf:"overrides"`
}

type GeoConfig struct {
	Encoding  string            `koanf:"encoding" validate:"oneof=windows-1252 iso-8859-1 utf-8"`
	Overrides map[string]string `koanf:"overrides"`
}

type TrainsetConfig struct {
	RequiredColumns []string `koanf:"required_columns" validate:"min=1,dive,required"`
}

// BulkLoadConfig controls the optional SQLite copy of the training set.
type BulkLoadConfig struct {
	SQLitePath string `koanf:"sqlite_path"`
	Table      string `koanf:"table" validate:"required"`
}

type EDAConfig struct {
	SampleRows int  `koanf:"sample_rows" validate:"min=0"`
	TopN       int  `koanf:"top_n" validate:"min=1"`
	DuckDB     bool `koanf:"duckdb"`
}

type PreprocessConfig struct {
	SampleRows         int      `koanf:"sample_rows" validate:"min=0"`
	TestSize           float64  `koanf:"test_size" validate:"gt=0,lt=1"`
	RandomState        int64    `koanf:"random_state"`
	MinClassSamples    int      `koanf:"min_class_samples" validate:"min=1"`
	TargetColumn       string   `koanf:"target_column" validate:"required"`
	IDColumns          []string `koanf:"id_columns"`
	CategoricalColumns []string `koanf:"categorical_columns"`
	NumericalColumns   []string `koanf:"numerical_columns" validate:"min=1"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Path resolves p against DataDir unless it is already absolute.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// AudioFeatures lists the per-artist numeric columns aggregated by the genre stage.
var AudioFeatures = []string{
	"danceability", "energy", "key", "loudness", "speechiness",
	"acousticness", "instrumentalness", "liveness", "valence", "tempo",
}
