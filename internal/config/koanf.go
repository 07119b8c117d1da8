package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when no explicit path is given.
var DefaultConfigPaths = []string{
	"weatherchart.yaml",
	"weatherchart.yml",
}

const (
	// ConfigPathEnvVar overrides the config file location.
	ConfigPathEnvVar = "WEATHERCHART_CONFIG"

	envPrefix = "WEATHERCHART_"
)

func defaultConfig() *Config {
	numerical := append(append([]string(nil), AudioFeatures...),
		"month", "avg_temp", "population", "gdp_per_capita",
		"latitude", "longitude", "tertiary_enrollment", "unemployment_rate",
	)
	return &Config{
		DataDir: "data",
		Paths: PathsConfig{
			Charts:         "charts.csv",
			ChartsCleaned:  "charts_cleaned.csv",
			Genres:         "genres.csv",
			ArtistGenres:   "artist_genres.csv",
			Joined:         "final_dataset.csv",
			MissingReport:  "missing_artists_report.md",
			Climate:        "GlobalLandTemperaturesByCountry.csv",
			ClimateMonthly: "country_monthly_temps.csv",
			JoinedClimate:  "final_dataset_v2.csv",
			Countries:      "countries.csv",
			Economy:        "country_economy.csv",
			JoinedEconomy:  "final_dataset_v3.csv",
			Latitude:       "latitude.csv",
			Geo:            "country_latitude.csv",
			JoinedGeo:      "final_dataset_v4.csv",
			Training:       "train_dataset.csv",
			BulkInsertSQL:  "bulk_insert.sql",
			EDAReport:      "eda_report.txt",
			PlotsDir:       "plots",
			PreprocessDir:  "preprocessed",
		},
		Charts: ChartsConfig{
			Columns: []string{"title", "date", "artist", "region"},
		},
		Genres: GenresConfig{
			ArtistColumn:    "artists",
			GenreColumn:     "track_genre",
			ArtistSeparator: ";",
			Features:        append([]string(nil), AudioFeatures...),
		},
		Matching: MatchingConfig{
			Separators: []string{",", "&", "feat."},
			AuditTopN:  20,
		},
		Climate: ClimateConfig{
			StartYear: 1970,
			Overrides: map[string]string{
				"usa":     "United States",
				"uk":      "United Kingdom",
				"uae":     "United Arab Emirates",
				"korea":   "South Korea",
				"vietnam": "Vietnam",
			},
		},
		Economy: EconomyConfig{
			Overrides: map[string]string{},
		},
		Geo: GeoConfig{
			Encoding: "windows-1252",
			Overrides: map[string]string{
				"usa":       "United States",
				"uk":        "United Kingdom",
				"uae":       "United Arab Emirates",
				"korea":     "South Korea",
				"vietnam":   "Vietnam",
				"russia":    "Russian Federation",
				"iran":      "Iran (Islamic Republic of)",
				"bolivia":   "Bolivia (Plurinational State of)",
				"venezuela": "Venezuela (Bolivarian Republic of)",
				"ireland":   "Republic of Ireland",
			},
		},
		Trainset: TrainsetConfig{
			RequiredColumns: []string{"track_genre", "avg_temp", "unemployment_rate"},
		},
		BulkLoad: BulkLoadConfig{
			SQLitePath: "",
			Table:      "train_dataset",
		},
		EDA: EDAConfig{
			SampleRows: 1_000_000,
			TopN:       20,
			DuckDB:     true,
		},
		Preprocess: PreprocessConfig{
			SampleRows:         2_000_000,
			TestSize:           0.2,
			RandomState:        42,
			MinClassSamples:    500,
			TargetColumn:       "track_genre",
			IDColumns:          []string{"title", "date", "artist"},
			CategoricalColumns: []string{"region", "continent"},
			NumericalColumns:   numerical,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Default returns the built-in configuration without reading files or env.
func Default() *Config {
	return defaultConfig()
}

// Load merges defaults, the config file and the environment. An empty path
// falls back to ConfigPathEnvVar and then DefaultConfigPaths.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sections are the top-level keys, longest first so "bulk_load" wins over
// a hypothetical "bulk".
var sections = []string{
	"preprocess", "bulk_load", "trainset", "matching", "logging",
	"climate", "economy", "charts", "genres", "paths", "geo", "eda",
}

// envTransformFunc maps WEATHERCHART_PREPROCESS_TEST_SIZE to
// preprocess.test_size. Unknown variables map to "" and are dropped.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	if key == "config" {
		return ""
	}
	if key == "data_dir" {
		return key
	}
	for _, s := range sections {
		if strings.HasPrefix(key, s+"_") {
			return s + "." + strings.TrimPrefix(key, s+"_")
		}
	}
	return ""
}

// sliceFieldDelimiters lists slice keys that may arrive as a delimited string
// from the environment. Separators use "|" because "," is itself a separator.
var sliceFieldDelimiters = map[string]string{
	"charts.columns":                 ",",
	"genres.features":                ",",
	"matching.separators":            "|",
	"trainset.required_columns":      ",",
	"preprocess.id_columns":          ",",
	"preprocess.categorical_columns": ",",
	"preprocess.numerical_columns":   ",",
}

func processSliceFields(k *koanf.Koanf) error {
	for path, delim := range sliceFieldDelimiters {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, delim)
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if delim != "|" {
				p = strings.TrimSpace(p)
			}
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
