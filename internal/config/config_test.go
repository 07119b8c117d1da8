package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Climate.StartYear != 1970 {
		t.Errorf("Climate.StartYear = %d, want 1970", cfg.Climate.StartYear)
	}
	if cfg.Preprocess.MinClassSamples != 500 {
		t.Errorf("Preprocess.MinClassSamples = %d, want 500", cfg.Preprocess.MinClassSamples)
	}
	if cfg.Preprocess.TestSize != 0.2 {
		t.Errorf("Preprocess.TestSize = %v, want 0.2", cfg.Preprocess.TestSize)
	}
	want := []string{",", "&", "feat."}
	if strings.Join(cfg.Matching.Separators, "|") != strings.Join(want, "|") {
		t.Errorf("Matching.Separators = %q, want %q", cfg.Matching.Separators, want)
	}
	if cfg.Geo.Overrides["russia"] != "Russian Federation" {
		t.Errorf("Geo.Overrides[russia] = %q", cfg.Geo.Overrides["russia"])
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"WEATHERCHART_DATA_DIR", "data_dir"},
		{"WEATHERCHART_PREPROCESS_TEST_SIZE", "preprocess.test_size"},
		{"WEATHERCHART_BULK_LOAD_SQLITE_PATH", "bulk_load.sqlite_path"},
		{"WEATHERCHART_MATCHING_SEPARATORS", "matching.separators"},
		{"WEATHERCHART_GEO_ENCODING", "geo.encoding"},
		{"WEATHERCHART_CONFIG", ""},
		{"WEATHERCHART_UNKNOWN_THING", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weatherchart.yaml")
	yml := `
data_dir: /srv/weather
climate:
  start_year: 1980
preprocess:
  min_class_samples: 100
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WEATHERCHART_PREPROCESS_TEST_SIZE", "0.25")
	t.Setenv("WEATHERCHART_MATCHING_SEPARATORS", ",|&|feat.| ft. ")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.DataDir != "/srv/weather" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Climate.StartYear != 1980 {
		t.Errorf("StartYear = %d, want 1980", cfg.Climate.StartYear)
	}
	if cfg.Preprocess.MinClassSamples != 100 {
		t.Errorf("MinClassSamples = %d, want 100", cfg.Preprocess.MinClassSamples)
	}
	if cfg.Preprocess.TestSize != 0.25 {
		t.Errorf("TestSize = %v, want 0.25", cfg.Preprocess.TestSize)
	}
	if len(cfg.Matching.Separators) != 4 || cfg.Matching.Separators[3] != " ft. " {
		t.Errorf("Separators = %q", cfg.Matching.Separators)
	}
	if cfg.Preprocess.RandomState != 42 {
		t.Errorf("defaults should survive: RandomState = %d", cfg.Preprocess.RandomState)
	}
	if got := cfg.Path("train_dataset.csv"); got != filepath.Join("/srv/weather", "train_dataset.csv") {
		t.Errorf("Path = %q", got)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"test size zero", func(c *Config) { c.Preprocess.TestSize = 0 }},
		{"test size one", func(c *Config) { c.Preprocess.TestSize = 1 }},
		{"no separators", func(c *Config) { c.Matching.Separators = nil }},
		{"blank separator", func(c *Config) { c.Matching.Separators = []string{" "} }},
		{"uppercase separator", func(c *Config) { c.Matching.Separators = []string{"FEAT."} }},
		{"bad encoding", func(c *Config) { c.Geo.Encoding = "utf-16" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"categorical also numerical", func(c *Config) {
			c.Preprocess.CategoricalColumns = append(c.Preprocess.CategoricalColumns, "month")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}
