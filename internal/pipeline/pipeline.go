// Package pipeline is the ordered registry of WeatherChart stages.
//
// Each stage reads its inputs from disk and writes its outputs to disk, so
// any stage can be re-run alone once its inputs exist.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weatherchart/internal/config"
	"weatherchart/internal/logging"
)

// ErrUnknownStage is returned for a name not in the registry.
var ErrUnknownStage = errors.New("unknown stage")

// All selects every stage in registry order.
const All = "all"

// Stage is one named step.
type Stage struct {
	Name        string
	Description string
	Run         func(ctx context.Context, cfg *config.Config) error
}

// Stages returns the registry in execution order.
func Stages() []Stage {
	return []Stage{
		{"filter-charts", "project chart rows to title, date, artist, region", filterCharts},
		{"process-genres", "aggregate genres and audio features per artist", processGenres},
		{"join-genres", "attach artist genres to chart rows with fallback matching", joinGenres},
		{"audit-missing", "report the most frequent artists without a genre", auditMissing},
		{"process-climate", "average monthly temperature per country", processClimate},
		{"join-climate", "attach month and average temperature", joinClimate},
		{"process-countries", "extract continent, population and GDP per capita", processCountries},
		{"join-economy", "attach continent, population and GDP per capita", joinEconomy},
		{"process-geo", "clean coordinates and education indicators", processGeo},
		{"join-geo", "attach coordinates and education indicators", joinGeo},
		{"assemble-training", "drop incomplete rows and load the training set", assembleTraining},
		{"eda", "write the exploratory report and plots", runEDA},
		{"preprocess", "encode, split and scale into model partitions", runPreprocess},
	}
}

// Resolve maps stage names to stages, expanding All.
func Resolve(names []string) ([]Stage, error) {
	registry := Stages()
	byName := make(map[string]Stage, len(registry))
	for _, s := range registry {
		byName[s.Name] = s
	}
	var out []Stage
	for _, n := range names {
		if n == All {
			out = append(out, registry...)
			continue
		}
		s, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStage, n)
		}
		out = append(out, s)
	}
	return out, nil
}

// Run executes the named stages in the given order and stops at the first
// failure.
func Run(ctx context.Context, cfg *config.Config, names []string) error {
	stages, err := Resolve(names)
	if err != nil {
		return err
	}
	for _, s := range stages {
		log := logging.Stage(s.Name)
		start := time.Now()
		log.Info().Msg("stage started")
		if err := s.Run(log.WithContext(ctx), cfg); err != nil {
			return fmt.Errorf("stage %s: %w", s.Name, err)
		}
		log.Info().Dur("elapsed", time.Since(start)).Msg("stage finished")
	}
	return nil
}
