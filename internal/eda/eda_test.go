package eda

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"weatherchart/internal/csvio"
)

func trainingFixture(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("title,region,continent,track_genre,energy,danceability,avg_temp,latitude,longitude,month\n")
	regions := []struct {
		region, continent string
		lat, lon          float64
	}{
		{"Chile", "South America", -35.7, -71.5},
		{"Spain", "Europe", 40.5, -3.7},
		{"Japan", "Asia", 36.2, 138.3},
	}
	genres := []string{"['latin']", "['pop']", "['rock', 'pop']"}
	for i := 0; i < 60; i++ {
		r := regions[i%3]
		fmt.Fprintf(&b, "t%d,%s,%s,\"%s\",%.2f,%.2f,%.1f,%v,%v,%d\n",
			i, r.region, r.continent, genres[i%len(genres)], float64(i%10)/10, float64(i%7)/7, 10+float64(i%5), r.lat, r.lon, i%12+1)
	}
	b.WriteString("t60,Chile,South America,,,0.5,12.0,-35.7,-71.5,3\n")
	p := filepath.Join(dir, "train_dataset.csv")
	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestInferKinds(t *testing.T) {
	tests := []struct {
		vals []string
		want string
	}{
		{[]string{"1", "2", "3"}, kindInt},
		{[]string{"1", "2.5"}, kindFloat},
		{[]string{"1", ""}, kindFloat},
		{[]string{"", ""}, kindFloat},
		{[]string{"1", "x"}, kindObject},
		{[]string{"1e3", "2"}, kindFloat},
	}
	for _, tt := range tests {
		if got, _, _ := infer(tt.vals); got != tt.want {
			t.Fatalf("infer(%v) = %s, want %s", tt.vals, got, tt.want)
		}
	}
}

func TestAnalyzeWritesReportAndPlots(t *testing.T) {
	dir := t.TempDir()
	in := trainingFixture(t, dir)
	report := filepath.Join(dir, "eda_report.txt")
	plots := filepath.Join(dir, "plots")

	res, err := Analyze(context.Background(), Options{
		Input:         in,
		Report:        report,
		PlotsDir:      plots,
		SampleRows:    0,
		TopN:          5,
		AudioFeatures: []string{"energy", "danceability", "tempo"},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Rows != 61 {
		t.Fatalf("rows = %d, want 61", res.Rows)
	}

	raw, err := os.ReadFile(report)
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)
	for _, want := range []string{
		"Shape of sample: (61, 10)",
		"--- Numerical Statistics ---",
		"--- Categorical Statistics ---",
		"--- Correlation Matrix (Pearson) ---",
		"--- Top 5 Countries (by Data Volume) ---",
		"--- Top 5 Genres ---",
		"['latin']",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("report missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "full file") {
		t.Fatalf("full-file counts should be absent without DuckDB")
	}

	wantPlots := []string{
		"dist_energy.png", "dist_danceability.png", "boxplot_audio_features.png",
		"correlation_matrix.png", "geo_scatter_temp.png", "top_genres_bar.png", "box_energy_continent.png",
	}
	if len(res.Plots) != len(wantPlots) {
		t.Fatalf("plots = %v", res.Plots)
	}
	for _, name := range wantPlots {
		st, err := os.Stat(filepath.Join(plots, name))
		if err != nil || st.Size() == 0 {
			t.Fatalf("plot %s missing: %v", name, err)
		}
	}
}

func TestAnalyzeSampleRows(t *testing.T) {
	dir := t.TempDir()
	in := trainingFixture(t, dir)
	res, err := Analyze(context.Background(), Options{
		Input: in, Report: filepath.Join(dir, "r.txt"), PlotsDir: filepath.Join(dir, "p"),
		SampleRows: 10, TopN: 3,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Rows != 10 {
		t.Fatalf("rows = %d, want 10", res.Rows)
	}
}

func TestValueCountsDuckDBScansWholeFile(t *testing.T) {
	dir := t.TempDir()
	in := trainingFixture(t, dir)
	r, err := csvio.Open(in)
	if err != nil {
		t.Fatal(err)
	}
	header := append([]string(nil), r.Header()...)
	r.Close()

	got, err := valueCountsDuckDB(context.Background(), in, []string{"region", "track_genre", "absent"}, header, 2)
	if err != nil {
		t.Fatalf("valueCountsDuckDB: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("columns = %+v", got)
	}
	region := got[0]
	if region.Column != "region" || region.Total != 61 {
		t.Fatalf("region = %+v", region)
	}
	if region.Top[0].Value != "Chile" || region.Top[0].Count != 21 {
		t.Fatalf("top region = %+v", region.Top)
	}
	if got[1].Total != 60 {
		t.Fatalf("track_genre total = %d, want 60", got[1].Total)
	}
}
