package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"weatherchart/internal/config"
	"weatherchart/internal/csvio"
	"weatherchart/internal/preprocess"
)

func TestStagesOrder(t *testing.T) {
	want := []string{
		"filter-charts", "process-genres", "join-genres", "audit-missing",
		"process-climate", "join-climate", "process-countries", "join-economy",
		"process-geo", "join-geo", "assemble-training", "eda", "preprocess",
	}
	got := Stages()
	if len(got) != len(want) {
		t.Fatalf("got %d stages, want %d", len(got), len(want))
	}
	for i, s := range got {
		if s.Name != want[i] || s.Description == "" || s.Run == nil {
			t.Fatalf("stage %d = %+v, want %s", i, s.Name, want[i])
		}
	}
}

func TestResolve(t *testing.T) {
	stages, err := Resolve([]string{"eda", "all"})
	if err != nil {
		t.Fatal(err)
	}
	if len(stages) != 14 || stages[0].Name != "eda" || stages[1].Name != "filter-charts" {
		t.Fatalf("resolved %d stages starting %s, %s", len(stages), stages[0].Name, stages[1].Name)
	}
	if _, err := Resolve([]string{"join-genres", "train-model"}); !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("err = %v, want ErrUnknownStage", err)
	}
}

func TestRunUnknownStageRunsNothing(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	err := Run(context.Background(), cfg, []string{"filter-charts", "nope"})
	if !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("err = %v", err)
	}
	if _, err := os.Stat(cfg.Path(cfg.Paths.ChartsCleaned)); !os.IsNotExist(err) {
		t.Fatalf("filter-charts ran before the unknown stage was rejected: %v", err)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeInputs(t *testing.T, dir string) {
	t.Helper()
	var charts strings.Builder
	charts.WriteString("title,rank,date,artist,url,region,chart,trend,streams\n")
	artists := []string{"Shakira", "Bad Bunny", "\"Shakira, Maluma\"", "Nobody Known"}
	regions := []string{"Chile", "Spain"}
	dates := []string{"2020-03-01", "2020-07-15", "2021-03-08"}
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&charts, "song %d,%d,%s,%s,https://x/%d,%s,top200,SAME_POSITION,%d\n",
			i, i+1, dates[i%3], artists[i%4], i, regions[i%2], 1000+i)
	}
	writeFile(t, dir, "charts.csv", charts.String())

	writeFile(t, dir, "genres.csv", ""+
		"track_id,artists,track_genre,danceability,energy,key,loudness,speechiness,acousticness,instrumentalness,liveness,valence,tempo\n"+
		"a,Shakira,latin,0.7,0.8,5,-5.1,0.05,0.1,0.0,0.12,0.6,120.0\n"+
		"b,Shakira;Maluma,pop,0.8,0.7,7,-4.0,0.07,0.2,0.01,0.2,0.5,100.0\n"+
		"c,Bad Bunny,reggaeton,0.75,0.6,1,-6.0,0.2,0.3,0.0,0.3,0.4,90.0\n")

	writeFile(t, dir, "GlobalLandTemperaturesByCountry.csv", ""+
		"dt,AverageTemperature,AverageTemperatureUncertainty,Country\n"+
		"1960-03-01,30.0,0.5,Chile\n"+
		"2000-03-01,18.0,0.3,Chile\n"+
		"2001-03-01,20.0,0.3,Chile\n"+
		"2000-07-01,8.0,0.3,Chile\n"+
		"2000-03-01,11.0,0.3,Spain\n"+
		"2000-07-01,25.0,0.3,Spain\n"+
		"2000-08-01,,,Spain\n")

	writeFile(t, dir, "countries.csv", ""+
		"Country,Continent,Population,GDP_per_capita,Area\n"+
		"Chile,South America,19000000,15000.5,756102\n"+
		"Spain,Europe,47000000,30000.0,505990\n")

	writeFile(t, dir, "latitude.csv", ""+
		"Countries and areas,Latitude,Longitude,Gross_Tertiary_Education_Enrollment,Unemployment_Rate\n"+
		"Chile,35.675147,-71.542969,88.5,7.1\n"+
		"Spain,40.463667,-3.74922,88.9,13.96\n"+
		"Singapore,1.352083,103.819836,84.8,4.11\n"+
		"Taiwan,23.69781,120.960515,,\n")
}

func TestRunAllStages(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)
	cfg := config.Default()
	cfg.DataDir = dir
	cfg.BulkLoad.SQLitePath = "train.db"
	cfg.EDA.DuckDB = false
	cfg.Preprocess.MinClassSamples = 2

	if err := Run(context.Background(), cfg, []string{All}); err != nil {
		t.Fatal(err)
	}

	train, err := csvio.Load(cfg.Path(cfg.Paths.Training))
	if err != nil {
		t.Fatal(err)
	}
	// Rows by "Nobody Known" have no genre and are dropped.
	if train.Len() != 30 {
		t.Fatalf("training rows = %d, want 30", train.Len())
	}
	for _, col := range []string{"track_genre", "month", "avg_temp", "continent", "population", "latitude", "unemployment_rate"} {
		if train.Col(col) < 0 {
			t.Fatalf("training set lacks %s: %v", col, train.Header)
		}
	}
	lat := train.Col("latitude")
	region := train.Col("region")
	for _, row := range train.Rows {
		if row[region] == "Chile" && !strings.HasPrefix(row[lat], "-") {
			t.Fatalf("Chile latitude %s not corrected", row[lat])
		}
	}

	for _, p := range []string{
		cfg.Paths.MissingReport, cfg.Paths.BulkInsertSQL, cfg.BulkLoad.SQLitePath, cfg.Paths.EDAReport,
		filepath.Join(cfg.Paths.PreprocessDir, preprocess.XTrainFile),
		filepath.Join(cfg.Paths.PreprocessDir, preprocess.ArtifactFile),
	} {
		if _, err := os.Stat(cfg.Path(p)); err != nil {
			t.Fatalf("missing output %s: %v", p, err)
		}
	}
	report, err := os.ReadFile(cfg.Path(cfg.Paths.MissingReport))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(report), "Nobody Known") {
		t.Fatalf("missing report does not name the unmatched artist:\n%s", report)
	}
	art, err := preprocess.LoadArtifact(cfg.Path(filepath.Join(cfg.Paths.PreprocessDir, preprocess.ArtifactFile)))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(art.TargetClasses(), ","); got != "latin,reggaeton" {
		t.Fatalf("target classes = %s", got)
	}
}
