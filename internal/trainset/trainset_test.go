package trainset

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"weatherchart/internal/csvio"
)

const v4 = "title,date,artist,region,track_genre,energy,month,avg_temp,unemployment_rate\n" +
	"a,2017-01-01,X,Chile,['latin'],0.7,1,21.0,7.1\n" +
	"b,2017-01-01,Y,Chile,,0.5,1,21.0,7.1\n" +
	"c,2017-01-01,Z,Global,['pop'],0.6,1,,\n" +
	"d,2017-02-01,X,Taiwan,['latin'],0.7,2,15.2,\n" +
	"e,2017-02-01,W,Spain,['rock'],,2,9.5,14.1\n"

var required = []string{"track_genre", "avg_temp", "unemployment_rate"}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestAssembleDropsRowsMissingRequired(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "v4.csv", v4)
	out := filepath.Join(dir, "train_dataset.csv")

	res, err := Assemble(context.Background(), Options{Input: in, Output: out, Required: required})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if res.SourceRows != 5 || res.KeptRows != 2 {
		t.Fatalf("result = %+v", res)
	}
	if res.DroppedBy["track_genre"] != 1 || res.DroppedBy["avg_temp"] != 1 || res.DroppedBy["unemployment_rate"] != 1 {
		t.Fatalf("dropped = %v", res.DroppedBy)
	}
	if res.Retention() != 40 {
		t.Fatalf("retention = %v", res.Retention())
	}
	tbl, err := csvio.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 2 || tbl.Rows[0][0] != "a" || tbl.Rows[1][0] != "e" {
		t.Fatalf("rows = %v", tbl.Rows)
	}
	// Non-required blanks survive.
	if tbl.Rows[1][tbl.Col("energy")] != "" {
		t.Fatalf("energy should stay blank")
	}
	if len(res.Regions) != 2 {
		t.Fatalf("regions = %v", res.Regions)
	}
}

func TestAssembleMissingRequiredColumn(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "v4.csv", "title,track_genre\na,['pop']\n")
	_, err := Assemble(context.Background(), Options{Input: in, Output: filepath.Join(dir, "o.csv"), Required: required})
	if !errors.Is(err, csvio.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestLoadSQLiteTypedColumns(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "v4.csv", v4)
	dbPath := filepath.Join(dir, "db", "train.db")
	types := ColumnTypes([]string{"energy", "avg_temp", "unemployment_rate"})

	n, err := LoadSQLite(context.Background(), LoadOptions{
		CSV: in, Database: dbPath, Table: "train_dataset", Types: types, BatchSize: 2,
	})
	if err != nil {
		t.Fatalf("LoadSQLite: %v", err)
	}
	if n != 5 {
		t.Fatalf("rows = %d, want 5", n)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM train_dataset WHERE avg_temp IS NULL`).Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 1 {
		t.Fatalf("null avg_temp rows = %d, want 1", count)
	}
	var typ string
	if err := db.QueryRow(`SELECT typeof(month) FROM train_dataset LIMIT 1`).Scan(&typ); err != nil {
		t.Fatal(err)
	}
	if typ != "integer" {
		t.Fatalf("month stored as %s", typ)
	}
	var sum float64
	if err := db.QueryRow(`SELECT SUM(energy) FROM train_dataset`).Scan(&sum); err != nil {
		t.Fatal(err)
	}
	if sum < 2.49 || sum > 2.51 {
		t.Fatalf("sum(energy) = %v", sum)
	}
	var idx int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND tbl_name = 'train_dataset'`).Scan(&idx); err != nil {
		t.Fatal(err)
	}
	if idx != 2 {
		t.Fatalf("indexes = %d, want 2", idx)
	}

	// Reloading replaces the table.
	if _, err := LoadSQLite(context.Background(), LoadOptions{CSV: in, Database: dbPath, Table: "train_dataset", Types: types}); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM train_dataset`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Fatalf("rows after reload = %d", count)
	}
}

func TestBulkInsertSQL(t *testing.T) {
	sqlText := BulkInsertSQL("train_dataset", "/data/train_dataset.csv",
		[]string{"title", "month", "avg_temp"}, ColumnTypes([]string{"avg_temp"}))
	for _, want := range []string{
		"CREATE TABLE [train_dataset] (",
		"[title] NVARCHAR(MAX),",
		"[month] INT,",
		"[avg_temp] FLOAT\n",
		"BULK INSERT [train_dataset]",
		"FROM '/data/train_dataset.csv'",
		"FIRSTROW = 2",
		"FIELDTERMINATOR = ','",
		`FIELDQUOTE = '"'`,
	} {
		if !strings.Contains(sqlText, want) {
			t.Fatalf("missing %q in:\n%s", want, sqlText)
		}
	}
}

func TestWriteBulkInsertSQL(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "train.csv", "title,region\na,Chile\n")
	out := filepath.Join(dir, "bulk_insert.sql")
	if err := WriteBulkInsertSQL(out, "train_dataset", in, nil); err != nil {
		t.Fatalf("WriteBulkInsertSQL: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "[region] NVARCHAR(MAX)") {
		t.Fatalf("sql:\n%s", raw)
	}
}
