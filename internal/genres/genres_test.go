package genres

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"weatherchart/internal/csvio"
)

func TestAggregateExplodesAndAverages(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "genres.csv")
	out := filepath.Join(dir, "artist_genres.csv")
	raw := "track_id,artists,track_genre,danceability,energy\n" +
		"1,Shakira;Maluma,latin,0.8,0.6\n" +
		"2,Shakira,pop,0.6,\n" +
		"3,Shakira,latin,0.7,0.9\n" +
		"4,,rock,0.1,0.1\n" +
		"5, Maluma ,reggaeton,0.9,0.8\n"
	if err := os.WriteFile(in, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := Aggregate(context.Background(), Options{
		Input:        in,
		Output:       out,
		ArtistColumn: "artists",
		GenreColumn:  "track_genre",
		Separator:    ";",
		Features:     []string{"danceability", "energy"},
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if n != 2 {
		t.Fatalf("artists = %d, want 2", n)
	}

	tbl, err := csvio.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	wantHeader := []string{"artist", "track_genre", "danceability", "energy"}
	if !reflect.DeepEqual(tbl.Header, wantHeader) {
		t.Fatalf("header = %v", tbl.Header)
	}
	want := [][]string{
		{"Maluma", "['latin', 'reggaeton']"},
		{"Shakira", "['latin', 'pop']"},
	}
	for i, row := range want {
		if tbl.Rows[i][0] != row[0] || tbl.Rows[i][1] != row[1] {
			t.Fatalf("row %d = %v, want %v", i, tbl.Rows[i], row)
		}
	}
	// energy for Shakira ignores the blank cell: (0.6 + 0.9) / 2.
	if tbl.Rows[1][3] != "0.75" {
		t.Fatalf("Shakira energy = %q, want 0.75", tbl.Rows[1][3])
	}
}

func TestAggregateMissingColumn(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "genres.csv")
	if err := os.WriteFile(in, []byte("artists,track_genre\nA,pop\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Aggregate(context.Background(), Options{
		Input: in, Output: filepath.Join(dir, "o.csv"),
		ArtistColumn: "artists", GenreColumn: "track_genre", Separator: ";",
		Features: []string{"tempo"},
	})
	if !errors.Is(err, csvio.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestFormatList(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, "[]"},
		{[]string{"pop"}, "['pop']"},
		{[]string{"pop", "dance"}, "['pop', 'dance']"},
		{[]string{"children's"}, `["children's"]`},
		{[]string{`a'b"c`}, `['a\'b"c']`},
	}
	for _, tt := range tests {
		if got := FormatList(tt.in); got != tt.want {
			t.Fatalf("FormatList(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
		ok   bool
	}{
		{"['pop', 'dance']", []string{"pop", "dance"}, true},
		{`["children's", 'k-pop']`, []string{"children's", "k-pop"}, true},
		{`['a\'b"c']`, []string{`a'b"c`}, true},
		{"[]", nil, true},
		{"  latin ", []string{"latin"}, true},
		{"['pop'", []string{"['pop'"}, true},
		{"['pop' 'x']", nil, false},
		{"[pop]", nil, false},
	}
	for _, tt := range tests {
		got, ok := ParseList(tt.in)
		if ok != tt.ok || !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("ParseList(%q) = %#v, %v; want %#v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestListRoundTrip(t *testing.T) {
	in := []string{"pop", "children's", `say "hi"`, `back\slash`}
	got, ok := ParseList(FormatList(in))
	if !ok || !reflect.DeepEqual(got, in) {
		t.Fatalf("round trip = %#v, %v", got, ok)
	}
}
