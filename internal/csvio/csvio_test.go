package csvio

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReaderStripsBOMAndPadsShortRecords(t *testing.T) {
	in := "\xEF\xBB\xBFtitle,artist,region\nA,B\n"
	r, err := NewReader(strings.NewReader(in))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if got := r.Header()[0]; got != "title" {
		t.Fatalf("header[0] = %q, want title", got)
	}
	rec, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rec) != 3 || rec[2] != "" {
		t.Fatalf("record = %#v, want 3 fields with blank region", rec)
	}
	if _, err := r.Read(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
	if r.Rows() != 1 {
		t.Fatalf("Rows = %d, want 1", r.Rows())
	}
}

func TestReaderRequireReportsAllMissing(t *testing.T) {
	r, err := NewReader(strings.NewReader("a,b\n1,2\n"))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	idx, err := r.Require("b", "a")
	if err != nil {
		t.Fatalf("Require: %v", err)
	}
	if idx[0] != 1 || idx[1] != 0 {
		t.Fatalf("indexes = %v", idx)
	}
	_, err = r.Require("a", "x", "y")
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	if !strings.Contains(err.Error(), "x, y") {
		t.Fatalf("error should name missing columns: %v", err)
	}
}

func TestReaderDecodesWindows1252AndTrimsHeader(t *testing.T) {
	// "Côte d'Ivoire" with 0xF4 for ô.
	in := []byte(" Country , Latitude \nC\xF4te d'Ivoire,7.54\n")
	r, err := NewReader(bytes.NewReader(in), WithEncoding("windows-1252"), WithTrimmedHeader())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, ok := r.Index("Country"); !ok {
		t.Fatalf("trimmed header not found: %#v", r.Header())
	}
	rec, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rec[0] != "Côte d'Ivoire" {
		t.Fatalf("decoded = %q", rec[0])
	}
}

func TestReaderRejectsUnknownEncoding(t *testing.T) {
	if _, err := NewReader(strings.NewReader("a\n"), WithEncoding("ebcdic")); err == nil {
		t.Fatalf("expected error for unknown encoding")
	}
}

func TestReaderEmptyInput(t *testing.T) {
	if _, err := NewReader(strings.NewReader("")); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestWriterQuotesLikePandas(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, []string{"title", "artist"})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Write([]string{`Say "Hi"`, "A, B"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write([]string{"plain", ""}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	want := "title,artist\n\"Say \"\"Hi\"\"\",\"A, B\"\nplain,\n"
	if buf.String() != want {
		t.Fatalf("output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWriteTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	in := NewTable([]string{"k", "v"}, [][]string{{"a", "1"}, {"b\nc", "2"}})
	if err := WriteTable(path, in); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Len() != 2 || out.Rows[1][0] != "b\nc" {
		t.Fatalf("rows = %#v", out.Rows)
	}
	if got := out.Column("v"); got[0] != "1" || got[1] != "2" {
		t.Fatalf("Column(v) = %v", got)
	}
	if out.Col("missing") != -1 {
		t.Fatalf("Col(missing) should be -1")
	}
	raw, _ := os.ReadFile(path)
	if bytes.HasPrefix(raw, utf8BOM) {
		t.Fatalf("output should not carry a BOM")
	}
}

func TestReadAllLimit(t *testing.T) {
	r, err := NewReader(strings.NewReader("a\n1\n2\n3\n"))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	tbl, err := ReadAll(r, 2)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{-3.5, "-3.5"},
		{0.1, "0.1"},
		{22.3193, "22.3193"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1e16, "1e+16"},
		{123456789, "123456789.0"},
	}
	for _, tt := range tests {
		if got := FormatFloat(tt.in); got != tt.want {
			t.Fatalf("FormatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseFloat(t *testing.T) {
	if _, ok := ParseFloat(" "); ok {
		t.Fatalf("blank should not parse")
	}
	if _, ok := ParseFloat("nan"); ok {
		t.Fatalf("nan should not parse")
	}
	if v, ok := ParseFloat(" 4.11 "); !ok || v != 4.11 {
		t.Fatalf("ParseFloat = %v, %v", v, ok)
	}
}

func TestFormatInt(t *testing.T) {
	for in, want := range map[int]string{0: "0", 999: "999", 1000: "1,000", 2000000: "2,000,000", -1234: "-1,234"} {
		if got := FormatInt(in); got != want {
			t.Fatalf("FormatInt(%d) = %q, want %q", in, got, want)
		}
	}
}
