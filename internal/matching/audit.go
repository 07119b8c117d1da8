package matching

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"weatherchart/internal/csvio"
	"weatherchart/internal/join"
)

// AuditOptions configures Audit.
type AuditOptions struct {
	Joined       string
	Genres       string
	Output       string
	ArtistColumn string
	GenreColumn  string
	TopN         int
}

// MissingArtist is an unmatched raw artist string with its row count.
type MissingArtist struct {
	Artist string
	Rows   int
	// InGenreTable is set when the lowercased, trimmed artist is a genre
	// table key, which means the join should have found it.
	InGenreTable bool
}

// AuditReport summarizes unmatched rows of a genre join.
type AuditReport struct {
	TotalRows     int
	UnmatchedRows int
	UniqueMissing int
	Top           []MissingArtist
}

// Audit counts rows with a blank genre per artist and writes a markdown
// report of the most frequent ones.
func Audit(ctx context.Context, opts AuditOptions) (AuditReport, error) {
	log := zerolog.Ctx(ctx)

	genres, err := LoadGenreTable(opts.Genres, "artist")
	if err != nil {
		return AuditReport{}, err
	}

	r, err := csvio.Open(opts.Joined)
	if err != nil {
		return AuditReport{}, err
	}
	defer r.Close()
	idx, err := r.Require(opts.ArtistColumn, opts.GenreColumn)
	if err != nil {
		return AuditReport{}, fmt.Errorf("%s: %w", opts.Joined, err)
	}

	var rep AuditReport
	missing := make(map[string]int)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rep, fmt.Errorf("%s row %d: %w", opts.Joined, r.Rows()+1, err)
		}
		rep.TotalRows++
		if csvio.IsBlank(rec[idx[1]]) {
			rep.UnmatchedRows++
			missing[rec[idx[0]]]++
		}
	}
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	rep.UniqueMissing = len(missing)
	for i, kc := range join.SortedCounts(missing) {
		if i >= opts.TopN {
			break
		}
		rep.Top = append(rep.Top, MissingArtist{
			Artist:       kc.Key,
			Rows:         kc.Count,
			InGenreTable: genres.Has(join.Normalize(kc.Key)),
		})
	}

	if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
		return rep, err
	}
	if err := os.WriteFile(opts.Output, []byte(rep.Markdown()), 0o644); err != nil {
		return rep, err
	}

	log.Info().
		Int("rows", rep.TotalRows).
		Int("unmatched_rows", rep.UnmatchedRows).
		Int("unique_missing_artists", rep.UniqueMissing).
		Str("output", opts.Output).
		Msg("missing artist audit written")
	for _, m := range rep.Top {
		if m.InGenreTable {
			log.Warn().Str("artist", m.Artist).Msg("unmatched artist exists in genre table")
		}
	}
	return rep, nil
}

// Markdown renders the report.
func (rep AuditReport) Markdown() string {
	pct := 0.0
	if rep.TotalRows > 0 {
		pct = 100 * float64(rep.UnmatchedRows) / float64(rep.TotalRows)
	}
	lines := []string{
		"# Missing artist genre report",
		"",
		"## Summary",
		fmt.Sprintf("- Rows scanned: %s", csvio.FormatInt(rep.TotalRows)),
		fmt.Sprintf("- Rows without genre: %s (%.2f%%)", csvio.FormatInt(rep.UnmatchedRows), pct),
		fmt.Sprintf("- Unique artists without genre: %s", csvio.FormatInt(rep.UniqueMissing)),
		"",
		fmt.Sprintf("## Top %d missing artists", len(rep.Top)),
		"",
		"| Artist | Rows | In genre table |",
		"|---|---:|---|",
	}
	for _, m := range rep.Top {
		status := "no match"
		if m.InGenreTable {
			status = "match found, investigate"
		}
		lines = append(lines, fmt.Sprintf("| %s | %s | %s |", escapeCell(m.Artist), csvio.FormatInt(m.Rows), status))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func escapeCell(s string) string {
	if s == "" {
		return "(blank)"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
