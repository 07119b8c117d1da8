package matching

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"weatherchart/internal/csvio"
	"weatherchart/internal/join"
)

// GenreTable is the artist genre lookup keyed by normalized artist name.
type GenreTable struct {
	// Columns are the genre table columns other than the artist column.
	Columns []string
	rows    map[string][]string
}

// LoadGenreTable reads the aggregated artist genre file. When two artists
// normalize to the same key, the later row wins.
func LoadGenreTable(path, artistColumn string) (*GenreTable, error) {
	tbl, err := csvio.Load(path)
	if err != nil {
		return nil, err
	}
	idx, err := tbl.Require(artistColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	artist := idx[0]

	g := &GenreTable{rows: make(map[string][]string, tbl.Len())}
	keep := make([]int, 0, len(tbl.Header)-1)
	for i, h := range tbl.Header {
		if i != artist {
			keep = append(keep, i)
			g.Columns = append(g.Columns, h)
		}
	}
	for _, rec := range tbl.Rows {
		k := join.Normalize(rec[artist])
		if k == "" {
			continue
		}
		vals := make([]string, len(keep))
		for i, j := range keep {
			vals[i] = rec[j]
		}
		g.rows[k] = vals
	}
	return g, nil
}

// NewGenreTable builds a table from normalized keys, mainly for tests.
func NewGenreTable(columns []string, rows map[string][]string) *GenreTable {
	return &GenreTable{Columns: columns, rows: rows}
}

func (g *GenreTable) Has(key string) bool {
	_, ok := g.rows[key]
	return ok
}

// Get returns the values for a normalized key.
func (g *GenreTable) Get(key string) ([]string, bool) {
	v, ok := g.rows[key]
	return v, ok
}

// Len is the number of distinct keys.
func (g *GenreTable) Len() int { return len(g.rows) }

// JoinOptions configures Join.
type JoinOptions struct {
	Charts       string
	Genres       string
	Output       string
	ArtistColumn string
	Separators   []string
}

// JoinResult summarizes a genre join.
type JoinResult struct {
	Rows           int
	MatchedRows    int
	UniqueArtists  int
	MatchedArtists int
	TierHits       map[string]int
}

type resolution struct {
	key string
	ok  bool
}

// Join appends genre columns to every chart row. Each distinct artist
// string is resolved once; unmatched rows get blank genre columns.
func Join(ctx context.Context, opts JoinOptions) (JoinResult, error) {
	log := zerolog.Ctx(ctx)

	genres, err := LoadGenreTable(opts.Genres, "artist")
	if err != nil {
		return JoinResult{}, err
	}
	log.Info().Int("artists", genres.Len()).Msg("genre lookup loaded")

	chain := DefaultChain(opts.Separators)
	mapping := make(map[string]resolution)
	blank := make([]string, len(genres.Columns))
	var res JoinResult

	n, err := join.Append(ctx, opts.Charts, opts.Output, genres.Columns, func(r *csvio.Reader) (join.RowFunc, error) {
		idx, err := r.Require(opts.ArtistColumn)
		if err != nil {
			return nil, err
		}
		col := idx[0]
		return func(rec []string) []string {
			raw := rec[col]
			m, seen := mapping[raw]
			if !seen {
				key, _, ok := chain.Resolve(raw, genres)
				m = resolution{key: key, ok: ok}
				mapping[raw] = m
			}
			if !m.ok {
				return blank
			}
			res.MatchedRows++
			vals, _ := genres.Get(m.key)
			return vals
		}, nil
	})
	if err != nil {
		return res, err
	}

	res.Rows = n
	res.UniqueArtists = len(mapping)
	res.MatchedArtists = res.UniqueArtists - chain.Misses()
	res.TierHits = chain.Hits()

	ev := log.Info().
		Int("rows", res.Rows).
		Int("matched_rows", res.MatchedRows).
		Int("unique_artists", res.UniqueArtists).
		Int("matched_artists", res.MatchedArtists).
		Int("unmatched_artists", chain.Misses())
	for tier, hits := range res.TierHits {
		ev = ev.Int("tier_"+tier, hits)
	}
	if res.UniqueArtists > 0 {
		ev = ev.Str("artist_match_rate", fmt.Sprintf("%.2f%%", 100*float64(res.MatchedArtists)/float64(res.UniqueArtists)))
	}
	ev.Str("output", opts.Output).Msg("genre join complete")
	return res, nil
}
