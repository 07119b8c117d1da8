// Package genres aggregates the per-track genre table into one row per artist.
package genres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"weatherchart/internal/csvio"
)

// Options configures Aggregate.
type Options struct {
	Input  string
	Output string
	// ArtistColumn holds one or more artists joined by Separator.
	ArtistColumn string
	GenreColumn  string
	Separator    string
	// Features are averaged per artist.
	Features []string
}

type artistAgg struct {
	genres []string
	seen   map[string]struct{}
	sums   []float64
	counts []int
}

func (a *artistAgg) addGenre(g string) {
	if _, ok := a.seen[g]; ok {
		return
	}
	a.seen[g] = struct{}{}
	a.genres = append(a.genres, g)
}

// Aggregate explodes multi-artist rows, groups by artist and writes the
// unique genre list plus the mean of every feature, sorted by artist.
func Aggregate(ctx context.Context, opts Options) (int, error) {
	log := zerolog.Ctx(ctx)

	r, err := csvio.Open(opts.Input)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	idx, err := r.Require(append([]string{opts.ArtistColumn, opts.GenreColumn}, opts.Features...)...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", opts.Input, err)
	}
	artistIdx, genreIdx, featIdx := idx[0], idx[1], idx[2:]

	byArtist := make(map[string]*artistAgg)
	var exploded, skipped int
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%s row %d: %w", opts.Input, r.Rows()+1, err)
		}
		if csvio.IsBlank(rec[artistIdx]) {
			skipped++
			continue
		}
		genre := strings.TrimSpace(rec[genreIdx])
		for _, name := range strings.Split(rec[artistIdx], opts.Separator) {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			exploded++
			a, ok := byArtist[name]
			if !ok {
				a = &artistAgg{
					seen:   make(map[string]struct{}),
					sums:   make([]float64, len(featIdx)),
					counts: make([]int, len(featIdx)),
				}
				byArtist[name] = a
			}
			if genre != "" {
				a.addGenre(genre)
			}
			for i, j := range featIdx {
				if v, ok := csvio.ParseFloat(rec[j]); ok {
					a.sums[i] += v
					a.counts[i]++
				}
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	names := make([]string, 0, len(byArtist))
	for name := range byArtist {
		names = append(names, name)
	}
	sort.Strings(names)

	header := append([]string{"artist", opts.GenreColumn}, opts.Features...)
	w, err := csvio.Create(opts.Output, header)
	if err != nil {
		return 0, err
	}
	row := make([]string, len(header))
	for _, name := range names {
		a := byArtist[name]
		row[0] = name
		row[1] = FormatList(a.genres)
		for i := range featIdx {
			m := math.NaN()
			if a.counts[i] > 0 {
				m = a.sums[i] / float64(a.counts[i])
			}
			row[2+i] = csvio.FormatFloat(m)
		}
		if err := w.Write(row); err != nil {
			w.Close()
			return 0, err
		}
	}
	if err := w.Close(); err != nil {
		return 0, err
	}

	log.Info().
		Int("tracks", r.Rows()).
		Int("skipped_blank_artist", skipped).
		Int("exploded", exploded).
		Int("artists", len(names)).
		Str("output", opts.Output).
		Msg("artist genres aggregated")
	return len(names), nil
}
