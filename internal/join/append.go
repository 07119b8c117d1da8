package join

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"weatherchart/internal/csvio"
)

const ctxCheckEvery = 1 << 16

// RowFunc returns the values appended to one record.
type RowFunc func(rec []string) []string

// Binder inspects the input header and returns the per-row function.
type Binder func(r *csvio.Reader) (RowFunc, error)

// Append streams inPath to outPath, appending columns to every record.
// Row order and count are preserved. It returns the number of rows written.
func Append(ctx context.Context, inPath, outPath string, columns []string, bind Binder) (int, error) {
	r, err := csvio.Open(inPath)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	for _, c := range columns {
		if _, ok := r.Index(c); ok {
			return 0, fmt.Errorf("%s: column %q already present", inPath, c)
		}
	}
	fn, err := bind(r)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", inPath, err)
	}

	header := append(append([]string(nil), r.Header()...), columns...)
	w, err := csvio.Create(outPath, header)
	if err != nil {
		return 0, err
	}

	width := len(r.Header())
	out := make([]string, 0, len(header))
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			w.Close()
			return w.Rows(), fmt.Errorf("%s row %d: %w", inPath, r.Rows()+1, err)
		}
		if r.Rows()%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				w.Close()
				return w.Rows(), err
			}
		}
		vals := fn(rec)
		if len(vals) != len(columns) {
			w.Close()
			return w.Rows(), fmt.Errorf("appended %d values, want %d", len(vals), len(columns))
		}
		out = append(append(out[:0], rec[:width]...), vals...)
		if err := w.Write(out); err != nil {
			w.Close()
			return w.Rows(), err
		}
	}
	return w.Rows(), w.Close()
}

// Stats counts matched rows of a left join and the keys that missed.
type Stats struct {
	Rows      int
	Matched   int
	unmatched map[string]int
}

// Observe records one row.
func (s *Stats) Observe(key string, matched bool) {
	s.Rows++
	if matched {
		s.Matched++
		return
	}
	if s.unmatched == nil {
		s.unmatched = make(map[string]int)
	}
	s.unmatched[key]++
}

// Unmatched returns the missed keys, most frequent first.
func (s *Stats) Unmatched() []KeyCount {
	return SortedCounts(s.unmatched)
}

// Rate is the matched share of rows in percent.
func (s *Stats) Rate() float64 {
	if s.Rows == 0 {
		return 0
	}
	return 100 * float64(s.Matched) / float64(s.Rows)
}

// Log writes a summary and the top unmatched keys.
func (s *Stats) Log(log zerolog.Logger, what string, top int) {
	log.Info().
		Int("rows", s.Rows).
		Int("matched", s.Matched).
		Str("match_rate", fmt.Sprintf("%.2f%%", s.Rate())).
		Msgf("%s join complete", what)
	for i, kc := range s.Unmatched() {
		if i >= top {
			break
		}
		log.Warn().Str("key", kc.Key).Int("rows", kc.Count).Msgf("no %s match", what)
	}
}
