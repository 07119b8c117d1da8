// Package charts reduces the raw chart extract to the columns the pipeline uses.
package charts

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"weatherchart/internal/csvio"
)

// Options configures Filter.
type Options struct {
	Input   string
	Output  string
	Columns []string
}

// Filter streams Input to Output keeping only Columns, in that order.
func Filter(ctx context.Context, opts Options) (int, error) {
	log := zerolog.Ctx(ctx)

	r, err := csvio.Open(opts.Input)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	idx, err := r.Require(opts.Columns...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", opts.Input, err)
	}
	w, err := csvio.Create(opts.Output, opts.Columns)
	if err != nil {
		return 0, err
	}

	out := make([]string, len(idx))
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			w.Close()
			return w.Rows(), fmt.Errorf("%s row %d: %w", opts.Input, r.Rows()+1, err)
		}
		for i, j := range idx {
			out[i] = rec[j]
		}
		if err := w.Write(out); err != nil {
			w.Close()
			return w.Rows(), err
		}
		if n := w.Rows(); n%1_000_000 == 0 {
			if err := ctx.Err(); err != nil {
				w.Close()
				return n, err
			}
			log.Debug().Int("rows", n).Msg("filtering")
		}
	}
	if err := w.Close(); err != nil {
		return w.Rows(), err
	}
	log.Info().
		Int("rows", w.Rows()).
		Int("columns_in", len(r.Header())).
		Int("columns_out", len(opts.Columns)).
		Str("output", opts.Output).
		Msg("charts filtered")
	return w.Rows(), nil
}
