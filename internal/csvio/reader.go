// Package csvio reads and writes the delimited files exchanged between stages.
//
// Files are read as UTF-8 (BOM tolerated) or through a single-byte charset
// decoder, and written the way pandas' to_csv writes them: minimal quoting,
// "\n" line endings, blank cells for missing values.
package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing column")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type options struct {
	encoding   string
	trimHeader bool
}

// Option configures a Reader.
type Option func(*options)

// WithEncoding decodes the input from a single-byte charset:
// "windows-1252" or "iso-8859-1". "utf-8" and "" leave it untouched.
func WithEncoding(name string) Option {
	return func(o *options) { o.encoding = name }
}

// WithTrimmedHeader strips surrounding whitespace from header names.
func WithTrimmedHeader() Option {
	return func(o *options) { o.trimHeader = true }
}

// Reader streams records from a headered CSV file.
type Reader struct {
	r      *csv.Reader
	closer io.Closer
	header []string
	index  map[string]int
	rows   int
}

// Open opens path and reads its header.
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f, opts...)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closer = f
	return r, nil
}

// NewReader reads the header from src.
func NewReader(src io.Reader, opts ...Option) (*Reader, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	in, err := decoded(src, o.encoding)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReaderSize(in, 1<<20)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file, no header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if o.trimHeader {
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	return &Reader{r: cr, header: header, index: index}, nil
}

func decoded(src io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return src, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(src), nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(src), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// Header returns the header row. Callers must not modify it.
func (r *Reader) Header() []string { return r.header }

// Index returns the position of col in the header.
func (r *Reader) Index(col string) (int, bool) {
	i, ok := r.index[col]
	return i, ok
}

// Require returns the positions of cols, or ErrMissingColumn naming every
// absent column.
func (r *Reader) Require(cols ...string) ([]int, error) {
	return requireColumns(r.index, cols)
}

// Read returns the next record padded to the header width, or io.EOF.
func (r *Reader) Read() ([]string, error) {
	rec, err := r.r.Read()
	if err != nil {
		return nil, err
	}
	r.rows++
	if len(rec) < len(r.header) {
		padded := make([]string, len(r.header))
		copy(padded, rec)
		rec = padded
	}
	for i, v := range rec {
		if strings.IndexByte(v, '\r') >= 0 {
			rec[i] = normalizeNewlines(v)
		}
	}
	return rec, nil
}

// Rows reports how many data records have been read so far.
func (r *Reader) Rows() int { return r.rows }

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func requireColumns(index map[string]int, cols []string) ([]int, error) {
	out := make([]int, len(cols))
	var missing []string
	for i, c := range cols {
		idx, ok := index[c]
		if !ok {
			missing = append(missing, c)
			continue
		}
		out[i] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return out, nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
