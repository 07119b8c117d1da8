package csvio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Writer writes records pandas-style.
type Writer struct {
	bw     *bufio.Writer
	closer io.Closer
	rows   int
}

// Create creates path (and its directory) and writes header.
func Create(path string, header []string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f, header)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// NewWriter writes header to dst.
func NewWriter(dst io.Writer, header []string) (*Writer, error) {
	w := &Writer{bw: bufio.NewWriterSize(dst, 1<<20)}
	if err := writeRecord(w.bw, header); err != nil {
		return nil, err
	}
	return w, nil
}

// Write writes one data record.
func (w *Writer) Write(rec []string) error {
	w.rows++
	return writeRecord(w.bw, rec)
}

// Rows reports how many data records were written.
func (w *Writer) Rows() int { return w.rows }

// Close flushes and closes the file.
func (w *Writer) Close() error {
	err := w.bw.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// WriteTable writes t to path.
func WriteTable(path string, t *Table) error {
	w, err := Create(path, t.Header)
	if err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

func writeRecord(w io.Writer, rec []string) error {
	for i, field := range rec {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if needsQuote(field) {
			if _, err := io.WriteString(w, `"`+strings.ReplaceAll(field, `"`, `""`)+`"`); err != nil {
				return err
			}
			continue
		}
		if _, err := io.WriteString(w, field); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func needsQuote(s string) bool {
	return strings.ContainsAny(s, ",\"\n\r")
}
