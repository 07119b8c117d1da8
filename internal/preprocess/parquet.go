package preprocess

import (
	"fmt"
	"math"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// parquetBatch is the number of rows per arrow record and row group.
const parquetBatch = 1 << 16

// parquetColumn describes one output column. Integer columns hold label
// codes; the rest are float64 with NaN written as null.
type parquetColumn struct {
	Name    string
	Integer bool
}

func (c parquetColumn) field() arrow.Field {
	if c.Integer {
		return arrow.Field{Name: c.Name, Type: arrow.PrimitiveTypes.Int64}
	}
	return arrow.Field{Name: c.Name, Type: arrow.PrimitiveTypes.Float64, Nullable: true}
}

// writeParquet writes the rows listed in idx, reading cell values through
// value(row, col).
func writeParquet(path string, cols []parquetColumn, idx []int, value func(row, col int) float64) error {
	fields := make([]arrow.Field, len(cols))
	for j, c := range cols {
		fields[j] = c.field()
	}
	schema := arrow.NewSchema(fields, nil)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithCreatedBy("weatherchart"),
	)
	// Closing w also closes f.
	w, err := pqarrow.NewFileWriter(schema, f, props, pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	if err != nil {
		f.Close()
		return fmt.Errorf("parquet writer %s: %w", path, err)
	}

	pool := memory.NewGoAllocator()
	for start := 0; ; start += parquetBatch {
		end := min(start+parquetBatch, len(idx))
		rec := buildRecord(pool, schema, cols, idx[start:end], value)
		err := w.Write(rec)
		rec.Release()
		if err != nil {
			w.Close()
			return fmt.Errorf("parquet write %s: %w", path, err)
		}
		if end >= len(idx) {
			break
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("parquet close %s: %w", path, err)
	}
	return nil
}

func buildRecord(pool memory.Allocator, schema *arrow.Schema, cols []parquetColumn, rows []int, value func(row, col int) float64) arrow.Record {
	arrays := make([]arrow.Array, len(cols))
	for j, c := range cols {
		if c.Integer {
			b := array.NewInt64Builder(pool)
			b.Reserve(len(rows))
			for _, r := range rows {
				b.Append(int64(value(r, j)))
			}
			arrays[j] = b.NewArray()
			b.Release()
			continue
		}
		b := array.NewFloat64Builder(pool)
		b.Reserve(len(rows))
		for _, r := range rows {
			if v := value(r, j); math.IsNaN(v) {
				b.AppendNull()
			} else {
				b.Append(v)
			}
		}
		arrays[j] = b.NewArray()
		b.Release()
	}
	rec := array.NewRecord(schema, arrays, int64(len(rows)))
	for _, a := range arrays {
		a.Release()
	}
	return rec
}
