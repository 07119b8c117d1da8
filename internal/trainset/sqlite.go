package trainset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"weatherchart/internal/csvio"
)

// ColumnTypes assigns SQL types: month is INTEGER, numerical columns REAL,
// everything else TEXT.
func ColumnTypes(numerical []string) map[string]string {
	types := make(map[string]string, len(numerical))
	for _, c := range numerical {
		types[c] = "REAL"
	}
	types["month"] = "INTEGER"
	return types
}

func columnDefs(cols []string, types map[string]string) []string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		t := types[c]
		if t == "" {
			t = "TEXT"
		}
		defs[i] = fmt.Sprintf("%q %s", c, t)
	}
	return defs
}

// LoadOptions configures LoadSQLite.
type LoadOptions struct {
	CSV      string
	Database string
	Table    string
	Types    map[string]string
	// BatchSize rows are inserted per transaction.
	BatchSize int
}

// LoadSQLite recreates Table in Database and inserts every row of CSV.
// Blank cells become NULL.
func LoadSQLite(ctx context.Context, opts LoadOptions) (int, error) {
	log := zerolog.Ctx(ctx)
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50_000
	}

	r, err := csvio.Open(opts.CSV)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	cols := r.Header()

	if err := os.MkdirAll(filepath.Dir(opts.Database), 0o755); err != nil {
		return 0, err
	}
	db, err := sql.Open("sqlite", opts.Database)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	table := fmt.Sprintf("%q", opts.Table)
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
		return 0, err
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE `+table+` (`+strings.Join(columnDefs(cols, opts.Types), ",")+`)`); err != nil {
		return 0, err
	}

	qCols := make([]string, len(cols))
	for i, c := range cols {
		qCols[i] = fmt.Sprintf("%q", c)
	}
	insert := `INSERT INTO ` + table + ` (` + strings.Join(qCols, ",") + `) VALUES (` +
		strings.TrimRight(strings.Repeat("?,", len(cols)), ",") + `)`

	kinds := make([]string, len(cols))
	for i, c := range cols {
		kinds[i] = opts.Types[c]
	}

	var rows int
	for done := false; !done; {
		n, err := insertBatch(ctx, db, insert, r, kinds, opts.BatchSize)
		rows += n
		if errors.Is(err, io.EOF) {
			done = true
		} else if err != nil {
			return rows, err
		}
	}

	for _, col := range []string{"region", "track_genre"} {
		if _, ok := r.Index(col); !ok {
			continue
		}
		stmt := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %q ON %s(%q)`, "idx_"+opts.Table+"_"+col, table, col)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return rows, err
		}
	}
	log.Info().Int("rows", rows).Str("database", opts.Database).Str("table", opts.Table).Msg("training set loaded into sqlite")
	return rows, nil
}

// insertBatch inserts up to limit rows in one transaction. It returns io.EOF
// once the reader is drained.
func insertBatch(ctx context.Context, db *sql.DB, insert string, r *csvio.Reader, kinds []string, limit int) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	args := make([]any, len(kinds))
	n := 0
	var readErr error
	for n < limit {
		rec, err := r.Read()
		if err != nil {
			readErr = err
			break
		}
		for i, k := range kinds {
			args[i] = sqliteValue(rec[i], k)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			tx.Rollback()
			return 0, err
		}
		n++
	}
	if readErr != nil && !errors.Is(readErr, io.EOF) {
		tx.Rollback()
		return 0, readErr
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, readErr
}

func sqliteValue(v, kind string) any {
	if csvio.IsBlank(v) {
		return nil
	}
	switch kind {
	case "REAL":
		if f, ok := csvio.ParseFloat(v); ok {
			return f
		}
	case "INTEGER":
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return i
		}
	}
	return v
}

// BulkInsertSQL renders the documented SQL Server load of the training file:
// a typed CREATE TABLE followed by BULK INSERT with comma field terminator,
// double-quote field quote and a one-line header skip.
func BulkInsertSQL(table, csvPath string, cols []string, types map[string]string) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		t, ok := sqlServerTypes[types[c]]
		if !ok {
			t = "NVARCHAR(MAX)"
		}
		defs[i] = fmt.Sprintf("    [%s] %s", c, t)
		if i < len(defs)-1 {
			defs[i] += ","
		}
	}
	lines := []string{
		fmt.Sprintf("CREATE TABLE [%s] (", table),
	}
	lines = append(lines, defs...)
	lines = append(lines,
		");",
		"",
		fmt.Sprintf("BULK INSERT [%s]", table),
		fmt.Sprintf("FROM '%s'", strings.ReplaceAll(csvPath, "'", "''")),
		"WITH (",
		"    FORMAT = 'CSV',",
		"    FIRSTROW = 2,",
		"    FIELDTERMINATOR = ',',",
		"    FIELDQUOTE = '\"',",
		"    ROWTERMINATOR = '0x0a',",
		"    CODEPAGE = '65001',",
		"    TABLOCK",
		");",
		"",
	)
	return strings.Join(lines, "\n")
}

var sqlServerTypes = map[string]string{"REAL": "FLOAT", "INTEGER": "INT"}

// WriteBulkInsertSQL writes BulkInsertSQL for the header of csvPath.
func WriteBulkInsertSQL(path, table, csvPath string, types map[string]string) error {
	r, err := csvio.Open(csvPath)
	if err != nil {
		return err
	}
	cols := append([]string(nil), r.Header()...)
	r.Close()

	abs, err := filepath.Abs(csvPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(BulkInsertSQL(table, abs, cols, types)), 0o644)
}
