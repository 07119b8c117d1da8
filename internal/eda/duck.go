package eda

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"weatherchart/internal/stats"
)

type fullCounts struct {
	Column string
	Total  int
	Top    []stats.ValueCount
}

// valueCountsDuckDB counts values of columns over the whole CSV file with an
// in-memory DuckDB, which scans far faster than the sampled frame can.
// Columns absent from header are skipped.
func valueCountsDuckDB(ctx context.Context, path string, columns, header []string, topN int) ([]fullCounts, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open: %w", err)
	}
	defer db.Close()

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	src := fmt.Sprintf("read_csv(%s, header = true, delim = ',', quote = '\"', all_varchar = true)", sqlString(path))

	var out []fullCounts
	for _, col := range columns {
		if !present[col] {
			continue
		}
		fc := fullCounts{Column: col}
		q := fmt.Sprintf(`SELECT count(%[1]s) FROM %[2]s`, sqlIdent(col), src)
		if err := db.QueryRowContext(ctx, q).Scan(&fc.Total); err != nil {
			return nil, fmt.Errorf("count %s: %w", col, err)
		}
		q = fmt.Sprintf(`SELECT %[1]s AS value, count(*) AS n FROM %[2]s
WHERE %[1]s IS NOT NULL AND trim(%[1]s) <> ''
GROUP BY 1 ORDER BY n DESC, value ASC LIMIT %[3]d`, sqlIdent(col), src, topN)
		rows, err := db.QueryContext(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("value counts %s: %w", col, err)
		}
		for rows.Next() {
			var vc stats.ValueCount
			if err := rows.Scan(&vc.Value, &vc.Count); err != nil {
				rows.Close()
				return nil, err
			}
			fc.Top = append(fc.Top, vc)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	return out, nil
}

func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sqlIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
