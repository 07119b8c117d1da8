package eda

import (
	"fmt"
	"math"
	"strings"

	"weatherchart/internal/csvio"
	"weatherchart/internal/stats"
)

func buildReport(f *frame, topN int, full []fullCounts) string {
	lines := []string{
		"EDA Report",
		"==========",
		"",
		fmt.Sprintf("Shape of sample: (%d, %d)", f.rows, len(f.columns)),
		"",
		"--- Data Types & Missing Values ---",
		fmt.Sprintf("%-4s %-24s %14s %10s %10s", "#", "Column", "Non-Null", "Missing", "Dtype"),
	}
	for i, c := range f.columns {
		lines = append(lines, fmt.Sprintf("%-4d %-24s %14s %10s %10s",
			i, c.name, csvio.FormatInt(c.nonNull), csvio.FormatInt(f.rows-c.nonNull), c.kind))
	}
	lines = append(lines, "")

	nums := f.numericColumns()
	lines = append(lines, "--- Numerical Statistics ---",
		fmt.Sprintf("%-24s %10s %12s %12s %12s %12s %12s %12s %12s",
			"", "count", "mean", "std", "min", "25%", "50%", "75%", "max"))
	for _, c := range nums {
		s := stats.Describe(c.nums)
		lines = append(lines, fmt.Sprintf("%-24s %10d %12s %12s %12s %12s %12s %12s %12s",
			c.name, s.Count, g(s.Mean), g(s.Std), g(s.Min), g(s.Q25), g(s.Q50), g(s.Q75), g(s.Max)))
	}
	lines = append(lines, "")

	lines = append(lines, "--- Categorical Statistics ---",
		fmt.Sprintf("%-24s %10s %8s %-32s %10s", "", "count", "unique", "top", "freq"))
	for _, c := range f.objectColumns() {
		cnt := counts(c)
		top := cnt.Top(1)
		var topVal string
		var freq int
		if len(top) > 0 {
			topVal, freq = top[0].Value, top[0].Count
		}
		lines = append(lines, fmt.Sprintf("%-24s %10d %8d %-32s %10d",
			c.name, cnt.Total, cnt.Unique(), clip(topVal, 32), freq))
	}
	lines = append(lines, "")

	lines = append(lines, "--- Correlation Matrix (Pearson) ---")
	header := fmt.Sprintf("%-24s", "")
	for _, c := range nums {
		header += fmt.Sprintf(" %8s", clip(c.name, 8))
	}
	lines = append(lines, header)
	corr := correlationMatrix(nums)
	for i, c := range nums {
		row := fmt.Sprintf("%-24s", c.name)
		for j := range nums {
			row += fmt.Sprintf(" %8s", fixed2(corr[i][j]))
		}
		lines = append(lines, row)
	}
	lines = append(lines, "")

	for _, col := range []struct{ name, title string }{
		{"region", "Countries (by Data Volume)"},
		{"track_genre", "Genres"},
	} {
		c, ok := f.byName[col.name]
		if !ok {
			continue
		}
		cnt := counts(c)
		lines = append(lines, fmt.Sprintf("--- Top %d %s ---", topN, col.title))
		lines = append(lines, valueCountLines(cnt.Top(topN))...)
		lines = append(lines, "")
	}

	for _, fc := range full {
		lines = append(lines, fmt.Sprintf("--- Top %d %s (full file, %s rows) ---", topN, fc.Column, csvio.FormatInt(fc.Total)))
		lines = append(lines, valueCountLines(fc.Top)...)
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func counts(c *column) *stats.Counts {
	var cnt stats.Counts
	for _, v := range c.strs {
		if !csvio.IsBlank(v) {
			cnt.Add(v)
		}
	}
	return &cnt
}

func valueCountLines(vcs []stats.ValueCount) []string {
	out := make([]string, 0, len(vcs))
	for _, vc := range vcs {
		out = append(out, fmt.Sprintf("%-40s %12s", clip(vc.Value, 40), csvio.FormatInt(vc.Count)))
	}
	return out
}

func correlationMatrix(cols []*column) [][]float64 {
	m := make([][]float64, len(cols))
	for i := range cols {
		m[i] = make([]float64, len(cols))
		for j := range cols {
			switch {
			case j < i:
				m[i][j] = m[j][i]
			default:
				m[i][j] = stats.Correlation(cols[i].nums, cols[j].nums)
			}
		}
	}
	return m
}

func g(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.6g", v)
}

func fixed2(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
