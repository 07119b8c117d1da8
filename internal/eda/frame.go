package eda

import (
	"math"
	"strings"

	"weatherchart/internal/csvio"
)

// Column kinds, named after the pandas dtypes they stand in for.
const (
	kindFloat  = "float64"
	kindInt    = "int64"
	kindObject = "object"
)

type column struct {
	name    string
	kind    string
	nums    []float64
	strs    []string
	nonNull int
}

func (c *column) numeric() bool { return c.kind != kindObject }

// frame is a typed, column-major view of a loaded sample.
type frame struct {
	rows    int
	columns []*column
	byName  map[string]*column
}

func newFrame(t *csvio.Table) *frame {
	f := &frame{rows: t.Len(), byName: make(map[string]*column, len(t.Header))}
	for i, name := range t.Header {
		c := &column{name: name, strs: make([]string, t.Len())}
		for r, row := range t.Rows {
			c.strs[r] = row[i]
		}
		c.kind, c.nums, c.nonNull = infer(c.strs)
		f.columns = append(f.columns, c)
		f.byName[name] = c
	}
	return f
}

// infer reports the narrowest kind every non-blank value fits. An all-blank
// column is float64, as pandas reads it.
func infer(vals []string) (kind string, nums []float64, nonNull int) {
	kind = kindInt
	nums = make([]float64, len(vals))
	for i, v := range vals {
		if csvio.IsBlank(v) {
			nums[i] = math.NaN()
			continue
		}
		nonNull++
		x, ok := csvio.ParseFloat(v)
		if !ok {
			return kindObject, nil, countNonBlank(vals)
		}
		nums[i] = x
		if kind == kindInt && (strings.ContainsAny(v, ".eE") || x != math.Trunc(x)) {
			kind = kindFloat
		}
	}
	if nonNull == 0 || nonNull < len(vals) {
		kind = kindFloat
	}
	return kind, nums, nonNull
}

func countNonBlank(vals []string) int {
	n := 0
	for _, v := range vals {
		if !csvio.IsBlank(v) {
			n++
		}
	}
	return n
}

func (f *frame) numericColumns() []*column {
	var out []*column
	for _, c := range f.columns {
		if c.numeric() {
			out = append(out, c)
		}
	}
	return out
}

func (f *frame) objectColumns() []*column {
	var out []*column
	for _, c := range f.columns {
		if !c.numeric() {
			out = append(out, c)
		}
	}
	return out
}

// finite drops NaN values.
func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}
