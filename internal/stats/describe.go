// Package stats holds the column summaries shared by the quality and EDA
// reports.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary mirrors a pandas describe() row for a numeric column.
type Summary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// Describe summarizes xs, ignoring NaN. Std is the sample standard
// deviation; quantiles interpolate linearly between order statistics.
func Describe(xs []float64) Summary {
	vals := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			vals = append(vals, x)
		}
	}
	s := Summary{Count: len(vals)}
	if len(vals) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	sort.Float64s(vals)
	s.Mean = stat.Mean(vals, nil)
	s.Std = math.NaN()
	if len(vals) > 1 {
		s.Std = stat.StdDev(vals, nil)
	}
	s.Min = floats.Min(vals)
	s.Max = floats.Max(vals)
	s.Q25 = Quantile(vals, 0.25)
	s.Q50 = Quantile(vals, 0.5)
	s.Q75 = Quantile(vals, 0.75)
	return s
}

// Quantile returns the p-quantile of sorted using the (n-1)p rank with
// linear interpolation, which is what pandas and numpy default to.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Lines renders s as "name  value" rows.
func (s Summary) Lines() []string {
	return []string{
		fmt.Sprintf("count  %d", s.Count),
		fmt.Sprintf("mean   %s", g(s.Mean)),
		fmt.Sprintf("std    %s", g(s.Std)),
		fmt.Sprintf("min    %s", g(s.Min)),
		fmt.Sprintf("25%%    %s", g(s.Q25)),
		fmt.Sprintf("50%%    %s", g(s.Q50)),
		fmt.Sprintf("75%%    %s", g(s.Q75)),
		fmt.Sprintf("max    %s", g(s.Max)),
	}
}

func (s Summary) String() string { return strings.Join(s.Lines(), "\n") }

func g(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.6g", v)
}

// Correlation returns the Pearson correlation of x and y over rows where
// both are non-NaN.
func Correlation(x, y []float64) float64 {
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// Counts tallies non-blank values.
type Counts struct {
	Total int
	byKey map[string]int
}

// Add counts one value.
func (c *Counts) Add(v string) {
	if c.byKey == nil {
		c.byKey = make(map[string]int)
	}
	c.Total++
	c.byKey[v]++
}

// Unique is the number of distinct values.
func (c *Counts) Unique() int { return len(c.byKey) }

// Get returns the count of v.
func (c *Counts) Get(v string) int { return c.byKey[v] }

// Top returns up to n values by count descending, ties by value ascending.
func (c *Counts) Top(n int) []ValueCount {
	out := make([]ValueCount, 0, len(c.byKey))
	for k, v := range c.byKey {
		out = append(out, ValueCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ValueCount is one row of a value_counts listing.
type ValueCount struct {
	Value string
	Count int
}
