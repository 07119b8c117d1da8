package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDescribeMatchesPandas(t *testing.T) {
	// pandas: pd.Series([1, 2, 3, 4, None]).describe()
	s := Describe([]float64{4, 2, math.NaN(), 1, 3})
	if s.Count != 4 {
		t.Fatalf("count = %d", s.Count)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"mean", s.Mean, 2.5},
		{"std", s.Std, 1.2909944487358056},
		{"min", s.Min, 1},
		{"25%", s.Q25, 1.75},
		{"50%", s.Q50, 2.5},
		{"75%", s.Q75, 3.25},
		{"max", s.Max, 4},
	}
	for _, c := range checks {
		if !almostEqual(c.got, c.want) {
			t.Fatalf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestDescribeEmptyAndSingle(t *testing.T) {
	if s := Describe(nil); s.Count != 0 || !math.IsNaN(s.Mean) {
		t.Fatalf("empty = %+v", s)
	}
	s := Describe([]float64{7})
	if s.Mean != 7 || !math.IsNaN(s.Std) || s.Q75 != 7 {
		t.Fatalf("single = %+v", s)
	}
}

func TestCorrelationSkipsNaN(t *testing.T) {
	x := []float64{1, 2, 3, math.NaN(), 4}
	y := []float64{2, 4, 6, 100, 8}
	if c := Correlation(x, y); !almostEqual(c, 1) {
		t.Fatalf("corr = %v, want 1", c)
	}
}

func TestCountsTop(t *testing.T) {
	var c Counts
	for _, v := range []string{"pop", "latin", "pop", "rock", "latin", "pop"} {
		c.Add(v)
	}
	top := c.Top(2)
	if len(top) != 2 || top[0].Value != "pop" || top[0].Count != 3 || top[1].Value != "latin" {
		t.Fatalf("top = %v", top)
	}
	if c.Unique() != 3 || c.Total != 6 || c.Get("rock") != 1 {
		t.Fatalf("counts = %+v", c)
	}
}
