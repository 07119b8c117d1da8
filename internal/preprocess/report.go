package preprocess

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// report accumulates the plain-text run summary.
type report struct {
	strings.Builder
}

func (r *report) line(s string) {
	r.WriteString(s)
	r.WriteByte('\n')
}

func (r *report) printf(format string, args ...any) {
	r.line(fmt.Sprintf(format, args...))
}

func (r *report) rule(ch string) { r.line(strings.Repeat(ch, 60)) }

func (r *report) section(name string) {
	r.line("")
	r.line("[" + name + "]")
}

// stratification compares class shares of the most common training classes.
func (r *report) stratification(y, train, test []int, target *LabelEncoder, top int) {
	tr := make(map[int]int)
	te := make(map[int]int)
	for _, k := range train {
		tr[y[k]]++
	}
	for _, k := range test {
		te[y[k]]++
	}
	classes := make([]int, 0, len(tr))
	for c := range tr {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool {
		if tr[classes[i]] != tr[classes[j]] {
			return tr[classes[i]] > tr[classes[j]]
		}
		return classes[i] < classes[j]
	})
	r.printf("  %-25s %10s %10s", "Class", "Train %", "Test %")
	for i, c := range classes {
		if i == top {
			break
		}
		name, _ := target.Inverse(c)
		r.printf("  %-25s %9.2f%% %9.2f%%", name,
			100*float64(tr[c])/float64(len(train)),
			100*float64(te[c])/float64(len(test)))
	}
}

// scaled reports mean and sample std of the first scaled training columns.
func (r *report) scaled(x [][]float64, train []int, features []string, numPos []int, top int) {
	r.printf("  %-25s %10s %10s", "Feature", "Mean", "Std")
	col := make([]float64, 0, len(train))
	for i, j := range numPos {
		if i == top {
			r.line("  ...")
			break
		}
		col = col[:0]
		for _, k := range train {
			if v := x[k][j]; !math.IsNaN(v) {
				col = append(col, v)
			}
		}
		mean, std := math.NaN(), math.NaN()
		if len(col) > 1 {
			mean, std = stat.MeanStdDev(col, nil)
		}
		r.printf("  %-25s %10.4f %10.4f", features[j], mean, std)
	}
}
