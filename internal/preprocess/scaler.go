package preprocess

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers each feature on its training mean and divides by
// its population standard deviation. A zero deviation scales by 1.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// FitStandardScaler learns per-column parameters from rows, ignoring NaN.
func FitStandardScaler(rows [][]float64, width int) *StandardScaler {
	s := &StandardScaler{mean: make([]float64, width), scale: make([]float64, width)}
	col := make([]float64, 0, len(rows))
	for j := 0; j < width; j++ {
		col = col[:0]
		for _, r := range rows {
			if !math.IsNaN(r[j]) {
				col = append(col, r[j])
			}
		}
		s.mean[j], s.scale[j] = 0, 1
		if len(col) == 0 {
			continue
		}
		mean, variance := stat.PopMeanVariance(col, nil)
		s.mean[j] = mean
		if sd := math.Sqrt(variance); sd > 0 {
			s.scale[j] = sd
		}
	}
	return s
}

func newStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("scaler has %d means and %d scales", len(mean), len(scale))
	}
	for i, v := range scale {
		if v == 0 || math.IsNaN(v) {
			return nil, fmt.Errorf("scaler scale[%d] = %v", i, v)
		}
	}
	return &StandardScaler{mean: mean, scale: scale}, nil
}

// Width is the number of features.
func (s *StandardScaler) Width() int { return len(s.mean) }

// Mean returns a copy of the fitted means.
func (s *StandardScaler) Mean() []float64 { return append([]float64(nil), s.mean...) }

// Scale returns a copy of the fitted scales.
func (s *StandardScaler) Scale() []float64 { return append([]float64(nil), s.scale...) }

// Transform scales row in place. NaN stays NaN.
func (s *StandardScaler) Transform(row []float64) {
	for j := range s.mean {
		row[j] = (row[j] - s.mean[j]) / s.scale[j]
	}
}
