package eda

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const maxScatterPoints = 20_000

// writePlots renders every chart whose columns are present and returns the
// written paths.
func writePlots(f *frame, dir string, audio []string, topN int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var written []string
	save := func(p *plot.Plot, w, h vg.Length, name string) error {
		path := filepath.Join(dir, name)
		if err := p.Save(w, h, path); err != nil {
			return fmt.Errorf("save %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	var present []*column
	for _, name := range audio {
		if c, ok := f.byName[name]; ok && c.numeric() {
			present = append(present, c)
		}
	}

	for _, c := range present {
		vals := finite(c.nums)
		if len(vals) == 0 {
			continue
		}
		p := plot.New()
		p.Title.Text = "Distribution of " + c.name
		p.X.Label.Text = c.name
		p.Y.Label.Text = "Count"
		h, err := plotter.NewHist(plotter.Values(vals), 30)
		if err != nil {
			return written, err
		}
		p.Add(h)
		if err := save(p, 6*vg.Inch, 4*vg.Inch, "dist_"+c.name+".png"); err != nil {
			return written, err
		}
	}

	if len(present) > 0 {
		p := plot.New()
		p.Title.Text = "Audio Features Boxplots (Normalized)"
		var names []string
		for _, c := range present {
			vals := minMax(finite(c.nums))
			if len(vals) == 0 {
				continue
			}
			b, err := plotter.NewBoxPlot(vg.Points(20), float64(len(names)), plotter.Values(vals))
			if err != nil {
				return written, err
			}
			p.Add(b)
			names = append(names, c.name)
		}
		if len(names) > 0 {
			p.NominalX(names...)
			if err := save(p, 10*vg.Inch, 5*vg.Inch, "boxplot_audio_features.png"); err != nil {
				return written, err
			}
		}
	}

	if nums := f.numericColumns(); len(nums) > 1 {
		p := plot.New()
		p.Title.Text = "Feature Correlation Matrix"
		grid := corrGrid{m: correlationMatrix(nums)}
		cm := moreland.SmoothBlueRed()
		cm.SetMin(-1)
		cm.SetMax(1)
		hm := plotter.NewHeatMap(grid, cm.Palette(255))
		hm.Min, hm.Max = -1, 1
		p.Add(hm)
		names := make([]string, len(nums))
		for i, c := range nums {
			names[i] = c.name
		}
		p.NominalX(names...)
		p.NominalY(names...)
		p.X.Tick.Label.Rotation = math.Pi / 4
		if err := save(p, 10*vg.Inch, 10*vg.Inch, "correlation_matrix.png"); err != nil {
			return written, err
		}
	}

	lat, okLat := f.byName["latitude"]
	lon, okLon := f.byName["longitude"]
	temp, okTemp := f.byName["avg_temp"]
	if okLat && okLon && okTemp && lat.numeric() && lon.numeric() && temp.numeric() {
		var xys plotter.XYs
		var ts []float64
		step := 1
		if f.rows > maxScatterPoints {
			step = f.rows / maxScatterPoints
		}
		for i := 0; i < f.rows; i += step {
			if math.IsNaN(lat.nums[i]) || math.IsNaN(lon.nums[i]) || math.IsNaN(temp.nums[i]) {
				continue
			}
			xys = append(xys, plotter.XY{X: lon.nums[i], Y: lat.nums[i]})
			ts = append(ts, temp.nums[i])
		}
		if len(xys) > 0 {
			p := plot.New()
			p.Title.Text = "Global Data Distribution (Colored by Avg Temp)"
			p.X.Label.Text = "Longitude"
			p.Y.Label.Text = "Latitude"
			p.Add(plotter.NewGrid())
			s, err := plotter.NewScatter(xys)
			if err != nil {
				return written, err
			}
			cm := moreland.SmoothBlueRed()
			lo, hi := floats.Min(ts), floats.Max(ts)
			if lo == hi {
				hi = lo + 1
			}
			cm.SetMin(lo)
			cm.SetMax(hi)
			s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
				gs := s.GlyphStyle
				gs.Shape = draw.CircleGlyph{}
				gs.Radius = vg.Points(2)
				if c, err := cm.At(ts[i]); err == nil {
					gs.Color = c
				}
				return gs
			}
			p.Add(s)
			if err := save(p, 10*vg.Inch, 6*vg.Inch, "geo_scatter_temp.png"); err != nil {
				return written, err
			}
		}
	}

	if c, ok := f.byName["track_genre"]; ok {
		top := counts(c).Top(topN)
		if len(top) > 0 {
			// Horizontal bars draw bottom-up; reverse so the largest is on top.
			vals := make(plotter.Values, len(top))
			names := make([]string, len(top))
			for i, vc := range top {
				vals[len(top)-1-i] = float64(vc.Count)
				names[len(top)-1-i] = clip(vc.Value, 30)
			}
			p := plot.New()
			p.Title.Text = fmt.Sprintf("Top %d Genres Frequency", len(top))
			p.X.Label.Text = "Number of Songs"
			bars, err := plotter.NewBarChart(vals, vg.Points(12))
			if err != nil {
				return written, err
			}
			bars.Horizontal = true
			p.Add(bars)
			p.NominalY(names...)
			if err := save(p, 8*vg.Inch, 8*vg.Inch, "top_genres_bar.png"); err != nil {
				return written, err
			}
		}
	}

	cont, okCont := f.byName["continent"]
	energy, okEnergy := f.byName["energy"]
	if okCont && okEnergy && energy.numeric() {
		groups := make(map[string][]float64)
		for i, k := range cont.strs {
			if k == "" || math.IsNaN(energy.nums[i]) {
				continue
			}
			groups[k] = append(groups[k], energy.nums[i])
		}
		keys := make([]string, 0, len(groups))
		for k := range groups {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > 0 {
			p := plot.New()
			p.Title.Text = "Energy Distribution by Continent"
			p.Y.Label.Text = "energy"
			for i, k := range keys {
				b, err := plotter.NewBoxPlot(vg.Points(30), float64(i), plotter.Values(groups[k]))
				if err != nil {
					return written, err
				}
				p.Add(b)
			}
			p.NominalX(keys...)
			if err := save(p, 8*vg.Inch, 5*vg.Inch, "box_energy_continent.png"); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// minMax rescales xs to [0, 1]. A constant column maps to zeros.
func minMax(xs []float64) []float64 {
	if len(xs) == 0 {
		return xs
	}
	lo, hi := floats.Min(xs), floats.Max(xs)
	out := make([]float64, len(xs))
	for i, x := range xs {
		if hi > lo {
			out[i] = (x - lo) / (hi - lo)
		}
	}
	return out
}

// corrGrid adapts a square matrix to plotter.GridXYZ.
type corrGrid struct{ m [][]float64 }

func (g corrGrid) Dims() (c, r int)   { return len(g.m), len(g.m) }
func (g corrGrid) Z(c, r int) float64 { return g.m[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }
