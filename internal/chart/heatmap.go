package chart

import (
	"fmt"
	"math"
	"strconv"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/aggregate"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
)

// heatGrid adapts aggregate.Grid to plotter.GridXYZ.
// Cells sit on integer coordinates so both axes are categorical.
type heatGrid struct {
	grid aggregate.Grid
}

func (h heatGrid) Dims() (c, r int) {
	return len(h.grid.BatchSizes), len(h.grid.MaxParallels)
}

func (h heatGrid) Z(c, r int) float64 { return h.grid.Means[r][c] }
func (h heatGrid) X(c int) float64    { return float64(c) }
func (h heatGrid) Y(r int) float64    { return float64(r) }

// Min and Max skip empty (NaN) cells
func (h heatGrid) Min() float64 {
	min, _ := h.grid.Range()
	return min
}

func (h heatGrid) Max() float64 {
	_, max := h.grid.Range()
	return max
}

// RenderHeatmap draws mean duration by max_parallel (rows) and batch size
// (columns). Each cell is annotated with its mean in seconds; empty cells are
// left blank.
func RenderHeatmap(grid aggregate.Grid, path string) error {
	min, max := grid.Range()
	if math.IsNaN(min) {
		return fmt.Errorf("no data to plot")
	}

	hm := plotter.NewHeatMap(heatGrid{grid: grid}, palette.Heat(12, 1))
	if min == max {
		// A flat grid would make the colour scale degenerate
		hm.Max = hm.Min + 1
	}

	p := plot.New()
	p.Title.Text = "Heatmap: mean duration (s) vs batch_size and max_parallel"
	p.X.Label.Text = "Batch size"
	p.Y.Label.Text = "Max parallel (number of curl processes)"
	p.Add(hm)

	p.X.Tick.Marker = categoryTicks(grid.BatchSizes)
	p.Y.Tick.Marker = categoryTicks(grid.MaxParallels)
	p.X.Min, p.X.Max = -0.5, float64(len(grid.BatchSizes))-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(len(grid.MaxParallels))-0.5

	var cells plotter.XYLabels
	for r, row := range grid.Means {
		for c, v := range row {
			if math.IsNaN(v) {
				continue
			}
			cells.XYs = append(cells.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			cells.Labels = append(cells.Labels, strconv.FormatFloat(v, 'f', 2, 64))
		}
	}
	labels, err := plotter.NewLabels(cells)
	if err != nil {
		return fmt.Errorf("failed to build cell labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(labels)

	return save(p, path)
}

// categoryTicks labels integer positions 0..n-1 with the given values
func categoryTicks(values []int) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(values))
	for i, v := range values {
		ticks[i] = plot.Tick{Value: float64(i), Label: strconv.Itoa(v)}
	}
	return ticks
}
