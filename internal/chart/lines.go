package chart

import (
	"fmt"
	"math"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/aggregate"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
)

// errorPoints pairs the series points with their std-dev error bars
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// RenderDurationLines draws mean duration against batch size, one line per
// max_parallel level, with standard deviation error bars.
// Single-run groups get no error bar.
func RenderDurationLines(groups []domain.GroupStats, path string) error {
	if len(groups) == 0 {
		return fmt.Errorf("no data to plot")
	}

	p := plot.New()
	p.Title.Text = "Duration vs Batch Size for different levels of parallelism"
	p.X.Label.Text = "Batch size"
	p.Y.Label.Text = "Total download duration (s)"
	p.Add(plotter.NewGrid())

	for i, s := range aggregate.SeriesByParallelism(groups) {
		pts := make(plotter.XYs, len(s.Points))
		errs := make(plotter.YErrors, len(s.Points))
		for j, g := range s.Points {
			pts[j].X = float64(g.BatchSize)
			pts[j].Y = g.Mean
			if !math.IsNaN(g.StdDev) {
				errs[j].Low = g.StdDev
				errs[j].High = g.StdDev
			}
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("failed to build series max_parallel=%d: %w", s.MaxParallel, err)
		}
		bars, err := plotter.NewYErrorBars(errorPoints{XYs: pts, YErrors: errs})
		if err != nil {
			return fmt.Errorf("failed to build error bars max_parallel=%d: %w", s.MaxParallel, err)
		}

		clr := plotutil.Color(i)
		line.Color = clr
		points.Color = clr
		points.Shape = plotutil.Shape(i)
		bars.Color = clr

		p.Add(line, points, bars)
		p.Legend.Add(fmt.Sprintf("max_parallel = %d", s.MaxParallel), line, points)
	}
	p.Legend.Top = true

	return save(p, path)
}
