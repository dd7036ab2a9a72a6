package service

import (
	"fmt"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/aggregate"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/chart"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/config"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/summary"
	"github.com/rs/zerolog/log"
)

// Analysis is the grouped view of a summary table
type Analysis struct {
	Rows   int // Rows left after coercion and filtering
	Groups []domain.GroupStats
	Grid   aggregate.Grid
}

// Analyze reads the summary table at cfg.OutputPath, applies cfg.Filter and
// groups the remaining rows by configuration
func Analyze(cfg *config.Config) (*Analysis, error) {
	filter, err := aggregate.NewFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}

	rows, err := summary.ReadCSV(cfg.OutputPath)
	if err != nil {
		return nil, err
	}

	rows, err = filter.Apply(rows)
	if err != nil {
		return nil, err
	}
	if cfg.Filter != "" {
		log.Info().Str("filter", cfg.Filter).Int("rows", len(rows)).Msg("Filter applied")
	}

	groups := aggregate.GroupByConfig(rows)
	return &Analysis{
		Rows:   len(rows),
		Groups: groups,
		Grid:   aggregate.Pivot(groups),
	}, nil
}

// RenderCharts draws the line plot and the heatmap to the configured paths.
// An empty path skips that chart. An analysis without groups yields
// domain.ErrEmptyResultSet.
func RenderCharts(cfg *config.Config, a *Analysis) error {
	if len(a.Groups) == 0 {
		log.Warn().Msg("No valid rows to plot")
		return domain.ErrEmptyResultSet
	}

	if cfg.LinePlotPath != "" {
		if err := chart.RenderDurationLines(a.Groups, cfg.LinePlotPath); err != nil {
			return fmt.Errorf("failed to render line plot: %w", err)
		}
	}
	if cfg.HeatmapPath != "" {
		if err := chart.RenderHeatmap(a.Grid, cfg.HeatmapPath); err != nil {
			return fmt.Errorf("failed to render heatmap: %w", err)
		}
	}

	return nil
}
