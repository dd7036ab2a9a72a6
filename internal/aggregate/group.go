package aggregate

import (
	"math"
	"sort"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/summary"
	"github.com/aclements/go-moremath/stats"
)

// configKey identifies a (batch_size, max_parallel) group
type configKey struct {
	batchSize   int
	maxParallel int
}

// GroupByConfig computes duration statistics per (batch_size, max_parallel).
// The result is sorted by max_parallel, then batch_size, both ascending.
// StdDev is the sample standard deviation and is NaN for single-run groups.
func GroupByConfig(rows []summary.Row) []domain.GroupStats {
	durations := make(map[configKey][]float64)
	for _, row := range rows {
		key := configKey{batchSize: row.BatchSize, maxParallel: row.MaxParallel}
		durations[key] = append(durations[key], row.DurationSeconds)
	}

	result := make([]domain.GroupStats, 0, len(durations))
	for key, xs := range durations {
		std := math.NaN()
		if len(xs) > 1 {
			std = stats.StdDev(xs)
		}
		result = append(result, domain.GroupStats{
			BatchSize:   key.batchSize,
			MaxParallel: key.maxParallel,
			Mean:        stats.Mean(xs),
			StdDev:      std,
			Count:       len(xs),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].MaxParallel != result[j].MaxParallel {
			return result[i].MaxParallel < result[j].MaxParallel
		}
		return result[i].BatchSize < result[j].BatchSize
	})

	return result
}

// Series is the mean duration of one parallelism level across batch sizes
type Series struct {
	MaxParallel int
	Points      []domain.GroupStats // ascending batch size
}

// SeriesByParallelism splits grouped stats into one series per max_parallel.
// groups must be sorted as returned by GroupByConfig.
func SeriesByParallelism(groups []domain.GroupStats) []Series {
	var series []Series
	for _, g := range groups {
		if len(series) == 0 || series[len(series)-1].MaxParallel != g.MaxParallel {
			series = append(series, Series{MaxParallel: g.MaxParallel})
		}
		last := &series[len(series)-1]
		last.Points = append(last.Points, g)
	}
	return series
}
