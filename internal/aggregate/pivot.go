package aggregate

import (
	"math"
	"sort"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
)

// Grid is a mean-duration matrix: rows are max_parallel values, columns are
// batch sizes, both ascending. Missing combinations are NaN.
type Grid struct {
	BatchSizes   []int
	MaxParallels []int
	Means        [][]float64 // [row][column]
}

// Pivot arranges grouped stats into a Grid
func Pivot(groups []domain.GroupStats) Grid {
	batchSizes := distinct(groups, func(g domain.GroupStats) int { return g.BatchSize })
	maxParallels := distinct(groups, func(g domain.GroupStats) int { return g.MaxParallel })

	batchIndex := indexOf(batchSizes)
	parallelIndex := indexOf(maxParallels)

	means := make([][]float64, len(maxParallels))
	for r := range means {
		means[r] = make([]float64, len(batchSizes))
		for c := range means[r] {
			means[r][c] = math.NaN()
		}
	}
	for _, g := range groups {
		means[parallelIndex[g.MaxParallel]][batchIndex[g.BatchSize]] = g.Mean
	}

	return Grid{
		BatchSizes:   batchSizes,
		MaxParallels: maxParallels,
		Means:        means,
	}
}

// Range returns the smallest and largest defined mean.
// Both are NaN if the grid has no defined cell.
func (g Grid) Range() (min, max float64) {
	min, max = math.NaN(), math.NaN()
	for _, row := range g.Means {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			if math.IsNaN(min) || v < min {
				min = v
			}
			if math.IsNaN(max) || v > max {
				max = v
			}
		}
	}
	return min, max
}

// distinct returns the sorted distinct values of key over groups
func distinct(groups []domain.GroupStats, key func(domain.GroupStats) int) []int {
	seen := make(map[int]bool)
	var values []int
	for _, g := range groups {
		v := key(g)
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	sort.Ints(values)
	return values
}

func indexOf(values []int) map[int]int {
	index := make(map[int]int, len(values))
	for i, v := range values {
		index[v] = i
	}
	return index
}
