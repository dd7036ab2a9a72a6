package domain

// GroupStats holds the duration statistics of all runs sharing a configuration
type GroupStats struct {
	BatchSize   int
	MaxParallel int
	Mean        float64 // seconds
	StdDev      float64 // sample standard deviation, NaN when Count < 2
	Count       int
}
