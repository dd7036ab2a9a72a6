package domain

// LogRecord is the summary of one parsed run log.
// StartTime is the earliest [Batch START] by value, EndTime is the last
// [Batch DONE] by occurrence. DurationSeconds is EndTime - StartTime and is not
// corrected for runs that cross midnight.
type LogRecord struct {
	FileName        string  `json:"file_name"`
	BatchSize       *int    `json:"batch_size,omitempty"`
	MaxParallel     *int    `json:"max_parallel,omitempty"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	DurationSeconds float64 `json:"duration_seconds"`
	DurationMs      int64   `json:"duration_ms"`

	// Not part of the summary table
	FilePath    string `json:"file_path"`
	BatchStarts int    `json:"batch_starts"`
	BatchDones  int    `json:"batch_dones"`
}

// Config returns the run configuration carried by the record
func (r *LogRecord) Config() RunConfig {
	return RunConfig{BatchSize: r.BatchSize, MaxParallel: r.MaxParallel}
}

// CorpusResult is the outcome of walking a log directory.
// Both slices are in traversal order.
type CorpusResult struct {
	Records  []LogRecord
	Failures []string // Paths that produced no record
}
