package summary

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/observability"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// Column names of the summary table, in order
const (
	ColFileName        = "file_name"
	ColBatchSize       = "batch_size"
	ColMaxParallel     = "max_parallel"
	ColStartTime       = "start_time"
	ColEndTime         = "end_time"
	ColDurationSeconds = "duration_seconds"
	ColDurationMs      = "duration_ms"
)

// Header is the fixed header row of the summary table
var Header = []string{
	ColFileName,
	ColBatchSize,
	ColMaxParallel,
	ColStartTime,
	ColEndTime,
	ColDurationSeconds,
	ColDurationMs,
}

// WriteCSV writes records to a comma-separated file at path, creating parent
// directories as needed.
//
// If records is empty nothing is written, a warning is logged and
// domain.ErrEmptyResultSet is returned; callers should treat it as non-fatal.
// Any other error means the output could not be created or written.
func WriteCSV(ctx context.Context, records []domain.LogRecord, path string) (err error) {
	_, span := observability.StartSpan(ctx, "summary.write",
		attribute.String("output_path", path),
		attribute.Int("records", len(records)),
	)
	defer func() {
		observability.EndSpan(span, err)
	}()

	if len(records) == 0 {
		log.Warn().Str("output_path", path).Msg("No records to write, skipping summary table")
		return domain.ErrEmptyResultSet
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	w := csv.NewWriter(file)
	if err := w.Write(Header); err != nil {
		file.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range records {
		if err := w.Write(recordRow(&records[i])); err != nil {
			file.Close()
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush summary table: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	log.Info().
		Str("output_path", path).
		Int("rows", len(records)).
		Msg("Summary table written")

	return nil
}

// recordRow converts a record to a row in Header order
func recordRow(r *domain.LogRecord) []string {
	return []string{
		r.FileName,
		formatOptionalInt(r.BatchSize),
		formatOptionalInt(r.MaxParallel),
		r.StartTime,
		r.EndTime,
		FormatSeconds(r.DurationSeconds),
		strconv.FormatInt(r.DurationMs, 10),
	}
}

// formatOptionalInt renders nil as an empty field
func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// FormatSeconds formats a duration in seconds with the shortest representation
// that round-trips, always keeping a decimal point (2 -> "2.0", 7.25 -> "7.25").
func FormatSeconds(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
