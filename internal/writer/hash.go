package writer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
)

// calculateRecordHash calculates SHA256 hash of a run summary.
// Hash is computed from the source path and every summary field, so the same
// file parsed twice yields the same hash.
func calculateRecordHash(record *domain.LogRecord) string {
	h := sha256.New()

	fmt.Fprintf(h, "%s|", record.FilePath)
	fmt.Fprintf(h, "%s|", record.FileName)
	fmt.Fprintf(h, "%s|", optionalInt(record.BatchSize))
	fmt.Fprintf(h, "%s|", optionalInt(record.MaxParallel))
	fmt.Fprintf(h, "%s|", record.StartTime)
	fmt.Fprintf(h, "%s|", record.EndTime)
	fmt.Fprintf(h, "%d|", record.DurationMs)
	fmt.Fprintf(h, "%d|", record.BatchStarts)
	fmt.Fprintf(h, "%d|", record.BatchDones)

	return hex.EncodeToString(h.Sum(nil))
}

// optionalInt renders nil distinctly from any number
func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
