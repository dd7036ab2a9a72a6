package writer

import (
	"context"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
	"github.com/google/uuid"
)

// RecordWriter exports the records of one parse run to an external store
type RecordWriter interface {
	// WriteRecords writes all records of a run; runID groups them
	WriteRecords(ctx context.Context, runID uuid.UUID, records []domain.LogRecord) error

	// Close releases the underlying connection
	Close() error
}
