package writer

import (
	"context"
	"fmt"
	"time"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/clickhouse"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/observability"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/retry"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// TableName is the ClickHouse table holding exported run summaries
const TableName = "batch_run_summaries"

// createTableQuery creates the export table.
// ReplacingMergeTree on record_hash collapses re-exports of the same file.
const createTableQuery = `CREATE TABLE IF NOT EXISTS ` + TableName + ` (
	exported_at      DateTime64(3),
	run_id           UUID,
	record_hash      String,
	file_path        String,
	file_name        String,
	batch_size       Nullable(Int32),
	max_parallel     Nullable(Int32),
	start_time       String,
	end_time         String,
	duration_seconds Float64,
	duration_ms      Int64,
	batch_starts     UInt32,
	batch_dones      UInt32
) ENGINE = ReplacingMergeTree(exported_at)
ORDER BY (record_hash)`

// ClickHouseWriter exports run summaries to ClickHouse
type ClickHouseWriter struct {
	client *clickhouse.Client
}

// NewClickHouseWriter creates the export table if needed
func NewClickHouseWriter(ctx context.Context, client *clickhouse.Client) (*ClickHouseWriter, error) {
	if err := client.Exec(ctx, createTableQuery); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", TableName, err)
	}
	return &ClickHouseWriter{client: client}, nil
}

// WriteRecords inserts all records in a single batch
func (w *ClickHouseWriter) WriteRecords(ctx context.Context, runID uuid.UUID, records []domain.LogRecord) (err error) {
	ctx, span := observability.StartSpan(ctx, "clickhouse.export",
		attribute.String("run_id", runID.String()),
		attribute.Int("records", len(records)),
	)
	defer func() {
		observability.EndSpan(span, err)
	}()

	if len(records) == 0 {
		return nil
	}

	exportedAt := time.Now()
	rows := make([]exportRow, 0, len(records))
	for i := range records {
		rows = append(rows, newExportRow(&records[i], runID, exportedAt))
	}

	// The whole batch is rebuilt on retry, a sent batch cannot be reused
	err = retry.Do(ctx, w.client.RetryConfig(), func() error {
		batch, err := w.client.PrepareBatch(ctx, "INSERT INTO "+TableName)
		if err != nil {
			return fmt.Errorf("failed to prepare batch: %w", err)
		}
		for _, row := range rows {
			if err := batch.Append(row.values()...); err != nil {
				batch.Abort()
				return fmt.Errorf("failed to append %s: %w", row.filePath, err)
			}
		}
		if err := batch.Send(); err != nil {
			return fmt.Errorf("failed to send batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("run_id", runID.String()).
		Int("records", len(rows)).
		Str("table", TableName).
		Msg("Records exported to ClickHouse")

	return nil
}

// Close closes the ClickHouse connection
func (w *ClickHouseWriter) Close() error {
	return w.client.Close()
}

// exportRow is one row of the export table in column order
type exportRow struct {
	exportedAt      time.Time
	runID           uuid.UUID
	recordHash      string
	filePath        string
	fileName        string
	batchSize       *int32
	maxParallel     *int32
	startTime       string
	endTime         string
	durationSeconds float64
	durationMs      int64
	batchStarts     uint32
	batchDones      uint32
}

func newExportRow(r *domain.LogRecord, runID uuid.UUID, exportedAt time.Time) exportRow {
	return exportRow{
		exportedAt:      exportedAt,
		runID:           runID,
		recordHash:      calculateRecordHash(r),
		filePath:        r.FilePath,
		fileName:        r.FileName,
		batchSize:       toNullableInt32(r.BatchSize),
		maxParallel:     toNullableInt32(r.MaxParallel),
		startTime:       r.StartTime,
		endTime:         r.EndTime,
		durationSeconds: r.DurationSeconds,
		durationMs:      r.DurationMs,
		batchStarts:     uint32(r.BatchStarts),
		batchDones:      uint32(r.BatchDones),
	}
}

func (r exportRow) values() []any {
	return []any{
		r.exportedAt,
		r.runID,
		r.recordHash,
		r.filePath,
		r.fileName,
		r.batchSize,
		r.maxParallel,
		r.startTime,
		r.endTime,
		r.durationSeconds,
		r.durationMs,
		r.batchStarts,
		r.batchDones,
	}
}

// toNullableInt32 maps an unset field to NULL
func toNullableInt32(v *int) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}
