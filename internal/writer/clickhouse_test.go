package writer

import (
	"testing"
	"time"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
	"github.com/google/uuid"
)

func sampleRecord() domain.LogRecord {
	return domain.LogRecord{
		FileName:        "run_bs16_max2.txt",
		BatchSize:       domain.IntPtr(16),
		StartTime:       "12:00:00.100",
		EndTime:         "12:00:01.100",
		DurationSeconds: 1,
		DurationMs:      1000,
		FilePath:        "/logs/run_bs16_max2.txt",
		BatchStarts:     4,
		BatchDones:      4,
	}
}

func TestCalculateRecordHash(t *testing.T) {
	a := sampleRecord()
	b := sampleRecord()

	hashA := calculateRecordHash(&a)
	hashB := calculateRecordHash(&b)
	if hashA != hashB {
		t.Errorf("identical records hash differently: %s != %s", hashA, hashB)
	}
	if len(hashA) != 64 {
		t.Errorf("hash length = %d, want 64", len(hashA))
	}

	b.FilePath = "/other/run_bs16_max2.txt"
	if hashB = calculateRecordHash(&b); hashA == hashB {
		t.Error("records from different paths should hash differently")
	}

	// Unset and zero are different values
	c := sampleRecord()
	c.MaxParallel = domain.IntPtr(0)
	hashC := calculateRecordHash(&c)
	if hashA == hashC {
		t.Error("unset and zero max_parallel should hash differently")
	}
}

func TestNewExportRow(t *testing.T) {
	record := sampleRecord()
	runID := uuid.New()
	now := time.Now()

	row := newExportRow(&record, runID, now)

	values := row.values()
	if len(values) != 13 {
		t.Fatalf("len(values) = %d, want 13", len(values))
	}
	if values[1] != runID {
		t.Errorf("run_id = %v, want %v", values[1], runID)
	}
	if bs, ok := values[5].(*int32); !ok || bs == nil || *bs != 16 {
		t.Errorf("batch_size = %v, want 16", values[5])
	}
	if mp, ok := values[6].(*int32); !ok || mp != nil {
		t.Errorf("max_parallel = %v, want NULL", values[6])
	}
	if row.recordHash != calculateRecordHash(&record) {
		t.Errorf("record_hash = %s, want hash of the record", row.recordHash)
	}
	if row.batchStarts != 4 || row.durationMs != 1000 {
		t.Errorf("row = %+v", row)
	}
}
