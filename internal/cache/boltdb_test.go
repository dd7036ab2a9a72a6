package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/batchlog"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
)

func openStore(t *testing.T) *BoltDBStore {
	t.Helper()
	store, err := NewBoltDBStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("NewBoltDBStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltDBStore_GetPut(t *testing.T) {
	store := openStore(t)

	path := filepath.Join(t.TempDir(), "run.txt")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := store.Get(path, info); ok {
		t.Fatal("Get() on empty cache should miss")
	}

	record := &domain.LogRecord{
		FileName:        "run.txt",
		BatchSize:       domain.IntPtr(16),
		StartTime:       "00:00:01.000",
		EndTime:         "00:00:02.000",
		DurationSeconds: 1,
		DurationMs:      1000,
		FilePath:        path,
		BatchStarts:     2,
		BatchDones:      2,
	}
	if err := store.Put(path, info, record); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok := store.Get(path, info)
	if !ok {
		t.Fatal("Get() after Put() should hit")
	}
	if got.FileName != record.FileName || got.DurationMs != 1000 || got.BatchStarts != 2 {
		t.Errorf("Get() = %+v, want %+v", got, record)
	}
	if got.BatchSize == nil || *got.BatchSize != 16 || got.MaxParallel != nil {
		t.Errorf("Get() config = %v/%v, want 16/nil", got.BatchSize, got.MaxParallel)
	}

	if n, err := store.Len(); err != nil || n != 1 {
		t.Errorf("Len() = %d, %v, want 1", n, err)
	}

	if err := store.Delete(path); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := store.Get(path, info); ok {
		t.Error("Get() after Delete() should miss")
	}
}

func TestBoltDBStore_ChangedFileMisses(t *testing.T) {
	store := openStore(t)

	path := filepath.Join(t.TempDir(), "run.txt")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	info, _ := os.Stat(path)
	if err := store.Put(path, info, &domain.LogRecord{FileName: "run.txt"}); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("version 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	later := info.ModTime().Add(time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	changed, _ := os.Stat(path)

	if _, ok := store.Get(path, changed); ok {
		t.Error("Get() for a modified file should miss")
	}
}

func TestBoltDBStore_WalkUsesCache(t *testing.T) {
	store := openStore(t)

	root := t.TempDir()
	path := filepath.Join(root, "run_bs8_max2.txt")
	content := "[10:00:00.000] [Batch START] idx 0-7\n[10:00:02.500] [Batch DONE] idx 0-7\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := batchlog.WalkOptions{Cache: store}
	first, err := batchlog.Walk(context.Background(), root, opts)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(first.Records) != 1 {
		t.Fatalf("first walk records = %d, want 1", len(first.Records))
	}

	info, _ := os.Stat(path)
	if _, ok := store.Get(path, info); !ok {
		t.Fatal("record was not cached by Walk")
	}

	second, err := batchlog.Walk(context.Background(), root, opts)
	if err != nil {
		t.Fatalf("second Walk() error = %v", err)
	}
	if len(second.Records) != 1 || second.Records[0].DurationMs != first.Records[0].DurationMs {
		t.Errorf("second walk = %+v, want same record as first", second.Records)
	}
}

func TestBoltDBStore_WalkEvictsFileThatStopsParsing(t *testing.T) {
	store := openStore(t)

	root := t.TempDir()
	path := filepath.Join(root, "run_bs8_max2.txt")
	valid := "[10:00:00.000] [Batch START] idx 0-7\n[10:00:02.500] [Batch DONE] idx 0-7\n"
	if err := os.WriteFile(path, []byte(valid), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := batchlog.WalkOptions{Cache: store}
	if _, err := batchlog.Walk(context.Background(), root, opts); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if n, _ := store.Len(); n != 1 {
		t.Fatalf("Len() after first walk = %d, want 1", n)
	}

	// The run was cut short: no DONE marker any more
	if err := os.WriteFile(path, []byte("[10:00:00.000] [Batch START] idx 0-7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := batchlog.Walk(context.Background(), root, opts)
	if err != nil {
		t.Fatalf("second Walk() error = %v", err)
	}
	if len(result.Records) != 0 || len(result.Failures) != 1 {
		t.Fatalf("second walk = %d records, %v failures, want 0 and 1", len(result.Records), result.Failures)
	}
	if n, _ := store.Len(); n != 0 {
		t.Errorf("Len() after failed parse = %d, want 0", n)
	}
}
