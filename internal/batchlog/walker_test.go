package batchlog

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const validLog = "[12:00:00.000] [MultiCurlTest] BatchSize: 16 | MaxParallelBatches: 2\n" +
	"[12:00:00.100] [Batch START] idx 0-15 (16 files) | active=1\n" +
	"[12:00:01.100] [Batch DONE] idx 0-15 (16 files) in 1000 ms | active=0\n"

const noConfigLog = "[12:00:00.100] [Batch START] idx 0-15\n" +
	"[12:00:02.100] [Batch DONE] idx 0-15\n"

func TestWalk_Pipeline(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "a", "run1.txt"), validLog)
	writeFile(t, filepath.Join(root, "a", "x_bs32_max4", "run2.TXT"), noConfigLog)
	writeFile(t, filepath.Join(root, "b", "run3.txt"), validLog)
	writeFile(t, filepath.Join(root, "b", "broken.txt"), "[12:00:00.100] [Batch START]\n\xff\xfe\n")
	writeFile(t, filepath.Join(root, "c", "no_done.txt"), "[12:00:00.100] [Batch START] idx 0-15\n")
	writeFile(t, filepath.Join(root, "c", "notes.md"), validLog)
	writeFile(t, filepath.Join(root, "c", "run4.log"), validLog)

	result, err := Walk(context.Background(), root, WalkOptions{})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	if len(result.Records) != 3 {
		t.Fatalf("len(Records) = %d, want 3", len(result.Records))
	}
	if len(result.Failures) != 2 {
		t.Fatalf("len(Failures) = %d, want 2: %v", len(result.Failures), result.Failures)
	}

	// Lexical traversal order
	wantFiles := []string{"run1.txt", "run2.TXT", "run3.txt"}
	for i, want := range wantFiles {
		if result.Records[i].FileName != want {
			t.Errorf("Records[%d].FileName = %q, want %q", i, result.Records[i].FileName, want)
		}
	}
	wantFailures := []string{
		filepath.Join(root, "b", "broken.txt"),
		filepath.Join(root, "c", "no_done.txt"),
	}
	for i, want := range wantFailures {
		if result.Failures[i] != want {
			t.Errorf("Failures[%d] = %q, want %q", i, result.Failures[i], want)
		}
	}

	// Directory name fallback
	run2 := result.Records[1]
	if run2.BatchSize == nil || *run2.BatchSize != 32 || run2.MaxParallel == nil || *run2.MaxParallel != 4 {
		t.Errorf("run2 config = %v/%v, want 32/4", run2.BatchSize, run2.MaxParallel)
	}
}

func TestWalk_CustomExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "run1.txt"), validLog)
	writeFile(t, filepath.Join(root, "run2.log"), validLog)

	result, err := Walk(context.Background(), root, WalkOptions{Extension: ".LOG"})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(result.Records) != 1 || result.Records[0].FileName != "run2.log" {
		t.Errorf("Records = %+v, want only run2.log", result.Records)
	}
}

func TestWalk_EmptyAndMissingRoot(t *testing.T) {
	result, err := Walk(context.Background(), t.TempDir(), WalkOptions{})
	if err != nil {
		t.Fatalf("Walk(empty) error = %v", err)
	}
	if len(result.Records) != 0 || len(result.Failures) != 0 {
		t.Errorf("Walk(empty) = %+v, want nothing", result)
	}

	if _, err := Walk(context.Background(), filepath.Join(t.TempDir(), "missing"), WalkOptions{}); err == nil {
		t.Error("Walk(missing root) expected error")
	}
}

// memoryCache is a RecordCache keyed by path and file size
type memoryCache struct {
	entries map[string]cacheEntry
}

type cacheEntry struct {
	size   int64
	record domain.LogRecord
}

func (c *memoryCache) Get(path string, info fs.FileInfo) (*domain.LogRecord, bool) {
	e, ok := c.entries[path]
	if !ok || e.size != info.Size() {
		return nil, false
	}
	return &e.record, true
}

func (c *memoryCache) Put(path string, info fs.FileInfo, record *domain.LogRecord) error {
	c.entries[path] = cacheEntry{size: info.Size(), record: *record}
	return nil
}

func (c *memoryCache) Delete(path string) error {
	delete(c.entries, path)
	return nil
}

func (c *memoryCache) Len() (int, error) {
	return len(c.entries), nil
}

func TestWalk_CacheEvictsFailedFiles(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "good.txt")
	broken := filepath.Join(root, "broken.txt")
	writeFile(t, good, validLog)
	writeFile(t, broken, "[12:00:00.100] [Batch START] idx 0-15\n")

	// broken.txt parsed fine in an earlier run, before it was truncated
	cache := &memoryCache{entries: map[string]cacheEntry{
		broken: {size: int64(len(validLog)), record: domain.LogRecord{FileName: "broken.txt"}},
	}}

	result, err := Walk(context.Background(), root, WalkOptions{Cache: cache})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(result.Records) != 1 || len(result.Failures) != 1 || result.Failures[0] != broken {
		t.Fatalf("Walk() = %d records, %v failures, want 1 and [%s]", len(result.Records), result.Failures, broken)
	}
	if _, ok := cache.entries[good]; !ok {
		t.Error("parsed record was not cached")
	}
	if _, ok := cache.entries[broken]; ok {
		t.Error("stale entry of a failed file must be evicted")
	}
	if n, _ := cache.Len(); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
}
