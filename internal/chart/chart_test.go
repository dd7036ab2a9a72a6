package chart

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/aggregate"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
)

func sampleGroups() []domain.GroupStats {
	return []domain.GroupStats{
		{BatchSize: 8, MaxParallel: 2, Mean: 12.5, StdDev: 1.2, Count: 3},
		{BatchSize: 16, MaxParallel: 2, Mean: 9.1, StdDev: math.NaN(), Count: 1},
		{BatchSize: 8, MaxParallel: 4, Mean: 7.3, StdDev: 0.4, Count: 2},
		{BatchSize: 32, MaxParallel: 4, Mean: 5.2, StdDev: 0.1, Count: 2},
	}
}

func assertNonEmptyFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if info.Size() == 0 {
		t.Errorf("%s is empty", path)
	}
}

func TestRenderDurationLines(t *testing.T) {
	for _, name := range []string{"lines.png", "lines.svg"} {
		path := filepath.Join(t.TempDir(), "plots", name)
		if err := RenderDurationLines(sampleGroups(), path); err != nil {
			t.Fatalf("RenderDurationLines(%s) error = %v", name, err)
		}
		assertNonEmptyFile(t, path)
	}
}

func TestRenderHeatmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heatmap.png")
	if err := RenderHeatmap(aggregate.Pivot(sampleGroups()), path); err != nil {
		t.Fatalf("RenderHeatmap() error = %v", err)
	}
	assertNonEmptyFile(t, path)
}

func TestRenderHeatmap_SingleCell(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heatmap.png")
	grid := aggregate.Pivot([]domain.GroupStats{{BatchSize: 8, MaxParallel: 1, Mean: 3, Count: 1}})
	if err := RenderHeatmap(grid, path); err != nil {
		t.Fatalf("RenderHeatmap() error = %v", err)
	}
	assertNonEmptyFile(t, path)
}

func TestRender_Errors(t *testing.T) {
	dir := t.TempDir()

	if err := RenderDurationLines(nil, filepath.Join(dir, "a.png")); err == nil {
		t.Error("RenderDurationLines(nil) expected error")
	}
	if err := RenderHeatmap(aggregate.Pivot(nil), filepath.Join(dir, "b.png")); err == nil {
		t.Error("RenderHeatmap(empty) expected error")
	}
	if err := RenderDurationLines(sampleGroups(), filepath.Join(dir, "c.bmp")); err == nil {
		t.Error("RenderDurationLines(.bmp) expected error")
	}
}
