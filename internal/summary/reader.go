package summary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Row is a summary table row with all numeric columns needed for aggregation
type Row struct {
	FileName        string
	BatchSize       int
	MaxParallel     int
	DurationSeconds float64
}

// ReadCSV reads a summary table written by WriteCSV.
//
// batch_size, max_parallel and duration_seconds are coerced to numbers; rows
// where any of them is empty or invalid are dropped and counted in the log.
// Columns are located by header name, so extra or reordered columns are accepted.
func ReadCSV(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open summary table: %w", err)
	}
	defer file.Close()

	rows, dropped, err := readRows(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary table %s: %w", path, err)
	}

	if dropped > 0 {
		log.Warn().
			Str("path", path).
			Int("dropped", dropped).
			Msg("Dropped rows with missing or invalid numeric values")
	}
	log.Info().
		Str("path", path).
		Int("rows", len(rows)).
		Msg("Summary table loaded")

	return rows, nil
}

// readRows parses the table and returns the valid rows and the number of dropped ones
func readRows(r io.Reader) ([]Row, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range []string{ColFileName, ColBatchSize, ColMaxParallel, ColDurationSeconds} {
		if _, ok := index[col]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", col)
		}
	}

	field := func(record []string, col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	dropped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read row: %w", err)
		}

		batchSize, ok1 := parseWholeNumber(field(record, ColBatchSize))
		maxParallel, ok2 := parseWholeNumber(field(record, ColMaxParallel))
		duration, ok3 := parseNumber(field(record, ColDurationSeconds))
		if !ok1 || !ok2 || !ok3 {
			dropped++
			continue
		}

		rows = append(rows, Row{
			FileName:        field(record, ColFileName),
			BatchSize:       batchSize,
			MaxParallel:     maxParallel,
			DurationSeconds: duration,
		})
	}

	return rows, dropped, nil
}

// parseNumber parses a finite float; anything else counts as missing
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseWholeNumber accepts "16" and "16.0" but not "16.5"
func parseWholeNumber(s string) (int, bool) {
	v, ok := parseNumber(s)
	if !ok || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}
