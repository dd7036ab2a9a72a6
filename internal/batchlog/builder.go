package batchlog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/observability"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// Batch markers written by the download runner
const (
	BatchStartMarker = "[Batch START]"
	BatchDoneMarker  = "[Batch DONE]"
)

// accumulator is the per-file fold state
type accumulator struct {
	config    domain.RunConfig
	configSet bool // inline config is first-wins

	firstStart *Timestamp // earliest start by value
	lastDone   *Timestamp // last done by occurrence

	startCount int
	doneCount  int
}

// observe folds a single line into the accumulator
func (a *accumulator) observe(line string) {
	if !a.configSet {
		if cfg, ok := ExtractInlineConfig(line); ok {
			a.config = cfg
			a.configSet = true
		}
	}

	if strings.Contains(line, BatchStartMarker) {
		if ts, ok := ExtractTimestamp(line); ok {
			a.startCount++
			if a.firstStart == nil || ts.Seconds < a.firstStart.Seconds {
				a.firstStart = &ts
			}
		}
	}

	// Unlike starts, the most recent done wins even if an earlier one has a later timestamp
	if strings.Contains(line, BatchDoneMarker) {
		if ts, ok := ExtractTimestamp(line); ok {
			a.doneCount++
			a.lastDone = &ts
		}
	}
}

// record finalizes the accumulator into a LogRecord.
// path is used for the file name and for config inference.
func (a *accumulator) record(path string) (*domain.LogRecord, error) {
	if a.firstStart == nil || a.lastDone == nil {
		return nil, fmt.Errorf("%w: %d starts, %d dones", domain.ErrIncompleteRecord, a.startCount, a.doneCount)
	}

	cfg := a.config
	if !cfg.Complete() {
		if fallback, ok := ExtractConfigFromPath(path); ok {
			cfg = cfg.Merge(fallback)
		}
	}

	duration := a.lastDone.Seconds - a.firstStart.Seconds

	return &domain.LogRecord{
		FileName:        filepath.Base(path),
		BatchSize:       cfg.BatchSize,
		MaxParallel:     cfg.MaxParallel,
		StartTime:       a.firstStart.Display,
		EndTime:         a.lastDone.Display,
		DurationSeconds: duration,
		DurationMs:      int64(math.Round(duration * 1000)),
		FilePath:        path,
		BatchStarts:     a.startCount,
		BatchDones:      a.doneCount,
	}, nil
}

// ParseLogFile reads a run log and builds its LogRecord.
//
// Returns:
//   - domain.ErrFileUnreadable if the file cannot be opened, read or is not valid UTF-8
//   - domain.ErrIncompleteRecord if no timestamped start or done marker was found
func ParseLogFile(ctx context.Context, path string) (*domain.LogRecord, error) {
	_, span := observability.StartSpan(ctx, "logfile.parse", attribute.String("file.path", path))

	record, err := parseLogFile(path)
	observability.EndSpan(span, err)

	return record, err
}

func parseLogFile(path string) (*domain.LogRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFileUnreadable, err)
	}
	defer file.Close()

	return BuildRecord(file, path)
}

// BuildRecord folds all lines of r into a LogRecord.
// path is only used for the file name and the bs<n>_max<m> fallback.
func BuildRecord(r io.Reader, path string) (*domain.LogRecord, error) {
	acc := &accumulator{}

	if err := forEachLine(r, acc.observe); err != nil {
		return nil, err
	}

	record, err := acc.record(path)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("file", record.FileName).
		Int("batch_starts", record.BatchStarts).
		Int("batch_dones", record.BatchDones).
		Float64("duration_seconds", record.DurationSeconds).
		Msg("Log file parsed")

	return record, nil
}

// forEachLine calls fn for every line of r without its line terminator.
// Lines have no length limit. Invalid UTF-8 aborts the scan with ErrFileUnreadable.
func forEachLine(r io.Reader, fn func(line string)) error {
	reader := bufio.NewReader(r)
	lineNo := 0

	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: read line %d: %w", domain.ErrFileUnreadable, lineNo+1, err)
		}

		// ReadString returns the partial last line together with io.EOF
		if line != "" {
			lineNo++
			if !utf8.ValidString(line) {
				return fmt.Errorf("%w: line %d is not valid UTF-8", domain.ErrFileUnreadable, lineNo)
			}
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			fn(line)
		}

		if err != nil {
			return nil
		}
	}
}
