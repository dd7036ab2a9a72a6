package batchlog

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/observability"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultLogExtension is the extension of run logs written by the download runner
const DefaultLogExtension = ".txt"

// RecordCache stores records of already parsed files.
// Implementations must treat a changed file (size or mtime) as a miss.
type RecordCache interface {
	Get(path string, info fs.FileInfo) (*domain.LogRecord, bool)
	Put(path string, info fs.FileInfo, record *domain.LogRecord) error
	// Delete drops the entry of a file that no longer yields a record
	Delete(path string) error
	Len() (int, error)
}

// WalkOptions configures Walk
type WalkOptions struct {
	Extension string      // Matched case-insensitively, DefaultLogExtension if empty
	Cache     RecordCache // Optional
}

// Walk recursively parses every log file under rootDir.
//
// Files are visited in lexical order, one at a time. A file that yields no
// record (unreadable, or missing start/done markers) is logged and appended to
// Failures; it never aborts the walk. Unreadable subdirectories are skipped.
// The only returned error is an inaccessible rootDir or a cancelled context.
func Walk(ctx context.Context, rootDir string, opts WalkOptions) (*domain.CorpusResult, error) {
	ext := strings.ToLower(opts.Extension)
	if ext == "" {
		ext = DefaultLogExtension
	}

	ctx, span := observability.StartSpan(ctx, "corpus.walk", attribute.String("root_dir", rootDir))

	log.Info().
		Str("root_dir", rootDir).
		Str("extension", ext).
		Msg("Scanning for run logs...")

	result := &domain.CorpusResult{}
	cacheHits := 0

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == rootDir {
				return err
			}
			// Skip inaccessible directories
			log.Warn().Err(err).Str("path", path).Msg("Skipping inaccessible path")
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ext) {
			return nil
		}

		info, err := os.Stat(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to stat log file")
			result.Failures = append(result.Failures, path)
			return nil
		}
		// Symlinks to directories are not followed
		if info.IsDir() {
			return nil
		}

		if opts.Cache != nil {
			if record, ok := opts.Cache.Get(path, info); ok {
				cacheHits++
				result.Records = append(result.Records, *record)
				return nil
			}
		}

		record, err := ParseLogFile(ctx, path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Skipping log file")
			result.Failures = append(result.Failures, path)
			if opts.Cache != nil {
				if err := opts.Cache.Delete(path); err != nil {
					log.Warn().Err(err).Str("path", path).Msg("Failed to evict cached record")
				}
			}
			return nil
		}

		if opts.Cache != nil {
			if err := opts.Cache.Put(path, info, record); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("Failed to cache record")
			}
		}

		result.Records = append(result.Records, *record)
		return nil
	})

	span.SetAttributes(
		attribute.Int("records", len(result.Records)),
		attribute.Int("failures", len(result.Failures)),
	)

	if err != nil {
		err = fmt.Errorf("failed to walk directory %s: %w", rootDir, err)
		observability.EndSpan(span, err)
		return nil, err
	}
	observability.EndSpan(span, nil)

	event := log.Info().
		Int("records", len(result.Records)).
		Int("failures", len(result.Failures))
	if opts.Cache != nil {
		event = event.Int("cache_hits", cacheHits)
		if cached, err := opts.Cache.Len(); err == nil {
			event = event.Int("cached_records", cached)
		} else {
			log.Warn().Err(err).Msg("Failed to count cached records")
		}
	}
	event.Msg("Log scan complete")

	return result, nil
}
