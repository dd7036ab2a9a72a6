package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/batchlog"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/cache"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/clickhouse"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/config"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/observability"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/retry"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/summary"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/writer"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// ExporterFactory opens the sink used to export parsed records
type ExporterFactory func(ctx context.Context) (writer.RecordWriter, error)

// ParseReport summarises one parse run
type ParseReport struct {
	RunID         uuid.UUID
	Records       int
	Failures      []string // Paths that produced no record, in traversal order
	OutputWritten bool
	Exported      int
}

// ParserService walks the corpus, writes the summary table and optionally
// exports the records to ClickHouse
type ParserService struct {
	cfg         *config.Config
	newExporter ExporterFactory
}

// NewParserService creates a new parser service.
// When ClickHouse export is enabled and no factory is given, records are
// exported through a ClickHouse client built from cfg.
func NewParserService(cfg *config.Config, newExporter ExporterFactory) (*ParserService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if newExporter == nil && cfg.ClickHouseEnabled {
		newExporter = clickHouseExporter(cfg)
	}

	return &ParserService{
		cfg:         cfg,
		newExporter: newExporter,
	}, nil
}

// Run performs one parse run.
// Per-file failures are collected in the report. Errors are returned only
// when the corpus root cannot be walked or an output cannot be written.
func (s *ParserService) Run(ctx context.Context) (_ *ParseReport, err error) {
	report := &ParseReport{RunID: uuid.New()}

	ctx, span := observability.StartSpan(ctx, "parse.run", attribute.String("run_id", report.RunID.String()))
	defer func() {
		span.SetAttributes(
			attribute.Int("records", report.Records),
			attribute.Int("failures", len(report.Failures)),
			attribute.Bool("output_written", report.OutputWritten),
		)
		observability.EndSpan(span, err)
	}()

	log.Info().
		Str("run_id", report.RunID.String()).
		Str("root_dir", s.cfg.RootDir).
		Str("extension", s.cfg.LogExtension).
		Msg("Parse run starting")

	opts := batchlog.WalkOptions{Extension: s.cfg.LogExtension}
	if s.cfg.CachePath != "" {
		store, err := cache.NewBoltDBStore(s.cfg.CachePath)
		if err != nil {
			// The cache only saves work, parse without it
			log.Warn().Err(err).Str("cache_path", s.cfg.CachePath).Msg("Record cache unavailable")
		} else {
			defer store.Close()
			opts.Cache = store
		}
	}

	result, err := batchlog.Walk(ctx, s.cfg.RootDir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to walk corpus: %w", err)
	}
	report.Records = len(result.Records)
	report.Failures = result.Failures

	err = summary.WriteCSV(ctx, result.Records, s.cfg.OutputPath)
	switch {
	case errors.Is(err, domain.ErrEmptyResultSet):
		// Nothing to write, nothing to export
		return report, nil
	case err != nil:
		return report, fmt.Errorf("failed to write summary table: %w", err)
	}
	report.OutputWritten = true

	if s.newExporter != nil {
		if err := s.export(ctx, report.RunID, result.Records); err != nil {
			return report, err
		}
		report.Exported = len(result.Records)
	}

	return report, nil
}

func (s *ParserService) export(ctx context.Context, runID uuid.UUID, records []domain.LogRecord) error {
	w, err := s.newExporter(ctx)
	if err != nil {
		return fmt.Errorf("failed to open exporter: %w", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close exporter")
		}
	}()

	if err := w.WriteRecords(ctx, runID, records); err != nil {
		return fmt.Errorf("failed to export records: %w", err)
	}
	return nil
}

// clickHouseExporter builds the default exporter from configuration
func clickHouseExporter(cfg *config.Config) ExporterFactory {
	return func(ctx context.Context) (writer.RecordWriter, error) {
		retryCfg := retry.DefaultConfig()
		retryCfg.MaxAttempts = cfg.RetryMaxAttempts
		retryCfg.InitialDelay = cfg.RetryInitialDelay
		retryCfg.MaxDelay = cfg.RetryMaxDelay

		client, err := clickhouse.NewClient(ctx, clickhouse.ClientConfig{
			Host:     cfg.ClickHouseHost,
			Port:     cfg.ClickHousePort,
			Database: cfg.ClickHouseDB,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePassword,
			Retry:    retryCfg,
		})
		if err != nil {
			return nil, err
		}

		w, err := writer.NewClickHouseWriter(ctx, client)
		if err != nil {
			client.Close()
			return nil, err
		}
		return w, nil
	}
}
