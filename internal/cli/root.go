// Package cli implements the batchlog CLI commands.
package cli

import (
	"context"
	"fmt"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/config"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/observability"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is reported in logs and trace resources
const Version = "0.1.0"

var (
	cfg            *config.Config
	shutdownTracer func(context.Context) error
)

var rootCmd = &cobra.Command{
	Use:   "batchlog",
	Short: "Extract run metrics from multicurl batch download logs",
	Long: `batchlog turns a tree of multicurl batch download logs into a summary table
(one row per run: batch size, parallelism, start, end and duration) and
charts the duration of each configuration from that table.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the CLI.
func Execute() error {
	return execute(rootCmd)
}

// execute runs cmd and flushes traces afterwards, whether or not it failed
func execute(cmd *cobra.Command) error {
	defer flushTraces()
	return cmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML config file (default $CONFIG_FILE)")
	flags.String("output", "", "summary table path")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-file", "", "also write JSON logs to this file (rotated)")
	flags.Bool("tracing", false, "export OpenTelemetry traces")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(plotCmd)
	rootCmd.AddCommand(statsCmd)
}

// setup loads configuration, applies flags and initialises logging and tracing
func setup(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, loaded)
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded

	observability.InitLogger(cfg.LogLevel, observability.LogFileConfig{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogFileMaxSizeMB,
		MaxBackups: cfg.LogFileBackups,
		MaxAgeDays: cfg.LogFileMaxAge,
	})

	tracerCfg := observability.TracerConfig{
		ServiceName:    "batchlog",
		ServiceVersion: Version,
		Command:        cmd.Name(),
		Endpoint:       cfg.TracingEndpoint,
		Protocol:       cfg.TracingProtocol,
		SampleRatio:    cfg.TracingSample,
		Enabled:        cfg.TracingEnabled,
	}
	if cmd.Name() == parseCmd.Name() {
		tracerCfg.RootDir = cfg.RootDir
		tracerCfg.LogExtension = cfg.LogExtension
	}
	startTracing(tracerCfg)

	log.Debug().
		Str("version", Version).
		Str("command", cmd.Name()).
		Msg("batchlog starting")

	return nil
}

// initTracer is replaced in tests
var initTracer = observability.InitTracer

// startTracing installs the tracer; a failure only disables tracing
func startTracing(tracerCfg observability.TracerConfig) {
	shutdown, err := initTracer(tracerCfg)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, tracing disabled")
		shutdownTracer = nil
		return
	}
	shutdownTracer = shutdown
}

// flushTraces exports pending spans once; later calls are no-ops
func flushTraces() {
	if shutdownTracer == nil {
		return
	}
	shutdown := shutdownTracer
	shutdownTracer = nil
	if err := shutdown(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Failed to flush traces")
	}
}

// stringFlags maps flag names to the configuration fields they override
var stringFlags = map[string]func(*config.Config) *string{
	"output":    func(c *config.Config) *string { return &c.OutputPath },
	"log-level": func(c *config.Config) *string { return &c.LogLevel },
	"log-file":  func(c *config.Config) *string { return &c.LogFile },
	"root":      func(c *config.Config) *string { return &c.RootDir },
	"ext":       func(c *config.Config) *string { return &c.LogExtension },
	"cache":     func(c *config.Config) *string { return &c.CachePath },
	"lines":     func(c *config.Config) *string { return &c.LinePlotPath },
	"heatmap":   func(c *config.Config) *string { return &c.HeatmapPath },
	"filter":    func(c *config.Config) *string { return &c.Filter },
}

var boolFlags = map[string]func(*config.Config) *bool{
	"tracing":    func(c *config.Config) *bool { return &c.TracingEnabled },
	"clickhouse": func(c *config.Config) *bool { return &c.ClickHouseEnabled },
}

// applyFlags overrides configuration with the flags set on the command line
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	for name, field := range stringFlags {
		if flags.Changed(name) {
			*field(c), _ = flags.GetString(name)
		}
	}
	for name, field := range boolFlags {
		if flags.Changed(name) {
			*field(c), _ = flags.GetBool(name)
		}
	}
}
