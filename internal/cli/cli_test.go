package cli

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/config"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/observability"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func TestApplyFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("root", "", "")
	cmd.Flags().String("output", "", "")
	cmd.Flags().Bool("clickhouse", false, "")
	if err := cmd.ParseFlags([]string{"--root", "/runs", "--clickhouse"}); err != nil {
		t.Fatal(err)
	}

	c := &config.Config{RootDir: "logs", OutputPath: "summary.csv"}
	applyFlags(cmd, c)

	if c.RootDir != "/runs" {
		t.Errorf("RootDir = %q, want /runs", c.RootDir)
	}
	if c.OutputPath != "summary.csv" {
		t.Errorf("OutputPath = %q, unset flags must not override", c.OutputPath)
	}
	if !c.ClickHouseEnabled {
		t.Error("ClickHouseEnabled = false, want true")
	}
}

func TestPrintFailures(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	printFailures(cmd, nil)
	if buf.Len() != 0 {
		t.Errorf("no failures should print nothing, got %q", buf.String())
	}

	printFailures(cmd, []string{"/logs/a.txt", "/logs/b.txt"})
	out := buf.String()
	if !strings.Contains(out, "2 file(s)") || !strings.Contains(out, "/logs/b.txt") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	printStats(cmd, []domain.GroupStats{
		{BatchSize: 16, MaxParallel: 2, Mean: 2, StdDev: 1.4142, Count: 2},
		{BatchSize: 32, MaxParallel: 4, Mean: 7.5, StdDev: math.NaN(), Count: 1},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "1.414") {
		t.Errorf("std-dev missing from %q", lines[1])
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[2]), "-") {
		t.Errorf("single-run std-dev should print as -, got %q", lines[2])
	}
}

func TestExecute_FlushesTracesOnFailure(t *testing.T) {
	t.Cleanup(func() { shutdownTracer = nil })

	flushed := 0
	cmd := &cobra.Command{
		Use:           "failing",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			shutdownTracer = func(context.Context) error {
				flushed++
				return nil
			}
			return errors.New("cannot write summary table")
		},
	}
	cmd.SetArgs([]string{})

	if err := execute(cmd); err == nil {
		t.Fatal("execute() should return the command error")
	}
	if flushed != 1 {
		t.Errorf("traces flushed %d times, want 1", flushed)
	}

	// A second flush must not call the exporter again
	flushTraces()
	if flushed != 1 {
		t.Errorf("traces flushed %d times after repeat, want 1", flushed)
	}
}

func TestStartTracing_FailureIsWarning(t *testing.T) {
	var buf bytes.Buffer
	prevLogger, prevInit := log.Logger, initTracer
	t.Cleanup(func() {
		log.Logger, initTracer = prevLogger, prevInit
		shutdownTracer = nil
	})
	log.Logger = zerolog.New(&buf)
	initTracer = func(observability.TracerConfig) (func(context.Context) error, error) {
		return nil, errors.New("collector unreachable")
	}

	startTracing(observability.TracerConfig{Enabled: true})

	if shutdownTracer != nil {
		t.Error("shutdownTracer should stay nil after a failed init")
	}
	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, "collector unreachable") {
		t.Errorf("expected a warning with the init error, got %q", out)
	}
}
