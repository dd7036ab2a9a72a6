package cli

import (
	"fmt"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a log tree into the summary table",
	Long: `Walk the root directory, build one record per run log and write the
summary table. Files that yield no record are listed at the end; they do not
fail the command. Only configuration and output errors exit non-zero.`,
	Args: cobra.NoArgs,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("root", "", "root directory of the run logs")
	parseCmd.Flags().String("ext", "", "log file extension, matched case-insensitively")
	parseCmd.Flags().String("cache", "", "bbolt file caching parsed records between runs")
	parseCmd.Flags().Bool("clickhouse", false, "also export records to ClickHouse")
}

func runParse(cmd *cobra.Command, _ []string) error {
	if err := cfg.ValidateRootDir(); err != nil {
		return err
	}

	svc, err := service.NewParserService(cfg, nil)
	if err != nil {
		return err
	}

	report, err := svc.Run(cmd.Context())
	if report != nil {
		printFailures(cmd, report.Failures)
	}
	if err != nil {
		return err
	}

	log.Info().
		Str("run_id", report.RunID.String()).
		Int("records", report.Records).
		Int("failures", len(report.Failures)).
		Int("exported", report.Exported).
		Bool("output_written", report.OutputWritten).
		Msg("Parse run finished")

	return nil
}

func printFailures(cmd *cobra.Command, failures []string) {
	if len(failures) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Could not extract a record from %d file(s):\n", len(failures))
	for _, path := range failures {
		fmt.Fprintf(out, "  %s\n", path)
	}
}
