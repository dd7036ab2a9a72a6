package cli

import (
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/service"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print duration statistics per configuration",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	addAnalysisFlags(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	analysis, err := service.Analyze(cfg)
	if err != nil {
		return err
	}
	printStats(cmd, analysis.Groups)
	return nil
}

func printStats(cmd *cobra.Command, groups []domain.GroupStats) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(w, "max_parallel\tbatch_size\truns\tmean(s)\tstd(s)\t\n")
	for _, g := range groups {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.3f\t%s\t\n",
			g.MaxParallel, g.BatchSize, g.Count, g.Mean, formatStdDev(g.StdDev))
	}
	w.Flush()
}

// formatStdDev prints single-run groups as "-"
func formatStdDev(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}
