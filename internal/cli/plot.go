package cli

import (
	"errors"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
	"github.com/SteelMorgan/multicurl-log-analyzer/internal/service"
	"github.com/spf13/cobra"
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Chart mean duration per configuration from the summary table",
	Long: `Read the summary table, group runs by batch size and max parallel, and
draw a line plot with standard deviation error bars and a heatmap of the means.
The chart format follows the file extension (png, svg, pdf).`,
	Args: cobra.NoArgs,
	RunE: runPlot,
}

func init() {
	addAnalysisFlags(plotCmd)
	plotCmd.Flags().String("lines", "", "line plot output path, empty to skip")
	plotCmd.Flags().String("heatmap", "", "heatmap output path, empty to skip")
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().String("filter", "", `row filter expression, e.g. "batch_size >= 16 && max_parallel <= 8"`)
}

func runPlot(_ *cobra.Command, _ []string) error {
	analysis, err := service.Analyze(cfg)
	if err != nil {
		return err
	}

	err = service.RenderCharts(cfg, analysis)
	if errors.Is(err, domain.ErrEmptyResultSet) {
		return nil
	}
	return err
}
