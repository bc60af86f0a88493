package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/helm/internal/config"
	"github.com/san-kum/helm/internal/ui"
)

var (
	dataDir   string
	verbose   bool
	noColor   bool
	jsonOut   bool
	svgWidth  int
	svgHeight int
	dtFlag    float64
	timeFlag  float64
	seedFlag  int64

	integratorName string
	controllerName string
	configFile     string
	preset         string
	writeConfig    string
)

// main registers the helm commands and exits with status 1 when a
// command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "helm",
		Short:         "incremental PID control loop lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.SetDebug(verbose)
			ui.SetColor(!noColor)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".helm", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "more verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable all terminal output coloration")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a closed loop and store it",
		Args:  cobra.NoArgs,
		RunE:  runLoop,
	}
	addLoopFlags(runCmd)
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")
	runCmd.Flags().StringVar(&writeConfig, "write-config", "", "also write the effective config to this path")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot reference, measurement and control signal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render run signals to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [preset] ...",
		Short: "run presets side by side and compare their metrics",
		Args:  cobra.MinimumNArgs(1),
		RunE:  comparePresets,
	}
	compareCmd.Flags().Float64Var(&dtFlag, "dt", config.DefaultDt, "timestep")
	compareCmd.Flags().Float64Var(&timeFlag, "time", config.DefaultDuration, "duration")
	compareCmd.Flags().BoolVar(&jsonOut, "json", false, "print metrics as JSON")

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "benchmark the integrators on a preset",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchIntegrators,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd, compareCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
