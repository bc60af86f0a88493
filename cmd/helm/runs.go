package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/helm/internal/config"
	"github.com/san-kum/helm/internal/dynamo"
	"github.com/san-kum/helm/internal/export"
	"github.com/san-kum/helm/internal/storage"
	"github.com/san-kum/helm/internal/ui"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		ui.Info("no runs found in %s", dataDir)
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.2fs", run.Duration),
			fmt.Sprintf("%.4fs", run.Dt),
			run.Integrator,
			run.Controller,
			ui.Number(float64(run.Metrics["iae"])),
		})
	}

	out, err := ui.Table([]string{"ID", "TIME", "DURATION", "DT", "INTEG", "CTRL", "IAE"}, rows)
	if err != nil {
		return err
	}
	ui.Printfln("%s", out)
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	ui.Printfln("%s %s", ui.Label.Render("run:"), ui.Value.Render(meta.ID))
	ui.Printfln("%s %d\n", ui.Label.Render("samples:"), len(samples))

	plots := []struct {
		caption string
		series  [][]float64
	}{
		{
			caption: "reference (blue) and measurement (green)",
			series: [][]float64{
				series(samples, func(s dynamo.Sample) float64 { return s.Reference }),
				holdGaps(series(samples, func(s dynamo.Sample) float64 { return s.Observable })),
			},
		},
		{
			caption: "requested (blue) and actual (green) control signal",
			series: [][]float64{
				series(samples, func(s dynamo.Sample) float64 { return s.Requested }),
				series(samples, func(s dynamo.Sample) float64 { return s.Actual }),
			},
		},
	}

	for _, p := range plots {
		opts := []asciigraph.Option{
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		}
		if !noColor {
			opts = append(opts, asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Green))
		}
		ui.Printfln("%s\n", asciigraph.PlotMany(p.series, opts...))
	}
	return nil
}

func series(samples []dynamo.Sample, field func(dynamo.Sample) float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = field(s)
	}
	return out
}

// holdGaps replaces lost measurements with the previous valid one, so
// a plot shows what the controller last saw.
func holdGaps(values []float64) []float64 {
	out := make([]float64, len(values))
	last := 0.0
	for _, v := range values {
		if !math.IsNaN(v) {
			last = v
			break
		}
	}
	for i, v := range values {
		if !math.IsNaN(v) {
			last = v
		}
		out[i] = last
	}
	return out
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	return storage.ExportMetadata(os.Stdout, meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, meta, samples)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	if _, err := st.Load(runID); err != nil {
		return err
	}

	file, err := os.Open(st.SamplesPath(runID))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(os.Stdout, file)
	return err
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	times, lines := export.RunSeries(samples)
	return export.SVG(os.Stdout, times, lines, svgWidth, svgHeight)
}

func listPresets(cmd *cobra.Command, args []string) error {
	rows := make([][]string, 0, len(config.Presets))
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		p, err := cfg.PID()
		if err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
		rows = append(rows, []string{
			name,
			ui.Number(p.Gain),
			ui.Number(p.IntegralTime),
			ui.Number(p.DerivativeTime),
			ui.Number(p.ResetTime),
			fmt.Sprintf("[%s, %s]", ui.Number(float64(cfg.Actuator.Min)), ui.Number(float64(cfg.Actuator.Max))),
		})
	}

	out, err := ui.Table([]string{"PRESET", "GAIN", "TI", "TD", "TT", "ACTUATOR"}, rows)
	if err != nil {
		return err
	}
	ui.Printfln("%s", out)
	return nil
}
