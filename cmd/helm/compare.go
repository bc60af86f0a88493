package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/helm/internal/config"
	"github.com/san-kum/helm/internal/dynamo"
	"github.com/san-kum/helm/internal/experiment"
	"github.com/san-kum/helm/internal/ui"
)

var compareMetrics = []string{"iae", "ise", "overshoot", "control_effort", "saturation", "steady_state_error"}

// comparePresets runs every named preset concurrently, each loop with its
// own controller, and tabulates their metrics.
func comparePresets(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	experiments := make([]*experiment.Experiment, 0, len(args))
	for _, name := range args {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		if cmd.Flags().Changed("dt") {
			cfg.Dt = dtFlag
		}
		if cmd.Flags().Changed("time") {
			cfg.Duration = timeFlag
		}

		exp := experiment.New(name, cfg)
		if err := exp.Setup(registry); err != nil {
			return err
		}
		experiments = append(experiments, exp)
	}

	ui.Debug("comparing %d presets", len(experiments))
	start := time.Now()

	var results []*dynamo.Result
	err := withSignals(context.Background(), func(ctx context.Context) error {
		var err error
		results, err = experiment.RunAll(ctx, experiments...)
		return err
	})
	if err != nil {
		return err
	}
	ui.Debug("compared in %v", time.Since(start))

	if jsonOut {
		out := make(map[string]map[string]config.Float, len(results))
		for i, r := range results {
			m := make(map[string]config.Float, len(r.Metrics))
			for k, v := range r.Metrics {
				m[k] = config.Float(v)
			}
			out[experiments[i].Name()] = m
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	headers := append([]string{"PRESET"}, compareMetrics...)
	headers = append(headers, "MEASUREMENT")

	rows := make([][]string, 0, len(results))
	for i, r := range results {
		row := []string{experiments[i].Name()}
		for _, name := range compareMetrics {
			row = append(row, ui.Number(r.Metrics[name]))
		}
		row = append(row, ui.Sparkline(r.Series(func(s dynamo.Sample) float64 { return s.Observable }), 24))
		rows = append(rows, row)
	}

	out, err := ui.Table(headers, rows)
	if err != nil {
		return err
	}
	ui.Printfln("%s", out)
	return nil
}
