package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/helm/internal/config"
	"github.com/san-kum/helm/internal/dynamo"
	"github.com/san-kum/helm/internal/experiment"
	"github.com/san-kum/helm/internal/ui"
)

const (
	referenceIntegrator = "rk4"
	referenceDt         = 0.0005
)

// benchIntegrators times every registered integrator on one preset over a
// range of step sizes and reports how far each final plant state lands
// from a fine rk4 run.
func benchIntegrators(cmd *cobra.Command, args []string) error {
	name := "pid"
	if len(args) > 0 {
		name = args[0]
	}
	if config.GetPreset(name) == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}

	registry := experiment.NewRegistry()
	dts := []float64{0.001, 0.01, 0.1}

	ui.Info("benchmarking %s", name)

	_, want, err := runFinal(registry, config.GetPreset(name), referenceIntegrator, referenceDt)
	if err != nil {
		return fmt.Errorf("reference run: %w", err)
	}

	var rows [][]string
	for _, integ := range registry.ListIntegrators() {
		for _, dt := range dts {
			start := time.Now()
			result, got, err := runFinal(registry, config.GetPreset(name), integ, dt)
			elapsed := time.Since(start)
			if err != nil {
				ui.Warning("%s at dt=%g: %v", integ, dt, err)
				rows = append(rows, []string{integ, fmt.Sprintf("%.4fs", dt), "-", "-", "-", "failed"})
				continue
			}

			stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()
			rows = append(rows, []string{
				integ,
				fmt.Sprintf("%.4fs", dt),
				fmt.Sprintf("%d", result.StepsTaken),
				elapsed.String(),
				fmt.Sprintf("%.0f", stepsPerSec),
				ui.Number(got.Sub(want).Norm()),
			})
		}
	}

	out, err := ui.Table([]string{"INTEGRATOR", "DT", "STEPS", "TIME", "STEPS/SEC", "FINAL ERR"}, rows)
	if err != nil {
		return err
	}
	ui.Printfln("%s", out)
	return nil
}

// runFinal runs cfg with the given integrator and step size and returns
// the plant state at the end of the run. cfg is modified.
func runFinal(registry *experiment.Registry, cfg *config.Config, integ string, dt float64) (*dynamo.Result, dynamo.State, error) {
	cfg.Integrator = integ
	cfg.Dt = dt

	exp := experiment.New(integ, cfg)
	if err := exp.Setup(registry); err != nil {
		return nil, nil, err
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		return nil, nil, err
	}
	if len(result.States) == 0 {
		return nil, nil, fmt.Errorf("%s at dt=%g recorded no states", integ, dt)
	}
	return result, result.States[len(result.States)-1], nil
}
