package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/san-kum/helm/internal/config"
	"github.com/san-kum/helm/internal/dynamo"
	"github.com/san-kum/helm/internal/experiment"
	"github.com/san-kum/helm/internal/storage"
	"github.com/san-kum/helm/internal/ui"
)

func runLoop(cmd *cobra.Command, args []string) error {
	name, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	if writeConfig != "" {
		if err := config.Save(writeConfig, cfg); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		ui.Info("wrote config to %s", writeConfig)
	}

	exp := experiment.New(name, cfg)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	ui.Debug("integrator=%s controller=%s dt=%g duration=%g seed=%d",
		cfg.Integrator, cfg.Controller, cfg.Dt, cfg.Duration, cfg.Seed)
	ui.Info("running %s...", name)
	start := time.Now()

	var result *dynamo.Result
	err = withSignals(context.Background(), func(ctx context.Context) error {
		var err error
		result, err = exp.Run(ctx)
		return err
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if lost := lostSamples(result.Samples); lost > 0 {
		ui.Warning("%d of %d measurements were lost", lost, len(result.Samples))
	}

	st := storage.New(dataDir)
	runID, err := st.Save(name, exp.Config(), exp.Tuning(), result)
	if err != nil {
		return err
	}

	ui.Success("completed %d steps in %v", result.StepsTaken, elapsed)
	ui.Printfln("%s", summary(runID, exp, result))
	return nil
}

// loadConfig resolves the starting point of a run: defaults, then a
// preset, then a config file.
func loadConfig() (string, *config.Config, error) {
	name := "custom"
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return "", nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	}

	if configFile != "" {
		loaded, err := config.Overlay(configFile, cfg)
		if err != nil {
			return "", nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}
	return name, cfg, nil
}

// withSignals runs fn until it returns or the process is interrupted,
// in which case fn's context is canceled.
func withSignals(parent context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var g run.Group
	g.Add(func() error {
		return fn(ctx)
	}, func(error) {
		cancel()
	})

	sig := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	g.Add(func() error {
		select {
		case s := <-sig:
			ui.Warning("received %s, stopping", s)
			return fmt.Errorf("interrupted by %s", s)
		case <-done:
			return nil
		}
	}, func(error) {
		signal.Stop(sig)
		close(done)
	})

	return g.Run()
}

func lostSamples(samples []dynamo.Sample) int {
	n := 0
	for _, s := range samples {
		if math.IsNaN(s.Observable) {
			n++
		}
	}
	return n
}

func summary(runID string, exp *experiment.Experiment, result *dynamo.Result) string {
	cfg := exp.Config()
	fields := []ui.Field{
		{Label: "run id", Value: runID},
		{Label: "integrator", Value: cfg.Integrator},
		{Label: "controller", Value: cfg.Controller},
	}

	tuning := exp.Tuning()
	for _, name := range sortedKeys(tuning) {
		fields = append(fields, ui.Field{Label: name, Value: ui.Number(tuning[name])})
	}
	for _, name := range sortedKeys(result.Metrics) {
		fields = append(fields, ui.Field{Label: name, Value: ui.Number(result.Metrics[name])})
	}

	return ui.Summary(exp.Name(), fields)
}

func sortedKeys(m map[string]float64) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
