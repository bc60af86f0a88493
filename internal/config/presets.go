package config

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Presets build ready-to-run loops around the default plant
// 1/(s+1)^3. Each call returns a fresh Config.
var Presets = map[string]func() *Config{
	// Proportional action alone only reacts to the measurement, so the
	// plant is released from y=2 with the actuator at rest.
	"proportional": func() *Config {
		cfg := DefaultConfig()
		cfg.Initial = []float64{2, 0, 0}
		return cfg
	},
	"pi": func() *Config {
		cfg := DefaultConfig()
		cfg.Tuning.IntegralTime = 2
		return cfg
	},
	"pid": pidPreset,
	"saturated": func() *Config {
		cfg := pidPreset()
		cfg.Actuator.Min = -1.2
		cfg.Actuator.Max = 1.2
		cfg.Tuning.ResetTime = 1.2
		return cfg
	},
	"windup": func() *Config {
		cfg := pidPreset()
		cfg.Actuator.Min = -1.2
		cfg.Actuator.Max = 1.2
		return cfg
	},
	"bumpless": func() *Config {
		cfg := DefaultConfig()
		cfg.Tuning.IntegralTime = 2
		cfg.Duration = 40
		cfg.Reference = []SetpointConfig{{At: 0, Value: 1}, {At: 20, Value: 0.5}}
		cfg.Manual = []ManualConfig{{From: 12, Until: 18}}
		return cfg
	},
	"lossy": func() *Config {
		cfg := pidPreset()
		cfg.Seed = 1
		cfg.Sampling = SamplingConfig{Jitter: 0.3, DropProbability: 0.2}
		return cfg
	},
}

func pidPreset() *Config {
	cfg := DefaultConfig()
	cfg.Tuning = TuningConfig{
		Gain:           2.5,
		DerivativeTime: 0.6,
		FilterTime:     0.06,
		IntegralTime:   1.5,
		ResetTime:      Inf(),
	}
	return cfg
}

func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := maps.Keys(Presets)
	slices.Sort(names)
	return names
}
