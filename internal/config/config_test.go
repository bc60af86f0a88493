package config

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/helm/internal/control"
	"github.com/san-kum/helm/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Controller != "pid" {
		t.Errorf("expected controller pid, got %s", cfg.Controller)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	p, err := cfg.PID()
	if err != nil {
		t.Fatalf("default tuning: %v", err)
	}
	if p.Gain != 1 || p.DerivativeTime != 0 || !math.IsInf(p.IntegralTime, 1) {
		t.Errorf("expected pure proportional tuning, got %+v", p.Params())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.yaml")
	data := `
dt: 0.05
tuning:
  gain: 2
  integral_time: 4
  filter_time: off
actuator:
  min: -1
  max: 1
reference:
  - {at: 0, value: 1}
  - {at: 5, value: 2}
manual:
  - {from: 1, until: 2}
  - {from: 3, until: 4, signal: 0.5}
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dt != 0.05 || cfg.Duration != DefaultDuration {
		t.Errorf("unexpected timing dt=%f duration=%f", cfg.Dt, cfg.Duration)
	}
	if cfg.Tuning.Gain != 2 || cfg.Tuning.IntegralTime != 4 {
		t.Errorf("unexpected tuning %+v", cfg.Tuning)
	}
	if !math.IsInf(float64(cfg.Tuning.ResetTime), 1) {
		t.Error("unset reset time should keep its default")
	}

	sim := cfg.Simulation()
	if sim.Actuator.Min != -1 || sim.Actuator.Max != 1 || !math.IsInf(sim.Actuator.Rate, 1) {
		t.Errorf("unexpected actuator %+v", sim.Actuator)
	}
	if len(sim.Reference) != 2 || sim.Reference.Value(6) != 2 {
		t.Errorf("unexpected reference %+v", sim.Reference)
	}
	if len(sim.Manual) != 2 {
		t.Fatalf("expected 2 manual intervals, got %d", len(sim.Manual))
	}
	if !math.IsNaN(sim.Manual[0].Signal) {
		t.Error("missing signal should hold the last request")
	}
	if sim.Manual[1].Signal != 0.5 {
		t.Errorf("expected manual signal 0.5, got %f", sim.Manual[1].Signal)
	}
}

func TestLoadLowerLimitOff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.yaml")
	if err := os.WriteFile(path, []byte("actuator:\n  min: off\n  max: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !math.IsInf(float64(cfg.Actuator.Min), -1) || cfg.Actuator.Max != 2 {
		t.Errorf("expected actuator [-inf, 2], got %+v", cfg.Actuator)
	}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !math.IsInf(float64(loaded.Actuator.Min), -1) {
		t.Errorf("lower limit lost in round trip: %v", loaded.Actuator.Min)
	}
}

func TestLoadRejectsInfiniteLowerLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.yaml")
	if err := os.WriteFile(path, []byte("actuator:\n  min: inf\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.yaml")
	if err := os.WriteFile(path, []byte("dt: 0.02\nreference:\n  - {at: 0, value: 3}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	base := GetPreset("bumpless")

	cfg, err := Overlay(path, base)
	if err != nil {
		t.Fatalf("overlay: %v", err)
	}

	if cfg.Dt != 0.02 || cfg.Duration != 40 || len(cfg.Manual) != 1 {
		t.Errorf("expected file dt over preset timing, got dt=%f duration=%f manual=%v", cfg.Dt, cfg.Duration, cfg.Manual)
	}
	if len(cfg.Reference) != 1 || cfg.Reference[0].Value != 3 {
		t.Errorf("file reference should replace the preset's, got %+v", cfg.Reference)
	}
	if base.Dt != DefaultDt || len(base.Reference) != 2 {
		t.Error("overlay must not modify base")
	}
}

func TestLoadRejectsBadTuning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("tuning:\n  integral_time: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, control.ErrTuningBounds) {
		t.Errorf("expected ErrTuningBounds, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestSaveLoadKeepsInfinity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.yaml")
	cfg := GetPreset("saturated")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if !math.IsInf(float64(loaded.Actuator.Rate), 1) {
		t.Errorf("expected unlimited rate, got %f", loaded.Actuator.Rate)
	}
	if loaded.Actuator.Max != 1.2 || loaded.Tuning.ResetTime != 1.2 {
		t.Errorf("values lost in round trip: %+v %+v", loaded.Actuator, loaded.Tuning)
	}
}

func TestGainsTakePrecedence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gains = &GainsConfig{Kp: 2, Ki: 0.5, Kd: 1}

	p, err := cfg.PID()
	if err != nil {
		t.Fatalf("pid: %v", err)
	}
	if p.Gain != 2 || p.IntegralTime != 4 || p.DerivativeTime != 0.5 {
		t.Errorf("unexpected tuning %+v", p.Params())
	}

	cfg.SetTuning(p)
	if cfg.Gains != nil || cfg.Tuning.IntegralTime != 4 {
		t.Error("SetTuning should replace gains with time scales")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		tweak  func(c *Config)
		target error
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }, dynamo.ErrParameterBounds},
		{"negative duration", func(c *Config) { c.Duration = -1 }, dynamo.ErrParameterBounds},
		{"inverted actuator", func(c *Config) { c.Actuator.Min, c.Actuator.Max = 1, -1 }, dynamo.ErrParameterBounds},
		{"jitter too large", func(c *Config) { c.Sampling.Jitter = 1 }, dynamo.ErrParameterBounds},
		{"zero plant gain", func(c *Config) { c.Plant.B0 = 0 }, dynamo.ErrParameterBounds},
		{"NaN gain", func(c *Config) { c.Tuning.Gain = math.NaN() }, control.ErrTuningBounds},
		{"zero kp", func(c *Config) { c.Gains = &GainsConfig{} }, control.ErrTuningBounds},
		{"short initial state", func(c *Config) { c.Initial = []float64{1} }, dynamo.ErrDimensionMismatch},
		{"NaN initial state", func(c *Config) { c.Initial = []float64{math.NaN(), 0, 0} }, dynamo.ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.tweak(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestInitialState(t *testing.T) {
	cfg := DefaultConfig()
	if x := cfg.InitialState(); len(x) != 3 || x.Norm() != 0 {
		t.Errorf("expected plant at rest, got %v", x)
	}

	cfg = GetPreset("proportional")
	x := cfg.InitialState()
	x[0] = 5
	if cfg.Initial[0] != 2 {
		t.Error("InitialState must return a copy")
	}
}

func TestClone(t *testing.T) {
	signal := 0.3
	cfg := DefaultConfig()
	cfg.Gains = &GainsConfig{Kp: 1}
	cfg.Manual = []ManualConfig{{From: 1, Until: 2, Signal: &signal}}

	c := cfg.Clone()
	c.Gains.Kp = 5
	*c.Manual[0].Signal = 9
	c.Reference[0].Value = 7

	if cfg.Gains.Kp != 1 || signal != 0.3 || cfg.Reference[0].Value != 1 {
		t.Error("clone shares memory with the original")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pi")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Tuning.IntegralTime != 2 {
		t.Errorf("expected integral time 2, got %f", cfg.Tuning.IntegralTime)
	}

	cfg.Tuning.Gain = 100
	if GetPreset("pi").Tuning.Gain != 1 {
		t.Error("presets must not share state between calls")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestFloatJSON(t *testing.T) {
	tests := []struct {
		in   Float
		want string
	}{
		{1.5, `1.5`},
		{Inf(), `"inf"`},
		{Float(math.Inf(-1)), `"-inf"`},
		{Float(math.NaN()), `"nan"`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.in)
		if err != nil {
			t.Fatalf("marshal %v: %v", tt.in, err)
		}
		if string(data) != tt.want {
			t.Errorf("marshal %v = %s, want %s", tt.in, data, tt.want)
		}

		var back Float
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != tt.in && !(math.IsNaN(float64(back)) && math.IsNaN(float64(tt.in))) {
			t.Errorf("round trip %v gave %v", tt.in, back)
		}
	}

	var f Float
	if err := json.Unmarshal([]byte(`"fast"`), &f); err == nil {
		t.Error("expected error for unknown word")
	}
}
