package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/natefinch/atomic"
	"github.com/qdm12/reprint"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/helm/internal/control"
	"github.com/san-kum/helm/internal/dynamo"
	"github.com/san-kum/helm/internal/plant"
)

const (
	DefaultDt         = 0.01
	DefaultDuration   = 30.0
	DefaultIntegrator = "closed_form"
	DefaultController = "pid"
)

// Float is a float64 that also reads "inf", "-inf" and "off" from YAML.
// "off" means +Inf, which disables a time scale or lifts a limit.
type Float float64

func Inf() Float { return Float(math.Inf(1)) }

func (f *Float) UnmarshalYAML(value *yaml.Node) error {
	switch strings.ToLower(strings.TrimSpace(value.Value)) {
	case "inf", "+inf", "off", "none":
		*f = Float(math.Inf(1))
		return nil
	case "-inf":
		*f = Float(math.Inf(-1))
		return nil
	}
	var v float64
	if err := value.Decode(&v); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*f = Float(v)
	return nil
}

func (f Float) MarshalYAML() (interface{}, error) {
	switch {
	case math.IsInf(float64(f), 1):
		return "inf", nil
	case math.IsInf(float64(f), -1):
		return "-inf", nil
	}
	return float64(f), nil
}

// Floor is a lower limit. "off" and "none" lift it to -Inf.
type Floor Float

func (f *Floor) UnmarshalYAML(value *yaml.Node) error {
	switch strings.ToLower(strings.TrimSpace(value.Value)) {
	case "off", "none":
		*f = Floor(math.Inf(-1))
		return nil
	}
	var v Float
	if err := v.UnmarshalYAML(value); err != nil {
		return err
	}
	*f = Floor(v)
	return nil
}

func (f Floor) MarshalYAML() (interface{}, error) {
	return Float(f).MarshalYAML()
}

// MarshalJSON writes infinities and NaN as strings, which JSON numbers
// cannot carry.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-inf"`), nil
	case math.IsNaN(v):
		return []byte(`"nan"`), nil
	}
	return json.Marshal(v)
}

func (f *Float) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch strings.ToLower(s) {
		case "inf", "+inf", "off":
			*f = Float(math.Inf(1))
		case "-inf":
			*f = Float(math.Inf(-1))
		case "nan":
			*f = Float(math.NaN())
		default:
			return fmt.Errorf("invalid number %q", s)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

type Config struct {
	Integrator string           `yaml:"integrator"`
	Controller string           `yaml:"controller"`
	Dt         float64          `yaml:"dt"`
	Duration   float64          `yaml:"duration"`
	Seed       int64            `yaml:"seed"`
	Initial    []float64        `yaml:"initial,omitempty"`
	Tuning     TuningConfig     `yaml:"tuning"`
	Gains      *GainsConfig     `yaml:"gains,omitempty"`
	Plant      PlantConfig      `yaml:"plant"`
	Actuator   ActuatorConfig   `yaml:"actuator"`
	Reference  []SetpointConfig `yaml:"reference"`
	Manual     []ManualConfig   `yaml:"manual,omitempty"`
	Sampling   SamplingConfig   `yaml:"sampling"`
}

// TuningConfig holds the time-scale form of the controller tuning.
type TuningConfig struct {
	Gain           float64 `yaml:"gain"`
	DerivativeTime float64 `yaml:"derivative_time"`
	FilterTime     Float   `yaml:"filter_time"`
	IntegralTime   Float   `yaml:"integral_time"`
	ResetTime      Float   `yaml:"reset_time"`
}

// GainsConfig is the positional-gain form. When present it takes
// precedence over Tuning.
type GainsConfig struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
	Kt float64 `yaml:"kt"`
}

type PlantConfig struct {
	A0 float64 `yaml:"a0"`
	A1 float64 `yaml:"a1"`
	A2 float64 `yaml:"a2"`
	B0 float64 `yaml:"b0"`
}

type ActuatorConfig struct {
	Min  Floor `yaml:"min"`
	Max  Float `yaml:"max"`
	Rate Float `yaml:"rate"`
}

type SetpointConfig struct {
	At    float64 `yaml:"at"`
	Value float64 `yaml:"value"`
}

// ManualConfig switches the loop to manual on [From, Until). A missing
// signal holds the last requested value.
type ManualConfig struct {
	From   float64  `yaml:"from"`
	Until  float64  `yaml:"until"`
	Signal *float64 `yaml:"signal,omitempty"`
}

type SamplingConfig struct {
	Jitter          float64 `yaml:"jitter"`
	DropProbability float64 `yaml:"drop_probability"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: DefaultIntegrator,
		Controller: DefaultController,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Tuning: TuningConfig{
			Gain:         1,
			FilterTime:   Inf(),
			IntegralTime: Inf(),
			ResetTime:    Inf(),
		},
		Plant: PlantConfig{
			A0: plant.DefaultA[0],
			A1: plant.DefaultA[1],
			A2: plant.DefaultA[2],
			B0: plant.DefaultB,
		},
		Actuator: ActuatorConfig{
			Min:  Floor(math.Inf(-1)),
			Max:  Inf(),
			Rate: Inf(),
		},
		Reference: []SetpointConfig{{At: 0, Value: 1}},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	return Overlay(path, DefaultConfig())
}

// Overlay reads a YAML file over a copy of base. Settings the file leaves
// out keep base's values; lists the file sets replace base's lists.
func Overlay(path string, base *Config) (*Config, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	path, err = homedir.Expand(path)
	if err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}

func readFile(path string) ([]byte, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(expanded)
}

// Validate reports the first tuning, plant or loop setting that cannot run.
func (c *Config) Validate() error {
	if _, err := c.tuning(); err != nil {
		return err
	}
	pl := c.PlantModel()
	if err := pl.Validate(); err != nil {
		return err
	}
	if n := len(c.Initial); n != 0 && n != pl.StateDim() {
		return fmt.Errorf("%w: initial state has %d entries, plant wants %d", dynamo.ErrDimensionMismatch, n, pl.StateDim())
	}
	if !dynamo.State(c.Initial).IsValid() {
		return fmt.Errorf("%w: initial state %v", dynamo.ErrInvalidState, c.Initial)
	}
	return c.Simulation().Validate()
}

func (c *Config) tuning() (*control.PID, error) {
	p := new(control.PID).ResetTuning()
	if g := c.Gains; g != nil {
		if err := p.SetGains(g.Kp, g.Ki, g.Kd, g.Kt); err != nil {
			return nil, err
		}
		return p, nil
	}
	p.Gain = c.Tuning.Gain
	p.DerivativeTime = c.Tuning.DerivativeTime
	p.FilterTime = float64(c.Tuning.FilterTime)
	p.IntegralTime = float64(c.Tuning.IntegralTime)
	p.ResetTime = float64(c.Tuning.ResetTime)
	if math.IsNaN(p.Gain) || math.IsInf(p.Gain, 0) {
		return nil, &control.TuningError{Param: control.ParamGain, Value: p.Gain}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// PID builds a controller ready to step.
func (c *Config) PID() (*control.PID, error) {
	p, err := c.tuning()
	if err != nil {
		return nil, err
	}
	return p.ResetTransient(), nil
}

// SetTuning stores p in time-scale form and drops any positional gains.
func (c *Config) SetTuning(p *control.PID) {
	c.Gains = nil
	c.Tuning = TuningConfig{
		Gain:           p.Gain,
		DerivativeTime: p.DerivativeTime,
		FilterTime:     Float(p.FilterTime),
		IntegralTime:   Float(p.IntegralTime),
		ResetTime:      Float(p.ResetTime),
	}
}

func (c *Config) PlantModel() *plant.ThirdOrder {
	return &plant.ThirdOrder{
		A: [3]float64{c.Plant.A0, c.Plant.A1, c.Plant.A2},
		B: c.Plant.B0,
	}
}

// Simulation converts the loop settings for dynamo.
func (c *Config) Simulation() dynamo.Config {
	sim := dynamo.DefaultConfig()
	sim.Dt = c.Dt
	sim.Duration = c.Duration
	sim.Seed = c.Seed
	sim.Actuator = dynamo.Actuator{
		Min:  float64(c.Actuator.Min),
		Max:  float64(c.Actuator.Max),
		Rate: float64(c.Actuator.Rate),
	}

	sim.Reference = make(dynamo.Reference, len(c.Reference))
	for i, sp := range c.Reference {
		sim.Reference[i] = dynamo.Setpoint{At: sp.At, Value: sp.Value}
	}

	for _, m := range c.Manual {
		signal := math.NaN()
		if m.Signal != nil {
			signal = *m.Signal
		}
		sim.Manual = append(sim.Manual, dynamo.ManualInterval{From: m.From, Until: m.Until, Signal: signal})
	}

	sim.Sampling = dynamo.Sampling{
		Jitter:          c.Sampling.Jitter,
		DropProbability: c.Sampling.DropProbability,
	}
	return sim
}

// InitialState is the configured plant state, or the plant at rest.
func (c *Config) InitialState() dynamo.State {
	if len(c.Initial) > 0 {
		return dynamo.State(c.Initial).Clone()
	}
	return make(dynamo.State, c.PlantModel().StateDim())
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	return reprint.This(c).(*Config)
}
