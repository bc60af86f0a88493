package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/helm/internal/config"
	"github.com/san-kum/helm/internal/dynamo"
)

var ErrNotSetup = errors.New("experiment: not set up")

// Experiment is one configured loop: the plant, an integrator, a
// controller of its own and the default metrics.
type Experiment struct {
	name       string
	cfg        *config.Config
	controller dynamo.Controller
	simulator  *dynamo.Simulator
}

// New keeps a private copy of cfg.
func New(name string, cfg *config.Config) *Experiment {
	return &Experiment{name: name, cfg: cfg.Clone()}
}

func (e *Experiment) Setup(r *Registry) error {
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", e.name, err)
	}

	integrator, err := r.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}
	controller, err := r.GetController(e.cfg.Controller, e.cfg)
	if err != nil {
		return err
	}

	e.controller = controller
	e.simulator = dynamo.New(e.cfg.PlantModel(), integrator, controller)
	for _, m := range r.DefaultMetrics() {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, ErrNotSetup
	}
	return e.simulator.Run(ctx, e.cfg.InitialState(), e.cfg.Simulation())
}

// Scenario hands the experiment to a dynamo.Ensemble.
func (e *Experiment) Scenario() (dynamo.Scenario, error) {
	if e.simulator == nil {
		return dynamo.Scenario{}, ErrNotSetup
	}
	return dynamo.Scenario{
		Name:      e.name,
		Simulator: e.simulator,
		X0:        e.cfg.InitialState(),
		Config:    e.cfg.Simulation(),
	}, nil
}

// Tuning reports the controller parameters, or nil for controllers that
// have none.
func (e *Experiment) Tuning() map[string]float64 {
	if c, ok := e.controller.(dynamo.Configurable); ok {
		return c.Params()
	}
	return nil
}

func (e *Experiment) Name() string { return e.name }

func (e *Experiment) Config() *config.Config { return e.cfg }

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *dynamo.Simulator {
	return e.simulator
}

// RunAll runs the experiments concurrently and returns their results in
// order.
func RunAll(ctx context.Context, experiments ...*Experiment) ([]*dynamo.Result, error) {
	scenarios := make([]dynamo.Scenario, len(experiments))
	for i, e := range experiments {
		sc, err := e.Scenario()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.name, err)
		}
		scenarios[i] = sc
	}
	return dynamo.NewEnsemble(scenarios...).Run(ctx)
}
