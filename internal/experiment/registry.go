package experiment

import (
	"fmt"

	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/exp/slices"

	"github.com/san-kum/helm/internal/config"
	"github.com/san-kum/helm/internal/control"
	"github.com/san-kum/helm/internal/dynamo"
	"github.com/san-kum/helm/internal/integrators"
	"github.com/san-kum/helm/internal/metrics"
	"github.com/san-kum/helm/internal/plant"
)

type (
	IntegratorFactory func() dynamo.Integrator
	ControllerFactory func(cfg *config.Config) (dynamo.Controller, error)
)

type Registry struct {
	integrators cmap.ConcurrentMap[string, IntegratorFactory]
	controllers cmap.ConcurrentMap[string, ControllerFactory]
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: cmap.New[IntegratorFactory](),
		controllers: cmap.New[ControllerFactory](),
	}

	r.RegisterIntegrator("euler", func() dynamo.Integrator { return integrators.NewEuler() })
	r.RegisterIntegrator("rk4", func() dynamo.Integrator { return integrators.NewRK4() })
	r.RegisterIntegrator("semi_implicit", func() dynamo.Integrator { return integrators.NewSemiImplicit() })
	r.RegisterIntegrator("closed_form", func() dynamo.Integrator { return plant.Stepper{} })

	r.RegisterController("none", func(*config.Config) (dynamo.Controller, error) {
		return control.NewNone(), nil
	})
	r.RegisterController("pid", func(cfg *config.Config) (dynamo.Controller, error) {
		pid, err := cfg.PID()
		if err != nil {
			return nil, err
		}
		return pid, nil
	})

	return r
}

func (r *Registry) RegisterIntegrator(name string, fn IntegratorFactory) {
	r.integrators.Set(name, fn)
}

func (r *Registry) RegisterController(name string, fn ControllerFactory) {
	r.controllers.Set(name, fn)
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// GetController builds a fresh controller, so no two loops share one.
func (r *Registry) GetController(name string, cfg *config.Config) (dynamo.Controller, error) {
	fn, ok := r.controllers.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
	return fn(cfg)
}

func (r *Registry) ListIntegrators() []string {
	names := r.integrators.Keys()
	slices.Sort(names)
	return names
}

func (r *Registry) ListControllers() []string {
	names := r.controllers.Keys()
	slices.Sort(names)
	return names
}

func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewIAE(),
		metrics.NewISE(),
		metrics.NewOvershoot(),
		metrics.NewControlEffort(),
		metrics.NewSaturation(),
		metrics.NewSteadyStateError(metrics.DefaultSteadyStateWindow),
	}
}
