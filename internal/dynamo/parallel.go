package dynamo

import (
	"context"
	"sync"
)

// Scenario is one independent closed-loop run. Scenarios in an ensemble
// must not share a controller; each loop owns its own.
type Scenario struct {
	Name      string
	Simulator *Simulator
	X0        State
	Config    Config
}

type Ensemble struct {
	scenarios []Scenario
}

func NewEnsemble(scenarios ...Scenario) *Ensemble {
	return &Ensemble{scenarios: scenarios}
}

// Run executes every scenario concurrently and returns the results in
// scenario order.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(e.scenarios))
	errs := make([]error, len(e.scenarios))

	var wg sync.WaitGroup
	for i := range e.scenarios {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			sc := e.scenarios[idx]
			results[idx], errs[idx] = sc.Simulator.Run(ctx, sc.X0, sc.Config)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
