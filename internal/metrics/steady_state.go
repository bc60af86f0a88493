package metrics

import (
	"math"

	"github.com/asecurityteam/rolling"

	"github.com/san-kum/helm/internal/dynamo"
)

const DefaultSteadyStateWindow = 100

// SteadyStateError is the mean absolute tracking error over the last
// window valid samples of the run.
type SteadyStateError struct {
	size   int
	filled int
	window *rolling.PointPolicy
}

func NewSteadyStateError(size int) *SteadyStateError {
	if size < 1 {
		size = DefaultSteadyStateWindow
	}
	m := &SteadyStateError{size: size}
	m.Reset()
	return m
}

func (m *SteadyStateError) Name() string {
	return "steady_state_error"
}

func (m *SteadyStateError) Observe(s dynamo.Sample) {
	if math.IsNaN(s.Observable) {
		return
	}
	m.window.Append(math.Abs(s.Reference - s.Observable))
	m.filled = min(m.filled+1, m.size)
}

func (m *SteadyStateError) Value() float64 {
	if m.filled == 0 {
		return 0
	}
	// Unfilled points hold zero, so the sum only needs the filled count.
	return m.window.Reduce(rolling.Sum) / float64(m.filled)
}

func (m *SteadyStateError) Reset() {
	m.window = rolling.NewPointPolicy(rolling.NewWindow(m.size))
	m.filled = 0
}
