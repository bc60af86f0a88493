package control

// None never adjusts the requested signal, leaving the loop open.
type None struct{}

func NewNone() *None {
	return &None{}
}

func (n *None) Step(dt, reference, actual, requested, observable float64) float64 {
	return 0
}

func (n *None) Approach() {}
