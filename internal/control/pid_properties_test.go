package control_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/helm/internal/control"
)

var _ = Describe("PID", func() {
	var pid *control.PID

	BeforeEach(func() {
		pid = control.NewPID()
	})

	Context("with every optional action disabled", func() {
		It("acts purely proportionally on the observable increment", func() {
			pid.Gain = 2.5
			pid.ResetTransient()

			ys := []float64{0.3, 1.1, 0.7, -2, -2, 4}
			last := ys[0]
			for i, y := range ys {
				dv := pid.Step(0.01*float64(i+1), 9, -1, 3, y)
				Expect(dv).To(Equal(pid.Gain*-(y-last)), "sample %d", i)
				last = y
			}
		})
	})

	Context("after ResetTransient", func() {
		It("does not kick on the first sample", func() {
			pid.DerivativeTime = 0.4
			pid.FilterTime = 0.1
			pid.ResetTransient()

			Expect(pid.Step(0.05, 2, 1, 1, 2)).To(BeZero())
			f, ok := pid.Filtered()
			Expect(ok).To(BeTrue())
			Expect(f).To(Equal(2.0))
		})

		It("treats a resumed loop like a fresh start", func() {
			pid.IntegralTime = 1
			pid.ResetTransient()
			pid.Step(0.1, 1, 0, 0, 0)
			pid.Step(0.1, 1, 0, 0, 0.2)

			pid.ResetTransient()
			Expect(pid.Step(0.1, 0.9, 0, 0, 0.9)).To(BeZero())
		})
	})

	Context("when the sample is missing", func() {
		It("returns zero without advancing state", func() {
			pid.DerivativeTime = 1
			pid.FilterTime = 0.5
			pid.ResetTransient()
			pid.Step(0.1, 0, 0, 0, 1)

			before, _ := pid.Filtered()
			Expect(pid.Step(0.1, 0, 0, 0, math.NaN())).To(Equal(0.0))
			after, _ := pid.Filtered()
			Expect(after).To(Equal(before))
		})
	})

	Context("filtering", func() {
		DescribeTable("keeps the filter a convex blend of old and new samples",
			func(dt, filterTime float64) {
				pid.DerivativeTime = 1
				pid.FilterTime = filterTime
				pid.ResetTransient()

				pid.Step(dt, 0, 0, 0, 0)
				pid.Step(dt, 0, 0, 0, 1)

				f, _ := pid.Filtered()
				Expect(f).To(BeNumerically(">=", 0))
				Expect(f).To(BeNumerically("<", 1))
				Expect(f).To(BeNumerically("~", dt/(filterTime+dt), 1e-15))
			},
			Entry("vanishing step", 0.0, 1.0),
			Entry("small step", 1e-6, 1.0),
			Entry("comparable step", 1.0, 1.0),
			Entry("long step", 1e6, 1.0),
		)
	})

	Context("under actuator saturation", func() {
		It("pulls the request toward the realized signal", func() {
			pid.ResetTime = 0.5
			pid.ResetTransient()

			const actual = 1.0
			requested := 3.0
			pid.Step(0.1, 0, actual, requested, 0)
			for i := 0; i < 200; i++ {
				dv := pid.Step(0.1, 0, actual, requested, 0)
				Expect(dv).To(BeNumerically("~", (actual-requested)/pid.ResetTime*0.1, 1e-12))
				requested += dv
			}
			Expect(requested).To(BeNumerically("~", actual, 1e-6))
		})
	})

	Context("with an out of domain tuning", func() {
		It("panics when approached", func() {
			pid.IntegralTime = 0
			Expect(func() { pid.ResetTransient() }).To(PanicWith(BeAssignableToTypeOf(&control.TuningError{})))
			Expect(pid.Validate()).To(MatchError(control.ErrTuningBounds))
		})
	})
})
