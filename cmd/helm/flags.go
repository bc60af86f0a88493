package main

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/helm/internal/config"
	"github.com/san-kum/helm/internal/ui"
)

var errMixedTuning = errors.New("use either --gain/--td/--tf/--ti/--tt or --kp/--ki/--kd/--kt, not both")

var (
	gainFlag float64
	tdFlag   float64
	tfFlag   = config.Inf()
	tiFlag   = config.Inf()
	ttFlag   = config.Inf()

	kpFlag float64
	kiFlag float64
	kdFlag float64
	ktFlag float64

	uminFlag   = -config.Inf()
	umaxFlag   = config.Inf()
	rateFlag   = config.Inf()
	jitterFlag float64
	dropFlag   float64
)

// floatValue is a flag that also accepts "inf", "-inf" and "off".
// "off" sets off, which is +Inf except for lower limits.
type floatValue struct {
	p   *config.Float
	off config.Float
}

func newFloatValue(p *config.Float) floatValue {
	return floatValue{p: p, off: config.Inf()}
}

func newFloorValue(p *config.Float) floatValue {
	return floatValue{p: p, off: -config.Inf()}
}

func (f floatValue) String() string {
	return ui.Number(float64(*f.p))
}

func (f floatValue) Set(s string) error {
	if strings.EqualFold(s, "off") {
		*f.p = f.off
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f.p = config.Float(v)
	return nil
}

func (f floatValue) Type() string {
	return "float|off"
}

func addLoopFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&dtFlag, "dt", config.DefaultDt, "timestep")
	f.Float64Var(&timeFlag, "time", config.DefaultDuration, "duration")
	f.Int64Var(&seedFlag, "seed", 0, "random seed for jitter and dropped samples")
	f.StringVar(&integratorName, "integrator", config.DefaultIntegrator, "integrator")
	f.StringVar(&controllerName, "controller", config.DefaultController, "controller")

	f.Float64Var(&gainFlag, "gain", 1, "proportional gain")
	f.Float64Var(&tdFlag, "td", 0, "derivative time")
	f.Var(newFloatValue(&tfFlag), "tf", "derivative filter time")
	f.Var(newFloatValue(&tiFlag), "ti", "integral time")
	f.Var(newFloatValue(&ttFlag), "tt", "automatic reset time")

	f.Float64Var(&kpFlag, "kp", 1, "proportional gain (gain form)")
	f.Float64Var(&kiFlag, "ki", 0, "integral gain")
	f.Float64Var(&kdFlag, "kd", 0, "derivative gain")
	f.Float64Var(&ktFlag, "kt", 0, "automatic reset gain")

	f.Var(newFloorValue(&uminFlag), "umin", "actuator lower limit")
	f.Var(newFloatValue(&umaxFlag), "umax", "actuator upper limit")
	f.Var(newFloatValue(&rateFlag), "rate", "actuator rate limit per unit time")
	f.Float64Var(&jitterFlag, "jitter", 0, "relative timestep jitter in [0, 1)")
	f.Float64Var(&dropFlag, "drop", 0, "probability of a lost measurement in [0, 1)")
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()

	if f.Changed("dt") {
		cfg.Dt = dtFlag
	}
	if f.Changed("time") {
		cfg.Duration = timeFlag
	}
	if f.Changed("seed") {
		cfg.Seed = seedFlag
	}
	if f.Changed("integrator") {
		cfg.Integrator = integratorName
	}
	if f.Changed("controller") {
		cfg.Controller = controllerName
	}

	timeScales := anyChanged(cmd, "gain", "td", "tf", "ti", "tt")
	gains := anyChanged(cmd, "kp", "ki", "kd", "kt")
	if timeScales && gains {
		return errMixedTuning
	}

	if gains {
		if cfg.Gains == nil {
			p, err := cfg.PID()
			if err != nil {
				return err
			}
			kp, ki, kd, kt := p.Gains()
			cfg.Gains = &config.GainsConfig{Kp: kp, Ki: ki, Kd: kd, Kt: kt}
		}
		if f.Changed("kp") {
			cfg.Gains.Kp = kpFlag
		}
		if f.Changed("ki") {
			cfg.Gains.Ki = kiFlag
		}
		if f.Changed("kd") {
			cfg.Gains.Kd = kdFlag
		}
		if f.Changed("kt") {
			cfg.Gains.Kt = ktFlag
		}
	}

	if timeScales {
		if cfg.Gains != nil {
			p, err := cfg.PID()
			if err != nil {
				return err
			}
			cfg.SetTuning(p)
		}
		if f.Changed("gain") {
			cfg.Tuning.Gain = gainFlag
		}
		if f.Changed("td") {
			cfg.Tuning.DerivativeTime = tdFlag
		}
		if f.Changed("tf") {
			cfg.Tuning.FilterTime = tfFlag
		}
		if f.Changed("ti") {
			cfg.Tuning.IntegralTime = tiFlag
		}
		if f.Changed("tt") {
			cfg.Tuning.ResetTime = ttFlag
		}
	}

	if f.Changed("umin") {
		cfg.Actuator.Min = config.Floor(uminFlag)
	}
	if f.Changed("umax") {
		cfg.Actuator.Max = umaxFlag
	}
	if f.Changed("rate") {
		cfg.Actuator.Rate = rateFlag
	}
	if f.Changed("jitter") {
		cfg.Sampling.Jitter = jitterFlag
	}
	if f.Changed("drop") {
		cfg.Sampling.DropProbability = dropFlag
	}

	return cfg.Validate()
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}
