package models

import (
	"math"

	"github.com/notargets/fdtransport/boundary"
	"github.com/notargets/fdtransport/field"
	"github.com/notargets/fdtransport/runner"
	"github.com/notargets/fdtransport/stepper"
	"github.com/notargets/fdtransport/tridiag"
	"github.com/notargets/fdtransport/utils"
)

const (
	S4MassTransferName = "s4-mass-transfer"
	S4HeatTransferName = "s4-heat-transfer"
)

// S4MassTransferConfig parameterizes upwind mass transfer under a linear
// filtration profile. Length and Intervals are whole numbers.
type S4MassTransferConfig struct {
	K         float64 `yaml:"k"`
	D         float64 `yaml:"d"`
	Cm        float64 `yaml:"cm"`
	Times     int     `yaml:"times"`
	Intervals int     `yaml:"intervals"`
	Length    int     `yaml:"length"`
	NN        float64 `yaml:"nn"`
	Gamma     float64 `yaml:"gamma"`
}

func DefaultS4MassTransferConfig() S4MassTransferConfig {
	return S4MassTransferConfig{
		K:         1.65,
		D:         0.08,
		Cm:        10,
		Times:     5,
		Intervals: 10,
		Length:    50,
		NN:        13.0 / 23,
		Gamma:     19.5e-5,
	}
}

type S4MassTransfer struct {
	base
	Config S4MassTransferConfig
	memo   memo[S4MassTransferConfig]
}

func NewS4MassTransfer(cfg S4MassTransferConfig) *S4MassTransfer {
	return &S4MassTransfer{Config: cfg}
}

func (m *S4MassTransfer) Name() string        { return S4MassTransferName }
func (m *S4MassTransfer) Outputs() []Output   { return []Output{OutputMass} }
func (m *S4MassTransfer) Params() interface{} { return &m.Config }

func (m *S4MassTransfer) Presentation() Presentation { return defaultPresentation() }

func (m *S4MassTransfer) Validate() error {
	c := m.Config
	return firstError(
		positive(S4MassTransferName, "d", c.D),
		positive(S4MassTransferName, "nn", c.NN),
		nonNegative(S4MassTransferName, "times", c.Times),
		positive(S4MassTransferName, "intervals", float64(c.Intervals)),
		positive(S4MassTransferName, "length", float64(c.Length)),
	)
}

func (m *S4MassTransfer) Compute(out Output) (field.Series, error) { return compute(m, out) }

func (m *S4MassTransfer) ComputeAll() (*Results, error) {
	return m.memo.get(m.Config, &m.base, m.compute)
}

func (m *S4MassTransfer) compute() (*Results, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	c := m.Config
	g, err := grid1D(S4MassTransferName, float64(c.Length), float64(c.Length)/float64(c.Intervals))
	if err != nil {
		return nil, err
	}
	n := g.Intervals()
	h := g.Spacing()
	U := FilteringSpeed(c.K, c.Length, c.Intervals)

	// coefficients depend only on the filtration profile, which is steady
	k := tridiag.NewArrays(n)
	for j := 0; j <= n; j++ {
		N := c.D / (1 + h*math.Abs(U[j])/(2*c.D))
		R, r := utils.UpwindSplit(U[j])
		k.A[j] = (N/(h*h) - r/h) / c.NN
		k.B[j] = (N/(h*h) - R/h) / c.NN
		k.C[j] = 1 + (k.A[j]+k.B[j]+c.Gamma)/c.NN
	}
	f := c.Gamma * c.Cm / c.NN

	s := &stepper.Stepper1D{
		Name:     OutputMass.String(),
		Grid:     g,
		Boundary: boundary.Pair{Left: boundary.Constant(c.Cm), Right: boundary.Constant(c.Cm)},
		Initial:  boundary.Uniform(c.Cm * math.Exp(-5*float64(n)*h)),
		Operator: func(stepper.Context) (tridiag.Coefficients, error) { return k, nil },
		Source: func(ctx stepper.Context, i int, coupling float64) float64 {
			return ctx.Prev[i] + f + coupling
		},
		Scheme: tridiag.ExplicitAlfa,
		Terminal: func(alfa, beta []float64) float64 {
			un := U[n]
			return (-un*10*h/c.D + beta[n-1]) / (1 - un*h/c.D - alfa[n-1])
		},
	}
	st, err := m.run(S4MassTransferName, c.Times, runner.Sequential, runner.Field(s.Name).Stepper(s))
	if st == nil {
		return nil, err
	}
	return newResults(S4MassTransferName, st, OutputMass), err
}

// S4HeatTransferConfig parameterizes upwind heat transfer with a convective
// (Robin) left end
type S4HeatTransferConfig struct {
	K         float64 `yaml:"k"`
	Lambda    float64 `yaml:"lambda"`
	Ct        float64 `yaml:"ct"`
	Cp        float64 `yaml:"cp"`
	Rho       float64 `yaml:"rho"`
	Tz        float64 `yaml:"tz"`
	Alpha     float64 `yaml:"alpha"`
	Times     int     `yaml:"times"`
	Length    int     `yaml:"length"`
	Intervals int     `yaml:"intervals"`
	Left      float64 `yaml:"left"`
	Right     float64 `yaml:"right"`
}

func DefaultS4HeatTransferConfig() S4HeatTransferConfig {
	return S4HeatTransferConfig{
		K:         1.65,
		Lambda:    93,
		Ct:        720,
		Cp:        440,
		Rho:       1003,
		Tz:        40,
		Alpha:     0.1,
		Times:     5,
		Length:    2,
		Intervals: 10,
		Left:      5,
		Right:     2,
	}
}

type S4HeatTransfer struct {
	base
	Config S4HeatTransferConfig
	memo   memo[S4HeatTransferConfig]
}

func NewS4HeatTransfer(cfg S4HeatTransferConfig) *S4HeatTransfer {
	return &S4HeatTransfer{Config: cfg}
}

func (m *S4HeatTransfer) Name() string        { return S4HeatTransferName }
func (m *S4HeatTransfer) Outputs() []Output   { return []Output{OutputHeat} }
func (m *S4HeatTransfer) Params() interface{} { return &m.Config }

func (m *S4HeatTransfer) Presentation() Presentation { return defaultPresentation() }

func (m *S4HeatTransfer) Validate() error {
	c := m.Config
	return firstError(
		positive(S4HeatTransferName, "lambda", c.Lambda),
		positive(S4HeatTransferName, "ct", c.Ct),
		nonNegative(S4HeatTransferName, "times", c.Times),
		positive(S4HeatTransferName, "length", float64(c.Length)),
		atLeast(S4HeatTransferName, "intervals", c.Intervals, 2),
	)
}

func (m *S4HeatTransfer) Compute(out Output) (field.Series, error) { return compute(m, out) }

func (m *S4HeatTransfer) ComputeAll() (*Results, error) {
	return m.memo.get(m.Config, &m.base, m.compute)
}

func (m *S4HeatTransfer) compute() (*Results, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	c := m.Config
	g, err := grid1D(S4HeatTransferName, float64(c.Length), float64(c.Length)/float64(c.Intervals))
	if err != nil {
		return nil, err
	}
	n := g.Intervals()
	h := g.Spacing()
	l := float64(c.Length)
	U := FilteringSpeed(-5*c.K, c.Length, c.Intervals)

	k := tridiag.NewArrays(n)
	for j := 0; j <= n; j++ {
		N := c.Lambda / (1 + h*math.Abs(c.Rho*c.Cp*U[j])/(2*c.Lambda))
		R, r := utils.UpwindSplit(U[j])
		k.A[j] = (N/(h*h) - r/h) / c.Ct
		k.B[j] = (N/(h*h) - R/h) / c.Ct
		k.C[j] = 1 + (k.A[j]+k.B[j])/c.Ct
	}
	ah := c.Alpha * h
	seed := tridiag.Seed{
		Alfa: c.Lambda / (ah + c.Lambda),
		Beta: ah * c.Tz / (ah + c.Lambda),
	}

	s := &stepper.Stepper1D{
		Name:     OutputHeat.String(),
		Grid:     g,
		Boundary: boundary.Pair{Left: boundary.Constant(c.Left), Right: boundary.Constant(c.Right)},
		Initial: func(i int) float64 {
			return 5 * math.Exp(l-float64(i)*h)
		},
		Operator: func(stepper.Context) (tridiag.Coefficients, error) { return k, nil },
		Scheme:   tridiag.ExplicitAlfa,
		Seed:     func(stepper.Context) tridiag.Seed { return seed },
		Terminal: func(alfa, beta []float64) float64 {
			return (-ah*alfa[1]*c.Tz + c.Lambda + beta[1]) / (-(c.Lambda+ah)*alfa[1] + c.Lambda)
		},
	}
	st, err := m.run(S4HeatTransferName, c.Times, runner.Sequential, runner.Field(s.Name).Stepper(s))
	if st == nil {
		return nil, err
	}
	return newResults(S4HeatTransferName, st, OutputHeat), err
}

func init() {
	register(S4MassTransferName, func() Model { return NewS4MassTransfer(DefaultS4MassTransferConfig()) })
	register(S4HeatTransferName, func() Model { return NewS4HeatTransfer(DefaultS4HeatTransferConfig()) })
}
