package models

import (
	"math"

	"github.com/notargets/fdtransport/boundary"
	"github.com/notargets/fdtransport/field"
	"github.com/notargets/fdtransport/runner"
	"github.com/notargets/fdtransport/stepper"
)

const (
	S5MassTransferName     = "s5-mass-transfer"
	S5MassHeatTransferName = "s5-mass-heat-transfer"
)

// upwindPair returns a = M/h² - r/h and b = M/h² for transport at speed v with
// diffusivity d, where r = -v/d and M = 1/(1 + h·v/2d)
func upwindPair(v, d, h float64) (a, b float64) {
	r := -v / d
	M := 1 / (1 + h*v/(2*d))
	return M/(h*h) - r/h, M / (h * h)
}

// S5MassTransferConfig parameterizes groundwater mass transfer between two heads
type S5MassTransferConfig struct {
	N       float64 `yaml:"n"`
	K       float64 `yaml:"k"`
	D       float64 `yaml:"d"`
	H1      float64 `yaml:"h1"`
	H2      float64 `yaml:"h2"`
	Length  float64 `yaml:"length"`
	Tau     float64 `yaml:"tau"`
	Sigma   float64 `yaml:"sigma"`
	Spacing float64 `yaml:"spacing"`
	Gamma   float64 `yaml:"gamma"`
	Times   int     `yaml:"times"`
}

func DefaultS5MassTransferConfig() S5MassTransferConfig {
	return S5MassTransferConfig{
		N:       7,
		K:       1.25,
		D:       0.07,
		H1:      1.5 + 0.1*math.Sin(7),
		H2:      0.5 + 0.1*math.Cos(7),
		Length:  50,
		Tau:     30,
		Sigma:   0.2,
		Spacing: 2.5,
		Gamma:   0.00065,
		Times:   4,
	}
}

type S5MassTransfer struct {
	base
	Config S5MassTransferConfig
	memo   memo[S5MassTransferConfig]
}

func NewS5MassTransfer(cfg S5MassTransferConfig) *S5MassTransfer {
	return &S5MassTransfer{Config: cfg}
}

func (m *S5MassTransfer) Name() string        { return S5MassTransferName }
func (m *S5MassTransfer) Outputs() []Output   { return []Output{OutputMass} }
func (m *S5MassTransfer) Params() interface{} { return &m.Config }

func (m *S5MassTransfer) Presentation() Presentation {
	p := defaultPresentation()
	p.ChartStepX, p.ChartStepY, p.MaxX = m.Config.Spacing, m.Config.Tau, m.Config.Length
	return p
}

func (m *S5MassTransfer) Validate() error {
	c := m.Config
	return firstError(
		positive(S5MassTransferName, "d", c.D),
		positive(S5MassTransferName, "length", c.Length),
		positive(S5MassTransferName, "tau", c.Tau),
		positive(S5MassTransferName, "sigma", c.Sigma),
		positive(S5MassTransferName, "spacing", c.Spacing),
		nonNegative(S5MassTransferName, "times", c.Times),
	)
}

func (m *S5MassTransfer) Compute(out Output) (field.Series, error) { return compute(m, out) }

func (m *S5MassTransfer) ComputeAll() (*Results, error) {
	return m.memo.get(m.Config, &m.base, m.compute)
}

func (m *S5MassTransfer) compute() (*Results, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	c := m.Config
	g, err := grid1D(S5MassTransferName, c.Length, c.Spacing)
	if err != nil {
		return nil, err
	}
	h := g.Spacing()
	V := GroundwaterSpeed(c.H1, c.H2, c.K, c.Length)
	fk := c.Sigma / (c.D * c.Tau)
	fp := c.Gamma * 0.1 * c.K / c.D

	a, b := upwindPair(V, c.D, h)
	right := (c.N - 6) + math.Pow(math.Sin(c.N*c.Length), 2) + 0.2

	s := &stepper.Stepper1D{
		Name:     OutputMass.String(),
		Grid:     g,
		Boundary: boundary.Pair{Left: boundary.Constant(0), Right: boundary.Constant(right)},
		Initial: func(i int) float64 {
			return (c.N - 6) + math.Pow(math.Sin(c.N*float64(i)*h), 2)
		},
		Operator: stepper.ConstantOperator(a, b, a+b+c.Gamma/c.D+fk),
		Source: func(ctx stepper.Context, i int, _ float64) float64 {
			return (fk + fp) * ctx.Prev[i]
		},
	}
	st, err := m.run(S5MassTransferName, c.Times, runner.Sequential, runner.Field(s.Name).Stepper(s))
	if st == nil {
		return nil, err
	}
	return newResults(S5MassTransferName, st, OutputMass), err
}

// S5MassHeatTransferConfig parameterizes groundwater heat transfer feeding mass
// transfer through a thermal diffusion term
type S5MassHeatTransferConfig struct {
	K       float64 `yaml:"k"`
	Kappa   float64 `yaml:"kappa"`
	Cp      float64 `yaml:"cp"`
	Cn      float64 `yaml:"cn"`
	Lambda  float64 `yaml:"lambda"`
	D       float64 `yaml:"d"`
	Dt      float64 `yaml:"dt"`
	H1      float64 `yaml:"h1"`
	H2      float64 `yaml:"h2"`
	Length  float64 `yaml:"length"`
	Tau     float64 `yaml:"tau"`
	Sigma   float64 `yaml:"sigma"`
	Spacing float64 `yaml:"spacing"`
	T1      float64 `yaml:"t1"`
	T2      float64 `yaml:"t2"`
	Gamma   float64 `yaml:"gamma"`
	Times   int     `yaml:"times"`
}

func DefaultS5MassHeatTransferConfig() S5MassHeatTransferConfig {
	return S5MassHeatTransferConfig{
		K:       7,
		Kappa:   1.5,
		Cp:      4.2e6,
		Cn:      3e6,
		Lambda:  0.5,
		D:       0.2,
		Dt:      0.04,
		H1:      1.5,
		H2:      0.5,
		Length:  100,
		Tau:     30,
		Sigma:   0.2,
		Spacing: 20,
		T1:      140,
		T2:      15,
		Gamma:   0.065,
		Times:   4,
	}
}

type S5MassHeatTransfer struct {
	base
	Config S5MassHeatTransferConfig
	memo   memo[S5MassHeatTransferConfig]
}

func NewS5MassHeatTransfer(cfg S5MassHeatTransferConfig) *S5MassHeatTransfer {
	return &S5MassHeatTransfer{Config: cfg}
}

func (m *S5MassHeatTransfer) Name() string        { return S5MassHeatTransferName }
func (m *S5MassHeatTransfer) Outputs() []Output   { return []Output{OutputHeat, OutputMass} }
func (m *S5MassHeatTransfer) Params() interface{} { return &m.Config }

func (m *S5MassHeatTransfer) Presentation() Presentation {
	p := defaultPresentation()
	p.ChartStepX, p.ChartStepY, p.MaxX = m.Config.Spacing, m.Config.Tau, m.Config.Length
	return p
}

func (m *S5MassHeatTransfer) Validate() error {
	c := m.Config
	return firstError(
		positive(S5MassHeatTransferName, "lambda", c.Lambda),
		positive(S5MassHeatTransferName, "cp", c.Cp),
		positive(S5MassHeatTransferName, "d", c.D),
		positive(S5MassHeatTransferName, "length", c.Length),
		positive(S5MassHeatTransferName, "tau", c.Tau),
		positive(S5MassHeatTransferName, "sigma", c.Sigma),
		positive(S5MassHeatTransferName, "spacing", c.Spacing),
		nonNegative(S5MassHeatTransferName, "times", c.Times),
	)
}

func (m *S5MassHeatTransfer) Compute(out Output) (field.Series, error) { return compute(m, out) }

func (m *S5MassHeatTransfer) ComputeAll() (*Results, error) {
	return m.memo.get(m.Config, &m.base, m.compute)
}

func (m *S5MassHeatTransfer) compute() (*Results, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	c := m.Config
	g, err := grid1D(S5MassHeatTransferName, c.Length, c.Spacing)
	if err != nil {
		return nil, err
	}
	h := g.Spacing()
	n := g.Intervals()
	V := GroundwaterSpeed(c.H1, c.H2, c.Kappa, c.Length)

	ntTau := c.Cn / c.Lambda / c.Tau
	ah, bh := upwindPair(V, c.Lambda/c.Cp, h)
	heat := &stepper.Stepper1D{
		Name:     OutputHeat.String(),
		Grid:     g,
		Boundary: boundary.Pair{Left: boundary.Constant(c.T1), Right: boundary.Constant(c.T2)},
		Initial:  boundary.Linear(c.T1, c.T2, n),
		Operator: stepper.ConstantOperator(ah, bh, ah+bh+ntTau),
		Source: func(ctx stepper.Context, i int, _ float64) float64 {
			return ntTau * ctx.Prev[i]
		},
	}

	fk := c.Sigma / (c.D * c.Tau)
	f21 := c.Gamma * 0.1 * c.Kappa / c.D
	am, bm := upwindPair(V, c.D, h)
	mass := &stepper.Stepper1D{
		Name: OutputMass.String(),
		Grid: g,
		Boundary: boundary.Pair{
			Left:  boundary.Scaled(c.Tau, func(t float64) float64 { return t * t * math.Exp(-0.1*t*c.K) }),
			Right: boundary.Scaled(c.Tau, func(t float64) float64 { return t * t * math.Exp(-0.2*t*c.K) }),
		},
		Initial:   boundary.Uniform(0),
		Operator:  stepper.ConstantOperator(am, bm, am+bm+c.Gamma/c.D+fk),
		Couplings: []stepper.Coupling{{Field: heat.Name, Scale: c.Dt / c.D}},
		Source: func(ctx stepper.Context, i int, coupling float64) float64 {
			return f21 + coupling + fk*ctx.Prev[i]
		},
	}

	st, err := m.run(S5MassHeatTransferName, c.Times, runner.Sequential,
		runner.Field(heat.Name).Stepper(heat),
		runner.Field(mass.Name).Stepper(mass).DependsOn(heat.Name),
	)
	if st == nil {
		return nil, err
	}
	return newResults(S5MassHeatTransferName, st, OutputHeat, OutputMass), err
}

func init() {
	register(S5MassTransferName, func() Model { return NewS5MassTransfer(DefaultS5MassTransferConfig()) })
	register(S5MassHeatTransferName, func() Model { return NewS5MassHeatTransfer(DefaultS5MassHeatTransferConfig()) })
}
