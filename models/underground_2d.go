package models

import (
	"github.com/notargets/fdtransport/boundary"
	"github.com/notargets/fdtransport/field"
	"github.com/notargets/fdtransport/grid"
	"github.com/notargets/fdtransport/runner"
	"github.com/notargets/fdtransport/stepper"
	"github.com/notargets/fdtransport/tridiag"
)

const (
	S5MassTransfer2DName     = "s5-2d-mass-transfer"
	S5MassHeatTransfer2DName = "s5-2d-mass-heat-transfer"
)

// S5MassTransfer2DConfig parameterizes groundwater mass transfer over an Lx by By
// section. Row 0 is the top edge held at Cm.
type S5MassTransfer2DConfig struct {
	K     float64 `yaml:"k"`
	D     float64 `yaml:"d"`
	Lx    float64 `yaml:"lx"`
	By    float64 `yaml:"by"`
	Tau   float64 `yaml:"tau"`
	Sigma float64 `yaml:"sigma"`
	Hx    float64 `yaml:"hx"`
	Hy    float64 `yaml:"hy"`
	H1    float64 `yaml:"h1"`
	H2    float64 `yaml:"h2"`
	C1    float64 `yaml:"c1"`
	C2    float64 `yaml:"c2"`
	Cm    float64 `yaml:"cm"`
	Gamma float64 `yaml:"gamma"`
	Times int     `yaml:"times"`
}

func DefaultS5MassTransfer2DConfig() S5MassTransfer2DConfig {
	return S5MassTransfer2DConfig{
		K:     1.5,
		D:     0.02,
		Lx:    100,
		By:    10,
		Tau:   30,
		Sigma: 0.4,
		Hx:    10,
		Hy:    2,
		H1:    1.5,
		H2:    0.5,
		C1:    350,
		C2:    40,
		Cm:    350,
		Gamma: 0.0065,
		Times: 4,
	}
}

func (c S5MassTransfer2DConfig) validate(model string) error {
	return firstError(
		positive(model, "d", c.D),
		positive(model, "tau", c.Tau),
		positive(model, "sigma", c.Sigma),
		nonNegative(model, "times", c.Times),
	)
}

func (c S5MassTransfer2DConfig) presentation() Presentation {
	p := defaultPresentation()
	p.ChartStepX, p.ChartStepY, p.StepTime, p.MaxX = c.Hx, c.Hy, c.Tau, c.Lx
	p.Is3D = true
	return p
}

// massStepper builds the uncoupled 2-D mass field: rhs σ/(Dτ)·prev + γCx/2D
func (c S5MassTransfer2DConfig) massStepper(g grid.Grid2D) *stepper.ADI2D {
	nx := g.X.Intervals()
	hx, hy := g.X.Spacing(), g.Y.Spacing()
	V := GroundwaterSpeed(c.H1, c.H2, c.K, c.Lx)
	fk := c.Sigma / (c.D * c.Tau)
	decay := c.Gamma / (2 * c.D)
	fp := c.Gamma * 0.1 * c.Cm / (2 * c.D)

	ax, bx := upwindPair(V, c.D, hx)
	ay := 1 / (hy * hy)
	src := func(ctx stepper.Context2D, row, col int, _ float64) float64 {
		return fk*ctx.Prev.At(row, col) + fp
	}
	linear := boundary.Linear(c.C1, c.C2, nx)
	return &stepper.ADI2D{
		Name:    OutputMass.String(),
		Grid:    g,
		Left:    boundary.Constant(c.C1),
		Right:   boundary.Constant(c.C2),
		EdgeRow: boundary.Uniform(c.Cm),
		Initial: func(row, col int) float64 {
			switch {
			case col == 0:
				return c.C1
			case col == nx:
				return c.C2
			case row == 0:
				return c.Cm
			}
			return linear(col)
		},
		X:       tridiag.Constant{A: ax, B: bx, C: ax + bx + decay + fk},
		Y:       tridiag.Constant{A: ay, B: ay, C: 2*ay + decay + fk},
		SourceX: src,
		SourceY: src,
	}
}

type S5MassTransfer2D struct {
	base
	Config S5MassTransfer2DConfig
	memo   memo[S5MassTransfer2DConfig]
}

func NewS5MassTransfer2D(cfg S5MassTransfer2DConfig) *S5MassTransfer2D {
	return &S5MassTransfer2D{Config: cfg}
}

func (m *S5MassTransfer2D) Name() string               { return S5MassTransfer2DName }
func (m *S5MassTransfer2D) Outputs() []Output          { return []Output{OutputMass} }
func (m *S5MassTransfer2D) Params() interface{}        { return &m.Config }
func (m *S5MassTransfer2D) Presentation() Presentation { return m.Config.presentation() }
func (m *S5MassTransfer2D) Validate() error            { return m.Config.validate(S5MassTransfer2DName) }

func (m *S5MassTransfer2D) Compute(out Output) (field.Series, error) { return compute(m, out) }

func (m *S5MassTransfer2D) ComputeAll() (*Results, error) {
	return m.memo.get(m.Config, &m.base, m.compute)
}

func (m *S5MassTransfer2D) compute() (*Results, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	c := m.Config
	g, err := grid2D(S5MassTransfer2DName, c.Lx, c.Hx, c.By, c.Hy)
	if err != nil {
		return nil, err
	}
	mass := c.massStepper(g)
	st, err := m.run(S5MassTransfer2DName, c.Times, runner.Sequential, runner.Field(mass.Name).Stepper(mass))
	if st == nil {
		return nil, err
	}
	return newResults(S5MassTransfer2DName, st, OutputMass), err
}

// S5MassHeatTransfer2DConfig adds a 2-D heat field whose second differences
// drive the mass field. Row 0 of the heat field is held at T3.
type S5MassHeatTransfer2DConfig struct {
	S5MassTransfer2DConfig `yaml:",inline"`

	Dt     float64 `yaml:"dt"`
	Lambda float64 `yaml:"lambda"`
	Cp     float64 `yaml:"cp"`
	Cn     float64 `yaml:"cn"`
	T1     float64 `yaml:"t1"`
	T2     float64 `yaml:"t2"`
	T3     float64 `yaml:"t3"`
}

func DefaultS5MassHeatTransfer2DConfig() S5MassHeatTransfer2DConfig {
	mass := DefaultS5MassTransfer2DConfig()
	mass.Gamma = 0.065
	return S5MassHeatTransfer2DConfig{
		S5MassTransfer2DConfig: mass,
		Dt:                     0.04,
		Lambda:                 0.5,
		Cp:                     4.2e6,
		Cn:                     3e6,
		T1:                     30,
		T2:                     13,
		T3:                     18,
	}
}

type S5MassHeatTransfer2D struct {
	base
	Config S5MassHeatTransfer2DConfig
	memo   memo[S5MassHeatTransfer2DConfig]
}

func NewS5MassHeatTransfer2D(cfg S5MassHeatTransfer2DConfig) *S5MassHeatTransfer2D {
	return &S5MassHeatTransfer2D{Config: cfg}
}

func (m *S5MassHeatTransfer2D) Name() string        { return S5MassHeatTransfer2DName }
func (m *S5MassHeatTransfer2D) Outputs() []Output   { return []Output{OutputHeat, OutputMass} }
func (m *S5MassHeatTransfer2D) Params() interface{} { return &m.Config }

func (m *S5MassHeatTransfer2D) Presentation() Presentation {
	return m.Config.presentation()
}

func (m *S5MassHeatTransfer2D) Validate() error {
	c := m.Config
	return firstError(
		c.validate(S5MassHeatTransfer2DName),
		positive(S5MassHeatTransfer2DName, "lambda", c.Lambda),
		positive(S5MassHeatTransfer2DName, "cp", c.Cp),
	)
}

func (m *S5MassHeatTransfer2D) Compute(out Output) (field.Series, error) { return compute(m, out) }

func (m *S5MassHeatTransfer2D) ComputeAll() (*Results, error) {
	return m.memo.get(m.Config, &m.base, m.compute)
}

func (m *S5MassHeatTransfer2D) compute() (*Results, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	c := m.Config
	g, err := grid2D(S5MassHeatTransfer2DName, c.Lx, c.Hx, c.By, c.Hy)
	if err != nil {
		return nil, err
	}
	nx := g.X.Intervals()
	hx, hy := g.X.Spacing(), g.Y.Spacing()
	V := GroundwaterSpeed(c.H1, c.H2, c.K, c.Lx)

	ntTau := c.Cn / c.Lambda / c.Tau
	ax, bx := upwindPair(V, c.Lambda/c.Cp, hx)
	ay := 1 / (hy * hy)
	heatSrc := func(ctx stepper.Context2D, row, col int, _ float64) float64 {
		return ntTau * ctx.Prev.At(row, col)
	}
	linear := boundary.Linear(c.T1, c.T2, nx)
	heat := &stepper.ADI2D{
		Name:    OutputHeat.String(),
		Grid:    g,
		Left:    boundary.Constant(c.T1),
		Right:   boundary.Constant(c.T2),
		EdgeRow: boundary.Uniform(c.T3),
		Initial: func(_, col int) float64 {
			switch col {
			case 0:
				return c.T1
			case nx:
				return c.T2
			}
			return linear(col)
		},
		X:       tridiag.Constant{A: ax, B: bx, C: ax + bx + ntTau},
		Y:       tridiag.Constant{A: ay, B: ay, C: 2*ay + ntTau},
		SourceX: heatSrc,
		SourceY: heatSrc,
	}

	fk := c.Sigma / (c.D * c.Tau)
	f21 := c.Gamma * 0.1 * c.Cm / c.D
	massSrc := func(ctx stepper.Context2D, row, col int, coupling float64) float64 {
		return f21 + coupling + fk*ctx.Prev.At(row, col)
	}
	mass := c.massStepper(g)
	mass.SourceX, mass.SourceY = massSrc, massSrc
	mass.Couplings = []stepper.Coupling{{Field: heat.Name, Scale: c.Dt / c.D}}

	st, err := m.run(S5MassHeatTransfer2DName, c.Times, runner.Sequential,
		runner.Field(heat.Name).Stepper(heat),
		runner.Field(mass.Name).Stepper(mass).DependsOn(heat.Name),
	)
	if st == nil {
		return nil, err
	}
	return newResults(S5MassHeatTransfer2DName, st, OutputHeat, OutputMass), err
}

func init() {
	register(S5MassTransfer2DName, func() Model { return NewS5MassTransfer2D(DefaultS5MassTransfer2DConfig()) })
	register(S5MassHeatTransfer2DName, func() Model { return NewS5MassHeatTransfer2D(DefaultS5MassHeatTransfer2DConfig()) })
}
