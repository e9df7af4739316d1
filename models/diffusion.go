package models

import (
	"math"

	"github.com/notargets/fdtransport/boundary"
	"github.com/notargets/fdtransport/field"
	"github.com/notargets/fdtransport/runner"
	"github.com/notargets/fdtransport/stepper"
)

const DiffusionName = "diffusion"

// DiffusionConfig parameterizes moisture diffusion with a saturation dependent
// coefficient
type DiffusionConfig struct {
	Extent   float64 `yaml:"extent"`
	Spacing  float64 `yaml:"spacing"`
	Times    int     `yaml:"times"`
	Boundary float64 `yaml:"boundary"`
	Theta0   float64 `yaml:"theta0"`
	Sigma    float64 `yaml:"sigma"`
	Exponent int     `yaml:"exponent"`
}

func DefaultDiffusionConfig() DiffusionConfig {
	return DiffusionConfig{
		Extent:   0.5,
		Spacing:  0.1,
		Times:    3,
		Boundary: 0.68,
		Theta0:   0.02,
		Sigma:    1.0 / 6,
		Exponent: 6,
	}
}

// DiffusionCoefficient is D(θ) = 1e-6·(1 - exp(-m·θ))
func DiffusionCoefficient(m int, theta float64) float64 {
	return 1e-6 * (1 - math.Exp(-float64(m)*theta))
}

type Diffusion struct {
	base
	Config DiffusionConfig
	memo   memo[DiffusionConfig]
}

func NewDiffusion(cfg DiffusionConfig) *Diffusion {
	return &Diffusion{Config: cfg}
}

func init() {
	register(DiffusionName, func() Model { return NewDiffusion(DefaultDiffusionConfig()) })
}

func (m *Diffusion) Name() string        { return DiffusionName }
func (m *Diffusion) Outputs() []Output   { return []Output{OutputMoisture} }
func (m *Diffusion) Params() interface{} { return &m.Config }

func (m *Diffusion) Presentation() Presentation {
	return defaultPresentation()
}

func (m *Diffusion) Validate() error {
	c := m.Config
	return firstError(
		positive(DiffusionName, "extent", c.Extent),
		positive(DiffusionName, "spacing", c.Spacing),
		nonNegative(DiffusionName, "times", c.Times),
		positive(DiffusionName, "theta0", c.Theta0),
		positive(DiffusionName, "sigma", c.Sigma),
		positive(DiffusionName, "exponent", float64(c.Exponent)),
	)
}

func (m *Diffusion) Compute(out Output) (field.Series, error) { return compute(m, out) }

func (m *Diffusion) ComputeAll() (*Results, error) {
	return m.memo.get(m.Config, &m.base, m.compute)
}

func (m *Diffusion) compute() (*Results, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	c := m.Config
	g, err := grid1D(DiffusionName, c.Extent, c.Spacing)
	if err != nil {
		return nil, err
	}
	h := g.Spacing()
	d := DiffusionCoefficient(c.Exponent, c.Theta0)
	tau := h * h * c.Sigma / d
	ab := d * tau / (h * h)

	s := &stepper.Stepper1D{
		Name:     OutputMoisture.String(),
		Grid:     g,
		Boundary: boundary.Pair{Left: boundary.Constant(c.Boundary), Right: boundary.Constant(c.Boundary)},
		Initial:  boundary.Uniform(c.Theta0),
		Operator: stepper.ConstantOperator(ab, ab, 1+2*c.Sigma),
	}
	st, err := m.run(DiffusionName, c.Times, runner.Sequential, runner.Field(s.Name).Stepper(s))
	if st == nil {
		return nil, err
	}
	return newResults(DiffusionName, st, OutputMoisture), err
}
