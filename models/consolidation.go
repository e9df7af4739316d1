package models

import (
	"github.com/notargets/fdtransport/boundary"
	"github.com/notargets/fdtransport/field"
	"github.com/notargets/fdtransport/runner"
	"github.com/notargets/fdtransport/stepper"
)

const ConsolidationName = "s5-consolidation"

// ConsolidationConfig parameterizes soil consolidation under salt transfer. The
// pressure head runs from H1 to H2 and is driven by the salt concentration.
type ConsolidationConfig struct {
	A       float64 `yaml:"a"`
	K       float64 `yaml:"k"`
	D       float64 `yaml:"d"`
	H1      float64 `yaml:"h1"`
	H2      float64 `yaml:"h2"`
	Length  float64 `yaml:"length"`
	Tau     float64 `yaml:"tau"`
	Sigma   float64 `yaml:"sigma"`
	Spacing float64 `yaml:"spacing"`
	E       float64 `yaml:"e"`
	V       float64 `yaml:"v"`
	C1      float64 `yaml:"c1"`
	C2      float64 `yaml:"c2"`
	Cx      float64 `yaml:"cx"`
	Gm      float64 `yaml:"gm"`
	GmS     float64 `yaml:"gms"`
	Times   int     `yaml:"times"`
}

func DefaultConsolidationConfig() ConsolidationConfig {
	return ConsolidationConfig{
		A:       51.2e-7,
		K:       0.001,
		D:       0.02,
		H1:      59,
		H2:      26,
		Length:  100,
		Tau:     30,
		Sigma:   0.2,
		Spacing: 10,
		E:       0.6,
		V:       2.8e-3,
		C1:      350,
		C2:      15,
		Cx:      0.15,
		Gm:      2e-4,
		GmS:     2e4,
		Times:   4,
	}
}

type Consolidation struct {
	base
	Config ConsolidationConfig
	memo   memo[ConsolidationConfig]
}

func NewConsolidation(cfg ConsolidationConfig) *Consolidation {
	return &Consolidation{Config: cfg}
}

func (m *Consolidation) Name() string        { return ConsolidationName }
func (m *Consolidation) Outputs() []Output   { return []Output{OutputMass, OutputConsolidation} }
func (m *Consolidation) Params() interface{} { return &m.Config }

func (m *Consolidation) Presentation() Presentation {
	p := defaultPresentation()
	p.ChartStepX, p.ChartStepY, p.MaxX = m.Config.Spacing, m.Config.Tau, m.Config.Length
	return p
}

func (m *Consolidation) Validate() error {
	c := m.Config
	return firstError(
		positive(ConsolidationName, "a", c.A),
		positive(ConsolidationName, "d", c.D),
		positive(ConsolidationName, "gms", c.GmS),
		positive(ConsolidationName, "length", c.Length),
		positive(ConsolidationName, "tau", c.Tau),
		positive(ConsolidationName, "sigma", c.Sigma),
		positive(ConsolidationName, "spacing", c.Spacing),
		positive(ConsolidationName, "c1", c.C1),
		positive(ConsolidationName, "c2", c.C2),
		nonNegative(ConsolidationName, "times", c.Times),
	)
}

func (m *Consolidation) Compute(out Output) (field.Series, error) { return compute(m, out) }

func (m *Consolidation) ComputeAll() (*Results, error) {
	return m.memo.get(m.Config, &m.base, m.compute)
}

func (m *Consolidation) compute() (*Results, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	c := m.Config
	g, err := grid1D(ConsolidationName, c.Length, c.Spacing)
	if err != nil {
		return nil, err
	}
	h := g.Spacing()
	n := g.Intervals()

	V := GroundwaterSpeed(c.H1, c.H2, c.K, c.Length)
	fk := c.Sigma / (c.D * c.Tau)
	fp := c.Gm * c.Cx / c.D
	am, bm := upwindPair(V, c.D, h)
	mass := &stepper.Stepper1D{
		Name:     OutputMass.String(),
		Grid:     g,
		Boundary: boundary.Pair{Left: boundary.Constant(c.C1), Right: boundary.Constant(c.C2)},
		Initial:  boundary.Exponential(c.C1, c.C2, n),
		Operator: stepper.ConstantOperator(am, bm, am+bm+c.Gm/c.D+fk),
		Source: func(ctx stepper.Context, i int, _ float64) float64 {
			return (fk + fp) * ctx.Prev[i]
		},
	}

	// consolidation and osmotic coefficients
	ac := c.K * (1 + c.E) / (c.GmS * c.A)
	bc := c.V * (1 + c.E) / (c.GmS * c.A)
	k := ac / (h * h)
	cons := &stepper.Stepper1D{
		Name:      OutputConsolidation.String(),
		Grid:      g,
		Boundary:  boundary.Pair{Left: boundary.Constant(c.H1), Right: boundary.Constant(c.H2)},
		Initial:   boundary.Linear(c.H1, c.H2, n),
		Operator:  stepper.ConstantOperator(k, k, 1/c.Tau-2*k),
		Couplings: []stepper.Coupling{{Field: mass.Name, Scale: bc}},
		Source: func(ctx stepper.Context, i int, coupling float64) float64 {
			return ctx.Prev[i]/c.Tau + coupling
		},
	}

	st, err := m.run(ConsolidationName, c.Times, runner.Sequential,
		runner.Field(mass.Name).Stepper(mass),
		runner.Field(cons.Name).Stepper(cons).DependsOn(mass.Name),
	)
	if st == nil {
		return nil, err
	}
	return newResults(ConsolidationName, st, OutputMass, OutputConsolidation), err
}

func init() {
	register(ConsolidationName, func() Model { return NewConsolidation(DefaultConsolidationConfig()) })
}
