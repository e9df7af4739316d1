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

const MoistureTransferName = "s5-moisture-transfer"

// MoistureTransferConfig parameterizes coupled moisture, salt and filtration in
// an unsaturated layer
type MoistureTransferConfig struct {
	A       float64 `yaml:"a"`
	K       float64 `yaml:"k"`
	H1      float64 `yaml:"h1"`
	H2      float64 `yaml:"h2"`
	Length  float64 `yaml:"length"`
	Tau     float64 `yaml:"tau"`
	Sigma   float64 `yaml:"sigma"`
	Spacing float64 `yaml:"spacing"`
	V       float64 `yaml:"v"`
	C0      float64 `yaml:"c0"`
	C1      float64 `yaml:"c1"`
	C2      float64 `yaml:"c2"`
	Cx      float64 `yaml:"cx"`
	P       float64 `yaml:"p"`
	Gm      float64 `yaml:"gm"`
	Times   int     `yaml:"times"`
}

func DefaultMoistureTransferConfig() MoistureTransferConfig {
	return MoistureTransferConfig{
		A:       51.2e-7,
		K:       0.001,
		H1:      7,
		H2:      20,
		Length:  15,
		Tau:     360,
		Sigma:   0.5,
		Spacing: 1.5,
		V:       2.8e-5,
		C0:      0,
		C1:      0,
		C2:      10,
		Cx:      350,
		P:       1000,
		Gm:      0.0065,
		Times:   4,
	}
}

type MoistureTransfer struct {
	base
	Config MoistureTransferConfig
	memo   memo[MoistureTransferConfig]
}

func NewMoistureTransfer(cfg MoistureTransferConfig) *MoistureTransfer {
	return &MoistureTransfer{Config: cfg}
}

func (m *MoistureTransfer) Name() string { return MoistureTransferName }
func (m *MoistureTransfer) Outputs() []Output {
	return []Output{OutputFiltration, OutputMass, OutputMoisture}
}
func (m *MoistureTransfer) Params() interface{} { return &m.Config }

func (m *MoistureTransfer) Presentation() Presentation {
	p := defaultPresentation()
	p.ChartStepX, p.ChartStepY, p.MaxX = m.Config.Spacing, m.Config.Tau, m.Config.Length
	return p
}

func (m *MoistureTransfer) Validate() error {
	c := m.Config
	return firstError(
		positive(MoistureTransferName, "k", c.K),
		positive(MoistureTransferName, "length", c.Length),
		positive(MoistureTransferName, "tau", c.Tau),
		positive(MoistureTransferName, "spacing", c.Spacing),
		nonNegative(MoistureTransferName, "times", c.Times),
	)
}

func (m *MoistureTransfer) Compute(out Output) (field.Series, error) { return compute(m, out) }

func (m *MoistureTransfer) ComputeAll() (*Results, error) {
	return m.memo.get(m.Config, &m.base, m.compute)
}

func (m *MoistureTransfer) compute() (*Results, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	c := m.Config
	g, err := grid1D(MoistureTransferName, c.Length, c.Spacing)
	if err != nil {
		return nil, err
	}
	h := g.Spacing()
	n := g.Intervals()
	var (
		filtName  = OutputFiltration.String()
		massName  = OutputMass.String()
		moistName = OutputMoisture.String()
	)

	// filtration speed from the previous moisture and salt layers; ends stay 0
	filt := &stepper.Explicit1D{
		Name:  filtName,
		Grid:  g,
		First: 1,
		Eval: func(ctx stepper.Context, dst []float64) error {
			w, err := ctx.Helper(moistName, ctx.Layer-1)
			if err != nil {
				return err
			}
			s, err := ctx.Helper(massName, ctx.Layer-1)
			if err != nil {
				return err
			}
			for i := 1; i < n; i++ {
				dst[i] = -c.K*utils.CentralDifference(w, i)/2*h + c.V*utils.SecondDifference(s, i, h)
			}
			return nil
		},
	}

	mass := &stepper.Stepper1D{
		Name:     massName,
		Grid:     g,
		Boundary: boundary.Pair{Left: boundary.Constant(c.C1), Right: boundary.Constant(c.C2)},
		Initial:  boundary.Uniform(c.C0),
		Operator: func(ctx stepper.Context) (tridiag.Coefficients, error) {
			f, err := ctx.Helper(filtName, ctx.Layer)
			if err != nil {
				return nil, err
			}
			return tridiag.RowFunc(func(i int) (a, b, cc float64) {
				R, r := utils.UpwindSplit(f[i])
				nn := 1 / (1 + h*math.Abs(R+r)/2)
				a = nn/(h*h) - r/h
				b = nn/(h*h) - R/h
				return a, b, a + b + c.Gm + c.Sigma/c.Tau
			}), nil
		},
		Source: func(ctx stepper.Context, i int, _ float64) float64 {
			return (c.Cx*c.Gm + c.Sigma/c.Tau) * ctx.Prev[i]
		},
		Scheme: tridiag.LocalCarry,
	}

	// moisture capacity at i from the previous moisture layer
	capacity := func(w []float64, i int) float64 {
		return c.A * c.P * c.Gm * (1 - 2*h/utils.CentralDifference(w, i))
	}
	kk := c.K / (h * h)
	moist := &stepper.Stepper1D{
		Name:     moistName,
		Grid:     g,
		Boundary: boundary.Pair{Left: boundary.Constant(c.H1), Right: boundary.Constant(c.H2)},
		Initial:  boundary.Linear(c.H1, c.H2, n),
		Operator: func(ctx stepper.Context) (tridiag.Coefficients, error) {
			return tridiag.RowFunc(func(i int) (a, b, cc float64) {
				return kk, kk, capacity(ctx.Prev, i)/c.Tau + 2*kk
			}), nil
		},
		Couplings: []stepper.Coupling{{Field: massName, Scale: -c.V}},
		Source: func(ctx stepper.Context, i int, coupling float64) float64 {
			w := ctx.Prev
			return (capacity(w, i)/c.Tau*w[i] + coupling) * w[i]
		},
		Scheme: tridiag.LocalCarry,
	}

	st, err := m.run(MoistureTransferName, c.Times, runner.Lockstep,
		runner.Field(filtName).Stepper(filt).Lagged(moistName, massName),
		runner.Field(massName).Stepper(mass).DependsOn(filtName),
		runner.Field(moistName).Stepper(moist).DependsOn(massName),
	)
	if st == nil {
		return nil, err
	}
	return newResults(MoistureTransferName, st, OutputFiltration, OutputMass, OutputMoisture), err
}

func init() {
	register(MoistureTransferName, func() Model { return NewMoistureTransfer(DefaultMoistureTransferConfig()) })
}
