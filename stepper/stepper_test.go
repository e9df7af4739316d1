package stepper

import (
	"errors"
	"testing"

	"github.com/notargets/fdtransport/boundary"
	"github.com/notargets/fdtransport/field"
	"github.com/notargets/fdtransport/grid"
	"github.com/notargets/fdtransport/tridiag"
	"github.com/notargets/fdtransport/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// implicit diffusion u[tl] - σ·δ²u[tl] = u[tl-1]
func diffusion(name string, g grid.Grid1D, sigma, left, right, inside float64) *Stepper1D {
	return &Stepper1D{
		Name:     name,
		Grid:     g,
		Boundary: boundary.Pair{Left: boundary.Constant(left), Right: boundary.Constant(right)},
		Initial:  boundary.Uniform(inside),
		Operator: ConstantOperator(sigma, sigma, 1+2*sigma),
	}
}

func TestStepper1D_SteadyState(t *testing.T) {
	g := grid.MustGrid1D(0, 1, 0.5)
	s := diffusion("u", g, 1./6, 5, 5, 5)
	series, err := s.Run(3)
	require.NoError(t, err)
	require.Equal(t, 4, series.TimeLayers())
	for tl, layer := range series.Layers() {
		for i, v := range layer {
			assert.InDelta(t, 5.0, v, 1e-12, "layer %d point %d", tl, i)
		}
	}
}

func TestStepper1D_LinearGradient(t *testing.T) {
	g := grid.MustGrid1D(0, 1, 0.5)
	s := diffusion("u", g, 1./6, 0, 1, 0)
	series, err := s.Run(100)
	require.NoError(t, err)
	last, ok := series.Layer(100)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1}, last, 1e-3)
}

func TestStepper1D_BoundaryPreservation(t *testing.T) {
	g := grid.MustGrid1D(0, 10, 1)
	s := diffusion("u", g, 0.4, 0, 0, 1)
	s.Boundary = boundary.Pair{
		Left:  func(tl int) float64 { return float64(tl) },
		Right: func(tl int) float64 { return -2 * float64(tl) },
	}
	series, err := s.Run(5)
	require.NoError(t, err)
	for tl := 0; tl <= 5; tl++ {
		layer, _ := series.Layer(tl)
		assert.Equal(t, float64(tl), layer[0])
		assert.Equal(t, -2*float64(tl), layer[10])
	}
	l0, _ := series.Layer(0)
	assert.Equal(t, 1.0, l0[5])
}

func TestStepper1D_CouplingScaleZeroDecouples(t *testing.T) {
	g := grid.MustGrid1D(0, 10, 1)
	run := func(scale float64) []float64 {
		st := field.NewStore()
		heat := diffusion("heat", g, 0.3, 100, 0, 20)
		mass := diffusion("mass", g, 0.2, 1, 2, 0)
		mass.Couplings = []Coupling{{Field: "heat", Scale: scale}}
		require.NoError(t, heat.Start(st))
		for tl := 1; tl <= 4; tl++ {
			require.NoError(t, heat.Step(tl, st))
		}
		require.NoError(t, mass.Start(st))
		for tl := 1; tl <= 4; tl++ {
			require.NoError(t, mass.Step(tl, st))
		}
		s, _ := st.Series1D("mass")
		l, _ := s.Layer(4)
		return l
	}
	plain, err := diffusion("mass", g, 0.2, 1, 2, 0).Run(4)
	require.NoError(t, err)
	want, _ := plain.Layer(4)

	assert.InDeltaSlice(t, want, run(0), 1e-9)
	assert.NotEqual(t, want[1], run(0.5)[1])
}

func TestStepper1D_MissingHelperLayer(t *testing.T) {
	g := grid.MustGrid1D(0, 4, 1)
	st := field.NewStore()
	heat := diffusion("heat", g, 0.3, 1, 0, 0)
	require.NoError(t, heat.Start(st))
	mass := diffusion("mass", g, 0.2, 0, 0, 0)
	mass.Couplings = []Coupling{{Field: "heat", Scale: 1}}
	require.NoError(t, mass.Start(st))

	err := mass.Step(1, st)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrDependencyOrder))
	var de *utils.DependencyError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "heat", de.Dependency)
	assert.Equal(t, 1, de.Layer)

	// nothing was appended
	s, _ := st.Series1D("mass")
	assert.Equal(t, 1, s.TimeLayers())
}

func TestStepper1D_StepOutOfOrder(t *testing.T) {
	g := grid.MustGrid1D(0, 4, 1)
	st := field.NewStore()
	s := diffusion("u", g, 0.3, 1, 0, 0)
	require.NoError(t, s.Start(st))
	assert.Error(t, s.Step(2, st))
	require.NoError(t, s.Step(1, st))
	assert.Error(t, s.Step(1, st))
}

func TestStepper1D_DegeneracyWarns(t *testing.T) {
	g := grid.MustGrid1D(0, 4, 1)
	s := diffusion("u", g, 0, 1, 1, 1)
	s.Operator = ConstantOperator(0, 0, 0)
	series, err := s.Run(2)
	require.NoError(t, err)
	assert.Equal(t, 3, series.TimeLayers())
	require.NotEmpty(t, series.Warnings())
	assert.Equal(t, 1, series.Warnings()[0].Layer)
	assert.Equal(t, -1, series.Warnings()[0].Line)
}

func TestStepper1D_Validate(t *testing.T) {
	g := grid.MustGrid1D(0, 4, 1)
	s := diffusion("u", g, 0.3, 1, 0, 0)
	s.Operator = nil
	_, err := s.Run(1)
	assert.True(t, errors.Is(err, utils.ErrConfiguration))

	_, err = diffusion("u", g, 0.3, 1, 0, 0).Run(-1)
	assert.True(t, errors.Is(err, utils.ErrConfiguration))
}

func TestStepper1D_SeedAndTerminal(t *testing.T) {
	// insulated right end: a uniform field stays uniform
	g := grid.MustGrid1D(0, 5, 1)
	s := diffusion("u", g, 0.25, 3, 0, 3)
	s.Terminal = tridiag.ZeroFlux
	s.Boundary.Right = boundary.Constant(3)
	s.Seed = func(ctx Context) tridiag.Seed { return tridiag.Seed{Alfa: 0, Beta: 3} }
	series, err := s.Run(3)
	require.NoError(t, err)
	last, _ := series.Layer(3)
	for i, v := range last {
		assert.InDelta(t, 3.0, v, 1e-12, "point %d", i)
	}
}

func TestExplicit1D(t *testing.T) {
	g := grid.MustGrid1D(0, 2, 1)
	st := field.NewStore()
	src := diffusion("u", g, 0.5, 2, 2, 2)
	require.NoError(t, src.Start(st))
	double := &Explicit1D{
		Name:  "twice",
		Grid:  g,
		First: 1,
		Eval: func(ctx Context, dst []float64) error {
			prev, err := ctx.Helper("u", ctx.Layer-1)
			if err != nil {
				return err
			}
			for i := range dst {
				dst[i] = 2 * prev[i]
			}
			return nil
		},
	}
	require.NoError(t, double.Start(st))
	require.NoError(t, double.Step(1, st))
	s, _ := st.Series1D("twice")
	assert.Equal(t, 1, s.First())
	l, ok := s.Layer(1)
	require.True(t, ok)
	assert.Equal(t, []float64{4, 4, 4}, l)

	err := double.Step(2, st)
	assert.True(t, errors.Is(err, utils.ErrDependencyOrder))
}
