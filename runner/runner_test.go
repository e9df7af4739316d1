package runner

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/notargets/fdtransport/boundary"
	"github.com/notargets/fdtransport/field"
	"github.com/notargets/fdtransport/grid"
	"github.com/notargets/fdtransport/stepper"
	"github.com/notargets/fdtransport/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// traceStepper records every Start/Step call into a shared log
type traceStepper struct {
	name  string
	first int
	log   *[]string
	reads map[string]int // helper -> layer offset read on each step
}

func (s *traceStepper) FieldName() string { return s.name }

func (s *traceStepper) Start(st *field.Store) error {
	series := field.NewSeries1D(s.name, grid.MustGrid1D(0, 1, 0.5), s.first)
	if err := st.Add(series); err != nil {
		return err
	}
	*s.log = append(*s.log, s.name+":0")
	if s.first == 0 {
		return series.Append([]float64{0, 0, 0})
	}
	return nil
}

func (s *traceStepper) Step(tl int, st *field.Store) error {
	for h, off := range s.reads {
		hs, err := st.Series1D(h)
		if err != nil {
			return err
		}
		if _, ok := hs.Layer(tl + off); !ok {
			return &utils.DependencyError{Field: s.name, Dependency: h, Layer: tl + off}
		}
	}
	*s.log = append(*s.log, fmt.Sprintf("%s:%d", s.name, tl))
	series, _ := st.Series1D(s.name)
	return series.Append([]float64{float64(tl), float64(tl), float64(tl)})
}

func tracer(name string, log *[]string) *traceStepper {
	return &traceStepper{name: name, log: log, reads: map[string]int{}}
}

func TestRunner_PlanOrdersByDependency(t *testing.T) {
	var log []string
	r := NewRunner(Config{Model: "test", Times: 2})
	require.NoError(t, r.DefineFields(
		Field("consolidation").Stepper(tracer("consolidation", &log)).DependsOn("mass"),
		Field("mass").Stepper(tracer("mass", &log)).DependsOn("heat"),
		Field("heat").Stepper(tracer("heat", &log)),
		Field("other").Stepper(tracer("other", &log)),
	))
	plan, err := r.Plan()
	require.NoError(t, err)
	assert.Equal(t, []string{"heat", "mass", "consolidation", "other"}, plan)

	_, err = r.Run()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"heat:0", "heat:1", "heat:2",
		"mass:0", "mass:1", "mass:2",
		"consolidation:0", "consolidation:1", "consolidation:2",
		"other:0", "other:1", "other:2",
	}, log)

	_, err = r.Run()
	assert.Error(t, err)
}

func TestRunner_LockstepOrder(t *testing.T) {
	var log []string
	filtration := tracer("filtration", &log)
	filtration.first = 1
	filtration.reads = map[string]int{"moisture": -1, "mass": -1}
	mass := tracer("mass", &log)
	mass.reads = map[string]int{"filtration": 0}
	moisture := tracer("moisture", &log)
	moisture.reads = map[string]int{"mass": 0}

	r := NewRunner(Config{Model: "moisture", Times: 2, Mode: Lockstep})
	require.NoError(t, r.DefineFields(
		Field("filtration").Stepper(filtration).Lagged("moisture", "mass"),
		Field("mass").Stepper(mass).DependsOn("filtration"),
		Field("moisture").Stepper(moisture).DependsOn("mass", "filtration"),
	))
	st, err := r.Run()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"filtration:0", "mass:0", "moisture:0",
		"filtration:1", "mass:1", "moisture:1",
		"filtration:2", "mass:2", "moisture:2",
	}, log)
	f, err := st.Series1D("filtration")
	require.NoError(t, err)
	assert.Equal(t, 2, f.TimeLayers())
}

func TestRunner_CycleRejected(t *testing.T) {
	var log []string
	r := NewRunner(Config{Model: "test", Times: 1})
	require.NoError(t, r.DefineFields(
		Field("a").Stepper(tracer("a", &log)).DependsOn("b"),
		Field("b").Stepper(tracer("b", &log)).DependsOn("c"),
		Field("c").Stepper(tracer("c", &log)).DependsOn("a"),
	))
	_, err := r.Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrConfiguration))
	assert.Contains(t, err.Error(), "a -> b -> c -> a")
	assert.Empty(t, log)
}

func TestRunner_CycleNamesEarliestField(t *testing.T) {
	var log []string
	r := NewRunner(Config{Model: "test", Times: 1})
	require.NoError(t, r.DefineFields(
		Field("free").Stepper(tracer("free", &log)),
		Field("y").Stepper(tracer("y", &log)).DependsOn("x"),
		Field("x").Stepper(tracer("x", &log)).DependsOn("y", "free"),
	))
	_, err := r.Plan()
	var ce *utils.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "y", ce.Param)
	assert.Contains(t, err.Error(), "y -> x -> y")
}

func TestRunner_OwnPreviousLayer(t *testing.T) {
	var log []string
	a := tracer("a", &log)
	a.reads = map[string]int{"a": -1}
	r := NewRunner(Config{Model: "test", Times: 2})
	require.NoError(t, r.DefineFields(
		Field("b").Stepper(tracer("b", &log)).DependsOn("a"),
		Field("a").Stepper(a).Lagged("a"),
		Field("c").Stepper(tracer("c", &log)),
	))
	plan, err := r.Plan()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, plan)
	_, err = r.Run()
	require.NoError(t, err)
}

func TestRunner_LaggedCycleOnlyInSequential(t *testing.T) {
	var log []string
	define := func(mode Mode) *Runner {
		r := NewRunner(Config{Model: "test", Times: 1, Mode: mode})
		require.NoError(t, r.DefineFields(
			Field("a").Stepper(tracer("a", &log)).Lagged("b"),
			Field("b").Stepper(tracer("b", &log)).DependsOn("a"),
		))
		return r
	}
	_, err := define(Lockstep).Plan()
	assert.NoError(t, err)
	_, err = define(Sequential).Plan()
	assert.True(t, errors.Is(err, utils.ErrConfiguration))
}

func TestRunner_InvalidDefinitions(t *testing.T) {
	var log []string
	tests := []struct {
		name   string
		fields []*FieldBuilder
		times  int
	}{
		{"undefined dependency", []*FieldBuilder{Field("mass").Stepper(tracer("mass", &log)).DependsOn("heat")}, 2},
		{"short dependency", []*FieldBuilder{
			Field("heat").Stepper(tracer("heat", &log)).Times(2),
			Field("mass").Stepper(tracer("mass", &log)).DependsOn("heat"),
		}, 4},
		{"negative times", []*FieldBuilder{Field("heat").Stepper(tracer("heat", &log))}, -1},
		{"no fields", nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log = nil
			r := NewRunner(Config{Model: "test", Times: tt.times})
			require.NoError(t, r.DefineFields(tt.fields...))
			_, err := r.Run()
			require.Error(t, err)
			var ce *utils.ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, "test", ce.Model)
			assert.Empty(t, log, "no layer may be computed")
		})
	}
}

func TestRunner_DefineFieldsErrors(t *testing.T) {
	var log []string
	r := NewRunner(Config{Model: "test", Times: 1})
	err := r.DefineFields(Field("x"))
	assert.True(t, errors.Is(err, utils.ErrConfiguration))
	err = r.DefineFields(Field("x").Stepper(tracer("y", &log)))
	assert.True(t, errors.Is(err, utils.ErrConfiguration))
	err = r.DefineFields(Field("x").Stepper(tracer("x", &log)).DependsOn("x"))
	assert.True(t, errors.Is(err, utils.ErrConfiguration))
	require.NoError(t, r.DefineFields(Field("x").Stepper(tracer("x", &log))))
	err = r.DefineFields(Field("x").Stepper(tracer("x", &log)))
	assert.True(t, errors.Is(err, utils.ErrConfiguration))
}

func TestRunner_BoundPresetDependency(t *testing.T) {
	g := grid.MustGrid1D(0, 4, 1)
	heat := &stepper.Stepper1D{
		Name:     "heat",
		Grid:     g,
		Boundary: boundary.Pair{Left: boundary.Constant(10), Right: boundary.Constant(0)},
		Initial:  boundary.Uniform(0),
		Operator: stepper.ConstantOperator(0.5, 0.5, 2),
	}
	preset, err := heat.Run(2)
	require.NoError(t, err)

	mass := func() *stepper.Stepper1D {
		return &stepper.Stepper1D{
			Name:      "mass",
			Grid:      g,
			Boundary:  boundary.Pair{Left: boundary.Constant(1), Right: boundary.Constant(1)},
			Initial:   boundary.Uniform(1),
			Operator:  stepper.ConstantOperator(0.5, 0.5, 2),
			Couplings: []stepper.Coupling{{Field: "heat", Scale: 0.1}},
		}
	}

	r := NewRunner(Config{Model: "test", Times: 3})
	require.NoError(t, r.Bind(preset))
	require.NoError(t, r.DefineFields(Field("mass").Stepper(mass()).DependsOn("heat")))
	_, err = r.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependency heat provides layers up to 2, 3 required")

	r = NewRunner(Config{Model: "test", Times: 2})
	require.NoError(t, r.Bind(preset))
	require.NoError(t, r.DefineFields(Field("mass").Stepper(mass()).DependsOn("heat")))
	st, err := r.Run()
	require.NoError(t, err)
	m, err := st.Series1D("mass")
	require.NoError(t, err)
	assert.Equal(t, 3, m.TimeLayers())

	// couplings must be declared as dependencies
	r = NewRunner(Config{Model: "test", Times: 2})
	require.NoError(t, r.Bind(preset))
	require.NoError(t, r.DefineFields(Field("mass").Stepper(mass())))
	_, err = r.Plan()
	assert.True(t, errors.Is(err, utils.ErrConfiguration))
}

func TestRunner_StrictDegeneracy(t *testing.T) {
	g := grid.MustGrid1D(0, 4, 1)
	bad := func() *stepper.Stepper1D {
		return &stepper.Stepper1D{
			Name:     "u",
			Grid:     g,
			Boundary: boundary.Pair{Left: boundary.Constant(1), Right: boundary.Constant(1)},
			Initial:  boundary.Uniform(1),
			Operator: stepper.ConstantOperator(0, 0, 0),
		}
	}
	var buf bytes.Buffer
	r := NewRunner(Config{Model: "test", Times: 1, Logger: zerolog.New(&buf)})
	require.NoError(t, r.DefineFields(Field("u").Stepper(bad())))
	st, err := r.Run()
	require.NoError(t, err)
	assert.NotEmpty(t, st.Warnings())
	assert.Contains(t, buf.String(), "zero denominator")

	r = NewRunner(Config{Model: "test", Times: 1, Strict: true})
	require.NoError(t, r.DefineFields(Field("u").Stepper(bad())))
	st, err = r.Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrNumericDegeneracy))
	require.NotNil(t, st)
	u, _ := st.Series1D("u")
	assert.Equal(t, 2, u.TimeLayers())
}

func TestRunner_StepErrorCarriesModel(t *testing.T) {
	var log []string
	m := tracer("mass", &log)
	m.reads = map[string]int{"heat": 1}
	r := NewRunner(Config{Model: "test", Times: 1})
	require.NoError(t, r.DefineFields(
		Field("heat").Stepper(tracer("heat", &log)),
		Field("mass").Stepper(m).DependsOn("heat"),
	))
	_, err := r.Run()
	require.Error(t, err)
	var de *utils.DependencyError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "test", de.Model)
	assert.Equal(t, 2, de.Layer)
}
