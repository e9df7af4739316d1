package stepper

import (
	"fmt"

	"github.com/notargets/fdtransport/boundary"
	"github.com/notargets/fdtransport/field"
	"github.com/notargets/fdtransport/grid"
	"github.com/notargets/fdtransport/tridiag"
	"github.com/notargets/fdtransport/utils"
)

// OperatorFunc returns the tridiagonal coefficients for layer ctx.Layer
type OperatorFunc func(ctx Context) (tridiag.Coefficients, error)

// SourceFunc returns the right hand side at interior point i. coupling is the
// summed coupling terms at i.
type SourceFunc func(ctx Context, i int, coupling float64) float64

// SeedFunc overrides the sweep start for one layer
type SeedFunc func(ctx Context) tridiag.Seed

// Stepper1D advances one implicit 1-D field. Layer 0 takes boundary values at
// tl=0 and the Initial profile inside; every later layer is one tridiagonal solve.
type Stepper1D struct {
	Name     string
	Grid     grid.Grid1D
	Boundary boundary.Pair
	Initial  boundary.Profile
	Operator OperatorFunc
	// Source defaults to prev[i] + coupling
	Source    SourceFunc
	Couplings []Coupling
	Scheme    tridiag.Scheme
	Seed      SeedFunc
	// Terminal derives the right end from the sweep; Boundary.Right then only
	// supplies layer 0
	Terminal tridiag.TerminalFunc
}

func (s *Stepper1D) FieldName() string { return s.Name }

// Validate checks that every required callback is present
func (s *Stepper1D) Validate() error {
	switch {
	case s.Name == "":
		return utils.NewConfigError("", "name", "field name is empty")
	case s.Grid.PointCount() < 2:
		return utils.NewConfigError("", s.Name, "grid is not initialized")
	case s.Boundary.Left == nil || s.Boundary.Right == nil:
		return utils.NewConfigError("", s.Name, "both boundary values are required")
	case s.Initial == nil:
		return utils.NewConfigError("", s.Name, "initial profile is required")
	case s.Operator == nil:
		return utils.NewConfigError("", s.Name, "operator is required")
	}
	return nil
}

// Helpers lists the fields read through couplings
func (s *Stepper1D) Helpers() (names []string) {
	for _, c := range s.Couplings {
		names = append(names, c.Field)
	}
	return
}

// Start registers the series and stores layer 0
func (s *Stepper1D) Start(st *field.Store) error {
	if err := s.Validate(); err != nil {
		return err
	}
	series := field.NewSeries1D(s.Name, s.Grid, 0)
	if err := st.Add(series); err != nil {
		return err
	}
	n := s.Grid.Intervals()
	layer := make([]float64, n+1)
	layer[0] = s.Boundary.Left(0)
	layer[n] = s.Boundary.Right(0)
	s.Initial.Fill(layer)
	return series.Append(layer)
}

// Step computes layer tl from layer tl-1
func (s *Stepper1D) Step(tl int, st *field.Store) error {
	series, err := st.Series1D(s.Name)
	if err != nil {
		return err
	}
	if series.Last() != tl-1 {
		return fmt.Errorf("%s: cannot compute layer %d after layer %d", s.Name, tl, series.Last())
	}
	prev, _ := series.Layer(tl - 1)

	n := s.Grid.Intervals()
	h := s.Grid.Spacing()
	helpers := make([][]float64, len(s.Couplings))
	for k, c := range s.Couplings {
		if helpers[k], err = helper1D(st, s.Name, c.Field, tl); err != nil {
			return err
		}
		if len(helpers[k]) != n+1 {
			return utils.NewConfigError("", s.Name, "coupled field %s has %d points, want %d",
				c.Field, len(helpers[k]), n+1)
		}
	}

	ctx := Context{Field: s.Name, Layer: tl, Prev: prev, Store: st}
	coef, err := s.Operator(ctx)
	if err != nil {
		return fmt.Errorf("%s layer %d: %w", s.Name, tl, err)
	}
	rhs := func(i int) float64 {
		var cp float64
		for k, c := range s.Couplings {
			cp += c.Scale * utils.SecondDifference(helpers[k], i, h)
		}
		if s.Source == nil {
			return prev[i] + cp
		}
		return s.Source(ctx, i, cp)
	}

	sys := &tridiag.System{
		N:        n,
		Coef:     coef,
		RHS:      rhs,
		U0:       s.Boundary.Left(tl),
		UN:       s.Boundary.Right(tl),
		Scheme:   s.Scheme,
		Terminal: s.Terminal,
	}
	if s.Seed != nil {
		seed := s.Seed(ctx)
		sys.Seed = &seed
	}
	sol, err := sys.Solve(nil)
	if err != nil {
		return fmt.Errorf("%s layer %d: %w", s.Name, tl, err)
	}
	series.Warn(field.WarningsFrom(s.Name, tl, -1, sol)...)
	return series.Append(sol.U)
}

// Run computes layers 0..times into a private store. Only uncoupled steppers can
// run standalone.
func (s *Stepper1D) Run(times int) (*field.Series1D, error) {
	if times < 0 {
		return nil, utils.NewConfigError("", "times", "must not be negative, got %d", times)
	}
	st := field.NewStore()
	if err := s.Start(st); err != nil {
		return nil, err
	}
	for tl := 1; tl <= times; tl++ {
		if err := s.Step(tl, st); err != nil {
			return nil, err
		}
	}
	return st.Series1D(s.Name)
}

// ConstantOperator is an OperatorFunc for layer-independent coefficients
func ConstantOperator(a, b, c float64) OperatorFunc {
	k := tridiag.Constant{A: a, B: b, C: c}
	return func(Context) (tridiag.Coefficients, error) { return k, nil }
}
