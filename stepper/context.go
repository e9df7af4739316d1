// Package stepper advances fields through time layers. Stepper1D and ADI2D wrap
// the tridiagonal sweep; Explicit1D covers fields computed pointwise from layers
// that already exist.
package stepper

import (
	"github.com/notargets/fdtransport/field"
	"github.com/notargets/fdtransport/utils"
	"gonum.org/v1/gonum/mat"
)

// Context is passed to coefficient and source callbacks for one 1-D layer
type Context struct {
	Field string
	Layer int
	Prev  []float64
	Store *field.Store
}

// Helper reads time layer tl of another 1-D field
func (c Context) Helper(name string, tl int) ([]float64, error) {
	return helper1D(c.Store, c.Field, name, tl)
}

func helper1D(st *field.Store, owner, name string, tl int) ([]float64, error) {
	s, err := st.Series1D(name)
	if err != nil {
		return nil, utils.NewConfigError("", owner, "helper: %v", err)
	}
	layer, ok := s.Layer(tl)
	if !ok {
		return nil, &utils.DependencyError{Field: owner, Dependency: name, Layer: tl}
	}
	return layer, nil
}

// Context2D is passed to 2-D source callbacks for one sweep.
// Prev is the layer the sweep advances from.
type Context2D struct {
	Field    string
	Step     int
	Internal int
	Prev     *mat.Dense
	Store    *field.Store
}

func helperInternal(st *field.Store, owner, name string, k int) (*mat.Dense, error) {
	s, err := st.Series2D(name)
	if err != nil {
		return nil, utils.NewConfigError("", owner, "helper: %v", err)
	}
	layer, ok := s.Internal(k)
	if !ok {
		return nil, &utils.DependencyError{Field: owner, Dependency: name, Layer: k}
	}
	return layer, nil
}

// Coupling adds Scale·(h[i-1] - 2h[i] + h[i+1])/Δ² from helper field Field to the
// right hand side, Δ being the spacing of the swept axis
type Coupling struct {
	Field string
	Scale float64
}
