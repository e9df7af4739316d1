package stepper

import (
	"fmt"

	"github.com/notargets/fdtransport/boundary"
	"github.com/notargets/fdtransport/field"
	"github.com/notargets/fdtransport/grid"
	"github.com/notargets/fdtransport/tridiag"
	"github.com/notargets/fdtransport/utils"
	"gonum.org/v1/gonum/mat"
)

// Source2DFunc returns the right hand side at (row, col) of the layer being swept
type Source2DFunc func(ctx Context2D, row, col int, coupling float64) float64

// ADI2D advances a 2-D field by alternating directions. Whole step k stores a
// half step (X sweeps along rows, internal layer 2k-1) and a full step (Y sweeps
// along columns, internal layer 2k).
//
// Row 0 is never swept: its corners take Left/Right and its interior EdgeRow.
// In the full step column 0 is Left on every row; each swept column starts its
// recurrence from beta[0] = Left and ends in the one-sided relation
// u[Ny] = beta[Ny-1]/(1-alfa[Ny-1]).
type ADI2D struct {
	Name    string
	Grid    grid.Grid2D
	Left    boundary.Value
	Right   boundary.Value
	EdgeRow boundary.Profile
	// Initial gives every entry of layer 0
	Initial func(row, col int) float64
	X, Y    tridiag.Coefficients
	// sources default to prev + coupling
	SourceX   Source2DFunc
	SourceY   Source2DFunc
	Couplings []Coupling
}

func (a *ADI2D) FieldName() string { return a.Name }

func (a *ADI2D) Helpers() (names []string) {
	for _, c := range a.Couplings {
		names = append(names, c.Field)
	}
	return
}

func (a *ADI2D) Validate() error {
	switch {
	case a.Name == "":
		return utils.NewConfigError("", "name", "field name is empty")
	case a.Left == nil || a.Right == nil || a.EdgeRow == nil:
		return utils.NewConfigError("", a.Name, "boundary values and edge row are required")
	case a.Initial == nil:
		return utils.NewConfigError("", a.Name, "initial condition is required")
	case a.X == nil || a.Y == nil:
		return utils.NewConfigError("", a.Name, "coefficients for both axes are required")
	case a.Grid.X.PointCount() < 2 || a.Grid.Y.PointCount() < 2:
		return utils.NewConfigError("", a.Name, "grid is not initialized")
	}
	return nil
}

// InternalLayers is the number of internal layers after times whole steps
func InternalLayers(times int) int { return 2*times + 1 }

// Start registers the series and stores layer 0
func (a *ADI2D) Start(st *field.Store) error {
	if err := a.Validate(); err != nil {
		return err
	}
	series := field.NewSeries2D(a.Name, a.Grid)
	if err := st.Add(series); err != nil {
		return err
	}
	rows, cols := a.Grid.Shape()
	layer := mat.NewDense(rows, cols, nil)
	for v := 0; v < rows; v++ {
		for i := 0; i < cols; i++ {
			layer.Set(v, i, a.Initial(v, i))
		}
	}
	return series.Append(layer)
}

// Step computes the half and full step layers of whole step k
func (a *ADI2D) Step(k int, st *field.Store) error {
	series, err := st.Series2D(a.Name)
	if err != nil {
		return err
	}
	if series.InternalLen() != 2*k-1 {
		return fmt.Errorf("%s: cannot compute step %d with %d internal layers", a.Name, k, series.InternalLen())
	}
	prev, _ := series.Internal(2*k - 2)

	half, err := a.halfStep(k, prev, st, series)
	if err != nil {
		return err
	}
	if err = series.Append(half); err != nil {
		return err
	}
	full, err := a.fullStep(k, half, st, series)
	if err != nil {
		return err
	}
	return series.Append(full)
}

func (a *ADI2D) helpers(st *field.Store, internal int) ([]*mat.Dense, error) {
	rows, cols := a.Grid.Shape()
	out := make([]*mat.Dense, len(a.Couplings))
	for j, c := range a.Couplings {
		h, err := helperInternal(st, a.Name, c.Field, internal)
		if err != nil {
			return nil, err
		}
		if r, cc := h.Dims(); r != rows || cc != cols {
			return nil, utils.NewConfigError("", a.Name, "coupled field %s is %dx%d, want %dx%d",
				c.Field, r, cc, rows, cols)
		}
		out[j] = h
	}
	return out, nil
}

func (a *ADI2D) edgeRow(k int, layer *mat.Dense) {
	nx := a.Grid.X.Intervals()
	layer.Set(0, 0, a.Left(k))
	for i := 1; i < nx; i++ {
		layer.Set(0, i, a.EdgeRow(i))
	}
	layer.Set(0, nx, a.Right(k))
}

func (a *ADI2D) halfStep(k int, prev *mat.Dense, st *field.Store, series *field.Series2D) (*mat.Dense, error) {
	internal := 2*k - 1
	helpers, err := a.helpers(st, internal)
	if err != nil {
		return nil, err
	}
	rows, cols := a.Grid.Shape()
	nx := a.Grid.X.Intervals()
	hx := a.Grid.X.Spacing()
	layer := mat.NewDense(rows, cols, nil)
	a.edgeRow(k, layer)

	ctx := Context2D{Field: a.Name, Step: k, Internal: internal, Prev: prev, Store: st}
	u := make([]float64, cols)
	for v := 1; v < rows; v++ {
		row := v
		sys := &tridiag.System{
			N:    nx,
			Coef: a.X,
			RHS: func(i int) float64 {
				var cp float64
				for j, c := range a.Couplings {
					h := helpers[j]
					cp += c.Scale * (h.At(row, i-1) - 2*h.At(row, i) + h.At(row, i+1)) / (hx * hx)
				}
				if a.SourceX == nil {
					return prev.At(row, i) + cp
				}
				return a.SourceX(ctx, row, i, cp)
			},
			U0: a.Left(k),
			UN: a.Right(k),
		}
		sol, err := sys.Solve(u)
		if err != nil {
			return nil, fmt.Errorf("%s step %d row %d: %w", a.Name, k, v, err)
		}
		series.Warn(field.WarningsFrom(a.Name, internal, v, sol)...)
		layer.SetRow(v, u)
	}
	return layer, nil
}

func (a *ADI2D) fullStep(k int, half *mat.Dense, st *field.Store, series *field.Series2D) (*mat.Dense, error) {
	internal := 2 * k
	helpers, err := a.helpers(st, internal)
	if err != nil {
		return nil, err
	}
	rows, cols := a.Grid.Shape()
	ny := a.Grid.Y.Intervals()
	hy := a.Grid.Y.Spacing()
	layer := mat.NewDense(rows, cols, nil)
	a.edgeRow(k, layer)
	for v := 1; v < rows; v++ {
		layer.Set(v, 0, a.Left(k))
	}

	ctx := Context2D{Field: a.Name, Step: k, Internal: internal, Prev: half, Store: st}
	seed := &tridiag.Seed{Beta: a.Left(k)}
	u := make([]float64, rows)
	for v := 1; v < cols; v++ {
		col := v
		sys := &tridiag.System{
			N:    ny,
			Coef: a.Y,
			RHS: func(i int) float64 {
				var cp float64
				for j, c := range a.Couplings {
					h := helpers[j]
					cp += c.Scale * (h.At(i-1, col) - 2*h.At(i, col) + h.At(i+1, col)) / (hy * hy)
				}
				if a.SourceY == nil {
					return half.At(i, col) + cp
				}
				return a.SourceY(ctx, i, col, cp)
			},
			U0:       layer.At(0, col),
			Seed:     seed,
			Terminal: tridiag.ZeroFlux,
		}
		sol, err := sys.Solve(u)
		if err != nil {
			return nil, fmt.Errorf("%s step %d column %d: %w", a.Name, k, v, err)
		}
		series.Warn(field.WarningsFrom(a.Name, internal, v, sol)...)
		layer.SetCol(v, u)
	}
	return layer, nil
}

// Run computes times whole steps into a private store. Only uncoupled fields can
// run standalone.
func (a *ADI2D) Run(times int) (*field.Series2D, error) {
	if times < 0 {
		return nil, utils.NewConfigError("", "times", "must not be negative, got %d", times)
	}
	st := field.NewStore()
	if err := a.Start(st); err != nil {
		return nil, err
	}
	for k := 1; k <= times; k++ {
		if err := a.Step(k, st); err != nil {
			return nil, err
		}
	}
	return st.Series2D(a.Name)
}
