// File: field/field.go
// Time-layer storage for solved fields. Layers are append-only: once a layer is
// stored it is never rewritten, and later layers are computed from it.

package field

import (
	"fmt"

	"github.com/notargets/fdtransport/grid"
	"github.com/notargets/fdtransport/tridiag"
	"gonum.org/v1/gonum/mat"
)

// Warning is a numeric degeneracy met while producing a layer
type Warning struct {
	Field       string
	Layer       int // internal layer index
	Line        int // swept row or column for 2-D layers, -1 for 1-D
	Index       int
	Denominator float64
	Reason      string
}

func (w Warning) String() string {
	if w.Line >= 0 {
		return fmt.Sprintf("%s layer %d line %d point %d: %s (%g)",
			w.Field, w.Layer, w.Line, w.Index, w.Reason, w.Denominator)
	}
	return fmt.Sprintf("%s layer %d point %d: %s (%g)", w.Field, w.Layer, w.Index, w.Reason, w.Denominator)
}

// WarningsFrom converts solver degeneracies into warnings
func WarningsFrom(name string, layer, line int, sol *tridiag.Solution) (ws []Warning) {
	for _, d := range sol.Degeneracies {
		ws = append(ws, Warning{
			Field:       name,
			Layer:       layer,
			Line:        line,
			Index:       d.Index,
			Denominator: d.Denominator,
			Reason:      d.Reason,
		})
	}
	return
}

// Series is the common view over 1-D and 2-D layer sequences
type Series interface {
	Name() string
	Dimensions() grid.Dimensionality
	// First is the time-layer index of the first stored layer
	First() int
	// TimeLayers counts stored whole time layers
	TimeLayers() int
	Warnings() []Warning
	Warn(ws ...Warning)
}

// Series1D stores 1-D layers contiguously.
// Layout: [layer First][layer First+1]...; layer k starts at data[offsets[k-First]]
type Series1D struct {
	name     string
	grid     grid.Grid1D
	first    int
	data     []float64
	offsets  []int
	warnings []Warning
}

func NewSeries1D(name string, g grid.Grid1D, first int) *Series1D {
	return &Series1D{
		name:    name,
		grid:    g,
		first:   first,
		offsets: []int{0},
	}
}

func (s *Series1D) Name() string                    { return s.name }
func (s *Series1D) Grid() grid.Grid1D               { return s.grid }
func (s *Series1D) Dimensions() grid.Dimensionality { return grid.D1 }
func (s *Series1D) First() int                      { return s.first }
func (s *Series1D) TimeLayers() int                 { return len(s.offsets) - 1 }
func (s *Series1D) Warnings() []Warning             { return s.warnings }
func (s *Series1D) Warn(ws ...Warning)              { s.warnings = append(s.warnings, ws...) }

// Last is the index of the newest layer, First-1 when empty
func (s *Series1D) Last() int { return s.first + s.TimeLayers() - 1 }

// Append copies layer in as time layer Last()+1
func (s *Series1D) Append(layer []float64) error {
	if len(layer) != s.grid.PointCount() {
		return fmt.Errorf("%s: layer has %d points, grid has %d", s.name, len(layer), s.grid.PointCount())
	}
	s.data = append(s.data, layer...)
	s.offsets = append(s.offsets, len(s.data))
	return nil
}

// Layer returns time layer tl. The slice aliases series storage and must not be modified.
func (s *Series1D) Layer(tl int) ([]float64, bool) {
	k := tl - s.first
	if k < 0 || k >= s.TimeLayers() {
		return nil, false
	}
	return s.data[s.offsets[k]:s.offsets[k+1]:s.offsets[k+1]], true
}

// Layers returns every stored layer in order
func (s *Series1D) Layers() [][]float64 {
	out := make([][]float64, s.TimeLayers())
	for k := range out {
		out[k], _ = s.Layer(s.first + k)
	}
	return out
}

// Matrix copies the series into a (layers × points) matrix
func (s *Series1D) Matrix() *mat.Dense {
	if s.TimeLayers() == 0 {
		return nil
	}
	data := make([]float64, len(s.data))
	copy(data, s.data)
	return mat.NewDense(s.TimeLayers(), s.grid.PointCount(), data)
}

// Series2D stores ADI layers. Internal layer 0 is the initial condition; whole step k
// has its half step at internal index 2k-1 and its full step at 2k.
type Series2D struct {
	name     string
	grid     grid.Grid2D
	internal []*mat.Dense
	warnings []Warning
}

func NewSeries2D(name string, g grid.Grid2D) *Series2D {
	return &Series2D{name: name, grid: g}
}

func (s *Series2D) Name() string                    { return s.name }
func (s *Series2D) Grid() grid.Grid2D               { return s.grid }
func (s *Series2D) Dimensions() grid.Dimensionality { return grid.D2 }
func (s *Series2D) First() int                      { return 0 }
func (s *Series2D) Warnings() []Warning             { return s.warnings }
func (s *Series2D) Warn(ws ...Warning)              { s.warnings = append(s.warnings, ws...) }

// InternalLen counts half and full step layers together
func (s *Series2D) InternalLen() int { return len(s.internal) }

// TimeLayers counts the initial layer plus completed whole steps
func (s *Series2D) TimeLayers() int { return (len(s.internal) + 1) / 2 }

// Append stores the next internal layer
func (s *Series2D) Append(layer *mat.Dense) error {
	rows, cols := s.grid.Shape()
	if r, c := layer.Dims(); r != rows || c != cols {
		return fmt.Errorf("%s: layer is %dx%d, grid is %dx%d", s.name, r, c, rows, cols)
	}
	s.internal = append(s.internal, layer)
	return nil
}

// Internal returns internal layer k
func (s *Series2D) Internal(k int) (*mat.Dense, bool) {
	if k < 0 || k >= len(s.internal) {
		return nil, false
	}
	return s.internal[k], true
}

// Layer returns the full-step layer for time layer tl
func (s *Series2D) Layer(tl int) (*mat.Dense, bool) {
	return s.Internal(2 * tl)
}

// Reported returns the initial layer and every full-step layer
func (s *Series2D) Reported() []*mat.Dense {
	out := make([]*mat.Dense, 0, s.TimeLayers())
	for k := 0; k < len(s.internal); k += 2 {
		out = append(out, s.internal[k])
	}
	return out
}
