package grid

import (
	"fmt"
	"math"

	"github.com/notargets/fdtransport/utils"
	"gonum.org/v1/gonum/floats"
)

type Dimensionality uint8

const (
	D1 Dimensionality = iota
	D2
)

func (d Dimensionality) String() string {
	switch d {
	case D1:
		return "1D"
	case D2:
		return "2D"
	}
	return fmt.Sprintf("Dimensionality(%d)", uint8(d))
}

// integralTolerance is the relative slack allowed when L/h is checked for
// being a whole number of intervals
const integralTolerance = 1e-9

// Grid1D is a uniform grid of N+1 points covering [Origin, Origin+Extent]
type Grid1D struct {
	origin  float64
	extent  float64
	spacing float64
	n       int
}

// NewGrid1D validates the extent and spacing and returns the grid.
// Extent/Spacing must be a positive whole number of intervals.
func NewGrid1D(origin, extent, spacing float64) (Grid1D, error) {
	switch {
	case !utils.IsFinite(spacing) || spacing <= 0:
		return Grid1D{}, utils.NewConfigError("", "spacing", "must be positive, got %v", spacing)
	case !utils.IsFinite(extent) || extent <= 0:
		return Grid1D{}, utils.NewConfigError("", "extent", "must be positive, got %v", extent)
	case !utils.IsFinite(origin):
		return Grid1D{}, utils.NewConfigError("", "origin", "must be finite, got %v", origin)
	}
	ratio := extent / spacing
	n := math.Round(ratio)
	if n < 1 || math.Abs(ratio-n) > integralTolerance*n {
		return Grid1D{}, utils.NewConfigError("", "spacing",
			"extent %v is not a whole number of intervals of %v (ratio %v)", extent, spacing, ratio)
	}
	return Grid1D{origin: origin, extent: extent, spacing: spacing, n: int(n)}, nil
}

// MustGrid1D is NewGrid1D for grids built from constants; it panics on error
func MustGrid1D(origin, extent, spacing float64) Grid1D {
	g, err := NewGrid1D(origin, extent, spacing)
	if err != nil {
		panic(err)
	}
	return g
}

func (g Grid1D) Origin() float64  { return g.origin }
func (g Grid1D) Extent() float64  { return g.extent }
func (g Grid1D) Spacing() float64 { return g.spacing }

// Intervals is N, the index of the last grid point
func (g Grid1D) Intervals() int { return g.n }

// PointCount is N+1
func (g Grid1D) PointCount() int { return g.n + 1 }

// X returns the coordinate of point i
func (g Grid1D) X(i int) float64 { return g.origin + float64(i)*g.spacing }

// Coordinates returns all point coordinates
func (g Grid1D) Coordinates() []float64 {
	return floats.Span(make([]float64, g.PointCount()), g.origin, g.origin+g.extent)
}

func (g Grid1D) Dimensions() Dimensionality { return D1 }

func (g Grid1D) String() string {
	return fmt.Sprintf("Grid1D{a=%v L=%v h=%v N=%d}", g.origin, g.extent, g.spacing, g.n)
}

// Grid2D is the tensor product of an X grid (columns) and a Y grid (rows)
type Grid2D struct {
	X, Y Grid1D
}

// NewGrid2D builds both axes at origin 0
func NewGrid2D(extentX, spacingX, extentY, spacingY float64) (Grid2D, error) {
	gx, err := NewGrid1D(0, extentX, spacingX)
	if err != nil {
		return Grid2D{}, prefixParam(err, "x.")
	}
	gy, err := NewGrid1D(0, extentY, spacingY)
	if err != nil {
		return Grid2D{}, prefixParam(err, "y.")
	}
	return Grid2D{X: gx, Y: gy}, nil
}

// Shape returns the layer dimensions: Ny+1 rows by Nx+1 columns
func (g Grid2D) Shape() (rows, cols int) {
	return g.Y.PointCount(), g.X.PointCount()
}

func (g Grid2D) Dimensions() Dimensionality { return D2 }

func prefixParam(err error, prefix string) error {
	if ce, ok := err.(*utils.ConfigError); ok {
		cp := *ce
		cp.Param = prefix + cp.Param
		return &cp
	}
	return err
}
