// Package tridiag implements the forward/backward sweep (Thomas algorithm) used by
// every implicit stepper. Rows are written in the transport form
//
//	-a[i]·u[i-1] + c[i]·u[i] - b[i]·u[i+1] = rhs(i),  i = 1..n-1
//
// with u[0] and u[n] supplied as boundary values.
package tridiag

import (
	"fmt"
	"math"

	"github.com/notargets/fdtransport/utils"
)

// Scheme selects the exact recurrence of the forward sweep
type Scheme uint8

const (
	// LaggedCarry: alfa[i] = b[i]/d, beta[i] = (a[i-1]·beta[i-1] + rhs(i))/d,
	// d = c[i] - alfa[i-1]·a[i]. Row 0 must be readable.
	LaggedCarry Scheme = iota
	// LocalCarry: as LaggedCarry but beta carries a[i]
	LocalCarry
	// ExplicitAlfa: alfa[i] = b[i]/c[i] - a[i]·alfa[i-1], beta as LocalCarry
	ExplicitAlfa
)

func (s Scheme) String() string {
	switch s {
	case LaggedCarry:
		return "lagged-carry"
	case LocalCarry:
		return "local-carry"
	case ExplicitAlfa:
		return "explicit-alfa"
	}
	return fmt.Sprintf("Scheme(%d)", uint8(s))
}

// Coefficients supplies the three diagonals row by row
type Coefficients interface {
	Row(i int) (a, b, c float64)
}

// Constant coefficients, the same on every row
type Constant struct {
	A, B, C float64
}

func (k Constant) Row(int) (a, b, c float64) { return k.A, k.B, k.C }

// Arrays holds per-row coefficients indexed by grid point
type Arrays struct {
	A, B, C []float64
}

func (k Arrays) Row(i int) (a, b, c float64) { return k.A[i], k.B[i], k.C[i] }

// NewArrays allocates coefficient arrays for n+1 points
func NewArrays(n int) Arrays {
	return Arrays{A: make([]float64, n+1), B: make([]float64, n+1), C: make([]float64, n+1)}
}

// RowFunc computes coefficients on demand
type RowFunc func(i int) (a, b, c float64)

func (f RowFunc) Row(i int) (a, b, c float64) { return f(i) }

// Seed overrides the sweep start (alfa[0], beta[0]), e.g. for a Robin boundary
type Seed struct {
	Alfa, Beta float64
}

// TerminalFunc derives u[n] from the sweep coefficients in place of a fixed value.
// alfa and beta have length n.
type TerminalFunc func(alfa, beta []float64) float64

// ZeroFlux is the one-sided relation u[n] = beta[n-1] / (1 - alfa[n-1])
func ZeroFlux(alfa, beta []float64) float64 {
	k := len(alfa) - 1
	return beta[k] / (1 - alfa[k])
}

// System describes one tridiagonal solve over points 0..N
type System struct {
	N      int
	Coef   Coefficients
	RHS    func(i int) float64
	U0, UN float64
	Scheme Scheme

	Seed     *Seed
	Terminal TerminalFunc
}

// Degeneracy records a vanishing or non-finite quantity met during the sweep
type Degeneracy struct {
	Index       int
	Denominator float64
	Reason      string
}

func (d Degeneracy) String() string {
	return fmt.Sprintf("row %d: %s (%g)", d.Index, d.Reason, d.Denominator)
}

// Solution carries the solved vector and the sweep coefficients
type Solution struct {
	U            []float64
	Alfa, Beta   []float64
	Degeneracies []Degeneracy
}

// Degenerate reports whether any degeneracy was recorded
func (s *Solution) Degenerate() bool { return len(s.Degeneracies) > 0 }

// pivotTolerance scales with the row magnitude; a denominator below
// pivotTolerance·max(|a|,|b|,|c|) counts as zero
const pivotTolerance = 1e-14

// Solve runs the forward and backward sweeps. dst receives u and must have
// length N+1, or be nil to allocate. Degenerate rows never abort the solve;
// they are listed in the returned Solution.
func (sys *System) Solve(dst []float64) (*Solution, error) {
	n := sys.N
	if n < 1 {
		return nil, fmt.Errorf("tridiag: need at least one interval, got N=%d", n)
	}
	if sys.Coef == nil || sys.RHS == nil {
		return nil, fmt.Errorf("tridiag: coefficients and right hand side are required")
	}
	if dst == nil {
		dst = make([]float64, n+1)
	}
	if len(dst) != n+1 {
		return nil, fmt.Errorf("tridiag: destination length %d, want %d", len(dst), n+1)
	}

	sol := &Solution{
		U:    dst,
		Alfa: make([]float64, n),
		Beta: make([]float64, n),
	}
	alfa, beta := sol.Alfa, sol.Beta
	alfa[0], beta[0] = 0, sys.U0
	if sys.Seed != nil {
		alfa[0], beta[0] = sys.Seed.Alfa, sys.Seed.Beta
	}

	var aPrev float64
	if sys.Scheme == LaggedCarry {
		aPrev, _, _ = sys.Coef.Row(0)
	}
	for i := 1; i < n; i++ {
		a, b, c := sys.Coef.Row(i)
		d := c - alfa[i-1]*a
		sol.check(i, d, a, b, c)
		switch sys.Scheme {
		case LaggedCarry:
			alfa[i] = b / d
			beta[i] = (aPrev*beta[i-1] + sys.RHS(i)) / d
			aPrev = a
		case LocalCarry:
			alfa[i] = b / d
			beta[i] = (a*beta[i-1] + sys.RHS(i)) / d
		case ExplicitAlfa:
			sol.check(i, c, a, b, c)
			alfa[i] = b/c - a*alfa[i-1]
			beta[i] = (a*beta[i-1] + sys.RHS(i)) / d
		default:
			return nil, fmt.Errorf("tridiag: unknown scheme %v", sys.Scheme)
		}
	}

	dst[0] = sys.U0
	dst[n] = sys.UN
	if sys.Terminal != nil {
		dst[n] = sys.Terminal(alfa, beta)
		if !utils.IsFinite(dst[n]) {
			sol.add(n, dst[n], "non-finite terminal value")
		}
	}
	for j := n - 1; j >= 1; j-- {
		dst[j] = alfa[j]*dst[j+1] + beta[j]
		if !utils.IsFinite(dst[j]) {
			sol.add(j, dst[j], "non-finite value")
		}
	}
	return sol, nil
}

func (s *Solution) check(i int, d, a, b, c float64) {
	switch {
	case !utils.IsFinite(d):
		s.add(i, d, "non-finite denominator")
	case math.Abs(d) <= pivotTolerance*utils.MaxAbs(a, b, c):
		s.add(i, d, "zero denominator")
	}
}

func (s *Solution) add(i int, d float64, reason string) {
	s.Degeneracies = append(s.Degeneracies, Degeneracy{Index: i, Denominator: d, Reason: reason})
}

// Solve is a convenience wrapper for the common Dirichlet case
func Solve(n int, coef Coefficients, rhs func(i int) float64, u0, un float64) (*Solution, error) {
	sys := &System{N: n, Coef: coef, RHS: rhs, U0: u0, UN: un}
	return sys.Solve(nil)
}
