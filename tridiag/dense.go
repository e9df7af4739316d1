package tridiag

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Dense assembles the (N-1)×(N-1) interior system equivalent to sys, with the
// boundary values folded into the right hand side. The banded recurrence and the
// dense system agree for LocalCarry, and for LaggedCarry when a is constant.
func Dense(sys *System) (A *mat.Dense, rhs *mat.VecDense, err error) {
	if sys.Seed != nil || sys.Terminal != nil {
		return nil, nil, fmt.Errorf("tridiag: dense form needs Dirichlet boundaries")
	}
	if sys.Scheme == ExplicitAlfa {
		return nil, nil, fmt.Errorf("tridiag: no dense equivalent for %v", sys.Scheme)
	}
	m := sys.N - 1
	if m < 1 {
		return nil, nil, fmt.Errorf("tridiag: no interior points for N=%d", sys.N)
	}
	dd := make([]float64, m*m)
	ff := make([]float64, m)
	for k := 0; k < m; k++ {
		i := k + 1
		a, b, c := sys.Coef.Row(i)
		dd[k*m+k] = c
		ff[k] = sys.RHS(i)
		if k > 0 {
			dd[k*m+k-1] = -a
		} else {
			ff[k] += a * sys.U0
		}
		if k < m-1 {
			dd[k*m+k+1] = -b
		} else {
			ff[k] += b * sys.UN
		}
	}
	return mat.NewDense(m, m, dd), mat.NewVecDense(m, ff), nil
}

// SolveDense solves the assembled system with gonum and returns the full vector
// u[0..N] including boundary values
func SolveDense(sys *System) ([]float64, error) {
	A, rhs, err := Dense(sys)
	if err != nil {
		return nil, err
	}
	var x mat.VecDense
	if err = x.SolveVec(A, rhs); err != nil {
		return nil, fmt.Errorf("tridiag: dense solve failed: %w", err)
	}
	u := make([]float64, sys.N+1)
	u[0], u[sys.N] = sys.U0, sys.UN
	for k := 0; k < x.Len(); k++ {
		u[k+1] = x.AtVec(k)
	}
	return u, nil
}
