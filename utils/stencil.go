package utils

import "math"

// UpwindSplit separates a transport velocity into its upwind parts,
// R = (-v+|v|)/2 and r = (-v-|v|)/2, so R >= 0, r <= 0 and R+r = -v
func UpwindSplit(v float64) (R, r float64) {
	abs := math.Abs(v)
	return (-v + abs) / 2, (-v - abs) / 2
}

// SecondDifference returns the central second difference of u at i divided by h²
func SecondDifference(u []float64, i int, h float64) float64 {
	return (u[i-1] - 2*u[i] + u[i+1]) / (h * h)
}

// CentralDifference returns u[i+1]-u[i-1] (undivided)
func CentralDifference(u []float64, i int) float64 {
	return u[i+1] - u[i-1]
}

// IsFinite reports whether x is neither NaN nor ±Inf
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// MaxAbs returns the largest magnitude among vals
func MaxAbs(vals ...float64) (m float64) {
	for _, v := range vals {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return
}
