package models

// FilteringSpeed is the linear filtration velocity profile k·(l - 2·j·h') at the
// n+1 grid points of a bed of length l, where h' = l/n is taken in whole units
func FilteringSpeed(k float64, length, intervals int) []float64 {
	step := length / intervals
	q := make([]float64, intervals+1)
	for j := range q {
		q[j] = k * float64(length-2*j*step)
	}
	return q
}

// GroundwaterSpeed is the Darcy velocity (H1 - H2)·k/l between two heads
func GroundwaterSpeed(h1, h2, k, l float64) float64 {
	return (h1 - h2) * k / l
}
