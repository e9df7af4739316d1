// Package boundary holds Dirichlet boundary functions of the time-layer index and
// initial-condition profiles over grid indices.
package boundary

import "math"

// Value gives a boundary value for time layer tl
type Value func(tl int) float64

// Constant holds v on every layer
func Constant(v float64) Value {
	return func(int) float64 { return v }
}

// Scaled evaluates f at the continuous time tl·step
func Scaled(step float64, f func(t float64) float64) Value {
	return func(tl int) float64 { return f(float64(tl) * step) }
}

// Pair groups the two ends of a 1-D field
type Pair struct {
	Left, Right Value
}

// Profile gives an initial value for grid index i
type Profile func(i int) float64

// Uniform is v at every index
func Uniform(v float64) Profile {
	return func(int) float64 { return v }
}

// Linear interpolates from at index 0 to to at index n
func Linear(from, to float64, n int) Profile {
	return func(i int) float64 {
		return (to-from)*float64(i)/float64(n) + from
	}
}

// Exponential decays from c0 at index 0 towards c0·(cn/c0) at index n
func Exponential(c0, cn float64, n int) Profile {
	rate := math.Log(c0/cn) / float64(n)
	return func(i int) float64 {
		return c0 * math.Exp(-float64(i)*rate)
	}
}

// Fill evaluates p at indices 1..len(dst)-2 leaving the ends untouched
func (p Profile) Fill(dst []float64) {
	for i := 1; i < len(dst)-1; i++ {
		dst[i] = p(i)
	}
}
