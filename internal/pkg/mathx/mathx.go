package mathx

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// RoundPtr rounds *v half to even to the given number of places, passing nil through.
func RoundPtr(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}
	r := scalar.RoundEven(*v, places)
	return &r
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Finite reports whether v is neither NaN nor ±Inf.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
