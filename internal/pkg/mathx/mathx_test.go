package mathx

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	if got := Clamp(1.7, 0, 1); got != 1 {
		t.Fatalf("Clamp high = %v", got)
	}
	if got := Clamp(-0.2, 0, 1); got != 0 {
		t.Fatalf("Clamp low = %v", got)
	}
	if got := Clamp(0.4, 0, 1); got != 0.4 {
		t.Fatalf("Clamp mid = %v", got)
	}
}

func TestRoundPtr(t *testing.T) {
	if RoundPtr(nil, 2) != nil {
		t.Fatalf("RoundPtr(nil) should be nil")
	}
	cases := []struct {
		in     float64
		places int
		want   float64
	}{
		{3.14159, 2, 3.14},
		{14.499, 2, 14.5},
		{2.5, 0, 2},
		{3.5, 0, 4},
		{0.125, 2, 0.12},
	}
	for _, tc := range cases {
		v := tc.in
		if got := RoundPtr(&v, tc.places); got == nil || *got != tc.want {
			t.Fatalf("RoundPtr(%v, %d) = %v, want %v", tc.in, tc.places, got, tc.want)
		}
	}
}

func TestFinite(t *testing.T) {
	if Finite(math.NaN()) || Finite(math.Inf(-1)) || !Finite(0.5) {
		t.Fatalf("Finite misclassified a value")
	}
}
