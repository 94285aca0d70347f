package planner

import (
	"math"
	"testing"
)

func TestNormalizeHours(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want int
	}{
		{"zero clamps to one", 0, 1},
		{"negative clamps to one", -3, 1},
		{"sub-hour clamps to one", 0.25, 1},
		{"exact hour", 2, 2},
		{"fraction rounds up", 1.5, 2},
		{"tiny fraction rounds up", 2.01, 3},
		{"nan clamps to one", math.NaN(), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeHours(tt.in); got != tt.want {
				t.Errorf("NormalizeHours(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeHoursIdempotent(t *testing.T) {
	for _, x := range []float64{-1, 0, 0.5, 1, 1.5, 2.01, 7, 24} {
		once := NormalizeHours(x)
		twice := NormalizeHours(float64(once))
		if once != twice {
			t.Errorf("NormalizeHours(%v): %d then %d, want fixed point", x, once, twice)
		}
	}
}
