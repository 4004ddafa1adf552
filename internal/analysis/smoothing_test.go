// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"testing"
)

func TestDBFS(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"FullScale", 1, 0},
		{"Half", 0.5, float32(20 * math.Log10(0.5))},
		{"Tenth", 0.1, -20},
		{"AboveFullScale", 10, 20},
		{"Zero", 0, MinDecibels},
		{"Negative", -0.5, MinDecibels},
		{"Underflow", 1e-12, MinDecibels},
		{"NaN", nan, MinDecibels},
		{"PositiveInf", inf, MinDecibels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DBFS(tt.in)
			if math.Abs(float64(got-tt.want)) > 1e-4 {
				t.Errorf("DBFS(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if math.IsNaN(float64(got)) || math.IsInf(float64(got), 0) {
				t.Errorf("DBFS(%v) produced non-finite %v", tt.in, got)
			}
		})
	}
}

func TestDBFSMonotonic(t *testing.T) {
	prev := DBFS(0)
	for x := float32(1e-12); x < 100; x *= 1.07 {
		got := DBFS(x)
		if got < prev {
			t.Fatalf("DBFS(%g) = %v is below DBFS of a smaller input (%v)", x, got, prev)
		}
		if got < MinDecibels {
			t.Fatalf("DBFS(%g) = %v is below MinDecibels", x, got)
		}
		prev = got
	}
}

func TestSmoothConverges(t *testing.T) {
	for _, gravity := range []float32{0, 0.3, 0.65, 0.9} {
		var v float32
		for range 400 {
			v = Smooth(v, 1, gravity)
		}
		if math.Abs(float64(v-1)) > 1e-5 {
			t.Errorf("gravity %v: value after 400 steps = %v, want 1", gravity, v)
		}
	}

	if got := Smooth(0.25, 1, 0); got != 1 {
		t.Errorf("Smooth with zero gravity = %v, want input unchanged", got)
	}
}

func TestSmoothPeak(t *testing.T) {
	tests := []struct {
		name      string
		prev, cur float32
		fastPeaks bool
		want      float32
		wantPrev  float32
	}{
		{"RiseSlow", 0, 1, false, 0.5, 0},
		{"RiseFast", 0, 1, true, 1, 1},
		{"FallSlow", 1, 0, false, 0.5, 1},
		{"FallFast", 1, 0, true, 0.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := tt.prev
			got := SmoothPeak(&prev, tt.cur, 0.5, tt.fastPeaks)
			if got != tt.want || prev != tt.wantPrev {
				t.Errorf("SmoothPeak() = %v (prev %v), want %v (prev %v)", got, prev, tt.want, tt.wantPrev)
			}
		})
	}
}

func TestSmoothLevelHoldsNewPeaks(t *testing.T) {
	if got := smoothLevel(0.2, 0.8, 0.9, true); got != 0.8 {
		t.Errorf("fast peak rise = %v, want 0.8 unsmoothed", got)
	}
	if got := smoothLevel(0.2, 0.8, 0.5, false); got != 0.5 {
		t.Errorf("slow rise = %v, want 0.5", got)
	}
	if got := smoothLevel(0.8, 0.2, 0.5, true); got != 0.5 {
		t.Errorf("fast peak fall = %v, want 0.5 smoothed", got)
	}
}
