// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"math/rand"
	"testing"
)

var kernels = []struct {
	name string
	k    kernel
}{
	{"scalar", scalarKernel{}},
	{"vector", vectorKernel{}},
}

// kernelLengths covers empty input, tails shorter than a block, exact
// blocks and long runs.
var kernelLengths = []int{0, 1, 7, 8, 9, 15, 16, 17, 31, 33, 64, 1000, 1024}

func randomSlice(rng *rand.Rand, n int, amplitude float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = (rng.Float32()*2 - 1) * amplitude
	}
	return out
}

func TestKernelScans(t *testing.T) {
	for _, kk := range kernels {
		t.Run(kk.name, func(t *testing.T) {
			for _, n := range kernelLengths {
				zeros := make([]float32, n)
				if !kk.k.allZero(zeros) {
					t.Errorf("allZero(%d zeros) = false", n)
				}
				for pos := range n {
					zeros[pos] = 1e-30
					if kk.k.allZero(zeros) {
						t.Errorf("allZero missed a non-zero at %d of %d", pos, n)
					}
					zeros[pos] = 0
				}

				below := make([]float32, n)
				fill(below, -140)
				if !kk.k.allBelow(below, -130) {
					t.Errorf("allBelow(%d values under limit) = false", n)
				}
				for _, bad := range []float32{-130, -20, float32(math.NaN())} {
					for pos := range n {
						below[pos] = bad
						if kk.k.allBelow(below, -130) {
							t.Errorf("allBelow accepted %v at %d of %d", bad, pos, n)
						}
						below[pos] = -140
					}
				}
			}
		})
	}
}

func TestKernelsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	scalar, vector := scalarKernel{}, vectorKernel{}

	for _, n := range kernelLengths {
		x := randomSlice(rng, n, 1)

		if s, v := scalar.maxAbs(x), vector.maxAbs(x); s != v {
			t.Errorf("n=%d: maxAbs scalar %v != vector %v", n, s, v)
		}

		s, v := scalar.sumSquares(x), vector.sumSquares(x)
		if math.Abs(float64(s-v)) > 1e-5*math.Max(1, float64(s)) {
			t.Errorf("n=%d: sumSquares scalar %v, vector %v", n, s, v)
		}

		coeffs := randomSlice(rng, n, 1)
		a, b := append([]float32(nil), x...), append([]float32(nil), x...)
		scalar.mul(a, coeffs)
		vector.mul(b, coeffs)
		assertEqualSlices(t, "mul", a, b, 0)

		other := randomSlice(rng, n, 1)
		scalar.average(a, x, other)
		vector.average(b, x, other)
		assertEqualSlices(t, "average", a, b, 0)

		scalar.toDecibels(a, a)
		vector.toDecibels(b, b)
		assertEqualSlices(t, "toDecibels", a, b, 0)
	}
}

func TestKernelMagnitudesAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	slope := slopeTable(1024, 0.7)

	tests := []struct {
		name string
		p    magParams
	}{
		{"Plain", magParams{scale: 2.0 / 2048}},
		{"Slope", magParams{scale: 2.0 / 2048, slope: slope}},
		{"Smooth", magParams{scale: 2.0 / 2048, smooth: true, gravity: 0.65}},
		{"FastPeaks", magParams{scale: 2.0 / 2048, slope: slope, smooth: true, fastPeaks: true, gravity: 0.8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, n := range kernelLengths {
				pairs := randomSlice(rng, 2*n, 50)
				prev := randomSlice(rng, n, 0.05)

				p := tt.p
				if p.slope != nil {
					p.slope = p.slope[:n]
				}

				ds, dv := make([]float32, n), make([]float32, n)
				ss, sv := append([]float32(nil), prev...), append([]float32(nil), prev...)
				scalarKernel{}.magnitudes(ds, pairs, ss, p)
				vectorKernel{}.magnitudes(dv, pairs, sv, p)

				assertEqualSlices(t, "magnitudes", ds, dv, 1e-7)
				assertEqualSlices(t, "smoothing state", ss, sv, 1e-7)
			}
		})
	}
}

func assertEqualSlices(t *testing.T, what string, a, b []float32, tol float64) {
	t.Helper()
	if len(a) != len(b) {
		t.Fatalf("%s: length %d != %d", what, len(a), len(b))
	}
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > tol {
			t.Fatalf("%s[%d]: %v != %v (len %d)", what, i, a[i], b[i], len(a))
		}
	}
}

func BenchmarkKernelMagnitudes(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	pairs := randomSlice(rng, 4096, 50)
	p := magParams{scale: 2.0 / 4096, slope: slopeTable(2048, 0.5), smooth: true, fastPeaks: true, gravity: 0.65}

	for _, kk := range kernels {
		b.Run(kk.name, func(b *testing.B) {
			dst, prev := make([]float32, 2048), make([]float32, 2048)
			b.ReportAllocs()
			for b.Loop() {
				kk.k.magnitudes(dst, pairs, prev, p)
			}
		})
	}
}

func BenchmarkKernelSumSquares(b *testing.B) {
	x := randomSlice(rand.New(rand.NewSource(1)), 4096, 1)

	for _, kk := range kernels {
		b.Run(kk.name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				kk.k.sumSquares(x)
			}
		})
	}
}
