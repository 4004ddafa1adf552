// SPDX-License-Identifier: MIT
package analysis

import "math"

// kernel is the set of array primitives a backend provides. The pipelines
// own all control flow; kernels only differ in execution width and the
// order in which reductions are summed.
type kernel interface {
	// allZero reports whether every sample is exactly zero.
	allZero(x []float32) bool
	// allBelow reports whether every value is strictly below limit.
	allBelow(x []float32, limit float32) bool
	// mul multiplies dst by coeffs element-wise.
	mul(dst, coeffs []float32)
	// magnitudes converts interleaved pairs to scaled, weighted and
	// smoothed magnitudes in dst.
	magnitudes(dst, pairs, tsmooth []float32, p magParams)
	// sumSquares returns the sum of x[i]^2.
	sumSquares(x []float32) float32
	// maxAbs returns the largest |x[i]|, or 0 for an empty slice.
	maxAbs(x []float32) float32
	// toDecibels writes DBFS(src[i]) into dst. dst may alias src.
	toDecibels(dst, src []float32)
	// average writes (a[i]+b[i])/2 into dst.
	average(dst, a, b []float32)
}

type magParams struct {
	scale     float32   // 2/FFTSize
	slope     []float32 // nil when disabled
	smooth    bool
	fastPeaks bool
	gravity   float32
}

func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

func abs32(x float32) float32 {
	return math.Float32frombits(math.Float32bits(x) &^ (1 << 31))
}
