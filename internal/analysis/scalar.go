// SPDX-License-Identifier: MIT
package analysis

// scalarKernel processes one element at a time. It is the reference the
// vector kernel is tested against.
type scalarKernel struct{}

var _ kernel = scalarKernel{}

func (scalarKernel) allZero(x []float32) bool {
	for _, s := range x {
		if s != 0 {
			return false
		}
	}
	return true
}

func (scalarKernel) allBelow(x []float32, limit float32) bool {
	for _, v := range x {
		if !(v < limit) {
			return false
		}
	}
	return true
}

func (scalarKernel) mul(dst, coeffs []float32) {
	for i := range dst {
		dst[i] *= coeffs[i]
	}
}

func (scalarKernel) magnitudes(dst, pairs, tsmooth []float32, p magParams) {
	for i := range dst {
		re, im := pairs[2*i], pairs[2*i+1]
		mag := sqrt32(re*re+im*im) * p.scale

		if p.slope != nil {
			mag *= p.slope[i]
		}
		if p.smooth {
			mag = SmoothPeak(&tsmooth[i], mag, p.gravity, p.fastPeaks)
			tsmooth[i] = mag
		}

		dst[i] = mag
	}
}

func (scalarKernel) sumSquares(x []float32) float32 {
	var sum float32
	for _, s := range x {
		sum += s * s
	}
	return sum
}

func (scalarKernel) maxAbs(x []float32) float32 {
	var out float32
	for _, s := range x {
		out = max(out, abs32(s))
	}
	return out
}

func (scalarKernel) toDecibels(dst, src []float32) {
	for i := range dst {
		dst[i] = DBFS(src[i])
	}
}

func (scalarKernel) average(dst, a, b []float32) {
	for i := range dst {
		dst[i] = (a[i] + b[i]) * 0.5
	}
}
