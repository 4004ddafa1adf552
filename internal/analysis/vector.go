// SPDX-License-Identifier: MIT
package analysis

import "waveform/pkg/bitint"

// lanes is the block width of the vector kernel, the float32 count of a
// 256-bit register.
const lanes = 8

const allLanes = 1<<lanes - 1

type vec [lanes]float32

// vectorKernel is plain Go over fixed blocks of eight lanes. The fixed size
// lets the compiler drop bounds checks, but gc does not auto-vectorize, so
// each lane still runs as a scalar instruction. Reductions accumulate per
// lane and are folded pairwise at the end, which changes summation order
// compared to scalarKernel. Tails shorter than a block run scalar.
type vectorKernel struct{}

var _ kernel = vectorKernel{}

func block(x []float32, i int) *vec {
	return (*vec)(x[i : i+lanes])
}

func (vectorKernel) allZero(x []float32) bool {
	i, end := 0, bitint.AlignDown(len(x), lanes)
	for ; i < end; i += lanes {
		v := block(x, i)
		mask := 0
		for j, s := range v {
			if s == 0 {
				mask |= 1 << j
			}
		}
		if mask != allLanes {
			return false
		}
	}
	return scalarKernel{}.allZero(x[i:])
}

func (vectorKernel) allBelow(x []float32, limit float32) bool {
	i, end := 0, bitint.AlignDown(len(x), lanes)
	for ; i < end; i += lanes {
		v := block(x, i)
		mask := 0
		for j, s := range v {
			if s < limit {
				mask |= 1 << j
			}
		}
		if mask != allLanes {
			return false
		}
	}
	return scalarKernel{}.allBelow(x[i:], limit)
}

func (vectorKernel) mul(dst, coeffs []float32) {
	i, end := 0, bitint.AlignDown(len(dst), lanes)
	for ; i < end; i += lanes {
		d, c := block(dst, i), block(coeffs, i)
		for j := range lanes {
			d[j] *= c[j]
		}
	}
	scalarKernel{}.mul(dst[i:], coeffs[i:])
}

func (vectorKernel) magnitudes(dst, pairs, tsmooth []float32, p magParams) {
	n := len(dst)
	g, g2 := p.gravity, 1-p.gravity

	i, end := 0, bitint.AlignDown(n, lanes)
	for ; i < end; i += lanes {
		var re, im, mag vec

		// De-interleave one block of pairs.
		src := pairs[2*i : 2*i+2*lanes]
		for j := range lanes {
			re[j] = src[2*j]
			im[j] = src[2*j+1]
		}

		for j := range lanes {
			mag[j] = sqrt32(re[j]*re[j]+im[j]*im[j]) * p.scale
		}

		if p.slope != nil {
			w := block(p.slope, i)
			for j := range lanes {
				mag[j] *= w[j]
			}
		}

		if p.smooth {
			prev := block(tsmooth, i)
			if p.fastPeaks {
				for j := range lanes {
					prev[j] = max(mag[j], prev[j])
				}
			}
			for j := range lanes {
				mag[j] = g*prev[j] + g2*mag[j]
			}
			*prev = mag
		}

		*block(dst, i) = mag
	}

	if i < n {
		var tail []float32
		if p.slope != nil {
			p.slope = p.slope[i:]
		}
		if tsmooth != nil {
			tail = tsmooth[i:]
		}
		scalarKernel{}.magnitudes(dst[i:], pairs[2*i:], tail, p)
	}
}

// hsum folds the lanes pairwise, 8 to 4 to 2 to 1: upper half onto lower
// half each step.
func hsum(acc *vec) float32 {
	var lo [4]float32
	for j := range 4 {
		lo[j] = acc[j+4] + acc[j]
	}
	s0 := lo[0] + lo[2]
	s1 := lo[1] + lo[3]
	return s1 + s0
}

func (vectorKernel) sumSquares(x []float32) float32 {
	var acc vec

	// Two blocks per iteration to hide the add latency.
	i := 0
	for ; i+2*lanes <= len(x); i += 2 * lanes {
		a, b := block(x, i), block(x, i+lanes)
		for j := range lanes {
			acc[j] += a[j] * a[j]
		}
		for j := range lanes {
			acc[j] += b[j] * b[j]
		}
	}
	for ; i+lanes <= len(x); i += lanes {
		a := block(x, i)
		for j := range lanes {
			acc[j] += a[j] * a[j]
		}
	}

	sum := hsum(&acc)
	for _, s := range x[i:] {
		sum += s * s
	}
	return sum
}

func (vectorKernel) maxAbs(x []float32) float32 {
	var acc vec

	i, end := 0, bitint.AlignDown(len(x), lanes)
	for ; i < end; i += lanes {
		v := block(x, i)
		for j := range lanes {
			acc[j] = max(acc[j], abs32(v[j]))
		}
	}

	out := max(
		max(max(acc[0], acc[4]), max(acc[2], acc[6])),
		max(max(acc[1], acc[5]), max(acc[3], acc[7])),
	)
	for _, s := range x[i:] {
		out = max(out, abs32(s))
	}
	return out
}

func (vectorKernel) toDecibels(dst, src []float32) {
	// The logarithm has no lane-wise form here, so this is the scalar loop
	// in blocks.
	i, end := 0, bitint.AlignDown(len(dst), lanes)
	for ; i < end; i += lanes {
		d, v := block(dst, i), block(src, i)
		for j := range lanes {
			d[j] = DBFS(v[j])
		}
	}
	scalarKernel{}.toDecibels(dst[i:], src[i:])
}

func (vectorKernel) average(dst, a, b []float32) {
	i, end := 0, bitint.AlignDown(len(dst), lanes)
	for ; i < end; i += lanes {
		d, va, vb := block(dst, i), block(a, i), block(b, i)
		for j := range lanes {
			d[j] = (va[j] + vb[j]) * 0.5
		}
	}
	scalarKernel{}.average(dst[i:], a[i:], b[i:])
}
