// SPDX-License-Identifier: MIT
package analysis

import "math"

// MinDecibels is written wherever there is no signal to report.
const MinDecibels float32 = -200

// Linear levels at or below this are reported as MinDecibels.
const minLinear = 1e-10

// DBFS converts a linear magnitude to decibels full scale. Non-positive,
// underflowing and non-finite inputs return MinDecibels.
func DBFS(x float32) float32 {
	if !(x > minLinear) || math.IsInf(float64(x), 1) {
		return MinDecibels
	}
	return float32(20 * math.Log10(float64(x)))
}

// Smooth blends cur into the previous value with an exponential decay.
// A gravity of 0 passes cur through unchanged.
func Smooth(prev, cur, gravity float32) float32 {
	return gravity*prev + (1-gravity)*cur
}

// SmoothPeak is the spectrum rule: with fast peaks a rise registers
// immediately, falls still decay. The raised value is written back to prev.
func SmoothPeak(prev *float32, cur, gravity float32, fastPeaks bool) float32 {
	if fastPeaks {
		*prev = max(cur, *prev)
	}
	return Smooth(*prev, cur, gravity)
}

// smoothLevel is the meter rule: with fast peaks a new peak bypasses
// smoothing entirely.
func smoothLevel(prev, cur, gravity float32, fastPeaks bool) float32 {
	if fastPeaks && cur > prev {
		return cur
	}
	return Smooth(prev, cur, gravity)
}
