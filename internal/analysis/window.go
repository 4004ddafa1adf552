// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"gonum.org/v1/gonum/dsp/window"
)

// Tables holds the per-session coefficient tables read by the pipelines.
// They are rebuilt whenever the settings change and are never written
// during a tick.
type Tables struct {
	Window []float32 // len FFTSize, nil when no window is configured.
	Slope  []float32 // len FFTSize/2, nil when slope is disabled.
}

// NewTables builds the window and slope tables for cfg.
func NewTables(cfg Settings) *Tables {
	t := &Tables{}
	if cfg.Window != WindowNone {
		t.Window = windowTable(cfg.FFTSize, cfg.Window)
	}
	if cfg.Slope > 0 {
		t.Slope = slopeTable(cfg.Bins(), cfg.Slope)
	}
	return t
}

// windowTable evaluates a gonum window over a frame of ones.
func windowTable(size int, windowType WindowFunc) []float32 {
	coeffs := make([]float64, size)
	for i := range coeffs {
		coeffs[i] = 1.0
	}

	switch windowType {
	case WindowHann:
		window.Hann(coeffs)
	case WindowHamming:
		window.Hamming(coeffs)
	case WindowBlackman:
		window.Blackman(coeffs)
	case WindowBlackmanHarris:
		window.BlackmanHarris(coeffs)
	case WindowBlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case WindowBartlettHann:
		window.BartlettHann(coeffs)
	case WindowNuttall:
		window.Nuttall(coeffs)
	case WindowLanczos:
		window.Lanczos(coeffs)
	}

	out := make([]float32, size)
	for i, c := range coeffs {
		out[i] = float32(c)
	}
	return out
}

// slopeTable weights bin i by log10(1 + 9*(i/max)^slope), rising from 0 at
// DC to 1 at the last bin.
func slopeTable(bins int, slope float32) []float32 {
	out := make([]float32, bins)
	maxBin := float64(bins - 1)
	if maxBin < 1 {
		maxBin = 1
	}
	for i := range out {
		x := math.Pow(float64(i)/maxBin, float64(slope))
		out[i] = float32(math.Log10(1 + 9*x))
	}
	return out
}
