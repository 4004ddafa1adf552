// SPDX-License-Identifier: MIT
package fft

import (
	"errors"
	"fmt"

	"waveform/pkg/bitint"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrInvalidSize is returned when a plan is requested for a size that is not
// a power of two.
var ErrInvalidSize = errors.New("fft size must be a power of 2")

// Plan is a pre-planned forward real transform of a fixed size. It reads a
// frame of float32 samples and writes size/2 complex bins as interleaved
// (real, imag) float32 pairs. The Nyquist bin is not reported.
//
// A Plan owns its float64 scratch buffers, so Execute does not allocate.
// It is not safe for concurrent use.
type Plan struct {
	size      int
	fftObj    *fourier.FFT
	input     []float64    // ...for the widened input frame
	fftOutput []complex128 // ...for the size/2+1 complex coefficients
}

// NewPlan creates a plan for transforms of the given size.
func NewPlan(size int) (*Plan, error) {
	if !bitint.IsPowerOfTwo(size) || size < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidSize, size)
	}

	return &Plan{
		size:      size,
		fftObj:    fourier.NewFFT(size),
		input:     make([]float64, size),
		fftOutput: make([]complex128, size/2+1),
	}, nil
}

// Size returns the number of input samples per transform.
func (p *Plan) Size() int {
	return p.size
}

// Execute transforms frame into pairs. frame must hold Size() samples and
// pairs must hold Size() floats (Size()/2 real/imag pairs); shorter frames are
// zero padded and excess pair slots are left untouched.
func (p *Plan) Execute(frame, pairs []float32) {
	n := copyWiden(p.input, frame)
	clear(p.input[n:])

	p.fftObj.Coefficients(p.fftOutput, p.input)

	bins := min(p.size/2, len(pairs)/2)
	for i := range bins {
		c := p.fftOutput[i]
		pairs[2*i] = float32(real(c))
		pairs[2*i+1] = float32(imag(c))
	}
}

// BinFrequency returns the centre frequency in Hz of the given bin for a
// stream at sampleRate. Out of range bins return 0.
func (p *Plan) BinFrequency(bin int, sampleRate float64) float64 {
	if bin < 0 || bin > p.size/2 {
		return 0
	}
	return p.fftObj.Freq(bin) * sampleRate
}

func copyWiden(dst []float64, src []float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float64(src[i])
	}
	return n
}
