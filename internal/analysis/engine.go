// SPDX-License-Identifier: MIT
package analysis

import "waveform/internal/ringbuf"

// Transform is a pre-planned forward real transform. Execute reads a frame of
// FFTSize samples and writes FFTSize/2 interleaved (real, imag) pairs.
type Transform interface {
	Execute(frame, pairs []float32)
}

// Inputs are the collaborators a tick reads from. Buffers holds one capture
// queue per capture channel. A nil Transform skips the spectrum work.
type Inputs struct {
	Buffers   []*ringbuf.Buffer
	Transform Transform
	Tables    *Tables
}

// SpectrumEngine runs one spectrum tick against st.
type SpectrumEngine interface {
	TickSpectrum(st *State, in Inputs)
}

// MeterEngine runs one level-meter tick against st.
type MeterEngine interface {
	TickMeter(st *State, in Inputs)
}

// Engine is a complete analysis backend. Callers must serialize ticks on the
// same State.
type Engine interface {
	SpectrumEngine
	MeterEngine
	Name() string
}

// pipeline drives both ticks with the primitives of one kernel.
type pipeline struct {
	name string
	k    kernel
}

var _ Engine = (*pipeline)(nil)

func (p *pipeline) Name() string {
	return p.name
}
