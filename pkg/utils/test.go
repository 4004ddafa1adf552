// SPDX-License-Identifier: MIT
package utils

import (
	"fmt"
	"math"
	"sync"

	"waveform/internal/analysis"
)

// MockTransport records the frames it is sent for later inspection.
type MockTransport struct {
	mu     sync.Mutex
	frames []analysis.Frame
	closed bool
}

// Send stores a deep copy of the frame instead of transmitting it.
func (m *MockTransport) Send(data any) error {
	f, ok := data.(*analysis.Frame)
	if !ok {
		return fmt.Errorf("MockTransport: unexpected payload %T", data)
	}

	c := analysis.Frame{
		Seq:    f.Seq,
		Mode:   f.Mode,
		Silent: f.Silent,
		Meter:  append([]float32(nil), f.Meter...),
	}
	for _, ch := range f.Spectrum {
		c.Spectrum = append(c.Spectrum, append([]float32(nil), ch...))
	}

	m.mu.Lock()
	m.frames = append(m.frames, c)
	m.mu.Unlock()
	return nil
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Count returns the number of frames received.
func (m *MockTransport) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

// Last returns the most recent frame and false if none arrived yet.
func (m *MockTransport) Last() (analysis.Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.frames) == 0 {
		return analysis.Frame{}, false
	}
	return m.frames[len(m.frames)-1], true
}

// Closed reports whether Close was called.
func (m *MockTransport) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GenerateComplexWave returns a 440Hz tone with two harmonics peaking at 0.9.
func GenerateComplexWave(size int, sampleRate float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = float32(signal * 0.9)
	}
	return buffer
}

// GenerateSineWave returns a sine at frequency with amplitude 0.9.
func GenerateSineWave(size int, sampleRate, frequency float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = float32(math.Sin(2*math.Pi*frequency*t) * 0.9)
	}
	return buffer
}

// Interleave zips equal length channels into one interleaved buffer.
func Interleave(channels ...[]float32) []float32 {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]float32, frames*len(channels))
	for i := range frames {
		for ch, samples := range channels {
			out[i*len(channels)+ch] = samples[i]
		}
	}
	return out
}

// FindPeakBin returns the index of the largest value in values[startBin:endBin+1].
// The range is clamped to the slice.
func FindPeakBin(values []float32, startBin, endBin int) int {
	if len(values) == 0 {
		return 0
	}

	startBin = max(startBin, 0)
	endBin = min(endBin, len(values)-1)
	if startBin > endBin {
		return startBin
	}

	peakBin := startBin
	peakValue := values[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if values[bin] > peakValue {
			peakValue = values[bin]
			peakBin = bin
		}
	}

	return peakBin
}
