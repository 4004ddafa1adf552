// SPDX-License-Identifier: MIT
package fft

import (
	"errors"
	"math"
	"testing"
)

const (
	testFFTSize    = 1024
	testSampleRate = 48000
)

func sineFrame(size, bin int, amplitude float64) []float32 {
	frame := make([]float32, size)
	for i := range frame {
		frame[i] = float32(amplitude * math.Sin(2*math.Pi*float64(bin)*float64(i)/float64(size)))
	}
	return frame
}

func TestNewPlanRejectsInvalidSizes(t *testing.T) {
	for _, size := range []int{0, 1, 3, 1000, -8} {
		if _, err := NewPlan(size); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("NewPlan(%d) error = %v, want ErrInvalidSize", size, err)
		}
	}
}

func TestExecuteSinePeak(t *testing.T) {
	tests := []struct {
		name string
		size int
		bin  int
	}{
		{"64/bin5", 64, 5},
		{"1024/bin32", 1024, 32},
		{"4096/bin100", 4096, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := NewPlan(tt.size)
			if err != nil {
				t.Fatalf("NewPlan() error = %v", err)
			}

			pairs := make([]float32, tt.size)
			plan.Execute(sineFrame(tt.size, tt.bin, 1.0), pairs)

			scale := 2.0 / float64(tt.size)
			for i := 0; i < tt.size/2; i++ {
				mag := math.Hypot(float64(pairs[2*i]), float64(pairs[2*i+1])) * scale
				if i == tt.bin {
					if math.Abs(mag-1.0) > 1e-3 {
						t.Errorf("bin %d magnitude = %f, want 1.0", i, mag)
					}
				} else if mag > 1e-3 {
					t.Errorf("bin %d magnitude = %f, want ~0", i, mag)
				}
			}
		})
	}
}

func TestExecuteZeroPadsShortFrames(t *testing.T) {
	plan, _ := NewPlan(16)
	pairs := make([]float32, 16)

	// DC of eight ones followed by implicit zeros.
	frame := []float32{1, 1, 1, 1, 1, 1, 1, 1}
	plan.Execute(frame, pairs)

	if pairs[0] != 8 || pairs[1] != 0 {
		t.Errorf("DC bin = (%f, %f), want (8, 0)", pairs[0], pairs[1])
	}
}

func TestBinFrequency(t *testing.T) {
	plan, _ := NewPlan(testFFTSize)

	tests := []struct {
		bin  int
		want float64
	}{
		{0, 0},
		{1, float64(testSampleRate) / testFFTSize},
		{testFFTSize / 2, float64(testSampleRate) / 2},
		{-1, 0},
		{testFFTSize, 0},
	}

	for _, tt := range tests {
		if got := plan.BinFrequency(tt.bin, testSampleRate); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("BinFrequency(%d) = %f, want %f", tt.bin, got, tt.want)
		}
	}
}

func TestExecuteHotPath(t *testing.T) {
	plan, _ := NewPlan(testFFTSize)
	frame := sineFrame(testFFTSize, 10, 0.5)
	pairs := make([]float32, testFFTSize)

	// Warm-up call so lazily built twiddles are not counted.
	plan.Execute(frame, pairs)
	allocs := testing.AllocsPerRun(100, func() {
		plan.Execute(frame, pairs)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in Execute hot path, got %.1f", allocs)
	}
}

func BenchmarkExecute(b *testing.B) {
	plan, _ := NewPlan(testFFTSize)
	frame := sineFrame(testFFTSize, 10, 0.5)
	pairs := make([]float32, testFFTSize)

	b.ReportAllocs()
	for b.Loop() {
		plan.Execute(frame, pairs)
	}
}
