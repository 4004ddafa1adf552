// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestDefaultSettingsAreValid(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("DefaultSettings().Validate() = %v", err)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
		want   error
	}{
		{"NotPowerOfTwo", func(s *Settings) { s.FFTSize = 1000 }, ErrInvalidFFTSize},
		{"TooSmall", func(s *Settings) { s.FFTSize = 8 }, ErrInvalidFFTSize},
		{"TooLarge", func(s *Settings) { s.FFTSize = 1 << 17 }, ErrInvalidFFTSize},
		{"NegativeChannels", func(s *Settings) { s.CaptureChannels = -1 }, ErrInvalidChannels},
		{"ThreeChannels", func(s *Settings) { s.CaptureChannels = 3 }, ErrInvalidChannels},
		{"GravityOne", func(s *Settings) { s.Gravity = 1 }, ErrInvalidGravity},
		{"GravityNegative", func(s *Settings) { s.Gravity = -0.1 }, ErrInvalidGravity},
		{"GravityNaN", func(s *Settings) { s.Gravity = float32(math.NaN()) }, ErrInvalidGravity},
		{"SlopeNegative", func(s *Settings) { s.Slope = -1 }, ErrInvalidSlope},
		{"SlopeInf", func(s *Settings) { s.Slope = float32(math.Inf(1)) }, ErrInvalidSlope},
		{"FloorPositive", func(s *Settings) { s.Floor = 3 }, ErrInvalidFloor},
		{"FloorAtMinimum", func(s *Settings) { s.Floor = MinDecibels }, ErrInvalidFloor},
		{"UnknownWindow", func(s *Settings) { s.Window = WindowFunc(99) }, ErrInvalidWindow},
		{"NoChannels", func(s *Settings) { s.CaptureChannels = 0 }, nil},
		{"SmallestFFT", func(s *Settings) { s.FFTSize = MinFFTSize }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSettings()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOutputChannels(t *testing.T) {
	cfg := DefaultSettings()
	cfg.CaptureChannels = 1
	cfg.Stereo = true
	if got := cfg.OutputChannels(); got != 2 {
		t.Errorf("mono capture with stereo output: OutputChannels() = %d, want 2", got)
	}
	cfg.CaptureChannels = 2
	cfg.Stereo = false
	if got := cfg.OutputChannels(); got != 1 {
		t.Errorf("downmix: OutputChannels() = %d, want 1", got)
	}
}

func TestParseWindowFunc(t *testing.T) {
	tests := []struct {
		in      string
		want    WindowFunc
		wantErr bool
	}{
		{"hann", WindowHann, false},
		{"Hanning", WindowHann, false},
		{"BLACKMANHARRIS", WindowBlackmanHarris, false},
		{"none", WindowNone, false},
		{"", WindowNone, false},
		{"lanczos", WindowLanczos, false},
		{"triangle", WindowHann, true},
	}

	for _, tt := range tests {
		got, err := ParseWindowFunc(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseWindowFunc(%q) = %v, %v; want %v, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("ParseWindowFunc(%q) error %v does not wrap ErrInvalidWindow", tt.in, err)
		}
	}

	for w := range windowNames {
		if got, err := ParseWindowFunc(w.String()); err != nil || got != w {
			t.Errorf("round trip of %v = %v, %v", w, got, err)
		}
	}
}

func TestParseModes(t *testing.T) {
	if m, err := ParseSmoothingMode("Exponential"); err != nil || m != SmoothingExponential {
		t.Errorf("ParseSmoothingMode(Exponential) = %v, %v", m, err)
	}
	if _, err := ParseSmoothingMode("cubic"); err == nil {
		t.Error("ParseSmoothingMode(cubic) did not fail")
	}
	if m, err := ParseDisplayMode("meter"); err != nil || m != ModeMeter {
		t.Errorf("ParseDisplayMode(meter) = %v, %v", m, err)
	}
	if _, err := ParseDisplayMode("oscilloscope"); err == nil {
		t.Error("ParseDisplayMode(oscilloscope) did not fail")
	}
}

func TestValidateSuggestsFFTSize(t *testing.T) {
	tests := []struct {
		size int
		want string
	}{
		{1000, "nearest is 1024"},
		{3, "nearest is 16"},
		{1<<16 + 1, "nearest is 65536"},
	}
	for _, tt := range tests {
		cfg := DefaultSettings()
		cfg.FFTSize = tt.size
		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidFFTSize) || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Validate() with FFTSize %d = %v, want %q", tt.size, err, tt.want)
		}
	}
}
