// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"waveform/pkg/bitint"
)

// Transform size limits. The lower bound keeps every bin buffer a whole
// number of vector blocks.
const (
	MinFFTSize = 16
	MaxFFTSize = 1 << 16
)

var (
	ErrInvalidFFTSize  = errors.New("invalid fft size")
	ErrInvalidChannels = errors.New("invalid channel count")
	ErrInvalidGravity  = errors.New("invalid gravity")
	ErrInvalidSlope    = errors.New("invalid slope")
	ErrInvalidFloor    = errors.New("invalid floor")
	ErrInvalidWindow   = errors.New("invalid window function")
)

// WindowFunc selects the window applied to each frame before the transform.
type WindowFunc int

const (
	WindowNone WindowFunc = iota
	WindowHann
	WindowHamming
	WindowBlackman
	WindowBlackmanHarris
	WindowBlackmanNuttall
	WindowBartlettHann
	WindowNuttall
	WindowLanczos
)

var windowNames = map[WindowFunc]string{
	WindowNone:            "none",
	WindowHann:            "hann",
	WindowHamming:         "hamming",
	WindowBlackman:        "blackman",
	WindowBlackmanHarris:  "blackmanharris",
	WindowBlackmanNuttall: "blackmannuttall",
	WindowBartlettHann:    "bartletthann",
	WindowNuttall:         "nuttall",
	WindowLanczos:         "lanczos",
}

func (w WindowFunc) String() string {
	if name, ok := windowNames[w]; ok {
		return name
	}
	return fmt.Sprintf("WindowFunc(%d)", int(w))
}

// ParseWindowFunc converts a case-insensitive name to a WindowFunc. Unknown
// names return WindowHann and an error.
func ParseWindowFunc(name string) (WindowFunc, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", "rectangular":
		return WindowNone, nil
	case "hanning":
		return WindowHann, nil
	}
	for w, n := range windowNames {
		if n == key {
			return w, nil
		}
	}
	return WindowHann, fmt.Errorf("%w: %q", ErrInvalidWindow, name)
}

// SmoothingMode selects the temporal smoothing applied across ticks.
type SmoothingMode int

const (
	SmoothingNone SmoothingMode = iota
	SmoothingExponential
)

func (m SmoothingMode) String() string {
	if m == SmoothingExponential {
		return "exponential"
	}
	return "none"
}

// ParseSmoothingMode converts "none" or "exponential" to a SmoothingMode.
func ParseSmoothingMode(name string) (SmoothingMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "off":
		return SmoothingNone, nil
	case "exponential", "exp":
		return SmoothingExponential, nil
	}
	return SmoothingNone, fmt.Errorf("unknown smoothing mode: %q", name)
}

// DisplayMode selects which pipeline Analyzer.Tick runs.
type DisplayMode int

const (
	ModeSpectrum DisplayMode = iota
	ModeMeter
)

func (m DisplayMode) String() string {
	if m == ModeMeter {
		return "meter"
	}
	return "spectrum"
}

// ParseDisplayMode converts "spectrum" or "meter" to a DisplayMode.
func ParseDisplayMode(name string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "spectrum", "curve", "bars":
		return ModeSpectrum, nil
	case "meter", "level":
		return ModeMeter, nil
	}
	return ModeSpectrum, fmt.Errorf("unknown display mode: %q", name)
}

// Settings is the immutable configuration of one analysis session.
type Settings struct {
	FFTSize         int           // Frame length, power of two.
	CaptureChannels int           // Channels fed by the producer (0, 1 or 2).
	Stereo          bool          // Keep two output channels instead of a downmix.
	Window          WindowFunc    // Window applied before the transform.
	Smoothing       SmoothingMode // Temporal smoothing mode.
	Gravity         float32       // Smoothing factor in [0, 1).
	FastPeaks       bool          // Let rising values through without smoothing.
	Slope           float32       // High-frequency emphasis, 0 disables.
	Floor           float32       // Silence threshold in dB.
	MeterRMS        bool          // RMS meter instead of peak.
	Mode            DisplayMode   // Pipeline run by Analyzer.Tick.
	RingFrames      int           // Capture queue capacity in frames.
	CaptureTimeout  time.Duration // Stall time before capture is treated as silent.
}

// DefaultSettings returns settings for a stereo Hann-windowed spectrum.
func DefaultSettings() Settings {
	return Settings{
		FFTSize:         2048,
		CaptureChannels: 2,
		Stereo:          true,
		Window:          WindowHann,
		Smoothing:       SmoothingExponential,
		Gravity:         0.65,
		FastPeaks:       false,
		Slope:           0,
		Floor:           -120,
		MeterRMS:        false,
		Mode:            ModeSpectrum,
		RingFrames:      4,
		CaptureTimeout:  500 * time.Millisecond,
	}
}

// OutputChannels returns the number of decibel buffers exposed to readers.
// A mono capture with stereo output duplicates channel 0.
func (s Settings) OutputChannels() int {
	if s.Stereo {
		return 2
	}
	return 1
}

// Bins returns the number of spectrum bins per channel.
func (s Settings) Bins() int {
	return s.FFTSize / 2
}

// Validate checks every field and returns the first problem found.
func (s Settings) Validate() error {
	if !bitint.IsPowerOfTwo(s.FFTSize) || s.FFTSize < MinFFTSize || s.FFTSize > MaxFFTSize {
		return fmt.Errorf("%w: %d (power of 2 in [%d, %d] required, nearest is %d)",
			ErrInvalidFFTSize, s.FFTSize, MinFFTSize, MaxFFTSize,
			min(max(bitint.NextPowerOfTwo(s.FFTSize), MinFFTSize), MaxFFTSize))
	}
	if s.CaptureChannels < 0 || s.CaptureChannels > 2 {
		return fmt.Errorf("%w: %d capture channels (0-2 supported)", ErrInvalidChannels, s.CaptureChannels)
	}
	if !(s.Gravity >= 0 && s.Gravity < 1) {
		return fmt.Errorf("%w: %v (must be in [0, 1))", ErrInvalidGravity, s.Gravity)
	}
	if !(s.Slope >= 0) || math.IsInf(float64(s.Slope), 0) {
		return fmt.Errorf("%w: %v (must be finite and >= 0)", ErrInvalidSlope, s.Slope)
	}
	if !(s.Floor-10 > MinDecibels && s.Floor <= 0) {
		return fmt.Errorf("%w: %v dB (must be in (%v, 0])", ErrInvalidFloor, s.Floor, MinDecibels+10)
	}
	if _, ok := windowNames[s.Window]; !ok {
		return fmt.Errorf("%w: %d", ErrInvalidWindow, int(s.Window))
	}
	if s.RingFrames < 0 {
		return fmt.Errorf("ring frames must not be negative, got %d", s.RingFrames)
	}
	return nil
}

// ringCapacity is the per-channel capture queue size in samples.
func (s Settings) ringCapacity() int {
	frames := s.RingFrames
	if frames < 2 {
		frames = 2
	}
	return s.FFTSize * frames
}
