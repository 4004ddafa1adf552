package config

import (
	"fmt"

	"waveform/internal/analysis"
)

// AnalysisSettings converts the analysis and audio sections into the
// settings of an analysis session. Only the first two input channels are
// analysed.
func (c *Config) AnalysisSettings() (analysis.Settings, error) {
	a := c.Analysis

	window, err := analysis.ParseWindowFunc(a.Window)
	if err != nil {
		return analysis.Settings{}, fmt.Errorf("analysis.window: %w", err)
	}
	smoothing, err := analysis.ParseSmoothingMode(a.Smoothing)
	if err != nil {
		return analysis.Settings{}, fmt.Errorf("analysis.smoothing: %w", err)
	}
	mode, err := analysis.ParseDisplayMode(a.Mode)
	if err != nil {
		return analysis.Settings{}, fmt.Errorf("analysis.mode: %w", err)
	}

	s := analysis.Settings{
		FFTSize:         a.FFTSize,
		CaptureChannels: min(c.Audio.InputChannels, 2),
		Stereo:          a.Stereo,
		Window:          window,
		Smoothing:       smoothing,
		Gravity:         float32(a.Gravity),
		FastPeaks:       a.FastPeaks,
		Slope:           float32(a.Slope),
		Floor:           float32(a.Floor),
		MeterRMS:        a.MeterRMS,
		Mode:            mode,
		RingFrames:      a.RingFrames,
		CaptureTimeout:  a.CaptureTimeout,
	}
	if err := s.Validate(); err != nil {
		return analysis.Settings{}, fmt.Errorf("analysis: %w", err)
	}
	return s, nil
}

// Backend returns the configured analysis backend.
func (c *Config) Backend() (analysis.Backend, error) {
	b, err := analysis.ParseBackend(c.Analysis.Backend)
	if err != nil {
		return analysis.BackendAuto, fmt.Errorf("analysis.backend: %w", err)
	}
	return b, nil
}
