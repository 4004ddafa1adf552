// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	applog "waveform/internal/log"
	"waveform/internal/transport/udp"

	"gopkg.in/yaml.v3"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	LogLevel  string          `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	Audio     AudioConfig     `yaml:"audio"`     // Capture settings.
	Analysis  AnalysisConfig  `yaml:"analysis"`  // Spectrum and meter settings.
	Recording RecordingConfig `yaml:"recording"` // Recording of the captured stream.
	Transport TransportConfig `yaml:"transport"` // Frame publishing.
}

// AudioConfig holds settings related to audio capture.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index for audio input (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz (e.g., 44100, 48000).
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames delivered per capture callback.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from PortAudio device.
	InputChannels   int     `yaml:"input_channels"`    // Number of input channels to capture.
	SourceFile      string  `yaml:"source_file"`       // Play a wav/mp3/ogg file instead of capturing a device.
	Loop            bool    `yaml:"loop"`              // Restart the source file when it ends.
}

// AnalysisConfig holds the analysis session settings.
type AnalysisConfig struct {
	FFTSize        int           `yaml:"fft_size"`        // Frame length, power of two.
	Stereo         bool          `yaml:"stereo"`          // Separate channels instead of a mono downmix.
	Window         string        `yaml:"window"`          // Window function name (e.g., "hann", "none").
	Smoothing      string        `yaml:"smoothing"`       // "none" or "exponential".
	Gravity        float64       `yaml:"gravity"`         // Smoothing factor in [0, 1).
	FastPeaks      bool          `yaml:"fast_peaks"`      // Let rising values through unsmoothed.
	Slope          float64       `yaml:"slope"`           // High frequency emphasis, 0 disables.
	Floor          float64       `yaml:"floor"`           // Silence threshold in dB.
	MeterRMS       bool          `yaml:"meter_rms"`       // RMS meter instead of peak.
	Mode           string        `yaml:"mode"`            // "spectrum" or "meter".
	Backend        string        `yaml:"backend"`         // "auto", "scalar" or "vector".
	FrameRate      int           `yaml:"frame_rate"`      // Ticks per second.
	RingFrames     int           `yaml:"ring_frames"`     // Capture queue length in FFT frames.
	CaptureTimeout time.Duration `yaml:"capture_timeout"` // Stall time before outputs decay.
}

// RecordingConfig holds settings related to audio recording functionality.
type RecordingConfig struct {
	Enabled   bool   `yaml:"enabled"`    // Record the captured stream to a WAV file.
	OutputDir string `yaml:"output_dir"` // Directory to save recorded audio files.
	BitDepth  int    `yaml:"bit_depth"`  // 16, 24 or 32.
}

// TransportConfig holds settings related to sending frames over the network.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`  // Serve JSON frames on /ws.
	WebSocketAddress string        `yaml:"websocket_address"`  // Listen address for the websocket server.
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Publish binary frames over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target address and port for UDP packets (e.g., "127.0.0.1:9090").
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between sending UDP packets.
}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		for _, candidate := range []string{"config.yaml", "waveform.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment variables win over the file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks ranges and cross-field constraints, including the
// analysis settings derived from the config.
func (c *Config) Validate() error {
	var errs []error

	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("log_level %q is not a known level", c.LogLevel))
	}

	a := c.Audio
	if a.InputDevice < MinDeviceID {
		errs = append(errs, fmt.Errorf("audio.input_device must be >= %d, got %d", MinDeviceID, a.InputDevice))
	}
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be in [%d, %d], got %v", MinSampleRate, MaxSampleRate, a.SampleRate))
	}
	if a.FramesPerBuffer < 1 || a.FramesPerBuffer > MaxBufferFrames {
		errs = append(errs, fmt.Errorf("audio.frames_per_buffer must be in [1, %d], got %d", MaxBufferFrames, a.FramesPerBuffer))
	}
	if a.InputChannels < 1 || a.InputChannels > MaxInputChannels {
		errs = append(errs, fmt.Errorf("audio.input_channels must be in [1, %d], got %d", MaxInputChannels, a.InputChannels))
	}

	if r := c.Analysis.FrameRate; r < MinFrameRate || r > MaxFrameRate {
		errs = append(errs, fmt.Errorf("analysis.frame_rate must be in [%d, %d], got %d", MinFrameRate, MaxFrameRate, r))
	}
	if _, err := c.AnalysisSettings(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Backend(); err != nil {
		errs = append(errs, err)
	}

	if c.Recording.Enabled {
		switch c.Recording.BitDepth {
		case 16, 24, 32:
		default:
			errs = append(errs, fmt.Errorf("recording.bit_depth must be 16, 24 or 32, got %d", c.Recording.BitDepth))
		}
		if c.Recording.OutputDir == "" {
			errs = append(errs, errors.New("recording.output_dir must be set when recording is enabled"))
		}
	}

	t := c.Transport
	if t.WebSocketEnabled {
		if _, _, err := net.SplitHostPort(t.WebSocketAddress); err != nil {
			errs = append(errs, fmt.Errorf("transport.websocket_address %q: %w", t.WebSocketAddress, err))
		}
	}
	if t.UDPEnabled {
		if _, _, err := net.SplitHostPort(t.UDPTargetAddress); err != nil {
			errs = append(errs, fmt.Errorf("transport.udp_target_address %q: %w", t.UDPTargetAddress, err))
		}
		if t.UDPSendInterval <= 0 {
			errs = append(errs, errors.New("transport.udp_send_interval must be positive when UDP is enabled"))
		}
		if s, err := c.AnalysisSettings(); err == nil {
			outputs := s.OutputChannels()
			if size := udp.PacketSize(outputs, s.Bins(), s.CaptureChannels); size > udp.MaxPacketSize {
				errs = append(errs, fmt.Errorf("analysis.fft_size %d with %d output channels needs %d byte UDP packets (max %d)",
					s.FFTSize, outputs, size, udp.MaxPacketSize))
			}
		}
	}

	return errors.Join(errs...)
}

// applyEnvOverrides reads WAVEFORM_* variables. Values that fail to parse
// are ignored with a warning.
func (c *Config) applyEnvOverrides() {
	envString("WAVEFORM_LOG_LEVEL", &c.LogLevel)
	envString("WAVEFORM_SOURCE_FILE", &c.Audio.SourceFile)
	envInt("WAVEFORM_INPUT_DEVICE", &c.Audio.InputDevice)

	envInt("WAVEFORM_FFT_SIZE", &c.Analysis.FFTSize)
	envString("WAVEFORM_WINDOW", &c.Analysis.Window)
	envString("WAVEFORM_MODE", &c.Analysis.Mode)
	envString("WAVEFORM_BACKEND", &c.Analysis.Backend)
	envInt("WAVEFORM_FRAME_RATE", &c.Analysis.FrameRate)

	envBool("WAVEFORM_WEBSOCKET_ENABLED", &c.Transport.WebSocketEnabled)
	envString("WAVEFORM_WEBSOCKET_ADDRESS", &c.Transport.WebSocketAddress)
	envBool("WAVEFORM_UDP_ENABLED", &c.Transport.UDPEnabled)
	envString("WAVEFORM_UDP_TARGET_ADDRESS", &c.Transport.UDPTargetAddress)
	envDuration("WAVEFORM_UDP_SEND_INTERVAL", &c.Transport.UDPSendInterval)
}

func envString(key string, dst *string) {
	if val, ok := os.LookupEnv(key); ok {
		*dst = val
		applog.Debugf("Config: Overriding from %s: %s", key, val)
	}
}

func envInt(key string, dst *int) {
	if val, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			applog.Warnf("Config: Ignoring %s=%q: %v", key, val, err)
			return
		}
		*dst = n
		applog.Debugf("Config: Overriding from %s: %d", key, n)
	}
}

func envBool(key string, dst *bool) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			applog.Warnf("Config: Ignoring %s=%q: %v", key, val, err)
			return
		}
		*dst = b
		applog.Debugf("Config: Overriding from %s: %v", key, b)
	}
}

func envDuration(key string, dst *time.Duration) {
	if val, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			applog.Warnf("Config: Ignoring %s=%q: %v", key, val, err)
			return
		}
		*dst = d
		applog.Debugf("Config: Overriding from %s: %s", key, d)
	}
}
