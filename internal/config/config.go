package config

import "time"

// Configuration defaults and the limits Validate enforces.
const (
	// Audio capture
	DefaultInputDevice     = MinDeviceID // System default device
	DefaultSampleRate      = 48000       // Hz
	DefaultFramesPerBuffer = 512         // Balanced latency/performance
	DefaultInputChannels   = 2           // Stereo capture

	// Analysis
	DefaultFFTSize        = 2048
	DefaultWindow         = "hann"
	DefaultSmoothing      = "exponential"
	DefaultGravity        = 0.65
	DefaultFloor          = -120.0 // dB
	DefaultMode           = "spectrum"
	DefaultBackend        = "auto"
	DefaultFrameRate      = 60 // Ticks per second
	DefaultRingFrames     = 4  // Capture queue length in FFT frames
	DefaultCaptureTimeout = 500 * time.Millisecond

	// Recording
	DefaultRecordingDir = "./recordings"
	DefaultBitDepth     = 16

	// Transport
	DefaultWebSocketAddress = "localhost:8080"
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultUDPSendInterval  = 33 * time.Millisecond // ~30Hz

	// Hardware and processing limits
	MinDeviceID      = -1     // -1 represents system default device
	MinSampleRate    = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate    = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames  = 8192   // Maximum frames per buffer (power of 2)
	MaxInputChannels = 8      // Only the first two are analysed
	MinFrameRate     = 1
	MaxFrameRate     = 240
)

// Defaults returns the built-in configuration used when no file is found.
func Defaults() Config {
	return Config{
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     DefaultInputDevice,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      false,
			InputChannels:   DefaultInputChannels,
		},
		Analysis: AnalysisConfig{
			FFTSize:        DefaultFFTSize,
			Stereo:         true,
			Window:         DefaultWindow,
			Smoothing:      DefaultSmoothing,
			Gravity:        DefaultGravity,
			Floor:          DefaultFloor,
			Mode:           DefaultMode,
			Backend:        DefaultBackend,
			FrameRate:      DefaultFrameRate,
			RingFrames:     DefaultRingFrames,
			CaptureTimeout: DefaultCaptureTimeout,
		},
		Recording: RecordingConfig{
			Enabled:   false,
			OutputDir: DefaultRecordingDir,
			BitDepth:  DefaultBitDepth,
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddress: DefaultWebSocketAddress,
			UDPEnabled:       false,
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  DefaultUDPSendInterval,
		},
	}
}
