// SPDX-License-Identifier: MIT
/*
Package audio runs the capture side of the analyzer:
- PortAudio live capture or real-time playback of a decoded file
- WAV recording of the captured stream
- The frame loop that ticks the analyzer and publishes frames

Thread Safety:
- Capture callbacks only push into the analyzer queues
- The frame loop is the only caller of Tick and Snapshot
- Recording state is switched under a mutex the callback also takes
*/
package audio

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"waveform/internal/analysis"
	"waveform/internal/config"
	applog "waveform/internal/log"
	"waveform/internal/transport"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

type Engine struct {
	config     *config.Config
	analyzer   *analysis.Analyzer
	transports []transport.Transport

	// Layout of the captured stream, fixed when capture starts.
	channels   int
	sampleRate int

	// Live capture.
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	// File playback.
	playStop chan struct{}
	playWG   sync.WaitGroup

	// Recording state and buffers.
	recordMu   sync.Mutex
	recording  bool
	outputFile *os.File
	wavEncoder *wav.Encoder
	sampleBuf  *audio.IntBuffer // Reusable buffer for format conversion
	sampleMax  float64

	// Frame loop.
	frame       analysis.Frame
	lastSeq     uint64
	lastDropped uint64
}

// NewEngine builds the analyzer for cfg. Frames are handed to every
// transport in order.
func NewEngine(cfg *config.Config, transports ...transport.Transport) (*Engine, error) {
	settings, err := cfg.AnalysisSettings()
	if err != nil {
		return nil, err
	}
	backend, err := cfg.Backend()
	if err != nil {
		return nil, err
	}

	analyzer, err := analysis.New(settings, analysis.WithBackend(backend))
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	return &Engine{
		config:     cfg,
		analyzer:   analyzer,
		transports: transports,
		channels:   cfg.Audio.InputChannels,
		sampleRate: int(cfg.Audio.SampleRate),
	}, nil
}

// Analyzer returns the analyzer fed by this engine.
func (e *Engine) Analyzer() *analysis.Analyzer {
	return e.analyzer
}

// AddTransport appends t to the frame sinks. It must be called before Run.
func (e *Engine) AddTransport(t transport.Transport) {
	e.transports = append(e.transports, t)
}

// SampleRate returns the rate of the captured stream.
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// Start begins capture from the configured source file, or from the input
// device when no file is set.
func (e *Engine) Start() error {
	if path := e.config.Audio.SourceFile; path != "" {
		return e.StartFilePlayback(path, e.config.Audio.Loop)
	}
	return e.StartInputStream()
}

// StartInputStream opens the configured input device and starts capture.
// PortAudio must be initialized.
func (e *Engine) StartInputStream() error {
	device, err := InputDevice(e.config.Audio.InputDevice)
	if err != nil {
		return err
	}
	e.inputDevice = device

	if e.config.Audio.LowLatency {
		e.inputLatency = device.DefaultLowInputLatency
	} else {
		e.inputLatency = device.DefaultHighInputLatency
	}

	e.channels = e.config.Audio.InputChannels
	e.sampleRate = int(e.config.Audio.SampleRate)

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.channels,
			Device:   device,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: e.config.Audio.FramesPerBuffer,
		SampleRate:      e.config.Audio.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return fmt.Errorf("failed to open input stream on %s: %w", device.Name, err)
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	applog.Infof("Engine: Capturing from %s (%d channels, %.0f Hz, latency %s)",
		device.Name, e.channels, e.config.Audio.SampleRate, e.inputLatency)
	return nil
}

func (e *Engine) StopInputStream() error {
	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return err
		}

		if err := e.inputStream.Close(); err != nil {
			return err
		}

		e.inputStream = nil
	}

	return nil
}

// processInputStream is the PortAudio callback.
// Performance Critical:
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path
func (e *Engine) processInputStream(in []float32) {
	e.capture(in)
}

// capture feeds one interleaved buffer from any source.
func (e *Engine) capture(in []float32) {
	e.analyzer.PushInterleaved(in, e.channels)

	e.recordMu.Lock()
	if e.recording {
		e.writeRecording(in)
	}
	e.recordMu.Unlock()
}

// Run ticks the analyzer at the configured frame rate and publishes every
// new frame until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	rate := e.config.Analysis.FrameRate
	if rate <= 0 {
		return fmt.Errorf("invalid frame rate: %d", rate)
	}

	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	applog.Infof("Engine: Frame loop running at %d Hz (Engine: %s)", rate, e.analyzer.EngineName())

	last := time.Now()
	lastStats := last
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			e.tick(now.Sub(last).Seconds())
			last = now

			if now.Sub(lastStats) >= time.Second {
				e.logDropped()
				lastStats = now
			}
		}
	}
}

// tick advances the analyzer once and publishes the result if it changed.
func (e *Engine) tick(elapsed float64) {
	e.analyzer.Tick(elapsed)
	e.analyzer.Snapshot(&e.frame)
	if e.frame.Seq == e.lastSeq {
		return
	}
	e.lastSeq = e.frame.Seq

	for _, t := range e.transports {
		if err := t.Send(&e.frame); err != nil {
			applog.Debugf("Engine: Transport %T failed: %v", t, err)
		}
	}
}

func (e *Engine) logDropped() {
	dropped := e.analyzer.Dropped()
	if dropped != e.lastDropped {
		applog.Debugf("Engine: %d samples dropped by slow ticks (total %d)", dropped-e.lastDropped, dropped)
		e.lastDropped = dropped
	}
}

// Close stops recording and capture. Transports are left to their owner.
func (e *Engine) Close() error {
	if err := e.StopRecording(); err != nil {
		return err
	}

	e.StopFilePlayback()

	if err := e.StopInputStream(); err != nil {
		return err
	}

	return nil
}
