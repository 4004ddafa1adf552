// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"sync"
	"sync/atomic"

	"waveform/internal/fft"
	applog "waveform/internal/log"
	"waveform/internal/ringbuf"
)

// Analyzer owns one analysis session: the capture queues, the state, the
// coefficient tables and the transform plan. Producers call Push from any
// goroutine; ticks, reconfiguration and snapshots are serialized by one
// lock held for the whole call.
type Analyzer struct {
	mu        sync.Mutex
	cfg       Settings
	engine    Engine
	state     *State
	tables    *Tables
	transform Transform
	fixedPlan bool
	live      Liveness
	watchdog  *captureWatchdog
	seq       uint64

	rings   atomic.Pointer[[]*ringbuf.Buffer]
	dropped atomic.Uint64
}

// Option configures an Analyzer at construction.
type Option func(*Analyzer)

// WithBackend forces the kernel instead of probing the CPU.
func WithBackend(b Backend) Option {
	return func(a *Analyzer) {
		a.engine = NewEngine(b)
	}
}

// WithTransform replaces the built-in FFT plan. The transform must match
// the FFT size of every settings it is used with. A nil transform makes
// every spectrum tick skip its channels.
func WithTransform(t Transform) Option {
	return func(a *Analyzer) {
		a.transform = t
		a.fixedPlan = true
	}
}

// WithLiveness replaces the capture watchdog.
func WithLiveness(l Liveness) Option {
	return func(a *Analyzer) {
		a.live = l
	}
}

// New validates cfg and builds an Analyzer for it.
func New(cfg Settings, opts ...Option) (*Analyzer, error) {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	if a.engine == nil {
		a.engine = NewEngine(BackendAuto)
	}
	a.watchdog = newCaptureWatchdog(cfg.CaptureTimeout)

	if err := a.configure(cfg); err != nil {
		return nil, err
	}

	applog.Infof("Analysis: Initialized (Engine: %s, FFT: %d, Channels: %d->%d, Window: %s, Mode: %s)",
		a.engine.Name(), cfg.FFTSize, cfg.CaptureChannels, cfg.OutputChannels(), cfg.Window, cfg.Mode)
	return a, nil
}

// configure rebuilds everything sized by cfg. Callers hold mu, except New.
func (a *Analyzer) configure(cfg Settings) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("analysis settings: %w", err)
	}

	if !a.fixedPlan {
		plan, err := fft.NewPlan(cfg.FFTSize)
		if err != nil {
			return fmt.Errorf("failed to create fft plan: %w", err)
		}
		a.transform = plan
	}

	rings := make([]*ringbuf.Buffer, cfg.CaptureChannels)
	for ch := range rings {
		rings[ch] = ringbuf.New(cfg.ringCapacity())
	}

	show := a.state == nil || a.state.Show
	a.cfg = cfg
	a.state = NewState(cfg)
	a.state.SetShow(show)
	a.tables = NewTables(cfg)
	a.watchdog.timeout = cfg.CaptureTimeout.Seconds()
	a.watchdog.reset()
	a.rings.Store(&rings)
	return nil
}

// Reconfigure replaces the settings. All state is reset; on error the
// previous session is kept.
func (a *Analyzer) Reconfigure(cfg Settings) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.configure(cfg); err != nil {
		return err
	}
	applog.Infof("Analysis: Reconfigured (FFT: %d, Channels: %d->%d, Window: %s, Mode: %s)",
		cfg.FFTSize, cfg.CaptureChannels, cfg.OutputChannels(), cfg.Window, cfg.Mode)
	return nil
}

// Push queues samples for capture channel ch. Out of range channels are
// ignored. It never blocks on a running tick.
func (a *Analyzer) Push(ch int, samples []float32) {
	rings := *a.rings.Load()
	if ch < 0 || ch >= len(rings) {
		return
	}
	if dropped := rings[ch].Push(samples); dropped > 0 {
		a.dropped.Add(uint64(dropped))
	}
	a.watchdog.notify()
}

// PushInterleaved splits interleaved frames of the given channel count into
// the capture queues. Extra source channels are ignored; a mono source
// feeding a stereo capture fills both queues.
func (a *Analyzer) PushInterleaved(samples []float32, channels int) {
	rings := *a.rings.Load()
	if channels <= 0 || len(rings) == 0 {
		return
	}
	frames := len(samples) / channels

	var scratch [512]float32
	for ch, ring := range rings {
		src := min(ch, channels-1)
		for off := 0; off < frames; off += len(scratch) {
			n := min(len(scratch), frames-off)
			for i := range n {
				scratch[i] = samples[(off+i)*channels+src]
			}
			if dropped := ring.Push(scratch[:n]); dropped > 0 {
				a.dropped.Add(uint64(dropped))
			}
		}
	}
	a.watchdog.notify()
}

// Dropped returns the number of samples overwritten before a tick read
// them.
func (a *Analyzer) Dropped() uint64 {
	return a.dropped.Load()
}

func (a *Analyzer) inputs() Inputs {
	return Inputs{
		Buffers:   *a.rings.Load(),
		Transform: a.transform,
		Tables:    a.tables,
	}
}

// active runs the liveness check. On a capture stall the queues get a frame
// of silence per tick until the outputs have decayed.
func (a *Analyzer) active(elapsed float64) bool {
	if a.live != nil {
		return a.live.Active(elapsed)
	}

	active, stalled := a.watchdog.check(elapsed)
	if stalled && !a.outputsSilent() {
		for _, ring := range *a.rings.Load() {
			ring.PushZeros(a.cfg.FFTSize)
		}
	}
	return active
}

func (a *Analyzer) outputsSilent() bool {
	if a.cfg.Mode == ModeSpectrum {
		return a.state.LastSilent
	}
	for _, v := range a.state.MeterVal {
		if v >= a.cfg.Floor-10 {
			return false
		}
	}
	return true
}

// TickSpectrum runs one spectrum tick. elapsed is the time in seconds since
// the previous tick.
func (a *Analyzer) TickSpectrum(elapsed float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.active(elapsed) {
		return
	}
	a.engine.TickSpectrum(a.state, a.inputs())
	a.seq++
}

// TickMeter runs one level meter tick.
func (a *Analyzer) TickMeter(elapsed float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.active(elapsed) {
		return
	}
	a.engine.TickMeter(a.state, a.inputs())
	a.seq++
}

// Tick runs the tick for the configured display mode.
func (a *Analyzer) Tick(elapsed float64) {
	if a.Settings().Mode == ModeMeter {
		a.TickMeter(elapsed)
		return
	}
	a.TickSpectrum(elapsed)
}

// SetShow toggles display. While hidden the outputs sit at MinDecibels and
// spectrum ticks do no work.
func (a *Analyzer) SetShow(show bool) {
	a.mu.Lock()
	a.state.SetShow(show)
	a.mu.Unlock()
}

// Settings returns the active settings.
func (a *Analyzer) Settings() Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Silent reports whether every capture channel is currently silent.
func (a *Analyzer) Silent() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.LastSilent
}

// EngineName returns the name of the backend in use.
func (a *Analyzer) EngineName() string {
	return a.engine.Name()
}

// Frame is a copy of the analyzer outputs taken between ticks.
type Frame struct {
	Seq      uint64      `json:"seq"`
	Mode     string      `json:"mode"`
	Silent   bool        `json:"silent"`
	Spectrum [][]float32 `json:"spectrum,omitempty"` // dB per output channel
	Meter    []float32   `json:"meter,omitempty"`    // dB per capture channel
}

// Snapshot copies the current outputs into f, reusing f's slices when they
// are large enough.
func (a *Analyzer) Snapshot(f *Frame) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := a.state
	f.Seq = a.seq
	f.Mode = a.cfg.Mode.String()
	f.Silent = st.LastSilent

	outputs := a.cfg.OutputChannels()
	if cap(f.Spectrum) < outputs {
		f.Spectrum = make([][]float32, outputs)
	}
	f.Spectrum = f.Spectrum[:outputs]
	for ch := range outputs {
		f.Spectrum[ch] = append(f.Spectrum[ch][:0], st.Decibels[ch]...)
	}
	f.Meter = append(f.Meter[:0], st.MeterVal...)
}
