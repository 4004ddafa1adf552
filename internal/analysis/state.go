// SPDX-License-Identifier: MIT
package analysis

// State is the mutable analysis state of one session. It is exclusively owned
// by whoever drives the ticks; the exported buffers may be read between ticks.
type State struct {
	cfg Settings

	// Decibels holds the spectrum per output channel, FFTSize/2 bins each.
	// Channels past OutputChannels are nil.
	Decibels [2][]float32

	// Linear is the unconverted magnitude per capture channel. A channel
	// skipped for lack of samples keeps its previous values.
	Linear [][]float32

	// TSmooth is the previous smoothed magnitude per capture channel.
	TSmooth [][]float32

	// Meter state per capture channel.
	MeterPos []int
	MeterBuf []float32 // previous smoothed linear level
	MeterVal []float32 // previous level in dB

	// LastSilent is set once every capture channel has been judged silent.
	LastSilent bool

	// Show is false while nothing is displayed.
	Show bool

	frame       []float32
	pairs       []float32
	meterWindow [][]float32
	cleared     bool
}

// NewState allocates every buffer for cfg. Spectrum and meter outputs start
// at MinDecibels.
func NewState(cfg Settings) *State {
	bins := cfg.Bins()
	channels := cfg.CaptureChannels

	st := &State{
		cfg:         cfg,
		Linear:      make([][]float32, channels),
		TSmooth:     make([][]float32, channels),
		MeterPos:    make([]int, channels),
		MeterBuf:    make([]float32, channels),
		MeterVal:    make([]float32, channels),
		Show:        true,
		frame:       make([]float32, cfg.FFTSize),
		pairs:       make([]float32, cfg.FFTSize),
		meterWindow: make([][]float32, channels),
	}

	for ch := range cfg.OutputChannels() {
		st.Decibels[ch] = make([]float32, bins)
		fill(st.Decibels[ch], MinDecibels)
	}
	for ch := range channels {
		st.Linear[ch] = make([]float32, bins)
		st.TSmooth[ch] = make([]float32, bins)
		st.meterWindow[ch] = make([]float32, cfg.FFTSize)
		st.MeterVal[ch] = MinDecibels
	}

	return st
}

// Settings returns the configuration the state was sized for.
func (st *State) Settings() Settings {
	return st.cfg
}

// SetShow toggles display. Hiding clears outputs on the next tick.
func (st *State) SetShow(show bool) {
	if show && !st.Show {
		st.cleared = false
	}
	st.Show = show
}

func fill(dst []float32, v float32) {
	for i := range dst {
		dst[i] = v
	}
}
