// SPDX-License-Identifier: MIT
package analysis

// TickSpectrum refreshes st.Decibels from the newest frame of each capture
// channel.
func (p *pipeline) TickSpectrum(st *State, in Inputs) {
	cfg := st.cfg
	channels := min(cfg.CaptureChannels, len(in.Buffers))
	if channels == 0 {
		return
	}

	if !st.Show {
		st.hide()
		return
	}

	params := magParams{
		scale:     2 / float32(cfg.FFTSize),
		smooth:    cfg.Smoothing == SmoothingExponential,
		fastPeaks: cfg.FastPeaks,
		gravity:   cfg.Gravity,
	}
	var window []float32
	if in.Tables != nil {
		window = in.Tables.Window
		params.slope = in.Tables.Slope
	}

	silent := 0
	for ch := range channels {
		// Underfull: keep the previous output for this channel.
		if !in.Buffers[ch].TakeLatest(st.frame) {
			continue
		}
		if p.gate(st, ch, &silent) {
			continue
		}
		if window != nil {
			p.k.mul(st.frame, window)
		}
		if in.Transform == nil {
			continue
		}

		in.Transform.Execute(st.frame, st.pairs)
		p.k.magnitudes(st.Linear[ch], st.pairs, st.TSmooth[ch], params)
	}

	if st.LastSilent {
		return
	}
	p.reduce(st)
}

// reduce converts the linear magnitudes to per output channel decibels.
func (p *pipeline) reduce(st *State) {
	cfg := st.cfg
	lin := st.Linear

	switch {
	case cfg.Stereo:
		right := lin[0]
		if len(lin) > 1 {
			right = lin[1]
		}
		p.k.toDecibels(st.Decibels[0], lin[0])
		p.k.toDecibels(st.Decibels[1], right)
	case len(lin) > 1:
		p.k.average(st.Decibels[0], lin[0], lin[1])
		p.k.toDecibels(st.Decibels[0], st.Decibels[0])
	default:
		p.k.toDecibels(st.Decibels[0], lin[0])
	}
}
