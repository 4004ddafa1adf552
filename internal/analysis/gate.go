// SPDX-License-Identifier: MIT
package analysis

// gate decides whether channel ch can skip the transform this tick. The
// frame must already hold the channel's newest samples.
//
// A channel is silent when its frame is exactly zero and its previous output
// is already below Floor-10 dB, so a decaying tail is still drawn. Once
// every capture channel is silent in the same tick the state goes globally
// silent and the outputs are parked at MinDecibels. Any non-zero sample
// clears the global flag.
func (p *pipeline) gate(st *State, ch int, silent *int) bool {
	if !p.k.allZero(st.frame) {
		st.LastSilent = false
		return false
	}
	if st.LastSilent {
		return true
	}

	out := st.Decibels[0]
	if st.cfg.Stereo {
		out = st.Decibels[ch]
	}
	if !p.k.allBelow(out, st.cfg.Floor-10) {
		return false
	}

	clear(st.Linear[ch])
	*silent++
	if *silent >= st.cfg.CaptureChannels {
		st.silence()
	}
	return true
}

// silence marks the state globally silent and resets every output.
func (st *State) silence() {
	for ch := range st.Linear {
		clear(st.Linear[ch])
		clear(st.TSmooth[ch])
	}
	for _, db := range st.Decibels {
		fill(db, MinDecibels)
	}
	st.LastSilent = true
}

// hide resets outputs once after display was turned off. Later calls return
// without touching any buffer until SetShow(true).
func (st *State) hide() {
	if st.cleared {
		return
	}
	st.silence()
	clear(st.MeterBuf)
	fill(st.MeterVal, MinDecibels)
	st.cleared = true
}
