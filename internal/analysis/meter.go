// SPDX-License-Identifier: MIT
package analysis

// TickMeter drains every capture queue into its channel's sample window and
// updates the level reading. Queues are drained even while hidden.
func (p *pipeline) TickMeter(st *State, in Inputs) {
	cfg := st.cfg
	channels := min(cfg.CaptureChannels, len(in.Buffers))
	if channels == 0 {
		return
	}

	for ch := range channels {
		win := st.meterWindow[ch]
		pos := st.MeterPos[ch]
		for {
			n := in.Buffers[ch].Pop(win[pos:], len(win)-pos)
			if n == 0 {
				break
			}
			// Wrapping leaves the old tail in place.
			if pos += n; pos == len(win) {
				pos = 0
			}
		}
		st.MeterPos[ch] = pos

		if !st.Show {
			continue
		}

		var level float32
		if cfg.MeterRMS {
			level = sqrt32(p.k.sumSquares(win) / float32(len(win)))
		} else {
			level = p.k.maxAbs(win)
		}
		if cfg.Smoothing == SmoothingExponential {
			level = smoothLevel(st.MeterBuf[ch], level, cfg.Gravity, cfg.FastPeaks)
		}

		st.MeterBuf[ch] = level
		st.MeterVal[ch] = DBFS(level)
	}

	if !st.Show {
		st.hide()
	}
}
