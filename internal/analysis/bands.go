// SPDX-License-Identifier: MIT
package analysis

// FrequencyBand is a named frequency range used to summarise a spectrum.
type FrequencyBand struct {
	Name   string
	LowHz  float64
	HighHz float64
}

// DefaultBands covers the audible range in six musical bands. The last band
// ends at the Nyquist frequency.
func DefaultBands(sampleRate float64) []FrequencyBand {
	return []FrequencyBand{
		{Name: "sub", LowHz: 20, HighHz: 60},
		{Name: "bass", LowHz: 60, HighHz: 250},
		{Name: "lowMid", LowHz: 250, HighHz: 500},
		{Name: "mid", LowHz: 500, HighHz: 2000},
		{Name: "highMid", LowHz: 2000, HighHz: 4000},
		{Name: "treble", LowHz: 4000, HighHz: sampleRate / 2},
	}
}

// BandLevels writes the loudest bin in dB of each band into dst. db holds
// FFTSize/2 bins of a stream at sampleRate. Bands without bins report
// MinDecibels.
func BandLevels(dst, db []float32, bands []FrequencyBand, sampleRate float64) {
	if len(db) == 0 || sampleRate <= 0 {
		fill(dst, MinDecibels)
		return
	}
	binWidth := sampleRate / float64(2*len(db))

	for i, band := range bands[:min(len(bands), len(dst))] {
		lo := max(int(band.LowHz/binWidth+0.5), 0)
		hi := min(int(band.HighHz/binWidth+0.5), len(db))

		level := MinDecibels
		for _, v := range db[min(lo, hi):hi] {
			level = max(level, v)
		}
		dst[i] = level
	}
}
