// SPDX-License-Identifier: MIT
package decode

import (
	"errors"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var ErrInvalidWAV = errors.New("decode: not a valid PCM wav file")

type wavSource struct {
	file     io.Closer
	dec      *wav.Decoder
	buf      *audio.IntBuffer
	scale    float32
	rate     int
	channels int
}

func newWAV(f io.ReadSeekCloser) (*wavSource, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	rate, channels := int(dec.SampleRate), int(dec.NumChans)
	if err := checkStream(rate, channels); err != nil {
		return nil, err
	}
	if dec.BitDepth == 0 || dec.BitDepth > 32 {
		return nil, ErrInvalidWAV
	}

	return &wavSource{
		file:     f,
		dec:      dec,
		buf:      &audio.IntBuffer{Format: dec.Format()},
		scale:    1 / float32(int64(1)<<(dec.BitDepth-1)),
		rate:     rate,
		channels: channels,
	}, nil
}

func (s *wavSource) SampleRate() int { return s.rate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Close() error    { return s.file.Close() }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	want := wholeFrames(len(dst), s.channels)
	if want == 0 {
		return 0, nil
	}
	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	n = wholeFrames(n, s.channels)
	for i, v := range s.buf.Data[:n] {
		dst[i] = float32(v) * s.scale
	}
	return n, nil
}
