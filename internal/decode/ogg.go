// SPDX-License-Identifier: MIT
package decode

import (
	"io"

	"github.com/jfreymuth/oggvorbis"
)

// oggReader is the part of oggvorbis.Reader the source needs. Read returns
// the number of values written, always a multiple of Channels.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type oggSource struct {
	file     io.Closer
	dec      oggReader
	rate     int
	channels int
}

func newOgg(f io.ReadCloser) (*oggSource, error) {
	dec, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, err
	}
	return newOggSource(f, dec)
}

func newOggSource(file io.Closer, dec oggReader) (*oggSource, error) {
	if err := checkStream(dec.SampleRate(), dec.Channels()); err != nil {
		return nil, err
	}
	return &oggSource{
		file:     file,
		dec:      dec,
		rate:     dec.SampleRate(),
		channels: dec.Channels(),
	}, nil
}

func (s *oggSource) SampleRate() int { return s.rate }
func (s *oggSource) Channels() int   { return s.channels }

func (s *oggSource) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

func (s *oggSource) ReadSamples(dst []float32) (int, error) {
	want := wholeFrames(len(dst), s.channels)
	if want == 0 {
		return 0, nil
	}
	n, err := s.dec.Read(dst[:want])
	n = wholeFrames(n, s.channels)
	if n == 0 && err == nil {
		err = io.EOF
	}
	return n, err
}
