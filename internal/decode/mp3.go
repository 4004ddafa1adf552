// SPDX-License-Identifier: MIT
package decode

import (
	"encoding/binary"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces 16 bit little endian stereo.
const (
	mp3Channels       = 2
	mp3BytesPerSample = 2
)

// mp3Reader is the part of gomp3.Decoder the source needs.
type mp3Reader interface {
	io.Reader
	SampleRate() int
}

type mp3Source struct {
	file  io.Closer
	dec   mp3Reader
	bytes []byte
	rate  int
}

func newMP3(f io.ReadCloser) (*mp3Source, error) {
	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}
	return newMP3Source(f, dec)
}

func newMP3Source(file io.Closer, dec mp3Reader) (*mp3Source, error) {
	if err := checkStream(dec.SampleRate(), mp3Channels); err != nil {
		return nil, err
	}
	return &mp3Source{file: file, dec: dec, rate: dec.SampleRate()}, nil
}

func (s *mp3Source) SampleRate() int { return s.rate }
func (s *mp3Source) Channels() int   { return mp3Channels }

func (s *mp3Source) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

func (s *mp3Source) ReadSamples(dst []float32) (int, error) {
	want := wholeFrames(len(dst), mp3Channels) * mp3BytesPerSample
	if want == 0 {
		return 0, nil
	}
	if cap(s.bytes) < want {
		s.bytes = make([]byte, want)
	}

	// A full read keeps the byte stream aligned to whole samples.
	got, err := io.ReadFull(s.dec, s.bytes[:want])
	if err == io.ErrUnexpectedEOF {
		err = nil
	}

	n := wholeFrames(got/mp3BytesPerSample, mp3Channels)
	for i := range n {
		v := int16(binary.LittleEndian.Uint16(s.bytes[i*mp3BytesPerSample:]))
		dst[i] = float32(v) / 32768
	}
	if n == 0 && err == nil {
		err = io.EOF
	}
	return n, err
}
