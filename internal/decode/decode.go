// SPDX-License-Identifier: MIT

// Package decode turns audio files into interleaved float32 PCM so a file
// can stand in for a capture device.
package decode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("decode: unsupported file format")
	ErrInvalidStream     = errors.New("decode: invalid stream parameters")
)

// Source yields interleaved samples in [-1, 1].
type Source interface {
	SampleRate() int
	Channels() int
	// ReadSamples fills dst with whole frames and returns the number of
	// samples written. It returns io.EOF once the stream is exhausted.
	ReadSamples(dst []float32) (int, error)
	Close() error
}

// Open decodes the file at path, picking the decoder from its extension.
func Open(path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav", ".mp3", ".ogg", ".oga":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var src Source
	switch ext {
	case ".wav":
		src, err = newWAV(f)
	case ".mp3":
		src, err = newMP3(f)
	default:
		src, err = newOgg(f)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return src, nil
}

func checkStream(sampleRate, channels int) error {
	if sampleRate <= 0 || channels <= 0 {
		return fmt.Errorf("%w: %d Hz, %d channels", ErrInvalidStream, sampleRate, channels)
	}
	return nil
}

// wholeFrames trims n samples down to a multiple of channels.
func wholeFrames(n, channels int) int {
	return n - n%channels
}
