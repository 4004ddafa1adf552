// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	applog "waveform/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// RecordingName returns a timestamped file name in dir.
func RecordingName(dir string, now time.Time) string {
	return filepath.Join(dir, "recording-"+now.UTC().Format("02-01-2006-150405")+".wav")
}

// StartRecording writes the captured stream to filename as integer PCM at
// the configured bit depth.
func (e *Engine) StartRecording(filename string) error {
	e.recordMu.Lock()
	defer e.recordMu.Unlock()

	if e.recording {
		return errors.New("already recording")
	}

	bitDepth := e.config.Recording.BitDepth
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create recording directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	e.outputFile = file

	e.wavEncoder = wav.NewEncoder(file, e.sampleRate, bitDepth, e.channels, 1)

	e.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: e.channels,
			SampleRate:  e.sampleRate,
		},
		Data:           make([]int, e.config.Audio.FramesPerBuffer*e.channels),
		SourceBitDepth: bitDepth,
	}
	e.sampleMax = float64(int64(1)<<(bitDepth-1) - 1)

	e.recording = true
	applog.Infof("Engine: Recording to %s (%d bit)", filename, bitDepth)

	return nil
}

// writeRecording converts and writes one buffer. Callers hold recordMu.
func (e *Engine) writeRecording(in []float32) {
	if cap(e.sampleBuf.Data) < len(in) {
		e.sampleBuf.Data = make([]int, len(in))
	}
	e.sampleBuf.Data = e.sampleBuf.Data[:len(in)]

	for i, sample := range in {
		s := min(max(float64(sample), -1), 1)
		e.sampleBuf.Data[i] = int(s * e.sampleMax)
	}

	if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
		applog.Errorf("Engine: Error writing to WAV file: %v", err)
	}
}

func (e *Engine) StopRecording() error {
	e.recordMu.Lock()
	defer e.recordMu.Unlock()

	if !e.recording {
		return nil
	}

	e.recording = false

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return err
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			return err
		}
		applog.Infof("Engine: Recording saved to %s", e.outputFile.Name())
		e.outputFile = nil
	}

	return nil
}

// Recording reports whether a recording is in progress.
func (e *Engine) Recording() bool {
	e.recordMu.Lock()
	defer e.recordMu.Unlock()
	return e.recording
}
