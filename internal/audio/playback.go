// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"io"
	"time"

	"waveform/internal/decode"
	applog "waveform/internal/log"
)

// openSource is replaced in tests.
var openSource = decode.Open

// StartFilePlayback decodes path and feeds it to the analyzer at its own
// sample rate, one buffer of FramesPerBuffer frames at a time. With loop set
// the file restarts when it ends.
func (e *Engine) StartFilePlayback(path string, loop bool) error {
	if e.playStop != nil {
		return errors.New("file playback already running")
	}

	src, err := openSource(path)
	if err != nil {
		return err
	}

	e.channels = src.Channels()
	e.sampleRate = src.SampleRate()
	if configured := int(e.config.Audio.SampleRate); e.sampleRate != configured {
		applog.Warnf("Engine: %s is %d Hz, configured rate is %d Hz; band frequencies follow the file",
			path, e.sampleRate, configured)
	}

	e.playStop = make(chan struct{})
	e.playWG.Add(1)
	go e.playFile(path, src, loop, e.playStop)

	applog.Infof("Engine: Playing %s (%d channels, %d Hz, loop: %v)", path, e.channels, e.sampleRate, loop)
	return nil
}

// StopFilePlayback stops playback and waits for the reader to exit.
func (e *Engine) StopFilePlayback() {
	if e.playStop == nil {
		return
	}
	close(e.playStop)
	e.playWG.Wait()
	e.playStop = nil
}

func (e *Engine) playFile(path string, src decode.Source, loop bool, stop <-chan struct{}) {
	defer e.playWG.Done()
	defer func() {
		if src != nil {
			src.Close()
		}
	}()

	frames := e.config.Audio.FramesPerBuffer
	buf := make([]float32, frames*src.Channels())
	period := time.Duration(float64(time.Second) * float64(frames) / float64(src.SampleRate()))

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		n, err := src.ReadSamples(buf)
		if n > 0 {
			e.capture(buf[:n])
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) {
			applog.Errorf("Engine: Decoding %s failed: %v", path, err)
			return
		}
		if !loop {
			applog.Infof("Engine: Finished playing %s", path)
			return
		}

		src.Close()
		if src, err = openSource(path); err != nil {
			applog.Errorf("Engine: Reopening %s failed: %v", path, err)
			src = nil
			return
		}
	}
}
