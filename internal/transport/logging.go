package transport

import (
	"sync/atomic"

	"waveform/internal/analysis"
	applog "waveform/internal/log"
)

// LoggingTransport writes a one line summary of each frame at debug level.
// It is the fallback when no other transport is configured.
type LoggingTransport struct {
	sent atomic.Uint64
}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Info("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs a summary of the frame. Other payloads are logged by type.
func (lt *LoggingTransport) Send(data any) error {
	lt.sent.Add(1)
	if !applog.Enabled(applog.LevelDebug) {
		return nil
	}

	f, ok := data.(*analysis.Frame)
	if !ok {
		applog.Debugf("Transport: Received %T", data)
		return nil
	}

	peak := analysis.MinDecibels
	for _, ch := range f.Spectrum {
		for _, v := range ch {
			peak = max(peak, v)
		}
	}
	for _, v := range f.Meter {
		peak = max(peak, v)
	}
	applog.Debugf("Transport: Frame %d (Mode: %s, Silent: %v, Peak: %.1f dB)", f.Seq, f.Mode, f.Silent, peak)
	return nil
}

// Sent returns the number of payloads received.
func (lt *LoggingTransport) Sent() uint64 {
	return lt.sent.Load()
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("Transport: LoggingTransport closed after %d frames", lt.sent.Load())
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
