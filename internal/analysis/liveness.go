// SPDX-License-Identifier: MIT
package analysis

import (
	"sync/atomic"
	"time"
)

// Liveness tells a tick whether capture is running. Active is called once
// per tick with the seconds elapsed since the previous tick.
type Liveness interface {
	Active(elapsed float64) bool
}

// LivenessFunc adapts a function to Liveness.
type LivenessFunc func(elapsed float64) bool

func (f LivenessFunc) Active(elapsed float64) bool {
	return f(elapsed)
}

// captureWatchdog is the default Liveness. Capture counts as active from the
// first push on; when pushes stop for longer than the timeout the watchdog
// reports a stall so the analyzer can decay outputs instead of freezing
// them.
type captureWatchdog struct {
	pushed  atomic.Bool // set by the producer, cleared by check
	started bool
	idle    float64 // seconds since the last observed push
	timeout float64
}

func newCaptureWatchdog(timeout time.Duration) *captureWatchdog {
	return &captureWatchdog{timeout: timeout.Seconds()}
}

// notify is called from the producer side on every push.
func (w *captureWatchdog) notify() {
	w.pushed.Store(true)
}

// check advances the idle clock. It must be called under the tick lock.
func (w *captureWatchdog) check(elapsed float64) (active, stalled bool) {
	if w.pushed.Swap(false) {
		w.started = true
		w.idle = 0
		return true, false
	}
	if !w.started {
		return false, false
	}
	w.idle += elapsed
	return true, w.timeout > 0 && w.idle >= w.timeout
}

func (w *captureWatchdog) reset() {
	w.pushed.Store(false)
	w.started = false
	w.idle = 0
}
