// SPDX-License-Identifier: MIT
/*
Package ringbuf implements the per-channel capture queue that sits between
the audio producer (a capture callback or file player) and the analysis
tick.

The queue is element counted: it stores float32 samples, not bytes, and has
a fixed capacity chosen at construction. When the producer outruns the
consumer the oldest samples are overwritten, so a stalled consumer never
causes unbounded growth.

Thread Safety:
  - One producer and one consumer, serialized by an internal mutex
  - No allocations after New
*/
package ringbuf

import "sync"

// Buffer is a fixed-capacity circular queue of samples.
type Buffer struct {
	mu   sync.Mutex
	data []float32
	head int // index of the oldest sample
	size int // number of valid samples
}

// New creates a Buffer that holds up to capacity samples.
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{data: make([]float32, capacity)}
}

// Cap returns the capacity in samples.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Len returns the number of samples currently queued.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Push appends samples at the back of the queue. If the queue overflows the
// oldest samples are dropped; the number dropped is returned.
func (b *Buffer) Push(samples []float32) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.data)
	dropped := 0

	// Only the newest capacity samples can survive the write.
	if len(samples) > capacity {
		dropped = len(samples) - capacity
		samples = samples[dropped:]
	}

	if over := b.size + len(samples) - capacity; over > 0 {
		b.discardLocked(over)
		dropped += over
	}

	tail := (b.head + b.size) % capacity
	n := copy(b.data[tail:], samples)
	copy(b.data, samples[n:])
	b.size += len(samples)

	return dropped
}

// PushZeros appends n zero samples.
func (b *Buffer) PushZeros(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.data)
	dropped := 0
	if n > capacity {
		dropped = n - capacity
		n = capacity
	}
	if over := b.size + n - capacity; over > 0 {
		b.discardLocked(over)
		dropped += over
	}

	tail := (b.head + b.size) % capacity
	first := min(n, capacity-tail)
	clear(b.data[tail : tail+first])
	clear(b.data[:n-first])
	b.size += n

	return dropped
}

// Peek copies the oldest len(dst) samples into dst without consuming them.
// It returns the number of samples copied, which is less than len(dst) when
// the queue holds fewer samples.
func (b *Buffer) Peek(dst []float32) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.copyLocked(dst, b.head, min(len(dst), b.size))
}

// Pop consumes up to n samples from the front of the queue, copying them into
// dst first when dst is non-nil. It never consumes more than is queued and
// returns the number of samples consumed.
func (b *Buffer) Pop(dst []float32, n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n = min(n, b.size)
	if dst != nil {
		n = min(n, len(dst))
		b.copyLocked(dst, b.head, n)
	}
	b.discardLocked(n)
	return n
}

// TakeLatest copies the newest len(dst) samples into dst and discards every
// older sample, leaving exactly len(dst) samples queued. It reports false and
// leaves the queue untouched when fewer than len(dst) samples are available.
func (b *Buffer) TakeLatest(dst []float32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(dst)
	if n == 0 || b.size < n {
		return false
	}

	b.discardLocked(b.size - n)
	b.copyLocked(dst, b.head, n)
	return true
}

// Reset empties the queue.
func (b *Buffer) Reset() {
	b.mu.Lock()
	b.head = 0
	b.size = 0
	b.mu.Unlock()
}

func (b *Buffer) copyLocked(dst []float32, from, n int) int {
	if n <= 0 {
		return 0
	}
	first := min(n, len(b.data)-from)
	copy(dst, b.data[from:from+first])
	copy(dst[first:n], b.data[:n-first])
	return n
}

func (b *Buffer) discardLocked(n int) {
	if n <= 0 {
		return
	}
	b.head = (b.head + n) % len(b.data)
	b.size -= n
	if b.size == 0 {
		b.head = 0
	}
}
