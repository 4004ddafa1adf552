// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"waveform/internal/analysis"
	applog "waveform/internal/log"
	"waveform/internal/transport"
)

// PacketSender writes one datagram per call.
type PacketSender interface {
	Send(data []byte) error
}

const (
	flagMeterMode = 1 << iota
	flagSilent
)

// HeaderSize is the fixed part of every packet.
const HeaderSize = 4 + 8 + 1 + 1 + 2 + 1

// MaxPacketSize is the largest UDP payload over IPv4.
const MaxPacketSize = 65507

// ErrFrameTooLarge is returned when a frame cannot be described by the
// packet header or does not fit in one datagram.
var ErrFrameTooLarge = errors.New("frame does not fit in one packet")

// PacketSize returns the encoded size of a frame with the given spectrum
// channels, bins per channel and meter values.
func PacketSize(channels, bins, meters int) int {
	return HeaderSize + 4*meters + 4*channels*bins
}

// UDPPublisher keeps the latest frame handed to Send and, on a fixed
// interval, packs it into the binary format below and sends it with a
// PacketSender. A frame is sent at most once.
type UDPPublisher struct {
	sender   PacketSender
	interval time.Duration

	ticker   *time.Ticker   // Ticker that triggers packet sending.
	doneChan chan struct{}  // Channel used to signal the publisher goroutine to stop.
	stopOnce sync.Once      // Ensures the stop logic runs only once per Start/Stop cycle.
	wg       sync.WaitGroup // Waits for the publisher goroutine to finish during Stop.
	mu       sync.Mutex     // Protects ticker and doneChan during Start/Stop.

	frameMu  sync.Mutex
	latest   analysis.Frame
	fresh    bool
	sequence uint32

	packetBuffer *bytes.Buffer // Reused for every packet
	warned       bool          // A failed packet has been reported at warn level
}

// NewUDPPublisher creates a publisher. If interval is not positive it
// defaults to 16ms (~60Hz).
func NewUDPPublisher(interval time.Duration, sender PacketSender) (*UDPPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}

	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}
	applog.Infof("UDPPublisher: Initializing (Interval: %s)", interval)

	return &UDPPublisher{
		sender:       sender,
		interval:     interval,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Send stores a copy of the frame for the next interval.
func (p *UDPPublisher) Send(data any) error {
	f, ok := data.(*analysis.Frame)
	if !ok {
		return fmt.Errorf("UDPPublisher: unsupported payload %T", data)
	}

	p.frameMu.Lock()
	defer p.frameMu.Unlock()

	p.latest.Seq = f.Seq
	p.latest.Mode = f.Mode
	p.latest.Silent = f.Silent
	p.latest.Meter = append(p.latest.Meter[:0], f.Meter...)
	if cap(p.latest.Spectrum) < len(f.Spectrum) {
		p.latest.Spectrum = make([][]float32, len(f.Spectrum))
	}
	p.latest.Spectrum = p.latest.Spectrum[:len(f.Spectrum)]
	for ch, bins := range f.Spectrum {
		p.latest.Spectrum[ch] = append(p.latest.Spectrum[ch][:0], bins...)
	}
	p.fresh = true
	return nil
}

// Start begins the periodic publishing process. Calling it while running
// is a no-op.
func (p *UDPPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	// Locals keep the goroutine off p.ticker and p.doneChan.
	ticker := p.ticker
	doneChan := p.doneChan

	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Debugf("UDPPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine to terminate and waits for it to
// exit. It is safe to call Stop multiple times.
func (p *UDPPublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})

	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("UDPPublisher: Stopped after %d packets", p.sequence)
	return nil
}

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Flags             | uint8          | 1            | 1 = meter mode, 2 = silent |
| Channels          | uint8          | 1            | Spectrum channels (C)   |
| Bin Count         | uint16         | 2            | Bins per channel (N)    |
| Meter Count       | uint8          | 1            | Meter values (M)        |
| Meter             | []float32      | M * 4        | Level per channel, dB   |
| Spectrum          | []float32      | C * N * 4    | Channel major, dB       |
+-----------------------------------------------------------------------------+
*/

// buildAndSendPacket sends the latest frame if it has not been sent yet.
func (p *UDPPublisher) buildAndSendPacket() {
	p.frameMu.Lock()
	if !p.fresh {
		p.frameMu.Unlock()
		return
	}
	p.fresh = false
	p.sequence++
	err := encodeFrame(p.packetBuffer, p.sequence, time.Now().UnixNano(), &p.latest)
	p.frameMu.Unlock()

	if err != nil {
		p.reportFailure("Error packing frame: %v", err)
		return
	}

	packetBytes := p.packetBuffer.Bytes()
	if err := p.sender.Send(packetBytes); err != nil {
		p.reportFailure("Error sending packet: %v", err)
		return
	}
	applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequence, len(packetBytes))
}

// reportFailure logs the first failure at warn level and the rest at debug
// level, so a frame that never fits does not flood the log.
func (p *UDPPublisher) reportFailure(format string, err error) {
	if !p.warned {
		p.warned = true
		applog.Warnf("UDPPublisher: "+format, err)
		return
	}
	applog.Debugf("UDPPublisher: "+format, err)
}

// encodeFrame resets buf and writes f as one packet.
func encodeFrame(buf *bytes.Buffer, seq uint32, timestamp int64, f *analysis.Frame) error {
	bins := 0
	if len(f.Spectrum) > 0 {
		bins = len(f.Spectrum[0])
	}
	if len(f.Spectrum) > math.MaxUint8 || len(f.Meter) > math.MaxUint8 || bins > math.MaxUint16 {
		return ErrFrameTooLarge
	}
	if size := PacketSize(len(f.Spectrum), bins, len(f.Meter)); size > MaxPacketSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}

	var flags uint8
	if f.Mode == analysis.ModeMeter.String() {
		flags |= flagMeterMode
	}
	if f.Silent {
		flags |= flagSilent
	}

	buf.Reset()
	header := []any{seq, timestamp, flags, uint8(len(f.Spectrum)), uint16(bins), uint8(len(f.Meter))}
	for _, v := range header {
		if err := binary.Write(buf, binary.BigEndian, v); err != nil {
			return err
		}
	}
	if err := binary.Write(buf, binary.BigEndian, f.Meter); err != nil {
		return err
	}
	for _, ch := range f.Spectrum {
		if len(ch) != bins {
			return fmt.Errorf("spectrum channels differ in length (%d != %d)", len(ch), bins)
		}
		if err := binary.Write(buf, binary.BigEndian, ch); err != nil {
			return err
		}
	}
	return nil
}

// Packet is a decoded frame packet.
type Packet struct {
	Sequence  uint32
	Timestamp int64
	Meter     bool
	Silent    bool
	Levels    []float32
	Spectrum  [][]float32
}

// DecodePacket parses a packet produced by the publisher.
func DecodePacket(data []byte) (Packet, error) {
	var pkt Packet
	if len(data) < HeaderSize {
		return pkt, fmt.Errorf("packet too short: %d bytes", len(data))
	}

	pkt.Sequence = binary.BigEndian.Uint32(data[0:])
	pkt.Timestamp = int64(binary.BigEndian.Uint64(data[4:]))
	flags := data[12]
	pkt.Meter = flags&flagMeterMode != 0
	pkt.Silent = flags&flagSilent != 0
	channels := int(data[13])
	bins := int(binary.BigEndian.Uint16(data[14:]))
	meters := int(data[16])

	want := HeaderSize + 4*(meters+channels*bins)
	if len(data) != want {
		return pkt, fmt.Errorf("packet length %d, header describes %d", len(data), want)
	}

	body := data[HeaderSize:]
	next := func() float32 {
		v := math.Float32frombits(binary.BigEndian.Uint32(body))
		body = body[4:]
		return v
	}
	pkt.Levels = make([]float32, meters)
	for i := range pkt.Levels {
		pkt.Levels[i] = next()
	}
	pkt.Spectrum = make([][]float32, channels)
	for ch := range pkt.Spectrum {
		pkt.Spectrum[ch] = make([]float32, bins)
		for i := range bins {
			pkt.Spectrum[ch][i] = next()
		}
	}
	return pkt, nil
}

// Close stops the publisher goroutine.
func (p *UDPPublisher) Close() error {
	return p.Stop()
}

var _ transport.Transport = (*UDPPublisher)(nil)
