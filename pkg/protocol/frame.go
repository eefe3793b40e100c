package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// PrefixSize is the width of the length prefix on every frame.
	PrefixSize = 4
	// MaxPayload bounds a single frame. A length above this is treated
	// as a malformed stream, not a large frame.
	MaxPayload = 1 << 20
)

// FrameDecoder incrementally splits a byte stream into frame payloads.
// Feed it whatever bytes are available; Next yields complete payloads
// until the buffer runs dry. A partial frame is simply "not yet".
type FrameDecoder struct {
	buf []byte
}

// Feed appends stream bytes to the internal buffer.
func (d *FrameDecoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Next returns the next complete payload, or ok=false when more bytes
// are needed. The returned slice is a copy and remains valid after
// further Feed calls. An impossible length prefix yields ErrMalformed.
func (d *FrameDecoder) Next() ([]byte, bool, error) {
	if len(d.buf) < PrefixSize {
		return nil, false, nil
	}
	n := binary.LittleEndian.Uint32(d.buf[:PrefixSize])
	if n == 0 || n > MaxPayload {
		return nil, false, fmt.Errorf("%w: frame length %d", ErrMalformed, n)
	}
	if len(d.buf) < PrefixSize+int(n) {
		return nil, false, nil
	}
	payload := make([]byte, n)
	copy(payload, d.buf[PrefixSize:PrefixSize+int(n)])
	d.buf = d.buf[PrefixSize+int(n):]
	return payload, true, nil
}

// Buffered reports how many undecoded bytes are pending.
func (d *FrameDecoder) Buffered() int { return len(d.buf) }

// FrameWriter accumulates encoded frames and flushes them to a stream,
// tolerating partial writes: whatever the writer did not accept stays
// queued for the next Flush.
type FrameWriter struct {
	pending []byte
}

// Queue appends one framed payload to the pending buffer.
func (w *FrameWriter) Queue(payload []byte) {
	var prefix [PrefixSize]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(payload)))
	w.pending = append(w.pending, prefix[:]...)
	w.pending = append(w.pending, payload...)
}

// QueueServer encodes and queues one server packet.
func (w *FrameWriter) QueueServer(p ServerPacket) error {
	payload, err := EncodeServer(p)
	if err != nil {
		return err
	}
	w.Queue(payload)
	return nil
}

// QueueClient encodes and queues one client packet.
func (w *FrameWriter) QueueClient(p ClientPacket) error {
	payload, err := EncodeClient(p)
	if err != nil {
		return err
	}
	w.Queue(payload)
	return nil
}

// Flush writes as much of the pending buffer as the stream accepts and
// returns the byte count written. Short writes are not errors.
func (w *FrameWriter) Flush(dst io.Writer) (int, error) {
	if len(w.pending) == 0 {
		return 0, nil
	}
	n, err := dst.Write(w.pending)
	w.pending = w.pending[n:]
	if len(w.pending) == 0 {
		w.pending = nil
	}
	if err == io.ErrShortWrite {
		err = nil
	}
	return n, err
}

// Buffered reports how many bytes are waiting to be flushed.
func (w *FrameWriter) Buffered() int { return len(w.pending) }
