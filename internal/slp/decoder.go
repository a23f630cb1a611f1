// Package slp reads Slippi replay files (.slp and zstd-compressed .slpz).
package slp

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Event command bytes.
const (
	EventPayloads  byte = 0x35
	EventGameStart byte = 0x36
	EventPreFrame  byte = 0x37
	EventPostFrame byte = 0x38
	EventGameEnd   byte = 0x39
)

var (
	ErrNotReplay    = errors.New("not a slippi replay")
	ErrUnknownEvent = errors.New("unknown event")
	ErrNoGameStart  = errors.New("missing game start")
	ErrPlayers      = errors.New("replay does not have exactly two players")
)

// RawHeader opens the UBJSON document and the "raw" byte array; it is
// followed by the big-endian int32 array length.
var RawHeader = []byte{'{', 'U', 3, 'r', 'a', 'w', '[', '$', 'U', '#', 'l'}

// decoder reads events from the raw array. A declared length of zero marks
// a replay that is still being written; such a stream is read until EOF and
// a truncated final event is dropped.
type decoder struct {
	r         *bufio.Reader
	remaining int64 // bytes left in the raw array, -1 when unknown
	sizes     map[byte]int
	buf       []byte
}

func newDecoder(r io.Reader) (*decoder, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	head := make([]byte, len(RawHeader)+4)
	if _, err := io.ReadFull(br, head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotReplay, err)
	}
	if !bytes.Equal(head[:len(RawHeader)], RawHeader) {
		return nil, ErrNotReplay
	}

	d := &decoder{r: br, remaining: int64(int32(binary.BigEndian.Uint32(head[len(RawHeader):])))}
	if d.remaining <= 0 {
		d.remaining = -1
	}

	if err := d.readPayloadSizes(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *decoder) live() bool {
	return d.remaining < 0
}

func (d *decoder) readPayloadSizes() error {
	head := make([]byte, 2)
	if err := d.read(head); err != nil {
		return fmt.Errorf("read event payloads: %w", err)
	}
	if head[0] != EventPayloads {
		return fmt.Errorf("%w: first event is 0x%02x", ErrNotReplay, head[0])
	}

	// The size byte counts itself.
	if head[1] < 1 || (head[1]-1)%3 != 0 {
		return fmt.Errorf("%w: event payloads size %d", ErrNotReplay, head[1])
	}
	body := make([]byte, int(head[1])-1)
	if err := d.read(body); err != nil {
		return fmt.Errorf("read event payloads: %w", err)
	}

	d.sizes = map[byte]int{EventPayloads: int(head[1])}
	for i := 0; i < len(body); i += 3 {
		d.sizes[body[i]] = int(binary.BigEndian.Uint16(body[i+1:]))
	}
	return nil
}

// next returns the next event. The payload excludes the command byte and
// is only valid until the following call. io.EOF marks the end of events.
func (d *decoder) next() (byte, []byte, error) {
	if d.remaining == 0 {
		return 0, nil, io.EOF
	}

	cmd, err := d.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) && d.live() {
			return 0, nil, io.EOF
		}
		return 0, nil, fmt.Errorf("read event: %w", io.ErrUnexpectedEOF)
	}
	if !d.live() {
		d.remaining--
	}

	size, ok := d.sizes[cmd]
	if !ok {
		return 0, nil, fmt.Errorf("%w 0x%02x", ErrUnknownEvent, cmd)
	}

	if cap(d.buf) < size {
		d.buf = make([]byte, size)
	}
	d.buf = d.buf[:size]
	if err := d.read(d.buf); err != nil {
		if d.live() {
			return 0, nil, io.EOF
		}
		return 0, nil, fmt.Errorf("read event 0x%02x: %w", cmd, err)
	}
	return cmd, d.buf, nil
}

func (d *decoder) read(p []byte) error {
	if !d.live() && int64(len(p)) > d.remaining {
		return fmt.Errorf("event overruns raw array: %w", io.ErrUnexpectedEOF)
	}
	if _, err := io.ReadFull(d.r, p); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	if !d.live() {
		d.remaining -= int64(len(p))
	}
	return nil
}
