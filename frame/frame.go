// Package frame decodes client frames and encodes server frames of the
// WebSocket base framing protocol (RFC 6455, section 5.2).
//
// Only single, unfragmented frames are supported. Payload lengths must fit
// the 7-bit or the 16-bit length encoding.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
)

/*
  0                   1                   2                   3
  0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
 +-+-+-+-+-------+-+-------------+-------------------------------+
 |F|R|R|R| opcode|M| Payload len |    Extended payload length    |
 |I|S|S|S|  (4)  |A|     (7)     |             (16/64)           |
 |N|V|V|V|       |S|             |   (if payload len==126/127)   |
 | |1|2|3|       |K|             |                               |
 +-+-+-+-+-------+-+-------------+ - - - - - - - - - - - - - - - +
 |     Extended payload length continued, if payload len == 127  |
 + - - - - - - - - - - - - - - - +-------------------------------+
 |                               |Masking-key, if MASK set to 1  |
 +-------------------------------+-------------------------------+
 | Masking-key (continued)       |          Payload Data         |
 +-------------------------------- - - - - - - - - - - - - - - - +
 :                     Payload Data continued ...                :
 + - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - +
 |                     Payload Data continued ...                |
 +---------------------------------------------------------------+
*/

const (
	finBit     = 0b1_000_0000
	opcodeBits = 0b0_000_1111
	maskBit    = 0b1_0000000
	lengthBits = 0b0_1111111

	length16Marker = 126
	length64Marker = 127

	// MaxControlPayload is the largest payload a control frame may carry.
	MaxControlPayload = 125
	// MaxPayload is the largest payload the 16-bit length encoding can describe.
	MaxPayload = 1<<16 - 1

	maskKeySize = 4
)

var (
	ErrTooShort          = errors.New("frame too short")
	ErrUnmaskedFrame     = errors.New("frames from client must be masked")
	ErrLengthTooLarge    = errors.New("extended payload length too large")
	ErrUnsupportedOpcode = errors.New("unsupported opcode")
	ErrControlTooLong    = errors.New("control frame payload too long")
)

// Header is the fixed part of a client frame, up to and including the masking key.
type Header struct {
	Fin     bool
	Opcode  Opcode
	Masked  bool
	Length  int // declared payload length, 16-bit extension resolved
	MaskKey [4]byte
	Size    int // header bytes on the wire, masking key included
}

// Frame is one complete decoded frame.
type Frame struct {
	Kind   Kind
	Opcode Opcode

	// Unmasked payload. For data frames this is the application data.
	Payload []byte
}

// ParseHeader parses the header at the start of b. It does not require the
// payload to be present.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < 2 {
		return Header{}, fmt.Errorf("%w: need at least 2 bytes, have %d", ErrTooShort, len(b))
	}
	b0, b1 := b[0], b[1]

	h := Header{
		Fin:    b0&finBit != 0,
		Opcode: Opcode(b0 & opcodeBits),
		Masked: b1&maskBit != 0,
		Length: int(b1 & lengthBits),
	}

	if !h.Masked {
		return Header{}, ErrUnmaskedFrame
	}

	offset := 2
	switch h.Length {
	case length16Marker:
		if len(b) < offset+2 {
			return Header{}, fmt.Errorf("%w: payload length 126 signaled that next 16 bits must be actual length, have %d bytes",
				ErrTooShort, len(b))
		}
		h.Length = int(binary.BigEndian.Uint16(b[offset:]))
		offset += 2
	case length64Marker:
		return Header{}, fmt.Errorf("%w: 64-bit payload lengths are not supported", ErrLengthTooLarge)
	}

	if len(b) < offset+maskKeySize {
		return Header{}, fmt.Errorf("%w: missing masking key", ErrTooShort)
	}
	copy(h.MaskKey[:], b[offset:offset+maskKeySize])
	h.Size = offset + maskKeySize

	return h, nil
}

// Decode decodes the first frame in b and returns it together with the
// number of bytes it occupied. The returned payload does not alias b.
func Decode(b []byte) (Frame, int, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return Frame{}, 0, err
	}

	end := h.Size + h.Length
	if len(b) < end {
		return Frame{}, 0, fmt.Errorf("%w: declared %d payload bytes, have %d",
			ErrTooShort, h.Length, len(b)-h.Size)
	}

	kind, ok := kindOf(h.Opcode)
	if !ok {
		return Frame{}, 0, fmt.Errorf("%w: %s", ErrUnsupportedOpcode, h.Opcode)
	}

	payload := make([]byte, h.Length)
	copy(payload, b[h.Size:end])
	Mask(payload, h.MaskKey)

	return Frame{Kind: kind, Opcode: h.Opcode, Payload: payload}, end, nil
}

// Parse decodes a single frame from b.
func Parse(b []byte) (Frame, error) {
	f, _, err := Decode(b)
	return f, err
}
