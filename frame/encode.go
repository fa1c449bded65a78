package frame

import (
	"encoding/binary"
	"fmt"
	"io"
)

var (
	// PingFrame is a final, empty, unmasked ping.
	PingFrame = []byte{finBit | byte(OpcodePing), 0x00}
	// PongFrame is a final, empty, unmasked pong.
	PongFrame = []byte{finBit | byte(OpcodePong), 0x00}
)

// AppendFrame appends a final, unmasked frame carrying payload to dst, as a
// server sends it.
func AppendFrame(dst []byte, op Opcode, payload []byte) ([]byte, error) {
	dst, err := appendHeader(dst, op, len(payload), false)
	if err != nil {
		return dst, err
	}
	return append(dst, payload...), nil
}

// AppendMaskedFrame appends a final frame masked with key to dst, as a
// client sends it. payload is left untouched.
func AppendMaskedFrame(dst []byte, op Opcode, payload []byte, key [4]byte) ([]byte, error) {
	dst, err := appendHeader(dst, op, len(payload), true)
	if err != nil {
		return dst, err
	}
	dst = append(dst, key[:]...)

	start := len(dst)
	dst = append(dst, payload...)
	Mask(dst[start:], key)

	return dst, nil
}

// WriteFrame writes a final, unmasked frame to w with a single Write call.
func WriteFrame(w io.Writer, op Opcode, payload []byte) error {
	b, err := AppendFrame(make([]byte, 0, 4+len(payload)), op, payload)
	if err != nil {
		return err
	}

	_, err = w.Write(b)
	if err != nil {
		return fmt.Errorf("failed to write %s frame: [%w]", op, err)
	}

	return nil
}

func appendHeader(dst []byte, op Opcode, length int, masked bool) ([]byte, error) {
	if _, ok := kindOf(op); !ok {
		return dst, fmt.Errorf("%w: %s", ErrUnsupportedOpcode, op)
	}
	if op.IsControl() && length > MaxControlPayload {
		return dst, fmt.Errorf("%w: %d bytes", ErrControlTooLong, length)
	}
	if length > MaxPayload {
		return dst, fmt.Errorf("%w: %d bytes", ErrLengthTooLarge, length)
	}

	var b1 byte
	if masked {
		b1 = maskBit
	}

	dst = append(dst, finBit|byte(op))
	if length <= MaxControlPayload {
		return append(dst, b1|byte(length)), nil
	}

	dst = append(dst, b1|length16Marker)
	return binary.BigEndian.AppendUint16(dst, uint16(length)), nil
}
