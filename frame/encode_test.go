package frame

import (
	"bytes"
	"errors"
	"testing"
)

func TestAppendFrame(t *testing.T) {
	testCases := []struct {
		name     string
		op       Opcode
		payload  []byte
		expected []byte
	}{
		{name: "ping", op: OpcodePing, expected: []byte{0x89, 0x00}},
		{name: "pong", op: OpcodePong, expected: []byte{0x8A, 0x00}},
		{name: "close 1000", op: OpcodeClose, payload: []byte{0x03, 0xE8}, expected: []byte{0x88, 0x02, 0x03, 0xE8}},
		{name: "text", op: OpcodeText, payload: []byte("Hello"), expected: []byte{0x81, 0x05, 'H', 'e', 'l', 'l', 'o'}},
		{
			name:     "binary 126 bytes",
			op:       OpcodeBinary,
			payload:  bytes.Repeat([]byte{0xAB}, 126),
			expected: append([]byte{0x82, 0x7E, 0x00, 0x7E}, bytes.Repeat([]byte{0xAB}, 126)...),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := AppendFrame(nil, tc.op, tc.payload)
			if err != nil {
				t.Fatalf("AppendFrame returned unexpected error %q", err.Error())
			}
			if !bytes.Equal(actual, tc.expected) {
				t.Errorf("AppendFrame(%s, %d bytes) = %v, expected %v", tc.op, len(tc.payload), actual, tc.expected)
			}
		})
	}
}

func TestPrecomputedControlFrames(t *testing.T) {
	ping, _ := AppendFrame(nil, OpcodePing, nil)
	if !bytes.Equal(PingFrame, ping) {
		t.Errorf("PingFrame = %v, expected %v", PingFrame, ping)
	}
	pong, _ := AppendFrame(nil, OpcodePong, nil)
	if !bytes.Equal(PongFrame, pong) {
		t.Errorf("PongFrame = %v, expected %v", PongFrame, pong)
	}
}

func TestAppendFrameErrors(t *testing.T) {
	testCases := []struct {
		name    string
		op      Opcode
		payload []byte
		err     error
	}{
		{name: "continuation", op: OpcodeContinuation, err: ErrUnsupportedOpcode},
		{name: "reserved", op: Opcode(0x3), err: ErrUnsupportedOpcode},
		{name: "long ping", op: OpcodePing, payload: make([]byte, MaxControlPayload+1), err: ErrControlTooLong},
		{name: "64-bit length", op: OpcodeBinary, payload: make([]byte, MaxPayload+1), err: ErrLengthTooLarge},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AppendFrame(nil, tc.op, tc.payload)
			if !errors.Is(err, tc.err) {
				t.Errorf("AppendFrame error = %v, expected %v", err, tc.err)
			}
		})
	}
}

func TestAppendMaskedFrameLeavesPayload(t *testing.T) {
	payload := []byte("keep me")
	key := [4]byte{0xFF, 0xFF, 0xFF, 0xFF}

	b, err := AppendMaskedFrame([]byte("prefix"), OpcodeText, payload, key)
	if err != nil {
		t.Fatalf("AppendMaskedFrame returned unexpected error %q", err.Error())
	}
	if string(payload) != "keep me" {
		t.Errorf("payload was modified: %q", payload)
	}
	if !bytes.HasPrefix(b, []byte("prefix")) {
		t.Errorf("destination prefix lost: %v", b)
	}

	f, err := Parse(b[len("prefix"):])
	if err != nil {
		t.Fatalf("Parse returned unexpected error %q", err.Error())
	}
	if string(f.Payload) != "keep me" {
		t.Errorf("Parse payload = %q, expected %q", f.Payload, "keep me")
	}
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, OpcodeText, []byte("hi")); err != nil {
		t.Fatalf("WriteFrame returned unexpected error %q", err.Error())
	}
	expected := []byte{0x81, 0x02, 'h', 'i'}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("WriteFrame wrote %v, expected %v", buf.Bytes(), expected)
	}
}
