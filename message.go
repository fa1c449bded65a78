package websocket

import (
	"github.com/wmdanor/wsengine/frame"
)

type MessageType uint8

const (
	// Non-control
	TextMessage   MessageType = MessageType(frame.OpcodeText)
	BinaryMessage MessageType = MessageType(frame.OpcodeBinary)

	// Control
	CloseMessage MessageType = MessageType(frame.OpcodeClose)
	PingMessage  MessageType = MessageType(frame.OpcodePing)
	PongMessage  MessageType = MessageType(frame.OpcodePong)
)

func (mt MessageType) String() string {
	return frame.Opcode(mt).String()
}

// PayloadHandler receives the unmasked payload of every text or binary
// frame, in the order the frames were read. It runs on the connection's
// worker goroutine, so the connection makes no progress until it returns.
type PayloadHandler interface {
	HandlePayload(c *Conn, payload []byte)
}

type PayloadHandlerFunc func(c *Conn, payload []byte)

func (f PayloadHandlerFunc) HandlePayload(c *Conn, payload []byte) {
	f(c, payload)
}
