package frame

import "fmt"

type Opcode uint8

const (
	OpcodeContinuation Opcode = 0x0
	OpcodeText         Opcode = 0x1
	OpcodeBinary       Opcode = 0x2
	// 0x3-0x7 reserved for further non-control frames
	OpcodeClose Opcode = 0x8
	OpcodePing  Opcode = 0x9
	OpcodePong  Opcode = 0xA
	// 0xB-0xF reserved for further control frames
)

func (c Opcode) IsControl() bool {
	return c >= OpcodeClose
}

func (c Opcode) String() string {
	switch c {
	case OpcodeContinuation:
		return "continuation"
	case OpcodeText:
		return "text"
	case OpcodeBinary:
		return "binary"
	case OpcodeClose:
		return "close"
	case OpcodePing:
		return "ping"
	case OpcodePong:
		return "pong"
	default:
		return fmt.Sprintf("opcode(0x%X)", uint8(c))
	}
}

// Kind discriminates decoded frames.
type Kind uint8

const (
	KindData Kind = iota
	KindPing
	KindPong
	KindClose
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindPing:
		return "ping"
	case KindPong:
		return "pong"
	case KindClose:
		return "close"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// kindOf maps the opcodes this codec accepts to their frame kind.
func kindOf(c Opcode) (Kind, bool) {
	switch c {
	case OpcodeText, OpcodeBinary:
		return KindData, true
	case OpcodeClose:
		return KindClose, true
	case OpcodePing:
		return KindPing, true
	case OpcodePong:
		return KindPong, true
	default:
		return 0, false
	}
}
