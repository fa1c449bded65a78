package websocket

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wmdanor/wsengine/frame"
)

// WriteMessage sends data in a single unfragmented text or binary frame.
// It is safe to call from any goroutine.
func (c *Conn) WriteMessage(messageType MessageType, data []byte) error {
	if messageType != TextMessage && messageType != BinaryMessage {
		return fmt.Errorf("message type must be text or binary")
	}
	if c.State() != StateOpen {
		return fmt.Errorf("%w: cannot write in state %s", ErrConnClosed, c.State())
	}

	b, err := frame.AppendFrame(nil, frame.Opcode(messageType), data)
	if err != nil {
		return fmt.Errorf("failed to encode %s message: [%w]", messageType, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.sentClose {
		return fmt.Errorf("%w: close frame already sent", ErrConnClosed)
	}

	return c.writeLocked(b)
}

func (c *Conn) WriteClose(code CloseCode, reason string) error {
	c.l.Debug("Writing close message", zap.Uint16("code", uint16(code)), zap.String("reason", reason))
	return c.WriteControl(CloseMessage, CloseMessageData(code, reason))
}

// WriteControl sends a close, ping or pong frame. Only the first close frame
// is written, later ones are skipped.
func (c *Conn) WriteControl(messageType MessageType, data []byte) error {
	if !frame.Opcode(messageType).IsControl() {
		return fmt.Errorf("message type must be close, ping or pong")
	}

	b, err := frame.AppendFrame(nil, frame.Opcode(messageType), data)
	if err != nil {
		return fmt.Errorf("failed to encode %s frame: [%w]", messageType, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if messageType == CloseMessage {
		if c.sentClose {
			c.l.Debug("Already wrote close message, skipping")
			return nil
		}
		c.sentClose = true
	}

	if err := c.writeLocked(b); err != nil {
		return fmt.Errorf("failed to write control frame: [%w]", err)
	}

	return nil
}

// writePing sends a keepalive ping unless a close frame already went out.
func (c *Conn) writePing() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.sentClose {
		return nil
	}

	c.l.Debug("Sending keepalive ping")
	return c.writeLocked(frame.PingFrame)
}

func (c *Conn) writeRaw(b []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.writeLocked(b)
}

func (c *Conn) writeLocked(b []byte) error {
	err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	if err != nil {
		return fmt.Errorf("failed to set write deadline: [%w]", err)
	}

	_, err = c.conn.Write(b)
	return err
}
