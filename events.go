package websocket

import (
	"fmt"

	"go.uber.org/zap"
)

// SetPayloadHandler sets the hook for data frame payloads. nil restores the
// default, which only logs.
func (c *Conn) SetPayloadHandler(h PayloadHandler) {
	if h == nil {
		c.handlePayload = PayloadHandlerFunc(func(c *Conn, payload []byte) {
			c.l.Debug("Received data", zap.Int("len", len(payload)))
		})
	} else {
		c.handlePayload = h
	}
}

// SetCloseHandler sets the hook run when the peer sends a close frame. The
// connection is closed after it returns either way. The default echoes the
// peer's status code, or an empty close frame when it sent none.
func (c *Conn) SetCloseHandler(h func(code CloseCode, reason string) error) {
	if h == nil {
		c.handleClose = func(code CloseCode, reason string) error {
			c.l.Debug("Received close message", zap.Uint16("code", uint16(code)), zap.String("reason", reason))

			var err error
			switch {
			case code == CloseNoStatusReceived:
				err = c.WriteControl(CloseMessage, nil)
			case !code.IsValid():
				err = c.WriteClose(CloseProtocolError, "")
			default:
				err = c.WriteClose(code, "")
			}
			if err != nil {
				return fmt.Errorf("failed to write close message: [%w]", err)
			}

			return nil
		}
	} else {
		c.handleClose = h
	}
}

// SetPingHandler sets the hook for ping frames. The default answers with a
// zero-length pong.
func (c *Conn) SetPingHandler(h func(appData []byte) error) {
	if h == nil {
		c.handlePing = func(appData []byte) error {
			c.l.Debug("Received ping message", zap.Int("len", len(appData)))
			err := c.WriteControl(PongMessage, nil)
			if err != nil {
				return fmt.Errorf("failed to write pong message: [%w]", err)
			}

			return nil
		}
	} else {
		c.handlePing = h
	}
}

func (c *Conn) SetPongHandler(h func(appData []byte) error) {
	if h == nil {
		c.handlePong = func(appData []byte) error {
			c.l.Debug("Received pong message")
			return nil
		}
	} else {
		c.handlePong = h
	}
}
