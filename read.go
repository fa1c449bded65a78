package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/wmdanor/wsengine/frame"
)

// Lower bound for one read attempt so a late keepalive check never turns
// into a zero deadline.
const minReadWait = time.Millisecond

func (c *Conn) serveOpen(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			c.l.Debug("Context done, closing connection")
			return c.WriteClose(CloseGoingAway, "")
		}

		if err := c.keepalive(); err != nil {
			if c.State() == StateClosed {
				return nil
			}
			return err
		}

		n, err := c.readChunk()
		if n > 0 {
			closed, derr := c.dispatch(c.buf[:n])
			if derr != nil {
				return derr
			}
			if closed {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			// Released locally by Close.
			if c.State() == StateClosed {
				c.l.Debug("Connection closed locally")
				return nil
			}
			if errors.Is(err, io.EOF) {
				c.l.Debug("Peer closed the stream without a close frame")
			}
			return fmt.Errorf("failed to read from connection: [%w]", err)
		}
	}
}

func (c *Conn) keepalive() error {
	if time.Since(c.lastPing) <= c.opts.PingInterval {
		return nil
	}

	c.lastPing = time.Now()
	if err := c.writePing(); err != nil {
		return fmt.Errorf("failed to send keepalive ping: [%w]", err)
	}

	return nil
}

// readChunk waits for input until the read timeout passes or the next ping
// is due, whichever comes first. A deadline error means no input yet.
func (c *Conn) readChunk() (int, error) {
	wait := c.opts.PingInterval - time.Since(c.lastPing)
	wait = min(wait, c.opts.ReadTimeout)
	wait = max(wait, minReadWait)

	err := c.conn.SetReadDeadline(time.Now().Add(wait))
	if err != nil {
		return 0, fmt.Errorf("failed to set read deadline: [%w]", err)
	}

	return c.conn.Read(c.buf)
}

// dispatch handles the frames in chunk in order and reports whether a close
// frame ended the connection. Frames are never reassembled across reads.
func (c *Conn) dispatch(chunk []byte) (bool, error) {
	for len(chunk) > 0 {
		f, n, err := frame.Decode(chunk)
		if err != nil {
			return false, fmt.Errorf("failed to decode frame: [%w]", err)
		}
		chunk = chunk[n:]

		c.l.Debug("Received frame", zap.Stringer("kind", f.Kind), zap.Int("len", len(f.Payload)))

		switch f.Kind {
		case frame.KindPong:
			if err := c.handlePong(f.Payload); err != nil {
				return false, fmt.Errorf("failed to handle pong frame: [%w]", err)
			}
		case frame.KindPing:
			if err := c.handlePing(f.Payload); err != nil {
				return false, fmt.Errorf("failed to handle ping frame: [%w]", err)
			}
		case frame.KindClose:
			code, reason := parseCloseData(f.Payload)
			err := c.handleClose(code, reason)
			c.setState(StateClosed)
			if err != nil {
				return true, fmt.Errorf("failed to handle close frame: [%w]", err)
			}
			return true, nil
		case frame.KindData:
			c.handlePayload.HandlePayload(c, f.Payload)
		}
	}

	return false, nil
}
