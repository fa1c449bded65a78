package websocket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gbrlsnchs/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var ErrConnClosed = errors.New("connection closed")

type State int32

const (
	StateHandshaking State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateHandshaking:
		return "handshaking"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

const (
	DefaultPingInterval        = 5 * time.Second
	DefaultReadTimeout         = time.Second
	DefaultHandshakeTimeout    = 10 * time.Second
	DefaultWriteTimeout        = 10 * time.Second
	DefaultReadBufferSize      = 2048
	DefaultHandshakeBufferSize = 1024
)

// Options tune a single connection. Zero fields take the defaults above.
type Options struct {
	// A zero-length ping is sent when this long has passed since the last one.
	PingInterval time.Duration
	// Upper bound of one read attempt in the open state. Reads are also cut
	// short when the next ping is due.
	ReadTimeout      time.Duration
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	// Size of the reusable frame read buffer. A frame must arrive in one read
	// of at most this many bytes.
	ReadBufferSize      int
	HandshakeBufferSize int
}

func (o Options) withDefaults() Options {
	if o.PingInterval <= 0 {
		o.PingInterval = DefaultPingInterval
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = DefaultReadBufferSize
	}
	if o.HandshakeBufferSize <= 0 {
		o.HandshakeBufferSize = DefaultHandshakeBufferSize
	}
	return o
}

// Conn is the server side of one WebSocket connection. It owns the stream:
// only the goroutine running Serve reads from it, writes go through a mutex.
type Conn struct {
	id   string
	conn net.Conn
	opts Options
	l    *zap.Logger

	state atomic.Int32

	// Owned by the Serve goroutine.
	buf      []byte
	lastPing time.Time

	writeMu   sync.Mutex
	sentClose bool

	releaseOnce sync.Once
	releaseErr  error

	handlePayload PayloadHandler
	handleClose   func(code CloseCode, reason string) error
	handlePing    func(appData []byte) error
	handlePong    func(appData []byte) error
}

// NewConn wraps an accepted stream. The connection starts in StateHandshaking;
// call Serve to run it.
func NewConn(netConn net.Conn, opts Options, l *zap.Logger) *Conn {
	if l == nil {
		l = zap.NewNop()
	}
	opts = opts.withDefaults()

	id := newConnID()
	c := &Conn{
		id:   id,
		conn: netConn,
		opts: opts,
		l:    l.With(zap.String("conn", id), zap.Stringer("remote", netConn.RemoteAddr())),
		buf:  make([]byte, opts.ReadBufferSize),
	}

	c.SetPayloadHandler(nil)
	c.SetCloseHandler(nil)
	c.SetPingHandler(nil)
	c.SetPongHandler(nil)

	return c
}

func newConnID() string {
	id, err := uuid.GenerateV4(nil)
	if err != nil {
		return "unknown"
	}
	return id.String()
}

func (c *Conn) ID() string { return c.id }

func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// Logger returns the connection's logger, tagged with its id and peer.
func (c *Conn) Logger() *zap.Logger { return c.l }

func (c *Conn) State() State { return State(c.state.Load()) }

func (c *Conn) setState(s State) {
	c.state.Store(int32(s))
	c.l.Debug("Connection state changed", zap.Stringer("state", s))
}

// Serve performs the opening handshake and then handles frames until the
// peer closes, an error occurs or ctx is done. The stream is always released
// before Serve returns.
//
// When ctx is done the connection sends a going-away close frame and returns nil.
func (c *Conn) Serve(ctx context.Context) (err error) {
	defer func() {
		err = multierr.Append(err, c.release())
	}()

	if err := c.handshake(); err != nil {
		return err
	}

	return c.serveOpen(ctx)
}

// Close sends a normal closure frame and releases the stream without waiting
// for the peer's close frame.
func (c *Conn) Close() error {
	var err error
	if c.State() == StateOpen {
		err = c.WriteClose(CloseNormalClosure, "")
	}
	return multierr.Append(err, c.release())
}

func (c *Conn) release() error {
	c.releaseOnce.Do(func() {
		c.setState(StateClosed)
		err := c.conn.Close()
		if err != nil && !errors.Is(err, net.ErrClosed) {
			c.releaseErr = fmt.Errorf("failed to close stream: [%w]", err)
		}
		c.l.Debug("Websocket connection released")
	})
	return c.releaseErr
}

func (c *Conn) handshake() error {
	c.l.Debug("Handling opening handshake")

	err := c.conn.SetReadDeadline(time.Now().Add(c.opts.HandshakeTimeout))
	if err != nil {
		return fmt.Errorf("%w: failed to set handshake deadline: [%w]", ErrHandshakeFailure, err)
	}

	buf := make([]byte, c.opts.HandshakeBufferSize)
	n, err := c.conn.Read(buf)
	if err != nil {
		return fmt.Errorf("%w: failed to read request: [%w]", ErrHandshakeFailure, err)
	}

	response, err := Negotiate(string(buf[:n]))
	if err != nil {
		return fmt.Errorf("%w: [%w]", ErrHandshakeFailure, err)
	}

	if err := c.writeRaw([]byte(response)); err != nil {
		return fmt.Errorf("%w: failed to write response: [%w]", ErrHandshakeFailure, err)
	}

	c.lastPing = time.Now()
	c.setState(StateOpen)

	return nil
}
