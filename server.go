package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const DefaultMaxConns = 1024

// Backoff bounds for accept errors such as running out of file descriptors.
const (
	minAcceptRetryDelay = 5 * time.Millisecond
	maxAcceptRetryDelay = time.Second
)

var ErrServerClosed = errors.New("server closed")

type ServerConfig struct {
	Addr string
	// Upper bound of connections served at once. Connections accepted while
	// the bound is reached are closed right away, without a handshake.
	MaxConns int
	Conn     Options
}

type ServerOption func(*Server)

func WithLogger(l *zap.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.l = l
		}
	}
}

type Stats struct {
	Accepted int64
	Rejected int64
	Active   int64
}

// Server accepts TCP connections and runs each admitted one on its own
// goroutine. Connections share nothing but the admission semaphore.
type Server struct {
	cfg     ServerConfig
	handler PayloadHandler
	l       *zap.Logger

	sem chan struct{}
	wg  sync.WaitGroup

	mu     sync.Mutex
	ln     net.Listener
	closed bool

	accepted atomic.Int64
	rejected atomic.Int64
	active   atomic.Int64
}

func NewServer(cfg ServerConfig, h PayloadHandler, opts ...ServerOption) *Server {
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = DefaultMaxConns
	}
	cfg.Conn = cfg.Conn.withDefaults()

	s := &Server{
		cfg:     cfg,
		handler: h,
		l:       zap.NewNop(),
		sem:     make(chan struct{}, cfg.MaxConns),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %q: [%w]", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, Close is called or
// ln is closed. Other Accept errors are logged and retried with backoff.
// Open connections are then told to go away, and Serve returns once every
// worker has finished.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return multierr.Append(ErrServerClosed, ln.Close())
	}
	s.ln = ln
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, func() {
		ln.Close()
	})
	defer stop()

	s.l.Info("Starting server", zap.Stringer("addr", ln.Addr()), zap.Int("maxConns", s.cfg.MaxConns))

	var (
		err        error
		retryDelay time.Duration
	)
	for {
		netConn, aerr := ln.Accept()
		if aerr != nil {
			if ctx.Err() != nil || s.isClosed() {
				break
			}
			if errors.Is(aerr, net.ErrClosed) {
				err = fmt.Errorf("failed to accept connection: [%w]", aerr)
				break
			}

			retryDelay = min(max(2*retryDelay, minAcceptRetryDelay), maxAcceptRetryDelay)
			s.l.Warn("Failed to accept connection, retrying", zap.Error(aerr), zap.Duration("delay", retryDelay))

			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}
			continue
		}
		retryDelay = 0
		s.accepted.Add(1)

		select {
		case s.sem <- struct{}{}:
		default:
			s.rejected.Add(1)
			s.l.Warn("Connection limit reached, rejecting connection",
				zap.Stringer("remote", netConn.RemoteAddr()), zap.Int("maxConns", s.cfg.MaxConns))
			netConn.Close()
			continue
		}

		s.active.Add(1)
		s.wg.Add(1)
		go s.handle(ctx, netConn)
	}

	if cerr := ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
		err = multierr.Append(err, cerr)
	}

	cancel()
	s.wg.Wait()
	s.l.Info("Server stopped", zap.Int64("accepted", s.accepted.Load()), zap.Int64("rejected", s.rejected.Load()))

	return err
}

func (s *Server) handle(ctx context.Context, netConn net.Conn) {
	defer func() {
		s.active.Add(-1)
		<-s.sem
		s.wg.Done()
	}()

	c := NewConn(netConn, s.cfg.Conn, s.l)
	if s.handler != nil {
		c.SetPayloadHandler(s.handler)
	}

	defer func() {
		if r := recover(); r != nil {
			c.l.Error("Connection handler panicked", zap.Any("panic", r), zap.Stack("stack"))
			c.release()
		}
	}()

	c.l.Debug("Opening new websocket connection")

	err := c.Serve(ctx)
	switch {
	case err == nil:
		c.l.Debug("Websocket connection closed")
	case errors.Is(err, io.EOF), errors.Is(err, ErrNotUpgradeRequest):
		c.l.Debug("Websocket connection ended", zap.Error(err))
	default:
		c.l.Info("Websocket connection failed", zap.Error(err))
	}
}

// Close stops accepting connections. Serve still waits for the workers.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	ln := s.ln
	s.mu.Unlock()

	if ln == nil {
		return nil
	}

	err := ln.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Addr returns the listener address, or nil before Serve is called.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) Stats() Stats {
	return Stats{
		Accepted: s.accepted.Load(),
		Rejected: s.rejected.Load(),
		Active:   s.active.Load(),
	}
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}
