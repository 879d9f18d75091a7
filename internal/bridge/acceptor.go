package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ConnState is the lifecycle of the bridge's single connection. It only
// moves forward: Listening, Connected, Closed.
type ConnState int

const (
	Listening ConnState = iota
	Connected
	Closed
)

func (s ConnState) String() string {
	switch s {
	case Listening:
		return "listening"
	case Connected:
		return "connected"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Acceptor accepts exactly one controller connection and pumps its lines
// through a Coordinator until the stream ends or the acceptor is closed.
type Acceptor struct {
	ln      net.Listener
	coord   *Coordinator
	log     logrus.FieldLogger
	bufSize int
	onState func(ConnState)

	mu     sync.Mutex
	state  ConnState
	conn   net.Conn
	served bool
	closed bool

	closeOnce sync.Once
	done      chan struct{}
}

type Option func(*Acceptor)

func WithReadBufferSize(n int) Option {
	return func(a *Acceptor) {
		if n > 0 {
			a.bufSize = n
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Acceptor) {
		if l != nil {
			a.log = l
		}
	}
}

// WithStateHook registers fn to observe lifecycle transitions. fn is called
// without any acceptor lock held.
func WithStateHook(fn func(ConnState)) Option {
	return func(a *Acceptor) {
		a.onState = fn
	}
}

// Listen binds addr and returns an acceptor in the Listening state.
func Listen(addr string, coord *Coordinator, opts ...Option) (*Acceptor, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return NewAcceptor(ln, coord, opts...), nil
}

// NewAcceptor wraps an existing listener. The acceptor takes ownership of
// ln and closes it once a client is accepted or the acceptor is closed.
func NewAcceptor(ln net.Listener, coord *Coordinator, opts ...Option) *Acceptor {
	a := &Acceptor{
		ln:      ln,
		coord:   coord,
		log:     logrus.StandardLogger(),
		bufSize: 1024,
		state:   Listening,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Acceptor) Addr() net.Addr { return a.ln.Addr() }

func (a *Acceptor) State() ConnState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Serve blocks until the single connection has been accepted and finished.
// A clean end of stream and a shutdown via Close or ctx both return nil.
func (a *Acceptor) Serve(ctx context.Context) error {
	a.mu.Lock()
	if a.served {
		a.mu.Unlock()
		return ErrAlreadyServed
	}
	a.served = true
	a.mu.Unlock()
	defer close(a.done)
	defer a.Close()

	stop := context.AfterFunc(ctx, func() { _ = a.Close() })
	defer stop()

	a.log.WithField("addr", a.ln.Addr().String()).Info("waiting for controller")
	conn, err := a.ln.Accept()
	if err != nil {
		if a.isClosed() {
			return nil
		}
		return fmt.Errorf("accept: %w", err)
	}
	// No second client is ever serviced.
	_ = a.ln.Close()

	if !a.attach(conn) {
		_ = conn.Close()
		return nil
	}
	log := a.log.WithField("remote", conn.RemoteAddr().String())
	log.Info("controller connected")

	err = a.pump(ctx, conn, log)
	if err != nil {
		log.WithError(err).Error("connection failed")
		return err
	}
	log.Info("controller disconnected")
	return nil
}

func (a *Acceptor) pump(ctx context.Context, conn net.Conn, log logrus.FieldLogger) error {
	framer := NewFramer()
	buf := make([]byte, a.bufSize)
	for {
		n, rerr := conn.Read(buf)
		if n > 0 {
			for _, msg := range framer.Feed(buf[:n]) {
				resp, err := a.coord.Submit(ctx, msg)
				if err != nil {
					if errors.Is(err, ErrStopped) || ctx.Err() != nil {
						return nil
					}
					return err
				}
				log.WithField("request", msg).Debug("step served")
				if _, err := io.WriteString(conn, resp); err != nil {
					if a.isClosed() {
						return nil
					}
					return fmt.Errorf("write: %w", err)
				}
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) || a.isClosed() {
				if framer.Pending() > 0 {
					log.WithField("bytes", framer.Pending()).Warn("discarding unterminated line")
				}
				return nil
			}
			return fmt.Errorf("read: %w", rerr)
		}
	}
}

// Close stops the coordinator and closes the listener and connection,
// unblocking any Accept, Read or Submit in progress. It is idempotent.
func (a *Acceptor) Close() error {
	a.closeOnce.Do(func() {
		a.coord.Stop()

		a.mu.Lock()
		a.closed = true
		conn := a.conn
		changed := a.state != Closed
		a.state = Closed
		a.mu.Unlock()

		_ = a.ln.Close()
		if conn != nil {
			_ = conn.Close()
		}
		if changed {
			a.notify(Closed)
		}
	})
	return nil
}

// Shutdown closes the acceptor and waits up to timeout for Serve to return.
func (a *Acceptor) Shutdown(timeout time.Duration) error {
	_ = a.Close()

	a.mu.Lock()
	served := a.served
	a.mu.Unlock()
	if !served {
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-a.done:
		return nil
	case <-timer.C:
		return ErrShutdownTimeout
	}
}

// Done is closed when Serve returns.
func (a *Acceptor) Done() <-chan struct{} { return a.done }

func (a *Acceptor) attach(conn net.Conn) bool {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return false
	}
	a.conn = conn
	a.state = Connected
	a.mu.Unlock()
	a.notify(Connected)
	return true
}

func (a *Acceptor) isClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

func (a *Acceptor) notify(s ConnState) {
	if a.onState != nil {
		a.onState(s)
	}
}
