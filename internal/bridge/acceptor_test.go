package bridge

import (
	"bufio"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"golang.org/x/net/nettest"
)

var lineEcho = HandlerFunc(func(msg string) string { return msg + "\n" })

type testBridge struct {
	acc    *Acceptor
	coord  *Coordinator
	cancel context.CancelFunc
	errc   chan error

	mu     sync.Mutex
	states []ConnState
}

func startBridge(t *testing.T, h Handler) *testBridge {
	t.Helper()
	ln, err := nettest.NewLocalListener("tcp")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}

	tb := &testBridge{coord: NewCoordinator(), errc: make(chan error, 1)}
	tb.acc = NewAcceptor(ln, tb.coord,
		WithReadBufferSize(7),
		WithStateHook(func(s ConnState) {
			tb.mu.Lock()
			tb.states = append(tb.states, s)
			tb.mu.Unlock()
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	tb.cancel = cancel
	go tickUntil(ctx, tb.coord, h)
	go func() { tb.errc <- tb.acc.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		_ = tb.acc.Shutdown(time.Second)
	})
	return tb
}

func (tb *testBridge) dial(t *testing.T) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", tb.acc.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (tb *testBridge) serveResult(t *testing.T) error {
	t.Helper()
	select {
	case err := <-tb.errc:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
		return nil
	}
}

func readLine(t *testing.T, r *bufio.Reader, conn net.Conn) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return line
}

func TestAcceptorRoundTrips(t *testing.T) {
	tb := startBridge(t, HandlerFunc(func(msg string) string { return "ok:" + msg + "\n" }))
	conn := tb.dial(t)
	r := bufio.NewReader(conn)

	if _, err := conn.Write([]byte("first\n")); err != nil {
		t.Fatal(err)
	}
	if got := readLine(t, r, conn); got != "ok:first\n" {
		t.Errorf("unexpected response %q", got)
	}

	// A line split across writes and a write carrying several lines.
	conn.Write([]byte("sec"))
	time.Sleep(10 * time.Millisecond)
	conn.Write([]byte("ond\n\n  \nthird\nfourth\n"))
	for _, want := range []string{"ok:second\n", "ok:third\n", "ok:fourth\n"} {
		if got := readLine(t, r, conn); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}

	if tb.acc.State() != Connected {
		t.Errorf("expected connected, got %s", tb.acc.State())
	}

	conn.Close()
	if err := tb.serveResult(t); err != nil {
		t.Errorf("expected clean end of stream, got %v", err)
	}
	if tb.acc.State() != Closed {
		t.Errorf("expected closed, got %s", tb.acc.State())
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()
	if len(tb.states) != 2 || tb.states[0] != Connected || tb.states[1] != Closed {
		t.Errorf("unexpected transitions %v", tb.states)
	}
}

func TestAcceptorSingleConnection(t *testing.T) {
	tb := startBridge(t, lineEcho)
	first := tb.dial(t)
	r := bufio.NewReader(first)
	first.Write([]byte("a\n"))
	readLine(t, r, first)

	second, err := net.DialTimeout("tcp", tb.acc.Addr().String(), 200*time.Millisecond)
	if err == nil {
		defer second.Close()
		second.Write([]byte("b\n"))
		_ = second.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		buf := make([]byte, 16)
		if n, _ := second.Read(buf); n > 0 {
			t.Errorf("second connection was serviced: %q", buf[:n])
		}
	}

	first.Write([]byte("c\n"))
	if got := readLine(t, r, first); got != "c\n" {
		t.Errorf("first connection stopped working: %q", got)
	}
}

func TestAcceptorShutdownWhileListening(t *testing.T) {
	tb := startBridge(t, echo(""))
	waitFor(t, func() bool { return tb.acc.State() == Listening })

	if err := tb.acc.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if err := tb.serveResult(t); err != nil {
		t.Errorf("expected nil after shutdown, got %v", err)
	}
	if tb.acc.State() != Closed {
		t.Errorf("expected closed, got %s", tb.acc.State())
	}
	if err := tb.acc.Serve(context.Background()); err != ErrAlreadyServed {
		t.Errorf("expected ErrAlreadyServed, got %v", err)
	}
}

func TestAcceptorShutdownWhileWaitingForTick(t *testing.T) {
	ln, err := nettest.NewLocalListener("tcp")
	if err != nil {
		t.Fatal(err)
	}
	coord := NewCoordinator()
	acc := NewAcceptor(ln, coord)
	errc := make(chan error, 1)
	go func() { errc <- acc.Serve(context.Background()) }()

	conn, err := net.Dial("tcp", acc.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.Write([]byte("0,0,0,0,0\n"))

	// Nothing ticks, so the network goroutine parks in Submit.
	waitFor(t, coord.Pending)
	if err := acc.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if err := <-errc; err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 8)
	if n, err := conn.Read(buf); err == nil {
		t.Errorf("expected closed connection, read %q", buf[:n])
	}
}

func TestAcceptorContextCancel(t *testing.T) {
	tb := startBridge(t, lineEcho)
	conn := tb.dial(t)
	r := bufio.NewReader(conn)
	conn.Write([]byte("x\n"))
	readLine(t, r, conn)

	tb.cancel()
	if err := tb.serveResult(t); err != nil {
		t.Errorf("expected nil after cancel, got %v", err)
	}
	if !tb.coord.Stopped() {
		t.Error("coordinator still running after cancel")
	}
}

func TestListenInvalidAddr(t *testing.T) {
	if _, err := Listen("256.0.0.1:bad", NewCoordinator()); err == nil {
		t.Error("expected listen error")
	}
}

func TestConnStateString(t *testing.T) {
	for s, want := range map[ConnState]string{Listening: "listening", Connected: "connected", Closed: "closed", 7: "unknown"} {
		if s.String() != want {
			t.Errorf("%d: got %s, want %s", s, s.String(), want)
		}
	}
}
