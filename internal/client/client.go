package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/san-kum/stepbridge/internal/bridge"
)

var ErrClosed = errors.New("bridge closed the connection")

// Client is the controller side of a bridge connection: it sends one
// command line and blocks for the matching state line.
type Client struct {
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
}

// Dial connects to a bridge. timeout bounds every later round trip; zero
// means no deadline.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return New(conn, timeout), nil
}

func New(conn net.Conn, timeout time.Duration) *Client {
	return &Client{conn: conn, reader: bufio.NewReader(conn), timeout: timeout}
}

func (c *Client) Close() error { return c.conn.Close() }

// Send writes cmd and returns the state the bridge answers with.
func (c *Client) Send(cmd bridge.Command) (bridge.StateVector, error) {
	return c.SendLine(cmd.String())
}

func (c *Client) Reset(x, y, z, pitch, yaw float64) (bridge.StateVector, error) {
	return c.Send(bridge.NewReset(x, y, z, pitch, yaw))
}

func (c *Client) Apply(a bridge.Apply) (bridge.StateVector, error) {
	return c.Send(bridge.Command{Mode: bridge.ModeApply, Apply: a})
}

// SendLine writes a raw request line, without its delimiter.
func (c *Client) SendLine(line string) (bridge.StateVector, error) {
	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return bridge.StateVector{}, err
		}
	}
	if _, err := io.WriteString(c.conn, line+"\n"); err != nil {
		return bridge.StateVector{}, fmt.Errorf("write: %w", err)
	}
	resp, err := c.readLine()
	if err != nil {
		return bridge.StateVector{}, err
	}
	return bridge.ParseState(resp)
}

// readLine skips blank lines.
func (c *Client) readLine() (string, error) {
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", ErrClosed
			}
			return "", fmt.Errorf("read: %w", err)
		}
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
}
