package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

const DefaultTCPPort = 5600

// TCPTransport carries the same byte stream over a TCP socket, mainly for
// running the controller against a device simulator.
type TCPTransport struct {
	host        string
	port        int
	maxFrameLen uint32

	mu      sync.Mutex
	conn    net.Conn
	writeMu sync.Mutex
}

func NewTCPTransport(host string, port int, maxFrameLen uint32) *TCPTransport {
	if port == 0 {
		port = DefaultTCPPort
	}
	if maxFrameLen == 0 {
		maxFrameLen = DefaultMaxFrameLen
	}

	return &TCPTransport{host: host, port: port, maxFrameLen: maxFrameLen}
}

func (t *TCPTransport) Name() string {
	return "tcp"
}

func (t *TCPTransport) StatusTarget() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.host == "" {
		return ""
	}

	return net.JoinHostPort(t.host, fmt.Sprintf("%d", t.port))
}

func (t *TCPTransport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.conn != nil
}

func (t *TCPTransport) Open(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	logger := transportLogger("tcp", "target", t.targetLocked())

	if t.conn != nil {
		logger.Debug("open skipped: already connected")

		return nil
	}
	if t.host == "" {
		return errors.New("tcp host is empty")
	}

	dialer := net.Dialer{Timeout: 6 * time.Second}
	logger.Info("connecting")
	conn, err := dialer.DialContext(ctx, "tcp", t.targetLocked())
	if err != nil {
		logger.Warn("connect failed", "error", err)

		return fmt.Errorf("dial tcp: %w", err)
	}
	t.conn = conn
	logger.Info("connected", "remote", conn.RemoteAddr().String())

	return nil
}

func (t *TCPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil

	return err
}

func (t *TCPTransport) ReadFrame(ctx context.Context) ([]byte, error) {
	conn, err := t.currentConn()
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	} else {
		_ = conn.SetReadDeadline(time.Time{})
	}

	return readFrame(ioReadFullFunc(conn), t.maxFrameLen)
}

func (t *TCPTransport) WriteCommand(ctx context.Context, line []byte) error {
	conn, err := t.currentConn()
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	} else {
		_ = conn.SetWriteDeadline(time.Time{})
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := conn.Write(line); err != nil {
		return fmt.Errorf("write command: %w", err)
	}

	return nil
}

func (t *TCPTransport) currentConn() (net.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil, ErrNotConnected
	}

	return t.conn, nil
}

func (t *TCPTransport) targetLocked() string {
	return net.JoinHostPort(t.host, fmt.Sprintf("%d", t.port))
}
