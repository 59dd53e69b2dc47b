package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
)

const defaultSerialReadTimeout = 300 * time.Millisecond

// SerialTransport talks to the device over a serial port (a physical UART
// or an rfcomm bluetooth device node).
type SerialTransport struct {
	portName    string
	baudRate    int
	maxFrameLen uint32

	mu      sync.Mutex
	port    serial.Port
	writeMu sync.Mutex
}

func NewSerialTransport(portName string, baudRate int, maxFrameLen uint32) *SerialTransport {
	if maxFrameLen == 0 {
		maxFrameLen = DefaultMaxFrameLen
	}

	return &SerialTransport{
		portName:    portName,
		baudRate:    baudRate,
		maxFrameLen: maxFrameLen,
	}
}

func (t *SerialTransport) Name() string {
	return "serial"
}

func (t *SerialTransport) StatusTarget() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.portName
}

func (t *SerialTransport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.port != nil
}

func (t *SerialTransport) Open(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.portName == "" {
		return errors.New("serial port is empty")
	}
	if t.baudRate <= 0 {
		return fmt.Errorf("invalid serial baud rate: %d", t.baudRate)
	}

	port, err := serial.Open(t.portName, &serial.Mode{BaudRate: t.baudRate})
	if err != nil {
		return fmt.Errorf("open serial port %q: %w", t.portName, err)
	}
	if err := port.SetReadTimeout(defaultSerialReadTimeout); err != nil {
		_ = port.Close()
		return fmt.Errorf("set serial read timeout: %w", err)
	}
	t.port = port
	transportLogger("serial", "port", t.portName, "baud", t.baudRate).Info("opened")

	return nil
}

func (t *SerialTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil

	return err
}

// ReadFrame reads one length-prefixed frame. The underlying port read times
// out in short slices; the overall deadline comes from ctx, so a truncated
// frame surfaces once ctx expires.
func (t *SerialTransport) ReadFrame(ctx context.Context) ([]byte, error) {
	port, err := t.currentPort()
	if err != nil {
		return nil, err
	}

	return readFrame(func(buf []byte) error {
		return t.readFull(ctx, port, buf)
	}, t.maxFrameLen)
}

func (t *SerialTransport) WriteCommand(ctx context.Context, line []byte) error {
	port, err := t.currentPort()
	if err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := writeFull(ctx, port, line); err != nil {
		return fmt.Errorf("write command: %w", err)
	}

	return nil
}

func (t *SerialTransport) currentPort() (serial.Port, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return nil, ErrNotConnected
	}

	return t.port, nil
}

func (t *SerialTransport) readFull(ctx context.Context, r io.Reader, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	read := 0
	for read < len(buf) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf[read:])
		if err != nil {
			return err
		}
		if n == 0 {
			// Port read timeout slice expired; loop so ctx is rechecked.
			continue
		}
		read += n
	}

	return nil
}

func writeFull(ctx context.Context, w io.Writer, buf []byte) error {
	written := 0
	for written < len(buf) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := w.Write(buf[written:])
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		written += n
	}

	return nil
}
