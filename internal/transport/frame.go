package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultMaxFrameLen bounds a single frame payload. The wire format has no
// sync marker, so a corrupted length prefix cannot be recovered from; a
// prefix above the bound fails fast instead of allocating the bogus length.
const DefaultMaxFrameLen = 8 << 20

type readFullFunc func(buf []byte) error

// encodeFrame builds the device side of the wire format. The controller
// never emits frames; tests and device simulators do.
func encodeFrame(payload []byte) []byte {
	frame := make([]byte, 4+len(payload))
	// #nosec G115 -- frame payloads never approach math.MaxUint32.
	binary.LittleEndian.PutUint32(frame[:4], uint32(len(payload)))
	copy(frame[4:], payload)

	return frame
}

func readFrame(readFull readFullFunc, maxLen uint32) ([]byte, error) {
	var lenBuf [4]byte
	if err := readFull(lenBuf[:]); err != nil {
		if isShortRead(err) {
			return nil, fmt.Errorf("%w: %v", ErrTruncatedHeader, err)
		}

		return nil, fmt.Errorf("read frame header: %w", err)
	}
	ln := binary.LittleEndian.Uint32(lenBuf[:])
	if maxLen > 0 && ln > maxLen {
		return nil, fmt.Errorf("%w: %d", ErrFrameTooLarge, ln)
	}
	if ln == 0 {
		// The device can emit an empty capture; the consumer rejects it.
		return []byte{}, nil
	}

	payload := make([]byte, ln)
	if err := readFull(payload); err != nil {
		if isShortRead(err) {
			return nil, fmt.Errorf("%w: %v", ErrTruncatedPayload, err)
		}

		return nil, fmt.Errorf("read frame payload: %w", err)
	}

	return payload, nil
}

// isShortRead separates "fewer bytes than expected arrived in time" from
// hard transport failures. Only short reads classify as truncation; a dead
// stream (EOF, port gone) must surface as-is so the reader resets the
// connection instead of retrying forever.
func isShortRead(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

func ioReadFullFunc(r io.Reader) readFullFunc {
	return func(buf []byte) error {
		_, err := io.ReadFull(r, buf)

		return err
	}
}
