package transport

import "errors"

var (
	ErrNotConnected     = errors.New("transport is not connected")
	ErrTruncatedHeader  = errors.New("truncated frame header")
	ErrTruncatedPayload = errors.New("truncated frame payload")
	ErrFrameTooLarge    = errors.New("frame length exceeds limit")
)

// IsTruncated reports whether err came from a short header or payload read.
// Truncated reads are recoverable: the caller pauses and retries.
func IsTruncated(err error) bool {
	return errors.Is(err, ErrTruncatedHeader) || errors.Is(err, ErrTruncatedPayload)
}
