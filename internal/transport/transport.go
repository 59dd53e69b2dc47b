package transport

import "context"

// Transport is a bidirectional byte stream to the camera device. Frames
// flow device->controller, command lines controller->device. Read and
// write sides are independent; only Open/Close touch shared state.
type Transport interface {
	Name() string
	Open(ctx context.Context) error
	Close() error
	Connected() bool
	ReadFrame(ctx context.Context) ([]byte, error)
	WriteCommand(ctx context.Context, line []byte) error
}

type StatusTargetResolver interface {
	StatusTarget() string
}
