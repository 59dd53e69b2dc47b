package display

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirSink writes each frame payload to a numbered file in one directory.
type DirSink struct {
	dir  string
	next int
}

func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}

	return &DirSink{dir: dir}, nil
}

func (s *DirSink) Consume(frame []byte) error {
	path := filepath.Join(s.dir, fmt.Sprintf("frame-%05d.jpg", s.next))
	if err := os.WriteFile(path, frame, 0o600); err != nil {
		return fmt.Errorf("save frame: %w", err)
	}
	s.next++

	return nil
}

func (s *DirSink) Close() error {
	return nil
}

// LimitSink stops the session after a fixed number of frames. It stands in
// for an interactive viewer's quit control.
type LimitSink struct {
	max  int
	seen int
}

func NewLimitSink(max int) *LimitSink {
	return &LimitSink{max: max}
}

func (s *LimitSink) Consume([]byte) error {
	s.seen++
	if s.max > 0 && s.seen >= s.max {
		return ErrStop
	}

	return nil
}

func (s *LimitSink) Close() error {
	return nil
}
