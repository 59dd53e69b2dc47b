package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/supreme-gg-gg/makeuoft/internal/domain"
)

const defaultPrompt = "Enter servo angles (0-180, comma separated) or 'q' to quit: "

// Source produces validated operator commands. Next returns
// domain.ErrQuit on an explicit quit, domain.ErrInvalidCommand on input
// that failed validation, or ctx.Err() when the session is shutting down.
type Source interface {
	Next(ctx context.Context) (domain.ServoCommand, error)
}

// LineSource reads operator input line by line from r. Terminal reads
// cannot be interrupted, so a background goroutine pumps lines into a
// channel and Next selects between it and ctx; at shutdown the pump is
// abandoned mid-read.
type LineSource struct {
	r      io.Reader
	prompt io.Writer

	startOnce sync.Once
	lines     chan string
}

func NewLineSource(r io.Reader, prompt io.Writer) *LineSource {
	return &LineSource{
		r:      r,
		prompt: prompt,
		lines:  make(chan string),
	}
}

func (s *LineSource) Next(ctx context.Context) (domain.ServoCommand, error) {
	s.startOnce.Do(func() { go s.pump() })

	if s.prompt != nil {
		fmt.Fprint(s.prompt, defaultPrompt)
	}

	select {
	case <-ctx.Done():
		return domain.ServoCommand{}, ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			// Input closed underneath us; nothing more can arrive.
			return domain.ServoCommand{}, domain.ErrQuit
		}

		return domain.ParseCommandInput(line)
	}
}

func (s *LineSource) pump() {
	scanner := bufio.NewScanner(s.r)
	for scanner.Scan() {
		s.lines <- scanner.Text()
	}
	close(s.lines)
}
