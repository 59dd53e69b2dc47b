package link

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/supreme-gg-gg/makeuoft/internal/bus"
	"github.com/supreme-gg-gg/makeuoft/internal/display"
	"github.com/supreme-gg-gg/makeuoft/internal/domain"
	"github.com/supreme-gg-gg/makeuoft/internal/events"
	"github.com/supreme-gg-gg/makeuoft/internal/input"
	"github.com/supreme-gg-gg/makeuoft/internal/transport"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultRetryDelay   = 100 * time.Millisecond
	commandWriteTimeout = 5 * time.Second
)

// Options tunes the streaming loops.
type Options struct {
	ReadTimeout time.Duration
	RetryDelay  time.Duration
}

// Service runs one link session: a frame-consumption loop and a
// command-input loop sharing a single transport. The two loops only write
// and read opposite directions of the stream; the transport's open/close
// lifecycle is the sole shared state, and the shutdown close happens
// exactly once.
type Service struct {
	logger    *slog.Logger
	bus       bus.MessageBus
	transport transport.Transport
	source    input.Source
	sink      display.Sink

	readTimeout time.Duration
	retryDelay  time.Duration

	closeOnce sync.Once
	closeErr  error
}

func NewService(logger *slog.Logger, b bus.MessageBus, tr transport.Transport, source input.Source, sink display.Sink, opts Options) *Service {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}

	return &Service{
		logger:      logger,
		bus:         b,
		transport:   tr,
		source:      source,
		sink:        sink,
		readTimeout: opts.ReadTimeout,
		retryDelay:  opts.RetryDelay,
	}
}

// Run drives the session through its whole lifecycle and blocks until both
// loops have stopped. An open failure at startup is fatal; stream-level
// failures are absorbed inside the loops.
func (s *Service) Run(ctx context.Context) error {
	s.publishState(events.SessionStateStarting, nil)
	if err := s.transport.Open(ctx); err != nil {
		err = fmt.Errorf("open transport: %w", err)
		s.publishState(events.SessionStateStopped, err)

		return err
	}

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.publishState(events.SessionStateStreaming, nil)
	s.logger.Info("streaming", "transport", s.transport.Name(), "target", s.statusTarget())

	g, loopCtx := errgroup.WithContext(sessCtx)
	g.Go(func() error { return s.runReader(loopCtx, cancel) })
	g.Go(func() error { return s.runCommander(loopCtx, cancel) })
	err := g.Wait()

	s.publishState(events.SessionStateStopping, err)
	if closeErr := s.closeTransport(); closeErr != nil {
		s.logger.Warn("close transport", "error", closeErr)
		if err == nil {
			err = fmt.Errorf("close transport: %w", closeErr)
		}
	}
	if sinkErr := s.sink.Close(); sinkErr != nil {
		s.logger.Warn("close sink", "error", sinkErr)
	}
	s.publishState(events.SessionStateStopped, err)

	return err
}

// runReader consumes frames until the session context is cancelled.
// Truncated reads pause and retry; a transport that dropped its connection
// is reopened, and a failed reopen ends the session.
func (s *Service) runReader(ctx context.Context, quit context.CancelFunc) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		if !s.transport.Connected() {
			if err := s.transport.Open(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				quit()

				return fmt.Errorf("reopen transport: %w", err)
			}
		}

		readCtx, cancelRead := context.WithTimeout(ctx, s.readTimeout)
		frame, err := s.transport.ReadFrame(readCtx)
		cancelRead()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			switch {
			case transport.IsTruncated(err) || errors.Is(err, transport.ErrFrameTooLarge):
				s.logger.Warn("frame read failed", "error", err)
			case errors.Is(err, transport.ErrNotConnected):
				// Reopened at the top of the next iteration.
				continue
			default:
				s.logger.Warn("frame read failed, resetting transport", "error", err)
				_ = s.transport.Close()
			}
			if !sleepWithContext(ctx, s.retryDelay) {
				return nil
			}

			continue
		}

		s.bus.Publish(events.TopicRawFrameIn, events.RawFrame{Len: len(frame), At: time.Now()})

		if err := s.sink.Consume(frame); err != nil {
			if errors.Is(err, display.ErrStop) {
				s.logger.Info("display requested stop")
				quit()

				return nil
			}
			s.logger.Warn("frame discarded", "error", err)
		}
	}
}

// runCommander forwards validated operator commands until quit or
// cancellation. Malformed input and write failures never end the session.
func (s *Service) runCommander(ctx context.Context, quit context.CancelFunc) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		cmd, err := s.source.Next(ctx)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrQuit):
				s.logger.Info("quit requested")
				quit()

				return nil
			case errors.Is(err, domain.ErrInvalidCommand):
				s.logger.Warn("rejected command input", "error", err)
			case ctx.Err() != nil:
				return nil
			default:
				s.logger.Warn("command input failed", "error", err)
			}

			continue
		}

		s.sendCommand(ctx, cmd)
	}
}

func (s *Service) sendCommand(ctx context.Context, cmd domain.ServoCommand) {
	line, err := domain.EncodeCommand(cmd)
	if err != nil {
		s.logger.Warn("rejected command", "command", cmd.String(), "error", err)

		return
	}

	if !s.transport.Connected() {
		if err := s.transport.Open(ctx); err != nil {
			s.logger.Warn("command dropped: transport unavailable", "command", cmd.String(), "error", err)

			return
		}
	}

	writeCtx, cancel := context.WithTimeout(ctx, commandWriteTimeout)
	err = s.transport.WriteCommand(writeCtx, line)
	cancel()
	if err != nil {
		s.logger.Warn("command write failed", "command", cmd.String(), "error", err)

		return
	}

	s.logger.Info("sent servo command", "command", cmd.String())
	s.bus.Publish(events.TopicCommandOut, events.CommandSent{Command: cmd, At: time.Now()})
}

func (s *Service) closeTransport() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.transport.Close()
	})

	return s.closeErr
}

func (s *Service) publishState(state events.SessionState, err error) {
	status := events.SessionStatus{
		State:         state,
		TransportName: s.transport.Name(),
		Target:        s.statusTarget(),
		Timestamp:     time.Now(),
	}
	if err != nil {
		status.Err = err.Error()
	}
	s.bus.Publish(events.TopicSessionState, status)
}

func (s *Service) statusTarget() string {
	if resolver, ok := s.transport.(transport.StatusTargetResolver); ok {
		return resolver.StatusTarget()
	}

	return ""
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
