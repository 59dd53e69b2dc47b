package display

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"log/slog"
	"time"

	"github.com/supreme-gg-gg/makeuoft/internal/bus"
	"github.com/supreme-gg-gg/makeuoft/internal/domain"
	"github.com/supreme-gg-gg/makeuoft/internal/events"
)

// StatsSink probes each frame as a JPEG and publishes running stream
// statistics on the bus.
type StatsSink struct {
	logger *slog.Logger
	bus    bus.MessageBus
	stats  domain.FrameStats
}

func NewStatsSink(logger *slog.Logger, b bus.MessageBus) *StatsSink {
	return &StatsSink{logger: logger, bus: b}
}

func (s *StatsSink) Consume(frame []byte) error {
	s.stats.Frames++
	s.stats.Bytes += int64(len(frame))
	s.stats.LastAt = time.Now()

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(frame))
	if err != nil {
		s.publish()

		return fmt.Errorf("decode frame: %w", err)
	}
	s.stats.LastWidth = cfg.Width
	s.stats.LastHeight = cfg.Height
	s.logger.Debug("frame", "len", len(frame), "width", cfg.Width, "height", cfg.Height)
	s.publish()

	return nil
}

func (s *StatsSink) Close() error {
	s.logger.Info("stream summary", "frames", s.stats.Frames, "bytes", s.stats.Bytes)

	return nil
}

// Stats returns a copy of the current counters.
func (s *StatsSink) Stats() domain.FrameStats {
	return s.stats
}

func (s *StatsSink) publish() {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.TopicFrameStats, s.stats)
}
