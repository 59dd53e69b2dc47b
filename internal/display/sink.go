// Package display consumes decoded frames on the controller side. It only
// inspects and stores payloads; rendering belongs to whatever front-end is
// attached to the bus.
package display

import "errors"

// ErrStop is returned by a sink that wants the whole session to end, the
// way a viewer window's quit key would.
var ErrStop = errors.New("display requested stop")

// Sink receives one frame payload at a time. A returned error other than
// ErrStop marks the frame as undecodable; the stream continues.
type Sink interface {
	Consume(frame []byte) error
	Close() error
}

type fanoutSink struct {
	sinks []Sink
}

// NewFanout feeds every frame to all sinks. ErrStop from any sink wins over
// ordinary decode errors.
func NewFanout(sinks ...Sink) Sink {
	filtered := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}

	return &fanoutSink{sinks: filtered}
}

func (f *fanoutSink) Consume(frame []byte) error {
	var firstErr error
	stop := false
	for _, s := range f.sinks {
		err := s.Consume(frame)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrStop) {
			stop = true

			continue
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if stop {
		return ErrStop
	}

	return firstErr
}

func (f *fanoutSink) Close() error {
	var firstErr error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
