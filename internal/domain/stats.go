package domain

import "time"

// FrameStats is a running summary of the inbound frame stream.
type FrameStats struct {
	Frames     int
	Bytes      int64
	LastWidth  int
	LastHeight int
	LastAt     time.Time
}
