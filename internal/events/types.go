package events

import (
	"time"

	"github.com/supreme-gg-gg/makeuoft/internal/domain"
)

// SessionState mirrors the link session lifecycle.
type SessionState string

const (
	SessionStateStarting  SessionState = "starting"
	SessionStateStreaming SessionState = "streaming"
	SessionStateStopping  SessionState = "stopping"
	SessionStateStopped   SessionState = "stopped"
)

// SessionStatus is a bus snapshot of the session lifecycle.
type SessionStatus struct {
	State         SessionState
	Err           string
	TransportName string
	Target        string
	Timestamp     time.Time
}

// RawFrame carries inbound frame diagnostics for debug/log consumers.
type RawFrame struct {
	Len int
	At  time.Time
}

// CommandSent reports a servo command that reached the transport.
type CommandSent struct {
	Command domain.ServoCommand
	At      time.Time
}
