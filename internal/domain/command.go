package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	MinAngle = 0
	MaxAngle = 180
)

var (
	ErrQuit           = errors.New("quit requested")
	ErrInvalidCommand = errors.New("invalid command input")
)

// ServoCommand is a validated pair of servo angles, sent to the device as
// one text line.
type ServoCommand struct {
	Angle1 int
	Angle2 int
}

func (c ServoCommand) Validate() error {
	if c.Angle1 < MinAngle || c.Angle1 > MaxAngle {
		return fmt.Errorf("%w: angle1 %d out of range [%d, %d]", ErrInvalidCommand, c.Angle1, MinAngle, MaxAngle)
	}
	if c.Angle2 < MinAngle || c.Angle2 > MaxAngle {
		return fmt.Errorf("%w: angle2 %d out of range [%d, %d]", ErrInvalidCommand, c.Angle2, MinAngle, MaxAngle)
	}

	return nil
}

func (c ServoCommand) String() string {
	return fmt.Sprintf("%d,%d", c.Angle1, c.Angle2)
}

// EncodeCommand renders c as the wire line "CMD:<a1>,<a2>\n". The range is
// rechecked here so an unvalidated pair can never reach the wire.
func EncodeCommand(c ServoCommand) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return []byte(fmt.Sprintf("CMD:%d,%d\n", c.Angle1, c.Angle2)), nil
}

// ParseCommandInput interprets one line of operator input: "q" quits,
// anything else must be two comma-separated integer angles in [0, 180].
func ParseCommandInput(line string) (ServoCommand, error) {
	line = strings.TrimSpace(line)
	if strings.EqualFold(line, "q") {
		return ServoCommand{}, ErrQuit
	}

	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return ServoCommand{}, fmt.Errorf("%w: expected two comma-separated angles, got %q", ErrInvalidCommand, line)
	}

	angle1, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return ServoCommand{}, fmt.Errorf("%w: angle %q is not a number", ErrInvalidCommand, strings.TrimSpace(parts[0]))
	}
	angle2, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return ServoCommand{}, fmt.Errorf("%w: angle %q is not a number", ErrInvalidCommand, strings.TrimSpace(parts[1]))
	}

	cmd := ServoCommand{Angle1: angle1, Angle2: angle2}
	if err := cmd.Validate(); err != nil {
		return ServoCommand{}, err
	}

	return cmd, nil
}
