package domain

import (
	"errors"
	"testing"
)

func TestEncodeCommandWireFormat(t *testing.T) {
	cases := []struct {
		cmd  ServoCommand
		want string
	}{
		{ServoCommand{Angle1: 90, Angle2: 45}, "CMD:90,45\n"},
		{ServoCommand{Angle1: 0, Angle2: 0}, "CMD:0,0\n"},
		{ServoCommand{Angle1: 180, Angle2: 180}, "CMD:180,180\n"},
		{ServoCommand{Angle1: 5, Angle2: 170}, "CMD:5,170\n"},
	}

	for _, tc := range cases {
		got, err := EncodeCommand(tc.cmd)
		if err != nil {
			t.Fatalf("encode %v: %v", tc.cmd, err)
		}
		if string(got) != tc.want {
			t.Fatalf("encode %v: got %q want %q", tc.cmd, got, tc.want)
		}
	}
}

func TestEncodeCommandRejectsOutOfRange(t *testing.T) {
	cases := []ServoCommand{
		{Angle1: 200, Angle2: 45},
		{Angle1: 90, Angle2: 181},
		{Angle1: -1, Angle2: 45},
		{Angle1: 90, Angle2: -10},
	}

	for _, cmd := range cases {
		line, err := EncodeCommand(cmd)
		if !errors.Is(err, ErrInvalidCommand) {
			t.Fatalf("encode %v: expected range error, got %v", cmd, err)
		}
		if line != nil {
			t.Fatalf("encode %v: expected no output, got %q", cmd, line)
		}
	}
}

func TestParseCommandInputValidPair(t *testing.T) {
	cmd, err := ParseCommandInput(" 90, 45 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.Angle1 != 90 || cmd.Angle2 != 45 {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestParseCommandInputQuit(t *testing.T) {
	for _, line := range []string{"q", "Q", " q "} {
		_, err := ParseCommandInput(line)
		if !errors.Is(err, ErrQuit) {
			t.Fatalf("parse %q: expected quit, got %v", line, err)
		}
	}
}

func TestParseCommandInputRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"90",
		"90,45,10",
		"abc,45",
		"90,def",
		"200,45",
		"90,200",
		"-5,45",
	}

	for _, line := range cases {
		_, err := ParseCommandInput(line)
		if !errors.Is(err, ErrInvalidCommand) {
			t.Fatalf("parse %q: expected invalid command error, got %v", line, err)
		}
	}
}
