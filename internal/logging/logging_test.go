package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/supreme-gg-gg/makeuoft/internal/config"
)

type errorWriter struct {
	err error
}

func (w errorWriter) Write([]byte) (int, error) {
	return 0, w.err
}

func TestFanoutWriterContinuesWhenOneDestinationFails(t *testing.T) {
	var dst bytes.Buffer
	w := newFanoutWriter(errorWriter{err: errors.New("broken stdout")}, &dst)

	n, err := w.Write([]byte("test"))
	if err != nil {
		t.Fatalf("write returned error: %v", err)
	}
	if n != len("test") {
		t.Fatalf("unexpected bytes written: got %d, want %d", n, len("test"))
	}
	if got := dst.String(); got != "test" {
		t.Fatalf("unexpected destination contents: got %q", got)
	}
}

func TestManagerConfigureWritesToLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")
	m := NewManager()
	t.Cleanup(func() { _ = m.Close() })

	if err := m.Configure(config.LoggingConfig{Level: "debug", LogToFile: true}, logPath); err != nil {
		t.Fatalf("configure manager: %v", err)
	}

	m.Logger("test").Info("file must receive this message")

	if err := m.Close(); err != nil {
		t.Fatalf("close manager: %v", err)
	}

	raw, err := os.ReadFile(filepath.Clean(logPath))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(raw), "file must receive this message") {
		t.Fatalf("log file missing message, contents: %q", raw)
	}
}

func TestManagerConfigureRejectsUnknownLevel(t *testing.T) {
	m := NewManager()
	t.Cleanup(func() { _ = m.Close() })

	if err := m.Configure(config.LoggingConfig{Level: "loud"}, ""); err == nil {
		t.Fatalf("expected error for unknown log level")
	}
}
