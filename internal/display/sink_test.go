package display

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}

	return buf.Bytes()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStatsSinkRecordsResolution(t *testing.T) {
	sink := NewStatsSink(discardLogger(), nil)

	if err := sink.Consume(testJPEG(t, 320, 240)); err != nil {
		t.Fatalf("consume: %v", err)
	}

	stats := sink.Stats()
	if stats.Frames != 1 {
		t.Fatalf("expected 1 frame, got %d", stats.Frames)
	}
	if stats.LastWidth != 320 || stats.LastHeight != 240 {
		t.Fatalf("unexpected resolution: %dx%d", stats.LastWidth, stats.LastHeight)
	}
}

func TestStatsSinkReportsUndecodableFrame(t *testing.T) {
	sink := NewStatsSink(discardLogger(), nil)

	err := sink.Consume([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	if err == nil {
		t.Fatalf("expected decode error for garbage payload")
	}
	if errors.Is(err, ErrStop) {
		t.Fatalf("decode failure must not stop the session")
	}
	if got := sink.Stats().Frames; got != 1 {
		t.Fatalf("undecodable frame must still count, got %d", got)
	}
}

func TestDirSinkWritesNumberedFrames(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewDirSink(dir)
	if err != nil {
		t.Fatalf("new dir sink: %v", err)
	}

	first := []byte("frame-one")
	second := []byte("frame-two")
	if err := sink.Consume(first); err != nil {
		t.Fatalf("consume first: %v", err)
	}
	if err := sink.Consume(second); err != nil {
		t.Fatalf("consume second: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "frame-00001.jpg"))
	if err != nil {
		t.Fatalf("read saved frame: %v", err)
	}
	if !bytes.Equal(raw, second) {
		t.Fatalf("saved frame mismatch: got %q", raw)
	}
}

func TestLimitSinkStopsAfterMax(t *testing.T) {
	sink := NewLimitSink(2)

	if err := sink.Consume(nil); err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if err := sink.Consume(nil); !errors.Is(err, ErrStop) {
		t.Fatalf("expected stop after limit, got %v", err)
	}
}

func TestFanoutPrefersStopOverDecodeError(t *testing.T) {
	stats := NewStatsSink(discardLogger(), nil)
	limit := NewLimitSink(1)
	fanout := NewFanout(stats, limit)

	err := fanout.Consume([]byte{0x00})
	if !errors.Is(err, ErrStop) {
		t.Fatalf("expected stop from fanout, got %v", err)
	}
}
