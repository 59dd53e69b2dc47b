package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConnectorType identifies which transport backend should be used.
type ConnectorType string

const (
	ConnectorSerial ConnectorType = "serial"
	ConnectorTCP    ConnectorType = "tcp"

	DefaultSerialBaud   = 115200
	DefaultReadTimeout  = 10000 // ms, matches the device's ~1 fps cadence
	DefaultRetryDelay   = 100   // ms
	DefaultMaxFrameSize = 8 << 20
)

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level     string `json:"level"`
	LogToFile bool   `json:"log_to_file"`
}

// ConnectionConfig contains connector-specific connection parameters.
type ConnectionConfig struct {
	Connector  ConnectorType `json:"connector"`
	SerialPort string        `json:"serial_port"`
	SerialBaud int           `json:"serial_baud"`
	Host       string        `json:"host"`
	TCPPort    int           `json:"tcp_port"`
}

// StreamConfig tunes the frame stream loop.
type StreamConfig struct {
	ReadTimeoutMS int    `json:"read_timeout_ms"`
	RetryDelayMS  int    `json:"retry_delay_ms"`
	MaxFrameBytes uint32 `json:"max_frame_bytes"`
	SaveDir       string `json:"save_dir"`
	MaxFrames     int    `json:"max_frames"`
}

// AppConfig is the root persisted application configuration.
type AppConfig struct {
	Connection ConnectionConfig `json:"connection"`
	Logging    LoggingConfig    `json:"logging"`
	Stream     StreamConfig     `json:"stream"`
}

func Default() AppConfig {
	return AppConfig{
		Connection: ConnectionConfig{
			Connector:  ConnectorSerial,
			SerialPort: "",
			SerialBaud: DefaultSerialBaud,
			Host:       "",
			TCPPort:    0,
		},
		Logging: LoggingConfig{
			Level:     "info",
			LogToFile: false,
		},
		Stream: StreamConfig{
			ReadTimeoutMS: DefaultReadTimeout,
			RetryDelayMS:  DefaultRetryDelay,
			MaxFrameBytes: DefaultMaxFrameSize,
			SaveDir:       "",
			MaxFrames:     0,
		},
	}
}

func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path is resolved from user config dir or flags.
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config json: %w", err)
	}

	cfg.FillMissingDefaults()

	return cfg, nil
}

func (c *AppConfig) FillMissingDefaults() {
	if c.Connection.Connector == "" {
		c.Connection.Connector = ConnectorSerial
	}
	if c.Connection.SerialBaud <= 0 {
		c.Connection.SerialBaud = DefaultSerialBaud
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Stream.ReadTimeoutMS <= 0 {
		c.Stream.ReadTimeoutMS = DefaultReadTimeout
	}
	if c.Stream.RetryDelayMS <= 0 {
		c.Stream.RetryDelayMS = DefaultRetryDelay
	}
	if c.Stream.MaxFrameBytes == 0 {
		c.Stream.MaxFrameBytes = DefaultMaxFrameSize
	}
	if c.Stream.MaxFrames < 0 {
		c.Stream.MaxFrames = 0
	}
}

func (c AppConfig) Validate() error {
	switch c.Connection.Connector {
	case ConnectorSerial:
		if strings.TrimSpace(c.Connection.SerialPort) == "" {
			return errors.New("serial port is required")
		}
		if c.Connection.SerialBaud <= 0 {
			return errors.New("serial baud must be positive")
		}
	case ConnectorTCP:
		if strings.TrimSpace(c.Connection.Host) == "" {
			return errors.New("tcp host is required")
		}
	default:
		return fmt.Errorf("unknown connector: %s", c.Connection.Connector)
	}

	return nil
}

func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}
