package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/supreme-gg-gg/makeuoft/internal/bus"
	"github.com/supreme-gg-gg/makeuoft/internal/config"
	"github.com/supreme-gg-gg/makeuoft/internal/display"
	"github.com/supreme-gg-gg/makeuoft/internal/domain"
	"github.com/supreme-gg-gg/makeuoft/internal/events"
	"github.com/supreme-gg-gg/makeuoft/internal/input"
	"github.com/supreme-gg-gg/makeuoft/internal/link"
	"github.com/supreme-gg-gg/makeuoft/internal/logging"
	"github.com/supreme-gg-gg/makeuoft/internal/transport"
)

func main() {
	if err := run(); err != nil {
		slog.Error("run camctl", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file path (default: user config dir)")
	connector := flag.String("connector", "", "connector type: serial or tcp")
	serialPort := flag.String("port", "", "serial port, e.g. /dev/rfcomm0")
	serialBaud := flag.Int("baud", 0, "serial baud rate")
	host := flag.String("host", "", "tcp host for the device simulator")
	saveDir := flag.String("save-dir", "", "directory to save received frames")
	maxFrames := flag.Int("max-frames", 0, "stop after this many frames (0 = unlimited)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	saveConfig := flag.Bool("save-config", false, "persist the effective connection settings")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath, logPath, err := resolvePaths(*configPath)
	if err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlagOverrides(&cfg, *connector, *serialPort, *serialBaud, *host, *saveDir, *maxFrames, *logLevel)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logMgr := logging.NewManager()
	if err := logMgr.Configure(cfg.Logging, logPath); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer func() {
		if closeErr := logMgr.Close(); closeErr != nil {
			slog.Warn("close log manager", "error", closeErr)
		}
	}()
	logger := logMgr.Logger("cli")

	if *saveConfig {
		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		logger.Info("configuration saved", "path", cfgPath)
	}

	tr, err := newTransport(cfg)
	if err != nil {
		return err
	}

	b := bus.New(logMgr.Logger("bus"))
	defer b.Close()
	watch(ctx, b, logMgr.Logger("watch"))

	sink, err := buildSink(cfg, logMgr.Logger("display"), b)
	if err != nil {
		return err
	}
	source := input.NewLineSource(os.Stdin, os.Stdout)

	svc := link.NewService(logMgr.Logger("link"), b, tr, source, sink, link.Options{
		ReadTimeout: time.Duration(cfg.Stream.ReadTimeoutMS) * time.Millisecond,
		RetryDelay:  time.Duration(cfg.Stream.RetryDelayMS) * time.Millisecond,
	})

	logger.Info("starting stream", "connector", cfg.Connection.Connector)

	return svc.Run(ctx)
}

func applyFlagOverrides(cfg *config.AppConfig, connector, serialPort string, serialBaud int, host, saveDir string, maxFrames int, logLevel string) {
	if connector := strings.TrimSpace(connector); connector != "" {
		cfg.Connection.Connector = config.ConnectorType(connector)
	}
	if serialPort := strings.TrimSpace(serialPort); serialPort != "" {
		cfg.Connection.SerialPort = serialPort
	}
	if serialBaud > 0 {
		cfg.Connection.SerialBaud = serialBaud
	}
	if host := strings.TrimSpace(host); host != "" {
		cfg.Connection.Host = host
		if strings.TrimSpace(connector) == "" {
			cfg.Connection.Connector = config.ConnectorTCP
		}
	}
	if saveDir := strings.TrimSpace(saveDir); saveDir != "" {
		cfg.Stream.SaveDir = saveDir
	}
	if maxFrames > 0 {
		cfg.Stream.MaxFrames = maxFrames
	}
	if logLevel := strings.TrimSpace(logLevel); logLevel != "" {
		cfg.Logging.Level = logLevel
	}
}

func newTransport(cfg config.AppConfig) (transport.Transport, error) {
	switch cfg.Connection.Connector {
	case config.ConnectorSerial:
		return transport.NewSerialTransport(cfg.Connection.SerialPort, cfg.Connection.SerialBaud, cfg.Stream.MaxFrameBytes), nil
	case config.ConnectorTCP:
		return transport.NewTCPTransport(cfg.Connection.Host, cfg.Connection.TCPPort, cfg.Stream.MaxFrameBytes), nil
	default:
		return nil, fmt.Errorf("unknown connector: %q", cfg.Connection.Connector)
	}
}

func buildSink(cfg config.AppConfig, logger *slog.Logger, b bus.MessageBus) (display.Sink, error) {
	sinks := []display.Sink{display.NewStatsSink(logger, b)}
	if dir := strings.TrimSpace(cfg.Stream.SaveDir); dir != "" {
		dirSink, err := display.NewDirSink(dir)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, dirSink)
	}
	if cfg.Stream.MaxFrames > 0 {
		sinks = append(sinks, display.NewLimitSink(cfg.Stream.MaxFrames))
	}

	return display.NewFanout(sinks...), nil
}

func watch(ctx context.Context, b bus.MessageBus, logger *slog.Logger) {
	stateSub := b.Subscribe(events.TopicSessionState)
	statsSub := b.Subscribe(events.TopicFrameStats)
	cmdSub := b.Subscribe(events.TopicCommandOut)

	go func() {
		for {
			select {
			case <-ctx.Done():
				b.Unsubscribe(stateSub, events.TopicSessionState)
				b.Unsubscribe(statsSub, events.TopicFrameStats)
				b.Unsubscribe(cmdSub, events.TopicCommandOut)

				return
			case raw := <-stateSub:
				if status, ok := raw.(events.SessionStatus); ok {
					logger.Info("session", "state", status.State, "transport", status.TransportName, "target", status.Target, "error", status.Err)
				}
			case raw := <-statsSub:
				if stats, ok := raw.(domain.FrameStats); ok {
					logger.Info("frame", "count", stats.Frames, "bytes", stats.Bytes, "resolution", fmt.Sprintf("%dx%d", stats.LastWidth, stats.LastHeight))
				}
			case raw := <-cmdSub:
				if sent, ok := raw.(events.CommandSent); ok {
					logger.Info("command sent", "angles", sent.Command.String())
				}
			}
		}
	}()
}

func resolvePaths(override string) (configPath, logPath string, err error) {
	if override != "" {
		return override, filepath.Join(filepath.Dir(override), "camctl.log"), nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", "", err
	}
	dir := filepath.Join(base, "camctl")

	return filepath.Join(dir, "config.json"), filepath.Join(dir, "camctl.log"), nil
}
