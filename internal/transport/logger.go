package transport

import "log/slog"

// transportLogger tags log lines with the connector they came from, so
// serial and tcp output stay distinguishable in a mixed session log.
func transportLogger(name string, attrs ...any) *slog.Logger {
	logger := slog.With("component", "transport", "transport", name)
	if len(attrs) == 0 {
		return logger
	}

	return logger.With(attrs...)
}
